package adminController

import (
	"campus/auth"
	"campus/database"
	"campus/middleware"
	"campus/models"
	"campus/services"
	"campus/services/admin"
	"campus/services/catalog"
	courseValidator "campus/validators/course"
	"campus/views"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Controller serves the admin pages and their form actions. Most routes are
// guarded for admins; the actions check the role again on their own.
type Controller struct {
	sessions database.Sessions
	guard    *auth.Guard
	admin    *admin.Service
	catalog  *catalog.Catalog
	views    *views.Renderer
}

func New(sessions database.Sessions, guard *auth.Guard, svc *admin.Service, cat *catalog.Catalog, renderer *views.Renderer) *Controller {
	return &Controller{sessions: sessions, guard: guard, admin: svc, catalog: cat, views: renderer}
}

func (ctl *Controller) renderAdmin(c *fiber.Ctx, status int, data fiber.Map) error {
	user := middleware.CurrentUser(c)
	data["Overview"] = ctl.admin.Overview(c.UserContext(), user)
	return ctl.views.Render(c, status, "admin", data)
}

func (ctl *Controller) renderResult(c *fiber.Ctx, res services.ActionResult) error {
	if res.Redirect != "" && !res.Success {
		return c.Redirect(res.Redirect, fiber.StatusSeeOther)
	}
	data := views.WithResult(views.Page(middleware.CurrentUser(c), true), res)
	return ctl.renderAdmin(c, views.ResultStatus(res), data)
}

func (ctl *Controller) AdminPage(c *fiber.Ctx) error {
	return ctl.renderAdmin(c, fiber.StatusOK, views.Page(middleware.CurrentUser(c), true))
}

func (ctl *Controller) CreateCourse(c *fiber.Ctx) error {
	reqData := new(courseValidator.CourseForm)
	if err := c.BodyParser(reqData); err != nil {
		return fiber.ErrBadRequest
	}
	reqData.CourseID = ""
	return ctl.renderResult(c, ctl.admin.CreateCourse(c.UserContext(), middleware.CurrentUser(c), *reqData))
}

func (ctl *Controller) UpdateCourse(c *fiber.Ctx) error {
	reqData := new(courseValidator.CourseForm)
	if err := c.BodyParser(reqData); err != nil {
		return fiber.ErrBadRequest
	}
	reqData.CourseID = c.Params("id")
	return ctl.renderResult(c, ctl.admin.UpdateCourse(c.UserContext(), middleware.CurrentUser(c), *reqData))
}

func (ctl *Controller) CreateModule(c *fiber.Ctx) error {
	reqData := new(courseValidator.ModuleForm)
	if err := c.BodyParser(reqData); err != nil {
		return fiber.ErrBadRequest
	}

	res := ctl.admin.CreateModule(c.UserContext(), middleware.CurrentUser(c), *reqData)
	if res.Redirect != "" && !res.Success {
		return c.Redirect(res.Redirect, fiber.StatusSeeOther)
	}
	data := views.WithResult(views.Page(middleware.CurrentUser(c), true), res.ActionResult)
	if res.Option != nil {
		data["NewModule"] = res.Option
	}
	return ctl.renderAdmin(c, views.ResultStatus(res.ActionResult), data)
}

func (ctl *Controller) renderLessonForm(c *fiber.Ctx, status int, form courseValidator.LessonForm, data fiber.Map) error {
	user := middleware.CurrentUser(c)
	if form.LessonID == "" {
		// draft id so files can be uploaded before the lesson exists
		form.LessonID = uuid.NewString()
	}
	data["Form"] = form
	data["LessonID"] = form.LessonID
	data["Modules"] = ctl.catalog.ListModulesForLessonForm(c.UserContext(), ctl.sessions.AsUser(user.ID))
	return ctl.views.Render(c, status, "lesson_new", data)
}

func (ctl *Controller) NewLessonPage(c *fiber.Ctx) error {
	form := courseValidator.LessonForm{ModuleID: c.Query("moduleId")}
	return ctl.renderLessonForm(c, fiber.StatusOK, form, views.Page(middleware.CurrentUser(c), true))
}

func (ctl *Controller) CreateLesson(c *fiber.Ctx) error {
	reqData := new(courseValidator.LessonForm)
	if err := c.BodyParser(reqData); err != nil {
		return fiber.ErrBadRequest
	}
	file, err := c.FormFile("material_file")
	if err != nil {
		file = nil
	}

	user := middleware.CurrentUser(c)
	res := ctl.admin.CreateLesson(c.UserContext(), user, *reqData, file)
	if res.Redirect != "" && (res.Warning == "" || !res.Success) {
		return c.Redirect(res.Redirect, fiber.StatusSeeOther)
	}

	isAdmin := res.Success || ctl.guard.RequireRole(c.UserContext(), user, models.RoleAdmin) == auth.Authorized
	data := views.WithResult(views.Page(user, isAdmin), res)
	if res.Success {
		// lesson saved with a caveat; start a fresh form
		return ctl.renderLessonForm(c, fiber.StatusOK, courseValidator.LessonForm{ModuleID: reqData.ModuleID}, data)
	}
	return ctl.renderLessonForm(c, views.ResultStatus(res), *reqData, data)
}
