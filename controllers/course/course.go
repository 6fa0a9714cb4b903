package courseController

import (
	"campus/auth"
	"campus/database"
	"campus/middleware"
	"campus/models"
	"campus/services/catalog"
	"campus/views"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Controller renders the student pages. The auth gate runs first, so every
// handler here has a signed-in user.
type Controller struct {
	sessions database.Sessions
	guard    *auth.Guard
	catalog  *catalog.Catalog
	views    *views.Renderer
}

func New(sessions database.Sessions, guard *auth.Guard, cat *catalog.Catalog, renderer *views.Renderer) *Controller {
	return &Controller{sessions: sessions, guard: guard, catalog: cat, views: renderer}
}

func (ctl *Controller) page(c *fiber.Ctx) (*auth.SessionUser, fiber.Map) {
	user := middleware.CurrentUser(c)
	isAdmin := ctl.guard.ResolveRole(c.UserContext(), user.ID) == models.RoleAdmin
	return user, views.Page(user, isAdmin)
}

func (ctl *Controller) Dashboard(c *fiber.Ctx) error {
	user, data := ctl.page(c)
	courses := ctl.catalog.ListAvailableCourses(c.UserContext(), ctl.sessions.AsUser(user.ID), &user.ID)

	data["Courses"] = courses
	data["Overall"] = catalog.Overall(courses)
	return ctl.views.Render(c, fiber.StatusOK, "dashboard", data)
}

func (ctl *Controller) Course(c *fiber.Ctx) error {
	user, data := ctl.page(c)
	course := ctl.catalog.GetCourseWithContent(c.UserContext(), ctl.sessions.AsUser(user.ID), c.Params("slug"), &user.ID)
	if course == nil {
		return fiber.ErrNotFound
	}

	data["Course"] = course
	return ctl.views.Render(c, fiber.StatusOK, "course", data)
}

func (ctl *Controller) Lesson(c *fiber.Ctx) error {
	lessonID, err := uuid.Parse(c.Params("lessonId"))
	if err != nil {
		return fiber.ErrNotFound
	}

	user, data := ctl.page(c)
	lesson := ctl.catalog.GetLessonWithCourseContext(c.UserContext(), ctl.sessions.AsUser(user.ID), c.Params("slug"), lessonID, &user.ID)
	if lesson == nil {
		return fiber.ErrNotFound
	}

	data["Context"] = lesson
	return ctl.views.Render(c, fiber.StatusOK, "lesson", data)
}
