package marketingController

import (
	"campus/auth"
	"campus/database"
	"campus/middleware"
	"campus/models"
	"campus/services/leads"
	marketingValidator "campus/validators/marketing"
	"campus/views"

	"github.com/gofiber/fiber/v2"
)

// Controller serves the public landing page and its institutional lead form.
type Controller struct {
	sessions database.Sessions
	guard    *auth.Guard
	leads    *leads.Service
	views    *views.Renderer
}

func New(sessions database.Sessions, guard *auth.Guard, leadService *leads.Service, renderer *views.Renderer) *Controller {
	return &Controller{sessions: sessions, guard: guard, leads: leadService, views: renderer}
}

func (ctl *Controller) page(c *fiber.Ctx) fiber.Map {
	user := middleware.CurrentUser(c)
	if user == nil {
		return views.Page(nil, false)
	}
	return views.Page(user, ctl.guard.ResolveRole(c.UserContext(), user.ID) == models.RoleAdmin)
}

func (ctl *Controller) session(c *fiber.Ctx) database.Session {
	if user := middleware.CurrentUser(c); user != nil {
		return ctl.sessions.AsUser(user.ID)
	}
	return ctl.sessions.Anon()
}

func (ctl *Controller) Landing(c *fiber.Ctx) error {
	data := ctl.page(c)
	data["Form"] = marketingValidator.LeadForm{}
	return ctl.views.Render(c, fiber.StatusOK, "landing", data)
}

func (ctl *Controller) SubmitLead(c *fiber.Ctx) error {
	reqData := new(marketingValidator.LeadForm)
	if err := c.BodyParser(reqData); err != nil {
		return fiber.ErrBadRequest
	}

	res := ctl.leads.Submit(c.UserContext(), ctl.session(c), *reqData)
	data := views.WithResult(ctl.page(c), res)
	if res.Success {
		data["Form"] = marketingValidator.LeadForm{}
	} else {
		data["Form"] = *reqData
	}
	return ctl.views.Render(c, views.ResultStatus(res), "landing", data)
}
