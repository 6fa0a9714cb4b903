package adminRoutes

import (
	"campus/auth"
	adminController "campus/controllers/admin"
	"campus/middleware"
	"campus/models"
	"campus/services/admin"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, ctl *adminController.Controller, guard *auth.Guard) {
	requireAdmin := middleware.RequireRolePage(guard, models.RoleAdmin)

	adminGroup := app.Group("/admin", requireAdmin)
	adminGroup.Get("/", ctl.AdminPage)
	adminGroup.Post("/cursos", ctl.CreateCourse)
	adminGroup.Post("/cursos/:id", ctl.UpdateCourse)
	adminGroup.Post("/modulos", ctl.CreateModule)

	app.Get(admin.NewLessonPath, requireAdmin, ctl.NewLessonPage)
	// signed-in only: CreateLesson answers non-admins with its own message
	app.Post(admin.NewLessonPath, ctl.CreateLesson)
}
