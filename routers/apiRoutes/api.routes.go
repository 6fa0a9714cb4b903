package apiRoutes

import (
	"campus/auth"
	apiController "campus/controllers/api"
	"campus/middleware"
	"campus/models"
	apiValidator "campus/validators/api"

	"github.com/gofiber/fiber/v2"
)

func SetupAPIRoutes(app *fiber.App, ctl *apiController.Controller, guard *auth.Guard) {
	apiGroup := app.Group("/api", middleware.RequireUserJSON)

	apiGroup.Post("/lesson-progress/complete", apiValidator.LessonProgressPayload(), ctl.CompleteLesson)
	apiGroup.Post("/materials/signed-url", apiValidator.SignedURLPayload(), ctl.SignedURL)
	apiGroup.Post("/materials/upload", middleware.RequireRoleJSON(guard, models.RoleAdmin), apiValidator.MaterialUpload(), ctl.UploadMaterial)
}
