package publicRoutes

import (
	healthController "campus/controllers/health"
	marketingController "campus/controllers/marketing"
	storageController "campus/controllers/storage"

	"github.com/gofiber/fiber/v2"
)

func SetupPublicRoutes(app *fiber.App, marketing *marketingController.Controller, storage *storageController.Controller, health *healthController.Controller) {
	app.Get("/", marketing.Landing)
	app.Post("/leads", marketing.SubmitLead)

	app.Get("/health", health.Health)
	app.Get("/storage/v1/object/sign/:bucket/*", storage.ServeSigned)
}
