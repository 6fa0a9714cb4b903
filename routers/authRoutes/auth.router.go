package authRoutes

import (
	authController "campus/controllers/auth"
	"campus/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, ctl *authController.Controller) {
	app.Get(middleware.LoginPath, ctl.LoginPage)
	app.Post(middleware.LoginPath, ctl.Login)
	app.Post("/logout", ctl.Logout)
}
