package courseRoutes

import (
	courseController "campus/controllers/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes registers the student pages. The auth gate already
// requires a session under these prefixes.
func SetupCourseRoutes(app *fiber.App, ctl *courseController.Controller) {
	app.Get("/dashboard", ctl.Dashboard)

	courseGroup := app.Group("/curso")
	courseGroup.Get("/:slug", ctl.Course)
	courseGroup.Get("/:slug/aula/:lessonId", ctl.Lesson)
}
