// Package routers assembles the fiber application from its controllers.
package routers

import (
	"io"
	"os"

	"campus/auth"
	adminController "campus/controllers/admin"
	apiController "campus/controllers/api"
	authController "campus/controllers/auth"
	courseController "campus/controllers/course"
	healthController "campus/controllers/health"
	marketingController "campus/controllers/marketing"
	storageController "campus/controllers/storage"
	"campus/database"
	"campus/logger"
	"campus/middleware"
	"campus/routers/adminRoutes"
	"campus/routers/apiRoutes"
	"campus/routers/authRoutes"
	"campus/routers/courseRoutes"
	"campus/routers/publicRoutes"
	"campus/services/admin"
	"campus/services/catalog"
	"campus/services/leads"
	"campus/services/materials"
	"campus/services/progress"
	"campus/storage"
	"campus/views"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
)

// Deps is everything the HTTP layer needs, built once in main.
type Deps struct {
	Sessions  database.Sessions
	Accounts  *auth.Accounts
	Tokens    *auth.Tokens
	Guard     *auth.Guard
	Catalog   *catalog.Catalog
	Admin     *admin.Service
	Materials *materials.Service
	Progress  *progress.Service
	Leads     *leads.Service
	Store     storage.ObjectStore
	Signer    *storage.Signer
	Views     *views.Renderer
	Log       *logger.Logger

	Version       string
	AllowOrigins  string
	SecureCookies bool
	AccessLog     io.Writer
}

// NewApp builds the application. Requests are logged to d.AccessLog, or to
// stdout when it is nil.
func NewApp(d Deps) *fiber.App {
	log := d.Log.With("http")

	app := fiber.New(fiber.Config{
		AppName:      "campus",
		BodyLimit:    25 * 1024 * 1024,
		ErrorHandler: errorHandler(log),
	})

	app.Use(recover.New())

	accessLog := d.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}
	app.Use(fiberLogger.New(fiberLogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		Output: accessLog,
	}))

	app.Use("/api", cors.New(cors.Config{
		AllowOrigins:     d.AllowOrigins,
		AllowMethods:     "GET,POST",
		AllowHeaders:     "Content-Type",
		AllowCredentials: true,
	}))

	app.Use(middleware.Session(d.Tokens, d.SecureCookies))
	app.Use(middleware.AuthGate)

	publicRoutes.SetupPublicRoutes(app,
		marketingController.New(d.Sessions, d.Guard, d.Leads, d.Views),
		storageController.New(d.Store, d.Signer, d.Log),
		healthController.New(d.Version),
	)
	authRoutes.SetupAuthRoutes(app, authController.New(d.Accounts, d.Tokens, d.Views, d.SecureCookies, d.Log))
	apiRoutes.SetupAPIRoutes(app, apiController.New(d.Progress, d.Materials), d.Guard)
	adminRoutes.SetupAdminRoutes(app, adminController.New(d.Sessions, d.Guard, d.Admin, d.Catalog, d.Views), d.Guard)
	courseRoutes.SetupCourseRoutes(app, courseController.New(d.Sessions, d.Guard, d.Catalog, d.Views))

	return app
}

func errorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, message := fiber.StatusInternalServerError, fiber.ErrInternalServerError.Message
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code, message = fiberErr.Code, fiberErr.Message
		}
		if code >= fiber.StatusInternalServerError {
			fields := logger.Fields{"method": c.Method(), "path": c.Path()}
			if user := middleware.CurrentUser(c); user != nil {
				log.Error("Request failed", fields, logger.Person{ID: user.ID.String(), Email: user.Email}, err)
			} else {
				log.Error("Request failed", fields, err)
			}
		}
		return c.Status(code).SendString(message)
	}
}
