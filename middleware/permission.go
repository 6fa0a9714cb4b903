package middleware

import (
	"campus/auth"
	"campus/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRolePage guards server-rendered pages: anonymous callers go to the
// login page, callers without the role go back to the dashboard.
func RequireRolePage(guard *auth.Guard, role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch guard.RequireRole(c.UserContext(), CurrentUser(c), role) {
		case auth.Authorized:
			return c.Next()
		case auth.Unauthenticated:
			return c.Redirect(LoginRedirect(c.OriginalURL()), fiber.StatusSeeOther)
		default:
			return c.Redirect(DashboardPath, fiber.StatusSeeOther)
		}
	}
}

// RequireRoleJSON guards API endpoints with 401/403 answers.
func RequireRoleJSON(guard *auth.Guard, role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch guard.RequireRole(c.UserContext(), CurrentUser(c), role) {
		case auth.Authorized:
			return c.Next()
		case auth.Unauthenticated:
			return JsonError(c, fiber.StatusUnauthorized, "unauthorized", "")
		default:
			return JsonError(c, fiber.StatusForbidden, "forbidden", "")
		}
	}
}
