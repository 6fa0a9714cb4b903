package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var protectedPrefixes = []string{"/dashboard", "/curso", "/admin"}

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// IsProtectedPath reports whether path requires a session.
func IsProtectedPath(path string) bool {
	for _, prefix := range protectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// LoginRedirect builds the login URL that brings the user back to target.
func LoginRedirect(target string) string {
	return LoginPath + "?" + url.Values{"redirectTo": {target}}.Encode()
}

// AuthGate sends anonymous visitors of protected pages to the login page and
// signed-in visitors of the login page to the dashboard.
func AuthGate(c *fiber.Ctx) error {
	path := c.Path()
	user := CurrentUser(c)

	if user == nil && IsProtectedPath(path) {
		target := path
		if query := string(c.Request().URI().QueryString()); query != "" {
			target += "?" + query
		}
		return c.Redirect(LoginRedirect(target), fiber.StatusSeeOther)
	}

	if user != nil && path == LoginPath {
		return c.Redirect(DashboardPath, fiber.StatusSeeOther)
	}

	return c.Next()
}
