package middleware

import (
	"time"

	"campus/auth"

	"github.com/gofiber/fiber/v2"
)

const (
	SessionCookie = "campus_session"
	userLocalsKey = "user"
)

// Session reads the session cookie and, when it carries a valid token,
// stores the user in the request context. Invalid cookies are cleared.
func Session(tokens *auth.Tokens, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(SessionCookie)
		if raw == "" {
			return c.Next()
		}

		user, err := tokens.ParseJWT(raw)
		if err != nil {
			ClearSessionCookie(c, secure)
			return c.Next()
		}
		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// CurrentUser returns the signed-in user, or nil.
func CurrentUser(c *fiber.Ctx) *auth.SessionUser {
	user, _ := c.Locals(userLocalsKey).(*auth.SessionUser)
	return user
}

// RequireUserJSON rejects API calls without a session.
func RequireUserJSON(c *fiber.Ctx) error {
	if CurrentUser(c) == nil {
		return JsonError(c, fiber.StatusUnauthorized, "unauthorized", "")
	}
	return c.Next()
}

func SetSessionCookie(c *fiber.Ctx, token string, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(auth.SessionTTL),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func ClearSessionCookie(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
