package middleware

import "github.com/gofiber/fiber/v2"

// JsonError answers {error, message?} with the given status.
func JsonError(c *fiber.Ctx, statusCode int, code, message string) error {
	body := fiber.Map{"error": code}
	if message != "" {
		body["message"] = message
	}
	return c.Status(statusCode).JSON(body)
}

// JsonOK answers 200 {ok: true, ...data}.
func JsonOK(c *fiber.Ctx, data fiber.Map) error {
	body := fiber.Map{"ok": true}
	for k, v := range data {
		body[k] = v
	}
	return c.Status(fiber.StatusOK).JSON(body)
}
