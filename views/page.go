package views

import (
	"campus/auth"
	"campus/services"

	"github.com/gofiber/fiber/v2"
)

// Page starts the data of a page rendered for user (nil when anonymous).
func Page(user *auth.SessionUser, isAdmin bool) fiber.Map {
	return fiber.Map{"User": user, "IsAdmin": isAdmin}
}

// WithResult adds an action outcome and its field errors.
func WithResult(data fiber.Map, res services.ActionResult) fiber.Map {
	data["Result"] = res
	data["FieldErrors"] = res.FieldErrors
	return data
}

// ResultStatus is the HTTP status of a page re-rendered after an action.
func ResultStatus(res services.ActionResult) int {
	if res.Success {
		return fiber.StatusOK
	}
	return fiber.StatusUnprocessableEntity
}
