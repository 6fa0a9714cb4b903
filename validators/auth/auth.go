package authValidator

import (
	"strings"

	"campus/validators"
)

type LoginForm struct {
	Email      string `form:"email" validate:"required,email"`
	Password   string `form:"password" validate:"required,min=6"`
	RedirectTo string `form:"redirectTo"`
}

// LoginError is the single message shown for any malformed login form.
const LoginError = "Dados invalidos. Verifique email e senha informados."

// CheckLogin validates the login form. Field details are not exposed; the
// caller shows LoginError.
func CheckLogin(form LoginForm) (*LoginForm, bool) {
	form.Email = strings.TrimSpace(form.Email)
	form.RedirectTo = strings.TrimSpace(form.RedirectTo)
	if errs := validators.Struct(form); len(errs) > 0 {
		return nil, false
	}
	return &form, true
}

// SafeRedirect keeps redirectTo only when it is a local path.
func SafeRedirect(raw string) string {
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") && !strings.HasPrefix(raw, "/\\") {
		return raw
	}
	return "/dashboard"
}
