package authController

import (
	"campus/auth"
	"campus/logger"
	"campus/middleware"
	authValidator "campus/validators/auth"
	"campus/views"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

const credentialsError = "Nao foi possivel entrar. Confirme suas credenciais e tente novamente."

type Controller struct {
	accounts *auth.Accounts
	tokens   *auth.Tokens
	views    *views.Renderer
	secure   bool
	log      *logger.Logger
}

func New(accounts *auth.Accounts, tokens *auth.Tokens, renderer *views.Renderer, secureCookies bool, log *logger.Logger) *Controller {
	return &Controller{
		accounts: accounts,
		tokens:   tokens,
		views:    renderer,
		secure:   secureCookies,
		log:      log.With("auth"),
	}
}

func (ctl *Controller) renderLogin(c *fiber.Ctx, status int, email, redirectTo, message string) error {
	data := views.Page(nil, false)
	data["Email"] = email
	data["RedirectTo"] = redirectTo
	data["Error"] = message
	return ctl.views.Render(c, status, "login", data)
}

// LoginPage renders the sign-in form. Signed-in users never get here; the
// gate sends them to the dashboard.
func (ctl *Controller) LoginPage(c *fiber.Ctx) error {
	return ctl.renderLogin(c, fiber.StatusOK, "", c.Query("redirectTo"), "")
}

func (ctl *Controller) Login(c *fiber.Ctx) error {
	reqData := new(authValidator.LoginForm)
	if err := c.BodyParser(reqData); err != nil {
		return ctl.renderLogin(c, fiber.StatusBadRequest, "", "", authValidator.LoginError)
	}

	form, ok := authValidator.CheckLogin(*reqData)
	if !ok {
		return ctl.renderLogin(c, fiber.StatusBadRequest, reqData.Email, reqData.RedirectTo, authValidator.LoginError)
	}

	user, err := ctl.accounts.Authenticate(c.UserContext(), form.Email, form.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return ctl.renderLogin(c, fiber.StatusUnauthorized, form.Email, form.RedirectTo, credentialsError)
	}
	if err != nil {
		ctl.log.Error("Failed to authenticate user", logger.Fields{"email": form.Email}, err)
		return ctl.renderLogin(c, fiber.StatusInternalServerError, form.Email, form.RedirectTo, credentialsError)
	}

	token, err := ctl.tokens.GenerateJWT(auth.SessionUser{ID: user.ID, Email: user.Email})
	if err != nil {
		ctl.log.Error("Failed to issue session token", logger.Fields{"userId": user.ID}, err)
		return ctl.renderLogin(c, fiber.StatusInternalServerError, form.Email, form.RedirectTo, credentialsError)
	}

	middleware.SetSessionCookie(c, token, ctl.secure)
	ctl.log.Info("User signed in", logger.Fields{"userId": user.ID})
	return c.Redirect(authValidator.SafeRedirect(form.RedirectTo), fiber.StatusSeeOther)
}

func (ctl *Controller) Logout(c *fiber.Ctx) error {
	middleware.ClearSessionCookie(c, ctl.secure)
	return c.Redirect(middleware.LoginPath, fiber.StatusSeeOther)
}
