package server

import (
	"errors"

	"askmate/internal/models"
	"askmate/internal/service"
	"askmate/internal/validation"
	"askmate/internal/viewmodel"

	"github.com/gofiber/fiber/v2"
)

const (
	registerView = "account/register"
	loginView    = "account/login"
)

// RegisterForm handles GET /account/register
func (s *Server) RegisterForm(c *fiber.Ctx) error {
	return s.renderOK(c, registerView, fiber.Map{"Title": "Register", "Form": viewmodel.RegisterForm{}})
}

// Register handles POST /account/register and signs the new user in.
func (s *Server) Register(c *fiber.Ctx) error {
	var form viewmodel.RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}
	// Never echo passwords back into the form.
	bind := fiber.Map{"Title": "Register", "Form": viewmodel.RegisterForm{UserName: form.UserName, Email: form.Email}}
	if errs := validation.Struct(&form); errs != nil {
		return s.renderInvalid(c, registerView, bind, errs)
	}

	user, err := s.accounts.Register(c.UserContext(), service.RegisterInput{
		UserName: form.UserName,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeValidation {
			bind["Error"] = appErr.Message
			return s.render(c, fiber.StatusBadRequest, registerView, bind)
		}
		return err
	}

	if err := s.signIn(c, user); err != nil {
		return err
	}
	return redirectAfterPost(c, "/")
}

// LoginForm handles GET /account/login
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return s.renderOK(c, loginView, fiber.Map{
		"Title": "Log in",
		"Form":  viewmodel.LoginForm{ReturnURL: c.Query("ReturnUrl")},
	})
}

// Login handles POST /account/login
func (s *Server) Login(c *fiber.Ctx) error {
	var form viewmodel.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}
	bind := fiber.Map{"Title": "Log in", "Form": viewmodel.LoginForm{Login: form.Login, ReturnURL: form.ReturnURL}}
	if errs := validation.Struct(&form); errs != nil {
		return s.renderInvalid(c, loginView, bind, errs)
	}

	user, err := s.accounts.Authenticate(c.UserContext(), form.Login, form.Password)
	if err != nil {
		if models.ErrorCode(err) == models.CodeUnauthorized {
			bind["Error"] = "Invalid login attempt."
			return s.render(c, fiber.StatusUnauthorized, loginView, bind)
		}
		return err
	}

	if err := s.signIn(c, user); err != nil {
		return err
	}
	return redirectAfterPost(c, safeReturnURL(form.ReturnURL))
}

func (s *Server) signIn(c *fiber.Ctx, user *models.User) error {
	token, expiresAt, err := s.accounts.IssueToken(user)
	if err != nil {
		return models.NewInternalError(err)
	}
	s.setSessionCookie(c, token, expiresAt)
	return nil
}

// Logout handles POST /account/logout. The token is revoked in Redis when
// available and the cookie is cleared either way.
func (s *Server) Logout(c *fiber.Ctx) error {
	if token, _ := c.Locals(localToken).(string); token != "" {
		if err := s.accounts.Logout(c.UserContext(), token); err != nil {
			return models.NewInternalError(err)
		}
	}
	s.clearSessionCookie(c)
	return redirectAfterPost(c, "/")
}

// AccessDenied handles GET /account/accessdenied
func (s *Server) AccessDenied(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusForbidden, "account/accessdenied", fiber.Map{"Title": "Access denied"})
}
