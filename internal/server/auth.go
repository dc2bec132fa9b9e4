package server

import (
	"net/url"
	"strings"
	"time"

	"askmate/internal/middleware"
	"askmate/internal/models"
	"askmate/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TokenCookie carries the access token for browser sessions.
const TokenCookie = "askmate_token"

const (
	localUserID   = "userID"
	localUserName = "userName"
	localToken    = "token"
)

func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

func currentUserName(c *fiber.Ctx) string {
	name, _ := c.Locals(localUserName).(string)
	return name
}

// tokenFromRequest reads the bearer header first, then the session cookie.
func tokenFromRequest(c *fiber.Ctx) (token string, fromHeader bool) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1], true
		}
		return "", true
	}
	return c.Cookies(TokenCookie), false
}

// OptionalAuth resolves the signed-in user when a valid token is present and
// leaves the request anonymous otherwise.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, _ := tokenFromRequest(c)
		if token == "" {
			return c.Next()
		}
		claims, err := s.accounts.ParseToken(c.UserContext(), token)
		if err != nil {
			return c.Next()
		}

		c.Locals(localUserID, claims.UserID)
		c.Locals(localUserName, claims.UserName)
		c.Locals(localToken, token)
		// Sync to UserContext for logging and downstream services
		c.SetUserContext(middleware.WithLocals(c))
		return c.Next()
	}
}

// AuthRequired rejects anonymous requests. Browser requests are sent to the
// login page; clients using a bearer header get 401.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUserID(c) != "" {
			return c.Next()
		}
		if _, fromHeader := tokenFromRequest(c); fromHeader {
			return models.NewUnauthorizedError("Invalid or expired token")
		}
		return c.Redirect("/account/login?ReturnUrl="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
	}
}

// RequirePolicy allows the request through only if the signed-in user
// satisfies policy. Must be placed after AuthRequired.
func (s *Server) RequirePolicy(policy service.Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := s.authz.Satisfies(c.UserContext(), currentUserID(c), policy)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewForbiddenError("Access denied")
		}
		return c.Next()
	}
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// safeReturnURL only follows local paths.
func safeReturnURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	return raw
}
