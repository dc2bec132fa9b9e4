package server

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorPage handles GET /Error/:statusCode and GET /Error
func (s *Server) ErrorPage(c *fiber.Ctx) error {
	status := parseStatusCode(c.Params("statusCode"))
	return s.render(c, status, "error", fiber.Map{
		"Title":      "Error",
		"StatusCode": status,
		"Message":    errorMessage(status, fiber.NewError(status)),
		"RequestID":  c.Locals("requestid"),
	})
}
