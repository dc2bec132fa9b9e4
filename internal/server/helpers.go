package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"askmate/internal/middleware"
	"askmate/internal/models"
	"askmate/internal/service"
	"askmate/internal/upload"
	"askmate/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const imageField = "Image"

// parseID extracts a route parameter by name as a positive uint.
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "questionId" -> "Invalid question ID").
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("Invalid " + humanizeParam(param))
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		return strings.ToLower(strings.Join(splitCamel(param[:len(param)-2]), " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// statusFor maps an error to the HTTP status of the error page.
func statusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch models.ErrorCode(err) {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// errorMessage is what the error page shows. Internal details never leak.
func errorMessage(status int, err error) string {
	switch status {
	case fiber.StatusNotFound:
		return "Sorry, the resource you requested could not be found."
	case fiber.StatusInternalServerError:
		return "Something went wrong while processing your request."
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return http.StatusText(status)
}

// errorHandler renders every unhandled error with the error view.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			"path", c.Path(), "status", status, "error", err)
	}
	if status == fiber.StatusForbidden {
		return s.render(c, status, "account/accessdenied", fiber.Map{"Title": "Access denied"})
	}

	renderErr := s.render(c, status, "error", fiber.Map{
		"Title":      "Error",
		"StatusCode": status,
		"Message":    errorMessage(status, err),
		"RequestID":  c.Locals("requestid"),
	})
	if renderErr != nil {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(status).SendString(errorMessage(status, err))
	}
	return nil
}

// render sets status and renders view with the signed-in user added to bind.
func (s *Server) render(c *fiber.Ctx, status int, view string, bind fiber.Map) error {
	if bind == nil {
		bind = fiber.Map{}
	}
	bind["CurrentUserID"] = currentUserID(c)
	bind["CurrentUserName"] = currentUserName(c)
	bind["SignedIn"] = currentUserID(c) != ""
	return c.Status(status).Render(view, bind)
}

func (s *Server) renderOK(c *fiber.Ctx, view string, bind fiber.Map) error {
	return s.render(c, fiber.StatusOK, view, bind)
}

// renderInvalid re-renders a form view with field errors and status 400.
func (s *Server) renderInvalid(c *fiber.Ctx, view string, bind fiber.Map, errs validation.FieldErrors) error {
	bind["Errors"] = errs
	return s.render(c, fiber.StatusBadRequest, view, bind)
}

// redirectAfterPost answers a form POST with 303 See Other and GET actions
// with 302 Found.
func redirectAfterPost(c *fiber.Ctx, location string) error {
	if c.Method() == fiber.MethodGet {
		return c.Redirect(location, fiber.StatusFound)
	}
	return c.Redirect(location, fiber.StatusSeeOther)
}

func questionURL(id uint) string {
	return fmt.Sprintf("/questions/%d", id)
}

// requireModify returns a FORBIDDEN error unless the signed-in user owns the
// content or holds the admin claim.
func (s *Server) requireModify(c *fiber.Ctx, ownerID string) error {
	ok, err := s.authz.CanModify(c.UserContext(), currentUserID(c), ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewForbiddenError("You are not allowed to change this content")
	}
	return nil
}

// isContentAdmin reports whether the signed-in user satisfies AdminClaimPolicy.
func (s *Server) isContentAdmin(c *fiber.Ctx) bool {
	ok, err := s.authz.Satisfies(c.UserContext(), currentUserID(c), service.AdminClaimPolicy)
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "policy check failed", "error", err)
		return false
	}
	return ok
}

// uploadedImage returns the optional image of a multipart form. A present
// file with a disallowed extension is reported as a field error.
func uploadedImage(c *fiber.Ctx) (*multipart.FileHeader, validation.FieldErrors) {
	fh, err := c.FormFile(imageField)
	if err != nil || fh == nil || fh.Filename == "" {
		return nil, nil
	}
	if !upload.ValidateImageType(fh.Filename) {
		return nil, validation.FieldErrors{imageField: "Only .jpg, .jpeg and .png files are allowed"}
	}
	return fh, nil
}

// mergeErrors combines field errors, returning nil when there are none.
func mergeErrors(sets ...validation.FieldErrors) validation.FieldErrors {
	var out validation.FieldErrors
	for _, set := range sets {
		for k, v := range set {
			if out == nil {
				out = validation.FieldErrors{}
			}
			out[k] = v
		}
	}
	return out
}

func parseStatusCode(raw string) int {
	code, err := strconv.Atoi(raw)
	if err != nil || code < 400 || code > 599 {
		return fiber.StatusInternalServerError
	}
	return code
}
