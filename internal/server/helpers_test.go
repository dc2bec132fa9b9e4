package server

import (
	"errors"
	"net/http/httptest"
	"testing"

	"askmate/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param string
		want  string
	}{
		{"id", "ID"},
		{"questionId", "question ID"},
		{"tagId", "tag ID"},
		{"answerCommentId", "answer comment ID"},
		{"statusCode", "statusCode"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, humanizeParam(tt.param), tt.param)
	}
}

func TestParseID(t *testing.T) {
	app := fiber.New()
	app.Get("/q/:questionId", func(c *fiber.Ctx) error {
		id, err := parseID(c, "questionId")
		if err != nil {
			return c.Status(statusFor(err)).SendString(err.Error())
		}
		return c.JSON(id)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/q/12", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	for _, bad := range []string{"/q/0", "/q/-3", "/q/abc"} {
		resp, err := app.Test(httptest.NewRequest("GET", bad, nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode, bad)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewNotFoundError("Question", 1), 404},
		{models.NewValidationError("bad"), 400},
		{models.NewUnauthorizedError("no"), 401},
		{models.NewForbiddenError("no"), 403},
		{models.NewInternalError(errors.New("boom")), 500},
		{errors.New("plain"), 500},
		{fiber.ErrTooManyRequests, 429},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestErrorMessage_HidesInternals(t *testing.T) {
	msg := errorMessage(500, models.NewInternalError(errors.New("pq: password authentication failed")))
	assert.NotContains(t, msg, "pq:")
	assert.Equal(t, "Invalid ID", errorMessage(400, models.NewValidationError("Invalid ID")))
}

func TestSafeReturnURL(t *testing.T) {
	assert.Equal(t, "/questions/1", safeReturnURL("/questions/1"))
	assert.Equal(t, "/", safeReturnURL(""))
	assert.Equal(t, "/", safeReturnURL("https://evil.example"))
	assert.Equal(t, "/", safeReturnURL("//evil.example"))
	assert.Equal(t, "/", safeReturnURL("/\\evil.example"))
}

func TestParseStatusCode(t *testing.T) {
	assert.Equal(t, 404, parseStatusCode("404"))
	assert.Equal(t, 500, parseStatusCode(""))
	assert.Equal(t, 500, parseStatusCode("200"))
	assert.Equal(t, 500, parseStatusCode("abc"))
}
