package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"askmate/internal/config"
	"askmate/internal/database"
	"askmate/internal/models"
	"askmate/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "SecurePass12!@"

type testEnv struct {
	t    *testing.T
	srv  *Server
	app  *fiber.App
	repo repository.Repository
	db   *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	cfg := &config.Config{
		Env:                  "test",
		JWTSecret:            "test-secret-key-12345678901234567890123456789012",
		UploadDir:            t.TempDir(),
		UploadMaxSizeMB:      10,
		LatestQuestionsCount: 5,
	}
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)
	app, err := srv.App()
	require.NoError(t, err)

	return &testEnv{t: t, srv: srv, app: app, repo: srv.repo, db: db}
}

func (e *testEnv) user(name string) *models.User {
	e.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(e.t, err)
	u := &models.User{UserName: name, Email: name + "@example.com", PasswordHash: string(hash)}
	require.NoError(e.t, e.repo.CreateUser(context.Background(), u))
	return u
}

// cookie returns a Cookie header value that signs u in.
func (e *testEnv) cookie(u *models.User) string {
	e.t.Helper()
	token, _, err := e.srv.accounts.IssueToken(u)
	require.NoError(e.t, err)
	return TokenCookie + "=" + token
}

func (e *testEnv) question(u *models.User, title string) *models.Question {
	e.t.Helper()
	q := &models.Question{Title: title, Body: "body of " + title, UserID: u.ID}
	require.NoError(e.t, e.repo.AddQuestion(context.Background(), q))
	return q
}

func (e *testEnv) answer(u *models.User, questionID uint, body string) *models.Answer {
	e.t.Helper()
	a := &models.Answer{Body: body, QuestionID: questionID, UserID: u.ID}
	require.NoError(e.t, e.repo.AddAnswer(context.Background(), a))
	return a
}

func (e *testEnv) do(req *http.Request) *http.Response {
	e.t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	return resp
}

func (e *testEnv) get(path, cookie string) *http.Response {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	return e.do(req)
}

func (e *testEnv) post(path, cookie string, form url.Values) *http.Response {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	return e.do(req)
}

// postMultipart sends fields plus an optional Image file.
func (e *testEnv) postMultipart(path, cookie string, fields map[string]string, fileName string, content []byte) *http.Response {
	e.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(e.t, w.WriteField(k, v))
	}
	if fileName != "" {
		part, err := w.CreateFormFile(imageField, fileName)
		require.NoError(e.t, err)
		_, err = part.Write(content)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	return e.do(req)
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func qpath(id uint, suffix string) string {
	return fmt.Sprintf("/questions/%d%s", id, suffix)
}
