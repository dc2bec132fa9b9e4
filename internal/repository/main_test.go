package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"askmate/internal/database"
	"askmate/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB returns a migrated in-memory SQLite database. The pool is
// capped at one connection so every query sees the same memory database.
func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func createUser(t *testing.T, repo Repository, name string) *models.User {
	t.Helper()
	u := &models.User{
		UserName:     name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "hash",
	}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u
}

func createQuestion(t *testing.T, repo Repository, user *models.User, title string) *models.Question {
	t.Helper()
	q := &models.Question{Title: title, Body: "body of " + title, UserID: user.ID}
	require.NoError(t, repo.AddQuestion(context.Background(), q))
	return q
}

func createAnswer(t *testing.T, repo Repository, user *models.User, questionID uint, body string) *models.Answer {
	t.Helper()
	a := &models.Answer{Body: body, QuestionID: questionID, UserID: user.ID}
	require.NoError(t, repo.AddAnswer(context.Background(), a))
	return a
}

// backdate moves a row's date_added so ordering tests do not depend on clock resolution.
func backdate(t *testing.T, db *gorm.DB, model any, id uint, age time.Duration) {
	t.Helper()
	require.NoError(t, db.Model(model).Where("id = ?", id).
		UpdateColumn("date_added", time.Now().Add(-age)).Error)
}
