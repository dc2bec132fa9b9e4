// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"askmate/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// Repository is the single data-access abstraction used by the handlers.
type Repository interface {
	QuestionRepository
	AnswerRepository
	CommentRepository
	TagRepository
	UserRepository
	RoleRepository
	ClaimRepository
}

type repository struct {
	db *gorm.DB
}

// New returns a GORM-backed Repository.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// mapError turns gorm.ErrRecordNotFound into a NOT_FOUND AppError, unique
// constraint failures into VALIDATION_ERROR and wraps anything else as
// INTERNAL_ERROR.
func mapError(err error, resource string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if isUniqueViolation(err) {
		return models.NewValidationError(resource + " already exists")
	}
	return models.NewInternalError(fmt.Errorf("%s: %w", resource, err))
}

// requireAffected reports NOT_FOUND for updates that matched no row.
func requireAffected(result *gorm.DB, resource string, id any) error {
	if result.Error != nil {
		return mapError(result.Error, resource, id)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError(resource, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
