package repository

import (
	"errors"
	"fmt"
	"testing"

	"askmate/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"record not found", gorm.ErrRecordNotFound, models.CodeNotFound},
		{"postgres unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), models.CodeValidation},
		{"sqlite unique violation", errors.New("UNIQUE constraint failed: users.email"), models.CodeValidation},
		{"other postgres error", &pgconn.PgError{Code: "40001"}, models.CodeInternal},
		{"anything else", errors.New("connection reset"), models.CodeInternal},
		{"already mapped", models.NewForbiddenError("no"), models.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.ErrorCode(mapError(tt.err, "User", 1)))
		})
	}
	assert.NoError(t, mapError(nil, "User", 1))
}
