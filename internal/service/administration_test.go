package service

import (
	"context"
	"testing"

	"askmate/internal/database"
	"askmate/internal/models"
	"askmate/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAdmin(t *testing.T) (*AdministrationService, repository.Repository) {
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

	repo := repository.New(db)
	return NewAdministrationService(repo), repo
}

func addUser(t *testing.T, repo repository.Repository, name string) *models.User {
	t.Helper()
	u := &models.User{UserName: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u
}

func TestAdministration_RoleLifecycle(t *testing.T) {
	svc, repo := setupAdmin(t)
	ctx := context.Background()
	ada := addUser(t, repo, "ada")
	bob := addUser(t, repo, "bob")

	_, err := svc.CreateRole(ctx, "  ")
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	role, err := svc.CreateRole(ctx, "Moderator")
	require.NoError(t, err)

	_, err = svc.CreateRole(ctx, "Moderator")
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	require.NoError(t, svc.UpdateMembers(ctx, role.ID, []string{ada.ID, bob.ID}, nil))
	got, err := svc.GetRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Len(t, got.Users, 2)

	require.NoError(t, svc.UpdateMembers(ctx, role.ID, nil, []string{bob.ID, "not-a-member"}))
	got, err = svc.GetRole(ctx, role.ID)
	require.NoError(t, err)
	require.Len(t, got.Users, 1)
	assert.Equal(t, "ada", got.Users[0].UserName)

	require.NoError(t, svc.RenameRole(ctx, role.ID, "Moderator"), "renaming to its own name is allowed")
	require.NoError(t, svc.RenameRole(ctx, role.ID, "Editors"))

	require.NoError(t, svc.DeleteRole(ctx, role.ID))
	_, err = svc.GetRole(ctx, role.ID)
	assert.True(t, models.IsNotFound(err))

	err = svc.UpdateMembers(ctx, role.ID, []string{ada.ID}, nil)
	assert.True(t, models.IsNotFound(err))
}

func TestAdministration_PromoteUser(t *testing.T) {
	svc, repo := setupAdmin(t)
	ctx := context.Background()
	addUser(t, repo, "ada")

	user, err := svc.PromoteUser(ctx, "ada@example.com", models.RoleAdmin)
	require.NoError(t, err)

	in, err := repo.IsUserInRole(ctx, user.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, in)

	_, err = svc.PromoteUser(ctx, "ada", models.RoleAdmin)
	require.NoError(t, err, "promotion is idempotent")

	members, err := svc.RoleMembers(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	_, err = svc.PromoteUser(ctx, "ghost", models.RoleAdmin)
	assert.True(t, models.IsNotFound(err))
}

func TestAdministration_Claims(t *testing.T) {
	svc, repo := setupAdmin(t)
	ctx := context.Background()
	ada := addUser(t, repo, "ada")
	bob := addUser(t, repo, "bob")

	err := svc.AddClaim(ctx, &models.UserClaim{UserID: ada.ID})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	err = svc.AddClaim(ctx, &models.UserClaim{UserID: "ghost", ClaimType: models.ClaimIsAdmin, ClaimValue: "true"})
	assert.True(t, models.IsNotFound(err))

	claim := &models.UserClaim{UserID: ada.ID, ClaimType: models.ClaimIsAdmin, ClaimValue: "true"}
	require.NoError(t, svc.AddClaim(ctx, claim))

	user, claims, err := svc.UserClaims(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", user.UserName)
	assert.Len(t, claims, 1)

	authz := NewAuthorizer(repo, repo)
	ok, err := authz.Satisfies(ctx, ada.ID, AdminClaimPolicy)
	require.NoError(t, err)
	assert.True(t, ok)

	err = svc.RemoveClaim(ctx, bob.ID, claim.ID)
	assert.True(t, models.IsNotFound(err), "claim belongs to another user")

	require.NoError(t, svc.RemoveClaim(ctx, ada.ID, claim.ID))
	all, err := svc.AllClaims(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
