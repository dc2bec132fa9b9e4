package service

import (
	"context"
	"strings"

	"askmate/internal/models"
	"askmate/internal/repository"
)

// AdminStore is the part of the repository used for identity administration.
type AdminStore interface {
	repository.RoleRepository
	repository.ClaimRepository
	GetAllUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUserName(ctx context.Context, userName string) (*models.User, error)
}

// AdministrationService manages roles, memberships and claims.
type AdministrationService struct {
	store AdminStore
}

func NewAdministrationService(store AdminStore) *AdministrationService {
	return &AdministrationService{store: store}
}

func (s *AdministrationService) ListRoles(ctx context.Context) ([]models.Role, error) {
	return s.store.ListRoles(ctx)
}

func (s *AdministrationService) GetRole(ctx context.Context, id string) (*models.Role, error) {
	return s.store.GetRoleByID(ctx, id)
}

// CreateRole adds a role, rejecting blank and duplicate names.
func (s *AdministrationService) CreateRole(ctx context.Context, name string) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Role name is required")
	}
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}
	return s.store.CreateRole(ctx, name)
}

func (s *AdministrationService) RenameRole(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.NewValidationError("Role name is required")
	}
	if err := s.ensureNameFree(ctx, name, id); err != nil {
		return err
	}
	return s.store.UpdateRole(ctx, id, name)
}

func (s *AdministrationService) ensureNameFree(ctx context.Context, name, exceptID string) error {
	existing, err := s.store.GetRoleByName(ctx, name)
	if err != nil {
		if models.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != exceptID {
		return models.NewValidationError("Role name already exists")
	}
	return nil
}

func (s *AdministrationService) DeleteRole(ctx context.Context, id string) error {
	return s.store.DeleteRole(ctx, id)
}

// UpdateMembers applies additions before removals. An id present in both
// lists ends up removed; removing a non-member is a no-op.
func (s *AdministrationService) UpdateMembers(ctx context.Context, roleID string, add, remove []string) error {
	if _, err := s.store.GetRoleByID(ctx, roleID); err != nil {
		return err
	}
	for _, userID := range add {
		if err := s.store.AddUserToRole(ctx, userID, roleID); err != nil {
			return err
		}
	}
	for _, userID := range remove {
		if err := s.store.RemoveUserFromRole(ctx, userID, roleID); err != nil && !models.IsNotFound(err) {
			return err
		}
	}
	return nil
}

// PromoteUser puts the account identified by e-mail or user name into
// roleName, creating the role if needed.
func (s *AdministrationService) PromoteUser(ctx context.Context, login, roleName string) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.store.GetUserByEmail(ctx, login)
	} else {
		user, err = s.store.GetUserByUserName(ctx, login)
	}
	if err != nil {
		return nil, err
	}

	role, err := s.store.GetRoleByName(ctx, roleName)
	if models.IsNotFound(err) {
		role, err = s.store.CreateRole(ctx, roleName)
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.AddUserToRole(ctx, user.ID, role.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// RoleMembers returns the users in roleName.
func (s *AdministrationService) RoleMembers(ctx context.Context, roleName string) ([]models.User, error) {
	role, err := s.store.GetRoleByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	full, err := s.store.GetRoleByID(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	return full.Users, nil
}

func (s *AdministrationService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.GetAllUsers(ctx)
}

func (s *AdministrationService) AllClaims(ctx context.Context) ([]models.UserClaim, error) {
	return s.store.GetAllUserClaims(ctx)
}

func (s *AdministrationService) GetClaim(ctx context.Context, id uint) (*models.UserClaim, error) {
	return s.store.GetApplicationClaimByID(ctx, id)
}

// UserClaims returns the user and its claims.
func (s *AdministrationService) UserClaims(ctx context.Context, userID string) (*models.User, []models.UserClaim, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	claims, err := s.store.GetClaimsForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}

func (s *AdministrationService) AddClaim(ctx context.Context, claim *models.UserClaim) error {
	if strings.TrimSpace(claim.ClaimType) == "" {
		return models.NewValidationError("Claim type is required")
	}
	if _, err := s.store.GetUserByID(ctx, claim.UserID); err != nil {
		return err
	}
	return s.store.AddUserClaim(ctx, claim)
}

// RemoveClaim deletes a claim, checking it belongs to userID.
func (s *AdministrationService) RemoveClaim(ctx context.Context, userID string, claimID uint) error {
	claim, err := s.store.GetApplicationClaimByID(ctx, claimID)
	if err != nil {
		return err
	}
	if claim.UserID != userID {
		return models.NewNotFoundError("UserClaim", claimID)
	}
	return s.store.RemoveUserClaim(ctx, claimID)
}
