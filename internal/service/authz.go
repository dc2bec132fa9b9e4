package service

import (
	"context"
	"fmt"

	"askmate/internal/models"
)

// Policy names an authorization rule enforced by the handlers.
type Policy string

const (
	// AdminRolePolicy requires membership of the "Admin" role.
	AdminRolePolicy Policy = "AdminRolePolicy"
	// AdminClaimPolicy requires the IsAdmin=true claim or the "Super Admin" role.
	AdminClaimPolicy Policy = "AdminClaimPolicy"
)

type RoleChecker interface {
	IsUserInRole(ctx context.Context, userID, roleName string) (bool, error)
}

type ClaimChecker interface {
	HasClaim(ctx context.Context, userID, claimType, claimValue string) (bool, error)
}

// Authorizer evaluates policies against the identity tables.
type Authorizer struct {
	roles  RoleChecker
	claims ClaimChecker
}

func NewAuthorizer(roles RoleChecker, claims ClaimChecker) *Authorizer {
	return &Authorizer{roles: roles, claims: claims}
}

// Satisfies reports whether userID meets policy. An anonymous user never does.
func (a *Authorizer) Satisfies(ctx context.Context, userID string, policy Policy) (bool, error) {
	if userID == "" {
		return false, nil
	}
	switch policy {
	case AdminRolePolicy:
		return a.roles.IsUserInRole(ctx, userID, models.RoleAdmin)
	case AdminClaimPolicy:
		ok, err := a.claims.HasClaim(ctx, userID, models.ClaimIsAdmin, "true")
		if err != nil || ok {
			return ok, err
		}
		return a.roles.IsUserInRole(ctx, userID, models.RoleSuperAdmin)
	default:
		return false, fmt.Errorf("unknown policy %q", policy)
	}
}

// CanModify allows the content owner or an AdminClaimPolicy holder.
func (a *Authorizer) CanModify(ctx context.Context, userID, ownerID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	if userID == ownerID {
		return true, nil
	}
	return a.Satisfies(ctx, userID, AdminClaimPolicy)
}

// CanAccept allows the question author or an AdminClaimPolicy holder to
// accept one of its answers.
func (a *Authorizer) CanAccept(ctx context.Context, userID string, question *models.Question) (bool, error) {
	return a.CanModify(ctx, userID, question.UserID)
}
