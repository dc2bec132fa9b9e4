package repository

import (
	"context"
	"strings"

	"askmate/internal/models"
)

// ClaimRepository manages user claims.
type ClaimRepository interface {
	GetAllUserClaims(ctx context.Context) ([]models.UserClaim, error)
	GetApplicationClaimByID(ctx context.Context, id uint) (*models.UserClaim, error)
	GetClaimsForUser(ctx context.Context, userID string) ([]models.UserClaim, error)
	AddUserClaim(ctx context.Context, c *models.UserClaim) error
	RemoveUserClaim(ctx context.Context, id uint) error
	HasClaim(ctx context.Context, userID, claimType, claimValue string) (bool, error)
}

func (r *repository) GetAllUserClaims(ctx context.Context) ([]models.UserClaim, error) {
	var claims []models.UserClaim
	err := r.db.WithContext(ctx).Preload("User").Order("claim_type").Order("id").Find(&claims).Error
	if err != nil {
		return nil, mapError(err, "UserClaim", "all")
	}
	return claims, nil
}

func (r *repository) GetApplicationClaimByID(ctx context.Context, id uint) (*models.UserClaim, error) {
	var claim models.UserClaim
	if err := r.db.WithContext(ctx).Preload("User").First(&claim, id).Error; err != nil {
		return nil, mapError(err, "UserClaim", id)
	}
	return &claim, nil
}

func (r *repository) GetClaimsForUser(ctx context.Context, userID string) ([]models.UserClaim, error) {
	var claims []models.UserClaim
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("claim_type").Find(&claims).Error
	if err != nil {
		return nil, mapError(err, "UserClaim", userID)
	}
	return claims, nil
}

func (r *repository) AddUserClaim(ctx context.Context, c *models.UserClaim) error {
	c.ID = 0
	c.ClaimType = strings.TrimSpace(c.ClaimType)
	if err := r.db.WithContext(ctx).Omit("User").Create(c).Error; err != nil {
		return mapError(err, "UserClaim", c.UserID)
	}
	return nil
}

func (r *repository) RemoveUserClaim(ctx context.Context, id uint) error {
	return requireAffected(r.db.WithContext(ctx).Delete(&models.UserClaim{}, id), "UserClaim", id)
}

// HasClaim compares the claim value case-insensitively so "True" and "true" match.
func (r *repository) HasClaim(ctx context.Context, userID, claimType, claimValue string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserClaim{}).
		Where("user_id = ? AND claim_type = ? AND LOWER(claim_value) = ?", userID, claimType, strings.ToLower(claimValue)).
		Count(&count).Error
	if err != nil {
		return false, mapError(err, "UserClaim", userID)
	}
	return count > 0, nil
}
