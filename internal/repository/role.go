package repository

import (
	"context"
	"strings"

	"askmate/internal/models"

	"gorm.io/gorm"
)

// RoleRepository manages roles and role membership.
type RoleRepository interface {
	CreateRole(ctx context.Context, name string) (*models.Role, error)
	GetRoleByID(ctx context.Context, id string) (*models.Role, error)
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	UpdateRole(ctx context.Context, id, name string) error
	DeleteRole(ctx context.Context, id string) error
	AddUserToRole(ctx context.Context, userID, roleID string) error
	RemoveUserFromRole(ctx context.Context, userID, roleID string) error
	IsUserInRole(ctx context.Context, userID, roleName string) (bool, error)
	GetUserRoles(ctx context.Context, userID string) ([]models.Role, error)
}

func (r *repository) CreateRole(ctx context.Context, name string) (*models.Role, error) {
	role := models.Role{Name: strings.TrimSpace(name)}
	if err := r.db.WithContext(ctx).Create(&role).Error; err != nil {
		return nil, mapError(err, "Role", name)
	}
	return &role, nil
}

func (r *repository) GetRoleByID(ctx context.Context, id string) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).
		Preload("Users", func(db *gorm.DB) *gorm.DB { return db.Order("user_name") }).
		Where("id = ?", id).
		First(&role).Error
	if err != nil {
		return nil, mapError(err, "Role", id)
	}
	return &role, nil
}

func (r *repository) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, mapError(err, "Role", name)
	}
	return &role, nil
}

// ListRoles returns every role with its members.
func (r *repository) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.WithContext(ctx).
		Preload("Users", func(db *gorm.DB) *gorm.DB { return db.Order("user_name") }).
		Order("name").
		Find(&roles).Error
	if err != nil {
		return nil, mapError(err, "Role", "all")
	}
	return roles, nil
}

func (r *repository) UpdateRole(ctx context.Context, id, name string) error {
	result := r.db.WithContext(ctx).Model(&models.Role{}).
		Where("id = ?", id).
		Update("name", strings.TrimSpace(name))
	return requireAffected(result, "Role", id)
}

// DeleteRole removes the role and its memberships.
func (r *repository) DeleteRole(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return mapError(err, "Role", id)
		}
		return requireAffected(tx.Where("id = ?", id).Delete(&models.Role{}), "Role", id)
	})
}

// AddUserToRole is idempotent.
func (r *repository) AddUserToRole(ctx context.Context, userID, roleID string) error {
	membership := models.UserRole{UserID: userID, RoleID: roleID}
	err := r.db.WithContext(ctx).
		Where(&membership).
		FirstOrCreate(&membership).Error
	return mapError(err, "Role", roleID)
}

func (r *repository) RemoveUserFromRole(ctx context.Context, userID, roleID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&models.UserRole{})
	return requireAffected(result, "UserRole", userID)
}

func (r *repository) IsUserInRole(ctx context.Context, userID, roleName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserRole{}).
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ? AND roles.name = ?", userID, roleName).
		Count(&count).Error
	if err != nil {
		return false, mapError(err, "Role", roleName)
	}
	return count > 0, nil
}

func (r *repository) GetUserRoles(ctx context.Context, userID string) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name").
		Find(&roles).Error
	if err != nil {
		return nil, mapError(err, "Role", userID)
	}
	return roles, nil
}
