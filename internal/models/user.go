package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Well-known role and claim names used by the authorization policies.
const (
	RoleAdmin      = "Admin"
	RoleSuperAdmin = "Super Admin"
	ClaimIsAdmin   = "IsAdmin"
)

// User is an AskMate account. Content rows reference it through a string id.
type User struct {
	ID           string      `gorm:"primaryKey;size:36" json:"id"`
	UserName     string      `gorm:"size:256;uniqueIndex;not null" json:"user_name"`
	Email        string      `gorm:"size:256;uniqueIndex;not null" json:"email"`
	PasswordHash string      `gorm:"not null" json:"-"`
	DateAdded    time.Time   `gorm:"not null" json:"date_added"`
	Reputation   int         `gorm:"not null" json:"reputation"`
	Roles        []Role      `gorm:"many2many:user_roles;" json:"roles,omitempty"`
	Claims       []UserClaim `gorm:"foreignKey:UserID" json:"claims,omitempty"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Role groups users for authorization.
type Role struct {
	ID    string `gorm:"primaryKey;size:36" json:"id"`
	Name  string `gorm:"size:256;uniqueIndex;not null" json:"name"`
	Users []User `gorm:"many2many:user_roles;" json:"users,omitempty"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (r *Role) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// UserRole is the membership row behind User.Roles / Role.Users.
type UserRole struct {
	UserID string `gorm:"primaryKey;size:36"`
	RoleID string `gorm:"primaryKey;size:36"`
}

// TableName returns the join table shared with the many2many associations.
func (UserRole) TableName() string {
	return "user_roles"
}

// UserClaim is a type/value pair assigned to a user.
type UserClaim struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserID     string `gorm:"size:36;not null;index" json:"user_id"`
	User       *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ClaimType  string `gorm:"size:256;not null" json:"claim_type"`
	ClaimValue string `gorm:"size:256" json:"claim_value"`
}
