package entities

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus represents account status
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusSuspended
}

// User represents a user entity
type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	PasswordHash string     `json:"-"`
	Status       UserStatus `json:"status"`
	Roles        []Role     `json:"roles,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	// Populated on admin listings
	ApplicationsCount int64 `json:"applicationsCount,omitempty"`
}

// RoleNames returns the machine names of the user's roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// HasRole reports whether the user holds any of the given roles.
func (u *User) HasRole(names ...string) bool {
	for _, r := range u.Roles {
		for _, n := range names {
			if r.Name == n {
				return true
			}
		}
	}
	return false
}

// IsStaff reports whether the user holds a role other than customer.
func (u *User) IsStaff() bool {
	return u.HasRole(StaffRoles...)
}

// RegisterInput represents input for customer registration
type RegisterInput struct {
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginInput represents input for user login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshInput represents a token refresh request
type RefreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	ExpiresIn    int64    `json:"expiresIn"`
	User         *User    `json:"user"`
	Permissions  []string `json:"permissions"`
}

// UpdateProfileInput represents profile changes a user can make
type UpdateProfileInput struct {
	Name  string `json:"name" binding:"required,min=2,max=255"`
	Phone string `json:"phone" binding:"omitempty,max=20"`
}

// ChangePasswordInput represents input for changing user password.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// UpdateUserStatusInput is used by staff to suspend or reactivate accounts
type UpdateUserStatusInput struct {
	Status UserStatus `json:"status" binding:"required,oneof=active suspended"`
}

// CreateStaffInput creates a staff account with a single role
type CreateStaffInput struct {
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

// UserFilter narrows user listings
type UserFilter struct {
	Search string
	Status UserStatus
	Role   string
	// Roles matches users holding any of the names
	Roles []string
}
