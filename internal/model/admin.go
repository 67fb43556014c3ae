package model

import (
	"slices"
	"time"
)

// AdminRole is the role of a dashboard user.
type AdminRole string

const (
	RoleSuperAdmin AdminRole = "super_admin"
	RoleAdmin      AdminRole = "admin"
	RoleManager    AdminRole = "manager"
	RoleStaff      AdminRole = "staff"
)

// AdminUser links an external identity to dashboard permissions.
type AdminUser struct {
	ID          string    `json:"id" yaml:"id"`
	UserID      string    `json:"user_id" yaml:"user_id"`
	Email       string    `json:"email" yaml:"email"`
	Role        AdminRole `json:"role" yaml:"role"`
	Permissions []string  `json:"permissions" yaml:"permissions"`
	IsActive    bool      `json:"is_active" yaml:"is_active"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// Clone returns a deep copy.
func (a AdminUser) Clone() AdminUser {
	a.Permissions = append([]string(nil), a.Permissions...)
	return a
}

// Can reports whether the admin holds permission p. Super admins hold all.
func (a AdminUser) Can(p string) bool {
	return a.IsActive && (a.Role == RoleSuperAdmin || slices.Contains(a.Permissions, p))
}

// AdminUserInput holds the attributes accepted on create.
type AdminUserInput struct {
	UserID      string    `json:"user_id" validate:"required"`
	Email       string    `json:"email" validate:"required,email"`
	Role        AdminRole `json:"role" validate:"required,oneof=super_admin admin manager staff"`
	Permissions []string  `json:"permissions" validate:"dive,required"`
}

// AdminUserPatch holds the attributes accepted on update.
type AdminUserPatch struct {
	Email       *string    `json:"email" validate:"omitempty,email"`
	Role        *AdminRole `json:"role" validate:"omitempty,oneof=super_admin admin manager staff"`
	Permissions *[]string  `json:"permissions"`
	IsActive    *bool      `json:"is_active"`
}
