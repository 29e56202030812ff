package domain

import (
	"time"

	"github.com/spec-kit/storefront/internal/permission"
)

// Base roles. Admin sub-roles live in the permission package.
const (
	RoleUser       = "user"
	RoleAdmin      = permission.RoleAdmin
	RoleSuperAdmin = permission.RoleSuperAdmin
)

// User is a customer or staff profile stored under users/{authUID}.
type User struct {
	ID                string               `json:"id,omitempty"`
	DisplayName       string               `json:"displayName,omitempty"`
	Email             string               `json:"email,omitempty"`
	Phone             string               `json:"phone,omitempty"`
	Address           string               `json:"address,omitempty"`
	BusinessName      string               `json:"businessName,omitempty"`
	Role              string               `json:"role,omitempty"`
	CustomPermissions permission.Overrides `json:"customPermissions,omitempty"`
	AuthUID           string               `json:"authUid,omitempty"`
	RoleChangedAt     *time.Time           `json:"roleChangedAt,omitempty"`
	RoleChangeReason  string               `json:"roleChangeReason,omitempty"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// EffectiveRole treats a missing role as a plain user.
func (u *User) EffectiveRole() string {
	if u.Role == "" {
		return RoleUser
	}
	return u.Role
}

// IsAdmin reports the coarse admin flag used by the admin console gate.
func (u *User) IsAdmin() bool {
	role := u.EffectiveRole()
	return role == RoleAdmin || role == RoleSuperAdmin
}

// Subject is the resolver's view of the user.
func (u *User) Subject() *permission.Subject {
	return &permission.Subject{Role: u.EffectiveRole(), Overrides: u.CustomPermissions}
}

// KnownRole reports whether role may be assigned to a user.
func KnownRole(role string) bool {
	switch role {
	case RoleUser:
		return true
	}
	_, ok := permission.Grant(role)
	return ok
}
