package dto

import (
	"time"

	"github.com/spec-kit/storefront/internal/domain"
)

// SignUpRequest payload for new accounts. Profile fields are optional.
type SignUpRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	DisplayName  string `json:"displayName"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	BusinessName string `json:"businessName"`
}

// SignInRequest payload for sign-in.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload for password changes.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// SessionResponse standard response for auth endpoints.
type SessionResponse struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ProfileResponse is the caller's profile plus the admin console flag.
type ProfileResponse struct {
	*domain.User
	IsAdmin bool `json:"isAdmin"`
}
