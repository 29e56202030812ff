package domain

import "time"

// Session is an authenticated identity. UID doubles as the users record id.
type Session struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Credential is the hosted auth record for one email. ID is the normalized
// email; UID is the account id.
type Credential struct {
	ID           string    `json:"id,omitempty"`
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
