package dto

import (
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/permission"
)

// OrderStatusRequest moves an order through its lifecycle.
type OrderStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// TicketStatusRequest sets a ticket status.
type TicketStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// TicketReplyRequest appends a reply, optionally changing the status.
type TicketReplyRequest struct {
	Content string               `json:"content"`
	Status  *domain.TicketStatus `json:"status,omitempty"`
}

// RoleChangeRequest assigns a role to a user.
type RoleChangeRequest struct {
	Role   string `json:"role"`
	Reason string `json:"reason"`
}

// PermissionsRequest stores a role and the per-user override matrix.
type PermissionsRequest struct {
	Role        string               `json:"role"`
	Permissions permission.Overrides `json:"permissions"`
}

// SettingRequest carries the value for a single settings key.
type SettingRequest struct {
	Value any `json:"value"`
}

// CleanupRequest prunes backups older than MaxAgeDays.
type CleanupRequest struct {
	MaxAgeDays int `json:"maxAgeDays"`
}

// BackupCreatedResponse describes a freshly stored backup.
type BackupCreatedResponse struct {
	ID          string         `json:"id"`
	Timestamp   string         `json:"timestamp"`
	Version     string         `json:"version"`
	RecordCount map[string]int `json:"recordCount"`
}

// RestoreResponse reports how many records were written per collection.
type RestoreResponse struct {
	Restored map[string]int `json:"restored"`
}

// ToggleResponse reports the new active flag of a product.
type ToggleResponse struct {
	ID       string `json:"id"`
	IsActive bool   `json:"isActive"`
}
