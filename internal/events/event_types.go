package events

import (
	"time"

	"github.com/spec-kit/storefront/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderSubmitted      EventType = "order_submitted"
	EventOrderStatusChanged  EventType = "order_status_changed"
	EventTicketCreated       EventType = "ticket_created"
	EventTicketReplyAdded    EventType = "ticket_reply_added"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventUserRoleChanged     EventType = "user_role_changed"
	EventBackupCreated       EventType = "backup_created"
	EventBackupRestored      EventType = "backup_restored"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RecordID  string      `json:"record_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// OrderSubmittedPayload payload.
type OrderSubmittedPayload struct {
	SystemID   string `json:"system_id"`
	SystemName string `json:"system_name"`
	Guest      bool   `json:"guest"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Category domain.TicketCategory `json:"category"`
	Priority domain.TicketPriority `json:"priority"`
	Subject  string                `json:"subject"`
}

// TicketReplyAddedPayload payload.
type TicketReplyAddedPayload struct {
	ReplyID      string `json:"reply_id"`
	IsAdminReply bool   `json:"is_admin_reply"`
	Preview      string `json:"preview"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// UserRoleChangedPayload payload.
type UserRoleChangedPayload struct {
	OldRole string `json:"old_role"`
	NewRole string `json:"new_role"`
	Reason  string `json:"reason,omitempty"`
}

// BackupPayload payload for backup created/restored.
type BackupPayload struct {
	RecordCount map[string]int `json:"record_count"`
}
