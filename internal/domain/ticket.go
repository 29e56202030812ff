package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// TicketCategory groups tickets by topic.
type TicketCategory string

const (
	TicketCategoryTechnical TicketCategory = "technical"
	TicketCategoryBilling   TicketCategory = "billing"
	TicketCategoryGeneral   TicketCategory = "general"
	TicketCategoryOther     TicketCategory = "other"
)

// NormalizeTicketCategory maps unknown or empty values to other.
func NormalizeTicketCategory(c TicketCategory) TicketCategory {
	switch c {
	case TicketCategoryTechnical, TicketCategoryBilling, TicketCategoryGeneral:
		return c
	}
	return TicketCategoryOther
}

// SupportTicket is a customer support request with its reply thread.
type SupportTicket struct {
	ID          string         `json:"id,omitempty"`
	Subject     string         `json:"subject"`
	Message     string         `json:"message"`
	Category    TicketCategory `json:"category"`
	Priority    TicketPriority `json:"priority"`
	Status      TicketStatus   `json:"status"`
	UserID      *string        `json:"userId"`
	UserEmail   *string        `json:"userEmail"`
	ContactInfo string         `json:"contactInfo,omitempty"`
	Replies     []TicketReply  `json:"replies"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// LastReply returns the newest reply, if any.
func (t *SupportTicket) LastReply() (TicketReply, bool) {
	if len(t.Replies) == 0 {
		return TicketReply{}, false
	}
	return t.Replies[len(t.Replies)-1], true
}

// TicketReply is one immutable entry in a ticket thread.
type TicketReply struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"authorId"`
	AuthorName   string    `json:"authorName"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
	IsAdminReply bool      `json:"isAdminReply,omitempty"`
	IsUserReply  bool      `json:"isUserReply,omitempty"`
}
