package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/events"
	"github.com/spec-kit/storefront/internal/query"
	"github.com/spec-kit/storefront/internal/repository"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
	"github.com/spec-kit/storefront/pkg/util/validate"
)

// RecentReplyWindow bounds WithRecentUserReplies.
const RecentReplyWindow = 24 * time.Hour

// TicketService coordinates support ticket workflows.
type TicketService struct {
	base
	tickets repository.TicketRepository
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string                `json:"subject" validate:"required,max=200"`
	Message     string                `json:"message" validate:"required,max=5000"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	ContactInfo string                `json:"contactInfo" validate:"max=200"`
}

// Requester identifies who files a ticket. Both fields are empty for guests.
type Requester struct {
	UID   string
	Email string
}

// ReplyAuthor identifies who writes a reply.
type ReplyAuthor struct {
	ID    string
	Name  string
	Admin bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		base:    newBase(deps.Dispatcher, deps.Logger, deps.Clock),
		tickets: deps.TicketRepo,
	}
}

// Create opens a ticket with an empty thread.
func (s *TicketService) Create(ctx context.Context, requester Requester, input TicketCreateInput) (*domain.SupportTicket, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, errorutil.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	ticket := &domain.SupportTicket{
		Subject:     strings.TrimSpace(input.Subject),
		Message:     strings.TrimSpace(input.Message),
		Category:    domain.NormalizeTicketCategory(input.Category),
		Priority:    priority,
		Status:      domain.TicketStatusOpen,
		ContactInfo: strings.TrimSpace(input.ContactInfo),
		Replies:     []domain.TicketReply{},
	}
	if requester.UID != "" {
		ticket.UserID = &requester.UID
	}
	if requester.Email != "" {
		ticket.UserEmail = &requester.Email
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		RecordID: ticket.ID,
		ActorID:  requester.UID,
		Payload: events.TicketCreatedPayload{
			Category: ticket.Category,
			Priority: ticket.Priority,
			Subject:  ticket.Subject,
		},
	})
	return ticket, nil
}

// AddReply appends a reply to the end of the thread and optionally moves the
// ticket to status. Closed tickets accept no replies, and non-admin authors
// may only reply on their own tickets.
func (s *TicketService) AddReply(ctx context.Context, id string, author ReplyAuthor, content string, status *domain.TicketStatus) (*domain.TicketReply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errorutil.NewValidationError("reply content is required", nil)
	}
	if status != nil && !status.Valid() {
		return nil, errorutil.NewValidationError("unknown ticket status", map[string]any{"status": *status})
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, errorutil.NewValidationCode(errorutil.CodeTicketClosed, "ticket is closed")
	}
	if !author.Admin && (ticket.UserID == nil || *ticket.UserID != author.ID) {
		return nil, errorutil.NewForbidden("not your ticket")
	}

	reply := domain.TicketReply{
		ID:           uuid.NewString(),
		AuthorID:     author.ID,
		AuthorName:   author.Name,
		Content:      content,
		CreatedAt:    s.now().UTC(),
		IsAdminReply: author.Admin,
		IsUserReply:  !author.Admin,
	}
	if err := s.tickets.AppendReply(ctx, id, reply, status); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketReplyAdded,
		RecordID: id,
		ActorID:  author.ID,
		Payload: events.TicketReplyAddedPayload{
			ReplyID:      reply.ID,
			IsAdminReply: reply.IsAdminReply,
			Preview:      stringPreview(reply.Content, 120),
		},
	})
	if status != nil && *status != ticket.Status {
		s.publishStatus(ctx, author.ID, id, ticket.Status, *status)
	}
	return &reply, nil
}

// UpdateStatus sets the ticket status.
func (s *TicketService) UpdateStatus(ctx context.Context, actorID, id string, status domain.TicketStatus) (*domain.SupportTicket, error) {
	if !status.Valid() {
		return nil, errorutil.NewValidationError("unknown ticket status", map[string]any{"status": status})
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, id, map[string]any{"status": string(status)}); err != nil {
		return nil, err
	}
	if ticket.Status != status {
		s.publishStatus(ctx, actorID, id, ticket.Status, status)
	}
	return s.tickets.GetByID(ctx, id)
}

// Get loads one ticket.
func (s *TicketService) Get(ctx context.Context, id string) (*domain.SupportTicket, error) {
	return s.tickets.GetByID(ctx, id)
}

// GetForUser loads a ticket owned by uid.
func (s *TicketService) GetForUser(ctx context.Context, uid, id string) (*domain.SupportTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.UserID == nil || *ticket.UserID != uid {
		return nil, errorutil.NewNotFound("ticket", map[string]any{"id": id})
	}
	return ticket, nil
}

// List returns tickets newest first, optionally narrowed to one status.
func (s *TicketService) List(ctx context.Context, status domain.TicketStatus) ([]domain.SupportTicket, bool, error) {
	if status != "" && !status.Valid() {
		return nil, false, errorutil.NewValidationError("unknown ticket status", map[string]any{"status": status})
	}
	tickets, fromCache, err := s.tickets.List(ctx)
	if err != nil {
		return nil, false, err
	}
	return query.FilterTickets(tickets, status), fromCache, nil
}

// ForUser returns the tickets filed by uid, newest first.
func (s *TicketService) ForUser(ctx context.Context, uid string) ([]domain.SupportTicket, error) {
	tickets, _, err := s.tickets.List(ctx)
	if err != nil {
		return nil, err
	}
	return query.SortByCreatedAt(query.TicketsForUser(tickets, uid), query.TicketCreatedAt, query.Desc), nil
}

// WithRecentUserReplies returns tickets whose last reply came from the
// customer within RecentReplyWindow.
func (s *TicketService) WithRecentUserReplies(ctx context.Context) ([]domain.SupportTicket, error) {
	tickets, _, err := s.tickets.List(ctx)
	if err != nil {
		return nil, err
	}
	return query.WithRecentUserReplies(tickets, s.now(), RecentReplyWindow), nil
}

// Delete removes a ticket.
func (s *TicketService) Delete(ctx context.Context, id string) error {
	return s.tickets.Delete(ctx, id)
}

func (s *TicketService) publishStatus(ctx context.Context, actorID, id string, from, to domain.TicketStatus) {
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		RecordID: id,
		ActorID:  actorID,
		Payload:  events.TicketStatusChangedPayload{OldStatus: from, NewStatus: to},
	})
}
