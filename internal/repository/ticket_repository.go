package repository

import (
	"context"

	"github.com/spec-kit/storefront/internal/docstore"
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

// TicketRepository encapsulates support ticket persistence.
type TicketRepository interface {
	List(ctx context.Context) ([]domain.SupportTicket, bool, error)
	GetByID(ctx context.Context, id string) (*domain.SupportTicket, error)
	Create(ctx context.Context, ticket *domain.SupportTicket) error
	Update(ctx context.Context, id string, partial map[string]any) error
	// AppendReply adds reply at the end of the thread and optionally moves
	// the ticket to status in the same write.
	AppendReply(ctx context.Context, id string, reply domain.TicketReply, status *domain.TicketStatus) error
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	coll collection[domain.SupportTicket]
}

// NewTicketRepository returns a docstore-backed implementation.
func NewTicketRepository(store DocumentStore) TicketRepository {
	return &ticketRepository{coll: collection[domain.SupportTicket]{store: store, name: domain.CollectionSupportTickets}}
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.SupportTicket, bool, error) {
	return r.coll.list(ctx, newestFirst)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.SupportTicket, error) {
	return r.coll.get(ctx, id)
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.SupportTicket) error {
	if ticket.Replies == nil {
		ticket.Replies = []domain.TicketReply{}
	}
	id, err := r.coll.create(ctx, ticket)
	if err != nil {
		return err
	}
	ticket.ID = id
	return nil
}

func (r *ticketRepository) Update(ctx context.Context, id string, partial map[string]any) error {
	return r.coll.update(ctx, id, partial)
}

func (r *ticketRepository) AppendReply(ctx context.Context, id string, reply domain.TicketReply, status *domain.TicketStatus) error {
	encoded, err := docstore.Encode(reply)
	if err != nil {
		return errorutil.NewValidationError("reply is not encodable", map[string]any{"reason": err.Error()})
	}
	partial := map[string]any{"replies": docstore.ArrayUnion(map[string]any(encoded))}
	if status != nil {
		partial["status"] = string(*status)
	}
	return r.coll.update(ctx, id, partial)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	return r.coll.delete(ctx, id)
}
