package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/events"
	"github.com/spec-kit/storefront/internal/query"
	"github.com/spec-kit/storefront/internal/repository"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
	"github.com/spec-kit/storefront/pkg/util/validate"
)

// OrderService coordinates order submission and review.
type OrderService struct {
	base
	orders   repository.OrderRepository
	products repository.ProductRepository
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	OrderRepo   repository.OrderRepository
	ProductRepo repository.ProductRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Clock       Clock
}

// OrderSubmitInput is the customer-supplied part of an order.
type OrderSubmitInput struct {
	SystemID     string `json:"systemId" validate:"required"`
	CustomerName string `json:"customerName" validate:"required,max=120"`
	BusinessName string `json:"businessName" validate:"required,max=120"`
	PhoneNumber  string `json:"phoneNumber" validate:"required,max=40"`
	Location     string `json:"location" validate:"required,max=200"`
	Email        string `json:"email" validate:"omitempty,email"`
	Notes        string `json:"notes" validate:"max=2000"`
}

// OrderFilter narrows the admin order list. Empty fields match everything.
type OrderFilter struct {
	Status domain.OrderStatus
	Search string
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	return &OrderService{
		base:     newBase(deps.Dispatcher, deps.Logger, deps.Clock),
		orders:   deps.OrderRepo,
		products: deps.ProductRepo,
	}
}

// CanTransition reports whether an order may move from one status to another.
// Only pending orders move, and only to approved or rejected.
func CanTransition(from, to domain.OrderStatus) bool {
	return from == domain.OrderStatusPending && (to == domain.OrderStatusApproved || to == domain.OrderStatusRejected)
}

// Submit records a pending order for the catalog system. userID is empty for
// guests.
func (s *OrderService) Submit(ctx context.Context, userID string, input OrderSubmitInput) (*domain.Order, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, input.SystemID)
	if err != nil {
		if errorutil.IsKind(err, errorutil.KindNotFound) {
			return nil, errorutil.NewValidationError("unknown system", map[string]any{"systemId": input.SystemID})
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, errorutil.NewValidationError("system is not available", map[string]any{"systemId": input.SystemID})
	}

	order := &domain.Order{
		SystemID:     product.ID,
		SystemName:   product.Name,
		SystemPrice:  product.Price,
		CustomerName: strings.TrimSpace(input.CustomerName),
		BusinessName: strings.TrimSpace(input.BusinessName),
		PhoneNumber:  strings.TrimSpace(input.PhoneNumber),
		Location:     strings.TrimSpace(input.Location),
		Email:        strings.TrimSpace(input.Email),
		Notes:        strings.TrimSpace(input.Notes),
		Status:       domain.OrderStatusPending,
		OrderDate:    s.now().UTC().Format(isoMillis),
	}
	if userID != "" {
		order.UserID = &userID
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventOrderSubmitted,
		RecordID: order.ID,
		ActorID:  userID,
		Payload: events.OrderSubmittedPayload{
			SystemID:   order.SystemID,
			SystemName: order.SystemName,
			Guest:      order.UserID == nil,
		},
	})
	return order, nil
}

// List returns orders newest first, narrowed by filter.
func (s *OrderService) List(ctx context.Context, filter OrderFilter) ([]domain.Order, bool, error) {
	orders, fromCache, err := s.orders.List(ctx)
	if err != nil {
		return nil, false, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, false, errorutil.NewValidationError("unknown order status", map[string]any{"status": filter.Status})
	}
	orders = query.SearchOrders(query.FilterOrders(orders, filter.Status), filter.Search)
	return orders, fromCache, nil
}

// ForUser returns the orders placed by uid, newest first.
func (s *OrderService) ForUser(ctx context.Context, uid string) ([]domain.Order, error) {
	orders, _, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	return query.SortByCreatedAt(query.OrdersForUser(orders, uid), query.OrderCreatedAt, query.Desc), nil
}

// Get loads one order.
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// UpdateStatus moves an order along the review lifecycle.
func (s *OrderService) UpdateStatus(ctx context.Context, actorID, id string, status domain.OrderStatus) (*domain.Order, error) {
	if err := s.Update(ctx, actorID, id, map[string]any{"status": string(status)}); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, id)
}

// Update merges partial into the order. A status key goes through the same
// transition guard as UpdateStatus.
func (s *OrderService) Update(ctx context.Context, actorID, id string, partial map[string]any) error {
	if len(partial) == 0 {
		return errorutil.NewValidationError("nothing to update", nil)
	}
	raw, hasStatus := partial["status"]
	if !hasStatus {
		return s.orders.Update(ctx, id, partial)
	}

	next, err := orderStatusOf(raw)
	if err != nil {
		return err
	}
	// The guard reads then writes without a precondition. Two reviewers
	// racing on one pending order can both pass it, and the later write wins.
	current, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(current.Status, next) {
		return errorutil.NewDomainError(errorutil.KindValidationFailure, errorutil.CodeInvalidTransition,
			"order status cannot change", map[string]any{"from": current.Status, "to": next})
	}
	if err := s.orders.Update(ctx, id, partial); err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventOrderStatusChanged,
		RecordID: id,
		ActorID:  actorID,
		Payload:  events.OrderStatusChangedPayload{OldStatus: current.Status, NewStatus: next},
	})
	return nil
}

// Delete removes an order.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	return s.orders.Delete(ctx, id)
}

// Recent returns the n newest orders.
func (s *OrderService) Recent(ctx context.Context, n int) ([]domain.Order, error) {
	return s.orders.Recent(ctx, n)
}

func orderStatusOf(v any) (domain.OrderStatus, error) {
	var status domain.OrderStatus
	switch t := v.(type) {
	case string:
		status = domain.OrderStatus(t)
	case domain.OrderStatus:
		status = t
	}
	if !status.Valid() {
		return "", errorutil.NewValidationError("unknown order status", map[string]any{"status": v})
	}
	return status, nil
}
