package repository

import (
	"context"

	"github.com/spec-kit/storefront/internal/domain"
)

// OrderRepository defines access to orders.
type OrderRepository interface {
	List(ctx context.Context) ([]domain.Order, bool, error)
	Recent(ctx context.Context, n int) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Create(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, id string, partial map[string]any) error
	Delete(ctx context.Context, id string) error
}

type orderRepository struct {
	coll collection[domain.Order]
}

// NewOrderRepository returns a docstore-backed implementation.
func NewOrderRepository(store DocumentStore) OrderRepository {
	return &orderRepository{coll: collection[domain.Order]{store: store, name: domain.CollectionOrders}}
}

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, bool, error) {
	return r.coll.list(ctx, newestFirst)
}

func (r *orderRepository) Recent(ctx context.Context, n int) ([]domain.Order, error) {
	opts := newestFirst
	opts.Limit = n
	orders, _, err := r.coll.list(ctx, opts)
	return orders, err
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.coll.get(ctx, id)
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	id, err := r.coll.create(ctx, order)
	if err != nil {
		return err
	}
	order.ID = id
	return nil
}

func (r *orderRepository) Update(ctx context.Context, id string, partial map[string]any) error {
	return r.coll.update(ctx, id, partial)
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	return r.coll.delete(ctx, id)
}
