package repository

import (
	"context"

	"github.com/spec-kit/storefront/internal/domain"
)

// ProductRepository defines access to catalog systems.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, bool, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id string, partial map[string]any) error
	Delete(ctx context.Context, id string) error
}

type productRepository struct {
	coll collection[domain.Product]
}

// NewProductRepository returns a docstore-backed implementation.
func NewProductRepository(store DocumentStore) ProductRepository {
	return &productRepository{coll: collection[domain.Product]{store: store, name: domain.CollectionProducts}}
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, bool, error) {
	return r.coll.list(ctx, newestFirst)
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.coll.get(ctx, id)
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.Features == nil {
		product.Features = []string{}
	}
	id, err := r.coll.create(ctx, product)
	if err != nil {
		return err
	}
	product.ID = id
	return nil
}

func (r *productRepository) Update(ctx context.Context, id string, partial map[string]any) error {
	return r.coll.update(ctx, id, partial)
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	return r.coll.delete(ctx, id)
}
