package repository

import (
	"context"

	"github.com/spec-kit/storefront/internal/docstore"
	"github.com/spec-kit/storefront/internal/domain"
)

// FAQRepository defines access to FAQs.
type FAQRepository interface {
	List(ctx context.Context) ([]domain.FAQ, bool, error)
	GetByID(ctx context.Context, id string) (*domain.FAQ, error)
	Create(ctx context.Context, faq *domain.FAQ) error
	Update(ctx context.Context, id string, partial map[string]any) error
	Delete(ctx context.Context, id string) error
}

type faqRepository struct {
	coll collection[domain.FAQ]
}

// NewFAQRepository returns a docstore-backed implementation.
func NewFAQRepository(store DocumentStore) FAQRepository {
	return &faqRepository{coll: collection[domain.FAQ]{store: store, name: domain.CollectionFAQs}}
}

func (r *faqRepository) List(ctx context.Context) ([]domain.FAQ, bool, error) {
	return r.coll.list(ctx, docstore.ListOptions{OrderBy: &docstore.OrderBy{Field: "order", Direction: docstore.Asc}})
}

func (r *faqRepository) GetByID(ctx context.Context, id string) (*domain.FAQ, error) {
	return r.coll.get(ctx, id)
}

func (r *faqRepository) Create(ctx context.Context, faq *domain.FAQ) error {
	id, err := r.coll.create(ctx, faq)
	if err != nil {
		return err
	}
	faq.ID = id
	return nil
}

func (r *faqRepository) Update(ctx context.Context, id string, partial map[string]any) error {
	return r.coll.update(ctx, id, partial)
}

func (r *faqRepository) Delete(ctx context.Context, id string) error {
	return r.coll.delete(ctx, id)
}
