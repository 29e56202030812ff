package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/query"
	"github.com/spec-kit/storefront/internal/repository"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
	"github.com/spec-kit/storefront/pkg/util/validate"
)

// FAQService manages the public FAQ list.
type FAQService struct {
	base
	faqs repository.FAQRepository
}

// FAQInput describes a new FAQ.
type FAQInput struct {
	Category domain.FAQCategory `json:"category" validate:"required"`
	Question string             `json:"question" validate:"required,max=500"`
	Answer   string             `json:"answer" validate:"required,max=5000"`
	Order    int                `json:"order" validate:"gte=0"`
	IsActive *bool              `json:"isActive"`
}

// FAQFilter narrows the admin FAQ list.
type FAQFilter struct {
	Category domain.FAQCategory
	Search   string
}

// NewFAQService constructs the service.
func NewFAQService(faqs repository.FAQRepository, logger *zap.Logger) *FAQService {
	return &FAQService{base: newBase(nil, logger, nil), faqs: faqs}
}

// Create adds an FAQ, active unless stated otherwise.
func (s *FAQService) Create(ctx context.Context, actorID string, input FAQInput) (*domain.FAQ, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if !input.Category.Valid() {
		return nil, errorutil.NewValidationError("unknown faq category", map[string]any{"category": input.Category})
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	faq := &domain.FAQ{
		Category:  input.Category,
		Question:  strings.TrimSpace(input.Question),
		Answer:    strings.TrimSpace(input.Answer),
		Order:     input.Order,
		IsActive:  active,
		CreatedBy: actorID,
	}
	if err := s.faqs.Create(ctx, faq); err != nil {
		return nil, err
	}
	return faq, nil
}

// Update merges partial into the FAQ.
func (s *FAQService) Update(ctx context.Context, id string, partial map[string]any) error {
	if len(partial) == 0 {
		return errorutil.NewValidationError("nothing to update", nil)
	}
	if raw, ok := partial["category"]; ok {
		c, _ := raw.(string)
		if !domain.FAQCategory(c).Valid() {
			return errorutil.NewValidationError("unknown faq category", map[string]any{"category": raw})
		}
	}
	return s.faqs.Update(ctx, id, partial)
}

// Delete removes an FAQ.
func (s *FAQService) Delete(ctx context.Context, id string) error {
	return s.faqs.Delete(ctx, id)
}

// Get loads one FAQ.
func (s *FAQService) Get(ctx context.Context, id string) (*domain.FAQ, error) {
	return s.faqs.GetByID(ctx, id)
}

// List returns every FAQ in display order, narrowed by filter.
func (s *FAQService) List(ctx context.Context, filter FAQFilter) ([]domain.FAQ, bool, error) {
	faqs, fromCache, err := s.faqs.List(ctx)
	if err != nil {
		return nil, false, err
	}
	return query.SearchFAQs(query.FilterFAQs(faqs, filter.Category), filter.Search), fromCache, nil
}

// Public returns active FAQs in display order.
func (s *FAQService) Public(ctx context.Context) ([]domain.FAQ, bool, error) {
	faqs, fromCache, err := s.faqs.List(ctx)
	if err != nil {
		return nil, false, err
	}
	return query.SortByOrder(query.ActiveFAQs(faqs), query.FAQOrder, query.Asc), fromCache, nil
}
