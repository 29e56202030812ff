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

// ProductService manages the catalog.
type ProductService struct {
	base
	products repository.ProductRepository
}

// ProductDependencies bundles collaborators for the product service.
type ProductDependencies struct {
	ProductRepo repository.ProductRepository
	Logger      *zap.Logger
}

// ProductInput describes a new catalog system.
type ProductInput struct {
	Name          string                 `json:"name" validate:"required,max=200"`
	Description   string                 `json:"description" validate:"max=5000"`
	Category      domain.ProductCategory `json:"category" validate:"required"`
	Price         float64                `json:"price" validate:"gte=0"`
	OriginalPrice *float64               `json:"originalPrice" validate:"omitempty,gte=0"`
	Image         string                 `json:"image" validate:"max=2000"`
	Features      []string               `json:"features" validate:"dive,max=500"`
	Gallery       []string               `json:"gallery" validate:"dive,max=2000"`
	Videos        []string               `json:"videos" validate:"dive,max=2000"`
	Order         int                    `json:"order" validate:"gte=0"`
	IsActive      *bool                  `json:"isActive"`
}

// ProductFilter narrows the admin product list. Value is a category,
// "active" or "inactive".
type ProductFilter struct {
	Value  string
	Search string
}

// NewProductService constructs the service.
func NewProductService(deps ProductDependencies) *ProductService {
	return &ProductService{
		base:     newBase(nil, deps.Logger, nil),
		products: deps.ProductRepo,
	}
}

// Create adds a product. New products are active unless stated otherwise.
func (s *ProductService) Create(ctx context.Context, actorID string, input ProductInput) (*domain.Product, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if !input.Category.Valid() {
		return nil, errorutil.NewValidationError("unknown product category", map[string]any{"category": input.Category})
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	product := &domain.Product{
		Name:          strings.TrimSpace(input.Name),
		Description:   strings.TrimSpace(input.Description),
		Category:      input.Category,
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		Image:         input.Image,
		Features:      input.Features,
		Gallery:       input.Gallery,
		Videos:        input.Videos,
		Order:         input.Order,
		IsActive:      active,
		CreatedBy:     actorID,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update merges partial into the product.
func (s *ProductService) Update(ctx context.Context, id string, partial map[string]any) error {
	if len(partial) == 0 {
		return errorutil.NewValidationError("nothing to update", nil)
	}
	if raw, ok := partial["category"]; ok {
		c, _ := raw.(string)
		if !domain.ProductCategory(c).Valid() {
			return errorutil.NewValidationError("unknown product category", map[string]any{"category": raw})
		}
	}
	if raw, ok := partial["isActive"]; ok {
		if _, isBool := raw.(bool); !isBool {
			return errorutil.NewValidationError("isActive must be a boolean", nil)
		}
	}
	return s.products.Update(ctx, id, partial)
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

// ToggleActive flips catalog visibility and returns the new value.
func (s *ProductService) ToggleActive(ctx context.Context, id string) (bool, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	next := !product.IsActive
	if err := s.products.Update(ctx, id, map[string]any{"isActive": next}); err != nil {
		return false, err
	}
	return next, nil
}

// Get loads one product whether or not it is active.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// Catalog returns active products by display order, newest first within the
// same order.
func (s *ProductService) Catalog(ctx context.Context) ([]domain.Product, bool, error) {
	products, fromCache, err := s.products.List(ctx)
	if err != nil {
		return nil, false, err
	}
	active := query.ActiveProducts(products)
	active = query.SortByCreatedAt(active, query.ProductCreatedAt, query.Desc)
	return query.SortByOrder(active, query.ProductOrder, query.Asc), fromCache, nil
}

// List returns every product for the admin console.
func (s *ProductService) List(ctx context.Context, filter ProductFilter) ([]domain.Product, bool, error) {
	products, fromCache, err := s.products.List(ctx)
	if err != nil {
		return nil, false, err
	}
	return query.SearchProducts(query.FilterProducts(products, filter.Value), filter.Search), fromCache, nil
}
