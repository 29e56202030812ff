package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

func boolPtr(b bool) *bool { return &b }

func productNames(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestCatalogHidesInactiveButGetFindsIt(t *testing.T) {
	f := newFixture(t)
	svc := NewProductService(ProductDependencies{ProductRepo: f.products})
	ctx := context.Background()

	basic, err := svc.Create(ctx, "admin", ProductInput{Name: "Basic", Category: domain.ProductCategoryBasic, Price: 100, Order: 2})
	require.NoError(t, err)
	hidden, err := svc.Create(ctx, "admin", ProductInput{Name: "Hidden", Category: domain.ProductCategoryAdvanced, Price: 200, Order: 1, IsActive: boolPtr(false)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "admin", ProductInput{Name: "Pro", Category: domain.ProductCategoryProfessional, Price: 300, Order: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "admin", ProductInput{Name: "Pro Plus", Category: domain.ProductCategoryProfessional, Price: 350, Order: 1})
	require.NoError(t, err)

	catalog, _, err := svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pro Plus", "Pro", "Basic"}, productNames(catalog))

	got, err := svc.Get(ctx, hidden.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	active, err := svc.ToggleActive(ctx, basic.ID)
	require.NoError(t, err)
	assert.False(t, active)
	catalog, _, err = svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pro Plus", "Pro"}, productNames(catalog))

	inactive, _, err := svc.List(ctx, ProductFilter{Value: "inactive"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Basic", "Hidden"}, productNames(inactive))
	pro, _, err := svc.List(ctx, ProductFilter{Value: "professional", Search: "plus"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pro Plus"}, productNames(pro))
}

func TestProductValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewProductService(ProductDependencies{ProductRepo: f.products})
	ctx := context.Background()

	_, err := svc.Create(ctx, "admin", ProductInput{Name: "X", Category: "gold"})
	assert.True(t, errorutil.IsKind(err, errorutil.KindValidationFailure))
	_, err = svc.Create(ctx, "admin", ProductInput{Name: "X", Category: domain.ProductCategoryBasic, Price: -1})
	assert.True(t, errorutil.IsKind(err, errorutil.KindValidationFailure))

	p, err := svc.Create(ctx, "admin", ProductInput{Name: "X", Category: domain.ProductCategoryBasic})
	require.NoError(t, err)
	assert.True(t, errorutil.IsKind(svc.Update(ctx, p.ID, map[string]any{"category": "gold"}), errorutil.KindValidationFailure))
	assert.True(t, errorutil.IsKind(svc.Update(ctx, p.ID, map[string]any{"isActive": "yes"}), errorutil.KindValidationFailure))
	require.NoError(t, svc.Update(ctx, p.ID, map[string]any{"price": 50.5, "features": []string{"POS", "Reports"}}))

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.5, got.Price)
	assert.Equal(t, []string{"POS", "Reports"}, got.Features)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.True(t, errorutil.IsKind(err, errorutil.KindNotFound))
}

func TestFAQPublicAndFilters(t *testing.T) {
	f := newFixture(t)
	svc := NewFAQService(f.faqs, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "admin", FAQInput{Category: domain.FAQCategoryPricing, Question: "How much?", Answer: "From 100", Order: 2})
	require.NoError(t, err)
	draft, err := svc.Create(ctx, "admin", FAQInput{Category: domain.FAQCategorySupport, Question: "Hours?", Answer: "24/7", Order: 0, IsActive: boolPtr(false)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "admin", FAQInput{Category: domain.FAQCategoryTechnical, Question: "Offline mode?", Answer: "Yes, cached", Order: 1})
	require.NoError(t, err)

	public, _, err := svc.Public(ctx)
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, "Offline mode?", public[0].Question)
	assert.Equal(t, "How much?", public[1].Question)

	all, _, err := svc.List(ctx, FAQFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	found, _, err := svc.List(ctx, FAQFilter{Search: "cached"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	support, _, err := svc.List(ctx, FAQFilter{Category: domain.FAQCategorySupport})
	require.NoError(t, err)
	require.Len(t, support, 1)
	assert.Equal(t, draft.ID, support[0].ID)

	require.NoError(t, svc.Update(ctx, draft.ID, map[string]any{"isActive": true}))
	public, _, err = svc.Public(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hours?", public[0].Question)

	assert.True(t, errorutil.IsKind(svc.Update(ctx, draft.ID, map[string]any{"category": "sales"}), errorutil.KindValidationFailure))
	_, err = svc.Create(ctx, "admin", FAQInput{Category: "sales", Question: "q", Answer: "a"})
	assert.True(t, errorutil.IsKind(err, errorutil.KindValidationFailure))
}
