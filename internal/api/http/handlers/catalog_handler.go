package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/service"
)

// CatalogHandler serves the public product catalog and FAQs.
type CatalogHandler struct {
	products *service.ProductService
	faqs     *service.FAQService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(products *service.ProductService, faqs *service.FAQService) *CatalogHandler {
	return &CatalogHandler{products: products, faqs: faqs}
}

// Products GET /catalog/products.
func (h *CatalogHandler) Products(c *fiber.Ctx) error {
	products, fromCache, err := h.products.Catalog(c.UserContext())
	if err != nil {
		return err
	}
	return respondList(c, products, fromCache)
}

// Product GET /catalog/products/:id. Inactive products are still served so
// existing links keep working.
func (h *CatalogHandler) Product(c *fiber.Ctx) error {
	product, err := h.products.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, product)
}

// FAQs GET /catalog/faqs.
func (h *CatalogHandler) FAQs(c *fiber.Ctx) error {
	faqs, fromCache, err := h.faqs.Public(c.UserContext())
	if err != nil {
		return err
	}
	return respondList(c, faqs, fromCache)
}
