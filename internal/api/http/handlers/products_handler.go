package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/api/dto"
	"github.com/spec-kit/storefront/internal/service"
)

// ProductsHandler manages the catalog for staff.
type ProductsHandler struct {
	products *service.ProductService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(products *service.ProductService) *ProductsHandler {
	return &ProductsHandler{products: products}
}

// List GET /admin/products?filter=&search=.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	products, fromCache, err := h.products.List(c.UserContext(), service.ProductFilter{
		Value:  c.Query("filter"),
		Search: c.Query("search"),
	})
	if err != nil {
		return err
	}
	return respondList(c, products, fromCache)
}

// Create POST /admin/products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req service.ProductInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product, err := h.products.Create(c.UserContext(), session.UID, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, product)
}

// Update PATCH /admin/products/:id with a partial document.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	var partial map[string]any
	if err := parseBody(c, &partial); err != nil {
		return err
	}
	id := c.Params("id")
	if err := h.products.Update(c.UserContext(), id, partial); err != nil {
		return err
	}
	product, err := h.products.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, product)
}

// Toggle POST /admin/products/:id/toggle flips the active flag.
func (h *ProductsHandler) Toggle(c *fiber.Ctx) error {
	id := c.Params("id")
	active, err := h.products.ToggleActive(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.ToggleResponse{ID: id, IsActive: active})
}

// Delete DELETE /admin/products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	if err := h.products.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
