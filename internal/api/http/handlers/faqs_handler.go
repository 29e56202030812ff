package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/service"
)

// FAQsHandler manages FAQs for staff.
type FAQsHandler struct {
	faqs *service.FAQService
}

// NewFAQsHandler constructs handler.
func NewFAQsHandler(faqs *service.FAQService) *FAQsHandler {
	return &FAQsHandler{faqs: faqs}
}

// List GET /admin/faqs?category=&search=.
func (h *FAQsHandler) List(c *fiber.Ctx) error {
	faqs, fromCache, err := h.faqs.List(c.UserContext(), service.FAQFilter{
		Category: domain.FAQCategory(c.Query("category")),
		Search:   c.Query("search"),
	})
	if err != nil {
		return err
	}
	return respondList(c, faqs, fromCache)
}

// Create POST /admin/faqs.
func (h *FAQsHandler) Create(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req service.FAQInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	faq, err := h.faqs.Create(c.UserContext(), session.UID, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, faq)
}

// Update PATCH /admin/faqs/:id.
func (h *FAQsHandler) Update(c *fiber.Ctx) error {
	var partial map[string]any
	if err := parseBody(c, &partial); err != nil {
		return err
	}
	id := c.Params("id")
	if err := h.faqs.Update(c.UserContext(), id, partial); err != nil {
		return err
	}
	faq, err := h.faqs.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, faq)
}

// Delete DELETE /admin/faqs/:id.
func (h *FAQsHandler) Delete(c *fiber.Ctx) error {
	if err := h.faqs.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
