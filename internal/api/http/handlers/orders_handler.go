package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/api/dto"
	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/service"
)

// OrdersHandler manages order endpoints for customers and staff.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orders *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// Submit POST /orders. Guests may order; a bearer token links the order.
func (h *OrdersHandler) Submit(c *fiber.Ctx) error {
	var req service.OrderSubmitInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	userID := ""
	if session, ok := auth.SessionFromContext(c); ok {
		userID = session.UID
	}
	order, err := h.orders.Submit(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, order)
}

// Mine GET /me/orders.
func (h *OrdersHandler) Mine(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	orders, err := h.orders.ForUser(c.UserContext(), session.UID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, orders)
}

// List GET /admin/orders?status=&search=.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	orders, fromCache, err := h.orders.List(c.UserContext(), service.OrderFilter{
		Status: domain.OrderStatus(c.Query("status")),
		Search: c.Query("search"),
	})
	if err != nil {
		return err
	}
	return respondList(c, orders, fromCache)
}

// UpdateStatus PATCH /admin/orders/:id/status.
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.OrderStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	order, err := h.orders.UpdateStatus(c.UserContext(), session.UID, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, order)
}

// Delete DELETE /admin/orders/:id.
func (h *OrdersHandler) Delete(c *fiber.Ctx) error {
	if err := h.orders.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
