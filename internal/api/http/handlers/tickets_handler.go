package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/api/dto"
	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/service"
)

// TicketsHandler manages support ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	users   *service.UserService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, users *service.UserService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, users: users}
}

// Create POST /tickets. Guests may file tickets with contact info.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req service.TicketCreateInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	var requester service.Requester
	if session, ok := auth.SessionFromContext(c); ok {
		requester = service.Requester{UID: session.UID, Email: session.Email}
	}
	ticket, err := h.tickets.Create(c.UserContext(), requester, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, ticket)
}

// Mine GET /me/tickets.
func (h *TicketsHandler) Mine(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.ForUser(c.UserContext(), session.UID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, tickets)
}

// MineOne GET /me/tickets/:id. Other users' tickets read as not found.
func (h *TicketsHandler) MineOne(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetForUser(c.UserContext(), session.UID, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, ticket)
}

// Reply POST /tickets/:id/replies, the owner's side of the conversation.
func (h *TicketsHandler) Reply(c *fiber.Ctx) error {
	return h.reply(c, false)
}

// AdminReply POST /admin/tickets/:id/replies.
func (h *TicketsHandler) AdminReply(c *fiber.Ctx) error {
	return h.reply(c, true)
}

func (h *TicketsHandler) reply(c *fiber.Ctx, admin bool) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.TicketReplyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	author := service.ReplyAuthor{ID: session.UID, Name: h.authorName(c, session), Admin: admin}
	reply, err := h.tickets.AddReply(c.UserContext(), c.Params("id"), author, req.Content, req.Status)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, reply)
}

// authorName prefers the profile display name and falls back to the email.
func (h *TicketsHandler) authorName(c *fiber.Ctx, session *domain.Session) string {
	if h.users != nil {
		if user, err := h.users.Profile(c.UserContext(), session.UID); err == nil && user.DisplayName != "" {
			return user.DisplayName
		}
	}
	return session.Email
}

// List GET /admin/tickets?status=&recent=true. recent keeps tickets with a
// fresh customer reply.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	if recent, _ := strconv.ParseBool(c.Query("recent")); recent {
		tickets, err := h.tickets.WithRecentUserReplies(c.UserContext())
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusOK, tickets)
	}
	tickets, fromCache, err := h.tickets.List(c.UserContext(), domain.TicketStatus(c.Query("status")))
	if err != nil {
		return err
	}
	return respondList(c, tickets, fromCache)
}

// Get GET /admin/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, ticket)
}

// UpdateStatus PATCH /admin/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.TicketStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.UpdateStatus(c.UserContext(), session.UID, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, ticket)
}

// Delete DELETE /admin/tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.tickets.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
