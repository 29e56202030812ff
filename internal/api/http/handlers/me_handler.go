package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/api/dto"
	"github.com/spec-kit/storefront/internal/permission"
	"github.com/spec-kit/storefront/internal/service"
)

// AdminChecker decides whether a user may open the admin console.
type AdminChecker interface {
	IsAdmin(ctx context.Context, uid string) bool
}

// MeHandler serves the signed-in user's own profile and menu affordances.
type MeHandler struct {
	users    *service.UserService
	resolver *permission.Resolver
	admins   AdminChecker
}

// NewMeHandler constructs handler.
func NewMeHandler(users *service.UserService, resolver *permission.Resolver, admins AdminChecker) *MeHandler {
	return &MeHandler{users: users, resolver: resolver, admins: admins}
}

// Profile GET /me.
func (h *MeHandler) Profile(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	user, err := h.users.Profile(c.UserContext(), session.UID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.ProfileResponse{
		User:    user,
		IsAdmin: h.admins.IsAdmin(c.UserContext(), session.UID),
	})
}

// UpdateProfile PATCH /me.
func (h *MeHandler) UpdateProfile(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req service.ProfileUpdate
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.UserContext(), session.UID, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, user)
}

// Permissions GET /me/permissions returns which admin menus to show.
func (h *MeHandler) Permissions(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, h.resolver.ApplyUI(c.UserContext(), session.UID))
}
