package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/api/dto"
	"github.com/spec-kit/storefront/internal/permission"
	"github.com/spec-kit/storefront/internal/service"
)

// UsersHandler exposes staff user management.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// List GET /admin/users?role=&search=.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, fromCache, err := h.users.List(c.UserContext(), service.UserFilter{
		Role:   c.Query("role"),
		Search: c.Query("search"),
	})
	if err != nil {
		return err
	}
	return respondList(c, users, fromCache)
}

// ChangeRole PATCH /admin/users/:id/role.
func (h *UsersHandler) ChangeRole(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.RoleChangeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.ChangeRole(c.UserContext(), session.UID, c.Params("id"), req.Role, req.Reason)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, user)
}

// SavePermissions PUT /admin/users/:id/permissions.
func (h *UsersHandler) SavePermissions(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.PermissionsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.SavePermissions(c.UserContext(), session.UID, c.Params("id"), req.Role, req.Permissions)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, user)
}

// RoleDefaults GET /admin/roles/:role/permissions seeds the override editor.
func (h *UsersHandler) RoleDefaults(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, permission.RoleDefaults(c.Params("role")))
}

// Delete DELETE /admin/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
