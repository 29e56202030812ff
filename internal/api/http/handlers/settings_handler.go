package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/api/dto"
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/service"
)

// SettingsHandler reads and writes the system settings record.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get GET /admin/settings.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.settings.Load(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, settings)
}

// UpdateKey PATCH /admin/settings/:key merges one value.
func (h *SettingsHandler) UpdateKey(c *fiber.Ctx) error {
	var req dto.SettingRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.settings.UpdateSetting(c.UserContext(), c.Params("key"), req.Value); err != nil {
		return err
	}
	return h.Get(c)
}

// SaveAll PUT /admin/settings replaces the whole record.
func (h *SettingsHandler) SaveAll(c *fiber.Ctx) error {
	var req domain.Settings
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.settings.SaveAll(c.UserContext(), req); err != nil {
		return err
	}
	return h.Get(c)
}

// Reset POST /admin/settings/reset restores the defaults.
func (h *SettingsHandler) Reset(c *fiber.Ctx) error {
	settings, err := h.settings.Reset(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, settings)
}
