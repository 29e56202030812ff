package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/api/dto"
	"github.com/spec-kit/storefront/internal/service"
)

// BackupsHandler exposes backup, restore and export.
type BackupsHandler struct {
	backups *service.BackupService
}

// NewBackupsHandler constructs handler.
func NewBackupsHandler(backups *service.BackupService) *BackupsHandler {
	return &BackupsHandler{backups: backups}
}

// Create POST /admin/backups. With ?download=true the response is the
// backup file itself.
func (h *BackupsHandler) Create(c *fiber.Ctx) error {
	bundle, file, err := h.backups.CreateBackup(c.UserContext(), nil)
	if err != nil {
		return err
	}
	if download, _ := strconv.ParseBool(c.Query("download")); download {
		return sendJSONFile(c, fmt.Sprintf("%s.json", bundle.ID), file)
	}
	counts := make(map[string]int, len(bundle.Data))
	for name, docs := range bundle.Data {
		counts[name] = len(docs)
	}
	return respond(c, fiber.StatusCreated, dto.BackupCreatedResponse{
		ID:          bundle.ID,
		Timestamp:   bundle.Timestamp,
		Version:     bundle.Version,
		RecordCount: counts,
	})
}

// History GET /admin/backups.
func (h *BackupsHandler) History(c *fiber.Ctx) error {
	history, err := h.backups.History(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, history)
}

// Restore POST /admin/backups/:id/restore.
func (h *BackupsHandler) Restore(c *fiber.Ctx) error {
	restored, err := h.backups.RestoreByID(c.UserContext(), c.Params("id"), nil)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.RestoreResponse{Restored: restored})
}

// Import POST /admin/backups/import restores an uploaded backup file sent as
// the raw request body.
func (h *BackupsHandler) Import(c *fiber.Ctx) error {
	bundle, err := service.ParseBundle(c.Body())
	if err != nil {
		return err
	}
	restored, err := h.backups.RestoreBackup(c.UserContext(), bundle, nil)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.RestoreResponse{Restored: restored})
}

// Cleanup POST /admin/backups/cleanup.
func (h *BackupsHandler) Cleanup(c *fiber.Ctx) error {
	var req dto.CleanupRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	removed, err := h.backups.CleanupOldBackups(c.UserContext(), req.MaxAgeDays)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{"removed": removed})
}

// Export GET /admin/export downloads products, users, orders and tickets.
func (h *BackupsHandler) Export(c *fiber.Ctx) error {
	file, err := h.backups.ExportData(c.UserContext())
	if err != nil {
		return err
	}
	return sendJSONFile(c, "export.json", file)
}

func sendJSONFile(c *fiber.Ctx, name string, body []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Send(body)
}
