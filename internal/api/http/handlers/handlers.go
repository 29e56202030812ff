// Package handlers implements the fiber endpoints. Handlers return
// errorutil errors and let the error middleware render them.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/domain"
	apperrors "github.com/spec-kit/storefront/pkg/util/errorutil"
)

func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"data": data})
}

// respondList adds the fromCache flag so clients can mark stale snapshots.
func respondList(c *fiber.Ctx, items any, fromCache bool) error {
	return c.JSON(fiber.Map{"data": items, "fromCache": fromCache})
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
	}
	return nil
}

func requireSession(c *fiber.Ctx) (*domain.Session, error) {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return session, nil
}
