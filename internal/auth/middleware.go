package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/permission"
	apperrors "github.com/spec-kit/storefront/pkg/util/errorutil"
)

const sessionKey = "auth_session"

// PermissionChecker answers section/action checks for a user id.
type PermissionChecker interface {
	Check(ctx context.Context, userID string, section permission.Section, action permission.Action) bool
}

// Middleware validates bearer tokens and stores the session on the request.
type Middleware struct {
	auth *Authenticator
}

// NewMiddleware constructs middleware.
func NewMiddleware(a *Authenticator) *Middleware {
	return &Middleware{auth: a}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	return m.attach(c, authHeader)
}

// Optional attaches a session when a header is present. A bad token is
// still rejected.
func (m *Middleware) Optional(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Next()
	}
	return m.attach(c, authHeader)
}

func (m *Middleware) attach(c *fiber.Ctx, authHeader string) error {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}
	session, err := m.auth.Session(strings.TrimSpace(parts[1]))
	if err != nil {
		return err
	}
	c.Locals(sessionKey, session)
	return c.Next()
}

// SessionFromContext retrieves the authenticated session.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	session, ok := c.Locals(sessionKey).(*domain.Session)
	return session, ok && session != nil
}

// RequirePermission allows the request only when the session's user holds
// the capability.
func RequirePermission(checker PermissionChecker, section permission.Section, action permission.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !checker.Check(c.UserContext(), session.UID, section, action) {
			return apperrors.NewForbidden("missing permission " + string(section) + "." + string(action))
		}
		return c.Next()
	}
}
