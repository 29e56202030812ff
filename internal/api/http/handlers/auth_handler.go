package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/api/dto"
	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/domain"
)

// AuthHandler exposes sign-up, sign-in, sign-out and password change.
type AuthHandler struct {
	auth *auth.Authenticator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(a *auth.Authenticator) *AuthHandler {
	return &AuthHandler{auth: a}
}

// SignUp handles POST /auth/sign-up.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	session, err := h.auth.SignUp(c.UserContext(), req.Email, req.Password, auth.Profile{
		DisplayName:  req.DisplayName,
		Phone:        req.Phone,
		Address:      req.Address,
		BusinessName: req.BusinessName,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, sessionResponse(session))
}

// SignIn handles POST /auth/sign-in.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	session, err := h.auth.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, sessionResponse(session))
}

// SignOut handles POST /auth/sign-out. Tokens are stateless, so the client
// drops its copy and the token lapses at expiry.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	if _, err := requireSession(c); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ChangePassword handles POST /auth/password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.UserContext(), session, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func sessionResponse(s *domain.Session) dto.SessionResponse {
	return dto.SessionResponse{UID: s.UID, Email: s.Email, Token: s.Token, ExpiresAt: s.ExpiresAt}
}
