package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

// Provisioner performs explicit, operator-driven role grants.
type Provisioner struct {
	profiles ProfileStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewProvisioner builds a provisioner.
func NewProvisioner(profiles ProfileStore, logger *zap.Logger) *Provisioner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provisioner{profiles: profiles, logger: logger, now: time.Now}
}

// PromoteSuperAdmin makes userID a super_admin, creating the profile when it
// does not exist. Promoting an existing super_admin is a no-op.
func (p *Provisioner) PromoteSuperAdmin(ctx context.Context, userID string) error {
	if userID == "" {
		return errorutil.NewValidationError("user id is required", nil)
	}
	user, err := p.profiles.GetByID(ctx, userID)
	switch {
	case err == nil:
		if user.Role == domain.RoleSuperAdmin {
			p.logger.Info("user already super_admin", zap.String("user_id", userID))
			return nil
		}
	case errorutil.IsKind(err, errorutil.KindNotFound):
		user = &domain.User{ID: userID, AuthUID: userID}
	default:
		return err
	}

	changedAt := p.now().UTC()
	user.ID = userID
	user.Role = domain.RoleSuperAdmin
	user.RoleChangedAt = &changedAt
	user.RoleChangeReason = "provisioned"
	if err := p.profiles.Save(ctx, user); err != nil {
		return err
	}
	p.logger.Info("promoted user to super_admin", zap.String("user_id", userID))
	return nil
}
