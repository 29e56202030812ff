package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/events"
	"github.com/spec-kit/storefront/internal/permission"
	"github.com/spec-kit/storefront/internal/query"
	"github.com/spec-kit/storefront/internal/repository"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
	"github.com/spec-kit/storefront/pkg/util/validate"
)

// UserService manages profiles, roles and permission overrides.
type UserService struct {
	base
	users repository.UserRepository
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// ProfileUpdate lists the fields a user may change on their own profile.
// Nil fields are left alone.
type ProfileUpdate struct {
	DisplayName  *string `json:"displayName" validate:"omitempty,max=120"`
	Phone        *string `json:"phone" validate:"omitempty,max=40"`
	Address      *string `json:"address" validate:"omitempty,max=300"`
	BusinessName *string `json:"businessName" validate:"omitempty,max=120"`
}

// UserFilter narrows the admin user list.
type UserFilter struct {
	Role   string
	Search string
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		base:  newBase(deps.Dispatcher, deps.Logger, deps.Clock),
		users: deps.UserRepo,
	}
}

// Profile loads users/{uid}.
func (s *UserService) Profile(ctx context.Context, uid string) (*domain.User, error) {
	return s.users.GetByID(ctx, uid)
}

// UpdateProfile writes the self-service profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, uid string, update ProfileUpdate) (*domain.User, error) {
	if err := validate.Struct(update); err != nil {
		return nil, err
	}
	partial := map[string]any{}
	set := func(key string, v *string) {
		if v != nil {
			partial[key] = strings.TrimSpace(*v)
		}
	}
	set("displayName", update.DisplayName)
	set("phone", update.Phone)
	set("address", update.Address)
	set("businessName", update.BusinessName)
	if len(partial) == 0 {
		return nil, errorutil.NewValidationError("nothing to update", nil)
	}
	if err := s.users.Update(ctx, uid, partial); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, uid)
}

// ChangeRole assigns a role and records when and why.
func (s *UserService) ChangeRole(ctx context.Context, actorID, userID, role, reason string) (*domain.User, error) {
	if !domain.KnownRole(role) {
		return nil, errorutil.NewValidationError("unknown role", map[string]any{"role": role})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	old := user.EffectiveRole()
	err = s.users.Update(ctx, userID, map[string]any{
		"role":             role,
		"roleChangedAt":    s.now().UTC(),
		"roleChangeReason": strings.TrimSpace(reason),
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventUserRoleChanged,
		RecordID: userID,
		ActorID:  actorID,
		Payload:  events.UserRoleChangedPayload{OldRole: old, NewRole: role, Reason: reason},
	})
	return s.users.GetByID(ctx, userID)
}

// SavePermissions stores the role and the full override matrix. Pairs outside
// the capability matrix are rejected.
func (s *UserService) SavePermissions(ctx context.Context, actorID, userID, role string, overrides permission.Overrides) (*domain.User, error) {
	for section, actions := range overrides {
		for action := range actions {
			if !(permission.Capability{Section: section, Action: action}).Valid() {
				return nil, errorutil.NewValidationError("unknown capability",
					map[string]any{"section": section, "action": action})
			}
		}
	}
	if role != "" {
		if !domain.KnownRole(role) {
			return nil, errorutil.NewValidationError("unknown role", map[string]any{"role": role})
		}
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	partial := map[string]any{"customPermissions": overrides}
	if role != "" && role != user.EffectiveRole() {
		partial["role"] = role
		partial["roleChangedAt"] = s.now().UTC()
	}
	if err := s.users.Update(ctx, userID, partial); err != nil {
		return nil, err
	}
	if _, changed := partial["role"]; changed {
		s.publish(ctx, events.Event{
			Type:     events.EventUserRoleChanged,
			RecordID: userID,
			ActorID:  actorID,
			Payload:  events.UserRoleChangedPayload{OldRole: user.EffectiveRole(), NewRole: role},
		})
	}
	return s.users.GetByID(ctx, userID)
}

// List returns users newest first, narrowed by filter.
func (s *UserService) List(ctx context.Context, filter UserFilter) ([]domain.User, bool, error) {
	users, fromCache, err := s.users.List(ctx)
	if err != nil {
		return nil, false, err
	}
	return query.SearchUsers(query.FilterUsers(users, filter.Role), filter.Search), fromCache, nil
}

// Delete removes a profile. The credential is left in place.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	return s.users.Delete(ctx, userID)
}
