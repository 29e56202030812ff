package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/events"
	"github.com/spec-kit/storefront/internal/permission"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

func newUserService(f *fixture) *UserService {
	return NewUserService(UserDependencies{UserRepo: f.users, Dispatcher: f.events, Clock: f.clock.Now})
}

func strPtr(s string) *string { return &s }

func TestUpdateProfileOnlyTouchesProfileFields(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	ctx := context.Background()
	require.NoError(t, f.users.Save(ctx, &domain.User{ID: "u1", Email: "u1@example.com", Role: domain.RoleUser}))

	user, err := svc.UpdateProfile(ctx, "u1", ProfileUpdate{DisplayName: strPtr(" Sara "), Phone: strPtr("0500")})
	require.NoError(t, err)
	assert.Equal(t, "Sara", user.DisplayName)
	assert.Equal(t, "0500", user.Phone)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, "u1@example.com", user.Email)

	_, err = svc.UpdateProfile(ctx, "u1", ProfileUpdate{})
	assert.True(t, errorutil.IsKind(err, errorutil.KindValidationFailure))
	_, err = svc.UpdateProfile(ctx, "ghost", ProfileUpdate{Phone: strPtr("1")})
	assert.True(t, errorutil.IsKind(err, errorutil.KindNotFound))
}

func TestChangeRoleRecordsReason(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	ctx := context.Background()
	require.NoError(t, f.users.Save(ctx, &domain.User{ID: "u1"}))

	user, err := svc.ChangeRole(ctx, "boss", "u1", permission.RoleSupportManager, "covers support")
	require.NoError(t, err)
	assert.Equal(t, permission.RoleSupportManager, user.Role)
	assert.Equal(t, "covers support", user.RoleChangeReason)
	require.NotNil(t, user.RoleChangedAt)
	assert.Equal(t, []events.EventType{events.EventUserRoleChanged}, f.events.types())

	_, err = svc.ChangeRole(ctx, "boss", "u1", "janitor", "")
	assert.True(t, errorutil.IsKind(err, errorutil.KindValidationFailure))
}

func TestSavePermissionsFeedsResolver(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	ctx := context.Background()
	require.NoError(t, f.users.Save(ctx, &domain.User{ID: "u1", Role: permission.RoleProductsManager}))
	resolver := permission.NewResolver(f.users, nil)

	assert.True(t, resolver.Check(ctx, "u1", permission.SectionProducts, permission.ActionDelete))
	assert.False(t, resolver.Check(ctx, "u1", permission.SectionOrders, permission.ActionView))

	overrides := permission.RoleDefaults(permission.RoleProductsManager)
	overrides[permission.SectionProducts][permission.ActionDelete] = false
	overrides[permission.SectionOrders][permission.ActionView] = true
	_, err := svc.SavePermissions(ctx, "boss", "u1", "", overrides)
	require.NoError(t, err)

	assert.False(t, resolver.Check(ctx, "u1", permission.SectionProducts, permission.ActionDelete))
	assert.True(t, resolver.Check(ctx, "u1", permission.SectionOrders, permission.ActionView))
	assert.True(t, resolver.Check(ctx, "u1", permission.SectionProducts, permission.ActionEdit))

	user, err := svc.SavePermissions(ctx, "boss", "u1", permission.RoleOrdersManager, permission.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, permission.RoleOrdersManager, user.Role)

	bad := permission.Overrides{permission.SectionProducts: {permission.ActionReply: true}}
	_, err = svc.SavePermissions(ctx, "boss", "u1", "", bad)
	assert.True(t, errorutil.IsKind(err, errorutil.KindValidationFailure))
	_, err = svc.SavePermissions(ctx, "boss", "u1", "janitor", nil)
	assert.True(t, errorutil.IsKind(err, errorutil.KindValidationFailure))
}

func TestUserListFilters(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	ctx := context.Background()
	require.NoError(t, f.users.Save(ctx, &domain.User{ID: "a", DisplayName: "Ali", BusinessName: "Ali Market"}))
	require.NoError(t, f.users.Save(ctx, &domain.User{ID: "b", DisplayName: "Badr", Role: domain.RoleAdmin}))
	require.NoError(t, f.users.Save(ctx, &domain.User{ID: "c", DisplayName: "Carim", Email: "carim@market.sa"}))

	plain, _, err := svc.List(ctx, UserFilter{Role: domain.RoleUser})
	require.NoError(t, err)
	assert.Len(t, plain, 2)

	market, _, err := svc.List(ctx, UserFilter{Search: "market"})
	require.NoError(t, err)
	assert.Len(t, market, 2)

	both, _, err := svc.List(ctx, UserFilter{Role: domain.RoleUser, Search: "carim"})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "c", both[0].ID)

	require.NoError(t, svc.Delete(ctx, "c"))
	_, err = svc.Profile(ctx, "c")
	assert.True(t, errorutil.IsKind(err, errorutil.KindNotFound))
}
