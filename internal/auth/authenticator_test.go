package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/storefront/internal/docstore"
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/repository"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

type fixture struct {
	client  *docstore.Client
	users   repository.UserRepository
	creds   repository.CredentialRepository
	tokens  *TokenManager
	auth    *Authenticator
	backend *docstore.MemoryBackend
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	backend := docstore.NewMemoryBackend()
	client := docstore.NewClient(backend, docstore.Options{})
	users := repository.NewUserRepository(client)
	creds := repository.NewCredentialRepository(client)
	tokens := NewTokenManager("test-secret", 5)
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}
	return &fixture{
		client:  client,
		users:   users,
		creds:   creds,
		tokens:  tokens,
		auth:    NewAuthenticator(creds, users, tokens, opts),
		backend: backend,
	}
}

func TestSignUpCreatesCredentialAndProfile(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	session, err := f.auth.SignUp(ctx, "Owner@Example.com", "secret1", Profile{DisplayName: "Owner", BusinessName: "Shop"})
	require.NoError(t, err)
	require.NotEmpty(t, session.UID)
	require.NotEmpty(t, session.Token)

	user, err := f.users.GetByID(ctx, session.UID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, session.UID, user.AuthUID)
	assert.Equal(t, "Shop", user.BusinessName)
	assert.False(t, user.CreatedAt.IsZero())

	cred, err := f.creds.GetByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, session.UID, cred.UID)
	assert.NotEqual(t, "secret1", cred.PasswordHash)

	claims, err := f.auth.ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.UID, claims.UID())
}

func TestSignUpRejections(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, err := f.auth.SignUp(ctx, "a@example.com", "12345", Profile{})
	assert.Equal(t, errorutil.CodeWeakPassword, errorutil.CodeOf(err))

	_, err = f.auth.SignUp(ctx, "not-an-email", "123456", Profile{})
	assert.Equal(t, errorutil.CodeInvalidEmail, errorutil.CodeOf(err))

	_, err = f.auth.SignUp(ctx, "a@example.com", "123456", Profile{DisplayName: strings.Repeat("x", 200)})
	assert.True(t, errorutil.IsKind(err, errorutil.KindValidationFailure))

	_, err = f.auth.SignUp(ctx, "a@example.com", "123456", Profile{})
	require.NoError(t, err)
	_, err = f.auth.SignUp(ctx, "A@example.com ", "abcdef", Profile{})
	assert.True(t, errorutil.IsKind(err, errorutil.KindConflict))
	assert.Equal(t, errorutil.CodeEmailInUse, errorutil.CodeOf(err))
}

type failingProfiles struct {
	ProfileStore
}

func (failingProfiles) Save(context.Context, *domain.User) error {
	return errorutil.NewUnavailable(errors.New("down"))
}

func TestSignUpKeepsCredentialWhenProfileWriteFails(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	a := NewAuthenticator(f.creds, failingProfiles{f.users}, f.tokens, Options{BcryptCost: bcrypt.MinCost})

	_, err := a.SignUp(ctx, "b@example.com", "123456", Profile{})
	require.True(t, errorutil.IsKind(err, errorutil.KindUnavailable))

	_, err = f.creds.GetByEmail(ctx, "b@example.com")
	assert.NoError(t, err)
}

func TestSignIn(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	created, err := f.auth.SignUp(ctx, "c@example.com", "123456", Profile{})
	require.NoError(t, err)

	session, err := f.auth.SignIn(ctx, "C@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, created.UID, session.UID)

	_, err = f.auth.SignIn(ctx, "c@example.com", "nope-nope")
	assert.Equal(t, errorutil.CodeWrongPassword, errorutil.CodeOf(err))
	assert.True(t, errorutil.IsKind(err, errorutil.KindUnauthenticated))

	_, err = f.auth.SignIn(ctx, "ghost@example.com", "123456")
	assert.Equal(t, errorutil.CodeUserNotFound, errorutil.CodeOf(err))
}

func TestSignInIsRateLimitedPerEmail(t *testing.T) {
	f := newFixture(t, Options{SignInPerMinute: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.auth.SignIn(ctx, "d@example.com", "123456")
		assert.Equal(t, errorutil.CodeUserNotFound, errorutil.CodeOf(err))
	}
	_, err := f.auth.SignIn(ctx, "D@example.com", "123456")
	assert.True(t, errorutil.IsKind(err, errorutil.KindUnavailable))
	assert.Equal(t, errorutil.CodeTooManyRequests, errorutil.CodeOf(err))

	_, err = f.auth.SignIn(ctx, "other@example.com", "123456")
	assert.Equal(t, errorutil.CodeUserNotFound, errorutil.CodeOf(err))
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	session, err := f.auth.SignUp(ctx, "e@example.com", "123456", Profile{})
	require.NoError(t, err)

	err = f.auth.ChangePassword(ctx, session, "wrong1", "abcdefg")
	assert.Equal(t, errorutil.CodeWrongPassword, errorutil.CodeOf(err))
	err = f.auth.ChangePassword(ctx, session, "123456", "abc")
	assert.Equal(t, errorutil.CodeWeakPassword, errorutil.CodeOf(err))
	require.NoError(t, f.auth.ChangePassword(ctx, session, "123456", "abcdefg"))

	_, err = f.auth.SignIn(ctx, "e@example.com", "123456")
	assert.Equal(t, errorutil.CodeWrongPassword, errorutil.CodeOf(err))
	_, err = f.auth.SignIn(ctx, "e@example.com", "abcdefg")
	assert.NoError(t, err)

	err = f.auth.ChangePassword(ctx, nil, "a", "b")
	assert.True(t, errorutil.IsKind(err, errorutil.KindUnauthenticated))
}

func TestIsAdminStrategies(t *testing.T) {
	f := newFixture(t, Options{BootstrapAdminID: "bootstrap"})
	ctx := context.Background()

	require.NoError(t, f.users.Save(ctx, &domain.User{ID: "bootstrap", AuthUID: "owner-uid", Role: domain.RoleAdmin}))
	require.NoError(t, f.users.Save(ctx, &domain.User{ID: "root", Role: domain.RoleSuperAdmin}))
	require.NoError(t, f.users.Save(ctx, &domain.User{ID: "staff", Role: "products_manager"}))
	require.NoError(t, f.users.Save(ctx, &domain.User{ID: "plain"}))

	a := NewAuthenticator(f.creds, f.users, f.tokens, Options{BootstrapAdminID: "bootstrap"})
	assert.True(t, a.IsAdmin(ctx, "owner-uid"), "bootstrap record")
	assert.True(t, a.IsAdmin(ctx, "root"), "users record")
	assert.False(t, a.IsAdmin(ctx, "staff"))
	assert.False(t, a.IsAdmin(ctx, "plain"))
	assert.False(t, a.IsAdmin(ctx, "missing"))
	assert.False(t, a.IsAdmin(ctx, ""))

	f.backend.SetAvailable(false)
	assert.False(t, a.IsAdmin(ctx, "root"))
}

func TestSessionRejectsForeignTokens(t *testing.T) {
	f := newFixture(t, Options{})
	other := NewTokenManager("other-secret", 5)
	token, _, err := other.GenerateToken("u1", "u1@example.com")
	require.NoError(t, err)

	_, err = f.auth.Session(token)
	assert.True(t, errorutil.IsKind(err, errorutil.KindUnauthenticated))

	token, _, err = f.tokens.GenerateToken("u1", "u1@example.com")
	require.NoError(t, err)
	session, err := f.auth.Session(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UID)
	assert.Equal(t, "u1@example.com", session.Email)
}
