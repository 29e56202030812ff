// Package auth signs accounts in and out, issues bearer tokens and guards
// HTTP routes with the permission resolver.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
	"github.com/spec-kit/storefront/pkg/util/validate"
)

// CredentialStore is the hosted credential service.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Credential, error)
	Create(ctx context.Context, cred *domain.Credential) error
	UpdateHash(ctx context.Context, email, hash string) error
}

// ProfileStore reads and writes users/{uid}.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
}

// Profile is the optional data recorded on sign-up.
type Profile struct {
	DisplayName  string `json:"displayName" validate:"max=120"`
	Phone        string `json:"phone" validate:"max=40"`
	Address      string `json:"address" validate:"max=300"`
	BusinessName string `json:"businessName" validate:"max=120"`
}

// Options tunes an Authenticator.
type Options struct {
	BcryptCost       int
	BootstrapAdminID string
	SignInPerMinute  int
	Logger           *zap.Logger
}

// Authenticator performs stateless credential operations. HTTP handlers use
// it directly; Gateway layers a current session on top.
type Authenticator struct {
	creds     CredentialStore
	profiles  ProfileStore
	tokens    *TokenManager
	limiter   *attemptLimiter
	cost      int
	bootstrap string
	logger    *zap.Logger
}

// NewAuthenticator builds the authenticator.
func NewAuthenticator(creds CredentialStore, profiles ProfileStore, tokens *TokenManager, opts Options) *Authenticator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		creds:     creds,
		profiles:  profiles,
		tokens:    tokens,
		limiter:   newAttemptLimiter(opts.SignInPerMinute),
		cost:      opts.BcryptCost,
		bootstrap: opts.BootstrapAdminID,
		logger:    logger,
	}
}

// SignIn checks the password for email and issues a session.
func (a *Authenticator) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if err := CheckEmail(email); err != nil {
		return nil, err
	}
	if !a.limiter.allow(strings.ToLower(email)) {
		throttled := errorutil.NewDomainError(errorutil.KindUnavailable, errorutil.CodeTooManyRequests, "too many sign-in attempts", nil)
		throttled.HTTPStatus = http.StatusTooManyRequests
		return nil, throttled
	}

	cred, err := a.creds.GetByEmail(ctx, email)
	if err != nil {
		if errorutil.IsKind(err, errorutil.KindNotFound) {
			return nil, errorutil.NewAuthError(errorutil.CodeUserNotFound, "no account for this email")
		}
		return nil, err
	}
	if err := ComparePassword(cred.PasswordHash, password); err != nil {
		a.logger.Info("sign-in rejected", zap.String("uid", cred.UID))
		return nil, errorutil.NewAuthError(errorutil.CodeWrongPassword, "wrong password")
	}
	return a.issue(cred.UID, cred.Email)
}

// SignUp creates the credential and then the users/{uid} profile. A failed
// profile write is returned as is; the credential stays.
func (a *Authenticator) SignUp(ctx context.Context, email, password string, profile Profile) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if err := CheckEmail(email); err != nil {
		return nil, err
	}
	if err := CheckPassword(password); err != nil {
		return nil, err
	}
	if err := validate.Struct(profile); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password, a.cost)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	uid := uuid.NewString()
	cred := &domain.Credential{UID: uid, Email: email, PasswordHash: hash}
	if err := a.creds.Create(ctx, cred); err != nil {
		if errorutil.IsKind(err, errorutil.KindConflict) {
			return nil, errorutil.NewConflict(errorutil.CodeEmailInUse, "email already in use")
		}
		return nil, err
	}

	user := &domain.User{
		ID:           uid,
		DisplayName:  profile.DisplayName,
		Email:        email,
		Phone:        profile.Phone,
		Address:      profile.Address,
		BusinessName: profile.BusinessName,
		Role:         domain.RoleUser,
		AuthUID:      uid,
	}
	if err := a.profiles.Save(ctx, user); err != nil {
		a.logger.Error("profile write after sign-up failed", zap.String("uid", uid), zap.Error(err))
		return nil, err
	}
	return a.issue(uid, email)
}

// ChangePassword verifies the current password before storing the new hash.
func (a *Authenticator) ChangePassword(ctx context.Context, session *domain.Session, current, next string) error {
	if session == nil {
		return errorutil.NewUnauthorized("not signed in")
	}
	if err := CheckPassword(next); err != nil {
		return err
	}
	cred, err := a.creds.GetByEmail(ctx, session.Email)
	if err != nil {
		if errorutil.IsKind(err, errorutil.KindNotFound) {
			return errorutil.NewAuthError(errorutil.CodeUserNotFound, "no account for this email")
		}
		return err
	}
	if cred.UID != session.UID {
		return errorutil.NewUnauthorized("session does not match account")
	}
	if err := ComparePassword(cred.PasswordHash, current); err != nil {
		return errorutil.NewAuthError(errorutil.CodeWrongPassword, "wrong password")
	}
	hash, err := HashPassword(next, a.cost)
	if err != nil {
		return errorutil.NewInternalError(err)
	}
	return a.creds.UpdateHash(ctx, session.Email, hash)
}

// IsAdmin tries the bootstrap record first, then users/{uid}. Any failure
// means no.
func (a *Authenticator) IsAdmin(ctx context.Context, uid string) bool {
	if uid == "" {
		return false
	}
	if a.bootstrap != "" {
		boot, err := a.profiles.GetByID(ctx, a.bootstrap)
		if err == nil && boot.AuthUID == uid && boot.IsAdmin() {
			return true
		}
	}
	user, err := a.profiles.GetByID(ctx, uid)
	if err != nil {
		return false
	}
	return user.IsAdmin()
}

// ParseToken validates a bearer token.
func (a *Authenticator) ParseToken(token string) (*Claims, error) {
	return a.tokens.ParseToken(token)
}

// Session turns a bearer token into a session.
func (a *Authenticator) Session(token string) (*domain.Session, error) {
	claims, err := a.tokens.ParseToken(token)
	if err != nil {
		return nil, errorutil.NewUnauthorized("invalid token")
	}
	return &domain.Session{
		UID:       claims.UID(),
		Email:     claims.Email,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (a *Authenticator) issue(uid, email string) (*domain.Session, error) {
	token, exp, err := a.tokens.GenerateToken(uid, email)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	return &domain.Session{UID: uid, Email: email, Token: token, ExpiresAt: exp}, nil
}
