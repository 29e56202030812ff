package repository

import (
	"context"
	"strings"

	"github.com/spec-kit/storefront/internal/domain"
)

// CredentialRepository stores sign-in credentials keyed by normalized email.
type CredentialRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Credential, error)
	// Create fails with KindConflict when the email is taken.
	Create(ctx context.Context, cred *domain.Credential) error
	UpdateHash(ctx context.Context, email, hash string) error
}

type credentialRepository struct {
	coll collection[domain.Credential]
}

// NewCredentialRepository returns a docstore-backed implementation.
func NewCredentialRepository(store DocumentStore) CredentialRepository {
	return &credentialRepository{coll: collection[domain.Credential]{store: store, name: domain.CollectionAuthCredentials}}
}

// CredentialKey is the record id for an email.
func CredentialKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *credentialRepository) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	return r.coll.get(ctx, CredentialKey(email))
}

func (r *credentialRepository) Create(ctx context.Context, cred *domain.Credential) error {
	cred.ID = CredentialKey(cred.Email)
	return r.coll.createWithID(ctx, cred.ID, cred)
}

func (r *credentialRepository) UpdateHash(ctx context.Context, email, hash string) error {
	return r.coll.update(ctx, CredentialKey(email), map[string]any{"passwordHash": hash})
}
