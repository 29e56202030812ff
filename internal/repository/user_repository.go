package repository

import (
	"context"

	"github.com/spec-kit/storefront/internal/docstore"
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/permission"
)

// UserRepository defines access to user profiles.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, bool, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// Save upserts the profile under user.ID, merging into an existing record.
	Save(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, id string, partial map[string]any) error
	Delete(ctx context.Context, id string) error
	Subject(ctx context.Context, id string) (*permission.Subject, error)
}

type userRepository struct {
	coll collection[domain.User]
}

// NewUserRepository returns a docstore-backed implementation.
func NewUserRepository(store DocumentStore) UserRepository {
	return &userRepository{coll: collection[domain.User]{store: store, name: domain.CollectionUsers}}
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, bool, error) {
	return r.coll.list(ctx, newestFirst)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.coll.get(ctx, id)
}

func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	return r.coll.put(ctx, user.ID, user, docstore.SetOptions{Merge: true, Touch: true})
}

func (r *userRepository) Update(ctx context.Context, id string, partial map[string]any) error {
	return r.coll.update(ctx, id, partial)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.coll.delete(ctx, id)
}

func (r *userRepository) Subject(ctx context.Context, id string) (*permission.Subject, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Subject(), nil
}
