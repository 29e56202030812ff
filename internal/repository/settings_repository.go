package repository

import (
	"context"

	"github.com/spec-kit/storefront/internal/docstore"
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

// SettingsRepository reads and writes the singleton settings record.
type SettingsRepository interface {
	// Load returns the stored record, or found=false when none exists.
	Load(ctx context.Context) (stored domain.Settings, found bool, err error)
	// Merge writes one key without disturbing the others.
	Merge(ctx context.Context, key string, value any) error
	// Overwrite replaces the whole record.
	Overwrite(ctx context.Context, settings domain.Settings) error
}

type settingsRepository struct {
	store DocumentStore
}

// NewSettingsRepository returns a docstore-backed implementation.
func NewSettingsRepository(store DocumentStore) SettingsRepository {
	return &settingsRepository{store: store}
}

func (r *settingsRepository) Load(ctx context.Context) (domain.Settings, bool, error) {
	doc, _, err := r.store.Get(ctx, domain.CollectionSettings, domain.SettingsID)
	if errorutil.IsKind(err, errorutil.KindNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	delete(doc, docstore.FieldID)
	return domain.Settings(doc), true, nil
}

func (r *settingsRepository) Merge(ctx context.Context, key string, value any) error {
	return r.store.Set(ctx, domain.CollectionSettings, domain.SettingsID,
		docstore.Document{key: value}, docstore.SetOptions{Merge: true, Touch: true})
}

func (r *settingsRepository) Overwrite(ctx context.Context, settings domain.Settings) error {
	return r.store.Set(ctx, domain.CollectionSettings, domain.SettingsID,
		docstore.Document(settings), docstore.SetOptions{Touch: true})
}
