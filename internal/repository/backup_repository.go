package repository

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/storefront/internal/docstore"
	"github.com/spec-kit/storefront/internal/domain"
)

// BackupRepository stores backup bundles.
type BackupRepository interface {
	Save(ctx context.Context, bundle *domain.BackupBundle) error
	Get(ctx context.Context, id string) (*domain.BackupBundle, error)
	// ListRecent returns up to n bundles, newest timestamp first.
	ListRecent(ctx context.Context, n int) ([]domain.BackupBundle, error)
	// OlderThan returns the ids of bundles whose timestamp is before cutoff.
	OlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
	DeleteMany(ctx context.Context, ids []string) error
}

type backupRepository struct {
	coll collection[domain.BackupBundle]
}

// NewBackupRepository returns a docstore-backed implementation.
func NewBackupRepository(store DocumentStore) BackupRepository {
	return &backupRepository{coll: collection[domain.BackupBundle]{store: store, name: domain.CollectionBackups}}
}

func (r *backupRepository) Save(ctx context.Context, bundle *domain.BackupBundle) error {
	return r.coll.put(ctx, bundle.ID, bundle, docstore.SetOptions{})
}

func (r *backupRepository) Get(ctx context.Context, id string) (*domain.BackupBundle, error) {
	return r.coll.get(ctx, id)
}

func (r *backupRepository) ListRecent(ctx context.Context, n int) ([]domain.BackupBundle, error) {
	bundles, _, err := r.coll.list(ctx, docstore.ListOptions{
		OrderBy: &docstore.OrderBy{Field: "timestamp", Direction: docstore.Desc},
		Limit:   n,
	})
	return bundles, err
}

func (r *backupRepository) OlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	bundles, _, err := r.coll.list(ctx, docstore.ListOptions{})
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, b := range bundles {
		ts, ok := docstore.ParseTime(b.Timestamp)
		if ok && ts.Before(cutoff) {
			ids = append(ids, b.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *backupRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.coll.store.BatchDelete(ctx, domain.CollectionBackups, ids)
}
