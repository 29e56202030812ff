package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/docstore"
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/events"
	"github.com/spec-kit/storefront/internal/repository"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

// HistorySize is how many bundles History returns.
const HistorySize = 10

// BackupCollections are snapshotted in this order.
var BackupCollections = []string{
	domain.CollectionUsers,
	domain.CollectionProducts,
	domain.CollectionOrders,
	domain.CollectionSupportTickets,
	domain.CollectionFAQs,
	domain.CollectionSettings,
	domain.CollectionAdmins,
}

// ExportCollections make up the lightweight data export.
var ExportCollections = []string{
	domain.CollectionProducts,
	domain.CollectionUsers,
	domain.CollectionOrders,
	domain.CollectionSupportTickets,
}

// Collections a restore never writes.
var restoreDenied = map[string]bool{
	domain.CollectionAuthCredentials: true,
	domain.CollectionBackups:         true,
}

// Progress receives a percentage after each collection.
type Progress func(percent float64)

// BackupService snapshots and restores whole collections.
type BackupService struct {
	base
	store   repository.DocumentStore
	backups repository.BackupRepository
}

// BackupDependencies bundles collaborators for the backup service.
type BackupDependencies struct {
	Store      repository.DocumentStore
	BackupRepo repository.BackupRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// NewBackupService constructs the service.
func NewBackupService(deps BackupDependencies) *BackupService {
	return &BackupService{
		base:    newBase(deps.Dispatcher, deps.Logger, deps.Clock),
		store:   deps.Store,
		backups: deps.BackupRepo,
	}
}

// CreateBackup fetches every backup collection in turn, persists the bundle
// and returns it with an indented JSON download copy.
func (s *BackupService) CreateBackup(ctx context.Context, progress Progress) (*domain.BackupBundle, []byte, error) {
	now := s.now().UTC()
	bundle := &domain.BackupBundle{
		ID:        fmt.Sprintf("backup_%d", now.UnixMilli()),
		Timestamp: now.Format(isoMillis),
		Version:   domain.BackupVersion,
		Data:      make(map[string][]docstore.Document, len(BackupCollections)),
	}

	for i, name := range BackupCollections {
		res, err := s.store.List(ctx, name, docstore.ListOptions{})
		if err != nil {
			return nil, nil, err
		}
		if res.FromCache {
			s.logger.Warn("backing up cached snapshot", zap.String("collection", name))
		}
		docs := res.Documents
		if docs == nil {
			docs = []docstore.Document{}
		}
		bundle.Data[name] = docs
		report(progress, i+1, len(BackupCollections))
	}

	if err := s.backups.Save(ctx, bundle); err != nil {
		return nil, nil, err
	}
	download, err := EncodeBundle(bundle)
	if err != nil {
		return nil, nil, err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventBackupCreated,
		RecordID: bundle.ID,
		Payload:  events.BackupPayload{RecordCount: recordCount(bundle)},
	})
	s.logger.Info("backup created", zap.String("backup_id", bundle.ID))
	return bundle, download, nil
}

// RestoreBackup overwrites every record of every collection in the bundle by
// id, in collection name order. Records are written as they are; a failure
// midway leaves earlier collections restored.
func (s *BackupService) RestoreBackup(ctx context.Context, bundle *domain.BackupBundle, progress Progress) (map[string]int, error) {
	if bundle == nil || bundle.Data == nil {
		return nil, errorutil.NewValidationError("backup has no data", nil)
	}
	names := make([]string, 0, len(bundle.Data))
	for name := range bundle.Data {
		names = append(names, name)
	}
	sort.Strings(names)

	restored := make(map[string]int, len(names))
	for i, name := range names {
		if restoreDenied[name] {
			s.logger.Warn("skipping protected collection in restore", zap.String("collection", name))
			report(progress, i+1, len(names))
			continue
		}
		count := 0
		for _, doc := range bundle.Data[name] {
			id := doc.ID()
			if id == "" {
				s.logger.Warn("skipping record without id", zap.String("collection", name))
				continue
			}
			body := doc.Clone()
			delete(body, docstore.FieldID)
			if err := s.store.Set(ctx, name, id, body, docstore.SetOptions{}); err != nil {
				return restored, err
			}
			count++
		}
		restored[name] = count
		report(progress, i+1, len(names))
	}

	s.publish(ctx, events.Event{
		Type:     events.EventBackupRestored,
		RecordID: bundle.ID,
		Payload:  events.BackupPayload{RecordCount: restored},
	})
	return restored, nil
}

// RestoreByID restores a persisted bundle.
func (s *BackupService) RestoreByID(ctx context.Context, id string, progress Progress) (map[string]int, error) {
	bundle, err := s.backups.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	bundle.ID = id
	return s.RestoreBackup(ctx, bundle, progress)
}

// ParseBundle decodes a backup file.
func ParseBundle(raw []byte) (*domain.BackupBundle, error) {
	var bundle domain.BackupBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, errorutil.NewValidationError("backup file is not valid JSON", map[string]any{"reason": err.Error()})
	}
	if bundle.Data == nil {
		return nil, errorutil.NewValidationError("backup file has no data", nil)
	}
	return &bundle, nil
}

// EncodeBundle renders the download copy: timestamp, version and data only.
func EncodeBundle(bundle *domain.BackupBundle) ([]byte, error) {
	file := *bundle
	file.ID = ""
	out, err := json.MarshalIndent(&file, "", "  ")
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	return out, nil
}

// History lists the newest persisted bundles without their payloads.
func (s *BackupService) History(ctx context.Context) ([]domain.BackupSummary, error) {
	bundles, err := s.backups.ListRecent(ctx, HistorySize)
	if err != nil {
		return nil, err
	}
	out := make([]domain.BackupSummary, 0, len(bundles))
	for i := range bundles {
		out = append(out, domain.BackupSummary{
			ID:          bundles[i].ID,
			Timestamp:   bundles[i].Timestamp,
			Version:     bundles[i].Version,
			RecordCount: recordCount(&bundles[i]),
		})
	}
	return out, nil
}

// ExportData dumps the export collections as indented JSON without
// persisting anything.
func (s *BackupService) ExportData(ctx context.Context) ([]byte, error) {
	data := make(map[string][]docstore.Document, len(ExportCollections))
	for _, name := range ExportCollections {
		res, err := s.store.List(ctx, name, docstore.ListOptions{})
		if err != nil {
			return nil, err
		}
		docs := res.Documents
		if docs == nil {
			docs = []docstore.Document{}
		}
		data[name] = docs
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	return out, nil
}

// CleanupOldBackups deletes every bundle older than maxAgeDays in one batch
// and returns how many went.
func (s *BackupService) CleanupOldBackups(ctx context.Context, maxAgeDays int) (int, error) {
	if maxAgeDays <= 0 {
		return 0, errorutil.NewValidationError("max age must be positive", map[string]any{"maxAgeDays": maxAgeDays})
	}
	cutoff := s.now().UTC().Add(-time.Duration(maxAgeDays) * 24 * time.Hour)
	ids, err := s.backups.OlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := s.backups.DeleteMany(ctx, ids); err != nil {
		return 0, err
	}
	s.logger.Info("old backups removed", zap.Int("count", len(ids)), zap.Time("cutoff", cutoff))
	return len(ids), nil
}

func report(progress Progress, done, total int) {
	if progress == nil || total == 0 {
		return
	}
	progress(float64(done) / float64(total) * 100)
}

func recordCount(bundle *domain.BackupBundle) map[string]int {
	out := make(map[string]int, len(bundle.Data))
	for name, docs := range bundle.Data {
		out[name] = len(docs)
	}
	return out
}
