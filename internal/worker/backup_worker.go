package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/service"
)

// BackupRunner is the part of the backup service the scheduler drives.
type BackupRunner interface {
	CreateBackup(ctx context.Context, progress service.Progress) (*domain.BackupBundle, []byte, error)
	CleanupOldBackups(ctx context.Context, maxAgeDays int) (int, error)
}

// SettingsLoader reads the current system settings.
type SettingsLoader interface {
	Load(ctx context.Context) (domain.Settings, error)
}

// BackupSchedulerConfig wires a BackupScheduler. A zero interval disables
// that job.
type BackupSchedulerConfig struct {
	Backups         BackupRunner
	Settings        SettingsLoader
	Logger          *zap.Logger
	AutoInterval    time.Duration
	CleanupInterval time.Duration
	RetentionDays   int
}

// BackupScheduler runs the auto-backup and cleanup jobs on tickers.
type BackupScheduler struct {
	backups         BackupRunner
	settings        SettingsLoader
	logger          *zap.Logger
	autoInterval    time.Duration
	cleanupInterval time.Duration
	retentionDays   int
	wg              sync.WaitGroup
}

// NewBackupScheduler constructs a scheduler; call Start to run it.
func NewBackupScheduler(cfg BackupSchedulerConfig) *BackupScheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupScheduler{
		backups:         cfg.Backups,
		settings:        cfg.Settings,
		logger:          logger,
		autoInterval:    cfg.AutoInterval,
		cleanupInterval: cfg.CleanupInterval,
		retentionDays:   cfg.RetentionDays,
	}
}

// Start launches one goroutine per enabled job. They exit when ctx is done.
func (s *BackupScheduler) Start(ctx context.Context) {
	s.every(ctx, "auto_backup", s.autoInterval, func(ctx context.Context) {
		if _, err := s.RunAutoBackup(ctx); err != nil {
			s.logger.Error("auto backup failed", zap.Error(err))
		}
	})
	s.every(ctx, "backup_cleanup", s.cleanupInterval, func(ctx context.Context) {
		if _, err := s.RunCleanup(ctx); err != nil {
			s.logger.Error("backup cleanup failed", zap.Error(err))
		}
	})
}

// Wait blocks until every job goroutine has returned.
func (s *BackupScheduler) Wait() {
	s.wg.Wait()
}

func (s *BackupScheduler) every(ctx context.Context, job string, interval time.Duration, run func(context.Context)) {
	if interval <= 0 {
		s.logger.Info("scheduled job disabled", zap.String("job", job))
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run(ctx)
			}
		}
	}()
}

// RunAutoBackup creates a backup unless the autoBackup setting is off. It
// reports whether a backup was taken.
func (s *BackupScheduler) RunAutoBackup(ctx context.Context) (bool, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return false, err
	}
	if !settings.Bool("autoBackup", true) {
		s.logger.Debug("auto backup off")
		return false, nil
	}
	bundle, _, err := s.backups.CreateBackup(ctx, nil)
	if err != nil {
		return false, err
	}
	s.logger.Info("auto backup stored", zap.String("backup_id", bundle.ID))
	return true, nil
}

// RunCleanup prunes bundles older than the dataCleanup setting in days,
// falling back to the configured retention.
func (s *BackupScheduler) RunCleanup(ctx context.Context) (int, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return 0, err
	}
	days := int(settings.Number("dataCleanup", float64(s.retentionDays)))
	if days <= 0 {
		days = s.retentionDays
	}
	if days <= 0 {
		return 0, nil
	}
	return s.backups.CleanupOldBackups(ctx, days)
}
