package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront/internal/docstore"
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/repository"
	"github.com/spec-kit/storefront/internal/service"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	clock    *clock
	backups  *service.BackupService
	settings *service.SettingsService
	sched    *BackupScheduler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	client := docstore.NewClient(docstore.NewMemoryBackend().WithClock(c.now), docstore.Options{})
	backups := service.NewBackupService(service.BackupDependencies{
		Store:      client,
		BackupRepo: repository.NewBackupRepository(client),
		Clock:      c.now,
	})
	settings := service.NewSettingsService(repository.NewSettingsRepository(client), nil)
	return &harness{
		clock:    c,
		backups:  backups,
		settings: settings,
		sched: NewBackupScheduler(BackupSchedulerConfig{
			Backups:       backups,
			Settings:      settings,
			RetentionDays: 30,
		}),
	}
}

func TestRunAutoBackupFollowsSetting(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	took, err := h.sched.RunAutoBackup(ctx)
	require.NoError(t, err)
	assert.True(t, took)

	require.NoError(t, h.settings.UpdateSetting(ctx, "autoBackup", false))
	took, err = h.sched.RunAutoBackup(ctx)
	require.NoError(t, err)
	assert.False(t, took)

	history, err := h.backups.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRunCleanupUsesDataCleanupDays(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, _, err := h.backups.CreateBackup(ctx, nil)
	require.NoError(t, err)
	h.clock.advance(60 * 24 * time.Hour)
	_, _, err = h.backups.CreateBackup(ctx, nil)
	require.NoError(t, err)

	removed, err := h.sched.RunCleanup(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed, "default dataCleanup keeps 90 days")

	require.NoError(t, h.settings.UpdateSetting(ctx, "dataCleanup", 0))
	removed, err = h.sched.RunCleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed, "falls back to the 30 day retention")

	history, err := h.backups.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

type countingRunner struct {
	backups  atomic.Int32
	cleanups atomic.Int32
}

func (r *countingRunner) CreateBackup(context.Context, service.Progress) (*domain.BackupBundle, []byte, error) {
	r.backups.Add(1)
	return &domain.BackupBundle{ID: "backup_1"}, nil, nil
}

func (r *countingRunner) CleanupOldBackups(context.Context, int) (int, error) {
	r.cleanups.Add(1)
	return 0, nil
}

type staticSettings struct{}

func (staticSettings) Load(context.Context) (domain.Settings, error) {
	return domain.DefaultSettings(), nil
}

func TestSchedulerStopsWithContext(t *testing.T) {
	runner := &countingRunner{}
	sched := NewBackupScheduler(BackupSchedulerConfig{
		Backups:         runner,
		Settings:        staticSettings{},
		AutoInterval:    5 * time.Millisecond,
		CleanupInterval: 5 * time.Millisecond,
		RetentionDays:   30,
	})
	ctx, cancel := context.WithCancel(context.Background())
	sched.Start(ctx)

	require.Eventually(t, func() bool {
		return runner.backups.Load() >= 2 && runner.cleanups.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	done := make(chan struct{})
	go func() {
		sched.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestSchedulerDisabledJobs(t *testing.T) {
	runner := &countingRunner{}
	sched := NewBackupScheduler(BackupSchedulerConfig{Backups: runner, Settings: staticSettings{}})
	ctx, cancel := context.WithCancel(context.Background())
	sched.Start(ctx)
	cancel()
	sched.Wait()
	assert.Zero(t, runner.backups.Load())
}
