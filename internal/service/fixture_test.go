package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/storefront/internal/docstore"
	"github.com/spec-kit/storefront/internal/events"
	"github.com/spec-kit/storefront/internal/repository"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Subscribe(events.EventType, events.EventHandler) {}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	clock    *testClock
	backend  *docstore.MemoryBackend
	client   *docstore.Client
	events   *recorder
	orders   repository.OrderRepository
	products repository.ProductRepository
	tickets  repository.TicketRepository
	faqs     repository.FAQRepository
	users    repository.UserRepository
	settings repository.SettingsRepository
	backups  repository.BackupRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, docstore.NewMemoryBackend())
}

func newFixtureOn(t *testing.T, backend *docstore.MemoryBackend) *fixture {
	t.Helper()
	clock := &testClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	backend.WithClock(clock.Now)
	seq := 0
	client := docstore.NewClient(backend, docstore.Options{
		Cache: docstore.NewMemoryCache(0),
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%04d", seq)
		},
	})
	return &fixture{
		clock:    clock,
		backend:  backend,
		client:   client,
		events:   &recorder{},
		orders:   repository.NewOrderRepository(client),
		products: repository.NewProductRepository(client),
		tickets:  repository.NewTicketRepository(client),
		faqs:     repository.NewFAQRepository(client),
		users:    repository.NewUserRepository(client),
		settings: repository.NewSettingsRepository(client),
		backups:  repository.NewBackupRepository(client),
	}
}
