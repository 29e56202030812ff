package docstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

var errSimulatedOutage = errors.New("memory backend offline")

// MemoryBackend keeps collections in process. It backs tests and local
// development and can simulate an outage.
type MemoryBackend struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
	now         func() time.Time
	down        atomic.Bool

	watchMu  sync.Mutex
	watchers map[string]map[int]chan struct{}
	nextID   int
}

// NewMemoryBackend creates an empty engine using the wall clock.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		collections: map[string]map[string]Document{},
		now:         time.Now,
		watchers:    map[string]map[int]chan struct{}{},
	}
}

// WithClock replaces the stamping clock.
func (m *MemoryBackend) WithClock(now func() time.Time) *MemoryBackend {
	m.now = now
	return m
}

// SetAvailable toggles the simulated outage; while unavailable every call
// fails with KindUnavailable.
func (m *MemoryBackend) SetAvailable(ok bool) {
	m.down.Store(!ok)
}

func (m *MemoryBackend) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errorutil.NewUnavailable(err)
	}
	if m.down.Load() {
		return errorutil.NewUnavailable(errSimulatedOutage)
	}
	return nil
}

func (m *MemoryBackend) Insert(ctx context.Context, collection, id string, data Document) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	coll := m.collection(collection)
	if _, exists := coll[id]; exists {
		m.mu.Unlock()
		return errorutil.NewConflict("already-exists", "document already exists")
	}
	doc := data.Clone()
	ts := FormatTime(m.now())
	doc[FieldCreatedAt] = ts
	doc[FieldUpdatedAt] = ts
	coll[id] = doc
	m.mu.Unlock()
	m.signal(collection)
	return nil
}

func (m *MemoryBackend) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, errorutil.NewNotFound("document", map[string]any{"collection": collection, "id": id})
	}
	return withID(doc, id), nil
}

func (m *MemoryBackend) List(ctx context.Context, collection string, opts ListOptions) ([]Document, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	coll := m.collections[collection]
	docs := make([]Document, 0, len(coll))
	for id, doc := range coll {
		docs = append(docs, withID(doc, id))
	}
	m.mu.RUnlock()
	return ApplyListOptions(docs, opts), nil
}

func (m *MemoryBackend) Update(ctx context.Context, collection, id string, partial Document) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	doc, ok := m.collections[collection][id]
	if !ok {
		m.mu.Unlock()
		return errorutil.NewNotFound("document", map[string]any{"collection": collection, "id": id})
	}
	applyPartial(doc, partial.Clone())
	doc[FieldUpdatedAt] = FormatTime(m.now())
	m.mu.Unlock()
	m.signal(collection)
	return nil
}

func (m *MemoryBackend) Set(ctx context.Context, collection, id string, data Document, opts SetOptions) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	coll := m.collection(collection)
	existing, exists := coll[id]
	var doc Document
	if opts.Merge && exists {
		doc = existing
		applyPartial(doc, data.Clone())
	} else {
		doc = data.Clone()
	}
	if opts.Touch {
		ts := FormatTime(m.now())
		doc[FieldUpdatedAt] = ts
		if !exists {
			if _, ok := doc[FieldCreatedAt]; !ok {
				doc[FieldCreatedAt] = ts
			}
		}
	}
	coll[id] = doc
	m.mu.Unlock()
	m.signal(collection)
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, collection, id string) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.collections[collection], id)
	m.mu.Unlock()
	m.signal(collection)
	return nil
}

func (m *MemoryBackend) BatchDelete(ctx context.Context, collection string, ids []string) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	for _, id := range ids {
		delete(m.collections[collection], id)
	}
	m.mu.Unlock()
	m.signal(collection)
	return nil
}

func (m *MemoryBackend) Ping(ctx context.Context) error {
	return m.check(ctx)
}

// Watch signals after every write to collection until ctx ends.
func (m *MemoryBackend) Watch(ctx context.Context, collection string) (<-chan struct{}, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	ch := make(chan struct{}, 1)
	m.watchMu.Lock()
	if m.watchers[collection] == nil {
		m.watchers[collection] = map[int]chan struct{}{}
	}
	key := m.nextID
	m.nextID++
	m.watchers[collection][key] = ch
	m.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		m.watchMu.Lock()
		delete(m.watchers[collection], key)
		m.watchMu.Unlock()
	}()
	return ch, nil
}

func (m *MemoryBackend) signal(collection string) {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	for _, ch := range m.watchers[collection] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (m *MemoryBackend) collection(name string) map[string]Document {
	coll, ok := m.collections[name]
	if !ok {
		coll = map[string]Document{}
		m.collections[name] = coll
	}
	return coll
}

func withID(doc Document, id string) Document {
	out := doc.Clone()
	out[FieldID] = id
	return out
}
