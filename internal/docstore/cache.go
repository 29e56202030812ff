package docstore

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

// Cache is the local copy of previously read snapshots. A miss is reported
// as KindNotFound.
type Cache interface {
	GetCollection(ctx context.Context, collection string) ([]Document, error)
	PutCollection(ctx context.Context, collection string, docs []Document) error
	GetDocument(ctx context.Context, collection, id string) (Document, error)
	PutDocument(ctx context.Context, collection string, doc Document) error
	// Invalidate drops the collection snapshot and, when id is set, the record.
	Invalidate(ctx context.Context, collection, id string) error
}

type cacheEntry[T any] struct {
	value   T
	expires time.Time
}

func (e cacheEntry[T]) live(now time.Time) bool {
	return e.expires.IsZero() || now.Before(e.expires)
}

// MemoryCache is a process-local Cache with an optional TTL.
type MemoryCache struct {
	mu          sync.RWMutex
	ttl         time.Duration
	now         func() time.Time
	collections map[string]cacheEntry[[]Document]
	documents   map[string]cacheEntry[Document]
}

// NewMemoryCache returns an empty cache; ttl <= 0 keeps entries forever.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:         ttl,
		now:         time.Now,
		collections: map[string]cacheEntry[[]Document]{},
		documents:   map[string]cacheEntry[Document]{},
	}
}

func (c *MemoryCache) expiry() time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(c.ttl)
}

func (c *MemoryCache) GetCollection(_ context.Context, collection string) ([]Document, error) {
	c.mu.RLock()
	entry, ok := c.collections[collection]
	c.mu.RUnlock()
	if !ok || !entry.live(c.now()) {
		return nil, cacheMiss(collection, "")
	}
	return cloneAll(entry.value), nil
}

func (c *MemoryCache) PutCollection(_ context.Context, collection string, docs []Document) error {
	exp := c.expiry()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collections[collection] = cacheEntry[[]Document]{value: cloneAll(docs), expires: exp}
	for _, doc := range docs {
		c.documents[docKey(collection, doc.ID())] = cacheEntry[Document]{value: doc.Clone(), expires: exp}
	}
	return nil
}

func (c *MemoryCache) GetDocument(_ context.Context, collection, id string) (Document, error) {
	c.mu.RLock()
	entry, ok := c.documents[docKey(collection, id)]
	c.mu.RUnlock()
	if !ok || !entry.live(c.now()) {
		return nil, cacheMiss(collection, id)
	}
	return entry.value.Clone(), nil
}

func (c *MemoryCache) PutDocument(_ context.Context, collection string, doc Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents[docKey(collection, doc.ID())] = cacheEntry[Document]{value: doc.Clone(), expires: c.expiry()}
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, collection, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.collections, collection)
	if id != "" {
		delete(c.documents, docKey(collection, id))
	}
	return nil
}

func docKey(collection, id string) string {
	return collection + "/" + id
}

func cloneAll(docs []Document) []Document {
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = d.Clone()
	}
	return out
}

func cacheMiss(collection, id string) error {
	details := map[string]any{"collection": collection, "cache": true}
	if id != "" {
		details["id"] = id
	}
	return errorutil.NewNotFound("cached snapshot", details)
}
