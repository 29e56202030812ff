package docstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront/internal/observability"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

type fixedClock struct {
	t time.Time
}

func (f *fixedClock) now() time.Time {
	f.t = f.t.Add(time.Millisecond)
	return f.t
}

func newTestClient(t *testing.T) (*Client, *MemoryBackend, *MemoryCache) {
	t.Helper()
	clock := &fixedClock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	backend := NewMemoryBackend().WithClock(clock.now)
	cache := NewMemoryCache(0)
	seq := 0
	client := NewClient(backend, Options{
		Cache:   cache,
		Metrics: observability.NewMetrics(),
		NewID: func() string {
			seq++
			return fmt.Sprintf("doc-%03d", seq)
		},
	})
	return client, backend, cache
}

func TestAddStampsTimestampsAndDropsCallerValues(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newTestClient(t)

	id, err := client.Add(ctx, "orders", Document{
		"customerName": "Sara",
		"createdAt":    "1999-01-01T00:00:00Z",
		"id":           "forged",
	})
	require.NoError(t, err)
	assert.Equal(t, "doc-001", id)

	doc, meta, err := client.Get(ctx, "orders", id)
	require.NoError(t, err)
	assert.False(t, meta.FromCache)
	assert.Equal(t, id, doc.ID())
	assert.Equal(t, "Sara", doc["customerName"])
	assert.NotEqual(t, "1999-01-01T00:00:00Z", doc[FieldCreatedAt])
	assert.Equal(t, doc[FieldCreatedAt], doc[FieldUpdatedAt])

	_, ok := ParseTime(doc[FieldCreatedAt])
	assert.True(t, ok)
}

func TestGetMissingIsNotFound(t *testing.T) {
	client, _, _ := newTestClient(t)

	_, _, err := client.Get(context.Background(), "orders", "nope")
	require.Error(t, err)
	assert.Equal(t, errorutil.KindNotFound, errorutil.KindOf(err))
}

func TestUpdateMergesAndRequiresRecord(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newTestClient(t)

	id, err := client.Add(ctx, "products", Document{"name": "Basic", "price": 10})
	require.NoError(t, err)
	before, _, err := client.Get(ctx, "products", id)
	require.NoError(t, err)

	require.NoError(t, client.Update(ctx, "products", id, Document{"price": 12}))
	after, _, err := client.Get(ctx, "products", id)
	require.NoError(t, err)
	assert.Equal(t, "Basic", after["name"])
	assert.Equal(t, float64(12), after["price"])
	assert.Equal(t, before[FieldCreatedAt], after[FieldCreatedAt])
	assert.NotEqual(t, before[FieldUpdatedAt], after[FieldUpdatedAt])

	err = client.Update(ctx, "products", "missing", Document{"price": 1})
	assert.True(t, errorutil.IsKind(err, errorutil.KindNotFound))
}

func TestConcurrentPartialUpdatesReplayInEitherOrder(t *testing.T) {
	ctx := context.Background()
	first := Document{"status": "approved"}
	second := Document{"notes": "call back"}

	replay := func(updates ...Document) Document {
		client, _, _ := newTestClient(t)
		id, err := client.Add(ctx, "orders", Document{"status": "pending", "notes": ""})
		require.NoError(t, err)
		for _, u := range updates {
			require.NoError(t, client.Update(ctx, "orders", id, u))
		}
		doc, _, err := client.Get(ctx, "orders", id)
		require.NoError(t, err)
		return doc
	}

	ab := replay(first, second)
	ba := replay(second, first)
	for _, doc := range []Document{ab, ba} {
		assert.Equal(t, "approved", doc["status"])
		assert.Equal(t, "call back", doc["notes"])
	}

	// Same field: last write wins.
	lastA := replay(Document{"status": "approved"}, Document{"status": "rejected"})
	lastB := replay(Document{"status": "rejected"}, Document{"status": "approved"})
	assert.Equal(t, "rejected", lastA["status"])
	assert.Equal(t, "approved", lastB["status"])
}

func TestArrayUnionAppendsAtEnd(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newTestClient(t)

	id, err := client.Add(ctx, "support_tickets", Document{"replies": []any{}})
	require.NoError(t, err)
	for _, content := range []string{"one", "two", "three"} {
		reply := map[string]any{"id": content, "content": content}
		require.NoError(t, client.Update(ctx, "support_tickets", id, Document{"replies": ArrayUnion(reply)}))
	}

	doc, _, err := client.Get(ctx, "support_tickets", id)
	require.NoError(t, err)
	replies := doc["replies"].([]any)
	require.Len(t, replies, 3)
	for i, want := range []string{"one", "two", "three"} {
		assert.Equal(t, want, replies[i].(map[string]any)["content"])
	}
}

func TestSetOverwriteAndMerge(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newTestClient(t)

	require.NoError(t, client.Set(ctx, "settings", "system", Document{"theme": "dark", "language": "en"}, SetOptions{}))
	require.NoError(t, client.Set(ctx, "settings", "system", Document{"theme": "light"}, SetOptions{Merge: true, Touch: true}))

	doc, _, err := client.Get(ctx, "settings", "system")
	require.NoError(t, err)
	assert.Equal(t, "light", doc["theme"])
	assert.Equal(t, "en", doc["language"])
	assert.Contains(t, doc, FieldUpdatedAt)

	require.NoError(t, client.Set(ctx, "settings", "system", Document{"theme": "dark"}, SetOptions{}))
	doc, _, err = client.Get(ctx, "settings", "system")
	require.NoError(t, err)
	assert.Equal(t, Document{"id": "system", "theme": "dark"}, doc)
}

func TestSetKeepsSuppliedTimestamps(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newTestClient(t)

	data := Document{"id": "u1", "email": "a@b.c", "createdAt": "2023-01-01T00:00:00.000000000Z", "updatedAt": "2023-02-01T00:00:00.000000000Z"}
	require.NoError(t, client.Set(ctx, "users", "u1", data, SetOptions{}))

	doc, _, err := client.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, data, doc)
}

func TestListOrderingAndLimit(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newTestClient(t)

	for _, order := range []int{3, 1, 2} {
		_, err := client.Add(ctx, "faqs", Document{"order": order})
		require.NoError(t, err)
	}

	res, err := client.List(ctx, "faqs", ListOptions{OrderBy: &OrderBy{Field: "order", Direction: Asc}})
	require.NoError(t, err)
	require.Len(t, res.Documents, 3)
	assert.Equal(t, float64(1), res.Documents[0]["order"])
	assert.Equal(t, float64(3), res.Documents[2]["order"])

	res, err = client.List(ctx, "faqs", ListOptions{OrderBy: &OrderBy{Field: FieldCreatedAt, Direction: Desc}, Limit: 2})
	require.NoError(t, err)
	require.Len(t, res.Documents, 2)
	assert.Equal(t, float64(2), res.Documents[0]["order"])

	empty, err := client.List(ctx, "nothing", ListOptions{})
	require.NoError(t, err)
	assert.NotNil(t, empty.Documents)
	assert.Empty(t, empty.Documents)
}

func TestReadsFallBackToCacheWhenUnavailable(t *testing.T) {
	ctx := context.Background()
	client, backend, _ := newTestClient(t)

	id, err := client.Add(ctx, "products", Document{"name": "Pro"})
	require.NoError(t, err)
	_, err = client.List(ctx, "products", ListOptions{})
	require.NoError(t, err)

	backend.SetAvailable(false)

	res, err := client.List(ctx, "products", ListOptions{})
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	require.Len(t, res.Documents, 1)
	assert.Equal(t, "Pro", res.Documents[0]["name"])

	doc, meta, err := client.Get(ctx, "products", id)
	require.NoError(t, err)
	assert.True(t, meta.FromCache)
	assert.Equal(t, id, doc.ID())

	_, err = client.Add(ctx, "products", Document{"name": "Other"})
	assert.True(t, errorutil.IsKind(err, errorutil.KindUnavailable))
}

func TestOfflineReadsOnlyTouchCache(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newTestClient(t)

	_, err := client.Add(ctx, "faqs", Document{"question": "q"})
	require.NoError(t, err)

	client.Connectivity().SetOffline()
	_, err = client.List(ctx, "faqs", ListOptions{})
	assert.True(t, errorutil.IsKind(err, errorutil.KindUnavailable), "uncached collection must be unavailable offline")

	client.Connectivity().SetOnline()
	_, err = client.List(ctx, "faqs", ListOptions{})
	require.NoError(t, err)

	client.Connectivity().SetOffline()
	res, err := client.List(ctx, "faqs", ListOptions{})
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Len(t, res.Documents, 1)
}

func TestUnavailableWithoutCache(t *testing.T) {
	backend := NewMemoryBackend()
	client := NewClient(backend, Options{})
	backend.SetAvailable(false)

	_, err := client.List(context.Background(), "orders", ListOptions{})
	require.Error(t, err)
	assert.Equal(t, errorutil.KindUnavailable, errorutil.KindOf(err))
	assert.Equal(t, errorutil.CodeUnavailable, errorutil.CodeOf(err))
}

func TestUncachedCollectionsBypassCache(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	cache := NewMemoryCache(0)
	client := NewClient(backend, Options{Cache: cache, Uncached: []string{"auth_credentials"}})

	require.NoError(t, client.Create(ctx, "auth_credentials", "sara@example.com", Document{"passwordHash": "$2a$hash"}))
	_, _, err := client.Get(ctx, "auth_credentials", "sara@example.com")
	require.NoError(t, err)
	_, err = client.List(ctx, "auth_credentials", ListOptions{})
	require.NoError(t, err)
	_, err = client.List(ctx, "users", ListOptions{})
	require.NoError(t, err)

	_, err = cache.GetDocument(ctx, "auth_credentials", "sara@example.com")
	assert.True(t, errorutil.IsKind(err, errorutil.KindNotFound))
	_, err = cache.GetCollection(ctx, "auth_credentials")
	assert.True(t, errorutil.IsKind(err, errorutil.KindNotFound))
	_, err = cache.GetCollection(ctx, "users")
	assert.NoError(t, err)

	backend.SetAvailable(false)
	_, _, err = client.Get(ctx, "auth_credentials", "sara@example.com")
	assert.True(t, errorutil.IsKind(err, errorutil.KindUnavailable))
}

func TestWritesInvalidateCache(t *testing.T) {
	ctx := context.Background()
	client, _, cache := newTestClient(t)

	id, err := client.Add(ctx, "orders", Document{"status": "pending"})
	require.NoError(t, err)
	_, err = client.List(ctx, "orders", ListOptions{})
	require.NoError(t, err)
	_, err = cache.GetCollection(ctx, "orders")
	require.NoError(t, err)

	require.NoError(t, client.Update(ctx, "orders", id, Document{"status": "approved"}))
	_, err = cache.GetCollection(ctx, "orders")
	assert.True(t, errorutil.IsKind(err, errorutil.KindNotFound))
	_, err = cache.GetDocument(ctx, "orders", id)
	assert.True(t, errorutil.IsKind(err, errorutil.KindNotFound))
}

func TestBatchDelete(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newTestClient(t)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := client.Add(ctx, "backups", Document{"n": i})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, client.BatchDelete(ctx, "backups", ids[:2]))

	res, err := client.List(ctx, "backups", ListOptions{})
	require.NoError(t, err)
	require.Len(t, res.Documents, 1)
	assert.Equal(t, ids[2], res.Documents[0].ID())

	require.NoError(t, client.Delete(ctx, "backups", "never-existed"))
}

func TestStoreMetricsRecorded(t *testing.T) {
	ctx := context.Background()
	metrics := observability.NewMetrics()
	client := NewClient(NewMemoryBackend(), Options{Metrics: metrics})

	_, err := client.Add(ctx, "orders", Document{"a": 1})
	require.NoError(t, err)
	_, _, err = client.Get(ctx, "orders", "missing")
	require.Error(t, err)

	families, err := metrics.Gatherer().Gather()
	require.NoError(t, err)
	outcomes := map[string]float64{}
	for _, fam := range families {
		if fam.GetName() != "docstore_operations_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			outcomes[labels["op"]+":"+labels["outcome"]] += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(1), outcomes["add:ok"])
	assert.Equal(t, float64(1), outcomes["get:not_found"])
}

func TestCreateWithIDConflicts(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newTestClient(t)

	require.NoError(t, client.Create(ctx, "auth_credentials", "a@b.c", Document{"uid": "u1"}))
	err := client.Create(ctx, "auth_credentials", "a@b.c", Document{"uid": "u2"})
	assert.True(t, errorutil.IsKind(err, errorutil.KindConflict))

	doc, _, err := client.Get(ctx, "auth_credentials", "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "u1", doc["uid"])
}
