package docstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/observability"
	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

// Options wires the optional collaborators of a Client.
type Options struct {
	Cache        Cache
	Connectivity *Connectivity
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	NewID        func() string
	// Uncached collections never touch the cache, for records such as
	// credential hashes that must not be copied out of the backend.
	Uncached []string
}

// Client is the single entry point to the document store. Every error it
// returns is an *errorutil.DomainError.
type Client struct {
	backend  Backend
	cache    Cache
	conn     *Connectivity
	logger   *zap.Logger
	metrics  *observability.Metrics
	newID    func() string
	uncached map[string]bool
	hub      *hub
}

// NewClient builds a client over backend. A nil Connectivity starts online.
func NewClient(backend Backend, opts Options) *Client {
	c := &Client{
		backend:  backend,
		cache:    opts.Cache,
		conn:     opts.Connectivity,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		newID:    opts.NewID,
		uncached: make(map[string]bool, len(opts.Uncached)),
		hub:      newHub(),
	}
	for _, name := range opts.Uncached {
		c.uncached[name] = true
	}
	if c.conn == nil {
		c.conn = NewConnectivity(true)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.newID == nil {
		c.newID = NewID
	}
	return c
}

// Connectivity exposes the online/offline flag owned by this client.
func (c *Client) Connectivity() *Connectivity {
	return c.conn
}

// Ping checks that the backend answers.
func (c *Client) Ping(ctx context.Context) error {
	return classify(c.backend.Ping(ctx))
}

// Add stores data under a fresh id and returns it.
func (c *Client) Add(ctx context.Context, collection string, data Document) (string, error) {
	start := time.Now()
	id := c.newID()
	clean, err := prepare(data, FieldID, FieldCreatedAt, FieldUpdatedAt)
	if err == nil {
		err = c.backend.Insert(ctx, collection, id, clean)
	}
	err = c.afterWrite(ctx, "add", collection, "", start, err)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Create stores data under a caller-chosen id. An existing record yields
// KindConflict.
func (c *Client) Create(ctx context.Context, collection, id string, data Document) error {
	start := time.Now()
	clean, err := prepare(data, FieldID, FieldCreatedAt, FieldUpdatedAt)
	if err == nil {
		err = c.backend.Insert(ctx, collection, id, clean)
	}
	return c.afterWrite(ctx, "create", collection, id, start, err)
}

// Get reads one record.
func (c *Client) Get(ctx context.Context, collection, id string) (Document, Meta, error) {
	start := time.Now()
	if c.conn.Online() {
		doc, err := c.backend.Get(ctx, collection, id)
		if err == nil {
			c.remember(ctx, collection, func(cache Cache) error { return cache.PutDocument(ctx, collection, doc) })
			c.observe("get", collection, start, false, nil)
			return doc, Meta{}, nil
		}
		if !c.shouldFallBack(collection, err) {
			err = classify(err)
			c.observe("get", collection, start, false, err)
			return nil, Meta{}, err
		}
		c.logger.Warn("backend unavailable, reading cache",
			zap.String("collection", collection), zap.String("id", id), zap.Error(err))
	}

	doc, err := c.cachedDocument(ctx, collection, id)
	c.observe("get", collection, start, true, err)
	if err != nil {
		return nil, Meta{}, err
	}
	return doc, Meta{FromCache: true}, nil
}

// List reads a collection snapshot.
func (c *Client) List(ctx context.Context, collection string, opts ListOptions) (ListResult, error) {
	start := time.Now()
	if c.conn.Online() {
		docs, err := c.backend.List(ctx, collection, opts)
		if err == nil {
			if docs == nil {
				docs = []Document{}
			}
			c.remember(ctx, collection, func(cache Cache) error {
				if opts.Limit > 0 {
					for _, doc := range docs {
						if err := cache.PutDocument(ctx, collection, doc); err != nil {
							return err
						}
					}
					return nil
				}
				return cache.PutCollection(ctx, collection, docs)
			})
			c.observe("list", collection, start, false, nil)
			return ListResult{Documents: docs}, nil
		}
		if !c.shouldFallBack(collection, err) {
			err = classify(err)
			c.observe("list", collection, start, false, err)
			return ListResult{}, err
		}
		c.logger.Warn("backend unavailable, reading cache",
			zap.String("collection", collection), zap.Error(err))
	}

	docs, err := c.cachedCollection(ctx, collection)
	c.observe("list", collection, start, true, err)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Documents: ApplyListOptions(docs, opts), FromCache: true}, nil
}

// Update merges partial into an existing record. Use ArrayUnion values to
// append to array fields.
func (c *Client) Update(ctx context.Context, collection, id string, partial Document) error {
	start := time.Now()
	clean, err := prepare(partial, FieldID, FieldCreatedAt, FieldUpdatedAt)
	if err == nil {
		err = c.backend.Update(ctx, collection, id, clean)
	}
	return c.afterWrite(ctx, "update", collection, id, start, err)
}

// Set upserts a record, replacing it unless opts.Merge is set.
func (c *Client) Set(ctx context.Context, collection, id string, data Document, opts SetOptions) error {
	start := time.Now()
	clean, err := prepare(data, FieldID)
	if err == nil {
		err = c.backend.Set(ctx, collection, id, clean, opts)
	}
	return c.afterWrite(ctx, "set", collection, id, start, err)
}

// Delete removes a record; deleting a missing record succeeds.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	start := time.Now()
	err := c.backend.Delete(ctx, collection, id)
	return c.afterWrite(ctx, "delete", collection, id, start, err)
}

// BatchDelete removes all ids in one backend call.
func (c *Client) BatchDelete(ctx context.Context, collection string, ids []string) error {
	start := time.Now()
	err := c.backend.BatchDelete(ctx, collection, ids)
	if cache := c.cacheFor(collection); err == nil && cache != nil {
		for _, id := range ids {
			if cerr := cache.Invalidate(ctx, collection, id); cerr != nil {
				c.logger.Warn("cache invalidate failed", zap.String("collection", collection), zap.Error(cerr))
			}
		}
	}
	return c.afterWrite(ctx, "batch_delete", collection, "", start, err)
}

// prepare strips reserved keys and normalizes values for the backend.
func prepare(data Document, reserved ...string) (Document, error) {
	clean, err := Normalize(data.without(reserved...))
	if err != nil {
		return nil, errorutil.NewValidationError("document is not JSON-encodable", map[string]any{"reason": err.Error()})
	}
	return clean, nil
}

func (c *Client) afterWrite(ctx context.Context, op, collection, id string, start time.Time, err error) error {
	if err != nil {
		err = classify(err)
		c.observe(op, collection, start, false, err)
		return err
	}
	if cache := c.cacheFor(collection); cache != nil {
		if cerr := cache.Invalidate(ctx, collection, id); cerr != nil {
			c.logger.Warn("cache invalidate failed", zap.String("collection", collection), zap.Error(cerr))
		}
	}
	c.hub.notify(collection)
	c.observe(op, collection, start, false, nil)
	return nil
}

// cacheFor returns nil when collection is uncached or no cache is configured.
func (c *Client) cacheFor(collection string) Cache {
	if c.uncached[collection] {
		return nil
	}
	return c.cache
}

func (c *Client) shouldFallBack(collection string, err error) bool {
	return c.cacheFor(collection) != nil && errorutil.IsKind(classify(err), errorutil.KindUnavailable)
}

func (c *Client) remember(ctx context.Context, collection string, put func(Cache) error) {
	cache := c.cacheFor(collection)
	if cache == nil {
		return
	}
	if err := put(cache); err != nil {
		c.logger.Warn("cache refresh failed", zap.String("collection", collection), zap.Error(err))
	}
}

func (c *Client) cachedDocument(ctx context.Context, collection, id string) (Document, error) {
	cache := c.cacheFor(collection)
	if cache == nil {
		return nil, errorutil.NewUnavailable(errors.New("offline and no cache configured"))
	}
	doc, err := cache.GetDocument(ctx, collection, id)
	if err != nil {
		return nil, offlineMiss(err)
	}
	return doc, nil
}

func (c *Client) cachedCollection(ctx context.Context, collection string) ([]Document, error) {
	cache := c.cacheFor(collection)
	if cache == nil {
		return nil, errorutil.NewUnavailable(errors.New("offline and no cache configured"))
	}
	docs, err := cache.GetCollection(ctx, collection)
	if err != nil {
		return nil, offlineMiss(err)
	}
	return docs, nil
}

// offlineMiss reports a cache miss as unavailability: without the backend
// the record's existence is unknown.
func offlineMiss(err error) error {
	if errorutil.IsKind(err, errorutil.KindNotFound) {
		return errorutil.NewUnavailable(err)
	}
	return classify(err)
}

func (c *Client) observe(op, collection string, start time.Time, fromCache bool, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		kind := errorutil.KindOf(err)
		outcome = strings.ToLower(string(kind))
		if kind == errorutil.KindUnknown {
			c.logger.Error("store operation failed",
				zap.String("op", op), zap.String("collection", collection), zap.Error(err))
		}
	case fromCache:
		outcome = "cache"
	}
	c.metrics.RecordStoreOp(collection, op, outcome, time.Since(start))
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var de *errorutil.DomainError
	if errors.As(err, &de) {
		return de
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errorutil.NewUnavailable(err)
	}
	return errorutil.NewInternalError(err)
}
