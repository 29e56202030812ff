package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

const redisKeyPrefix = "docstore:"

// RedisCache keeps JSON-encoded snapshots in Redis so that several API
// processes share one offline copy.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache uses client with the given TTL; ttl <= 0 disables expiry.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisCache{client: client, ttl: ttl}
}

func collectionKey(collection string) string {
	return redisKeyPrefix + "coll:" + collection
}

func documentKey(collection, id string) string {
	return redisKeyPrefix + "doc:" + docKey(collection, id)
}

func (c *RedisCache) GetCollection(ctx context.Context, collection string) ([]Document, error) {
	raw, err := c.client.Get(ctx, collectionKey(collection)).Bytes()
	if err != nil {
		return nil, classifyRedis(err, collection, "")
	}
	var docs []Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, errorutil.NewInternalError(fmt.Errorf("decode cached %s: %w", collection, err))
	}
	return docs, nil
}

func (c *RedisCache) PutCollection(ctx context.Context, collection string, docs []Document) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return errorutil.NewInternalError(err)
	}
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, collectionKey(collection), raw, c.ttl)
	for _, doc := range docs {
		encoded, err := json.Marshal(doc)
		if err != nil {
			return errorutil.NewInternalError(err)
		}
		pipe.Set(ctx, documentKey(collection, doc.ID()), encoded, c.ttl)
	}
	_, err = pipe.Exec(ctx)
	return classifyRedis(err, collection, "")
}

func (c *RedisCache) GetDocument(ctx context.Context, collection, id string) (Document, error) {
	raw, err := c.client.Get(ctx, documentKey(collection, id)).Bytes()
	if err != nil {
		return nil, classifyRedis(err, collection, id)
	}
	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errorutil.NewInternalError(fmt.Errorf("decode cached %s/%s: %w", collection, id, err))
	}
	return doc, nil
}

func (c *RedisCache) PutDocument(ctx context.Context, collection string, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return errorutil.NewInternalError(err)
	}
	err = c.client.Set(ctx, documentKey(collection, doc.ID()), raw, c.ttl).Err()
	return classifyRedis(err, collection, doc.ID())
}

func (c *RedisCache) Invalidate(ctx context.Context, collection, id string) error {
	keys := []string{collectionKey(collection)}
	if id != "" {
		keys = append(keys, documentKey(collection, id))
	}
	return classifyRedis(c.client.Del(ctx, keys...).Err(), collection, id)
}

func classifyRedis(err error, collection, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.Nil):
		return cacheMiss(collection, id)
	default:
		return errorutil.NewUnavailable(fmt.Errorf("redis cache: %w", err))
	}
}
