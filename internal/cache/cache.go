package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/anime-shed/erosion-inspector-go/pkg/models"
)

const keyPrefix = "erosion:"

// ErrMiss is returned by ResultCache.Get when nothing is stored for the image.
var ErrMiss = errors.New("cache miss")

// Store abstracts the Redis operations used by the result cache.
type Store interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

// RedisStore is a Store backed by go-redis.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.client.Set(ctx, key, value, expiration).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

// ResultCache memoizes classification results by image content. The
// classifier is deterministic for a fixed resampler, so entries are keyed by
// the resampler name as well as the bytes.
type ResultCache interface {
	Get(ctx context.Context, data []byte) (*models.ErosionResult, error)
	Set(ctx context.Context, data []byte, result *models.ErosionResult) error
}

type resultCache struct {
	store     Store
	namespace string
	ttl       time.Duration
}

// NewResultCache stores results under namespace, which names the resampler
// that produced them.
func NewResultCache(store Store, namespace string, ttl time.Duration) ResultCache {
	return &resultCache{store: store, namespace: namespace, ttl: ttl}
}

// Key returns the cache key for an image payload classified under namespace.
func Key(namespace string, data []byte) string {
	sum := sha256.Sum256(data)
	return keyPrefix + namespace + ":" + hex.EncodeToString(sum[:])
}

func (c *resultCache) Get(ctx context.Context, data []byte) (*models.ErosionResult, error) {
	raw, err := c.store.Get(ctx, Key(c.namespace, data))
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var result models.ErosionResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &result, nil
}

func (c *resultCache) Set(ctx context.Context, data []byte, result *models.ErosionResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.store.Set(ctx, Key(c.namespace, data), payload, c.ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// NoopCache never stores anything. It is used when no redis address is
// configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, []byte) (*models.ErosionResult, error) { return nil, ErrMiss }

func (NoopCache) Set(context.Context, []byte, *models.ErosionResult) error { return nil }
