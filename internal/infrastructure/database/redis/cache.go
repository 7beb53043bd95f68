package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-molkit/pkg/errors"
)

var (
	ErrCacheMiss      = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrNullValue      = errors.New(errors.ErrCodeNotFound, "cached null value")
	ErrSerialization  = errors.New(errors.ErrCodeSerialization, "cache serialization failed")
	ErrInvalidPattern = errors.New(errors.ErrCodeValidation, "pattern must not be empty or bare wildcard")
)

const (
	DefaultPrefix = "molkit:"
	nullMarker    = "__null__"
	scanBatch     = 200
)

// Cache stores JSON-encoded values under a namespaced key.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	SetNull(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}

type cacheOptions struct {
	prefix     string
	defaultTTL time.Duration
	jitter     float64
}

// CacheOption customises NewCache.
type CacheOption func(*cacheOptions)

func WithPrefix(prefix string) CacheOption {
	return func(o *cacheOptions) { o.prefix = prefix }
}

func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(o *cacheOptions) { o.defaultTTL = ttl }
}

// WithJitter spreads expirations by up to the given fraction of the TTL.
// Zero disables jitter.
func WithJitter(fraction float64) CacheOption {
	return func(o *cacheOptions) { o.jitter = fraction }
}

type redisCache struct {
	client *Client
	opts   cacheOptions
	group  singleflight.Group
	logger logging.Logger
}

func NewCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	o := cacheOptions{prefix: DefaultPrefix, defaultTTL: time.Hour, jitter: 0.1}
	for _, opt := range opts {
		opt(&o)
	}
	return &redisCache{client: client, opts: o, logger: logging.OrNop(log)}
}

func (c *redisCache) key(k string) string { return c.opts.prefix + k }

func (c *redisCache) ttl(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		ttl = c.opts.defaultTTL
	}
	if c.opts.jitter > 0 {
		ttl += time.Duration(rand.Float64() * c.opts.jitter * float64(ttl))
	}
	return ttl
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.client.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache get")
	}
	if raw == nullMarker {
		return ErrNullValue
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return ErrSerialization.WithCause(err)
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return ErrSerialization.WithCause(err)
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache set")
	}
	return nil
}

func (c *redisCache) SetNull(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), nullMarker, c.ttl(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache set null")
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache delete")
	}
	return nil
}

func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "cache exists")
	}
	return n > 0, nil
}

// GetOrSet reads key into dest, calling loader on a miss.  Concurrent misses
// for the same key share one loader call.
func (c *redisCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil || err == ErrNullValue {
		return err
	}
	if err != ErrCacheMiss {
		c.logger.Warn("cache read failed, loading", logging.String("key", key), logging.Err(err))
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		val, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(val)
		if err != nil {
			return nil, ErrSerialization.WithCause(err)
		}
		if err := c.client.Set(ctx, c.key(key), data, c.ttl(ttl)).Err(); err != nil {
			c.logger.Warn("cache write failed", logging.String("key", key), logging.Err(err))
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(v.([]byte), dest); err != nil {
		return ErrSerialization.WithCause(err)
	}
	return nil
}

func (c *redisCache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	if prefix == "" || prefix == "*" {
		return 0, ErrInvalidPattern
	}
	match := fmt.Sprintf("%s%s*", c.opts.prefix, prefix)
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "cache scan")
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "cache delete")
			}
			deleted += n
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}

//Personal.AI order the ending
