// Package cache holds the Redis-backed event list cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"eventlisting/src/core/ports"
)

const (
	// ListKey is the key under which the projected event list is stored.
	ListKey = "events:list:all"
	// VersionKey counts list invalidations. A list is only stored while
	// the version it was read under is still current.
	VersionKey = "events:list:version"
)

// RedisCache implements EventListCache on a Redis client.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ ports.EventListCache = (*RedisCache)(nil)

// New connects to url and verifies the connection.
func New(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewWithClient(rdb, ttl), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

func (c *RedisCache) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *RedisCache) GetList(ctx context.Context, dest any) (bool, error) {
	val, err := c.rdb.Get(ctx, ListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) ListVersion(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, VersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// SetList stores list unless the version moved past version. A write that
// loses the race with an invalidation is dropped without error.
func (c *RedisCache) SetList(ctx context.Context, version int64, list any) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, VersionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, ListKey, b, c.ttl)
			return nil
		})
		return err
	}, VersionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

func (c *RedisCache) InvalidateList(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, VersionKey)
		pipe.Del(ctx, ListKey)
		return nil
	})
	return err
}
