package golfapi

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores raw search responses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	rc *redis.Client
}

func NewRedisCache(rc *redis.Client) *RedisCache { return &RedisCache{rc: rc} }

// OpenRedis returns a client for addr, or nil when addr is empty.
func OpenRedis(addr, pass string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

// Get treats every failure as a miss.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.rc.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return nil, false
	}
	return b, true
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return r.rc.Set(ctx, key, value, ttl).Err()
}

// Close closes the underlying client.
func (r *RedisCache) Close() error { return r.rc.Close() }
