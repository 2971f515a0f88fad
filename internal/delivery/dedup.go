package delivery

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Dedup guards at-least-once delivery: Claim returns true exactly once per
// key, so a retried activity skips the side effect it already performed.
// Release hands the key back after a failed send, otherwise the retry would
// see a claim with no delivery behind it and skip the document forever.
type Dedup interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisDedup claims keys with SETNX under a TTL, sharing state across worker
// processes.
type RedisDedup struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisDedup creates the claim store. A zero ttl defaults to 48h, past
// the longest negotiation window.
func NewRedisDedup(rdb *redis.Client, ttl time.Duration) *RedisDedup {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &RedisDedup{rdb: rdb, ttl: ttl}
}

func (d *RedisDedup) Claim(ctx context.Context, key string) (bool, error) {
	return d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
}

func (d *RedisDedup) Release(ctx context.Context, key string) error {
	return d.rdb.Del(ctx, key).Err()
}

// MemoryDedup is the in-process claim store for tests and dev mode.
type MemoryDedup struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryDedup creates an empty claim store.
func NewMemoryDedup() *MemoryDedup {
	return &MemoryDedup{seen: make(map[string]struct{})}
}

func (d *MemoryDedup) Claim(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[key]; ok {
		return false, nil
	}
	d.seen[key] = struct{}{}
	return true, nil
}

func (d *MemoryDedup) Release(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
	return nil
}
