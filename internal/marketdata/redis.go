package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// snapshotTTL bounds how long a stale snapshot can be served. Pricing against
// a snapshot older than this is worse than refusing to price.
const snapshotTTL = 15 * time.Minute

// RedisStore keeps snapshots in redis so every worker process prices against
// the same market state. Blobs are msgpack-encoded; keys are per symbol with
// an id-addressed copy for attestation lookups.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an existing redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func symbolKey(symbol string) string { return "md:latest:" + symbol }
func idKey(id string) string         { return "md:snapshot:" + id }

// Put stores the snapshot under both its symbol and its id.
func (r *RedisStore) Put(ctx context.Context, s Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	blob, err := msgpack.Marshal(s)
	if err != nil {
		return fmt.Errorf("marketdata: encode snapshot %s: %w", s.ID, err)
	}
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, symbolKey(s.Symbol), blob, snapshotTTL)
	pipe.Set(ctx, idKey(s.ID), blob, snapshotTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("marketdata: store snapshot %s: %w", s.ID, err)
	}
	return nil
}

// Latest returns the most recent snapshot for the symbol.
func (r *RedisStore) Latest(ctx context.Context, symbol string) (Snapshot, error) {
	blob, err := r.rdb.Get(ctx, symbolKey(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNoSnapshot, symbol)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("marketdata: load snapshot for %s: %w", symbol, err)
	}
	var s Snapshot
	if err := msgpack.Unmarshal(blob, &s); err != nil {
		return Snapshot{}, fmt.Errorf("marketdata: decode snapshot for %s: %w", symbol, err)
	}
	return s, nil
}

// ByID returns the snapshot a pricing attestation references.
func (r *RedisStore) ByID(ctx context.Context, id string) (Snapshot, error) {
	blob, err := r.rdb.Get(ctx, idKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, fmt.Errorf("%w: id %s", ErrNoSnapshot, id)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("marketdata: load snapshot %s: %w", id, err)
	}
	var s Snapshot
	if err := msgpack.Unmarshal(blob, &s); err != nil {
		return Snapshot{}, fmt.Errorf("marketdata: decode snapshot %s: %w", id, err)
	}
	return s, nil
}
