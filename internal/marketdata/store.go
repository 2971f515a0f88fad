// Package marketdata holds the point-in-time snapshots pricing runs against.
// Every pricing result pins the snapshot id it was computed from, so the
// attestation trail can reproduce the inputs of any quote.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNoSnapshot means the store has never seen the requested symbol.
var ErrNoSnapshot = errors.New("marketdata: no snapshot for symbol")

// Snapshot is one observed market state for a symbol. History is the recent
// closing-price series, oldest first, used for realized-vol estimation.
type Snapshot struct {
	ID      string    `msgpack:"id" json:"id"`
	Symbol  string    `msgpack:"symbol" json:"symbol"`
	Spot    float64   `msgpack:"spot" json:"spot"`
	History []float64 `msgpack:"history" json:"history"`
	TakenAt time.Time `msgpack:"taken_at" json:"taken_at"`
}

// Validate rejects snapshots that cannot anchor a pricing run.
func (s Snapshot) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("marketdata: invalid Snapshot: id is required")
	}
	if s.Symbol == "" {
		return fmt.Errorf("marketdata: invalid Snapshot %s: symbol is required", s.ID)
	}
	if s.Spot <= 0 {
		return fmt.Errorf("marketdata: invalid Snapshot %s: spot %v must be positive", s.ID, s.Spot)
	}
	return nil
}

// NewSnapshotID mints a fresh snapshot identifier.
func NewSnapshotID() string {
	return "SNAP-" + uuid.NewString()
}

// Store persists snapshots and serves the latest one per symbol.
type Store interface {
	Put(ctx context.Context, s Snapshot) error
	Latest(ctx context.Context, symbol string) (Snapshot, error)
}

// MemoryStore is the in-process store used in tests and dev mode.
type MemoryStore struct {
	mu     sync.RWMutex
	latest map[string]Snapshot
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{latest: make(map[string]Snapshot)}
}

// Put stores the snapshot as the latest state of its symbol.
func (m *MemoryStore) Put(_ context.Context, s Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest[s.Symbol] = s
	return nil
}

// Latest returns the most recent snapshot for the symbol.
func (m *MemoryStore) Latest(_ context.Context, symbol string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.latest[symbol]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNoSnapshot, symbol)
	}
	return s, nil
}
