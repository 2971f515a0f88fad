package marketdata

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/openderiv/rfqdesk/internal/metrics"
)

const (
	dialTimeout        = 30 * time.Second
	baseReconnectDelay = 5 * time.Second
	maxReconnectDelay  = 5 * time.Minute
	historyLen         = 256
)

// tick is the feed's wire message.
type tick struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// StreamClient subscribes to a market data feed over websocket and folds
// each tick into a fresh snapshot in the store. The pricing activity never
// talks to the feed; it reads the store.
type StreamClient struct {
	url   string
	store Store
	log   zerolog.Logger

	mu      sync.Mutex
	history map[string][]float64
}

// NewStreamClient creates a stream client writing into the given store.
func NewStreamClient(url string, store Store, log zerolog.Logger) *StreamClient {
	return &StreamClient{
		url:     url,
		store:   store,
		log:     log.With().Str("component", "marketdata_stream").Logger(),
		history: make(map[string][]float64),
	}
}

// Run connects and keeps reading until the context is cancelled, reconnecting
// with exponential backoff on any failure.
func (s *StreamClient) Run(ctx context.Context) error {
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.connectAndRead(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		metrics.StreamReconnects.Inc()
		metrics.StreamConnected.Set(0)
		delay := reconnectDelay(attempt)
		attempt++
		s.log.Warn().Err(err).Dur("retry_in", delay).Int("attempt", attempt).Msg("Market data stream dropped, reconnecting")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (s *StreamClient) connectAndRead(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	conn, _, err := websocket.Dial(dialCtx, s.url, nil)
	cancel()
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "shutting down")

	s.log.Info().Str("url", s.url).Msg("Market data stream connected")
	metrics.StreamConnected.Set(1)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var t tick
		if err := json.Unmarshal(data, &t); err != nil {
			s.log.Warn().Err(err).Msg("Dropping malformed tick")
			continue
		}
		if t.Symbol == "" || t.Price <= 0 {
			continue
		}
		s.apply(ctx, t)
	}
}

// apply folds the tick into the symbol's history and publishes a snapshot.
func (s *StreamClient) apply(ctx context.Context, t tick) {
	s.mu.Lock()
	h := append(s.history[t.Symbol], t.Price)
	if len(h) > historyLen {
		h = h[len(h)-historyLen:]
	}
	s.history[t.Symbol] = h
	hist := make([]float64, len(h))
	copy(hist, h)
	s.mu.Unlock()

	snap := Snapshot{
		ID:      NewSnapshotID(),
		Symbol:  t.Symbol,
		Spot:    t.Price,
		History: hist,
		TakenAt: time.Now().UTC(),
	}
	if err := s.store.Put(ctx, snap); err != nil {
		s.log.Error().Err(err).Str("symbol", t.Symbol).Msg("Failed to store snapshot")
		return
	}
	metrics.SnapshotsStored.Inc()
}

func reconnectDelay(attempt int) time.Duration {
	d := time.Duration(float64(baseReconnectDelay) * math.Pow(2, float64(attempt)))
	if d > maxReconnectDelay {
		return maxReconnectDelay
	}
	return d
}
