// Package delivery sends term sheets and trade confirmations to the client's
// configured endpoint. Delivery is at-least-once with idempotency keys, so a
// retried send never duplicates a document the client already has.
package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/openderiv/rfqdesk/internal/codec"
	"github.com/openderiv/rfqdesk/internal/metrics"
	"github.com/openderiv/rfqdesk/internal/rfq"
)

// Sender delivers the two client-facing documents.
type Sender interface {
	SendTermSheet(ctx context.Context, sheet rfq.TermSheet) error
	SendConfirmation(ctx context.Context, booking rfq.Booking, sheet rfq.TermSheet) error
}

// Webhook posts tagged-JSON documents to a single endpoint. A circuit
// breaker sheds load when the endpoint is down; the workflow's retry policy
// handles the rest.
type Webhook struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	dedup    Dedup
	codec    *codec.Codec
	log      zerolog.Logger
}

// NewWebhook builds the sender. The breaker opens after five consecutive
// failures and probes again after 30 seconds.
func NewWebhook(endpoint string, dedup Dedup, c *codec.Codec, log zerolog.Logger) *Webhook {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "delivery-webhook",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Webhook{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
		breaker:  breaker,
		dedup:    dedup,
		codec:    c,
		log:      log.With().Str("component", "delivery").Logger(),
	}
}

func (w *Webhook) SendTermSheet(ctx context.Context, sheet rfq.TermSheet) error {
	key := "delivery:" + sheet.DocumentHash.String()
	fresh, err := w.dedup.Claim(ctx, key)
	if err != nil {
		return fmt.Errorf("delivery: claim %s: %w", key, err)
	}
	if !fresh {
		metrics.DeliveryDeduped.Inc()
		w.log.Debug().Str("rfq_id", sheet.RFQID.String()).Msg("term sheet already delivered, skipping")
		return nil
	}
	if err := w.post(ctx, "term_sheet", sheet); err != nil {
		metrics.DeliveryFailures.WithLabelValues("term_sheet").Inc()
		w.release(ctx, key)
		return err
	}
	metrics.QuotesSent.Inc()
	w.log.Info().
		Str("rfq_id", sheet.RFQID.String()).
		Str("document_hash", sheet.DocumentHash.String()).
		Msg("term sheet delivered")
	return nil
}

func (w *Webhook) SendConfirmation(ctx context.Context, booking rfq.Booking, sheet rfq.TermSheet) error {
	key := "confirm:" + booking.TradeID.String()
	fresh, err := w.dedup.Claim(ctx, key)
	if err != nil {
		return fmt.Errorf("delivery: claim %s: %w", key, err)
	}
	if !fresh {
		metrics.DeliveryDeduped.Inc()
		w.log.Debug().Str("trade_id", booking.TradeID.String()).Msg("confirmation already delivered, skipping")
		return nil
	}
	// The codec resolves the nested records; the envelope stays a plain
	// object.
	payload := map[string]any{"booking": booking, "term_sheet": sheet}
	if err := w.post(ctx, "confirmation", payload); err != nil {
		metrics.DeliveryFailures.WithLabelValues("confirmation").Inc()
		w.release(ctx, key)
		return err
	}
	w.log.Info().Str("trade_id", booking.TradeID.String()).Msg("confirmation delivered")
	return nil
}

// release returns a claimed key after a failed send so the next attempt posts
// again. A claim that outlives its failed post would turn the retry into a
// silent no-op.
func (w *Webhook) release(ctx context.Context, key string) {
	if err := w.dedup.Release(ctx, key); err != nil {
		w.log.Error().Err(err).Str("key", key).Msg("failed to release delivery claim")
	}
}

func (w *Webhook) post(ctx context.Context, kind string, document any) error {
	body, err := w.codec.Encode(document)
	if err != nil {
		return fmt.Errorf("delivery: encode %s: %w", kind, err)
	}

	_, err = w.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Document-Kind", kind)

		resp, err := w.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("endpoint returned %d: %s", resp.StatusCode, snippet)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("delivery: post %s: %w", kind, err)
	}
	return nil
}

// LogSender is the dev-mode transport: documents go to the log and nowhere
// else.
type LogSender struct {
	log zerolog.Logger
}

// NewLogSender creates the log-only transport.
func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log.With().Str("component", "delivery").Logger()}
}

func (s *LogSender) SendTermSheet(_ context.Context, sheet rfq.TermSheet) error {
	s.log.Info().
		Str("rfq_id", sheet.RFQID.String()).
		Str("document_hash", sheet.DocumentHash.String()).
		Str("price", sheet.Pricing.IndicativePrice.String()).
		Msg("term sheet (log-only delivery)")
	return nil
}

func (s *LogSender) SendConfirmation(_ context.Context, booking rfq.Booking, _ rfq.TermSheet) error {
	s.log.Info().
		Str("trade_id", booking.TradeID.String()).
		Str("uti", booking.UTI.String()).
		Msg("confirmation (log-only delivery)")
	return nil
}
