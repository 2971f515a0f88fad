package delivery

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openderiv/rfqdesk/internal/codec"
	"github.com/openderiv/rfqdesk/internal/rfq"
	"github.com/openderiv/rfqdesk/internal/values"
)

func testSheet(t *testing.T, rfqID string) rfq.TermSheet {
	t.Helper()
	price, err := values.NewMoney(decimal.RequireFromString("42.5"), values.MustCurrency("USD"))
	require.NoError(t, err)
	pricing, err := rfq.NewPricingResult(rfq.PricingResult{
		IndicativePrice: price,
		Greeks:          rfq.Greeks{{Name: "delta", Value: decimal.RequireFromString("0.5")}},
		ModelName:       values.MustNonEmptyString("BlackScholes"),
		SnapshotID:      values.MustNonEmptyString("SNAP-DLV"),
		Confidence:      0.9,
		AttestationID:   values.MustNonEmptyString("ATT-DLV"),
		Timestamp:       values.MustUTCTime("2026-08-25T09:45:00Z"),
	})
	require.NoError(t, err)

	id := values.MustNonEmptyString(rfqID)
	sheet, err := rfq.NewTermSheet(rfq.TermSheet{
		RFQID:        id,
		Pricing:      pricing,
		DocumentHash: values.MustNonEmptyString(rfq.DocumentHash(id, pricing)),
		GeneratedAt:  values.MustUTCTime("2026-08-25T09:45:00Z"),
		ValidUntil:   values.MustUTCTime("2026-08-25T10:45:00Z"),
	})
	require.NoError(t, err)
	return sheet
}

func testBooking(t *testing.T, tradeID string) rfq.Booking {
	t.Helper()
	b, err := rfq.NewBooking(rfq.Booking{
		TradeID:  values.MustNonEmptyString(tradeID),
		UTI:      values.MustUTI("5493001KJTIIGC8Y1R12DLV1"),
		BookedAt: values.MustUTCTime("2026-08-25T10:00:00Z"),
	})
	require.NoError(t, err)
	return b
}

func newWebhook(t *testing.T, endpoint string) *Webhook {
	t.Helper()
	return NewWebhook(endpoint, NewMemoryDedup(), codec.New(codec.DefaultRegistry()), zerolog.Nop())
}

func TestWebhookSendTermSheet(t *testing.T) {
	var calls atomic.Int64
	var lastKind atomic.Value
	var lastBody atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		lastKind.Store(r.Header.Get("X-Document-Kind"))
		body, _ := io.ReadAll(r.Body)
		lastBody.Store(string(body))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	wh := newWebhook(t, srv.URL)
	sheet := testSheet(t, "RFQ-DLV-1")

	require.NoError(t, wh.SendTermSheet(context.Background(), sheet))
	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, "term_sheet", lastKind.Load())
	assert.Contains(t, lastBody.Load().(string), `"__type__":"TermSheet"`)

	// Replay dedupes on the document hash.
	require.NoError(t, wh.SendTermSheet(context.Background(), sheet))
	assert.Equal(t, int64(1), calls.Load())
}

func TestWebhookSendConfirmation(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := newWebhook(t, srv.URL)
	booking := testBooking(t, "TRADE-RFQ-DLV-2")
	sheet := testSheet(t, "RFQ-DLV-2")

	require.NoError(t, wh.SendConfirmation(context.Background(), booking, sheet))
	require.NoError(t, wh.SendConfirmation(context.Background(), booking, sheet))
	assert.Equal(t, int64(1), calls.Load(), "confirmation dedupes on trade id")
}

func TestWebhookEndpointFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "ledger sync in progress", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	wh := newWebhook(t, srv.URL)
	err := wh.SendTermSheet(context.Background(), testSheet(t, "RFQ-DLV-3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestFailedSendReleasesClaim(t *testing.T) {
	var hits, delivered atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "bad gateway", http.StatusBadGateway)
			return
		}
		delivered.Add(1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	wh := newWebhook(t, srv.URL)
	sheet := testSheet(t, "RFQ-DLV-6")

	require.Error(t, wh.SendTermSheet(context.Background(), sheet))

	// The retry must post again, not skip on a claim the failed attempt left
	// behind.
	require.NoError(t, wh.SendTermSheet(context.Background(), sheet))
	assert.Equal(t, int64(2), hits.Load())
	assert.Equal(t, int64(1), delivered.Load())

	// A third attempt dedupes against the successful delivery.
	require.NoError(t, wh.SendTermSheet(context.Background(), sheet))
	assert.Equal(t, int64(2), hits.Load())
}

func TestFailedConfirmationReleasesClaim(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := newWebhook(t, srv.URL)
	booking := testBooking(t, "TRADE-RFQ-DLV-7")
	sheet := testSheet(t, "RFQ-DLV-7")

	require.Error(t, wh.SendConfirmation(context.Background(), booking, sheet))
	require.NoError(t, wh.SendConfirmation(context.Background(), booking, sheet))
	assert.Equal(t, int64(2), hits.Load())
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	// Failed sends release their claim, so the same sheet keeps hitting the
	// endpoint until the breaker trips.
	wh := newWebhook(t, srv.URL)
	for i := 0; i < 5; i++ {
		err := wh.SendTermSheet(context.Background(), testSheet(t, "RFQ-DLV-4"))
		require.Error(t, err)
	}

	err := wh.SendTermSheet(context.Background(), testSheet(t, "RFQ-DLV-4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}

func TestMemoryDedup(t *testing.T) {
	d := NewMemoryDedup()
	fresh, err := d.Claim(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, fresh)
	fresh, err = d.Claim(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, fresh)

	require.NoError(t, d.Release(context.Background(), "k"))
	fresh, err = d.Claim(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, fresh, "a released key claims fresh again")
}

func TestLogSender(t *testing.T) {
	s := NewLogSender(zerolog.Nop())
	require.NoError(t, s.SendTermSheet(context.Background(), testSheet(t, "RFQ-DLV-5")))
	require.NoError(t, s.SendConfirmation(context.Background(), testBooking(t, "TRADE-RFQ-DLV-5"), testSheet(t, "RFQ-DLV-5")))
}
