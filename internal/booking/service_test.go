package booking

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openderiv/rfqdesk/internal/instrument"
	"github.com/openderiv/rfqdesk/internal/product"
	"github.com/openderiv/rfqdesk/internal/rfq"
	"github.com/openderiv/rfqdesk/internal/values"
)

const bankLEI = "5493001KJTIIGC8Y1R12"

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewService(db, values.MustLEI(bankLEI), zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC) }
	return svc
}

func bookInput(t *testing.T, rfqID string) rfq.Input {
	t.Helper()
	in, err := rfq.NewInput(rfq.Input{
		RFQID:     values.MustNonEmptyString(rfqID),
		ClientLEI: values.MustLEI("529900T8BM49AURSDO55"),
		Detail: instrument.Equity{
			Underlying: values.MustISIN("US0378331005"),
		},
		Notional:       values.MustPositiveDecimal("500000"),
		Currency:       values.MustCurrency("USD"),
		Side:           instrument.SideBuy,
		TradeDate:      values.MustDate("2026-08-25"),
		SettlementDate: values.MustDate("2026-08-27"),
		Timestamp:      values.MustUTCTime("2026-08-25T09:30:00Z"),
	})
	require.NoError(t, err)
	return in
}

func bookProduct(t *testing.T, in rfq.Input) product.Product {
	t.Helper()
	p, err := product.New(product.Product{
		ProductID:    values.MustNonEmptyString("PROD-" + in.RFQID.String()),
		TaxonomyCode: values.MustNonEmptyString("EQ.CASH"),
		AssetClass:   product.AssetEquity,
		Economics:    product.Economics{Notional: in.Notional, Currency: in.Currency, Side: in.Side},
		Payouts:      []product.Payout{{Type: product.PayoutForward, Description: values.MustNonEmptyString("cash equity leg")}},
	})
	require.NoError(t, err)
	return p
}

func bookPricing(t *testing.T, attestationID string) rfq.PricingResult {
	t.Helper()
	price, err := values.NewMoney(decimal.RequireFromString("190.25"), values.MustCurrency("USD"))
	require.NoError(t, err)
	res, err := rfq.NewPricingResult(rfq.PricingResult{
		IndicativePrice: price,
		Greeks:          rfq.Greeks{{Name: "delta", Value: decimal.NewFromInt(1)}},
		ModelName:       values.MustNonEmptyString("CostOfCarry"),
		SnapshotID:      values.MustNonEmptyString("SNAP-BOOK"),
		Confidence:      0.9,
		AttestationID:   values.MustNonEmptyString(attestationID),
		Timestamp:       values.MustUTCTime("2026-08-25T09:45:00Z"),
	})
	require.NoError(t, err)
	return res
}

func TestBookTrade(t *testing.T) {
	ctx := context.Background()

	t.Run("books and mints identifiers", func(t *testing.T) {
		svc := newTestService(t)
		in := bookInput(t, "RFQ-BOOK-1")

		booking, err := svc.BookTrade(ctx, in, bookProduct(t, in), bookPricing(t, "ATT-1"))
		require.NoError(t, err)
		assert.Equal(t, "TRADE-RFQ-BOOK-1", booking.TradeID.String())
		assert.Equal(t, bankLEI+"RFQBOOK1", booking.UTI.String())
		assert.False(t, booking.BookedAt.IsZero())

		exists, err := svc.TradeExists(ctx, in.RFQID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("replay returns the original booking", func(t *testing.T) {
		svc := newTestService(t)
		in := bookInput(t, "RFQ-BOOK-2")
		pricing := bookPricing(t, "ATT-2")

		first, err := svc.BookTrade(ctx, in, bookProduct(t, in), pricing)
		require.NoError(t, err)
		second, err := svc.BookTrade(ctx, in, bookProduct(t, in), pricing)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("conflicting attestation is refused", func(t *testing.T) {
		svc := newTestService(t)
		in := bookInput(t, "RFQ-BOOK-3")

		_, err := svc.BookTrade(ctx, in, bookProduct(t, in), bookPricing(t, "ATT-3A"))
		require.NoError(t, err)

		_, err = svc.BookTrade(ctx, in, bookProduct(t, in), bookPricing(t, "ATT-3B"))
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "RFQ-BOOK-3", conflict.RFQID)
		assert.Equal(t, "TRADE-RFQ-BOOK-3", conflict.TradeID)
	})

	t.Run("absent rfq has no trade", func(t *testing.T) {
		svc := newTestService(t)
		exists, err := svc.TradeExists(ctx, values.MustNonEmptyString("RFQ-NEVER"))
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestLedgerMaintenance(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.db.HealthCheck(context.Background()))
	require.NoError(t, svc.db.WALCheckpoint(""))
}
