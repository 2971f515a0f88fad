package activities

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"

	"github.com/openderiv/rfqdesk/internal/booking"
	"github.com/openderiv/rfqdesk/internal/compliance"
	"github.com/openderiv/rfqdesk/internal/instrument"
	"github.com/openderiv/rfqdesk/internal/mapping"
	"github.com/openderiv/rfqdesk/internal/pricing"
	"github.com/openderiv/rfqdesk/internal/product"
	"github.com/openderiv/rfqdesk/internal/rfq"
	"github.com/openderiv/rfqdesk/internal/values"
	wf "github.com/openderiv/rfqdesk/internal/workflow"
)

func optionRFQ(t *testing.T, rfqID string) rfq.Input {
	t.Helper()
	in, err := rfq.NewInput(rfq.Input{
		RFQID:     values.MustNonEmptyString(rfqID),
		ClientLEI: values.MustLEI("529900T8BM49AURSDO55"),
		Detail: instrument.Option{
			Underlying: values.MustNonEmptyString("US0378331005"),
			Strike:     values.MustNonNegativeDecimal("185.00"),
			Expiry:     values.MustDate("2026-12-18"),
			Type:       instrument.OptionCall,
			Style:      instrument.StyleEuropean,
			Settlement: instrument.SettleCash,
		},
		Notional:       values.MustPositiveDecimal("1000000"),
		Currency:       values.MustCurrency("USD"),
		Side:           instrument.SideBuy,
		TradeDate:      values.MustDate("2026-08-25"),
		SettlementDate: values.MustDate("2026-08-27"),
		Timestamp:      values.MustUTCTime("2026-08-25T09:30:00Z"),
	})
	require.NoError(t, err)
	return in
}

func testProduct(t *testing.T, in rfq.Input) product.Product {
	t.Helper()
	p, err := product.New(product.Product{
		ProductID:    values.MustNonEmptyString("PROD-" + in.RFQID.String()),
		TaxonomyCode: values.MustNonEmptyString("EQ.OPT.VANILLA"),
		AssetClass:   product.AssetEquity,
		Economics:    product.Economics{Notional: in.Notional, Currency: in.Currency, Side: in.Side},
		Payouts:      []product.Payout{{Type: product.PayoutOption, Description: values.MustNonEmptyString("vanilla option leg")}},
	})
	require.NoError(t, err)
	return p
}

func testPricingResult(t *testing.T) rfq.PricingResult {
	t.Helper()
	price, err := values.NewMoney(decimal.RequireFromString("12.5"), values.MustCurrency("USD"))
	require.NoError(t, err)
	res, err := rfq.NewPricingResult(rfq.PricingResult{
		IndicativePrice: price,
		Greeks:          rfq.Greeks{{Name: "delta", Value: decimal.RequireFromString("0.5")}},
		ModelName:       values.MustNonEmptyString("BlackScholes"),
		SnapshotID:      values.MustNonEmptyString("SNAP-ACT"),
		Confidence:      0.9,
		AttestationID:   values.MustNonEmptyString("ATT-ACT"),
		Timestamp:       values.MustUTCTime("2026-08-25T09:31:00Z"),
	})
	require.NoError(t, err)
	return res
}

type fakeLedger struct {
	booking rfq.Booking
	err     error
	calls   int
}

func (f *fakeLedger) BookTrade(context.Context, rfq.Input, product.Product, rfq.PricingResult) (rfq.Booking, error) {
	f.calls++
	return f.booking, f.err
}

type fakeSender struct {
	sheets        []rfq.TermSheet
	confirmations []rfq.Booking
	err           error
}

func (f *fakeSender) SendTermSheet(_ context.Context, sheet rfq.TermSheet) error {
	if f.err != nil {
		return f.err
	}
	f.sheets = append(f.sheets, sheet)
	return nil
}

func (f *fakeSender) SendConfirmation(_ context.Context, booked rfq.Booking, _ rfq.TermSheet) error {
	if f.err != nil {
		return f.err
	}
	f.confirmations = append(f.confirmations, booked)
	return nil
}

type stubPricer struct {
	name string
	fn   func(context.Context, rfq.Input, product.Product) (rfq.PricingResult, error)
}

func (p stubPricer) Name() string { return p.name }
func (p stubPricer) Price(ctx context.Context, in rfq.Input, prod product.Product) (rfq.PricingResult, error) {
	return p.fn(ctx, in, prod)
}

func newActivities(t *testing.T, opts ...func(*Activities)) *Activities {
	t.Helper()
	mappers := mapping.NewRegistry()
	mapping.RegisterDefaults(mappers)

	checks := compliance.NewRegistry()

	pricers := pricing.NewRegistry()
	pricers.Register(
		pricing.KindsQualifier(instrument.KindOption),
		stubPricer{name: "stub", fn: func(context.Context, rfq.Input, product.Product) (rfq.PricingResult, error) {
			return testPricingResult(t), nil
		}},
	)

	booked, err := rfq.NewBooking(rfq.Booking{
		TradeID:  values.MustNonEmptyString("TRADE-RFQ-ACT"),
		UTI:      values.MustUTI("5493001KJTIIGC8Y1R12ACT1"),
		BookedAt: values.MustUTCTime("2026-08-25T10:00:00Z"),
	})
	require.NoError(t, err)

	a := New(mappers, checks, pricers, &fakeLedger{booking: booked}, &fakeSender{}, nil, zerolog.Nop())
	a.now = func() time.Time { return time.Date(2026, 8, 25, 9, 45, 0, 0, time.UTC) }
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func TestMapProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("maps a supported instrument", func(t *testing.T) {
		a := newActivities(t)
		out, err := a.MapProduct(ctx, optionRFQ(t, "RFQ-MAP-1"))
		require.NoError(t, err)
		require.False(t, out.Failed())
		assert.Equal(t, "EQ.OPT.VANILLA", out.Product.TaxonomyCode.String())
	})

	t.Run("unclaimed instrument is a domain failure", func(t *testing.T) {
		a := newActivities(t, func(a *Activities) {
			a.mappers = mapping.NewRegistry()
		})
		out, err := a.MapProduct(ctx, optionRFQ(t, "RFQ-MAP-2"))
		require.NoError(t, err)
		require.True(t, out.Failed())
		assert.Equal(t, "Unsupported product type", out.Err)
	})
}

func TestRunPreTradeChecks(t *testing.T) {
	ctx := context.Background()
	in := optionRFQ(t, "RFQ-CHK-1")

	t.Run("all pass", func(t *testing.T) {
		a := newActivities(t)
		out, err := a.RunPreTradeChecks(ctx, in, testProduct(t, in))
		require.NoError(t, err)
		assert.True(t, out.Passed)
		assert.Empty(t, out.Reasons)
	})

	t.Run("aggregates failures", func(t *testing.T) {
		limits := map[string]decimal.Decimal{}
		a := newActivities(t, func(a *Activities) {
			checks := compliance.NewRegistry()
			checks.Register(compliance.NewCreditLimit(limits, decimal.NewFromInt(1000)))
			a.checks = checks
		})
		out, err := a.RunPreTradeChecks(ctx, in, testProduct(t, in))
		require.NoError(t, err)
		assert.False(t, out.Passed)
		assert.Contains(t, out.Reasons, "Credit limit exceeded")
	})
}

func TestPriceProduct(t *testing.T) {
	ctx := context.Background()
	in := optionRFQ(t, "RFQ-PRC-1")

	t.Run("success wraps the result", func(t *testing.T) {
		a := newActivities(t)
		out, err := a.PriceProduct(ctx, in, testProduct(t, in))
		require.NoError(t, err)
		require.False(t, out.Failed())
		assert.Equal(t, "ATT-ACT", out.Result.AttestationID.String())
	})

	t.Run("calibration failure is a non-retryable application error", func(t *testing.T) {
		a := newActivities(t, func(a *Activities) {
			pricers := pricing.NewRegistry()
			pricers.Register(
				pricing.KindsQualifier(instrument.KindOption),
				stubPricer{name: "broken", fn: func(context.Context, rfq.Input, product.Product) (rfq.PricingResult, error) {
					return rfq.PricingResult{}, pricing.Calibrationf("volatility estimate diverged")
				}},
			)
			a.pricers = pricers
		})

		_, err := a.PriceProduct(ctx, in, testProduct(t, in))
		var appErr *temporal.ApplicationError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, wf.ErrKindCalibration, appErr.Type())
	})

	t.Run("no pricer is a pricing error", func(t *testing.T) {
		a := newActivities(t, func(a *Activities) {
			a.pricers = pricing.NewRegistry()
		})
		_, err := a.PriceProduct(ctx, in, testProduct(t, in))
		var appErr *temporal.ApplicationError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, wf.ErrKindPricing, appErr.Type())
	})
}

func TestGenerateAndSendIndicative(t *testing.T) {
	ctx := context.Background()
	in := optionRFQ(t, "RFQ-QTE-1")
	priced := testPricingResult(t)

	t.Run("builds and delivers the sheet", func(t *testing.T) {
		sender := &fakeSender{}
		a := newActivities(t, func(a *Activities) { a.sender = sender })

		sheet, err := a.GenerateAndSendIndicative(ctx, in, priced)
		require.NoError(t, err)
		assert.Equal(t, rfq.DocumentHash(in.RFQID, priced), sheet.DocumentHash.String())
		assert.Equal(t, sheet.GeneratedAt.Add(wf.TermSheetValidFor), sheet.ValidUntil)
		require.Len(t, sender.sheets, 1)
	})

	t.Run("delivery failure is retryable", func(t *testing.T) {
		a := newActivities(t, func(a *Activities) {
			a.sender = &fakeSender{err: errors.New("endpoint down")}
		})
		_, err := a.GenerateAndSendIndicative(ctx, in, priced)
		require.Error(t, err)
		var appErr *temporal.ApplicationError
		assert.False(t, errors.As(err, &appErr))
	})
}

func TestBookTradeActivity(t *testing.T) {
	ctx := context.Background()
	in := optionRFQ(t, "RFQ-BKG-1")

	t.Run("wraps the booking", func(t *testing.T) {
		a := newActivities(t)
		out, err := a.BookTrade(ctx, in, testProduct(t, in), testPricingResult(t))
		require.NoError(t, err)
		require.False(t, out.Failed())
		assert.Equal(t, "TRADE-RFQ-ACT", out.Booking.TradeID.String())
	})

	t.Run("ledger conflict is an illegal transition", func(t *testing.T) {
		a := newActivities(t, func(a *Activities) {
			a.ledger = &fakeLedger{err: &booking.ConflictError{RFQID: "RFQ-BKG-1", TradeID: "TRADE-OTHER"}}
		})
		_, err := a.BookTrade(ctx, in, testProduct(t, in), testPricingResult(t))
		var appErr *temporal.ApplicationError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, wf.ErrKindIllegalTransition, appErr.Type())
	})
}

func TestSendConfirmation(t *testing.T) {
	ctx := context.Background()
	in := optionRFQ(t, "RFQ-CNF-1")
	priced := testPricingResult(t)

	booked, err := rfq.NewBooking(rfq.Booking{
		TradeID:  values.MustNonEmptyString("TRADE-RFQ-CNF-1"),
		UTI:      values.MustUTI("5493001KJTIIGC8Y1R12CNF1"),
		BookedAt: values.MustUTCTime("2026-08-25T10:00:00Z"),
	})
	require.NoError(t, err)

	sheet, err := rfq.NewTermSheet(rfq.TermSheet{
		RFQID:        in.RFQID,
		Pricing:      priced,
		DocumentHash: values.MustNonEmptyString(rfq.DocumentHash(in.RFQID, priced)),
		GeneratedAt:  values.MustUTCTime("2026-08-25T09:45:00Z"),
		ValidUntil:   values.MustUTCTime("2026-08-25T10:45:00Z"),
	})
	require.NoError(t, err)

	t.Run("delivers and reports", func(t *testing.T) {
		sender := &fakeSender{}
		a := newActivities(t, func(a *Activities) { a.sender = sender })

		out, err := a.SendConfirmation(ctx, in, booked, sheet)
		require.NoError(t, err)
		assert.True(t, out.Delivered)
		assert.Equal(t, booked.TradeID, out.TradeID)
		require.Len(t, sender.confirmations, 1)
	})

	t.Run("delivery failure is retryable", func(t *testing.T) {
		a := newActivities(t, func(a *Activities) {
			a.sender = &fakeSender{err: errors.New("endpoint down")}
		})
		_, err := a.SendConfirmation(ctx, in, booked, sheet)
		require.Error(t, err)
	})
}
