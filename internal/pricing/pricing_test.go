package pricing

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openderiv/rfqdesk/internal/instrument"
	"github.com/openderiv/rfqdesk/internal/marketdata"
	"github.com/openderiv/rfqdesk/internal/product"
	"github.com/openderiv/rfqdesk/internal/rfq"
	"github.com/openderiv/rfqdesk/internal/values"
)

var testNow = time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)

// driftingHistory builds a gently trending price series long enough to
// calibrate vol from.
func driftingHistory(start float64, n int) []float64 {
	h := make([]float64, n)
	price := start
	for i := range h {
		if i%2 == 0 {
			price *= 1.004
		} else {
			price *= 0.998
		}
		h[i] = price
	}
	return h
}

func seedSnapshot(t *testing.T, store marketdata.Store, symbol string, spot float64, history []float64) marketdata.Snapshot {
	t.Helper()
	snap := marketdata.Snapshot{
		ID:      marketdata.NewSnapshotID(),
		Symbol:  symbol,
		Spot:    spot,
		History: history,
		TakenAt: testNow,
	}
	require.NoError(t, store.Put(context.Background(), snap))
	return snap
}

func optionInput(t *testing.T, strike string) rfq.Input {
	t.Helper()
	in, err := rfq.NewInput(rfq.Input{
		RFQID:     values.MustNonEmptyString("RFQ-PRC-1"),
		ClientLEI: values.MustLEI("529900T8BM49AURSDO55"),
		Detail: instrument.Option{
			Underlying: values.MustNonEmptyString("US0378331005"),
			Strike:     values.MustNonNegativeDecimal(strike),
			Expiry:     values.MustDate("2026-09-18"),
			Type:       instrument.OptionCall,
			Style:      instrument.StyleEuropean,
			Settlement: instrument.SettleCash,
		},
		Notional:       values.MustPositiveDecimal("1000000"),
		Currency:       values.MustCurrency("USD"),
		Side:           instrument.SideBuy,
		TradeDate:      values.MustDate("2026-03-16"),
		SettlementDate: values.MustDate("2026-03-18"),
		Timestamp:      values.MustUTCTime("2026-03-16T09:30:00Z"),
	})
	require.NoError(t, err)
	return in
}

func anyProduct(t *testing.T, in rfq.Input, class product.AssetClass) product.Product {
	t.Helper()
	p, err := product.New(product.Product{
		ProductID:    values.MustNonEmptyString("PROD-" + in.RFQID.String()),
		TaxonomyCode: values.MustNonEmptyString("TEST"),
		AssetClass:   class,
		Economics:    product.Economics{Notional: in.Notional, Currency: in.Currency, Side: in.Side},
		Payouts:      []product.Payout{{Type: product.PayoutOption, Description: values.MustNonEmptyString("test leg")}},
	})
	require.NoError(t, err)
	return p
}

func TestRegistryResolve(t *testing.T) {
	store := marketdata.NewMemoryStore()
	reg := NewRegistry()
	RegisterDefaults(reg, store, 0.03)

	t.Run("first match by kind", func(t *testing.T) {
		in := optionInput(t, "185.00")
		p, err := reg.Resolve(in.Detail)
		require.NoError(t, err)
		assert.Equal(t, "black_scholes", p.Name())

		p, err = reg.Resolve(instrument.Equity{Underlying: values.MustISIN("US0378331005")})
		require.NoError(t, err)
		assert.Equal(t, "cost_of_carry", p.Name())
	})

	t.Run("register after first resolve panics", func(t *testing.T) {
		assert.Panics(t, func() {
			reg.Register(KindsQualifier(instrument.KindEquity), NewCostOfCarry(store, 0))
		})
	})

	t.Run("unmatched kind", func(t *testing.T) {
		empty := NewRegistry()
		_, err := empty.Resolve(instrument.Equity{Underlying: values.MustISIN("US0378331005")})
		assert.ErrorIs(t, err, ErrNoPricer)
	})
}

func TestBlackScholes(t *testing.T) {
	in := optionInput(t, "185.00")
	p := anyProduct(t, in, product.AssetEquity)

	t.Run("prices a call off the snapshot", func(t *testing.T) {
		store := marketdata.NewMemoryStore()
		snap := seedSnapshot(t, store, "US0378331005", 190.0, driftingHistory(180, 120))
		bs := NewBlackScholes(store, 0.03)
		bs.now = func() time.Time { return testNow }

		res, err := bs.Price(context.Background(), in, p)
		require.NoError(t, err)
		assert.Equal(t, "BlackScholes", res.ModelName.String())
		assert.Equal(t, snap.ID, res.SnapshotID.String())
		assert.Equal(t, "USD", res.IndicativePrice.Currency().String())
		assert.True(t, res.IndicativePrice.Amount().Sign() > 0)
		assert.NotEmpty(t, res.AttestationID.String())

		names := make([]string, len(res.Greeks))
		for i, g := range res.Greeks {
			names[i] = g.Name
		}
		assert.Equal(t, []string{"delta", "gamma", "vega", "theta", "rho"}, names)

		delta, ok := res.Greeks.Get("delta")
		require.True(t, ok)
		df, _ := delta.Float64()
		assert.Greater(t, df, 0.0)
		assert.Less(t, df, 1.0)
	})

	t.Run("zero strike call is worth spot", func(t *testing.T) {
		store := marketdata.NewMemoryStore()
		seedSnapshot(t, store, "US0378331005", 190.0, driftingHistory(180, 120))
		bs := NewBlackScholes(store, 0.03)
		bs.now = func() time.Time { return testNow }

		res, err := bs.Price(context.Background(), optionInput(t, "0"), p)
		require.NoError(t, err)
		amt, _ := res.IndicativePrice.Amount().Float64()
		assert.InDelta(t, 190.0, amt, 1e-6)
	})

	t.Run("thin history is a calibration error", func(t *testing.T) {
		store := marketdata.NewMemoryStore()
		seedSnapshot(t, store, "US0378331005", 190.0, driftingHistory(180, 5))
		bs := NewBlackScholes(store, 0.03)
		bs.now = func() time.Time { return testNow }

		_, err := bs.Price(context.Background(), in, p)
		var calErr *CalibrationError
		require.ErrorAs(t, err, &calErr)
	})

	t.Run("missing snapshot is a calibration error", func(t *testing.T) {
		bs := NewBlackScholes(marketdata.NewMemoryStore(), 0.03)
		bs.now = func() time.Time { return testNow }
		_, err := bs.Price(context.Background(), in, p)
		var calErr *CalibrationError
		require.ErrorAs(t, err, &calErr)
	})

	t.Run("expired option is a pricing error", func(t *testing.T) {
		store := marketdata.NewMemoryStore()
		seedSnapshot(t, store, "US0378331005", 190.0, driftingHistory(180, 120))
		bs := NewBlackScholes(store, 0.03)
		bs.now = func() time.Time { return time.Date(2027, 1, 4, 0, 0, 0, 0, time.UTC) }

		_, err := bs.Price(context.Background(), in, p)
		var prcErr *PricingError
		require.ErrorAs(t, err, &prcErr)
		assert.Contains(t, err.Error(), "expired")
	})
}

func TestCostOfCarry(t *testing.T) {
	store := marketdata.NewMemoryStore()
	seedSnapshot(t, store, "ES", 5300.0, driftingHistory(5200, 60))
	coc := NewCostOfCarry(store, 0.05)
	coc.now = func() time.Time { return testNow }

	in := optionInput(t, "1")
	in.Detail = instrument.Futures{
		Underlying:   values.MustNonEmptyString("ES"),
		Expiry:       values.MustDate("2026-09-18"),
		LastTrading:  values.MustDate("2026-09-17"),
		ContractSize: values.MustPositiveDecimal("50"),
		Settlement:   instrument.SettleCash,
	}
	p := anyProduct(t, in, product.AssetEquity)

	res, err := coc.Price(context.Background(), in, p)
	require.NoError(t, err)
	assert.Equal(t, "CostOfCarry", res.ModelName.String())

	amt, _ := res.IndicativePrice.Amount().Float64()
	wantT := yearFraction(testNow, values.MustDate("2026-09-18").Time())
	assert.InDelta(t, 5300*math.Exp(0.05*wantT), amt, 1e-4)
}

func TestDiscountedCashflowSwap(t *testing.T) {
	store := marketdata.NewMemoryStore()
	seedSnapshot(t, store, "SOFR", 0.043, driftingHistory(0.04, 60))
	dcf := NewDiscountedCashflow(store, 0.03)
	dcf.now = func() time.Time { return testNow }

	in := optionInput(t, "1")
	in.Detail = instrument.IRSwap{
		FixedRate:     decimal.RequireFromString("0.05"),
		FloatingIndex: values.MustNonEmptyString("SOFR"),
		DayCount:      instrument.DayCountAct360,
		Frequency:     instrument.FreqQuarterly,
		TenorMonths:   60,
		EffectiveDate: values.MustDate("2026-03-18"),
		MaturityDate:  values.MustDate("2031-03-18"),
	}
	in.Side = instrument.SideSell
	p := anyProduct(t, in, product.AssetRates)

	res, err := dcf.Price(context.Background(), in, p)
	require.NoError(t, err)
	assert.Equal(t, "DCF", res.ModelName.String())
	// Receiving 5% fixed against a 4.3% curve has positive value.
	assert.True(t, res.IndicativePrice.Amount().Sign() > 0)
	_, ok := res.Greeks.Get("dv01")
	assert.True(t, ok)
}
