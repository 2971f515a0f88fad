package mapping

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openderiv/rfqdesk/internal/instrument"
	"github.com/openderiv/rfqdesk/internal/product"
	"github.com/openderiv/rfqdesk/internal/rfq"
	"github.com/openderiv/rfqdesk/internal/values"
)

func inputWith(t *testing.T, d instrument.Detail) rfq.Input {
	t.Helper()
	in, err := rfq.NewInput(rfq.Input{
		RFQID:          values.MustNonEmptyString("RFQ-MAP-1"),
		ClientLEI:      values.MustLEI("529900T8BM49AURSDO55"),
		Detail:         d,
		Notional:       values.MustPositiveDecimal("2500000"),
		Currency:       values.MustCurrency("EUR"),
		Side:           instrument.SideSell,
		TradeDate:      values.MustDate("2026-04-01"),
		SettlementDate: values.MustDate("2026-04-03"),
		Timestamp:      values.MustUTCTime("2026-04-01T08:00:00Z"),
	})
	require.NoError(t, err)
	return in
}

func defaultRegistry() *Registry {
	reg := NewRegistry()
	RegisterDefaults(reg)
	return reg
}

func TestResolveFirstMatch(t *testing.T) {
	reg := defaultRegistry()

	equity := instrument.Equity{Underlying: values.MustISIN("US0378331005")}
	m, err := reg.Resolve(equity)
	require.NoError(t, err)
	assert.Equal(t, "equity", m.Name())

	swap := instrument.IRSwap{
		FixedRate:     decimal.RequireFromString("-0.0015"),
		FloatingIndex: values.MustNonEmptyString("EURIBOR-3M"),
		DayCount:      instrument.DayCountThirty,
		Frequency:     instrument.FreqSemiAnnual,
		TenorMonths:   60,
		EffectiveDate: values.MustDate("2026-04-03"),
		MaturityDate:  values.MustDate("2031-04-03"),
	}
	m, err = reg.Resolve(swap)
	require.NoError(t, err)
	assert.Equal(t, "ir_swap", m.Name())
}

func TestRegisterAfterFreezePanics(t *testing.T) {
	reg := defaultRegistry()
	_, err := reg.Resolve(instrument.Equity{Underlying: values.MustISIN("US0378331005")})
	require.NoError(t, err)
	assert.Panics(t, func() {
		reg.Register(KindQualifier(instrument.KindEquity), equityMapper{})
	})
}

func TestEveryVariantMapsWithPayouts(t *testing.T) {
	reg := defaultRegistry()
	swap := instrument.IRSwap{
		FixedRate:     decimal.RequireFromString("0.031"),
		FloatingIndex: values.MustNonEmptyString("SOFR"),
		DayCount:      instrument.DayCountAct360,
		Frequency:     instrument.FreqQuarterly,
		TenorMonths:   120,
		EffectiveDate: values.MustDate("2026-04-07"),
		MaturityDate:  values.MustDate("2036-04-07"),
	}
	fixing := values.MustDate("2026-06-26")

	cases := []struct {
		name     string
		detail   instrument.Detail
		class    product.AssetClass
		taxonomy string
	}{
		{"equity", instrument.Equity{Underlying: values.MustISIN("US0378331005")}, product.AssetEquity, "EQ.CASH"},
		{"option", instrument.Option{
			Underlying: values.MustNonEmptyString("SX5E"),
			Strike:     values.MustNonNegativeDecimal("0"),
			Expiry:     values.MustDate("2026-12-18"),
			Type:       instrument.OptionPut,
			Style:      instrument.StyleAmerican,
			Settlement: instrument.SettlePhysical,
		}, product.AssetEquity, "EQ.OPT.VANILLA"},
		{"futures", instrument.Futures{
			Underlying:   values.MustNonEmptyString("ES"),
			Expiry:       values.MustDate("2026-09-18"),
			LastTrading:  values.MustDate("2026-09-17"),
			ContractSize: values.MustPositiveDecimal("50"),
			Settlement:   instrument.SettleCash,
		}, product.AssetEquity, "EQ.FUT"},
		{"ndf", instrument.FX{
			Pair:           instrument.CurrencyPair{Base: values.MustCurrency("USD"), Quote: values.MustCurrency("BRL")},
			SettlementDate: values.MustDate("2026-06-30"),
			Settlement:     instrument.SettleCash,
			Type:           instrument.FXNDF,
			FixingDate:     &fixing,
			FixingSource:   "PTAX",
		}, product.AssetFX, "FX.NDF"},
		{"ir_swap", swap, product.AssetRates, "IR.SWAP.FIXED_FLOAT"},
		{"swaption", instrument.Swaption{
			Swap:         swap,
			OptionExpiry: values.MustDate("2026-04-06"),
			Style:        instrument.StyleEuropean,
			Settlement:   instrument.SettleCash,
		}, product.AssetRates, "IR.SWAPTION"},
		{"cds", instrument.CDS{
			ReferenceEntity: values.MustNonEmptyString("ACME HOLDINGS PLC"),
			SpreadBps:       values.MustNonNegativeDecimal("140"),
			EffectiveDate:   values.MustDate("2026-04-07"),
			MaturityDate:    values.MustDate("2031-04-07"),
			Restructuring:   instrument.RestructuringModMod,
		}, product.AssetCredit, "CR.CDS.SINGLE_NAME"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := inputWith(t, tc.detail)
			m, err := reg.Resolve(tc.detail)
			require.NoError(t, err)

			p, err := m.Map(in)
			require.NoError(t, err)
			assert.NoError(t, p.Validate())
			assert.NotEmpty(t, p.Payouts, "every mapper must emit at least one payout")
			assert.Equal(t, tc.class, p.AssetClass)
			assert.Equal(t, tc.taxonomy, p.TaxonomyCode.String())
			assert.True(t, p.Economics.Notional.Decimal().Equal(in.Notional.Decimal()))
		})
	}
}

func TestNoMapper(t *testing.T) {
	reg := NewRegistry()
	reg.Register(KindQualifier(instrument.KindCDS), cdsMapper{})
	_, err := reg.Resolve(instrument.Equity{Underlying: values.MustISIN("US0378331005")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMapper)
}
