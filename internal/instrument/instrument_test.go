package instrument

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openderiv/rfqdesk/internal/values"
)

func validSwap() IRSwap {
	return IRSwap{
		FixedRate:     decimal.RequireFromString("0.0325"),
		FloatingIndex: values.MustNonEmptyString("SOFR"),
		DayCount:      DayCountAct360,
		Frequency:     FreqQuarterly,
		TenorMonths:   60,
		EffectiveDate: values.MustDate("2026-09-01"),
		MaturityDate:  values.MustDate("2031-09-01"),
	}
}

func TestNewEquity(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d, err := NewEquity(Equity{Underlying: values.MustISIN("US0378331005"), Exchange: "XNAS"})
		require.NoError(t, err)
		assert.Equal(t, KindEquity, d.Kind())
	})

	t.Run("missing underlying", func(t *testing.T) {
		_, err := NewEquity(Equity{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EquityDetail")
	})
}

func TestNewOption(t *testing.T) {
	valid := Option{
		Underlying: values.MustNonEmptyString("US0378331005"),
		Strike:     values.MustNonNegativeDecimal("185.00"),
		Expiry:     values.MustDate("2026-12-18"),
		Type:       OptionCall,
		Style:      StyleEuropean,
		Settlement: SettleCash,
	}

	t.Run("valid", func(t *testing.T) {
		d, err := NewOption(valid)
		require.NoError(t, err)
		assert.Equal(t, KindOption, d.Kind())
	})

	t.Run("zero strike is legal", func(t *testing.T) {
		zs := valid
		zs.Strike = values.NonNegativeDecimal{}
		_, err := NewOption(zs)
		assert.NoError(t, err)
	})

	t.Run("bad option type", func(t *testing.T) {
		bad := valid
		bad.Type = OptionType("STRADDLE")
		_, err := NewOption(bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "option type")
	})

	t.Run("bad style", func(t *testing.T) {
		bad := valid
		bad.Style = OptionStyle("BERMUDAN")
		_, err := NewOption(bad)
		assert.Error(t, err)
	})

	t.Run("missing expiry", func(t *testing.T) {
		bad := valid
		bad.Expiry = values.Date{}
		_, err := NewOption(bad)
		assert.Error(t, err)
	})
}

func TestNewFutures(t *testing.T) {
	valid := Futures{
		Underlying:   values.MustNonEmptyString("ES"),
		Expiry:       values.MustDate("2026-09-18"),
		LastTrading:  values.MustDate("2026-09-17"),
		ContractSize: values.MustPositiveDecimal("50"),
		Settlement:   SettleCash,
	}

	t.Run("valid", func(t *testing.T) {
		_, err := NewFutures(valid)
		assert.NoError(t, err)
	})

	t.Run("last trading may equal expiry", func(t *testing.T) {
		eq := valid
		eq.LastTrading = eq.Expiry
		_, err := NewFutures(eq)
		assert.NoError(t, err)
	})

	t.Run("last trading after expiry fails", func(t *testing.T) {
		bad := valid
		bad.LastTrading = values.MustDate("2026-09-19")
		_, err := NewFutures(bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "last trading date")
	})

	t.Run("missing contract size", func(t *testing.T) {
		bad := valid
		bad.ContractSize = values.PositiveDecimal{}
		_, err := NewFutures(bad)
		assert.Error(t, err)
	})
}

func TestNewFX(t *testing.T) {
	pair, err := NewCurrencyPair(values.MustCurrency("EUR"), values.MustCurrency("USD"))
	require.NoError(t, err)

	valid := FX{
		Pair:           pair,
		SettlementDate: values.MustDate("2026-03-17"),
		Settlement:     SettlePhysical,
		Type:           FXSpot,
	}

	t.Run("spot", func(t *testing.T) {
		_, err := NewFX(valid)
		assert.NoError(t, err)
	})

	t.Run("same currency pair fails", func(t *testing.T) {
		_, err := NewCurrencyPair(values.MustCurrency("USD"), values.MustCurrency("USD"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must differ")
	})

	t.Run("NDF requires fixing date and source", func(t *testing.T) {
		ndf := valid
		ndf.Type = FXNDF
		ndf.Settlement = SettleCash
		_, err := NewFX(ndf)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fixing date")

		fd := values.MustDate("2026-03-15")
		ndf.FixingDate = &fd
		_, err = NewFX(ndf)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fixing source")

		ndf.FixingSource = "WMR 4pm London"
		_, err = NewFX(ndf)
		assert.NoError(t, err)
	})

	t.Run("NDF fixing after settlement fails", func(t *testing.T) {
		ndf := valid
		ndf.Type = FXNDF
		fd := values.MustDate("2026-03-18")
		ndf.FixingDate = &fd
		ndf.FixingSource = "WMR 4pm London"
		_, err := NewFX(ndf)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after settlement")
	})
}

func TestNewIRSwap(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		_, err := NewIRSwap(validSwap())
		assert.NoError(t, err)
	})

	t.Run("negative fixed rate is legal", func(t *testing.T) {
		neg := validSwap()
		neg.FixedRate = decimal.RequireFromString("-0.0025")
		_, err := NewIRSwap(neg)
		assert.NoError(t, err)
	})

	t.Run("zero tenor fails", func(t *testing.T) {
		bad := validSwap()
		bad.TenorMonths = 0
		_, err := NewIRSwap(bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tenor")
	})

	t.Run("effective after maturity fails", func(t *testing.T) {
		bad := validSwap()
		bad.EffectiveDate = values.MustDate("2031-09-02")
		_, err := NewIRSwap(bad)
		assert.Error(t, err)
	})

	t.Run("effective equal to maturity fails", func(t *testing.T) {
		bad := validSwap()
		bad.EffectiveDate = bad.MaturityDate
		_, err := NewIRSwap(bad)
		assert.Error(t, err)
	})

	t.Run("unknown day count fails", func(t *testing.T) {
		bad := validSwap()
		bad.DayCount = DayCount("ACT/ACT")
		_, err := NewIRSwap(bad)
		assert.Error(t, err)
	})
}

func TestNewSwaption(t *testing.T) {
	valid := Swaption{
		Swap:         validSwap(),
		OptionExpiry: values.MustDate("2026-08-28"),
		Style:        StyleEuropean,
		Settlement:   SettleCash,
	}

	t.Run("valid", func(t *testing.T) {
		_, err := NewSwaption(valid)
		assert.NoError(t, err)
	})

	t.Run("expiry on swap effective date is legal", func(t *testing.T) {
		edge := valid
		edge.OptionExpiry = valid.Swap.EffectiveDate
		_, err := NewSwaption(edge)
		assert.NoError(t, err)
	})

	t.Run("expiry after swap start fails", func(t *testing.T) {
		bad := valid
		bad.OptionExpiry = values.MustDate("2026-09-02")
		_, err := NewSwaption(bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after swap effective date")
	})

	t.Run("invalid embedded swap fails", func(t *testing.T) {
		bad := valid
		bad.Swap.TenorMonths = -1
		_, err := NewSwaption(bad)
		assert.Error(t, err)
	})
}

func TestNewCDS(t *testing.T) {
	valid := CDS{
		ReferenceEntity: values.MustNonEmptyString("ACME HOLDINGS PLC"),
		SpreadBps:       values.MustNonNegativeDecimal("125"),
		EffectiveDate:   values.MustDate("2026-09-20"),
		MaturityDate:    values.MustDate("2031-09-20"),
		Restructuring:   RestructuringModified,
	}

	t.Run("valid", func(t *testing.T) {
		_, err := NewCDS(valid)
		assert.NoError(t, err)
	})

	t.Run("unknown restructuring clause fails", func(t *testing.T) {
		bad := valid
		bad.Restructuring = RestructuringClause("OLD_R")
		_, err := NewCDS(bad)
		assert.Error(t, err)
	})

	t.Run("inverted dates fail", func(t *testing.T) {
		bad := valid
		bad.MaturityDate = values.MustDate("2026-01-01")
		_, err := NewCDS(bad)
		assert.Error(t, err)
	})
}

func TestDetail_KindDiscrimination(t *testing.T) {
	pair, _ := NewCurrencyPair(values.MustCurrency("EUR"), values.MustCurrency("USD"))
	details := []Detail{
		Equity{Underlying: values.MustISIN("US0378331005")},
		Option{},
		Futures{},
		FX{Pair: pair},
		IRSwap{},
		Swaption{},
		CDS{},
	}
	kinds := make(map[Kind]bool, len(details))
	for _, d := range details {
		kinds[d.Kind()] = true
	}
	assert.Len(t, kinds, 7, "each variant must report a distinct kind")
}
