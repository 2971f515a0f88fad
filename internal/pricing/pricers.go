package pricing

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openderiv/rfqdesk/internal/instrument"
	"github.com/openderiv/rfqdesk/internal/marketdata"
	"github.com/openderiv/rfqdesk/internal/product"
	"github.com/openderiv/rfqdesk/internal/rfq"
	"github.com/openderiv/rfqdesk/internal/values"
)

// RegisterDefaults wires the reference pricer set. Black-Scholes handles the
// optionality, cost-of-carry the linear delta-one products, discounted cash
// flows the rates and credit legs.
func RegisterDefaults(reg *Registry, store marketdata.Store, riskFree float64) {
	reg.Register(
		KindsQualifier(instrument.KindOption, instrument.KindSwaption),
		NewBlackScholes(store, riskFree),
	)
	reg.Register(
		KindsQualifier(instrument.KindEquity, instrument.KindFutures, instrument.KindFX),
		NewCostOfCarry(store, riskFree),
	)
	reg.Register(
		KindsQualifier(instrument.KindIRSwap, instrument.KindCDS),
		NewDiscountedCashflow(store, riskFree),
	)
}

// yearFraction converts a date gap to ACT/365F years.
func yearFraction(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24 / 365
}

// confidenceFor scores a snapshot by the depth of its history: a quote priced
// off a full window is trusted more than one off a near-empty one.
func confidenceFor(snap marketdata.Snapshot) float64 {
	c := 0.5 + float64(len(snap.History))/512
	return math.Min(c, 0.99)
}

// buildResult assembles and validates the pricing record shared by every
// pricer.
func buildResult(in rfq.Input, premium float64, greeks rfq.Greeks, model string, snap marketdata.Snapshot, now time.Time) (rfq.PricingResult, error) {
	price, err := values.NewMoney(decimal.NewFromFloat(premium).Round(6), in.Currency)
	if err != nil {
		return rfq.PricingResult{}, Pricingf("assemble price: %v", err)
	}
	ts, err := values.NewUTCTime(now)
	if err != nil {
		return rfq.PricingResult{}, Pricingf("assemble timestamp: %v", err)
	}
	return rfq.NewPricingResult(rfq.PricingResult{
		IndicativePrice: price,
		Greeks:          greeks,
		ModelName:       values.MustNonEmptyString(model),
		SnapshotID:      values.MustNonEmptyString(snap.ID),
		Confidence:      confidenceFor(snap),
		AttestationID:   values.MustNonEmptyString("ATT-" + uuid.NewString()),
		Timestamp:       ts,
	})
}

// CostOfCarry prices the delta-one instruments: cash equity at spot, futures
// and FX forwards at spot grown at the carry rate.
type CostOfCarry struct {
	store    marketdata.Store
	riskFree float64
	now      func() time.Time
}

// NewCostOfCarry creates the pricer.
func NewCostOfCarry(store marketdata.Store, riskFree float64) *CostOfCarry {
	return &CostOfCarry{store: store, riskFree: riskFree, now: time.Now}
}

func (c *CostOfCarry) Name() string { return "cost_of_carry" }

const cocModelName = "CostOfCarry"

func (c *CostOfCarry) Price(ctx context.Context, in rfq.Input, _ product.Product) (rfq.PricingResult, error) {
	var (
		symbol   string
		maturity time.Time
	)
	switch d := in.Detail.(type) {
	case instrument.Equity:
		symbol = d.Underlying.String()
		maturity = in.SettlementDate.Time()
	case instrument.Futures:
		symbol = d.Underlying.String()
		maturity = d.Expiry.Time()
	case instrument.FX:
		symbol = d.Pair.String()
		maturity = d.SettlementDate.Time()
	default:
		return rfq.PricingResult{}, Pricingf("cost-of-carry cannot price %s", in.Detail.Kind())
	}

	snap, err := c.store.Latest(ctx, symbol)
	if err != nil {
		return rfq.PricingResult{}, Calibrationf("no market data for %s: %v", symbol, err)
	}

	now := c.now().UTC()
	t := yearFraction(now, maturity)
	if t < 0 {
		t = 0
	}
	forward := snap.Spot * math.Exp(c.riskFree*t)
	carry := forward - snap.Spot

	greeks := rfq.Greeks{
		{Name: "delta", Value: decimal.NewFromInt(1)},
		{Name: "carry", Value: decimal.NewFromFloat(carry).Round(8)},
		{Name: "rho", Value: decimal.NewFromFloat(snap.Spot * t).Round(8)},
	}
	return buildResult(in, forward, greeks, cocModelName, snap, now)
}

// DiscountedCashflow prices swaps and CDS with a flat-curve annuity
// approximation: one observed rate stands in for the whole curve. Good enough
// for an indicative quote; a real desk swaps this pricer out at registration
// time.
type DiscountedCashflow struct {
	store    marketdata.Store
	riskFree float64
	now      func() time.Time
}

// NewDiscountedCashflow creates the pricer.
func NewDiscountedCashflow(store marketdata.Store, riskFree float64) *DiscountedCashflow {
	return &DiscountedCashflow{store: store, riskFree: riskFree, now: time.Now}
}

func (d *DiscountedCashflow) Name() string { return "dcf" }

const dcfModelName = "DCF"

func (d *DiscountedCashflow) Price(ctx context.Context, in rfq.Input, _ product.Product) (rfq.PricingResult, error) {
	now := d.now().UTC()
	switch det := in.Detail.(type) {
	case instrument.IRSwap:
		snap, err := d.store.Latest(ctx, det.FloatingIndex.String())
		if err != nil {
			return rfq.PricingResult{}, Calibrationf("no market data for %s: %v", det.FloatingIndex, err)
		}
		fixed, _ := det.FixedRate.Float64()
		floating := snap.Spot
		years := float64(det.TenorMonths) / 12
		annuity := annuityFactor(d.riskFree, years, det.Frequency.PaymentsPerYear())

		// Value to the fixed-rate receiver per unit notional; the client's
		// side flips the sign.
		pv := (fixed - floating) * annuity
		if in.Side == instrument.SideBuy {
			pv = -pv
		}
		notional, _ := in.Notional.Decimal().Float64()
		greeks := rfq.Greeks{
			{Name: "dv01", Value: decimal.NewFromFloat(annuity * notional / 10000).Round(8)},
			{Name: "annuity", Value: decimal.NewFromFloat(annuity).Round(8)},
		}
		return buildResult(in, pv*notional, greeks, dcfModelName, snap, now)

	case instrument.CDS:
		snap, err := d.store.Latest(ctx, det.ReferenceEntity.String())
		if err != nil {
			return rfq.PricingResult{}, Calibrationf("no market data for %s: %v", det.ReferenceEntity, err)
		}
		spread, _ := det.SpreadBps.Decimal().Float64()
		years := yearFraction(det.EffectiveDate.Time(), det.MaturityDate.Time())
		if years <= 0 {
			return rfq.PricingResult{}, Pricingf("cds matured before effective date")
		}
		// Flat-hazard risky annuity with the observed par spread as the
		// hazard proxy.
		hazard := snap.Spot / 10000
		annuity := riskyAnnuity(d.riskFree, hazard, years)
		notional, _ := in.Notional.Decimal().Float64()
		pv := (snap.Spot - spread) / 10000 * annuity * notional
		if in.Side == instrument.SideSell {
			pv = -pv
		}
		greeks := rfq.Greeks{
			{Name: "cs01", Value: decimal.NewFromFloat(annuity * notional / 10000).Round(8)},
			{Name: "annuity", Value: decimal.NewFromFloat(annuity).Round(8)},
		}
		return buildResult(in, pv, greeks, dcfModelName, snap, now)
	}
	return rfq.PricingResult{}, Pricingf("dcf cannot price %s", in.Detail.Kind())
}

// annuityFactor discounts a unit coupon stream on a flat curve.
func annuityFactor(rate, years float64, paymentsPerYear int) float64 {
	if paymentsPerYear <= 0 {
		paymentsPerYear = 1
	}
	dt := 1 / float64(paymentsPerYear)
	sum := 0.0
	for t := dt; t <= years+1e-9; t += dt {
		sum += dt * math.Exp(-rate*t)
	}
	return sum
}

// riskyAnnuity is the annuity factor with survival decay at the hazard rate.
func riskyAnnuity(rate, hazard, years float64) float64 {
	const dt = 0.25
	sum := 0.0
	for t := dt; t <= years+1e-9; t += dt {
		sum += dt * math.Exp(-(rate+hazard)*t)
	}
	return sum
}
