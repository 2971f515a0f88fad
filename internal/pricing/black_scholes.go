package pricing

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/openderiv/rfqdesk/internal/instrument"
	"github.com/openderiv/rfqdesk/internal/marketdata"
	"github.com/openderiv/rfqdesk/internal/product"
	"github.com/openderiv/rfqdesk/internal/rfq"
)

// BlackScholes prices European-exercise options and swaptions off the latest
// market snapshot, with realized vol as the calibration input. American
// exercise is quoted with the same model; the premium difference is inside
// the indicative spread at this stage of the negotiation.
type BlackScholes struct {
	store    marketdata.Store
	riskFree float64
	now      func() time.Time
}

// NewBlackScholes creates the pricer. riskFree is the flat continuously
// compounded rate used for discounting.
func NewBlackScholes(store marketdata.Store, riskFree float64) *BlackScholes {
	return &BlackScholes{store: store, riskFree: riskFree, now: time.Now}
}

func (b *BlackScholes) Name() string { return "black_scholes" }

// ModelName is the name stamped on results and attestations.
const bsModelName = "BlackScholes"

func (b *BlackScholes) Price(ctx context.Context, in rfq.Input, _ product.Product) (rfq.PricingResult, error) {
	var (
		symbol string
		strike float64
		expiry time.Time
		isCall bool
	)
	switch d := in.Detail.(type) {
	case instrument.Option:
		symbol = d.Underlying.String()
		strike, _ = d.Strike.Decimal().Float64()
		expiry = d.Expiry.Time()
		isCall = d.Type == instrument.OptionCall
	case instrument.Swaption:
		// Swap-rate proxy: treat the floating index level as the underlying
		// and the fixed rate as the strike. A payer swaption is a call on the
		// rate.
		symbol = d.Swap.FloatingIndex.String()
		strike, _ = d.Swap.FixedRate.Float64()
		expiry = d.OptionExpiry.Time()
		isCall = in.Side == instrument.SideBuy
	default:
		return rfq.PricingResult{}, Pricingf("black-scholes cannot price %s", in.Detail.Kind())
	}

	snap, err := b.store.Latest(ctx, symbol)
	if err != nil {
		return rfq.PricingResult{}, Calibrationf("no market data for %s: %v", symbol, err)
	}

	now := b.now().UTC()
	t := yearFraction(now, expiry)
	if t <= 0 {
		return rfq.PricingResult{}, Pricingf("option on %s expired %s", symbol, expiry.Format("2006-01-02"))
	}

	sigma, err := realizedVol(snap.History)
	if err != nil {
		return rfq.PricingResult{}, err
	}

	premium, greeks := blackScholes(snap.Spot, strike, b.riskFree, sigma, t, isCall)
	return buildResult(in, premium, greeks, bsModelName, snap, now)
}

// blackScholes returns the premium per unit and the greeks in the desk's
// canonical reporting order. A zero strike degenerates cleanly: the call is
// worth spot, the put nothing.
func blackScholes(spot, strike, r, sigma, t float64, isCall bool) (float64, rfq.Greeks) {
	norm := distuv.Normal{Mu: 0, Sigma: 1}

	if strike == 0 {
		if isCall {
			return spot, greekSlice(1, 0, 0, 0, 0)
		}
		return 0, greekSlice(0, 0, 0, 0, 0)
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(spot/strike) + (r+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT
	discount := math.Exp(-r * t)
	pdfD1 := norm.Prob(d1)

	var premium, delta, rho, theta float64
	if isCall {
		premium = spot*norm.CDF(d1) - strike*discount*norm.CDF(d2)
		delta = norm.CDF(d1)
		rho = strike * t * discount * norm.CDF(d2)
		theta = -spot*pdfD1*sigma/(2*sqrtT) - r*strike*discount*norm.CDF(d2)
	} else {
		premium = strike*discount*norm.CDF(-d2) - spot*norm.CDF(-d1)
		delta = norm.CDF(d1) - 1
		rho = -strike * t * discount * norm.CDF(-d2)
		theta = -spot*pdfD1*sigma/(2*sqrtT) + r*strike*discount*norm.CDF(-d2)
	}
	gamma := pdfD1 / (spot * sigma * sqrtT)
	vega := spot * pdfD1 * sqrtT

	return premium, greekSlice(delta, gamma, vega, theta, rho)
}

func greekSlice(delta, gamma, vega, theta, rho float64) rfq.Greeks {
	return rfq.Greeks{
		{Name: "delta", Value: decimal.NewFromFloat(delta).Round(8)},
		{Name: "gamma", Value: decimal.NewFromFloat(gamma).Round(8)},
		{Name: "vega", Value: decimal.NewFromFloat(vega).Round(8)},
		{Name: "theta", Value: decimal.NewFromFloat(theta).Round(8)},
		{Name: "rho", Value: decimal.NewFromFloat(rho).Round(8)},
	}
}
