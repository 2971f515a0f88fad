// Package product holds the CDM-flavoured product record that mapping
// produces from an RFQ. Downstream steps (checks, pricing, booking) consume
// this record, never the raw RFQ instrument detail.
package product

import (
	"fmt"

	"github.com/openderiv/rfqdesk/internal/instrument"
	"github.com/openderiv/rfqdesk/internal/values"
)

// AssetClass buckets products for eligibility and reporting.
type AssetClass string

const (
	AssetEquity AssetClass = "EQUITY"
	AssetRates  AssetClass = "RATES"
	AssetCredit AssetClass = "CREDIT"
	AssetFX     AssetClass = "FX"
)

func (a AssetClass) Valid() bool {
	switch a {
	case AssetEquity, AssetRates, AssetCredit, AssetFX:
		return true
	}
	return false
}

// PayoutType names the economic leg a payout describes.
type PayoutType string

const (
	PayoutOption        PayoutType = "OPTION"
	PayoutPerformance   PayoutType = "PERFORMANCE"
	PayoutForward       PayoutType = "FORWARD"
	PayoutInterestRate  PayoutType = "INTEREST_RATE"
	PayoutCreditDefault PayoutType = "CREDIT_DEFAULT"
	PayoutSettlement    PayoutType = "SETTLEMENT"
)

func (p PayoutType) Valid() bool {
	switch p {
	case PayoutOption, PayoutPerformance, PayoutForward, PayoutInterestRate, PayoutCreditDefault, PayoutSettlement:
		return true
	}
	return false
}

// Payout is one economic leg of the mapped product.
type Payout struct {
	Type        PayoutType            `json:"payout_type"`
	Description values.NonEmptyString `json:"description"`
}

func (p Payout) Validate() error {
	if !p.Type.Valid() {
		return fmt.Errorf("product: invalid Payout: payout type %q", p.Type)
	}
	if p.Description.IsZero() {
		return fmt.Errorf("product: invalid Payout: description is required")
	}
	return nil
}

// Economics carries the trade-level quantities shared by every payout.
type Economics struct {
	Notional values.PositiveDecimal `json:"notional"`
	Currency values.Currency        `json:"currency"`
	Side     instrument.Side        `json:"side"`
}

func (e Economics) Validate() error {
	if e.Notional.IsZero() {
		return fmt.Errorf("product: invalid Economics: notional is required")
	}
	if e.Currency.IsZero() {
		return fmt.Errorf("product: invalid Economics: currency is required")
	}
	if !e.Side.Valid() {
		return fmt.Errorf("product: invalid Economics: side %q", e.Side)
	}
	return nil
}

// Product is the mapped, taxonomy-coded view of an RFQ. A product with no
// payouts is malformed; every mapper must emit at least one leg.
type Product struct {
	ProductID    values.NonEmptyString `json:"product_id"`
	TaxonomyCode values.NonEmptyString `json:"taxonomy_code"`
	AssetClass   AssetClass            `json:"asset_class"`
	Economics    Economics             `json:"economics"`
	Payouts      []Payout              `json:"payouts"`
}

// New validates and returns the product record.
func New(p Product) (Product, error) {
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (p Product) Validate() error {
	if p.ProductID.IsZero() {
		return fmt.Errorf("product: invalid Product: product id is required")
	}
	if p.TaxonomyCode.IsZero() {
		return fmt.Errorf("product: invalid Product: taxonomy code is required")
	}
	if !p.AssetClass.Valid() {
		return fmt.Errorf("product: invalid Product: asset class %q", p.AssetClass)
	}
	if err := p.Economics.Validate(); err != nil {
		return err
	}
	if len(p.Payouts) == 0 {
		return fmt.Errorf("product: invalid Product %s: at least one payout is required", p.ProductID)
	}
	for i, payout := range p.Payouts {
		if err := payout.Validate(); err != nil {
			return fmt.Errorf("product: invalid Product %s: payout %d: %w", p.ProductID, i, err)
		}
	}
	return nil
}
