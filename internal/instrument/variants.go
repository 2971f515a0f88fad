package instrument

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openderiv/rfqdesk/internal/values"
)

// Equity is a cash equity or ETF line identified by ISIN.
type Equity struct {
	Underlying values.ISIN `json:"underlying_isin"`
	// Exchange is an optional ISO 10383 MIC. Empty means "any venue".
	Exchange string `json:"exchange_mic,omitempty"`
}

// NewEquity validates and returns the descriptor.
func NewEquity(d Equity) (Equity, error) {
	if err := d.Validate(); err != nil {
		return Equity{}, err
	}
	return d, nil
}

func (Equity) Kind() Kind { return KindEquity }
func (Equity) isDetail()  {}

func (d Equity) Validate() error {
	if d.Underlying.IsZero() {
		return fmt.Errorf("instrument: invalid EquityDetail: underlying ISIN is required")
	}
	return nil
}

// Option is a vanilla equity or index option. Zero strikes are legal
// (zero-strike calls trade as funding instruments).
type Option struct {
	Underlying values.NonEmptyString     `json:"underlying_id"`
	Strike     values.NonNegativeDecimal `json:"strike"`
	Expiry     values.Date               `json:"expiry_date"`
	Type       OptionType                `json:"option_type"`
	Style      OptionStyle               `json:"option_style"`
	Settlement SettlementType            `json:"settlement_type"`
}

// NewOption validates and returns the descriptor.
func NewOption(d Option) (Option, error) {
	if err := d.Validate(); err != nil {
		return Option{}, err
	}
	return d, nil
}

func (Option) Kind() Kind { return KindOption }
func (Option) isDetail()  {}

func (d Option) Validate() error {
	if d.Underlying.IsZero() {
		return fmt.Errorf("instrument: invalid OptionDetail: underlying is required")
	}
	if d.Expiry.IsZero() {
		return fmt.Errorf("instrument: invalid OptionDetail: expiry date is required")
	}
	if !d.Type.Valid() {
		return fmt.Errorf("instrument: invalid OptionDetail: option type %q", d.Type)
	}
	if !d.Style.Valid() {
		return fmt.Errorf("instrument: invalid OptionDetail: option style %q", d.Style)
	}
	if !d.Settlement.Valid() {
		return fmt.Errorf("instrument: invalid OptionDetail: settlement type %q", d.Settlement)
	}
	return nil
}

// Futures is an exchange-traded futures contract.
type Futures struct {
	Underlying   values.NonEmptyString  `json:"underlying_id"`
	Expiry       values.Date            `json:"expiry_date"`
	LastTrading  values.Date            `json:"last_trading_date"`
	ContractSize values.PositiveDecimal `json:"contract_size"`
	Settlement   SettlementType         `json:"settlement_type"`
}

// NewFutures validates and returns the descriptor.
func NewFutures(d Futures) (Futures, error) {
	if err := d.Validate(); err != nil {
		return Futures{}, err
	}
	return d, nil
}

func (Futures) Kind() Kind { return KindFutures }
func (Futures) isDetail()  {}

func (d Futures) Validate() error {
	if d.Underlying.IsZero() {
		return fmt.Errorf("instrument: invalid FuturesDetail: underlying is required")
	}
	if d.Expiry.IsZero() || d.LastTrading.IsZero() {
		return fmt.Errorf("instrument: invalid FuturesDetail: expiry and last trading dates are required")
	}
	if d.LastTrading.After(d.Expiry) {
		return fmt.Errorf("instrument: invalid FuturesDetail: last trading date %s is after expiry %s", d.LastTrading, d.Expiry)
	}
	if d.ContractSize.IsZero() {
		return fmt.Errorf("instrument: invalid FuturesDetail: contract size is required")
	}
	if !d.Settlement.Valid() {
		return fmt.Errorf("instrument: invalid FuturesDetail: settlement type %q", d.Settlement)
	}
	return nil
}

// FX is a spot, forward or non-deliverable forward currency trade.
type FX struct {
	Pair           CurrencyPair            `json:"currency_pair"`
	SettlementDate values.Date             `json:"settlement_date"`
	Settlement     SettlementType          `json:"settlement_type"`
	Type           FXKind                  `json:"fx_kind"`
	ForwardRate    *values.PositiveDecimal `json:"forward_rate,omitempty"`
	FixingDate     *values.Date            `json:"fixing_date,omitempty"`
	FixingSource   string                  `json:"fixing_source,omitempty"`
}

// NewFX validates and returns the descriptor.
func NewFX(d FX) (FX, error) {
	if err := d.Validate(); err != nil {
		return FX{}, err
	}
	return d, nil
}

func (FX) Kind() Kind { return KindFX }
func (FX) isDetail()  {}

func (d FX) Validate() error {
	if err := d.Pair.Validate(); err != nil {
		return fmt.Errorf("instrument: invalid FXDetail: %w", err)
	}
	if d.SettlementDate.IsZero() {
		return fmt.Errorf("instrument: invalid FXDetail: settlement date is required")
	}
	if !d.Settlement.Valid() {
		return fmt.Errorf("instrument: invalid FXDetail: settlement type %q", d.Settlement)
	}
	if !d.Type.Valid() {
		return fmt.Errorf("instrument: invalid FXDetail: fx kind %q", d.Type)
	}
	if d.Type == FXNDF {
		if d.FixingDate == nil {
			return fmt.Errorf("instrument: invalid FXDetail: NDF requires a fixing date")
		}
		if d.FixingDate.After(d.SettlementDate) {
			return fmt.Errorf("instrument: invalid FXDetail: fixing date %s is after settlement date %s", d.FixingDate, d.SettlementDate)
		}
		if d.FixingSource == "" {
			return fmt.Errorf("instrument: invalid FXDetail: NDF requires a fixing source")
		}
	}
	return nil
}

// IRSwap is a fixed-for-floating interest rate swap. Fixed rates may be
// negative.
type IRSwap struct {
	FixedRate     decimal.Decimal       `json:"fixed_rate"`
	FloatingIndex values.NonEmptyString `json:"floating_index"`
	DayCount      DayCount              `json:"day_count"`
	Frequency     PaymentFrequency      `json:"payment_frequency"`
	TenorMonths   int                   `json:"tenor_months"`
	EffectiveDate values.Date           `json:"effective_date"`
	MaturityDate  values.Date           `json:"maturity_date"`
}

// NewIRSwap validates and returns the descriptor.
func NewIRSwap(d IRSwap) (IRSwap, error) {
	if err := d.Validate(); err != nil {
		return IRSwap{}, err
	}
	return d, nil
}

func (IRSwap) Kind() Kind { return KindIRSwap }
func (IRSwap) isDetail()  {}

func (d IRSwap) Validate() error {
	if d.FloatingIndex.IsZero() {
		return fmt.Errorf("instrument: invalid IRSwapDetail: floating index is required")
	}
	if !d.DayCount.Valid() {
		return fmt.Errorf("instrument: invalid IRSwapDetail: day count %q", d.DayCount)
	}
	if !d.Frequency.Valid() {
		return fmt.Errorf("instrument: invalid IRSwapDetail: payment frequency %q", d.Frequency)
	}
	if d.TenorMonths <= 0 {
		return fmt.Errorf("instrument: invalid IRSwapDetail: tenor must be positive, got %d months", d.TenorMonths)
	}
	if d.EffectiveDate.IsZero() || d.MaturityDate.IsZero() {
		return fmt.Errorf("instrument: invalid IRSwapDetail: effective and maturity dates are required")
	}
	if !d.EffectiveDate.Before(d.MaturityDate) {
		return fmt.Errorf("instrument: invalid IRSwapDetail: effective date %s must precede maturity %s", d.EffectiveDate, d.MaturityDate)
	}
	return nil
}

// Swaption is an option to enter the embedded swap. The option must expire on
// or before the swap's effective date.
type Swaption struct {
	Swap         IRSwap         `json:"swap"`
	OptionExpiry values.Date    `json:"option_expiry"`
	Style        OptionStyle    `json:"option_style"`
	Settlement   SettlementType `json:"settlement_type"`
}

// NewSwaption validates and returns the descriptor.
func NewSwaption(d Swaption) (Swaption, error) {
	if err := d.Validate(); err != nil {
		return Swaption{}, err
	}
	return d, nil
}

func (Swaption) Kind() Kind { return KindSwaption }
func (Swaption) isDetail()  {}

func (d Swaption) Validate() error {
	if err := d.Swap.Validate(); err != nil {
		return fmt.Errorf("instrument: invalid SwaptionDetail: %w", err)
	}
	if d.OptionExpiry.IsZero() {
		return fmt.Errorf("instrument: invalid SwaptionDetail: option expiry is required")
	}
	if d.OptionExpiry.After(d.Swap.EffectiveDate) {
		return fmt.Errorf("instrument: invalid SwaptionDetail: option expiry %s is after swap effective date %s", d.OptionExpiry, d.Swap.EffectiveDate)
	}
	if !d.Style.Valid() {
		return fmt.Errorf("instrument: invalid SwaptionDetail: option style %q", d.Style)
	}
	if !d.Settlement.Valid() {
		return fmt.Errorf("instrument: invalid SwaptionDetail: settlement type %q", d.Settlement)
	}
	return nil
}

// CDS is single-name credit protection. Spreads are quoted in basis points
// and cannot be negative.
type CDS struct {
	ReferenceEntity values.NonEmptyString     `json:"reference_entity"`
	SpreadBps       values.NonNegativeDecimal `json:"spread_bps"`
	EffectiveDate   values.Date               `json:"effective_date"`
	MaturityDate    values.Date               `json:"maturity_date"`
	Restructuring   RestructuringClause       `json:"restructuring"`
}

// NewCDS validates and returns the descriptor.
func NewCDS(d CDS) (CDS, error) {
	if err := d.Validate(); err != nil {
		return CDS{}, err
	}
	return d, nil
}

func (CDS) Kind() Kind { return KindCDS }
func (CDS) isDetail()  {}

func (d CDS) Validate() error {
	if d.ReferenceEntity.IsZero() {
		return fmt.Errorf("instrument: invalid CDSDetail: reference entity is required")
	}
	if d.EffectiveDate.IsZero() || d.MaturityDate.IsZero() {
		return fmt.Errorf("instrument: invalid CDSDetail: effective and maturity dates are required")
	}
	if !d.EffectiveDate.Before(d.MaturityDate) {
		return fmt.Errorf("instrument: invalid CDSDetail: effective date %s must precede maturity %s", d.EffectiveDate, d.MaturityDate)
	}
	if !d.Restructuring.Valid() {
		return fmt.Errorf("instrument: invalid CDSDetail: restructuring clause %q", d.Restructuring)
	}
	return nil
}
