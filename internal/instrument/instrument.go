// Package instrument defines the tagged sum of product descriptors an RFQ can
// reference. Each variant carries its own cross-field invariants; the
// orchestrator never branches on the concrete variant, registries do, through
// first-match qualifier predicates.
package instrument

import (
	"fmt"

	"github.com/openderiv/rfqdesk/internal/values"
)

// Kind discriminates the instrument variants on the wire.
type Kind string

const (
	KindEquity   Kind = "EQUITY"
	KindOption   Kind = "OPTION"
	KindFutures  Kind = "FUTURES"
	KindFX       Kind = "FX"
	KindIRSwap   Kind = "IR_SWAP"
	KindSwaption Kind = "SWAPTION"
	KindCDS      Kind = "CDS"
)

// Detail is the closed interface over instrument variants. Implementations
// live in this package only.
type Detail interface {
	Kind() Kind
	// Validate re-checks every tag-specific invariant. Decoded values run
	// through it before they are allowed to exist.
	Validate() error

	isDetail()
}

// Side is the client's direction on the trade. For credit protection, BUY
// means buying protection.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

func (s Side) Valid() bool { return s == SideBuy || s == SideSell }

// OptionType distinguishes calls from puts.
type OptionType string

const (
	OptionCall OptionType = "CALL"
	OptionPut  OptionType = "PUT"
)

func (t OptionType) Valid() bool { return t == OptionCall || t == OptionPut }

// OptionStyle is the exercise style.
type OptionStyle string

const (
	StyleAmerican OptionStyle = "AMERICAN"
	StyleEuropean OptionStyle = "EUROPEAN"
)

func (s OptionStyle) Valid() bool { return s == StyleAmerican || s == StyleEuropean }

// SettlementType is how the contract settles at maturity or exercise.
type SettlementType string

const (
	SettleCash     SettlementType = "CASH"
	SettlePhysical SettlementType = "PHYSICAL"
)

func (s SettlementType) Valid() bool { return s == SettleCash || s == SettlePhysical }

// FXKind distinguishes spot, deliverable forward and non-deliverable forward.
type FXKind string

const (
	FXSpot    FXKind = "SPOT"
	FXForward FXKind = "FORWARD"
	FXNDF     FXKind = "NDF"
)

func (k FXKind) Valid() bool { return k == FXSpot || k == FXForward || k == FXNDF }

// DayCount is the accrual convention for rate legs.
type DayCount string

const (
	DayCountAct360  DayCount = "ACT/360"
	DayCountAct365F DayCount = "ACT/365F"
	DayCountThirty  DayCount = "30/360"
)

func (d DayCount) Valid() bool {
	return d == DayCountAct360 || d == DayCountAct365F || d == DayCountThirty
}

// PaymentFrequency is the coupon schedule of a swap leg.
type PaymentFrequency string

const (
	FreqMonthly    PaymentFrequency = "MONTHLY"
	FreqQuarterly  PaymentFrequency = "QUARTERLY"
	FreqSemiAnnual PaymentFrequency = "SEMI_ANNUAL"
	FreqAnnual     PaymentFrequency = "ANNUAL"
)

func (f PaymentFrequency) Valid() bool {
	switch f {
	case FreqMonthly, FreqQuarterly, FreqSemiAnnual, FreqAnnual:
		return true
	}
	return false
}

// PaymentsPerYear returns the coupon count implied by the frequency, or 0 for
// an invalid value.
func (f PaymentFrequency) PaymentsPerYear() int {
	switch f {
	case FreqMonthly:
		return 12
	case FreqQuarterly:
		return 4
	case FreqSemiAnnual:
		return 2
	case FreqAnnual:
		return 1
	}
	return 0
}

// RestructuringClause is the ISDA credit-event restructuring treatment on a CDS.
type RestructuringClause string

const (
	RestructuringNone     RestructuringClause = "NO_RESTRUCTURING"
	RestructuringFull     RestructuringClause = "FULL_RESTRUCTURING"
	RestructuringModified RestructuringClause = "MODIFIED_RESTRUCTURING"
	RestructuringModMod   RestructuringClause = "MODIFIED_MODIFIED_RESTRUCTURING"
)

func (r RestructuringClause) Valid() bool {
	switch r {
	case RestructuringNone, RestructuringFull, RestructuringModified, RestructuringModMod:
		return true
	}
	return false
}

// CurrencyPair is an ordered base/quote pair with distinct legs.
type CurrencyPair struct {
	Base  values.Currency `json:"base"`
	Quote values.Currency `json:"quote"`
}

// NewCurrencyPair validates and constructs a currency pair.
func NewCurrencyPair(base, quote values.Currency) (CurrencyPair, error) {
	p := CurrencyPair{Base: base, Quote: quote}
	if err := p.Validate(); err != nil {
		return CurrencyPair{}, err
	}
	return p, nil
}

func (p CurrencyPair) Validate() error {
	if p.Base.IsZero() || p.Quote.IsZero() {
		return fmt.Errorf("instrument: invalid CurrencyPair: both legs are required")
	}
	if p.Base == p.Quote {
		return fmt.Errorf("instrument: invalid CurrencyPair %s/%s: base and quote must differ", p.Base, p.Quote)
	}
	return nil
}

func (p CurrencyPair) String() string {
	return p.Base.String() + "/" + p.Quote.String()
}
