package compliance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openderiv/rfqdesk/internal/instrument"
	"github.com/openderiv/rfqdesk/internal/product"
	"github.com/openderiv/rfqdesk/internal/rfq"
	"github.com/openderiv/rfqdesk/internal/values"
)

// RestrictedInstruments denies RFQs whose underlying appears on the desk's
// restricted list (sanctions, embargoed issuers, internal blackout).
type RestrictedInstruments struct {
	restricted map[string]bool
}

// NewRestrictedInstruments builds the check from a list of restricted
// underlying identifiers (ISINs, index names, reference entities).
func NewRestrictedInstruments(ids []string) *RestrictedInstruments {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return &RestrictedInstruments{restricted: m}
}

func (c *RestrictedInstruments) Name() string { return "restricted_instruments" }

func (c *RestrictedInstruments) Run(_ context.Context, in rfq.Input, _ product.Product) error {
	id := underlyingID(in.Detail)
	if id != "" && c.restricted[id] {
		return fmt.Errorf("Instrument %s is restricted", id)
	}
	return nil
}

// underlyingID extracts the identifier a restriction list would name.
func underlyingID(d instrument.Detail) string {
	switch v := d.(type) {
	case instrument.Equity:
		return v.Underlying.String()
	case instrument.Option:
		return v.Underlying.String()
	case instrument.Futures:
		return v.Underlying.String()
	case instrument.FX:
		return v.Pair.String()
	case instrument.IRSwap:
		return v.FloatingIndex.String()
	case instrument.Swaption:
		return v.Swap.FloatingIndex.String()
	case instrument.CDS:
		return v.ReferenceEntity.String()
	}
	return ""
}

// CreditLimit rejects RFQs whose notional exceeds the client's credit line.
// Limits are per client LEI with a default for clients without an explicit
// line.
type CreditLimit struct {
	limits       map[string]decimal.Decimal
	defaultLimit decimal.Decimal
}

// NewCreditLimit builds the check from explicit per-LEI limits and a default.
func NewCreditLimit(limits map[string]decimal.Decimal, defaultLimit decimal.Decimal) *CreditLimit {
	if limits == nil {
		limits = make(map[string]decimal.Decimal)
	}
	return &CreditLimit{limits: limits, defaultLimit: defaultLimit}
}

func (c *CreditLimit) Name() string { return "credit_limit" }

func (c *CreditLimit) Run(_ context.Context, in rfq.Input, p product.Product) error {
	limit, ok := c.limits[in.ClientLEI.String()]
	if !ok {
		limit = c.defaultLimit
	}
	if limit.Sign() <= 0 {
		return nil // no limit configured for this client
	}
	if p.Economics.Notional.Decimal().GreaterThan(limit) {
		return fmt.Errorf("Credit limit exceeded")
	}
	return nil
}

// ProductEligibility rejects RFQs in asset classes the client has not been
// onboarded for. A client with no entry is eligible for everything; an entry
// with an empty list is eligible for nothing.
type ProductEligibility struct {
	eligible map[string]map[product.AssetClass]bool
}

// NewProductEligibility builds the check from a per-LEI asset class map.
func NewProductEligibility(eligible map[string][]product.AssetClass) *ProductEligibility {
	m := make(map[string]map[product.AssetClass]bool, len(eligible))
	for lei, classes := range eligible {
		set := make(map[product.AssetClass]bool, len(classes))
		for _, ac := range classes {
			set[ac] = true
		}
		m[lei] = set
	}
	return &ProductEligibility{eligible: m}
}

func (c *ProductEligibility) Name() string { return "product_eligibility" }

func (c *ProductEligibility) Run(_ context.Context, in rfq.Input, p product.Product) error {
	classes, ok := c.eligible[in.ClientLEI.String()]
	if !ok {
		return nil
	}
	if !classes[p.AssetClass] {
		return fmt.Errorf("Client %s is not eligible for %s products", in.ClientLEI, p.AssetClass)
	}
	return nil
}

// TenorLimit caps how far out rates and credit trades may mature. Desk policy,
// not a regulatory rule; equities and FX pass through untouched.
type TenorLimit struct {
	maxTenorMonths int
}

// NewTenorLimit builds the check with the maximum allowed tenor in months.
func NewTenorLimit(maxTenorMonths int) *TenorLimit {
	return &TenorLimit{maxTenorMonths: maxTenorMonths}
}

func (c *TenorLimit) Name() string { return "tenor_limit" }

func (c *TenorLimit) Run(_ context.Context, in rfq.Input, _ product.Product) error {
	months := 0
	switch v := in.Detail.(type) {
	case instrument.IRSwap:
		months = v.TenorMonths
	case instrument.Swaption:
		months = v.Swap.TenorMonths
	case instrument.CDS:
		months = monthsBetween(v.EffectiveDate, v.MaturityDate)
	default:
		return nil
	}
	if c.maxTenorMonths > 0 && months > c.maxTenorMonths {
		return fmt.Errorf("Tenor of %d months exceeds the %d month policy limit", months, c.maxTenorMonths)
	}
	return nil
}

func monthsBetween(from, to values.Date) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
