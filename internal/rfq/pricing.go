package rfq

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openderiv/rfqdesk/internal/values"
)

// Greek is one named price sensitivity.
type Greek struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// Greeks is an ordered mapping of sensitivity name to value. Iteration order
// is the order the pricer emitted them in; the wire format is an array of
// name/value pairs so the order survives round trips.
type Greeks []Greek

// Get returns the named greek, if present.
func (g Greeks) Get(name string) (decimal.Decimal, bool) {
	for _, e := range g {
		if e.Name == name {
			return e.Value, true
		}
	}
	return decimal.Decimal{}, false
}

func (g Greeks) validate() error {
	seen := make(map[string]bool, len(g))
	for _, e := range g {
		if e.Name == "" {
			return fmt.Errorf("rfq: invalid PricingResult: greek with empty name")
		}
		if seen[e.Name] {
			return fmt.Errorf("rfq: invalid PricingResult: duplicate greek %q", e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

// PricingResult is the output of a successful pricing run.
type PricingResult struct {
	IndicativePrice values.Money          `json:"indicative_price"`
	Greeks          Greeks                `json:"greeks"`
	ModelName       values.NonEmptyString `json:"model_name"`
	SnapshotID      values.NonEmptyString `json:"market_data_snapshot_id"`
	Confidence      float64               `json:"confidence"`
	AttestationID   values.NonEmptyString `json:"pricing_attestation_id"`
	Timestamp       values.UTCTime        `json:"timestamp"`
}

// NewPricingResult validates and returns the pricing record.
func NewPricingResult(r PricingResult) (PricingResult, error) {
	if err := r.Validate(); err != nil {
		return PricingResult{}, err
	}
	return r, nil
}

func (r PricingResult) Validate() error {
	if r.IndicativePrice.IsZero() {
		return fmt.Errorf("rfq: invalid PricingResult: indicative price is required")
	}
	if err := r.Greeks.validate(); err != nil {
		return err
	}
	if r.ModelName.IsZero() {
		return fmt.Errorf("rfq: invalid PricingResult: model name is required")
	}
	if r.SnapshotID.IsZero() {
		return fmt.Errorf("rfq: invalid PricingResult: market data snapshot id is required")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("rfq: invalid PricingResult: confidence %v outside [0,1]", r.Confidence)
	}
	if r.AttestationID.IsZero() {
		return fmt.Errorf("rfq: invalid PricingResult: pricing attestation id is required")
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("rfq: invalid PricingResult: timestamp is required")
	}
	return nil
}

// PricingAttestation links an indicative price to its provenance: the model,
// the market data snapshot it was computed from, and the pricer's confidence.
// Booked trades keep the attestation id for audit.
type PricingAttestation struct {
	AttestationID values.NonEmptyString `json:"attestation_id"`
	RFQID         values.NonEmptyString `json:"rfq_id"`
	ModelName     values.NonEmptyString `json:"model_name"`
	SnapshotID    values.NonEmptyString `json:"market_data_snapshot_id"`
	Price         values.Money          `json:"price"`
	Confidence    float64               `json:"confidence"`
	GeneratedAt   values.UTCTime        `json:"generated_at"`
}

// NewPricingAttestation validates and returns the attestation record.
func NewPricingAttestation(a PricingAttestation) (PricingAttestation, error) {
	if err := a.Validate(); err != nil {
		return PricingAttestation{}, err
	}
	return a, nil
}

func (a PricingAttestation) Validate() error {
	if a.AttestationID.IsZero() {
		return fmt.Errorf("rfq: invalid PricingAttestation: attestation id is required")
	}
	if a.RFQID.IsZero() {
		return fmt.Errorf("rfq: invalid PricingAttestation: rfq id is required")
	}
	if a.ModelName.IsZero() || a.SnapshotID.IsZero() {
		return fmt.Errorf("rfq: invalid PricingAttestation %s: model and snapshot are required", a.AttestationID)
	}
	if a.Price.IsZero() {
		return fmt.Errorf("rfq: invalid PricingAttestation %s: price is required", a.AttestationID)
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		return fmt.Errorf("rfq: invalid PricingAttestation %s: confidence %v outside [0,1]", a.AttestationID, a.Confidence)
	}
	if a.GeneratedAt.IsZero() {
		return fmt.Errorf("rfq: invalid PricingAttestation %s: generated at is required", a.AttestationID)
	}
	return nil
}
