package rfq

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/openderiv/rfqdesk/internal/values"
)

// TermSheet is the indicative quote document sent to the client. Its
// document hash is the acceptance token: a client ACCEPT must quote the hash
// of the term sheet it is accepting.
type TermSheet struct {
	RFQID        values.NonEmptyString `json:"rfq_id"`
	Pricing      PricingResult         `json:"pricing_result"`
	DocumentHash values.NonEmptyString `json:"document_hash"`
	GeneratedAt  values.UTCTime        `json:"generated_at"`
	ValidUntil   values.UTCTime        `json:"valid_until"`
}

// NewTermSheet validates and returns the term sheet record.
func NewTermSheet(ts TermSheet) (TermSheet, error) {
	if err := ts.Validate(); err != nil {
		return TermSheet{}, err
	}
	return ts, nil
}

func (ts TermSheet) Validate() error {
	if ts.RFQID.IsZero() {
		return fmt.Errorf("rfq: invalid TermSheet: rfq id is required")
	}
	if err := ts.Pricing.Validate(); err != nil {
		return fmt.Errorf("rfq: invalid TermSheet %s: %w", ts.RFQID, err)
	}
	if !isSHA256Hex(ts.DocumentHash.String()) {
		return fmt.Errorf("rfq: invalid TermSheet %s: document hash must be 64 lowercase hex characters", ts.RFQID)
	}
	if ts.GeneratedAt.IsZero() || ts.ValidUntil.IsZero() {
		return fmt.Errorf("rfq: invalid TermSheet %s: generated and valid-until timestamps are required", ts.RFQID)
	}
	if ts.ValidUntil.Before(ts.GeneratedAt) {
		return fmt.Errorf("rfq: invalid TermSheet %s: valid until %s precedes generated at %s",
			ts.RFQID, ts.ValidUntil, ts.GeneratedAt)
	}
	return nil
}

func isSHA256Hex(s string) bool {
	if len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

// DocumentHash computes the content hash of a term sheet: SHA-256 over a
// canonical JSON object of the key pricing fields with lexicographically
// sorted keys, rendered as lowercase hex. Both the quoting activity and the
// stale-acceptance guard derive hashes through this one function.
func DocumentHash(rfqID values.NonEmptyString, pricing PricingResult) string {
	payload := map[string]string{
		"rfq_id":   rfqID.String(),
		"price":    pricing.IndicativePrice.Amount().String(),
		"currency": pricing.IndicativePrice.Currency().String(),
		"model":    pricing.ModelName.String(),
		"snapshot": pricing.SnapshotID.String(),
	}
	// encoding/json sorts map keys, which is exactly the canonical form.
	data, err := json.Marshal(payload)
	if err != nil {
		// A map of plain strings cannot fail to marshal.
		panic(fmt.Sprintf("rfq: term sheet hash marshal: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
