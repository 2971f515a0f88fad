package rfq

import (
	"fmt"

	"github.com/openderiv/rfqdesk/internal/values"
)

// Outcome is the single terminal disposition of an RFQ.
type Outcome string

const (
	OutcomeExecuted         Outcome = "EXECUTED"
	OutcomeRejectedPreTrade Outcome = "REJECTED_PRE_TRADE"
	OutcomeRejectedByClient Outcome = "REJECTED_BY_CLIENT"
	OutcomeExpired          Outcome = "EXPIRED"
	OutcomeFailed           Outcome = "FAILED"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeExecuted, OutcomeRejectedPreTrade, OutcomeRejectedByClient, OutcomeExpired, OutcomeFailed:
		return true
	}
	return false
}

// Result is the workflow's terminal output. A trade id is present exactly
// when the outcome is EXECUTED.
type Result struct {
	RFQID            values.NonEmptyString `json:"rfq_id"`
	Outcome          Outcome               `json:"outcome"`
	TradeID          string                `json:"trade_id,omitempty"`
	RejectionReasons []string              `json:"rejection_reasons"`
	AttestationID    string                `json:"pricing_attestation_id,omitempty"`
}

// NewResult validates and returns the terminal record.
func NewResult(r Result) (Result, error) {
	if err := r.Validate(); err != nil {
		return Result{}, err
	}
	return r, nil
}

func (r Result) Validate() error {
	if r.RFQID.IsZero() {
		return fmt.Errorf("rfq: invalid RFQResult: rfq id is required")
	}
	if !r.Outcome.Valid() {
		return fmt.Errorf("rfq: invalid RFQResult %s: outcome %q", r.RFQID, r.Outcome)
	}
	if r.Outcome == OutcomeExecuted && r.TradeID == "" {
		return fmt.Errorf("rfq: invalid RFQResult %s: EXECUTED requires a trade id", r.RFQID)
	}
	if r.Outcome != OutcomeExecuted && r.TradeID != "" {
		return fmt.Errorf("rfq: invalid RFQResult %s: trade id %q on non-executed outcome %s", r.RFQID, r.TradeID, r.Outcome)
	}
	return nil
}

// ExecutedResult builds the terminal record for a booked trade.
func ExecutedResult(rfqID values.NonEmptyString, tradeID values.NonEmptyString, attestationID string) Result {
	return Result{
		RFQID:            rfqID,
		Outcome:          OutcomeExecuted,
		TradeID:          tradeID.String(),
		RejectionReasons: []string{},
		AttestationID:    attestationID,
	}
}

// RejectedResult builds a terminal record for either rejection outcome.
func RejectedResult(rfqID values.NonEmptyString, outcome Outcome, reasons []string) Result {
	if len(reasons) == 0 {
		reasons = []string{}
	}
	return Result{
		RFQID:            rfqID,
		Outcome:          outcome,
		RejectionReasons: reasons,
	}
}

// ExpiredResult builds the terminal record for a lapsed RFQ, keeping the
// attestation of the last quoted price when one exists.
func ExpiredResult(rfqID values.NonEmptyString, reason, attestationID string) Result {
	return Result{
		RFQID:            rfqID,
		Outcome:          OutcomeExpired,
		RejectionReasons: []string{reason},
		AttestationID:    attestationID,
	}
}

// FailedResult builds the terminal record for an unrecoverable step failure.
func FailedResult(rfqID values.NonEmptyString, reason, attestationID string) Result {
	return Result{
		RFQID:            rfqID,
		Outcome:          OutcomeFailed,
		RejectionReasons: []string{reason},
		AttestationID:    attestationID,
	}
}
