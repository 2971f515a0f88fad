// Package rfq defines the records that travel through the RFQ lifecycle:
// the inbound request, pricing output, term sheet, client response, activity
// I/O wrappers and the terminal result. Records are immutable once built;
// every construction path runs the same validation, including decoding.
package rfq

import (
	"fmt"

	"github.com/openderiv/rfqdesk/internal/instrument"
	"github.com/openderiv/rfqdesk/internal/values"
)

// Input is the client's request for a quote. The RFQ id doubles as the
// workflow id, which is what makes resubmission idempotent.
type Input struct {
	RFQID          values.NonEmptyString  `json:"rfq_id"`
	ClientLEI      values.LEI             `json:"client_lei"`
	Detail         instrument.Detail      `json:"instrument_detail"`
	Notional       values.PositiveDecimal `json:"notional"`
	Currency       values.Currency        `json:"currency"`
	Side           instrument.Side        `json:"side"`
	TradeDate      values.Date            `json:"trade_date"`
	SettlementDate values.Date            `json:"settlement_date"`
	Timestamp      values.UTCTime         `json:"timestamp"`
}

// NewInput validates and returns the request record.
func NewInput(in Input) (Input, error) {
	if err := in.Validate(); err != nil {
		return Input{}, err
	}
	return in, nil
}

func (in Input) Validate() error {
	if in.RFQID.IsZero() {
		return fmt.Errorf("rfq: invalid RFQInput: rfq id is required")
	}
	if in.ClientLEI.IsZero() {
		return fmt.Errorf("rfq: invalid RFQInput %s: client LEI is required", in.RFQID)
	}
	if in.Detail == nil {
		return fmt.Errorf("rfq: invalid RFQInput %s: instrument detail is required", in.RFQID)
	}
	if err := in.Detail.Validate(); err != nil {
		return fmt.Errorf("rfq: invalid RFQInput %s: %w", in.RFQID, err)
	}
	if in.Notional.IsZero() {
		return fmt.Errorf("rfq: invalid RFQInput %s: notional is required", in.RFQID)
	}
	if in.Currency.IsZero() {
		return fmt.Errorf("rfq: invalid RFQInput %s: currency is required", in.RFQID)
	}
	if !in.Side.Valid() {
		return fmt.Errorf("rfq: invalid RFQInput %s: side %q", in.RFQID, in.Side)
	}
	if in.TradeDate.IsZero() || in.SettlementDate.IsZero() {
		return fmt.Errorf("rfq: invalid RFQInput %s: trade and settlement dates are required", in.RFQID)
	}
	if in.SettlementDate.Before(in.TradeDate) {
		return fmt.Errorf("rfq: invalid RFQInput %s: settlement date %s precedes trade date %s",
			in.RFQID, in.SettlementDate, in.TradeDate)
	}
	if in.Timestamp.IsZero() {
		return fmt.Errorf("rfq: invalid RFQInput %s: timestamp is required", in.RFQID)
	}
	return nil
}
