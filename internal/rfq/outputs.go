package rfq

import (
	"fmt"

	"github.com/openderiv/rfqdesk/internal/product"
	"github.com/openderiv/rfqdesk/internal/values"
)

// Booking is the ledger's confirmation of a booked trade.
type Booking struct {
	TradeID  values.NonEmptyString `json:"trade_id"`
	UTI      values.UTI            `json:"uti"`
	BookedAt values.UTCTime        `json:"booked_at"`
}

// NewBooking validates and returns the booking record.
func NewBooking(b Booking) (Booking, error) {
	if err := b.Validate(); err != nil {
		return Booking{}, err
	}
	return b, nil
}

func (b Booking) Validate() error {
	if b.TradeID.IsZero() {
		return fmt.Errorf("rfq: invalid Booking: trade id is required")
	}
	if b.UTI.IsZero() {
		return fmt.Errorf("rfq: invalid Booking %s: UTI is required", b.TradeID)
	}
	if b.BookedAt.IsZero() {
		return fmt.Errorf("rfq: invalid Booking %s: booked at is required", b.TradeID)
	}
	return nil
}

// MappingOutput carries exactly one of a mapped product or an error string.
type MappingOutput struct {
	Product *product.Product `json:"product,omitempty"`
	Err     string           `json:"error,omitempty"`
}

// NewMappingSuccess wraps a mapped product.
func NewMappingSuccess(p product.Product) MappingOutput {
	return MappingOutput{Product: &p}
}

// NewMappingFailure wraps a mapping error.
func NewMappingFailure(reason string) MappingOutput {
	return MappingOutput{Err: reason}
}

func (o MappingOutput) Failed() bool { return o.Err != "" }

func (o MappingOutput) Validate() error {
	if (o.Product == nil) == (o.Err == "") {
		return fmt.Errorf("rfq: invalid MappingOutput: exactly one of product or error must be set")
	}
	if o.Product != nil {
		return o.Product.Validate()
	}
	return nil
}

// PricingOutput carries exactly one of a pricing result or an error string.
type PricingOutput struct {
	Result *PricingResult `json:"result,omitempty"`
	Err    string         `json:"error,omitempty"`
}

// NewPricingSuccess wraps a pricing result.
func NewPricingSuccess(r PricingResult) PricingOutput {
	return PricingOutput{Result: &r}
}

// NewPricingFailure wraps a pricing error.
func NewPricingFailure(reason string) PricingOutput {
	return PricingOutput{Err: reason}
}

func (o PricingOutput) Failed() bool { return o.Err != "" }

func (o PricingOutput) Validate() error {
	if (o.Result == nil) == (o.Err == "") {
		return fmt.Errorf("rfq: invalid PricingOutput: exactly one of result or error must be set")
	}
	if o.Result != nil {
		return o.Result.Validate()
	}
	return nil
}

// BookingOutput carries exactly one of a booking or an error string.
type BookingOutput struct {
	Booking *Booking `json:"booking,omitempty"`
	Err     string   `json:"error,omitempty"`
}

// NewBookingSuccess wraps a booking confirmation.
func NewBookingSuccess(b Booking) BookingOutput {
	return BookingOutput{Booking: &b}
}

// NewBookingFailure wraps a booking error.
func NewBookingFailure(reason string) BookingOutput {
	return BookingOutput{Err: reason}
}

func (o BookingOutput) Failed() bool { return o.Err != "" }

func (o BookingOutput) Validate() error {
	if (o.Booking == nil) == (o.Err == "") {
		return fmt.Errorf("rfq: invalid BookingOutput: exactly one of booking or error must be set")
	}
	if o.Booking != nil {
		return o.Booking.Validate()
	}
	return nil
}

// ChecksOutput is the aggregated verdict of the pre-trade check run.
// Passed is true only when Reasons is empty.
type ChecksOutput struct {
	Passed  bool     `json:"passed"`
	Reasons []string `json:"reasons"`
}

// NewChecksOutput derives the verdict from the aggregated failure reasons.
func NewChecksOutput(reasons []string) ChecksOutput {
	if len(reasons) == 0 {
		return ChecksOutput{Passed: true, Reasons: []string{}}
	}
	return ChecksOutput{Passed: false, Reasons: reasons}
}

func (o ChecksOutput) Validate() error {
	if o.Passed != (len(o.Reasons) == 0) {
		return fmt.Errorf("rfq: invalid ChecksOutput: passed flag disagrees with reasons")
	}
	return nil
}

// ConfirmationOutput reports the confirmation delivery attempt. Delivery is
// at-least-once and idempotent by trade id; a false Delivered after the retry
// budget is logged, not fatal.
type ConfirmationOutput struct {
	TradeID     values.NonEmptyString `json:"trade_id"`
	Delivered   bool                  `json:"delivered"`
	DeliveredAt values.UTCTime        `json:"delivered_at"`
}

func (o ConfirmationOutput) Validate() error {
	if o.TradeID.IsZero() {
		return fmt.Errorf("rfq: invalid ConfirmationOutput: trade id is required")
	}
	if o.Delivered && o.DeliveredAt.IsZero() {
		return fmt.Errorf("rfq: invalid ConfirmationOutput %s: delivered without timestamp", o.TradeID)
	}
	return nil
}
