// Package workflow holds the durable RFQ state machine: a replay-safe
// orchestrator that sequences the lifecycle activities, waits on client
// signals, answers queries, and resolves every request to exactly one
// terminal outcome.
package workflow

import "time"

// Workflow registration contract shared with the worker, the gateway and the
// CLI.
const (
	TypeName  = "StructuredProductRFQ"
	TaskQueue = "structured-rfq"
)

// External surface names.
const (
	SignalClientResponds   = "client_responds"
	QueryGetStatus         = "get_status"
	QueryGetCurrentPricing = "get_current_pricing"
)

// Activity names. The workflow invokes by name so the activity structs can be
// registered and mocked independently.
const (
	ActivityMapProduct         = "map_to_cdm_product"
	ActivityPreTradeChecks     = "run_pre_trade_checks"
	ActivityPriceProduct       = "price_product"
	ActivityGenerateIndicative = "generate_and_send_indicative"
	ActivityBookTrade          = "book_trade"
	ActivitySendConfirmation   = "send_confirmation"
)

// Negotiation constants.
const (
	// MaxRefreshes caps the client's REFRESH budget; one more ends the RFQ
	// as EXPIRED.
	MaxRefreshes = 5
	// ClientTimeout bounds each wait for a client response.
	ClientTimeout = 24 * time.Hour
	// TermSheetValidFor is the indicative quote's validity window.
	TermSheetValidFor = time.Hour
)

// Status values observable through the get_status query.
const (
	StatusReceived       = "RECEIVED"
	StatusMapping        = "MAPPING"
	StatusPreTradeChecks = "PRE_TRADE_CHECKS"
	StatusPricing        = "PRICING"
	StatusQuoting        = "QUOTING"
	StatusAwaitingClient = "AWAITING_CLIENT"
	StatusBooking        = "BOOKING"
	StatusConfirming     = "CONFIRMING"
	StatusCompleted      = "COMPLETED"
)

// Semantic error kinds carried as application-error types across the
// activity boundary. Retry policies dispatch on these.
const (
	ErrKindValidation        = "ValidationError"
	ErrKindPricing           = "PricingError"
	ErrKindCalibration       = "CalibrationError"
	ErrKindIllegalTransition = "IllegalTransitionError"
	ErrKindTransientIO       = "TransientIOError"
	ErrKindDecode            = "DecodeError"
)
