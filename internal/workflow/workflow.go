package workflow

import (
	"fmt"

	"go.temporal.io/sdk/workflow"

	"github.com/openderiv/rfqdesk/internal/product"
	"github.com/openderiv/rfqdesk/internal/rfq"
)

// state is the workflow's only mutable storage. Queries read it between
// suspension points; nothing else sees it.
type state struct {
	status           string
	clientResponse   *rfq.ClientResponse
	currentPricing   *rfq.PricingResult
	currentTermSheet *rfq.TermSheet
}

// StructuredProductRFQ drives one RFQ from receipt to a terminal outcome:
// mapping, pre-trade checks, then a bounded pricing/quoting/negotiation loop,
// and finally booking and confirmation. Every path ends in exactly one of the
// five outcomes; a trade id exists if and only if the outcome is EXECUTED.
func StructuredProductRFQ(ctx workflow.Context, input rfq.Input) (rfq.Result, error) {
	logger := workflow.GetLogger(ctx)
	s := &state{status: StatusReceived}

	if err := workflow.SetQueryHandler(ctx, QueryGetStatus, func() (string, error) {
		return s.status, nil
	}); err != nil {
		return rfq.Result{}, err
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetCurrentPricing, func() (*rfq.PricingResult, error) {
		return s.currentPricing, nil
	}); err != nil {
		return rfq.Result{}, err
	}

	if err := input.Validate(); err != nil {
		return rfq.Result{}, err
	}
	logger.Info("rfq received", "rfq_id", input.RFQID.String(), "instrument", string(input.Detail.Kind()))

	// MAPPING
	s.status = StatusMapping
	var mapped rfq.MappingOutput
	mapCtx := workflow.WithActivityOptions(ctx, mappingOptions())
	if err := workflow.ExecuteActivity(mapCtx, ActivityMapProduct, input).Get(ctx, &mapped); err != nil {
		logger.Error("mapping activity failed", "error", err)
		return rfq.FailedResult(input.RFQID, fmt.Sprintf("Mapping failed: %v", err), ""), nil
	}
	if mapped.Failed() {
		logger.Warn("mapping rejected the request", "reason", mapped.Err)
		return rfq.FailedResult(input.RFQID, mapped.Err, ""), nil
	}
	prod := *mapped.Product

	// PRE_TRADE_CHECKS
	s.status = StatusPreTradeChecks
	var checks rfq.ChecksOutput
	checksCtx := workflow.WithActivityOptions(ctx, checksOptions())
	if err := workflow.ExecuteActivity(checksCtx, ActivityPreTradeChecks, input, prod).Get(ctx, &checks); err != nil {
		logger.Error("pre-trade checks activity failed", "error", err)
		return rfq.FailedResult(input.RFQID, fmt.Sprintf("Pre-trade checks failed: %v", err), ""), nil
	}
	if !checks.Passed {
		logger.Info("pre-trade checks rejected", "reasons", checks.Reasons)
		return rfq.RejectedResult(input.RFQID, rfq.OutcomeRejectedPreTrade, checks.Reasons), nil
	}

	// Negotiation loop: price, quote, wait. The refresh budget bounds it.
	refreshCount := 0
	for {
		// PRICING
		s.status = StatusPricing
		var priced rfq.PricingOutput
		priceCtx := workflow.WithActivityOptions(ctx, pricingOptions())
		if err := workflow.ExecuteActivity(priceCtx, ActivityPriceProduct, input, prod).Get(ctx, &priced); err != nil {
			logger.Error("pricing activity failed", "error", err)
			return rfq.FailedResult(input.RFQID, fmt.Sprintf("Pricing failed: %v", err), ""), nil
		}
		if priced.Failed() {
			logger.Warn("pricing rejected the request", "reason", priced.Err)
			return rfq.FailedResult(input.RFQID, fmt.Sprintf("Pricing failed: %s", priced.Err), ""), nil
		}
		s.currentPricing = priced.Result

		// QUOTING
		s.status = StatusQuoting
		var sheet rfq.TermSheet
		quoteCtx := workflow.WithActivityOptions(ctx, quotingOptions())
		if err := workflow.ExecuteActivity(quoteCtx, ActivityGenerateIndicative, input, *priced.Result).Get(ctx, &sheet); err != nil {
			logger.Error("quoting activity failed", "error", err)
			return rfq.FailedResult(input.RFQID, fmt.Sprintf("Quoting failed: %v", err), s.attestationID()), nil
		}
		s.currentTermSheet = &sheet
		logger.Info("indicative quote issued",
			"rfq_id", input.RFQID.String(),
			"document_hash", sheet.DocumentHash.String(),
			"refresh_count", refreshCount)

		// AWAITING_CLIENT
		s.status = StatusAwaitingClient
		resp, ok := awaitClientResponse(ctx, s)
		if !ok {
			logger.Info("client response window lapsed", "rfq_id", input.RFQID.String())
			return rfq.ExpiredResult(input.RFQID, "Client response timed out", s.attestationID()), nil
		}

		switch resp.Action {
		case rfq.ActionReject:
			reason := resp.Message
			if reason == "" {
				reason = "Client rejected"
			}
			logger.Info("client rejected the quote", "rfq_id", input.RFQID.String())
			return rfq.RejectedResult(input.RFQID, rfq.OutcomeRejectedByClient, []string{reason}), nil

		case rfq.ActionRefresh:
			refreshCount++
			if refreshCount > MaxRefreshes {
				logger.Info("refresh budget exhausted", "rfq_id", input.RFQID.String())
				return rfq.ExpiredResult(input.RFQID,
					fmt.Sprintf("Exceeded %d price refreshes", MaxRefreshes), s.attestationID()), nil
			}
			logger.Info("client requested a refresh", "rfq_id", input.RFQID.String(), "refresh_count", refreshCount)
			continue

		case rfq.ActionAccept:
			if resp.TermSheetHash != sheet.DocumentHash.String() {
				logger.Warn("acceptance quotes a stale term sheet",
					"rfq_id", input.RFQID.String(),
					"accepted_hash", resp.TermSheetHash,
					"current_hash", sheet.DocumentHash.String())
				return rfq.FailedResult(input.RFQID, "Client accepted stale term sheet", s.attestationID()), nil
			}
			logger.Info("client accepted", "rfq_id", input.RFQID.String())
			return settle(ctx, s, input, prod, *priced.Result, sheet)

		default:
			// Unreachable after decode validation; a fresh action value here
			// is a programmer bug, not client input.
			return rfq.FailedResult(input.RFQID, fmt.Sprintf("Unknown client action %q", resp.Action), s.attestationID()), nil
		}
	}
}

// settle runs the post-acceptance leg: booking, then best-effort
// confirmation.
func settle(ctx workflow.Context, s *state, input rfq.Input, prod product.Product, pricing rfq.PricingResult, sheet rfq.TermSheet) (rfq.Result, error) {
	logger := workflow.GetLogger(ctx)

	// BOOKING
	s.status = StatusBooking
	var booked rfq.BookingOutput
	bookCtx := workflow.WithActivityOptions(ctx, bookingOptions())
	if err := workflow.ExecuteActivity(bookCtx, ActivityBookTrade, input, prod, pricing).Get(ctx, &booked); err != nil {
		logger.Error("booking activity failed", "error", err)
		return rfq.FailedResult(input.RFQID, fmt.Sprintf("Booking failed: %v", err), s.attestationID()), nil
	}
	if booked.Failed() {
		logger.Warn("booking rejected the trade", "reason", booked.Err)
		return rfq.FailedResult(input.RFQID, fmt.Sprintf("Booking failed: %s", booked.Err), s.attestationID()), nil
	}
	booking := *booked.Booking

	// CONFIRMING — at-least-once delivery; exhaustion of the retry budget is
	// tolerated, the trade is already on the books.
	s.status = StatusConfirming
	var confirmation rfq.ConfirmationOutput
	confirmCtx := workflow.WithActivityOptions(ctx, confirmationOptions())
	if err := workflow.ExecuteActivity(confirmCtx, ActivitySendConfirmation, input, booking, sheet).Get(ctx, &confirmation); err != nil {
		logger.Error("confirmation delivery failed, trade remains booked",
			"trade_id", booking.TradeID.String(), "error", err)
	}

	s.status = StatusCompleted
	logger.Info("rfq executed", "rfq_id", input.RFQID.String(), "trade_id", booking.TradeID.String())
	return rfq.ExecutedResult(input.RFQID, booking.TradeID, s.attestationID()), nil
}

// awaitClientResponse clears the previous response and blocks until the next
// client_responds signal or the 24h window lapses. Signals sent before the
// wait began are buffered on the channel and handled in arrival order.
func awaitClientResponse(ctx workflow.Context, s *state) (*rfq.ClientResponse, bool) {
	s.clientResponse = nil

	ch := workflow.GetSignalChannel(ctx, SignalClientResponds)
	timerCtx, cancelTimer := workflow.WithCancel(ctx)
	timer := workflow.NewTimer(timerCtx, ClientTimeout)

	var (
		resp     rfq.ClientResponse
		received bool
	)
	selector := workflow.NewSelector(ctx)
	selector.AddReceive(ch, func(c workflow.ReceiveChannel, _ bool) {
		c.Receive(ctx, &resp)
		received = true
	})
	selector.AddFuture(timer, func(workflow.Future) {})
	selector.Select(ctx)
	cancelTimer()

	if !received {
		return nil, false
	}
	s.clientResponse = &resp
	return &resp, true
}

// attestationID returns the provenance id of the last successful pricing, or
// empty before any pricing succeeded.
func (s *state) attestationID() string {
	if s.currentPricing == nil {
		return ""
	}
	return s.currentPricing.AttestationID.String()
}
