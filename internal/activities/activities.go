// Package activities implements the six lifecycle activities the RFQ
// workflow invokes. Activities do the non-deterministic work: registry
// lookups, pricing I/O, ledger writes and document delivery. Each one is
// idempotent under retry.
package activities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/openderiv/rfqdesk/internal/booking"
	"github.com/openderiv/rfqdesk/internal/compliance"
	"github.com/openderiv/rfqdesk/internal/delivery"
	"github.com/openderiv/rfqdesk/internal/mapping"
	"github.com/openderiv/rfqdesk/internal/metrics"
	"github.com/openderiv/rfqdesk/internal/pricing"
	"github.com/openderiv/rfqdesk/internal/product"
	"github.com/openderiv/rfqdesk/internal/rfq"
	"github.com/openderiv/rfqdesk/internal/values"
	wf "github.com/openderiv/rfqdesk/internal/workflow"
)

// Ledger books accepted trades.
type Ledger interface {
	BookTrade(ctx context.Context, in rfq.Input, prod product.Product, pricing rfq.PricingResult) (rfq.Booking, error)
}

// Archiver stores accepted term sheets for audit. Optional.
type Archiver interface {
	ArchiveTermSheet(ctx context.Context, sheet rfq.TermSheet) error
}

// Activities bundles the collaborator set behind the six activity methods.
type Activities struct {
	mappers *mapping.Registry
	checks  *compliance.Registry
	pricers *pricing.Registry
	ledger  Ledger
	sender  delivery.Sender
	archive Archiver
	log     zerolog.Logger
	now     func() time.Time
}

// New wires the activity set. archive may be nil when no object storage is
// configured.
func New(
	mappers *mapping.Registry,
	checks *compliance.Registry,
	pricers *pricing.Registry,
	ledger Ledger,
	sender delivery.Sender,
	archive Archiver,
	log zerolog.Logger,
) *Activities {
	return &Activities{
		mappers: mappers,
		checks:  checks,
		pricers: pricers,
		ledger:  ledger,
		sender:  sender,
		archive: archive,
		log:     log.With().Str("component", "activities").Logger(),
		now:     time.Now,
	}
}

// MapProduct resolves the first qualifying mapper and maps the request into
// its product representation. An instrument no mapper claims is a domain
// failure, not an error: the workflow reads it out of the wrapper.
func (a *Activities) MapProduct(_ context.Context, in rfq.Input) (rfq.MappingOutput, error) {
	defer observe(wf.ActivityMapProduct, a.now())

	mapper, err := a.mappers.Resolve(in.Detail)
	if err != nil {
		if errors.Is(err, mapping.ErrNoMapper) {
			a.log.Warn().
				Str("rfq_id", in.RFQID.String()).
				Str("instrument", string(in.Detail.Kind())).
				Msg("no mapper claims the instrument")
			return rfq.NewMappingFailure("Unsupported product type"), nil
		}
		metrics.ActivityFailures.WithLabelValues(wf.ActivityMapProduct, wf.ErrKindValidation).Inc()
		return rfq.MappingOutput{}, temporal.NewApplicationError(err.Error(), wf.ErrKindValidation)
	}

	prod, err := mapper.Map(in)
	if err != nil {
		a.log.Warn().Err(err).Str("rfq_id", in.RFQID.String()).Str("mapper", mapper.Name()).Msg("mapping failed")
		return rfq.NewMappingFailure(err.Error()), nil
	}
	a.log.Debug().
		Str("rfq_id", in.RFQID.String()).
		Str("mapper", mapper.Name()).
		Str("taxonomy", prod.TaxonomyCode.String()).
		Msg("request mapped")
	return rfq.NewMappingSuccess(prod), nil
}

// RunPreTradeChecks runs every registered compliance check in order and
// aggregates the failures.
func (a *Activities) RunPreTradeChecks(ctx context.Context, in rfq.Input, prod product.Product) (rfq.ChecksOutput, error) {
	defer observe(wf.ActivityPreTradeChecks, a.now())

	reasons := a.checks.RunAll(ctx, in, prod, a.log)
	for _, reason := range reasons {
		metrics.ChecksFailed.WithLabelValues(reason).Inc()
	}
	return rfq.NewChecksOutput(reasons), nil
}

// PriceProduct resolves the first qualifying pricer and prices the product,
// heartbeating while the model runs. Pricing and calibration failures are
// raised as non-retryable application errors so the retry policy stands
// down.
func (a *Activities) PriceProduct(ctx context.Context, in rfq.Input, prod product.Product) (rfq.PricingOutput, error) {
	defer observe(wf.ActivityPriceProduct, a.now())

	pricer, err := a.pricers.Resolve(in.Detail)
	if err != nil {
		metrics.ActivityFailures.WithLabelValues(wf.ActivityPriceProduct, wf.ErrKindPricing).Inc()
		return rfq.PricingOutput{}, temporal.NewApplicationError(
			fmt.Sprintf("no pricer for instrument %s", in.Detail.Kind()), wf.ErrKindPricing)
	}

	stop := heartbeat(ctx)
	result, err := pricer.Price(ctx, in, prod)
	stop()
	if err != nil {
		var calErr *pricing.CalibrationError
		var prcErr *pricing.PricingError
		switch {
		case errors.As(err, &calErr):
			metrics.ActivityFailures.WithLabelValues(wf.ActivityPriceProduct, wf.ErrKindCalibration).Inc()
			return rfq.PricingOutput{}, temporal.NewApplicationError(calErr.Reason, wf.ErrKindCalibration)
		case errors.As(err, &prcErr):
			metrics.ActivityFailures.WithLabelValues(wf.ActivityPriceProduct, wf.ErrKindPricing).Inc()
			return rfq.PricingOutput{}, temporal.NewApplicationError(prcErr.Reason, wf.ErrKindPricing)
		default:
			// Transient upstream trouble; the retry policy owns it.
			metrics.ActivityFailures.WithLabelValues(wf.ActivityPriceProduct, wf.ErrKindTransientIO).Inc()
			return rfq.PricingOutput{}, fmt.Errorf("price product: %w", err)
		}
	}

	a.log.Info().
		Str("rfq_id", in.RFQID.String()).
		Str("pricer", pricer.Name()).
		Str("price", result.IndicativePrice.String()).
		Str("attestation_id", result.AttestationID.String()).
		Msg("product priced")
	return rfq.NewPricingSuccess(result), nil
}

// GenerateAndSendIndicative builds the term sheet from the current pricing,
// stamps its content hash, and delivers it. Delivery failures are plain
// errors so the quoting retry policy re-runs the send; the dedup key makes
// the re-run safe.
func (a *Activities) GenerateAndSendIndicative(ctx context.Context, in rfq.Input, priced rfq.PricingResult) (rfq.TermSheet, error) {
	defer observe(wf.ActivityGenerateIndicative, a.now())

	now, err := values.NewUTCTime(a.now().UTC())
	if err != nil {
		return rfq.TermSheet{}, temporal.NewApplicationError(err.Error(), wf.ErrKindValidation)
	}
	sheet, err := rfq.NewTermSheet(rfq.TermSheet{
		RFQID:        in.RFQID,
		Pricing:      priced,
		DocumentHash: values.MustNonEmptyString(rfq.DocumentHash(in.RFQID, priced)),
		GeneratedAt:  now,
		ValidUntil:   now.Add(wf.TermSheetValidFor),
	})
	if err != nil {
		return rfq.TermSheet{}, temporal.NewApplicationError(err.Error(), wf.ErrKindValidation)
	}

	if err := a.sender.SendTermSheet(ctx, sheet); err != nil {
		metrics.ActivityFailures.WithLabelValues(wf.ActivityGenerateIndicative, wf.ErrKindTransientIO).Inc()
		return rfq.TermSheet{}, fmt.Errorf("send indicative: %w", err)
	}
	return sheet, nil
}

// BookTrade writes the accepted trade to the ledger. Conflicts are raised as
// IllegalTransitionError so the policy does not retry a booking the ledger
// has already refused.
func (a *Activities) BookTrade(ctx context.Context, in rfq.Input, prod product.Product, priced rfq.PricingResult) (rfq.BookingOutput, error) {
	defer observe(wf.ActivityBookTrade, a.now())

	booked, err := a.ledger.BookTrade(ctx, in, prod, priced)
	if err != nil {
		var conflict *booking.ConflictError
		if errors.As(err, &conflict) {
			metrics.ActivityFailures.WithLabelValues(wf.ActivityBookTrade, wf.ErrKindIllegalTransition).Inc()
			return rfq.BookingOutput{}, temporal.NewApplicationError(err.Error(), wf.ErrKindIllegalTransition)
		}
		metrics.ActivityFailures.WithLabelValues(wf.ActivityBookTrade, wf.ErrKindTransientIO).Inc()
		return rfq.BookingOutput{}, fmt.Errorf("book trade: %w", err)
	}

	metrics.TradesBooked.Inc()
	return rfq.NewBookingSuccess(booked), nil
}

// SendConfirmation archives the accepted term sheet and delivers the trade
// confirmation. Archiving trouble is logged, never fatal; delivery errors go
// back to the retry policy.
func (a *Activities) SendConfirmation(ctx context.Context, in rfq.Input, booked rfq.Booking, sheet rfq.TermSheet) (rfq.ConfirmationOutput, error) {
	defer observe(wf.ActivitySendConfirmation, a.now())

	if a.archive != nil {
		if err := a.archive.ArchiveTermSheet(ctx, sheet); err != nil {
			a.log.Error().Err(err).
				Str("rfq_id", in.RFQID.String()).
				Str("trade_id", booked.TradeID.String()).
				Msg("term sheet archive failed")
		}
	}

	if err := a.sender.SendConfirmation(ctx, booked, sheet); err != nil {
		metrics.ActivityFailures.WithLabelValues(wf.ActivitySendConfirmation, wf.ErrKindTransientIO).Inc()
		return rfq.ConfirmationOutput{}, fmt.Errorf("send confirmation: %w", err)
	}

	deliveredAt, err := values.NewUTCTime(a.now().UTC())
	if err != nil {
		return rfq.ConfirmationOutput{}, temporal.NewApplicationError(err.Error(), wf.ErrKindValidation)
	}
	return rfq.ConfirmationOutput{
		TradeID:     booked.TradeID,
		Delivered:   true,
		DeliveredAt: deliveredAt,
	}, nil
}

// heartbeat keeps the pricing activity alive against its 30s heartbeat
// timeout while the model runs. The returned stop function is safe to call
// once.
func heartbeat(ctx context.Context) func() {
	if !activity.IsActivity(ctx) {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				activity.RecordHeartbeat(ctx)
			}
		}
	}()
	return func() { close(done) }
}

func observe(name string, start time.Time) {
	metrics.ActivityDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}
