package booking

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/openderiv/rfqdesk/internal/product"
	"github.com/openderiv/rfqdesk/internal/rfq"
	"github.com/openderiv/rfqdesk/internal/values"
)

// ConflictError means the RFQ already has a booking with different economics:
// the trade state machine refuses the transition. Non-retryable.
type ConflictError struct {
	RFQID   string
	TradeID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking: rfq %s already booked as %s with different economics", e.RFQID, e.TradeID)
}

// Service books accepted trades. Booking is idempotent by rfq id: the same
// acceptance replayed returns the original booking; a conflicting one fails.
type Service struct {
	db      *DB
	bankLEI values.LEI
	log     zerolog.Logger
	now     func() time.Time
}

// NewService wires the ledger. bankLEI prefixes every minted UTI.
func NewService(db *DB, bankLEI values.LEI, log zerolog.Logger) *Service {
	return &Service{
		db:      db,
		bankLEI: bankLEI,
		log:     log.With().Str("component", "booking").Logger(),
		now:     time.Now,
	}
}

// BookTrade writes the trade and its attestation in one transaction. The
// trade id is derived from the rfq id, so a retried activity lands on the
// same row and reads the original booking back.
func (s *Service) BookTrade(ctx context.Context, in rfq.Input, prod product.Product, pricing rfq.PricingResult) (rfq.Booking, error) {
	tradeID := "TRADE-" + in.RFQID.String()
	uti, err := s.mintUTI(in.RFQID.String())
	if err != nil {
		return rfq.Booking{}, err
	}
	bookedAt, err := values.NewUTCTime(s.now().UTC())
	if err != nil {
		return rfq.Booking{}, fmt.Errorf("booking: timestamp: %w", err)
	}

	var stored struct {
		tradeID       string
		uti           string
		attestationID string
		bookedAt      string
	}
	err = withTransaction(ctx, s.db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO attestations (attestation_id, rfq_id, model_name, snapshot_id, price, currency, confidence, generated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(attestation_id) DO NOTHING`,
			pricing.AttestationID.String(),
			in.RFQID.String(),
			pricing.ModelName.String(),
			pricing.SnapshotID.String(),
			pricing.IndicativePrice.Amount().String(),
			pricing.IndicativePrice.Currency().String(),
			pricing.Confidence,
			pricing.Timestamp.String(),
		); err != nil {
			return fmt.Errorf("record attestation: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO trades (rfq_id, trade_id, uti, client_lei, product_id, taxonomy_code, price, currency, notional, side, attestation_id, booked_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(rfq_id) DO NOTHING`,
			in.RFQID.String(),
			tradeID,
			uti.String(),
			in.ClientLEI.String(),
			prod.ProductID.String(),
			prod.TaxonomyCode.String(),
			pricing.IndicativePrice.Amount().String(),
			pricing.IndicativePrice.Currency().String(),
			in.Notional.String(),
			string(in.Side),
			pricing.AttestationID.String(),
			bookedAt.String(),
		); err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}

		row := tx.QueryRowContext(ctx,
			`SELECT trade_id, uti, attestation_id, booked_at FROM trades WHERE rfq_id = ?`,
			in.RFQID.String())
		if err := row.Scan(&stored.tradeID, &stored.uti, &stored.attestationID, &stored.bookedAt); err != nil {
			return fmt.Errorf("read booking back: %w", err)
		}
		return nil
	})
	if err != nil {
		return rfq.Booking{}, fmt.Errorf("booking: %w", err)
	}

	if stored.attestationID != pricing.AttestationID.String() {
		s.log.Warn().
			Str("rfq_id", in.RFQID.String()).
			Str("existing_trade", stored.tradeID).
			Str("existing_attestation", stored.attestationID).
			Str("offered_attestation", pricing.AttestationID.String()).
			Msg("booking conflict: rfq already booked against a different attestation")
		return rfq.Booking{}, &ConflictError{RFQID: in.RFQID.String(), TradeID: stored.tradeID}
	}

	storedAt, err := values.ParseUTCTime(stored.bookedAt)
	if err != nil {
		return rfq.Booking{}, fmt.Errorf("booking: stored timestamp: %w", err)
	}
	booking, err := rfq.NewBooking(rfq.Booking{
		TradeID:  values.MustNonEmptyString(stored.tradeID),
		UTI:      values.MustUTI(stored.uti),
		BookedAt: storedAt,
	})
	if err != nil {
		return rfq.Booking{}, err
	}

	s.log.Info().
		Str("rfq_id", in.RFQID.String()).
		Str("trade_id", booking.TradeID.String()).
		Str("uti", booking.UTI.String()).
		Msg("trade booked")
	return booking, nil
}

// TradeExists reports whether a booking for the rfq is already on the ledger.
func (s *Service) TradeExists(ctx context.Context, rfqID values.NonEmptyString) (bool, error) {
	var n int
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT COUNT(1) FROM trades WHERE rfq_id = ?`, rfqID.String()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("booking: trade lookup: %w", err)
	}
	return n > 0, nil
}

// mintUTI builds a UTI from the bank's LEI and the rfq id: LEI prefix plus
// the alphanumeric residue of the rfq id, clamped to the 52-character limit.
func (s *Service) mintUTI(rfqID string) (values.UTI, error) {
	var b strings.Builder
	b.WriteString(s.bankLEI.String())
	for _, r := range rfqID {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	raw := b.String()
	if len(raw) > 52 {
		raw = raw[:52]
	}
	uti, err := values.NewUTI(raw)
	if err != nil {
		return values.UTI{}, fmt.Errorf("booking: mint UTI: %w", err)
	}
	return uti, nil
}

// withTransaction runs fn inside a transaction with rollback on error or
// panic.
func withTransaction(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			err = fmt.Errorf("panic in transaction: %v", p)
		} else if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rollbackErr)
			}
		} else {
			err = tx.Commit()
		}
	}()
	err = fn(tx)
	return err
}
