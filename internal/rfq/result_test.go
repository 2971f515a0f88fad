package rfq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openderiv/rfqdesk/internal/values"
)

func TestNewResult(t *testing.T) {
	rfqID := values.MustNonEmptyString("RFQ-2026-0001")

	t.Run("executed requires trade id", func(t *testing.T) {
		_, err := NewResult(Result{RFQID: rfqID, Outcome: OutcomeExecuted})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "trade id")
	})

	t.Run("trade id on non-executed outcome fails", func(t *testing.T) {
		_, err := NewResult(Result{RFQID: rfqID, Outcome: OutcomeExpired, TradeID: "TRADE-X"})
		assert.Error(t, err)
	})

	t.Run("unknown outcome fails", func(t *testing.T) {
		_, err := NewResult(Result{RFQID: rfqID, Outcome: Outcome("PENDING")})
		assert.Error(t, err)
	})

	t.Run("executed with trade id is valid", func(t *testing.T) {
		r, err := NewResult(ExecutedResult(rfqID, values.MustNonEmptyString("TRADE-RFQ-2026-0001"), "att-1"))
		require.NoError(t, err)
		assert.Equal(t, OutcomeExecuted, r.Outcome)
		assert.Equal(t, "TRADE-RFQ-2026-0001", r.TradeID)
		assert.Equal(t, "att-1", r.AttestationID)
	})
}

func TestResultConstructors(t *testing.T) {
	rfqID := values.MustNonEmptyString("RFQ-2026-0001")

	t.Run("rejected carries reasons", func(t *testing.T) {
		r := RejectedResult(rfqID, OutcomeRejectedPreTrade, []string{"Credit limit exceeded"})
		require.NoError(t, r.Validate())
		assert.Equal(t, []string{"Credit limit exceeded"}, r.RejectionReasons)
		assert.Empty(t, r.TradeID)
	})

	t.Run("rejected with no reasons keeps empty slice", func(t *testing.T) {
		r := RejectedResult(rfqID, OutcomeRejectedByClient, nil)
		require.NoError(t, r.Validate())
		assert.NotNil(t, r.RejectionReasons)
		assert.Empty(t, r.RejectionReasons)
	})

	t.Run("expired keeps attestation", func(t *testing.T) {
		r := ExpiredResult(rfqID, "Client response window elapsed", "att-9")
		require.NoError(t, r.Validate())
		assert.Equal(t, OutcomeExpired, r.Outcome)
		assert.Equal(t, "att-9", r.AttestationID)
	})

	t.Run("failed carries reason", func(t *testing.T) {
		r := FailedResult(rfqID, "Pricing failed: Calibration diverged", "")
		require.NoError(t, r.Validate())
		assert.Contains(t, r.RejectionReasons[0], "Pricing failed")
	})
}

func TestClientResponse_Validate(t *testing.T) {
	rfqID := values.MustNonEmptyString("RFQ-2026-0001")
	ts := values.MustUTCTime("2026-03-16T10:00:00Z")

	t.Run("accept requires hash", func(t *testing.T) {
		_, err := NewClientResponse(ClientResponse{RFQID: rfqID, Action: ActionAccept, Timestamp: ts})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "term sheet hash")
	})

	t.Run("accept with hash is valid", func(t *testing.T) {
		_, err := NewClientResponse(ClientResponse{
			RFQID: rfqID, Action: ActionAccept, Timestamp: ts,
			TermSheetHash: DocumentHash(rfqID, validPricing()),
		})
		assert.NoError(t, err)
	})

	t.Run("reject needs no hash", func(t *testing.T) {
		_, err := NewClientResponse(ClientResponse{
			RFQID: rfqID, Action: ActionReject, Timestamp: ts, Message: "Too wide",
		})
		assert.NoError(t, err)
	})

	t.Run("unknown action fails", func(t *testing.T) {
		_, err := NewClientResponse(ClientResponse{RFQID: rfqID, Action: Action("COUNTER"), Timestamp: ts})
		assert.Error(t, err)
	})
}
