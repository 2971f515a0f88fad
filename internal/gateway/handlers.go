package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/openderiv/rfqdesk/internal/metrics"
	"github.com/openderiv/rfqdesk/internal/rfq"
	"github.com/openderiv/rfqdesk/internal/values"
	wf "github.com/openderiv/rfqdesk/internal/workflow"
)

// handleHealth handles liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "rfqdesk-gateway",
	})
}

// handleSubmit starts the RFQ workflow. The rfq id is the workflow id, so a
// client retrying a submission lands on the run already in flight instead of
// opening a second negotiation.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	in, err := req.toInput(time.Now())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := s.temporal.ExecuteWorkflow(r.Context(), client.StartWorkflowOptions{
		ID:                    in.RFQID.String(),
		TaskQueue:             wf.TaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}, wf.TypeName, in)
	if err != nil {
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &started) {
			s.writeJSON(w, http.StatusOK, map[string]interface{}{
				"rfq_id": in.RFQID.String(),
				"status": "already_submitted",
			})
			return
		}
		s.log.Error().Err(err).Str("rfq_id", in.RFQID.String()).Msg("workflow start failed")
		s.writeError(w, http.StatusBadGateway, "could not start RFQ workflow")
		return
	}

	metrics.RFQSubmitted.Inc()
	s.log.Info().
		Str("rfq_id", in.RFQID.String()).
		Str("run_id", run.GetRunID()).
		Str("instrument", string(in.Detail.Kind())).
		Msg("RFQ submitted")

	s.writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"rfq_id": in.RFQID.String(),
		"run_id": run.GetRunID(),
		"status": "submitted",
	})
}

// handleRespond delivers the client's decision to the running negotiation.
func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	rfqID := chi.URLParam(r, "rfqID")

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	id, err := values.NewNonEmptyString(rfqID)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ts, err := values.NewUTCTime(time.Now())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp, err := rfq.NewClientResponse(rfq.ClientResponse{
		RFQID:         id,
		Action:        rfq.Action(req.Action),
		Timestamp:     ts,
		TermSheetHash: req.TermSheetHash,
		Message:       req.Message,
	})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.temporal.SignalWorkflow(r.Context(), rfqID, "", wf.SignalClientResponds, resp); err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			s.writeError(w, http.StatusNotFound, "no such RFQ")
			return
		}
		s.log.Error().Err(err).Str("rfq_id", rfqID).Msg("signal failed")
		s.writeError(w, http.StatusBadGateway, "could not deliver response")
		return
	}

	s.log.Info().Str("rfq_id", rfqID).Str("action", req.Action).Msg("client response delivered")
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"rfq_id": rfqID,
		"action": req.Action,
	})
}

// handleStatus returns the workflow's current lifecycle status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	rfqID := chi.URLParam(r, "rfqID")

	val, err := s.temporal.QueryWorkflow(r.Context(), rfqID, "", wf.QueryGetStatus)
	if err != nil {
		s.queryError(w, rfqID, err)
		return
	}
	var status string
	if err := val.Get(&status); err != nil {
		s.log.Error().Err(err).Str("rfq_id", rfqID).Msg("status decode failed")
		s.writeError(w, http.StatusInternalServerError, "could not decode status")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"rfq_id": rfqID,
		"status": status,
	})
}

// handlePricing returns the latest indicative pricing, if any has been
// produced yet.
func (s *Server) handlePricing(w http.ResponseWriter, r *http.Request) {
	rfqID := chi.URLParam(r, "rfqID")

	val, err := s.temporal.QueryWorkflow(r.Context(), rfqID, "", wf.QueryGetCurrentPricing)
	if err != nil {
		s.queryError(w, rfqID, err)
		return
	}
	var pricing *rfq.PricingResult
	if err := val.Get(&pricing); err != nil {
		s.log.Error().Err(err).Str("rfq_id", rfqID).Msg("pricing decode failed")
		s.writeError(w, http.StatusInternalServerError, "could not decode pricing")
		return
	}
	if pricing == nil {
		s.writeError(w, http.StatusNotFound, "no pricing available yet")
		return
	}

	greeks := make(map[string]string, len(pricing.Greeks))
	for _, g := range pricing.Greeks {
		greeks[g.Name] = g.Value.String()
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"rfq_id":         rfqID,
		"price":          pricing.IndicativePrice.Amount().String(),
		"currency":       pricing.IndicativePrice.Currency().String(),
		"greeks":         greeks,
		"model":          pricing.ModelName.String(),
		"snapshot_id":    pricing.SnapshotID.String(),
		"confidence":     pricing.Confidence,
		"attestation_id": pricing.AttestationID.String(),
		"timestamp":      pricing.Timestamp.String(),
	})
}

// handleResult blocks until the workflow completes and returns the terminal
// result. Long-poll by design; the write timeout bounds the wait.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	rfqID := chi.URLParam(r, "rfqID")

	var result rfq.Result
	if err := s.temporal.GetWorkflow(r.Context(), rfqID, "").Get(r.Context(), &result); err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			s.writeError(w, http.StatusNotFound, "no such RFQ")
			return
		}
		s.log.Error().Err(err).Str("rfq_id", rfqID).Msg("result fetch failed")
		s.writeError(w, http.StatusBadGateway, "could not fetch result")
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) queryError(w http.ResponseWriter, rfqID string, err error) {
	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		s.writeError(w, http.StatusNotFound, "no such RFQ")
		return
	}
	s.log.Error().Err(err).Str("rfq_id", rfqID).Msg("query failed")
	s.writeError(w, http.StatusBadGateway, "could not query RFQ")
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]interface{}{"error": msg})
}
