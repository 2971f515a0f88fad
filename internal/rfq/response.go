package rfq

import (
	"fmt"

	"github.com/openderiv/rfqdesk/internal/values"
)

// Action is the client's decision on an indicative quote.
type Action string

const (
	ActionAccept  Action = "ACCEPT"
	ActionReject  Action = "REJECT"
	ActionRefresh Action = "REFRESH"
)

func (a Action) Valid() bool {
	return a == ActionAccept || a == ActionReject || a == ActionRefresh
}

// ClientResponse is the payload of the client_responds signal. An ACCEPT
// must carry the document hash of the term sheet being accepted; REJECT and
// REFRESH need no hash.
type ClientResponse struct {
	RFQID         values.NonEmptyString `json:"rfq_id"`
	Action        Action                `json:"action"`
	Timestamp     values.UTCTime        `json:"timestamp"`
	TermSheetHash string                `json:"term_sheet_hash,omitempty"`
	Message       string                `json:"message,omitempty"`
}

// NewClientResponse validates and returns the response record.
func NewClientResponse(r ClientResponse) (ClientResponse, error) {
	if err := r.Validate(); err != nil {
		return ClientResponse{}, err
	}
	return r, nil
}

func (r ClientResponse) Validate() error {
	if r.RFQID.IsZero() {
		return fmt.Errorf("rfq: invalid ClientResponse: rfq id is required")
	}
	if !r.Action.Valid() {
		return fmt.Errorf("rfq: invalid ClientResponse %s: action %q", r.RFQID, r.Action)
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("rfq: invalid ClientResponse %s: timestamp is required", r.RFQID)
	}
	if r.Action == ActionAccept && r.TermSheetHash == "" {
		return fmt.Errorf("rfq: invalid ClientResponse %s: ACCEPT requires a term sheet hash", r.RFQID)
	}
	return nil
}
