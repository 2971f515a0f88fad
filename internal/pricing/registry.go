// Package pricing resolves an instrument to a pricer and produces indicative
// prices with greeks and a pricing attestation. Pricers are registered as
// ordered (qualifier, pricer) pairs; resolution is first-match, so more
// specific models can shadow general ones by registering earlier.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/openderiv/rfqdesk/internal/instrument"
	"github.com/openderiv/rfqdesk/internal/product"
	"github.com/openderiv/rfqdesk/internal/rfq"
)

// ErrNoPricer means no registered qualifier matched the instrument.
var ErrNoPricer = errors.New("pricing: no pricer for instrument")

// Qualifier reports whether a pricer handles the given instrument variant.
type Qualifier func(d instrument.Detail) bool

// Pricer computes an indicative price for an RFQ it qualified for.
type Pricer interface {
	Name() string
	Price(ctx context.Context, in rfq.Input, p product.Product) (rfq.PricingResult, error)
}

type registration struct {
	qualifier Qualifier
	pricer    Pricer
}

// Registry holds the ordered pricer list.
type Registry struct {
	mu      sync.RWMutex
	frozen  bool
	entries []registration
}

// NewRegistry creates an empty pricer registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a (qualifier, pricer) pair. Registering after Freeze
// panics.
func (r *Registry) Register(q Qualifier, p Pricer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		panic(fmt.Sprintf("pricing: register %q on frozen registry", p.Name()))
	}
	r.entries = append(r.entries, registration{qualifier: q, pricer: p})
}

// Freeze closes the registry. Idempotent; the first Resolve freezes implicitly.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Count returns the number of registered pricers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Resolve returns the first pricer whose qualifier accepts the instrument.
func (r *Registry) Resolve(d instrument.Detail) (Pricer, error) {
	r.Freeze()

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.qualifier(d) {
			return e.pricer, nil
		}
	}
	return nil, fmt.Errorf("%w: kind %s", ErrNoPricer, d.Kind())
}

// KindsQualifier builds a qualifier matching any of the given kinds.
func KindsQualifier(kinds ...instrument.Kind) Qualifier {
	set := make(map[instrument.Kind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return func(d instrument.Detail) bool { return set[d.Kind()] }
}
