// Package mapping turns an RFQ into a CDM-flavoured product record. Mapping
// is registry-driven: ordered (qualifier, mapper) pairs are resolved
// first-match, so the worker decides at startup which product shapes it
// supports without the workflow knowing the set.
package mapping

import (
	"errors"
	"fmt"
	"sync"

	"github.com/openderiv/rfqdesk/internal/instrument"
	"github.com/openderiv/rfqdesk/internal/product"
	"github.com/openderiv/rfqdesk/internal/rfq"
)

// ErrNoMapper means no registered qualifier matched the instrument.
var ErrNoMapper = errors.New("mapping: no mapper for instrument")

// Qualifier reports whether a mapper handles the given instrument variant.
type Qualifier func(d instrument.Detail) bool

// Mapper produces the product record for an RFQ it qualified for. Every
// mapped product must carry at least one payout; product validation enforces
// it.
type Mapper interface {
	Name() string
	Map(in rfq.Input) (product.Product, error)
}

type registration struct {
	qualifier Qualifier
	mapper    Mapper
}

// Registry holds the ordered mapper list. Resolution is first-match in
// registration order.
type Registry struct {
	mu      sync.RWMutex
	frozen  bool
	entries []registration
}

// NewRegistry creates an empty mapper registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a (qualifier, mapper) pair. Registering after Freeze
// panics.
func (r *Registry) Register(q Qualifier, m Mapper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		panic(fmt.Sprintf("mapping: register %q on frozen registry", m.Name()))
	}
	r.entries = append(r.entries, registration{qualifier: q, mapper: m})
}

// Freeze closes the registry. Idempotent; the first Resolve freezes implicitly.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Count returns the number of registered mappers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Resolve returns the first mapper whose qualifier accepts the instrument.
func (r *Registry) Resolve(d instrument.Detail) (Mapper, error) {
	r.Freeze()

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.qualifier(d) {
			return e.mapper, nil
		}
	}
	return nil, fmt.Errorf("%w: kind %s", ErrNoMapper, d.Kind())
}

// KindQualifier builds a qualifier matching exactly one instrument kind.
func KindQualifier(kind instrument.Kind) Qualifier {
	return func(d instrument.Detail) bool { return d.Kind() == kind }
}
