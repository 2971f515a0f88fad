// Package compliance runs the pre-trade check battery. Checks are registered
// once at worker startup in the order they should execute and the registry is
// frozen before the first activity call; the workflow never touches the
// registry, the check activity does.
package compliance

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/openderiv/rfqdesk/internal/product"
	"github.com/openderiv/rfqdesk/internal/rfq"
)

// Check is one pre-trade rule. Run returns nil on pass and a descriptive
// reason error on failure. Checks must be side-effect free.
type Check interface {
	Name() string
	Run(ctx context.Context, in rfq.Input, p product.Product) error
}

// Registry holds the ordered check battery. Registration order defines
// execution and reporting order.
type Registry struct {
	mu     sync.RWMutex
	frozen bool
	checks []Check
	names  map[string]bool
}

// NewRegistry creates an empty check registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]bool)}
}

// Register appends a check. Registering after Freeze or registering a
// duplicate name is a programmer error and panics.
func (r *Registry) Register(c Check) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		panic(fmt.Sprintf("compliance: register %q on frozen registry", c.Name()))
	}
	if r.names[c.Name()] {
		panic(fmt.Sprintf("compliance: duplicate check %q", c.Name()))
	}
	r.names[c.Name()] = true
	r.checks = append(r.checks, c)
}

// Freeze closes the registry. Idempotent; the first RunAll freezes implicitly.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Names returns the check names in execution order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.checks))
	for i, c := range r.checks {
		out[i] = c.Name()
	}
	return out
}

// Count returns the number of registered checks.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.checks)
}

// RunAll executes every check in registration order and aggregates the
// failure reasons. All checks run even after a failure so the client sees the
// complete picture.
func (r *Registry) RunAll(ctx context.Context, in rfq.Input, p product.Product, log zerolog.Logger) []string {
	r.Freeze()

	r.mu.RLock()
	checks := r.checks
	r.mu.RUnlock()

	var reasons []string
	for _, c := range checks {
		if err := c.Run(ctx, in, p); err != nil {
			log.Warn().
				Str("rfq_id", in.RFQID.String()).
				Str("check", c.Name()).
				Str("reason", err.Error()).
				Msg("Pre-trade check failed")
			reasons = append(reasons, err.Error())
			continue
		}
		log.Debug().
			Str("rfq_id", in.RFQID.String()).
			Str("check", c.Name()).
			Msg("Pre-trade check passed")
	}
	return reasons
}
