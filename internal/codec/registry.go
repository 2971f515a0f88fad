package codec

import (
	"fmt"
	"reflect"
	"sync"
)

// EncodeFunc maps a registered value to its wire fields. Field values are
// raw domain values; the codec encodes each one recursively after the hook
// returns. Optional fields are simply omitted from the map.
type EncodeFunc func(v any) (map[string]any, error)

// DecodeFunc rebuilds a registered value from its wire fields. Field values
// arrive already decoded (tagged scalars reconstructed, nested records
// resolved to their concrete types). Implementations must validate.
type DecodeFunc func(fields map[string]any) (any, error)

type entry struct {
	name   string
	encode EncodeFunc
	decode DecodeFunc
}

// Registry is the closed allow-list of types the codec will name on the wire
// and resolve back. Registration happens at construction time; the registry
// is frozen before first use and rejects everything it was not taught.
type Registry struct {
	mu     sync.RWMutex
	frozen bool
	byName map[string]*entry
	byType map[reflect.Type]*entry
}

// NewRegistry creates an empty allow-list.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*entry),
		byType: make(map[reflect.Type]*entry),
	}
}

// Register adds a type to the allow-list. The prototype fixes the concrete
// Go type the name resolves to. Registering after Freeze, registering a
// duplicate name, or registering a duplicate type is a programmer error and
// panics.
func (r *Registry) Register(name string, prototype any, enc EncodeFunc, dec DecodeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		panic(fmt.Sprintf("codec: register %q on frozen registry", name))
	}
	if _, exists := r.byName[name]; exists {
		panic(fmt.Sprintf("codec: duplicate type name %q", name))
	}
	t := reflect.TypeOf(prototype)
	if _, exists := r.byType[t]; exists {
		panic(fmt.Sprintf("codec: duplicate type %v", t))
	}
	e := &entry{name: name, encode: enc, decode: dec}
	r.byName[name] = e
	r.byType[t] = e
}

// Freeze closes the allow-list. Idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether the allow-list is closed.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Names returns the registered wire names, for diagnostics.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}

func (r *Registry) lookupName(name string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	return e, ok
}

func (r *Registry) lookupType(t reflect.Type) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byType[t]
	return e, ok
}
