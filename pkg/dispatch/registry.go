// Package dispatch maps remote class chains to the Go variants that
// specialize them.
package dispatch

import (
	"sync"

	"github.com/aretw0/qpilot/pkg/domain"
)

// Builder constructs a variant from a descriptor.
type Builder[T any] func(d domain.Descriptor) (T, error)

// entry pairs a builder with the name of the variant it produces.
type entry[T any] struct {
	variant string
	build   Builder[T]
}

// Registry manages the class bindings for one family of variants. It is
// populated while a client initializes and read-only afterwards.
type Registry[T any] struct {
	mu      sync.RWMutex
	classes map[string]entry[T]
}

// New creates a new empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		classes: make(map[string]entry[T]),
	}
}

// Register binds a remote class name to a variant builder.
// If the class is already bound, the binding is overwritten.
func (r *Registry[T]) Register(class, variant string, build Builder[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[class] = entry[T]{variant: variant, build: build}
}

// Resolve walks the descriptor's class chain, most derived class first, and
// builds the first registered specialization it finds. Descriptors with no
// chain, or whose chain hits no registration, are built by the fallback.
//
// The requested name is the variant the caller is already constructing.
// When the walk's first registered class is bound to that same variant, the
// walk breaks to the fallback instead of rebuilding it; builders may
// therefore re-enter Resolve and still terminate. Resolution is
// deterministic: the same chain against the same registry always yields the
// same variant.
func (r *Registry[T]) Resolve(d domain.Descriptor, requested string, fallback Builder[T]) (T, error) {
	if e, ok := r.match(d.Classes(), requested); ok {
		return e.build(d)
	}
	return fallback(d)
}

// match scans the chain for the first registered class and reports whether
// its builder should run. The lock is released before any builder is
// invoked.
func (r *Registry[T]) match(chain []string, requested string) (entry[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, class := range chain {
		e, ok := r.classes[class]
		if !ok {
			continue
		}
		if e.variant == requested {
			break
		}
		return e, true
	}
	return entry[T]{}, false
}
