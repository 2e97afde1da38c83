// Package resolver locates the real SDL_DisableScreenSaver at runtime.
//
// The shim's export shadows the real symbol, so finding the original is a
// dynamic-linker walk, not a link-time reference. Resolution is two-step:
// first a version-qualified lookup against the SDL2 soname, then a plain
// lookup for builds of SDL without symbol versioning.
package resolver

import (
	"errors"
	"sync"

	"github.com/sdlshim/sdlshim/internal/diaglog"
)

// Target symbol and library version, fixed by the interposed ABI.
const (
	Symbol     = "SDL_DisableScreenSaver"
	LibVersion = "libSDL2-2.0.so.0"
)

// Func is a resolved, callable handle to the real function.
type Func func()

// Loader performs the two dynamic lookups the resolver needs. The preload
// build walks the link chain after the shim's own module; the CLI probes by
// loading the library directly; tests substitute fakes.
type Loader interface {
	// LookupVersioned resolves symbol at an exact library version.
	LookupVersioned(symbol, version string) (Func, error)
	// Lookup resolves symbol without a version constraint.
	Lookup(symbol string) (Func, error)
}

// ErrProbeUnsupported reports that out-of-process symbol probing is not
// available for this platform and architecture.
var ErrProbeUnsupported = errors.New("resolver: symbol probing unsupported on this platform")

// Resolver caches the real function once found. Until then every Resolve
// retries both lookups: SDL may be dlopened long after the shim was
// preloaded, so failure is always temporary.
type Resolver struct {
	loader Loader
	log    *diaglog.Logger

	mu sync.Mutex
	fn Func // non-nil once resolved, never replaced
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithLogger sets the diagnostic logger.
func WithLogger(log *diaglog.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// New creates a resolver over the given loader. A nil loader is accepted
// and makes every Resolve report failure; it stands in for platforms where
// no lookup mechanism exists.
func New(loader Loader, opts ...Option) *Resolver {
	r := &Resolver{loader: loader, log: diaglog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the real function, performing the two-step lookup on
// first use. The result is cached only on success.
func (r *Resolver) Resolve() (Func, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fn != nil {
		return r.fn, true
	}
	if r.loader == nil {
		return nil, false
	}

	fn, err := r.loader.LookupVersioned(Symbol, LibVersion)
	if err != nil {
		r.log.Debugf("versioned lookup of %s failed: %v", Symbol, err)
		fn, err = r.loader.Lookup(Symbol)
	}
	if err != nil || fn == nil {
		if err != nil {
			r.log.Debugf("lookup of %s failed: %v", Symbol, err)
		}
		return nil, false
	}

	r.fn = fn
	r.log.Infof("Successfully linked SDL_DisableScreenSaver().")
	return r.fn, true
}

// Resolved reports whether a previous Resolve succeeded, without
// triggering a lookup.
func (r *Resolver) Resolved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fn != nil
}
