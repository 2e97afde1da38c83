//go:build linux && (amd64 || arm64)

package resolver

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// ProbeLoader resolves symbols the way an out-of-process diagnostic can:
// by loading the versioned soname directly rather than walking another
// module's link chain. The CLI uses it to report whether resolution would
// succeed on this machine; it never forwards calls into a host's SDL.
type ProbeLoader struct{}

// NewProbeLoader creates a probe loader.
func NewProbeLoader() (*ProbeLoader, error) {
	return &ProbeLoader{}, nil
}

func (*ProbeLoader) LookupVersioned(symbol, version string) (Func, error) {
	handle, err := purego.Dlopen(version, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen %s: %w", version, err)
	}
	addr, err := purego.Dlsym(handle, symbol)
	if err != nil {
		return nil, fmt.Errorf("dlsym %s in %s: %w", symbol, version, err)
	}
	return addrFunc(addr), nil
}

func (*ProbeLoader) Lookup(symbol string) (Func, error) {
	addr, err := purego.Dlsym(purego.RTLD_DEFAULT, symbol)
	if err != nil {
		return nil, fmt.Errorf("dlsym %s: %w", symbol, err)
	}
	return addrFunc(addr), nil
}

func addrFunc(addr uintptr) Func {
	return func() { purego.SyscallN(addr) }
}
