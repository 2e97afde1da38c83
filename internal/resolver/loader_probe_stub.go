//go:build !linux || !(amd64 || arm64)

package resolver

// ProbeLoader is unavailable here; the preload build still resolves through
// the linker on every architecture the shim compiles for.
type ProbeLoader struct{}

// NewProbeLoader reports that probing is unsupported on this platform.
func NewProbeLoader() (*ProbeLoader, error) {
	return nil, ErrProbeUnsupported
}

func (*ProbeLoader) LookupVersioned(symbol, version string) (Func, error) {
	return nil, ErrProbeUnsupported
}

func (*ProbeLoader) Lookup(symbol string) (Func, error) {
	return nil, ErrProbeUnsupported
}
