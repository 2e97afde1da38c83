//go:build linux && cgo

package shim

import "github.com/sdlshim/sdlshim/internal/resolver"

// platformLoader returns the RTLD_NEXT loader the preload build uses.
func platformLoader() resolver.Loader {
	return resolver.NewPreloadLoader()
}
