//go:build !linux || !cgo

package shim

import "github.com/sdlshim/sdlshim/internal/resolver"

// platformLoader returns nil where no next-module lookup exists; the
// resolver then reports every call as unresolvable instead of guessing.
func platformLoader() resolver.Loader {
	return nil
}
