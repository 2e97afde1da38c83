//go:build linux && cgo

package resolver

/*
#cgo CFLAGS: -D_GNU_SOURCE
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>

// Both helpers clear any stale dlerror before the lookup so a NULL result
// can be paired with the error text that belongs to it.
static void *shim_dlvsym_next(const char *sym, const char *ver) {
    (void)dlerror();
    return dlvsym(RTLD_NEXT, sym, ver);
}

static void *shim_dlsym_next(const char *sym) {
    (void)dlerror();
    return dlsym(RTLD_NEXT, sym);
}

static void shim_call_void(void *fn) {
    ((void (*)(void))fn)();
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// PreloadLoader resolves symbols with RTLD_NEXT, starting the search after
// the shim's own module. That is the only handle that can never find the
// shim's export and loop back into it.
type PreloadLoader struct{}

// NewPreloadLoader creates the loader used inside a preloaded process.
func NewPreloadLoader() *PreloadLoader {
	return &PreloadLoader{}
}

func (*PreloadLoader) LookupVersioned(symbol, version string) (Func, error) {
	csym := C.CString(symbol)
	defer C.free(unsafe.Pointer(csym))
	cver := C.CString(version)
	defer C.free(unsafe.Pointer(cver))

	p := C.shim_dlvsym_next(csym, cver)
	if p == nil {
		return nil, fmt.Errorf("dlvsym %s@%s: %s", symbol, version, dlerrorText())
	}
	return wrapVoidFunc(p), nil
}

func (*PreloadLoader) Lookup(symbol string) (Func, error) {
	csym := C.CString(symbol)
	defer C.free(unsafe.Pointer(csym))

	p := C.shim_dlsym_next(csym)
	if p == nil {
		return nil, fmt.Errorf("dlsym %s: %s", symbol, dlerrorText())
	}
	return wrapVoidFunc(p), nil
}

// wrapVoidFunc turns a dlsym result into a callable. The pointer targets
// mapped library text, so holding it in a closure is safe.
func wrapVoidFunc(p unsafe.Pointer) Func {
	return func() { C.shim_call_void(p) }
}

func dlerrorText() string {
	if msg := C.dlerror(); msg != nil {
		return C.GoString(msg)
	}
	return "symbol not found"
}
