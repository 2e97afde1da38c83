package resolver

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdlshim/sdlshim/internal/diaglog"
)

// fakeLoader scripts lookup outcomes and counts attempts.
type fakeLoader struct {
	versionedErr   error
	unversionedErr error
	called         func()

	versionedCalls   int
	unversionedCalls int
}

func (f *fakeLoader) LookupVersioned(symbol, version string) (Func, error) {
	f.versionedCalls++
	if f.versionedErr != nil {
		return nil, f.versionedErr
	}
	return func() { f.called() }, nil
}

func (f *fakeLoader) Lookup(symbol string) (Func, error) {
	f.unversionedCalls++
	if f.unversionedErr != nil {
		return nil, f.unversionedErr
	}
	return func() { f.called() }, nil
}

func TestResolveVersionedFirst(t *testing.T) {
	invoked := 0
	loader := &fakeLoader{called: func() { invoked++ }}
	r := New(loader)

	fn, ok := r.Resolve()
	require.True(t, ok)
	fn()

	assert.Equal(t, 1, invoked)
	assert.Equal(t, 1, loader.versionedCalls)
	assert.Equal(t, 0, loader.unversionedCalls, "fallback must not run when the versioned lookup works")
}

func TestResolveFallsBackToUnversioned(t *testing.T) {
	loader := &fakeLoader{
		versionedErr: errors.New("no version information"),
		called:       func() {},
	}
	r := New(loader)

	_, ok := r.Resolve()
	require.True(t, ok)
	assert.Equal(t, 1, loader.versionedCalls)
	assert.Equal(t, 1, loader.unversionedCalls)
}

func TestResolveCachesOnSuccess(t *testing.T) {
	loader := &fakeLoader{called: func() {}}
	r := New(loader)

	_, ok := r.Resolve()
	require.True(t, ok)
	_, ok = r.Resolve()
	require.True(t, ok)
	_, ok = r.Resolve()
	require.True(t, ok)

	assert.Equal(t, 1, loader.versionedCalls, "a cached handle must not trigger lookups")
	assert.True(t, r.Resolved())
}

func TestResolveRetriesAfterFailure(t *testing.T) {
	loader := &fakeLoader{
		versionedErr:   errors.New("not loaded yet"),
		unversionedErr: errors.New("not loaded yet"),
		called:         func() {},
	}
	r := New(loader)

	for i := 0; i < 3; i++ {
		_, ok := r.Resolve()
		assert.False(t, ok)
	}
	assert.Equal(t, 3, loader.versionedCalls, "failure must not be cached")
	assert.Equal(t, 3, loader.unversionedCalls)
	assert.False(t, r.Resolved())

	// The library appears; the next call binds and caches.
	loader.versionedErr = nil
	_, ok := r.Resolve()
	require.True(t, ok)
	_, ok = r.Resolve()
	require.True(t, ok)
	assert.Equal(t, 4, loader.versionedCalls)
}

func TestResolveLogsLinkOnce(t *testing.T) {
	buf := new(bytes.Buffer)
	log := diaglog.New(diaglog.Config{Output: buf, Arch: "amd64", Exe: func() string { return "t" }})
	loader := &fakeLoader{called: func() {}}
	r := New(loader, WithLogger(log))

	r.Resolve()
	r.Resolve()

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("Successfully linked SDL_DisableScreenSaver().")))
}

func TestResolveNilLoader(t *testing.T) {
	r := New(nil)
	fn, ok := r.Resolve()
	assert.False(t, ok)
	assert.Nil(t, fn)
}

func TestSymbolConstants(t *testing.T) {
	assert.Equal(t, "SDL_DisableScreenSaver", Symbol)
	assert.Equal(t, "libSDL2-2.0.so.0", LibVersion)
}
