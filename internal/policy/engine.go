// Package policy decides whether the intercepted call should be swallowed
// for the current process.
package policy

import (
	"path/filepath"

	"github.com/sdlshim/sdlshim/internal/banlist"
	"github.com/sdlshim/sdlshim/internal/identity"
)

// Decision is the outcome of one policy evaluation.
type Decision struct {
	Suppress bool   // swallow the call instead of forwarding it
	Exe      string // identity the decision was made for
	Pattern  string // first matching ban entry; empty when allowed
}

// Engine couples the executable identity with the ban list. Freshness
// rides on call frequency: each evaluation refreshes the list, which is a
// single stat when nothing changed, instead of the shim running a watcher
// thread inside the host process.
type Engine struct {
	identity *identity.Cache
	list     *banlist.List
}

// NewEngine creates a policy engine.
func NewEngine(id *identity.Cache, list *banlist.List) *Engine {
	return &Engine{identity: id, list: list}
}

// Evaluate resolves the identity, refreshes the ban list, and matches the
// identity against it. The identity resolves before anything can log, so
// every diagnostic line carries the right prefix.
func (e *Engine) Evaluate() Decision {
	exe := e.identity.Current()
	e.list.Refresh()
	return Decide(e.list, exe)
}

// Decide evaluates one executable against the ban list. Each entry is
// tried against the full path and against the bare program name, so
// entries can be written as either "/usr/games/dolmen" or "SteamApp*".
// It does not refresh the list; the caller owns freshness.
func Decide(list *banlist.List, exe string) Decision {
	forms := []string{exe}
	if name := filepath.Base(exe); name != exe {
		forms = append(forms, name)
	}
	if entry, ok := list.MatchesAny(forms...); ok {
		return Decision{Suppress: true, Exe: exe, Pattern: entry}
	}
	return Decision{Exe: exe}
}

// ShouldSuppress reports whether the current process's requests are banned.
func (e *Engine) ShouldSuppress() bool {
	return e.Evaluate().Suppress
}
