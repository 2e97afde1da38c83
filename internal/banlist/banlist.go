// Package banlist maintains the set of executables whose screensaver
// suppression requests are swallowed.
//
// The list lives in a plain text file, one glob per line. Instead of
// watching the file, the list re-stats it on every refresh and reloads only
// when the modification time moved; callers refresh before each policy
// decision, so edits take effect on the next intercepted call without the
// shim owning any background machinery inside the host process.
package banlist

import (
	"bufio"
	"os"
	"sync"
	"sync/atomic"

	"github.com/sdlshim/sdlshim/internal/config"
	"github.com/sdlshim/sdlshim/internal/diaglog"
	"github.com/sdlshim/sdlshim/internal/metrics"
	"github.com/sdlshim/sdlshim/internal/pattern"
)

// modToken is the change-detection token: mtime at second and nanosecond
// resolution. Tokens are compared for equality only, never interpreted as
// wall time.
type modToken struct {
	sec  int64
	nsec int64
}

// snapshot is one immutable load of the ban list file.
type snapshot struct {
	patterns *pattern.Set
	token    modToken
	loaded   bool // false until the first time a token was recorded
}

// List is the lazily refreshed ban list. Reads are lock-free against an
// atomic snapshot; Refresh serializes writers.
type List struct {
	locator *config.Locator
	log     *diaglog.Logger
	metrics *metrics.Collector

	mu       sync.Mutex
	cur      atomic.Pointer[snapshot]
	lastNote string
}

// Option customizes a List.
type Option func(*List)

// WithLogger sets the diagnostic logger.
func WithLogger(log *diaglog.Logger) Option {
	return func(l *List) { l.log = log }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(l *List) { l.metrics = m }
}

// New creates a ban list bound to the given locator. The list starts empty
// and stays empty until the first Refresh finds a readable file.
func New(locator *config.Locator, opts ...Option) *List {
	l := &List{locator: locator, log: diaglog.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	l.cur.Store(&snapshot{patterns: pattern.NewSet(nil)})
	return l
}

// Refresh reloads the ban list if the file's modification time changed.
// It never fails: every problem degrades to keeping the current snapshot
// or an empty one, and is reported on the diagnostic stream.
//
// The token is recorded the moment a change is detected, before the file
// is opened. When the open then fails, the empty result is kept and not
// retried until the file changes again.
func (l *List) Refresh() {
	l.mu.Lock()
	defer l.mu.Unlock()

	path, ok := l.locator.BanlistPath()
	if !ok {
		l.note("missing", "Can't find config file!")
		return
	}

	token, err := statToken(path)
	if err != nil {
		l.note("missing", "Can't find config file!")
		return
	}

	cur := l.cur.Load()
	if cur.loaded && cur.token == token {
		return
	}

	next := &snapshot{token: token, loaded: true}
	file, err := os.Open(path)
	if err != nil {
		l.note("unreadable", "Could not open config file!")
		next.patterns = pattern.NewSet(nil)
		l.cur.Store(next)
		return
	}
	defer file.Close()

	var entries []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		// Keep whatever was read; the next mtime change retries.
		l.log.Debugf("ban list read stopped early: %v", err)
	}

	next.patterns = pattern.NewSet(entries)
	l.cur.Store(next)
	l.lastNote = ""
	l.metrics.IncBanlistReload()
	l.metrics.SetBanlistPatterns(next.patterns.Len())
	l.log.Debugf("loaded %d ban entries from %s", next.patterns.Len(), path)
}

// note logs a refresh problem at info level on the first occurrence and at
// debug level while the condition persists. Intercepted calls arrive many
// times per second; repeating the same complaint on each one would bury
// the lines that matter.
func (l *List) note(kind, msg string) {
	if l.lastNote != kind {
		l.lastNote = kind
		l.log.Infof("%s", msg)
		return
	}
	l.log.Debugf("%s", msg)
}

// Matches reports whether the candidate matches any ban entry, returning
// the first entry that matched.
func (l *List) Matches(candidate string) (string, bool) {
	return l.cur.Load().patterns.MatchFirst(candidate)
}

// MatchesAny is Matches over several forms of one candidate. Entries keep
// file-order priority: an earlier entry matching any form beats a later
// entry matching an earlier form.
func (l *List) MatchesAny(candidates ...string) (string, bool) {
	return l.cur.Load().patterns.MatchFirstOf(candidates...)
}

// Patterns returns the entries of the active snapshot in file order.
func (l *List) Patterns() []string {
	return l.cur.Load().patterns.Strings()
}

// Len returns the entry count of the active snapshot.
func (l *List) Len() int {
	return l.cur.Load().patterns.Len()
}

// Loaded reports whether a file load was ever recorded, successful or not.
func (l *List) Loaded() bool {
	return l.cur.Load().loaded
}
