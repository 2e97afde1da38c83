package metrics

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Collector accumulates shim activity counters and renders them in the
// Prometheus text format. A preload library must never open listeners in
// the host process, so instead of serving HTTP the collector writes
// snapshots to a file that a scraper (or the CLI) reads.
//
// All methods are safe on a nil receiver so call sites can stay
// unconditional when metrics are disabled.
type Collector struct {
	startedAt time.Time

	calls            atomic.Uint64
	suppressed       atomic.Uint64
	forwarded        atomic.Uint64
	resolutionFailed atomic.Uint64
	banlistReloads   atomic.Uint64
	banlistPatterns  atomic.Int64

	byPattern sync.Map // string -> *atomic.Uint64
}

func New() *Collector {
	return &Collector{startedAt: time.Now().UTC()}
}

// IncCall counts one intercepted SDL_DisableScreenSaver call.
func (c *Collector) IncCall() {
	if c == nil {
		return
	}
	c.calls.Add(1)
}

// IncSuppressed counts one suppressed call, attributed to the ban entry
// that matched.
func (c *Collector) IncSuppressed(pattern string) {
	if c == nil {
		return
	}
	c.suppressed.Add(1)
	if pattern == "" {
		pattern = "unknown"
	}
	ptr, _ := c.byPattern.LoadOrStore(pattern, &atomic.Uint64{})
	ptr.(*atomic.Uint64).Add(1)
}

// IncForwarded counts one call passed through to the real function.
func (c *Collector) IncForwarded() {
	if c == nil {
		return
	}
	c.forwarded.Add(1)
}

// IncResolutionFailed counts one call dropped because the real function
// could not be located.
func (c *Collector) IncResolutionFailed() {
	if c == nil {
		return
	}
	c.resolutionFailed.Add(1)
}

// IncBanlistReload counts one ban list load from disk.
func (c *Collector) IncBanlistReload() {
	if c == nil {
		return
	}
	c.banlistReloads.Add(1)
}

// SetBanlistPatterns records the entry count of the active ban list.
func (c *Collector) SetBanlistPatterns(n int) {
	if c == nil {
		return
	}
	c.banlistPatterns.Store(int64(n))
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Calls            uint64            `json:"calls" yaml:"calls"`
	Suppressed       uint64            `json:"suppressed" yaml:"suppressed"`
	Forwarded        uint64            `json:"forwarded" yaml:"forwarded"`
	ResolutionFailed uint64            `json:"resolution_failed" yaml:"resolution_failed"`
	BanlistReloads   uint64            `json:"banlist_reloads" yaml:"banlist_reloads"`
	BanlistPatterns  int64             `json:"banlist_patterns" yaml:"banlist_patterns"`
	ByPattern        map[string]uint64 `json:"suppressed_by_pattern,omitempty" yaml:"suppressed_by_pattern,omitempty"`
}

// Snapshot returns a copy of the current counter values.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	s := Snapshot{
		Calls:            c.calls.Load(),
		Suppressed:       c.suppressed.Load(),
		Forwarded:        c.forwarded.Load(),
		ResolutionFailed: c.resolutionFailed.Load(),
		BanlistReloads:   c.banlistReloads.Load(),
		BanlistPatterns:  c.banlistPatterns.Load(),
	}
	c.byPattern.Range(func(k, v any) bool {
		if s.ByPattern == nil {
			s.ByPattern = make(map[string]uint64)
		}
		s.ByPattern[k.(string)] = v.(*atomic.Uint64).Load()
		return true
	})
	return s
}

// WriteText renders the Prometheus text exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	if c == nil {
		return nil
	}
	fmt.Fprint(w, "# HELP sdlshim_up Whether the shim is loaded in a process.\n")
	fmt.Fprint(w, "# TYPE sdlshim_up gauge\n")
	fmt.Fprint(w, "sdlshim_up 1\n")

	fmt.Fprint(w, "# HELP sdlshim_calls_total Intercepted SDL_DisableScreenSaver calls.\n")
	fmt.Fprint(w, "# TYPE sdlshim_calls_total counter\n")
	fmt.Fprintf(w, "sdlshim_calls_total %d\n", c.calls.Load())

	fmt.Fprint(w, "# HELP sdlshim_suppressed_total Calls swallowed because the executable is banned.\n")
	fmt.Fprint(w, "# TYPE sdlshim_suppressed_total counter\n")
	fmt.Fprintf(w, "sdlshim_suppressed_total %d\n", c.suppressed.Load())

	fmt.Fprint(w, "# HELP sdlshim_forwarded_total Calls passed through to the real function.\n")
	fmt.Fprint(w, "# TYPE sdlshim_forwarded_total counter\n")
	fmt.Fprintf(w, "sdlshim_forwarded_total %d\n", c.forwarded.Load())

	fmt.Fprint(w, "# HELP sdlshim_resolution_failed_total Calls dropped because the real function was not found.\n")
	fmt.Fprint(w, "# TYPE sdlshim_resolution_failed_total counter\n")
	fmt.Fprintf(w, "sdlshim_resolution_failed_total %d\n", c.resolutionFailed.Load())

	fmt.Fprint(w, "# HELP sdlshim_banlist_reloads_total Ban list loads from disk.\n")
	fmt.Fprint(w, "# TYPE sdlshim_banlist_reloads_total counter\n")
	fmt.Fprintf(w, "sdlshim_banlist_reloads_total %d\n", c.banlistReloads.Load())

	fmt.Fprint(w, "# HELP sdlshim_banlist_patterns Entries in the active ban list.\n")
	fmt.Fprint(w, "# TYPE sdlshim_banlist_patterns gauge\n")
	fmt.Fprintf(w, "sdlshim_banlist_patterns %d\n", c.banlistPatterns.Load())

	patterns := snapshotKeys(&c.byPattern)
	if len(patterns) > 0 {
		fmt.Fprint(w, "# HELP sdlshim_suppressed_by_pattern_total Suppressed calls by matching ban entry.\n")
		fmt.Fprint(w, "# TYPE sdlshim_suppressed_by_pattern_total counter\n")
		for _, p := range patterns {
			ptr, _ := c.byPattern.Load(p)
			n := uint64(0)
			if ptr != nil {
				n = ptr.(*atomic.Uint64).Load()
			}
			fmt.Fprintf(w, "sdlshim_suppressed_by_pattern_total{pattern=\"%s\"} %d\n", escapeLabelValue(p), n)
		}
	}
	return nil
}

// WriteFile atomically replaces path with the current snapshot. The rename
// keeps scrapers from ever seeing a half-written exposition.
func (c *Collector) WriteFile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	var buf strings.Builder
	if err := c.WriteText(&buf); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".sdlshim-metrics-*")
	if err != nil {
		return fmt.Errorf("create metrics temp file: %w", err)
	}
	if _, err := io.WriteString(tmp, buf.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write metrics: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close metrics temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish metrics: %w", err)
	}
	return nil
}

func snapshotKeys(m *sync.Map) []string {
	var out []string
	m.Range(func(k, _ any) bool {
		if s, ok := k.(string); ok {
			out = append(out, s)
		}
		return true
	})
	sort.Strings(out)
	return out
}

func escapeLabelValue(v string) string {
	// Prometheus text format label escaping for " and \ and newlines.
	v = strings.ReplaceAll(v, "\\", "\\\\")
	v = strings.ReplaceAll(v, "\n", "\\n")
	v = strings.ReplaceAll(v, "\"", "\\\"")
	return v
}
