// Package doctor inspects whether this machine can actually run the shim:
// a usable config base, a readable ban list, and an SDL2 the resolver
// would find. The CLI surfaces the report; nothing here runs inside a
// preloaded process.
package doctor

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/sdlshim/sdlshim/internal/banlist"
	"github.com/sdlshim/sdlshim/internal/config"
	"github.com/sdlshim/sdlshim/internal/pattern"
	"github.com/sdlshim/sdlshim/internal/resolver"
)

// Check statuses.
const (
	StatusOK   = "ok"
	StatusWarn = "warn"
	StatusFail = "fail"
	StatusSkip = "skip"
)

// Check is one probed aspect of the host.
type Check struct {
	Name   string `json:"name" yaml:"name"`
	Status string `json:"status" yaml:"status"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Options configures a doctor run. A nil Loader selects the platform probe
// loader; tests inject fakes.
type Options struct {
	Locator *config.Locator
	Loader  resolver.Loader
}

// Run probes the host and assembles a report.
func Run(opts Options) *Report {
	r := &Report{
		Platform: runtime.GOOS,
		Arch:     runtime.GOARCH,
	}

	locator := opts.Locator
	if locator == nil {
		locator = config.NewLocator(config.LocatorConfig{})
	}

	res := locator.Resolve()
	r.ConfigPath = res.Path
	r.ConfigSource = string(res.Source)
	if !res.OK {
		r.add("config-base", StatusFail, "no usable config base: set HOME or XDG_CONFIG_HOME")
	} else {
		r.add("config-base", StatusOK, fmt.Sprintf("%s (from %s)", res.Path, res.Source))
		r.checkBanlist(locator, res.Path)
	}

	r.checkSymbol(opts.Loader)
	r.checkPreload()

	r.Healthy = true
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			r.Healthy = false
			break
		}
	}
	return r
}

func (r *Report) checkBanlist(locator *config.Locator, path string) {
	st, err := os.Stat(path)
	switch {
	case err != nil && os.IsNotExist(err):
		r.add("banlist-file", StatusWarn, "not found; every executable is allowed")
		return
	case err != nil:
		r.add("banlist-file", StatusFail, err.Error())
		return
	case st.IsDir():
		r.add("banlist-file", StatusFail, "path is a directory")
		return
	}

	list := banlist.New(locator)
	list.Refresh()
	entries := list.Patterns()
	r.add("banlist-file", StatusOK, fmt.Sprintf("%d entries, modified %s", len(entries), st.ModTime().UTC().Format("2006-01-02 15:04:05")))

	var malformed []string
	for _, e := range entries {
		if pattern.Check(e) != nil {
			malformed = append(malformed, e)
		}
	}
	if len(malformed) > 0 {
		r.add("banlist-syntax", StatusWarn, fmt.Sprintf("%d entries with broken glob syntax match literally: %v", len(malformed), malformed))
	} else {
		r.add("banlist-syntax", StatusOK, "all entries compile")
	}
}

func (r *Report) checkSymbol(loader resolver.Loader) {
	if loader == nil {
		probe, err := resolver.NewProbeLoader()
		if err != nil {
			if errors.Is(err, resolver.ErrProbeUnsupported) {
				r.add("sdl-symbol", StatusSkip, "probing unsupported on this platform")
				return
			}
			r.add("sdl-symbol", StatusFail, err.Error())
			return
		}
		loader = probe
	}

	if _, err := loader.LookupVersioned(resolver.Symbol, resolver.LibVersion); err == nil {
		r.add("sdl-symbol", StatusOK, fmt.Sprintf("%s found in %s", resolver.Symbol, resolver.LibVersion))
		return
	}
	if _, err := loader.Lookup(resolver.Symbol); err == nil {
		r.add("sdl-symbol", StatusWarn, fmt.Sprintf("%s found only without version information", resolver.Symbol))
		return
	}
	r.add("sdl-symbol", StatusFail, fmt.Sprintf("%s not found; is SDL2 installed?", resolver.LibVersion))
}

func (r *Report) checkPreload() {
	if runtime.GOOS == "linux" {
		r.add("preload-target", StatusOK, "LD_PRELOAD interposition is available")
		return
	}
	r.add("preload-target", StatusFail, fmt.Sprintf("the preload library targets linux, not %s", runtime.GOOS))
}
