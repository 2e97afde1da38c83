package shim

import (
	"sync"

	"github.com/sdlshim/sdlshim/internal/audit"
	"github.com/sdlshim/sdlshim/internal/banlist"
	"github.com/sdlshim/sdlshim/internal/config"
	"github.com/sdlshim/sdlshim/internal/diaglog"
	"github.com/sdlshim/sdlshim/internal/identity"
	"github.com/sdlshim/sdlshim/internal/metrics"
	"github.com/sdlshim/sdlshim/internal/policy"
	"github.com/sdlshim/sdlshim/internal/resolver"
)

var (
	defaultOnce sync.Once
	defaultShim *Shim
)

// Default returns the process-wide shim, built from the environment on
// first use. The exported C symbol has no way to carry a receiver, so this
// is the one place a package-level instance exists.
func Default() *Shim {
	defaultOnce.Do(func() {
		defaultShim = FromEnv()
	})
	return defaultShim
}

// FromEnv assembles a shim from the process environment and the platform
// loader. Construction must never fail: a broken sink or missing config
// degrades that concern, not the interception.
func FromEnv() *Shim {
	settings := config.SettingsFromEnv()

	id := identity.NewCache()
	log := diaglog.New(diaglog.Config{
		Exe:      id.Current,
		MinLevel: settings.LogLevel,
	})

	var coll *metrics.Collector
	if settings.MetricsPath != "" {
		coll = metrics.New()
	}

	locator := config.NewLocator(config.LocatorConfig{Log: log})
	list := banlist.New(locator, banlist.WithLogger(log), banlist.WithMetrics(coll))
	engine := policy.NewEngine(id, list)
	res := resolver.New(platformLoader(), resolver.WithLogger(log))

	var sink audit.Sink
	if settings.AuditPath != "" {
		s, err := audit.NewJSONL(settings.AuditPath, 0, 0)
		if err != nil {
			log.Debugf("audit log disabled: %v", err)
		} else {
			sink = s
		}
	}

	return New(Options{
		Engine:      engine,
		Resolver:    res,
		Log:         log,
		Metrics:     coll,
		Sink:        sink,
		MetricsPath: settings.MetricsPath,
	})
}
