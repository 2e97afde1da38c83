// Package config resolves where the shim's ban list lives and reads the
// environment knobs that tune a shim instance.
package config

import (
	"path/filepath"
	"sync"

	"github.com/sdlshim/sdlshim/internal/diaglog"
)

const (
	// AppDirName is the per-application directory under the user config base.
	AppDirName = "sdl_screensaver_shim"
	// BanlistFileName is the policy file inside AppDirName.
	BanlistFileName = "banlist.conf"
)

// Environment variables read by the shim.
const (
	EnvBanlist  = "SDLSHIM_BANLIST"
	EnvLog      = "SDLSHIM_LOG"
	EnvAuditLog = "SDLSHIM_AUDIT_LOG"
	EnvMetrics  = "SDLSHIM_METRICS"
)

// Source identifies which rule produced the ban list path.
type Source string

const (
	SourceOverride Source = "override"
	SourceEnv      Source = "env"
	SourceXDG      Source = "xdg"
	SourceHome     Source = "home"
	SourceNone     Source = "none"
)

// Resolution is the outcome of locating the ban list.
type Resolution struct {
	Path   string
	Source Source
	OK     bool
}

// Locator computes the ban list path once and caches it for the process
// lifetime. Later environment changes are ignored on purpose: the host
// process does not re-exec, so its config base cannot move under it.
type Locator struct {
	once   sync.Once
	res    Resolution
	path   string
	getenv func(string) string
	log    *diaglog.Logger
}

// LocatorConfig configures a Locator. Path pins the ban list to an explicit
// file, bypassing the environment entirely. A nil Getenv means os.Getenv.
type LocatorConfig struct {
	Path   string
	Getenv func(string) string
	Log    *diaglog.Logger
}

// NewLocator creates a ban list locator.
func NewLocator(cfg LocatorConfig) *Locator {
	getenv := cfg.Getenv
	if getenv == nil {
		getenv = osGetenv
	}
	log := cfg.Log
	if log == nil {
		log = diaglog.Nop()
	}
	return &Locator{path: cfg.Path, getenv: getenv, log: log}
}

// BanlistPath returns the ban list path and whether any usable config base
// exists. A false result means the shim runs with an empty ban list.
func (l *Locator) BanlistPath() (string, bool) {
	r := l.Resolve()
	return r.Path, r.OK
}

// Resolve returns the full resolution, including which rule won. The first
// call decides; every later call returns the same answer.
func (l *Locator) Resolve() Resolution {
	l.once.Do(l.compute)
	return l.res
}

func (l *Locator) compute() {
	if l.path != "" {
		l.res = Resolution{Path: l.path, Source: SourceOverride, OK: true}
		return
	}
	if p := l.getenv(EnvBanlist); p != "" {
		l.res = Resolution{Path: p, Source: SourceEnv, OK: true}
		return
	}
	if xdg := l.getenv("XDG_CONFIG_HOME"); xdg != "" {
		l.res = Resolution{
			Path:   filepath.Join(xdg, AppDirName, BanlistFileName),
			Source: SourceXDG,
			OK:     true,
		}
		return
	}
	home := l.getenv("HOME")
	if home == "" {
		l.log.Infof("Error: could not find $HOME!")
		l.res = Resolution{Source: SourceNone}
		return
	}
	l.res = Resolution{
		Path:   filepath.Join(home, ".config", AppDirName, BanlistFileName),
		Source: SourceHome,
		OK:     true,
	}
}
