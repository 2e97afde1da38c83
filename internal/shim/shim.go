// Package shim wires policy, symbol resolution, and observability into the
// replacement body for the intercepted SDL_DisableScreenSaver.
package shim

import (
	"time"

	"github.com/sdlshim/sdlshim/internal/audit"
	"github.com/sdlshim/sdlshim/internal/diaglog"
	"github.com/sdlshim/sdlshim/internal/metrics"
	"github.com/sdlshim/sdlshim/internal/policy"
	"github.com/sdlshim/sdlshim/internal/resolver"
)

// metricsInterval caps how often a metrics snapshot is flushed to disk.
const metricsInterval = time.Second

// Shim handles intercepted calls. Every dependency is optional except the
// engine and resolver; absent sinks simply do nothing.
type Shim struct {
	engine   *policy.Engine
	resolver *resolver.Resolver
	log      *diaglog.Logger
	metrics  *metrics.Collector
	sink     audit.Sink
	arch     string

	metricsPath string
	lastFlush   int64 // unix nanos, atomically updated
}

// Options assembles a Shim. Nil fields select no-op implementations.
type Options struct {
	Engine      *policy.Engine
	Resolver    *resolver.Resolver
	Log         *diaglog.Logger
	Metrics     *metrics.Collector
	Sink        audit.Sink
	Arch        string
	MetricsPath string
}

// New creates a shim from explicit parts. The preload entry point uses
// Default instead; this constructor exists for the CLI and tests.
func New(opts Options) *Shim {
	log := opts.Log
	if log == nil {
		log = diaglog.Nop()
	}
	arch := opts.Arch
	if arch == "" {
		arch = diaglog.ArchTag()
	}
	return &Shim{
		engine:      opts.Engine,
		resolver:    opts.Resolver,
		log:         log,
		metrics:     opts.Metrics,
		sink:        opts.Sink,
		arch:        arch,
		metricsPath: opts.MetricsPath,
	}
}

// DisableScreenSaver is the replacement call body. The real function's
// contract has no failure channel, so this one must not crash or block the
// host no matter what goes wrong internally.
func (s *Shim) DisableScreenSaver() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Infof("internal error: %v", r)
		}
	}()

	s.metrics.IncCall()
	d := s.engine.Evaluate()

	if d.Suppress {
		s.log.Infof("Prevented SDL_DisableScreenSaver().")
		s.metrics.IncSuppressed(d.Pattern)
		s.record(audit.OpSuppressed, d)
		s.flushMetrics()
		return
	}

	fn, ok := s.resolver.Resolve()
	if !ok {
		s.log.Infof("Could not link SDL_DisableScreenSaver().")
		s.metrics.IncResolutionFailed()
		s.record(audit.OpResolutionFailed, d)
		s.flushMetrics()
		return
	}

	s.log.Infof("Allowing SDL_DisableScreenSaver().")
	s.metrics.IncForwarded()
	s.record(audit.OpForwarded, d)
	s.flushMetrics()
	fn()
}

func (s *Shim) record(op string, d policy.Decision) {
	if s.sink == nil {
		return
	}
	err := s.sink.Log(audit.Event{
		Arch:    s.arch,
		Exe:     d.Exe,
		Op:      op,
		Pattern: d.Pattern,
	})
	if err != nil {
		s.log.Debugf("audit write failed: %v", err)
	}
}

// Close releases the audit sink. Only tests call it; a preloaded library
// has no teardown hook and relies on append semantics instead.
func (s *Shim) Close() error {
	if s.sink == nil {
		return nil
	}
	return s.sink.Close()
}
