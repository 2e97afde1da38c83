// Package diaglog writes the shim's diagnostic lines to stderr.
//
// The output is deliberately plain text, one line per event, in the form
//
//	[arch] /path/to/exe: message
//
// because the audience is a person watching the stderr of a game they
// launched with LD_PRELOAD, not a log pipeline. Structured sinks live in
// the audit package; this one never grows fields.
package diaglog

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
)

// Level represents the verbosity of the diagnostic stream.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelQuiet Level = "quiet"
)

// ParseLevel maps an environment value to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelQuiet:
		return LevelQuiet
	default:
		return LevelInfo
	}
}

// Logger emits prefixed diagnostic lines. The executable name is supplied
// by a callback so the prefix stays correct even though identity resolution
// happens lazily, after the logger is built.
type Logger struct {
	output   io.Writer
	mu       sync.Mutex
	arch     string
	exe      func() string
	minLevel Level
}

// Config configures a Logger. Zero values select stderr, the build
// architecture, an empty executable prefix, and info verbosity.
type Config struct {
	Output   io.Writer
	Arch     string
	Exe      func() string
	MinLevel Level
}

// New creates a diagnostic logger.
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	arch := cfg.Arch
	if arch == "" {
		arch = ArchTag()
	}
	exe := cfg.Exe
	if exe == nil {
		exe = func() string { return "" }
	}
	minLevel := cfg.MinLevel
	if minLevel == "" {
		minLevel = LevelInfo
	}
	return &Logger{
		output:   output,
		arch:     arch,
		exe:      exe,
		minLevel: minLevel,
	}
}

// Nop returns a logger that discards everything. Components accept it in
// place of a nil check.
func Nop() *Logger {
	return New(Config{Output: io.Discard, MinLevel: LevelQuiet})
}

// ArchTag returns the architecture label used in the line prefix. The 32-bit
// x86 tag follows the dpkg name rather than Go's, matching the label users
// already grep for.
func ArchTag() string {
	if runtime.GOARCH == "386" {
		return "i386"
	}
	return runtime.GOARCH
}

func (l *Logger) shouldLog(level Level) bool {
	levels := map[Level]int{
		LevelDebug: 0,
		LevelInfo:  1,
		LevelQuiet: 2,
	}
	return levels[level] >= levels[l.minLevel]
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if l == nil || !l.shouldLog(level) {
		return
	}
	line := fmt.Sprintf("[%s] %s: %s\n", l.arch, l.exe(), fmt.Sprintf(format, args...))
	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.output, line)
}

// Infof logs an operator-facing line.
func (l *Logger) Infof(format string, args ...any) {
	l.logf(LevelInfo, format, args...)
}

// Debugf logs a line only shown at debug verbosity.
func (l *Logger) Debugf(format string, args ...any) {
	l.logf(LevelDebug, format, args...)
}
