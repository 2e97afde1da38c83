package config

import (
	"os"

	"github.com/sdlshim/sdlshim/internal/diaglog"
)

func osGetenv(key string) string { return os.Getenv(key) }

// Settings holds the environment knobs read once when a shim instance is
// built. Paths left empty disable the corresponding sink.
type Settings struct {
	LogLevel    diaglog.Level
	AuditPath   string
	MetricsPath string
}

// SettingsFromEnv reads Settings from the process environment.
func SettingsFromEnv() Settings {
	return SettingsFrom(osGetenv)
}

// SettingsFrom reads Settings through the given lookup.
func SettingsFrom(getenv func(string) string) Settings {
	return Settings{
		LogLevel:    diaglog.ParseLevel(getenv(EnvLog)),
		AuditPath:   getenv(EnvAuditLog),
		MetricsPath: getenv(EnvMetrics),
	}
}
