package config

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdlshim/sdlshim/internal/diaglog"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestLocatorPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		env        map[string]string
		wantPath   string
		wantSource Source
		wantOK     bool
	}{
		{
			name:       "explicit path wins over everything",
			path:       "/tmp/pinned.conf",
			env:        map[string]string{EnvBanlist: "/elsewhere", "XDG_CONFIG_HOME": "/xdg", "HOME": "/home/u"},
			wantPath:   "/tmp/pinned.conf",
			wantSource: SourceOverride,
			wantOK:     true,
		},
		{
			name:       "env override beats xdg and home",
			env:        map[string]string{EnvBanlist: "/custom/list.conf", "XDG_CONFIG_HOME": "/xdg", "HOME": "/home/u"},
			wantPath:   "/custom/list.conf",
			wantSource: SourceEnv,
			wantOK:     true,
		},
		{
			name:       "xdg beats home",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg", "HOME": "/home/u"},
			wantPath:   filepath.Join("/xdg", AppDirName, BanlistFileName),
			wantSource: SourceXDG,
			wantOK:     true,
		},
		{
			name:       "home fallback",
			env:        map[string]string{"HOME": "/home/u"},
			wantPath:   filepath.Join("/home/u", ".config", AppDirName, BanlistFileName),
			wantSource: SourceHome,
			wantOK:     true,
		},
		{
			name:       "nothing set",
			env:        map[string]string{},
			wantPath:   "",
			wantSource: SourceNone,
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := NewLocator(LocatorConfig{Path: tt.path, Getenv: envMap(tt.env)})
			res := loc.Resolve()
			assert.Equal(t, tt.wantPath, res.Path)
			assert.Equal(t, tt.wantSource, res.Source)
			assert.Equal(t, tt.wantOK, res.OK)

			path, ok := loc.BanlistPath()
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestLocatorCachesFirstAnswer(t *testing.T) {
	env := map[string]string{"HOME": "/home/first"}
	loc := NewLocator(LocatorConfig{Getenv: envMap(env)})

	first, ok := loc.BanlistPath()
	require.True(t, ok)

	env["HOME"] = "/home/second"
	env["XDG_CONFIG_HOME"] = "/xdg"
	second, ok := loc.BanlistPath()
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestLocatorMissingHomeLogsOnce(t *testing.T) {
	buf := new(bytes.Buffer)
	log := diaglog.New(diaglog.Config{Output: buf, Arch: "amd64", Exe: func() string { return "test" }})
	loc := NewLocator(LocatorConfig{Getenv: envMap(nil), Log: log})

	for i := 0; i < 3; i++ {
		_, ok := loc.BanlistPath()
		assert.False(t, ok)
	}

	assert.Equal(t, "[amd64] test: Error: could not find $HOME!\n", buf.String())
}

func TestSettingsFrom(t *testing.T) {
	s := SettingsFrom(envMap(map[string]string{
		EnvLog:      "debug",
		EnvAuditLog: "/var/log/shim.jsonl",
		EnvMetrics:  "/run/shim.prom",
	}))
	assert.Equal(t, diaglog.LevelDebug, s.LogLevel)
	assert.Equal(t, "/var/log/shim.jsonl", s.AuditPath)
	assert.Equal(t, "/run/shim.prom", s.MetricsPath)

	empty := SettingsFrom(envMap(nil))
	assert.Equal(t, diaglog.LevelInfo, empty.LogLevel)
	assert.Empty(t, empty.AuditPath)
	assert.Empty(t, empty.MetricsPath)
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv(EnvLog, "quiet")
	t.Setenv(EnvAuditLog, "")
	t.Setenv(EnvMetrics, "")

	s := SettingsFromEnv()
	assert.Equal(t, diaglog.LevelQuiet, s.LogLevel)
}
