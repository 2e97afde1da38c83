package diaglog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{" quiet ", LevelQuiet},
		{"info", LevelInfo},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLoggerPrefix(t *testing.T) {
	buf := new(bytes.Buffer)
	log := New(Config{
		Output: buf,
		Arch:   "amd64",
		Exe:    func() string { return "/usr/bin/game" },
	})

	log.Infof("Allowing SDL_DisableScreenSaver().")

	assert.Equal(t, "[amd64] /usr/bin/game: Allowing SDL_DisableScreenSaver().\n", buf.String())
}

func TestLoggerLazyExe(t *testing.T) {
	buf := new(bytes.Buffer)
	exe := "first"
	log := New(Config{
		Output: buf,
		Arch:   "i386",
		Exe:    func() string { return exe },
	})

	log.Infof("one")
	exe = "second"
	log.Infof("two")

	require.Equal(t, "[i386] first: one\n[i386] second: two\n", buf.String())
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name     string
		minLevel Level
		wantInfo bool
		wantDbg  bool
	}{
		{"debug shows everything", LevelDebug, true, true},
		{"info hides debug", LevelInfo, true, false},
		{"quiet hides everything", LevelQuiet, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			log := New(Config{Output: buf, Arch: "amd64", MinLevel: tt.minLevel})

			log.Infof("info-line")
			log.Debugf("debug-line")

			assert.Equal(t, tt.wantInfo, bytes.Contains(buf.Bytes(), []byte("info-line")))
			assert.Equal(t, tt.wantDbg, bytes.Contains(buf.Bytes(), []byte("debug-line")))
		})
	}
}

func TestLoggerNilSafe(t *testing.T) {
	var log *Logger
	assert.NotPanics(t, func() {
		log.Infof("ignored")
		log.Debugf("ignored")
	})
}

func TestLoggerFormatArgs(t *testing.T) {
	buf := new(bytes.Buffer)
	log := New(Config{Output: buf, Arch: "amd64", Exe: func() string { return "x" }})

	log.Infof("saw %d entries from %q", 3, "banlist.conf")

	assert.Equal(t, "[amd64] x: saw 3 entries from \"banlist.conf\"\n", buf.String())
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.Infof("dropped")
	})
}

func TestArchTag(t *testing.T) {
	// Whatever the build architecture, the tag must be non-empty and the
	// 32-bit x86 label must follow the dpkg convention.
	tag := ArchTag()
	require.NotEmpty(t, tag)
	assert.NotEqual(t, "386", tag)
}
