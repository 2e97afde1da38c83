package banlist

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdlshim/sdlshim/internal/config"
	"github.com/sdlshim/sdlshim/internal/diaglog"
	"github.com/sdlshim/sdlshim/internal/metrics"
)

func fixedLocator(path string) *config.Locator {
	return config.NewLocator(config.LocatorConfig{Path: path})
}

func writeList(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestRefreshLoadsAndMatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banlist.conf")
	writeList(t, path, "/usr/games/dolmen\nSteamApp*\n", time.Unix(1700000000, 0))

	l := New(fixedLocator(path))
	l.Refresh()

	entry, ok := l.Matches("/usr/games/dolmen")
	require.True(t, ok)
	assert.Equal(t, "/usr/games/dolmen", entry)

	entry, ok = l.Matches("SteamApp12345")
	require.True(t, ok)
	assert.Equal(t, "SteamApp*", entry)

	_, ok = l.Matches("/usr/bin/editor")
	assert.False(t, ok)

	assert.Equal(t, []string{"/usr/games/dolmen", "SteamApp*"}, l.Patterns())
}

func TestMatchesAnyTriesEveryForm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banlist.conf")
	writeList(t, path, "SteamApp*\n", time.Unix(1700000000, 0))

	l := New(fixedLocator(path))
	l.Refresh()

	entry, ok := l.MatchesAny("/home/u/SteamApp123", "SteamApp123")
	require.True(t, ok)
	assert.Equal(t, "SteamApp*", entry)

	_, ok = l.MatchesAny("/usr/bin/mygame", "mygame")
	assert.False(t, ok)
}

func TestRefreshSkipsEmptyLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banlist.conf")
	writeList(t, path, "\n/usr/games/one\n\n\n/usr/games/two\n", time.Unix(1700000000, 0))

	l := New(fixedLocator(path))
	l.Refresh()

	assert.Equal(t, 2, l.Len())
}

func TestRefreshKeepsWhitespaceLines(t *testing.T) {
	// Only genuinely empty lines are skipped; a line of spaces is an
	// entry that will simply never match an absolute path.
	path := filepath.Join(t.TempDir(), "banlist.conf")
	writeList(t, path, "  \n/usr/games/one\n", time.Unix(1700000000, 0))

	l := New(fixedLocator(path))
	l.Refresh()

	assert.Equal(t, []string{"  ", "/usr/games/one"}, l.Patterns())
}

func TestRefreshLastLineWithoutNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banlist.conf")
	writeList(t, path, "/usr/games/one\n/usr/games/two", time.Unix(1700000000, 0))

	l := New(fixedLocator(path))
	l.Refresh()

	assert.Equal(t, 2, l.Len())
}

func TestRefreshIdempotentWhileUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banlist.conf")
	writeList(t, path, "/usr/games/one\n", time.Unix(1700000000, 123456789))

	m := metrics.New()
	l := New(fixedLocator(path), WithMetrics(m))

	for i := 0; i < 5; i++ {
		l.Refresh()
	}

	assert.Equal(t, uint64(1), m.Snapshot().BanlistReloads, "unchanged mtime must not reload")
	assert.Equal(t, int64(1), m.Snapshot().BanlistPatterns)
}

func TestRefreshReloadsOnMtimeChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banlist.conf")
	writeList(t, path, "/usr/games/old\n", time.Unix(1700000000, 0))

	m := metrics.New()
	l := New(fixedLocator(path), WithMetrics(m))
	l.Refresh()
	_, ok := l.Matches("/usr/games/old")
	require.True(t, ok)

	writeList(t, path, "/usr/games/new\n", time.Unix(1700000001, 0))
	l.Refresh()

	_, ok = l.Matches("/usr/games/old")
	assert.False(t, ok)
	_, ok = l.Matches("/usr/games/new")
	assert.True(t, ok)
	assert.Equal(t, uint64(2), m.Snapshot().BanlistReloads)
}

func TestRefreshContentChangeSameMtimeIsInvisible(t *testing.T) {
	// Change detection is mtime-only. An edit that preserves the mtime is
	// not picked up until the time moves again.
	path := filepath.Join(t.TempDir(), "banlist.conf")
	mtime := time.Unix(1700000000, 500)
	writeList(t, path, "/usr/games/old\n", mtime)

	l := New(fixedLocator(path))
	l.Refresh()

	writeList(t, path, "/usr/games/new\n", mtime)
	l.Refresh()
	_, ok := l.Matches("/usr/games/new")
	assert.False(t, ok, "same mtime must not trigger a reload")

	require.NoError(t, os.Chtimes(path, mtime.Add(time.Second), mtime.Add(time.Second)))
	l.Refresh()
	_, ok = l.Matches("/usr/games/new")
	assert.True(t, ok)
}

func TestRefreshMissingFileStaysEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "banlist.conf")

	l := New(fixedLocator(path))
	l.Refresh()

	_, ok := l.Matches("/usr/games/anything")
	assert.False(t, ok)
	assert.False(t, l.Loaded())

	// The file appearing later is picked up on the next refresh.
	writeList(t, path, "/usr/games/anything\n", time.Unix(1700000000, 0))
	l.Refresh()
	_, ok = l.Matches("/usr/games/anything")
	assert.True(t, ok)
}

func TestRefreshKeepsSnapshotWhenFileDisappears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banlist.conf")
	writeList(t, path, "/usr/games/keeper\n", time.Unix(1700000000, 0))

	l := New(fixedLocator(path))
	l.Refresh()
	require.NoError(t, os.Remove(path))
	l.Refresh()

	_, ok := l.Matches("/usr/games/keeper")
	assert.True(t, ok, "a vanished file must not clear the active list")
}

func TestRefreshMissingFileLogsOnTransitionOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banlist.conf")
	buf := new(bytes.Buffer)
	log := diaglog.New(diaglog.Config{Output: buf, Arch: "amd64", Exe: func() string { return "t" }})

	l := New(fixedLocator(path), WithLogger(log))
	for i := 0; i < 4; i++ {
		l.Refresh()
	}

	assert.Equal(t, "[amd64] t: Can't find config file!\n", buf.String(),
		"the persisting condition must be reported once, not per call")

	// Recovery and a later disappearance report again.
	writeList(t, path, "/usr/games/x\n", time.Unix(1700000000, 0))
	l.Refresh()
	require.NoError(t, os.Remove(path))
	l.Refresh()
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("Can't find config file!")))
}

func TestRefreshUnreadableFileLogs(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file modes do not restrict root")
	}
	path := filepath.Join(t.TempDir(), "banlist.conf")
	writeList(t, path, "/usr/games/x\n", time.Unix(1700000000, 0))
	require.NoError(t, os.Chmod(path, 0o000))

	buf := new(bytes.Buffer)
	log := diaglog.New(diaglog.Config{Output: buf, Arch: "amd64", Exe: func() string { return "t" }})
	l := New(fixedLocator(path), WithLogger(log))
	l.Refresh()

	assert.Contains(t, buf.String(), "Could not open config file!")
	assert.Equal(t, 0, l.Len())
	assert.True(t, l.Loaded(), "the token is recorded even though the open failed")
}

func TestRefreshRecordsTokenWhenReadFails(t *testing.T) {
	// Stat succeeds on a directory but reading it fails, leaving an empty
	// snapshot that carries the directory's token. Until the mtime moves
	// again the failure is not retried, even when the path has quietly
	// become a readable file.
	base := t.TempDir()
	path := filepath.Join(base, "banlist.conf")
	require.NoError(t, os.Mkdir(path, 0o755))
	dirInfo, err := os.Stat(path)
	require.NoError(t, err)
	mtime := dirInfo.ModTime()

	l := New(fixedLocator(path))
	l.Refresh()
	assert.True(t, l.Loaded())
	assert.Equal(t, 0, l.Len())

	require.NoError(t, os.Remove(path))
	writeList(t, path, "/usr/games/x\n", mtime)
	l.Refresh()
	_, ok := l.Matches("/usr/games/x")
	assert.False(t, ok, "unchanged token must suppress the retry")

	require.NoError(t, os.Chtimes(path, mtime.Add(time.Second), mtime.Add(time.Second)))
	l.Refresh()
	_, ok = l.Matches("/usr/games/x")
	assert.True(t, ok)
}

func TestRefreshNoConfigBase(t *testing.T) {
	loc := config.NewLocator(config.LocatorConfig{
		Getenv: func(string) string { return "" },
	})
	buf := new(bytes.Buffer)
	log := diaglog.New(diaglog.Config{Output: buf, Arch: "amd64", Exe: func() string { return "t" }})
	l := New(loc, WithLogger(log))

	assert.NotPanics(t, func() { l.Refresh() })
	_, ok := l.Matches("/usr/games/x")
	assert.False(t, ok)

	l.Refresh()
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("Can't find config file!")),
		"the missing-config condition is reported like a missing file, once")
}

func TestConcurrentRefreshAndMatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "banlist.conf")
	writeList(t, path, "/usr/games/zero\n", time.Unix(1700000000, 0))

	l := New(fixedLocator(path))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					l.Refresh()
					l.Matches("/usr/games/zero")
				}
			}
		}()
	}

	for i := 1; i <= 20; i++ {
		writeList(t, path, fmt.Sprintf("/usr/games/gen%d\n", i), time.Unix(1700000000+int64(i), 0))
	}
	close(stop)
	wg.Wait()

	l.Refresh()
	_, ok := l.Matches("/usr/games/gen20")
	assert.True(t, ok)
}
