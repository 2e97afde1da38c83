//go:build linux

package banlist

import "golang.org/x/sys/unix"

// statToken returns the file's modification time as a comparable token.
// Nanoseconds are included so two edits landing within the same second are
// still told apart on filesystems that record them.
func statToken(path string) (modToken, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return modToken{}, err
	}
	sec, nsec := st.Mtim.Unix()
	return modToken{sec: sec, nsec: nsec}, nil
}
