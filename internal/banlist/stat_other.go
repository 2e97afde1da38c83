//go:build !linux

package banlist

import "os"

// statToken returns the file's modification time as a comparable token.
func statToken(path string) (modToken, error) {
	info, err := os.Stat(path)
	if err != nil {
		return modToken{}, err
	}
	mt := info.ModTime()
	return modToken{sec: mt.Unix(), nsec: int64(mt.Nanosecond())}, nil
}
