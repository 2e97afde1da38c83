package banlist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Editor applies ban list file edits. Writes go through a temp file and a
// rename so a shim polling the file never reads a half-written list, and
// the rename bumps the mtime that reload detection keys on.
type Editor struct {
	path string
}

// NewEditor creates an editor for the ban list at path.
func NewEditor(path string) *Editor {
	return &Editor{path: path}
}

// Path returns the file the editor operates on.
func (e *Editor) Path() string {
	return e.path
}

// Entries returns the non-empty lines of the file in order. A missing file
// is an empty list, not an error.
func (e *Editor) Entries() ([]string, error) {
	lines, err := e.readLines()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []string
	for _, line := range lines {
		if line != "" {
			entries = append(entries, line)
		}
	}
	return entries, nil
}

// Add appends an entry, creating the file and its directory if needed.
// Duplicates are rejected so a list stays reviewable.
func (e *Editor) Add(entry string) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	lines, err := e.readLines()
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	for _, line := range lines {
		if line == entry {
			return fmt.Errorf("entry already present: %s", entry)
		}
	}
	lines = append(lines, entry)
	return e.writeLines(lines)
}

// Remove deletes an entry by exact text, preserving every other line
// including blanks.
func (e *Editor) Remove(entry string) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	lines, err := e.readLines()
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("entry not found: %s", entry)
		}
		return err
	}
	kept := lines[:0]
	found := false
	for _, line := range lines {
		if line == entry {
			found = true
			continue
		}
		kept = append(kept, line)
	}
	if !found {
		return fmt.Errorf("entry not found: %s", entry)
	}
	return e.writeLines(kept)
}

func validateEntry(entry string) error {
	if entry == "" {
		return fmt.Errorf("entry is empty")
	}
	if strings.ContainsAny(entry, "\r\n") {
		return fmt.Errorf("entry contains a line break")
	}
	return nil
}

// readLines splits the file into lines without terminators. A trailing
// newline does not produce a final empty line.
func (e *Editor) readLines() ([]string, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSuffix(string(data), "\n")
	if content == "" {
		return nil, nil
	}
	return strings.Split(content, "\n"), nil
}

func (e *Editor) writeLines(lines []string) error {
	dir := filepath.Dir(e.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	var content string
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	tmp, err := os.CreateTemp(dir, ".banlist-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write ban list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod ban list: %w", err)
	}
	if err := os.Rename(tmp.Name(), e.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish ban list: %w", err)
	}
	return nil
}
