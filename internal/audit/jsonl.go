package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JSONL is an append-only, size-rotated decision log. One process writes
// one instance ID for its lifetime, so overlapping shimmed processes can
// share a file and still be told apart.
type JSONL struct {
	path       string
	maxBytes   int64
	maxBackups int
	instance   string
	pid        int

	mu   sync.Mutex
	file *os.File
}

// NewJSONL opens (creating if needed) the decision log at path. Zero or
// negative limits select the defaults: 10 MB per file, 3 backups.
func NewJSONL(path string, maxSizeMB int, maxBackups int) (*JSONL, error) {
	if path == "" {
		return nil, fmt.Errorf("jsonl path is empty")
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	if maxBackups <= 0 {
		maxBackups = 3
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open jsonl: %w", err)
	}

	return &JSONL{
		path:       path,
		maxBytes:   int64(maxSizeMB) * 1024 * 1024,
		maxBackups: maxBackups,
		instance:   uuid.NewString(),
		pid:        os.Getpid(),
		file:       f,
	}, nil
}

// Instance returns the ID stamped on every event this sink writes.
func (s *JSONL) Instance() string {
	return s.instance
}

// Log appends one event, filling timestamp, instance, and PID when the
// caller left them empty.
func (s *JSONL) Log(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rotateIfNeededLocked(); err != nil {
		return err
	}

	if ev.TS == "" {
		ev.TS = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if ev.Instance == "" {
		ev.Instance = s.instance
	}
	if ev.PID == 0 {
		ev.PID = s.pid
	}

	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := s.file.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("write jsonl: %w", err)
	}
	return nil
}

func (s *JSONL) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

func (s *JSONL) rotateIfNeededLocked() error {
	if s.file == nil {
		// A previous rotation closed the file and could not reopen it.
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("reopen jsonl: %w", err)
		}
		s.file = f
		return nil
	}
	st, err := s.file.Stat()
	if err != nil {
		return fmt.Errorf("stat jsonl: %w", err)
	}
	if st.Size() < s.maxBytes {
		return nil
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close for rotate: %w", err)
	}

	for i := s.maxBackups - 1; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d", s.path, i)
		to := fmt.Sprintf("%s.%d", s.path, i+1)
		if _, err := os.Stat(from); err == nil {
			_ = os.Rename(from, to)
		}
	}
	_ = os.Rename(s.path, fmt.Sprintf("%s.1", s.path))

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		s.file = nil
		return fmt.Errorf("reopen jsonl: %w", err)
	}
	s.file = f
	return nil
}
