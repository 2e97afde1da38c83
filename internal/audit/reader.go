package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadFile loads every well-formed event from a decision log. Lines that do
// not parse are skipped: a crash mid-write leaves at most one torn line and
// it must not make the rest of the trail unreadable.
func ReadFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open jsonl: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("read jsonl: %w", err)
	}
	return events, nil
}

// Follower incrementally reads events appended to a decision log. It
// tolerates the file not existing yet and detects truncation or rotation
// by the file shrinking under its offset.
type Follower struct {
	path    string
	offset  int64
	partial []byte
}

// NewFollower starts a follower. With fromStart false the follower skips
// everything already in the file and reports only new events.
func NewFollower(path string, fromStart bool) (*Follower, error) {
	f := &Follower{path: path}
	if !fromStart {
		if st, err := os.Stat(path); err == nil {
			f.offset = st.Size()
		}
	}
	return f, nil
}

// Poll returns events appended since the previous call.
func (f *Follower) Poll() ([]Event, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open jsonl: %w", err)
	}
	defer file.Close()

	st, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat jsonl: %w", err)
	}
	if st.Size() < f.offset {
		f.offset = 0
		f.partial = nil
	}
	if st.Size() == f.offset {
		return nil, nil
	}

	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek jsonl: %w", err)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read jsonl: %w", err)
	}
	f.offset += int64(len(data))

	buf := append(f.partial, data...)
	var events []Event
	for {
		nl := bytes.IndexByte(buf, '\n')
		if nl < 0 {
			break
		}
		line := bytes.TrimSpace(buf[:nl])
		buf = buf[nl+1:]
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	f.partial = append([]byte(nil), buf...)
	return events, nil
}
