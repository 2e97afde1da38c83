// Package audit records every shim decision as one JSON line, giving the
// stderr diagnostics a machine-readable counterpart that survives the host
// process.
package audit

// Operation outcomes recorded in the trail.
const (
	OpSuppressed       = "suppressed"
	OpForwarded        = "forwarded"
	OpResolutionFailed = "resolution_failed"
)

// Event is one intercepted-call decision.
type Event struct {
	TS       string `json:"ts"`
	Instance string `json:"instance"`
	PID      int    `json:"pid"`
	Arch     string `json:"arch"`
	Exe      string `json:"exe"`
	Op       string `json:"op"`
	Pattern  string `json:"pattern,omitempty"`
}

// Sink consumes decision events. Implementations must be safe for
// concurrent use; the shim logs from whatever thread the host calls on.
type Sink interface {
	Log(Event) error
	Close() error
}
