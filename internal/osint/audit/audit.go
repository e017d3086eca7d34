// Package audit collects the PII-scrubbed narration lines a scan produces,
// shared between the orchestrator (which writes to it) and the complete
// event's audit_log field (which reads from it). Kept separate from
// orchestrator so a future host (e.g. a persistent audit sink) can depend
// on the type without pulling in the orchestrator.
package audit

import (
	"fmt"
	"sync"
	"time"
)

// Log accumulates timestamped, PII-free lines in `[HH:MM:SS] [LEVEL]
// message` form. Safe for concurrent use: hop-1 and hop-2 probes run
// concurrently within a scan, so appends are serialized.
type Log struct {
	mu    sync.Mutex
	lines []string
}

// New returns an empty Log.
func New() *Log {
	return &Log{}
}

// Add appends a line at the given level, stamped with the current time.
func (l *Log) Add(level, message string) {
	ts := time.Now().UTC().Format("15:04:05")
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf("[%s] [%s] %s", ts, level, message))
}

// Entries returns a copy of every line recorded so far, in order.
func (l *Log) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}
