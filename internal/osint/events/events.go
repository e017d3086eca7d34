// Package events defines the typed event stream the orchestrator publishes
// to its caller. Framing these onto a wire (SSE, websocket, ...) is a
// transport-layer concern outside this package.
package events

import (
	"time"

	"github.com/danieljcheung/trace/internal/osint/finding"
)

// Kind enumerates the seven event kinds the stream can carry.
type Kind string

const (
	KindStart    Kind = "start"
	KindFinding  Kind = "finding"
	KindProgress Kind = "progress"
	KindLog      Kind = "log"
	KindComplete Kind = "complete"
	KindTimeout  Kind = "timeout"
	KindError    Kind = "error"
)

// Start is the payload of the first event in every scan.
type Start struct {
	Depth     int       `json:"depth"`
	Timestamp time.Time `json:"timestamp"`
}

// FindingEvent carries a single emitted finding.
type FindingEvent struct {
	Finding finding.Finding `json:"finding"`
}

// Progress carries the estimator's running completion percentage.
type Progress struct {
	Progress       int     `json:"progress"` // 0..95 while running, 100 only via Complete
	FindingCount   int     `json:"finding_count"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Log carries one orchestrator narration line. Messages never contain the
// clear-text seed email.
type Log struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// Stats summarizes a completed or timed-out scan for display.
type Stats struct {
	ResourcesChecked int `json:"resources_checked"`
	AccountsFound    int `json:"accounts_found"`
	UsernamesFound   int `json:"usernames_found"`
}

// Complete is the terminal payload for a normally-finished scan.
type Complete struct {
	Findings        []finding.Finding `json:"findings"`
	AuditLog        []string          `json:"audit_log"`
	ScanTimeSeconds float64           `json:"scan_time_seconds"`
	RiskScore       int               `json:"risk_score"`
	RiskLevel       string            `json:"risk_level"`
	Stats           Stats             `json:"stats"`
}

// Timeout is the terminal payload when the scan-wide deadline fires before
// completion; it carries whatever partial state had accumulated.
type Timeout struct {
	Findings        []finding.Finding `json:"findings"`
	AuditLog        []string          `json:"audit_log"`
	ScanTimeSeconds float64           `json:"scan_time_seconds"`
}

// Error is reserved for infrastructure failures that stop the scan before
// it can reach a normal terminal state — never for an individual probe's
// failure, which is recovered silently at the probe boundary.
type Error struct {
	ErrorKind string `json:"error_kind"`
	Message   string `json:"message"`
}

// Event is one item on the stream. Exactly one of the payload fields is
// populated, matching Kind.
type Event struct {
	Kind     Kind          `json:"kind"`
	Start    *Start        `json:"start,omitempty"`
	Finding  *FindingEvent `json:"finding,omitempty"`
	Progress *Progress     `json:"progress,omitempty"`
	Log      *Log          `json:"log,omitempty"`
	Complete *Complete     `json:"complete,omitempty"`
	Timeout  *Timeout      `json:"timeout,omitempty"`
	Error    *Error        `json:"error,omitempty"`
}

func newEvent(kind Kind) Event { return Event{Kind: kind} }

// NewStart builds a start event.
func NewStart(depth int, at time.Time) Event {
	e := newEvent(KindStart)
	e.Start = &Start{Depth: depth, Timestamp: at}
	return e
}

// NewFinding builds a finding event.
func NewFinding(f finding.Finding) Event {
	e := newEvent(KindFinding)
	e.Finding = &FindingEvent{Finding: f}
	return e
}

// NewProgress builds a progress event.
func NewProgress(progress, findingCount int, elapsed time.Duration) Event {
	e := newEvent(KindProgress)
	e.Progress = &Progress{Progress: progress, FindingCount: findingCount, ElapsedSeconds: elapsed.Seconds()}
	return e
}

// NewLog builds a log event.
func NewLog(level, message string) Event {
	e := newEvent(KindLog)
	e.Log = &Log{Timestamp: time.Now().UTC(), Level: level, Message: message}
	return e
}

// NewComplete builds the terminal complete event.
func NewComplete(c Complete) Event {
	e := newEvent(KindComplete)
	e.Complete = &c
	return e
}

// NewTimeout builds the terminal timeout event.
func NewTimeout(t Timeout) Event {
	e := newEvent(KindTimeout)
	e.Timeout = &t
	return e
}

// NewError builds the terminal error event.
func NewError(kind, message string) Event {
	e := newEvent(KindError)
	e.Error = &Error{ErrorKind: kind, Message: message}
	return e
}

// Terminal reports whether kind ends the stream.
func (k Kind) Terminal() bool {
	return k == KindComplete || k == KindTimeout || k == KindError
}
