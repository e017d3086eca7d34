package orchestrator

import "github.com/danieljcheung/trace/internal/osint/audit"

// auditLog is a thin, orchestrator-local facade over audit.Log: every
// narration line the orchestrator records is always INFO-level, so log()
// fixes that level rather than making every call site pass it.
type auditLog struct {
	l *audit.Log
}

func newAuditLog() *auditLog {
	return &auditLog{l: audit.New()}
}

func (a *auditLog) log(message string) {
	a.l.Add("INFO", message)
}

func (a *auditLog) entries() []string {
	return a.l.Entries()
}
