package directory

import (
	"context"

	"github.com/danieljcheung/trace/internal/osint/finding"
)

// sendFinding writes f to out, returning false if ctx was cancelled first so
// callers can stop producing further findings.
func sendFinding(ctx context.Context, out chan<- finding.Finding, f finding.Finding) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}
