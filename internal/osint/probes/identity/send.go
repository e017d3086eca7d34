// Package identity holds hop-2 probes: username-expansion modules that
// consume a username discovered in hop 1 and look for richer, platform-
// specific signal behind it.
package identity

import (
	"context"

	"github.com/danieljcheung/trace/internal/osint/finding"
)

func sendFinding(ctx context.Context, out chan<- finding.Finding, f finding.Finding) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}
