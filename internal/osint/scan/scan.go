// Package scan is the single external boundary of the scan engine: it
// wires an httpx.Client and the default probe registry to an
// orchestrator.Orchestrator and exposes one function, Scan, that the CLI
// and any future host (HTTP handler, gRPC service) call the same way.
package scan

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/danieljcheung/trace/internal/osint/events"
	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/orchestrator"
	"github.com/danieljcheung/trace/internal/osintconfig"
)

// ScanRequest describes one scan: the seed email and how many hops deep
// to run it. Depth is clamped to 1..3 by osintconfig.ClampDepth.
type ScanRequest struct {
	Email string
	Depth int
}

// Scan validates req and starts a scan, returning a stream of events. The
// channel is closed once a terminal event (complete or timeout) has been
// sent, or without one if ctx is cancelled first. Scan itself returns an
// error only for a missing or unparseable email; cfg is not validated.
// Once the scan is running, probe failures never surface as a Go error.
func Scan(ctx context.Context, cfg osintconfig.Config, req ScanRequest) (<-chan events.Event, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, fmt.Errorf("scan: email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("scan: invalid email: %w", err)
	}

	client := httpx.New(httpx.Policy{CodeHostToken: cfg.CodeHostToken})
	registry := defaultRegistry(client)
	orch := orchestrator.New(registry, cfg)

	return orch.Run(ctx, email, req.Depth), nil
}
