// Package orchestrator drives a single scan's three hops to completion,
// translating probe output into the host-facing event stream. It owns no
// state beyond a single run: every field mutated during Run lives on a
// value created for that call, mirroring the "strictly per-scan state, no
// globals" rule the rest of the core follows.
package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/danieljcheung/trace/internal/osint/events"
	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/probe"
	"github.com/danieljcheung/trace/internal/osint/risk"
	"github.com/danieljcheung/trace/internal/osint/seed"
	"github.com/danieljcheung/trace/internal/osintconfig"
	"github.com/danieljcheung/trace/internal/osintlog"
)

// minProbePacing and maxProbePacing bound the jittered delay the
// orchestrator inserts between successive probe invocations, independent
// of any pacing a probe applies to its own sub-requests.
const (
	minProbePacing = 300 * time.Millisecond
	maxProbePacing = 500 * time.Millisecond

	drainGrace = 2 * time.Second
)

// Orchestrator runs hop-1 through hop-3 probes for a scan and streams
// events describing its progress.
type Orchestrator struct {
	registry  probe.Registry
	cfg       osintconfig.Config
	log       zerolog.Logger
	extractor seed.Extractor
}

// New returns an Orchestrator driven by registry and configured by cfg.
func New(registry probe.Registry, cfg osintconfig.Config) *Orchestrator {
	return &Orchestrator{
		registry:  registry,
		cfg:       cfg,
		log:       osintlog.ForComponent("orchestrator"),
		extractor: seed.NewExtractor(),
	}
}

// Run starts a scan for email at the given depth (clamped to 1..3) and
// returns a channel of events. The channel is closed once a terminal event
// (complete or timeout) has been sent, or without one if ctx is cancelled
// first; Run itself never sends an error event. Run never blocks; all work
// happens on a goroutine it owns.
func (o *Orchestrator) Run(ctx context.Context, email string, depth int) <-chan events.Event {
	depth = osintconfig.ClampDepth(depth)
	out := make(chan events.Event)

	go o.run(ctx, email, depth, out)

	return out
}

func (o *Orchestrator) run(ctx context.Context, email string, depth int, out chan<- events.Event) {
	defer close(out)

	audit := newAuditLog()
	started := time.Now()

	// softCtx expires at the configured scan-wide deadline: once it's done,
	// the orchestrator stops starting new hops. hardCtx gives whatever is
	// already in flight an additional drain window before it is cancelled
	// outright, per the "waits at most 2s for in-flight probes to drain"
	// rule.
	softCtx, softCancel := context.WithTimeout(ctx, o.cfg.ScanDeadline)
	defer softCancel()
	hardCtx, hardCancel := context.WithTimeout(ctx, o.cfg.ScanDeadline+drainGrace)
	defer hardCancel()
	scanCtx := hardCtx

	send := func(ev events.Event) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !send(events.NewStart(depth, started)) {
		return
	}

	audit.log("SCAN INITIATED")
	audit.log(fmt.Sprintf("DEPTH: %d HOP(S)", depth))
	audit.log("ZERO DATA RETENTION MODE ACTIVE")
	send(events.NewLog("INFO", "scan initiated"))

	masked := maskEmail(email)
	rootBuilder := finding.NewBuilder("User Input")
	root := rootBuilder.New(finding.TypeEmail, finding.SeverityLow, masked, "Seed email").
		Set("email_masked", masked)

	state := seed.New(email)

	var findingCount int64
	progressConst := o.cfg.ProgressConstants[depth]
	if progressConst <= 0 {
		progressConst = 10
	}

	emitFinding := func(f finding.Finding) bool {
		state.RecordFinding(f)
		o.extractor.Observe(state, f)
		n := atomic.AddInt64(&findingCount, 1)
		if !send(events.NewFinding(f)) {
			return false
		}
		progress := int(n) * 100 / progressConst
		if progress > 95 {
			progress = 95
		}
		return send(events.NewProgress(progress, int(n), time.Since(started)))
	}

	if !emitFinding(root) {
		return
	}

	timedOut := false

	audit.log(strings.Repeat("=", 40))
	audit.log("HOP 1: DIRECT EMAIL ANALYSIS")
	audit.log(strings.Repeat("=", 40))
	send(events.NewLog("INFO", "hop 1: direct email analysis"))

	hop1Seed := probe.EmailSeed(email)
	o.runHop(scanCtx, o.registry.Hop1, hop1Seed, depth, root.ID, o.cfg.Hop1FanOut, send, emitFinding, audit)
	if softCtx.Err() != nil {
		timedOut = true
	}

	if !timedOut && depth >= 2 {
		usernames := state.Usernames()
		if len(usernames) > o.cfg.Hop2UsernameCap {
			usernames = usernames[:o.cfg.Hop2UsernameCap]
		}
		if len(usernames) > 0 {
			audit.log(strings.Repeat("=", 40))
			audit.log(fmt.Sprintf("HOP 2: USERNAME ANALYSIS (%d usernames)", len(usernames)))
			audit.log(strings.Repeat("=", 40))
			send(events.NewLog("INFO", "hop 2: username analysis"))

			o.runHop2(scanCtx, usernames, root.ID, depth, send, emitFinding, audit)
			if softCtx.Err() != nil {
				timedOut = true
			}
		}
	}

	if !timedOut && depth >= 3 && len(o.registry.Hop3) > 0 {
		audit.log(strings.Repeat("=", 40))
		audit.log("HOP 3: DEEP TRACE")
		audit.log(strings.Repeat("=", 40))
		send(events.NewLog("INFO", "hop 3: deep trace"))

		aggregateSeed := probe.AggregateSeed(state)
		o.runHop(scanCtx, o.registry.Hop3, aggregateSeed, depth, root.ID, 1, send, emitFinding, audit)
		if softCtx.Err() != nil {
			timedOut = true
		}
	}

	elapsed := time.Since(started).Seconds()
	allFindings := state.Findings()

	if timedOut {
		audit.log(fmt.Sprintf("SCAN TIMEOUT (%.1fs)", elapsed))
		send(events.NewTimeout(events.Timeout{
			Findings:        allFindings,
			AuditLog:        audit.entries(),
			ScanTimeSeconds: elapsed,
		}))
		return
	}

	score, label := risk.Score(allFindings)

	audit.log(strings.Repeat("=", 40))
	audit.log(fmt.Sprintf("SCAN COMPLETE (%.1fs)", elapsed))
	audit.log(fmt.Sprintf("TOTAL NODES: %d", len(allFindings)))
	audit.log(fmt.Sprintf("RISK SCORE: %d/100 (%s)", score, label))
	audit.log("ALL DATA CLEARED FROM MEMORY")
	audit.log(strings.Repeat("=", 40))

	stats := events.Stats{
		ResourcesChecked: len(o.registry.Hop1) + len(o.registry.Hop2) + len(o.registry.Hop3),
		AccountsFound:    countAccounts(allFindings),
		UsernamesFound:   len(state.Usernames()),
	}

	send(events.NewComplete(events.Complete{
		Findings:        allFindings,
		AuditLog:        audit.entries(),
		ScanTimeSeconds: elapsed,
		RiskScore:       score,
		RiskLevel:       string(label),
		Stats:           stats,
	}))
}

// runHop drives probes sequentially or with bounded fan-out, pacing between
// invocations and tolerating per-probe timeouts without aborting siblings.
// It returns false if ctx (the scan context, which already includes the
// drain grace) is done once the hop's probes have finished.
func (o *Orchestrator) runHop(
	ctx context.Context,
	probes []probe.Probe,
	sd probe.Seed,
	depth int,
	parentID string,
	fanOut int,
	send func(events.Event) bool,
	emitFinding func(finding.Finding) bool,
	audit *auditLog,
) bool {
	if fanOut <= 0 {
		fanOut = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOut)

	for _, p := range probes {
		p := p
		g.Go(func() error {
			if err := pace(gctx); err != nil {
				return nil
			}
			o.runProbe(gctx, p, sd, depth, parentID, send, emitFinding, audit)
			return nil
		})
	}

	_ = g.Wait()
	return ctx.Err() == nil
}

// runHop2 explores up to o.cfg.Hop2FanOut usernames concurrently, running
// every hop-2 probe sequentially per username.
func (o *Orchestrator) runHop2(
	ctx context.Context,
	usernames []string,
	rootID string,
	depth int,
	send func(events.Event) bool,
	emitFinding func(finding.Finding) bool,
	audit *auditLog,
) bool {
	fanOut := o.cfg.Hop2FanOut
	if fanOut <= 0 {
		fanOut = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOut)

	for _, username := range usernames {
		username := username
		g.Go(func() error {
			sd := probe.UsernameSeed(username)
			for _, p := range o.registry.Hop2 {
				if err := pace(gctx); err != nil {
					return nil
				}
				o.runProbe(gctx, p, sd, depth, rootID, send, emitFinding, audit)
				if gctx.Err() != nil {
					return nil
				}
			}
			return nil
		})
	}

	_ = g.Wait()
	return ctx.Err() == nil
}

func (o *Orchestrator) runProbe(
	ctx context.Context,
	p probe.Probe,
	sd probe.Seed,
	depth int,
	parentID string,
	send func(events.Event) bool,
	emitFinding func(finding.Finding) bool,
	audit *auditLog,
) {
	probeCtx, cancel := context.WithTimeout(ctx, o.cfg.ProbeDeadline)
	defer cancel()

	audit.log(fmt.Sprintf("QUERYING: %s", strings.ToUpper(p.Name())))

	ch := p.Run(probeCtx, sd, depth, parentID)
	for {
		select {
		case f, ok := <-ch:
			if !ok {
				return
			}
			audit.log(fmt.Sprintf("  FOUND: %s", f.Title))
			if !emitFinding(f) {
				return
			}
		case <-probeCtx.Done():
			if ctx.Err() == nil {
				audit.log(fmt.Sprintf("  TIMEOUT: %s", p.Name()))
			}
			return
		}
	}
}

// pace sleeps a jittered delay drawn from [minProbePacing, maxProbePacing)
// to avoid hammering shared targets in lockstep, returning early if ctx is
// cancelled.
func pace(ctx context.Context) error {
	jitterRange := maxProbePacing - minProbePacing
	delay := minProbePacing
	if jitterRange > 0 {
		delay += time.Duration(rand.Int63n(int64(jitterRange)))
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// maskEmail redacts everything but the first/last character of the local
// part, so the clear-text address never appears in a finding's title or
// description, or in the audit log.
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return "***@***"
	}
	local, domain := email[:at], email[at+1:]
	var masked string
	switch {
	case len(local) <= 2:
		masked = string(local[0]) + "***"
	default:
		masked = string(local[0]) + "***" + string(local[len(local)-1])
	}
	return masked + "@" + domain
}

func countAccounts(findings []finding.Finding) int {
	n := 0
	for _, f := range findings {
		if f.Type == finding.TypeAccount {
			n++
		}
	}
	return n
}
