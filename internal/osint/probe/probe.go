// Package probe defines the capability contract every OSINT module
// implements, and the static registry grouping modules into scan hops.
//
// A probe never raises to its caller for network, parse, or remote-policy
// failures: it absorbs them and either yields a degraded finding or
// terminates its output channel. Programming errors can still escape as a
// panic; every Probe implementation is responsible for deferring Recover
// inside its own goroutine so one probe's bug cannot take down the scan.
package probe

import (
	"context"
	"runtime/debug"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/seed"
	"github.com/danieljcheung/trace/internal/osintlog"
)

// Kind discriminates the shape of a Seed. Modelled as a tagged union per
// the design notes, rather than a re-parsed JSON string at the probe
// boundary.
type Kind int

const (
	KindEmail Kind = iota
	KindUsername
	KindPlatformUsername
	KindAggregate
)

// Seed is the input handed to a single probe invocation. Only the fields
// relevant to Kind are populated.
type Seed struct {
	Kind      Kind
	Email     string
	Username  string
	Platform  string
	Aggregate *seed.State
}

// EmailSeed builds a Seed carrying a verified email address.
func EmailSeed(email string) Seed { return Seed{Kind: KindEmail, Email: email} }

// UsernameSeed builds a Seed carrying a bare username.
func UsernameSeed(username string) Seed { return Seed{Kind: KindUsername, Username: username} }

// PlatformUsernameSeed builds a Seed carrying a (platform, username) pair.
func PlatformUsernameSeed(platform, username string) Seed {
	return Seed{Kind: KindPlatformUsername, Platform: platform, Username: username}
}

// AggregateSeed builds a Seed carrying the full accumulated scan state, for
// correlation probes.
func AggregateSeed(state *seed.State) Seed {
	return Seed{Kind: KindAggregate, Aggregate: state}
}

// Probe is a bounded operation that turns a Seed into a lazily-produced
// stream of findings. Implementations own the goroutine writing to the
// returned channel and must close it exactly once, whether they finish
// normally, hit their internal rate limits, or observe ctx cancellation.
type Probe interface {
	// Name is the static probe identifier used as Finding.Source and for
	// registry/log narration.
	Name() string
	// Description is a short static human string.
	Description() string
	// Run streams findings for seed. depth lets expensive probes skip their
	// deep branch when depth < 2. Every finding's ParentID should be set to
	// parentID unless the probe is building its own sub-hierarchy, in which
	// case sub-findings parent onto a finding the probe itself emitted
	// earlier in the same call.
	Run(ctx context.Context, sd Seed, depth int, parentID string) <-chan finding.Finding
}

// Recover absorbs a panic raised inside a probe's own goroutine, logs it at
// ERROR, and lets that goroutine return normally so its deferred close(out)
// still runs. It must be deferred directly inside the goroutine a Run
// implementation spawns — a panic can only be recovered by the goroutine it
// occurs in, so a guard anywhere else (the orchestrator included) cannot
// catch it.
func Recover(probeName string) {
	if r := recover(); r != nil {
		osintlog.ForComponent("probe").Error().
			Str("probe", probeName).
			Interface("panic", r).
			Str("stack", string(debug.Stack())).
			Msg("probe panicked, abandoning its output")
	}
}

// Func adapts a plain function to the Probe interface, mirroring the
// teacher's preference for small functional adapters over inheritance.
type Func struct {
	name, description string
	run                func(ctx context.Context, sd Seed, depth int, parentID string) <-chan finding.Finding
}

// NewFunc builds a Probe from name/description/run without a dedicated type.
func NewFunc(name, description string, run func(ctx context.Context, sd Seed, depth int, parentID string) <-chan finding.Finding) Func {
	return Func{name: name, description: description, run: run}
}

func (f Func) Name() string        { return f.name }
func (f Func) Description() string { return f.description }
func (f Func) Run(ctx context.Context, sd Seed, depth int, parentID string) <-chan finding.Finding {
	return f.run(ctx, sd, depth, parentID)
}
