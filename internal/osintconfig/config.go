// Package osintconfig loads the environment knobs the host passes through
// to the scan core, using an explicit Config value threaded through
// constructors rather than a mutable package-level singleton.
package osintconfig

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the immutable set of knobs threaded through every constructor
// in the scan core. It is read once at process start and never mutated.
type Config struct {
	// ScanDeadline is the global soft deadline for a single scan.
	ScanDeadline time.Duration
	// ProbeDeadline bounds a single probe invocation.
	ProbeDeadline time.Duration
	// Hop1FanOut bounds concurrent hop-1 probes.
	Hop1FanOut int
	// Hop2UsernameCap bounds how many usernames hop 2 explores.
	Hop2UsernameCap int
	// Hop2FanOut bounds concurrent username explorations within hop 2.
	Hop2FanOut int
	// CodeHostToken is an optional bearer credential for code-hosting
	// APIs. Never a literal in source — always sourced from the
	// environment.
	CodeHostToken string
	// ProgressConstants gives the expected-finding count used by the
	// progress estimator, keyed by depth.
	ProgressConstants map[int]int
}

// EnvPrefix is the prefix every knob's environment variable carries.
const EnvPrefix = "TRACE_OSINT_"

// Default returns the out-of-the-box configuration used when no
// environment overrides are present.
func Default() Config {
	return Config{
		ScanDeadline:    90 * time.Second,
		ProbeDeadline:   30 * time.Second,
		Hop1FanOut:      1,
		Hop2UsernameCap: 5,
		Hop2FanOut:      2,
		CodeHostToken:   "",
		ProgressConstants: map[int]int{
			1: 10,
			2: 25,
			3: 40,
		},
	}
}

// Load starts from Default and overlays any TRACE_OSINT_* environment
// variables, optionally sourced from a .env file via godotenv for local
// development.
func Load(envFile string) Config {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	cfg := Default()

	if v, ok := durationEnv("SCAN_DEADLINE_SECONDS"); ok {
		cfg.ScanDeadline = v
	}
	if v, ok := durationEnv("PROBE_DEADLINE_SECONDS"); ok {
		cfg.ProbeDeadline = v
	}
	if v, ok := intEnv("HOP1_FANOUT"); ok {
		cfg.Hop1FanOut = v
	}
	if v, ok := intEnv("HOP2_USERNAME_CAP"); ok {
		cfg.Hop2UsernameCap = v
	}
	if v, ok := intEnv("HOP2_FANOUT"); ok {
		cfg.Hop2FanOut = v
	}
	if v := os.Getenv(EnvPrefix + "CODE_HOST_TOKEN"); v != "" {
		cfg.CodeHostToken = v
	}

	return cfg
}

func durationEnv(suffix string) (time.Duration, bool) {
	v, ok := intEnv(suffix)
	if !ok {
		return 0, false
	}
	return time.Duration(v) * time.Second, true
}

func intEnv(suffix string) (int, bool) {
	raw := os.Getenv(EnvPrefix + suffix)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ClampDepth restricts depth to the 1..3 range the core accepts.
func ClampDepth(depth int) int {
	switch {
	case depth < 1:
		return 1
	case depth > 3:
		return 3
	default:
		return depth
	}
}
