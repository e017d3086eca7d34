package osintconfig

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	vars := []string{
		"SCAN_DEADLINE_SECONDS", "PROBE_DEADLINE_SECONDS", "HOP1_FANOUT",
		"HOP2_USERNAME_CAP", "HOP2_FANOUT", "CODE_HOST_TOKEN",
	}
	for _, v := range vars {
		os.Unsetenv(EnvPrefix + v)
	}
}

func TestDefault_MatchesDocumentedKnobs(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 90*time.Second, cfg.ScanDeadline)
	assert.Equal(t, 30*time.Second, cfg.ProbeDeadline)
	assert.Equal(t, 1, cfg.Hop1FanOut)
	assert.Equal(t, 5, cfg.Hop2UsernameCap)
	assert.Equal(t, 2, cfg.Hop2FanOut)
	assert.Empty(t, cfg.CodeHostToken)
	assert.Equal(t, map[int]int{1: 10, 2: 25, 3: 40}, cfg.ProgressConstants)
}

func TestLoad_NoEnvFileOrVarsReturnsDefault(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)

	cfg := Load("")
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverlaysEnvVars(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)

	os.Setenv(EnvPrefix+"SCAN_DEADLINE_SECONDS", "120")
	os.Setenv(EnvPrefix+"HOP2_USERNAME_CAP", "8")
	os.Setenv(EnvPrefix+"CODE_HOST_TOKEN", "ghp_example")

	cfg := Load("")
	assert.Equal(t, 120*time.Second, cfg.ScanDeadline)
	assert.Equal(t, 8, cfg.Hop2UsernameCap)
	assert.Equal(t, "ghp_example", cfg.CodeHostToken)
	assert.Equal(t, 30*time.Second, cfg.ProbeDeadline, "unset knobs must keep their default")
}

func TestLoad_IgnoresMalformedIntEnvVar(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)

	os.Setenv(EnvPrefix+"HOP1_FANOUT", "not-a-number")

	cfg := Load("")
	assert.Equal(t, Default().Hop1FanOut, cfg.Hop1FanOut)
}

func TestClampDepth(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{-5, 1}, {0, 1}, {1, 1}, {2, 2}, {3, 3}, {4, 3}, {99, 3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClampDepth(tc.in))
	}
}
