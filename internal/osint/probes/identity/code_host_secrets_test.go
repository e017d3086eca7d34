package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

func TestCodeHostSecretScanner_Run_SkipsBelowDepth2(t *testing.T) {
	s := NewCodeHostSecretScanner(httpx.New(httpx.Policy{}))
	ch := s.Run(context.Background(), probe.UsernameSeed("alice"), 1, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count, "secret scanning is the most request-heavy probe and must not run at depth 1")
}

func TestCodeHostSecretScanner_Run_IgnoresNonUsernameSeed(t *testing.T) {
	s := NewCodeHostSecretScanner(httpx.New(httpx.Policy{}))
	ch := s.Run(context.Background(), probe.EmailSeed("person@example.com"), 3, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count)
}
