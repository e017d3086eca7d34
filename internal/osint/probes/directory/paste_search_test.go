package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

func TestPasteSearch_Run_IgnoresNonEmailSeed(t *testing.T) {
	p := NewPasteSearch(httpx.New(httpx.Policy{}))
	ch := p.Run(context.Background(), probe.UsernameSeed("alice"), 1, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count)
}

func TestPasteSearch_Run_RejectsMalformedEmail(t *testing.T) {
	p := NewPasteSearch(httpx.New(httpx.Policy{}))
	ch := p.Run(context.Background(), probe.EmailSeed("no-at-sign"), 1, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count)
}
