package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

func TestCommitAuthorSearch_Run_IgnoresNonEmailSeed(t *testing.T) {
	c := NewCommitAuthorSearch(httpx.New(httpx.Policy{}))
	ch := c.Run(context.Background(), probe.UsernameSeed("alice"), 2, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count)
}

func TestCommitAuthorSearch_Run_RejectsMalformedEmail(t *testing.T) {
	c := NewCommitAuthorSearch(httpx.New(httpx.Policy{}))
	ch := c.Run(context.Background(), probe.EmailSeed("not-an-email"), 2, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count)
}
