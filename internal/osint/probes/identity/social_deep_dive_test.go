package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

func TestExtractSocialLinks_FindsKnownPlatforms(t *testing.T) {
	bio := "Find me on twitter.com/alice_dev, github.com/alice and t.me/alicechat"
	links := extractSocialLinks(bio)

	var platforms []string
	for _, l := range links {
		platforms = append(platforms, l["platform"])
	}
	assert.Contains(t, platforms, "twitter")
	assert.Contains(t, platforms, "github")
	assert.Contains(t, platforms, "telegram")
}

func TestExtractSocialLinks_NoMatchesReturnsEmpty(t *testing.T) {
	links := extractSocialLinks("just a plain bio with no links")
	assert.Empty(t, links)
}

func TestSocialDeepDive_Run_IgnoresNonUsernameSeed(t *testing.T) {
	s := NewSocialDeepDive(httpx.New(httpx.Policy{}))
	ch := s.Run(context.Background(), probe.EmailSeed("person@example.com"), 2, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count)
}
