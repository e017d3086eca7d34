package correlate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
	"github.com/danieljcheung/trace/internal/osint/seed"
)

func TestExtractSocialLinks_FindsBioMentions(t *testing.T) {
	bio := "Find me on twitter.com/alice_dev or github: alice-dev"
	links := extractSocialLinks(bio)

	var platforms []string
	for _, l := range links {
		platforms = append(platforms, l.platform)
	}
	assert.Contains(t, platforms, "Twitter")
	assert.Contains(t, platforms, "GitHub")
}

func TestExtractSocialLinks_ExcludesTwitterNoiseWords(t *testing.T) {
	links := extractSocialLinks("visit twitter.com/the for nothing useful")
	for _, l := range links {
		assert.NotEqual(t, "the", l.username)
	}
}

func TestDedupeLinks_RemovesDuplicatePlatformUsernamePairs(t *testing.T) {
	got := dedupeLinks([]socialLink{
		{platform: "GitHub", username: "alice"},
		{platform: "GitHub", username: "alice"},
		{platform: "GitHub", username: "bob"},
	})
	assert.Len(t, got, 2)
}

func TestProfileURL_KnownPlatform(t *testing.T) {
	assert.Equal(t, "https://github.com/alice", profileURL("GitHub", "alice"))
}

func TestProfileURL_UnknownPlatformFallsBackToLowercasedDotCom(t *testing.T) {
	assert.Equal(t, "https://mastodon.com/alice", profileURL("Mastodon", "alice"))
}

func TestConnectedAccountsCorrelator_Run_IgnoresNonAggregateSeed(t *testing.T) {
	c := NewConnectedAccountsCorrelator(httpx.New(httpx.Policy{}))
	ch := c.Run(context.Background(), probe.UsernameSeed("alice"), 3, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count)
}

func TestConnectedAccountsCorrelator_Run_SkipsBioLinkAlreadyFoundAsAccount(t *testing.T) {
	c := NewConnectedAccountsCorrelator(httpx.New(httpx.Policy{}))
	st := seed.New("person@example.com")
	st.AddBio("find me at github.com/alice")
	st.AddAccount(seed.FoundAccount{Platform: "GitHub", Username: "alice", URL: "https://github.com/alice"})

	// Cancelled up front: AddAccount also registers "alice" as a discovered
	// username, which would otherwise send this test's username-match pass
	// out over the real network for the three remaining platforms.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := c.Run(ctx, probe.AggregateSeed(st), 3, "parent-1")

	var findings []finding.Finding
	for f := range ch {
		findings = append(findings, f)
	}
	for _, f := range findings {
		assert.NotContains(t, f.Title, "Linked: GitHub @alice")
	}
}

func TestConnectedAccountsCorrelator_Run_SurfacesNewBioLink(t *testing.T) {
	c := NewConnectedAccountsCorrelator(httpx.New(httpx.Policy{}))
	st := seed.New("person@example.com")
	st.AddBio("find me at github.com/alice")

	ch := c.Run(context.Background(), probe.AggregateSeed(st), 3, "parent-1")

	var findings []finding.Finding
	for f := range ch {
		findings = append(findings, f)
	}
	require.NotEmpty(t, findings)
	assert.Equal(t, "Linked: GitHub @alice", findings[0].Title)
}
