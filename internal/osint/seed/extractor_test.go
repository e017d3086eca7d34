package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danieljcheung/trace/internal/osint/finding"
)

func TestExtractor_Observe_Username(t *testing.T) {
	s := New("person@example.com")
	e := NewExtractor()

	f := finding.NewBuilder("probe").New(finding.TypeUsername, finding.SeverityLow, "Username: alice", "").
		WithData(map[string]any{"username": "alice"})
	e.Observe(s, f)

	assert.Equal(t, []string{"alice"}, s.Usernames())
}

func TestExtractor_Observe_Location(t *testing.T) {
	s := New("person@example.com")
	e := NewExtractor()

	f := finding.NewBuilder("probe").New(finding.TypePersonalInfo, finding.SeverityMedium, "Location: Seattle", "").
		WithData(map[string]any{"location": "Seattle", "source": "twitter_profile", "confidence": 0.8})
	e.Observe(s, f)

	locs := s.Locations()
	assert.Len(t, locs, 1)
	assert.Equal(t, "Seattle", locs[0].Location)
	assert.Equal(t, "twitter_profile", locs[0].SourceType)
	assert.Equal(t, 0.8, locs[0].Confidence)
}

func TestExtractor_Observe_LocationDefaultsConfidence(t *testing.T) {
	s := New("person@example.com")
	e := NewExtractor()

	f := finding.NewBuilder("probe").New(finding.TypePersonalInfo, finding.SeverityMedium, "Location", "").
		WithData(map[string]any{"location": "Austin"})
	e.Observe(s, f)

	locs := s.Locations()
	assert.Len(t, locs, 1)
	assert.Equal(t, 0.5, locs[0].Confidence)
	assert.Equal(t, "unknown", locs[0].SourceType)
}

func TestExtractor_Observe_Account(t *testing.T) {
	s := New("person@example.com")
	e := NewExtractor()

	f := finding.NewBuilder("probe").New(finding.TypeAccount, finding.SeverityMedium, "GitHub: alice", "").
		WithData(map[string]any{"platform": "github", "username": "alice"}).
		WithSourceURL("https://github.com/alice")
	e.Observe(s, f)

	accounts := s.Accounts()
	assert.Len(t, accounts, 1)
	assert.Equal(t, "github", accounts[0].Platform)
	assert.Equal(t, "alice", accounts[0].Username)
	assert.Contains(t, s.Usernames(), "alice")
}

func TestExtractor_Observe_URLFallsBackToSourceURL(t *testing.T) {
	s := New("person@example.com")
	e := NewExtractor()

	f := finding.NewBuilder("probe").New(finding.TypeAccount, finding.SeverityLow, "t", "d").
		WithSourceURL("https://example.com/profile")
	e.Observe(s, f)

	assert.Equal(t, []string{"https://example.com/profile"}, s.URLs())
}

func TestExtractor_Observe_Bio(t *testing.T) {
	s := New("person@example.com")
	e := NewExtractor()

	f := finding.NewBuilder("probe").New(finding.TypePersonalInfo, finding.SeverityLow, "Bio", "").
		WithData(map[string]any{"bio": "loves go"})
	e.Observe(s, f)

	assert.Equal(t, []string{"loves go"}, s.Bios())
}
