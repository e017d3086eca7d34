package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danieljcheung/trace/internal/osint/finding"
)

func TestAddUsername_DedupesAndRejectsShort(t *testing.T) {
	s := New("person@example.com")

	assert.True(t, s.AddUsername("Alice"))
	assert.False(t, s.AddUsername("alice"), "must dedupe case-insensitively")
	assert.False(t, s.AddUsername("ab"), "must reject usernames under 3 chars")

	assert.Equal(t, []string{"alice"}, s.Usernames())
}

func TestUsernames_PreservesInsertionOrder(t *testing.T) {
	s := New("person@example.com")
	s.AddUsername("zed")
	s.AddUsername("alice")
	s.AddUsername("mike")

	assert.Equal(t, []string{"zed", "alice", "mike"}, s.Usernames())
}

func TestAddAccount_AlsoRegistersUsername(t *testing.T) {
	s := New("person@example.com")
	s.AddAccount(FoundAccount{Platform: "github", Username: "alice", URL: "https://github.com/alice"})

	assert.Equal(t, 1, s.AccountCount())
	assert.Equal(t, []string{"alice"}, s.Usernames())
}

func TestURLs_Deduplicates(t *testing.T) {
	s := New("person@example.com")
	s.AddURL("https://example.com/a")
	s.AddURL("https://example.com/a")
	s.AddURL("https://example.com/b")
	s.AddURL("")

	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, s.URLs())
}

func TestRecordFinding_PreservesOrder(t *testing.T) {
	s := New("person@example.com")
	b := finding.NewBuilder("probe")
	f1 := b.New(finding.TypeAccount, finding.SeverityLow, "first", "")
	f2 := b.New(finding.TypeAccount, finding.SeverityLow, "second", "")
	s.RecordFinding(f1)
	s.RecordFinding(f2)

	got := s.Findings()
	assert.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Title)
	assert.Equal(t, "second", got[1].Title)
}

func TestAddBio_IgnoresBlank(t *testing.T) {
	s := New("person@example.com")
	s.AddBio("  ")
	s.AddBio("real bio")
	assert.Equal(t, []string{"real bio"}, s.Bios())
}
