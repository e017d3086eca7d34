package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

func collectUsernames(t *testing.T, ch <-chan finding.Finding) []string {
	t.Helper()
	var out []string
	for f := range ch {
		u, _ := f.Data["username"].(string)
		out = append(out, u)
		assert.Equal(t, finding.TypeUsername, f.Type)
		assert.Equal(t, "parent-1", f.ParentID)
	}
	return out
}

func TestUsernameExtractor_DottedLocalPart(t *testing.T) {
	u := NewUsernameExtractor()
	ch := u.Run(context.Background(), probe.EmailSeed("jane.doe@example.com"), 1, "parent-1")
	usernames := collectUsernames(t, ch)

	assert.NotContains(t, usernames, "jane.doe")
	assert.Contains(t, usernames, "janedoe")
	assert.Contains(t, usernames, "jane_doe")
	assert.Contains(t, usernames, "jdoe")
}

func TestUsernameExtractor_TrailingDigitsStripped(t *testing.T) {
	u := NewUsernameExtractor()
	ch := u.Run(context.Background(), probe.EmailSeed("alice123@example.com"), 1, "parent-1")
	usernames := collectUsernames(t, ch)

	assert.Contains(t, usernames, "alice123")
	assert.Contains(t, usernames, "alice")
}

func TestUsernameExtractor_IgnoresNonEmailSeed(t *testing.T) {
	u := NewUsernameExtractor()
	ch := u.Run(context.Background(), probe.UsernameSeed("alice"), 1, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count)
}

func TestUsernameExtractor_RejectsShapeViolations(t *testing.T) {
	u := NewUsernameExtractor()
	// local part produces a candidate with a dot left in one variant but
	// the shape regex (^[a-z0-9_]+$) should filter anything with a dot.
	ch := u.Run(context.Background(), probe.EmailSeed("a.b@example.com"), 1, "parent-1")
	usernames := collectUsernames(t, ch)

	for _, u := range usernames {
		assert.Regexp(t, `^[a-z0-9_]+$`, u)
	}
}
