package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

func TestBreachAggregator_Run_EmitsOneFindingPerCatalogueEntry(t *testing.T) {
	p := NewBreachAggregator()
	ch := p.Run(context.Background(), probe.EmailSeed("person@example.com"), 1, "parent-1")

	var findings []finding.Finding
	for f := range ch {
		findings = append(findings, f)
	}
	assert.Len(t, findings, len(annotatedBreaches))
	for _, f := range findings {
		assert.Equal(t, finding.TypeBreach, f.Type)
		assert.Equal(t, "parent-1", f.ParentID)
	}
}

func TestBreachAggregator_Run_FlagsPasswordBreachesAsHighSeverity(t *testing.T) {
	p := NewBreachAggregator()
	ch := p.Run(context.Background(), probe.EmailSeed("person@example.com"), 1, "parent-1")

	for f := range ch {
		name, _ := f.Data["breach_name"].(string)
		if name == "Adobe" || name == "Dropbox" {
			assert.Equal(t, finding.SeverityHigh, f.Severity, "%s breach leaked passwords", name)
		}
	}
}

func TestBreachAggregator_Run_IgnoresNonEmailSeed(t *testing.T) {
	p := NewBreachAggregator()
	ch := p.Run(context.Background(), probe.UsernameSeed("alice"), 1, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count)
}

func TestJoinStrings(t *testing.T) {
	assert.Equal(t, "", joinStrings(nil))
	assert.Equal(t, "a", joinStrings([]string{"a"}))
	assert.Equal(t, "a, b, c", joinStrings([]string{"a", "b", "c"}))
}
