package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

func TestDorkPatterns_IncludesEmailInEveryQuery(t *testing.T) {
	patterns := dorkPatterns("person@example.com")
	assert.NotEmpty(t, patterns)
	for _, p := range patterns {
		assert.Contains(t, p.query, `"person@example.com"`)
	}
}

func TestDorkPatterns_DataDumpsIsCritical(t *testing.T) {
	patterns := dorkPatterns("person@example.com")
	var found bool
	for _, p := range patterns {
		if p.category == "Data Dumps" {
			found = true
			assert.Equal(t, finding.SeverityCritical, p.severity)
		}
	}
	assert.True(t, found)
}

func TestDdgResultPattern_ExtractsLinkAndTitle(t *testing.T) {
	html := `<a rel="nofollow" class="result__a" href="https://example.com/doc.pdf">Leaked Resume</a>`
	m := ddgResultPattern.FindStringSubmatch(html)
	if assert.NotNil(t, m) {
		assert.Equal(t, "https://example.com/doc.pdf", m[1])
		assert.Equal(t, "Leaked Resume", m[2])
	}
}

func TestDocumentSearch_Run_IgnoresNonEmailSeed(t *testing.T) {
	d := NewDocumentSearch(httpx.New(httpx.Policy{}))
	ch := d.Run(context.Background(), probe.UsernameSeed("alice"), 1, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count)
}
