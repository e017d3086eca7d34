package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

func TestTopLanguages_OrdersByCountThenName(t *testing.T) {
	langs := map[string]int{"Go": 3, "Python": 5, "Rust": 3, "TypeScript": 1}
	got := topLanguages(langs, 3)
	assert.Equal(t, []string{"Python", "Go", "Rust"}, got)
}

func TestTopLanguages_TruncatesToN(t *testing.T) {
	langs := map[string]int{"A": 1, "B": 2, "C": 3, "D": 4}
	got := topLanguages(langs, 2)
	assert.Len(t, got, 2)
	assert.Equal(t, []string{"D", "C"}, got)
}

func TestCodeHostProfileReader_Run_IgnoresNonUsernameSeed(t *testing.T) {
	c := NewCodeHostProfileReader(httpx.New(httpx.Policy{}))
	ch := c.Run(context.Background(), probe.EmailSeed("person@example.com"), 3, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count)
}
