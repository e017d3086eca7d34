package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

func TestExtractLeakUsernames_FindsCandidatesAndDropsStopwords(t *testing.T) {
	text := "leak line: alice_dev:hunter22 and username=bobsmith and admin:hunter22"
	got := extractLeakUsernames(text)
	assert.Contains(t, got, "alice_dev")
	assert.Contains(t, got, "bobsmith")
	assert.NotContains(t, got, "admin")
}

func TestExtractLeakUsernames_DropsAllDigitCandidates(t *testing.T) {
	text := "user=123456"
	got := extractLeakUsernames(text)
	assert.NotContains(t, got, "123456")
}

func TestExtractLeakUsernames_CapsAtTwenty(t *testing.T) {
	text := ""
	for i := 0; i < 30; i++ {
		text += "user=candidate" + string(rune('a'+i%26)) + string(rune('0'+i%10)) + "x "
	}
	got := extractLeakUsernames(text)
	assert.LessOrEqual(t, len(got), 20)
}

func TestIntelAggregatorSearch_Run_IgnoresNonEmailSeed(t *testing.T) {
	s := NewIntelAggregatorSearch(httpx.New(httpx.Policy{}))
	ch := s.Run(context.Background(), probe.UsernameSeed("alice"), 1, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count)
}
