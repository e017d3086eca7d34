package audit

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_AddFormatsLevelAndMessage(t *testing.T) {
	l := New()
	l.Add("INFO", "scan started")

	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0], "[INFO]")
	assert.Contains(t, entries[0], "scan started")
}

func TestLog_EntriesPreservesInsertionOrder(t *testing.T) {
	l := New()
	l.Add("INFO", "first")
	l.Add("INFO", "second")
	l.Add("INFO", "third")

	entries := l.Entries()
	require.Len(t, entries, 3)
	assert.Contains(t, entries[0], "first")
	assert.Contains(t, entries[1], "second")
	assert.Contains(t, entries[2], "third")
}

func TestLog_EntriesReturnsACopy(t *testing.T) {
	l := New()
	l.Add("INFO", "one")

	entries := l.Entries()
	entries[0] = "mutated"

	assert.Contains(t, l.Entries()[0], "one")
}

func TestLog_AddIsConcurrencySafe(t *testing.T) {
	l := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Add("INFO", fmt.Sprintf("line-%d", i))
		}(i)
	}
	wg.Wait()

	assert.Len(t, l.Entries(), 50)
}
