package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danieljcheung/trace/internal/osint/httpx"
)

func TestDefaultRegistry_WiresEveryHop(t *testing.T) {
	registry := defaultRegistry(httpx.New(httpx.Policy{}))

	assert.Len(t, registry.Hop1, 11)
	assert.Len(t, registry.Hop2, 5)
	assert.Len(t, registry.Hop3, 3)
}
