package probe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/seed"
)

func TestSeedConstructors(t *testing.T) {
	e := EmailSeed("person@example.com")
	assert.Equal(t, KindEmail, e.Kind)
	assert.Equal(t, "person@example.com", e.Email)

	u := UsernameSeed("alice")
	assert.Equal(t, KindUsername, u.Kind)
	assert.Equal(t, "alice", u.Username)

	p := PlatformUsernameSeed("github", "alice")
	assert.Equal(t, KindPlatformUsername, p.Kind)
	assert.Equal(t, "github", p.Platform)
	assert.Equal(t, "alice", p.Username)

	st := seed.New("person@example.com")
	a := AggregateSeed(st)
	assert.Equal(t, KindAggregate, a.Kind)
	assert.Same(t, st, a.Aggregate)
}

func TestFunc_AdaptsPlainFunction(t *testing.T) {
	called := false
	f := NewFunc("My Probe", "does a thing", func(ctx context.Context, sd Seed, depth int, parentID string) <-chan finding.Finding {
		called = true
		out := make(chan finding.Finding)
		close(out)
		return out
	})

	var p Probe = f
	assert.Equal(t, "My Probe", p.Name())
	assert.Equal(t, "does a thing", p.Description())

	out := p.Run(context.Background(), UsernameSeed("alice"), 1, "parent")
	for range out {
	}
	assert.True(t, called)
}

func TestNewRegistry(t *testing.T) {
	hop1 := []Probe{NewFunc("h1", "", nil)}
	hop2 := []Probe{NewFunc("h2a", "", nil), NewFunc("h2b", "", nil)}
	hop3 := []Probe{}

	r := NewRegistry(hop1, hop2, hop3)
	assert.Len(t, r.Hop1, 1)
	assert.Len(t, r.Hop2, 2)
	assert.Len(t, r.Hop3, 0)
	assert.Equal(t, "h1", r.Hop1[0].Name())
}
