package finding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidUsername(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"ab", true},
		{"a", false},
		{"valid_user.name-123", true},
		{"", false},
		{"this-username-is-definitely-longer-than-thirty-chars", false},
		{"has spaces", false},
		{"has@symbol", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ValidUsername(tc.name), "username=%q", tc.name)
	}
}

func TestBuilder_New(t *testing.T) {
	b := NewBuilder("Test Probe")
	f := b.New(TypeAccount, SeverityMedium, "Title", "Description")

	require.NotEmpty(t, f.ID)
	assert.Equal(t, TypeAccount, f.Type)
	assert.Equal(t, SeverityMedium, f.Severity)
	assert.Equal(t, "Title", f.Title)
	assert.Equal(t, "Description", f.Description)
	assert.Equal(t, "Test Probe", f.Source)
	assert.Empty(t, f.ParentID)
	assert.False(t, f.Timestamp.IsZero())
}

func TestBuilder_New_DistinctIDs(t *testing.T) {
	b := NewBuilder("Test Probe")
	a := b.New(TypeAccount, SeverityLow, "A", "a")
	c := b.New(TypeAccount, SeverityLow, "B", "b")
	assert.NotEqual(t, a.ID, c.ID)
}

func TestWithParent(t *testing.T) {
	f := NewBuilder("p").New(TypeAccount, SeverityLow, "t", "d").WithParent("parent-1", "found on")
	assert.Equal(t, "parent-1", f.ParentID)
	assert.Equal(t, "found on", f.LinkLabel)
}

func TestWithData_Merges(t *testing.T) {
	f := NewBuilder("p").New(TypeAccount, SeverityLow, "t", "d").
		WithData(map[string]any{"a": 1}).
		WithData(map[string]any{"b": 2})
	assert.Equal(t, 1, f.Data["a"])
	assert.Equal(t, 2, f.Data["b"])
}

func TestSet_Chains(t *testing.T) {
	f := NewBuilder("p").New(TypeAccount, SeverityLow, "t", "d").
		Set("key1", "v1").
		Set("key2", "v2")
	assert.Equal(t, "v1", f.Data["key1"])
	assert.Equal(t, "v2", f.Data["key2"])
}

func TestFinding_ImmutableChaining(t *testing.T) {
	base := NewBuilder("p").New(TypeAccount, SeverityLow, "t", "d")
	withParent := base.WithParent("x", "y")
	assert.Empty(t, base.ParentID, "WithParent must not mutate the receiver")
	assert.Equal(t, "x", withParent.ParentID)
}
