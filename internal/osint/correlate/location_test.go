package correlate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/probe"
	"github.com/danieljcheung/trace/internal/osint/seed"
)

func TestLocationAggregator_Run_IgnoresNonAggregateSeed(t *testing.T) {
	l := NewLocationAggregator()
	ch := l.Run(context.Background(), probe.UsernameSeed("alice"), 3, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count)
}

func TestLocationAggregator_Run_NoHintsEmitsNothing(t *testing.T) {
	l := NewLocationAggregator()
	st := seed.New("person@example.com")
	ch := l.Run(context.Background(), probe.AggregateSeed(st), 3, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count)
}

func TestLocationAggregator_Run_CorroboratingHintsWinOverSingleSource(t *testing.T) {
	l := NewLocationAggregator()
	st := seed.New("person@example.com")
	st.AddLocation(seed.LocationHint{Location: "Seattle", Source: "github", SourceType: "code_host_profile", Confidence: 0.9})
	st.AddLocation(seed.LocationHint{Location: "Seattle", Source: "twitter", SourceType: "social_site_profile", Confidence: 0.85})
	st.AddLocation(seed.LocationHint{Location: "Austin", Source: "ip", SourceType: "ip_geolocation", Confidence: 0.3})

	ch := l.Run(context.Background(), probe.AggregateSeed(st), 3, "parent-1")

	var findings []finding.Finding
	for f := range ch {
		findings = append(findings, f)
	}
	require.NotEmpty(t, findings)
	assert.Contains(t, findings[0].Title, "Seattle")
}

func TestWeightedConfidence_UnknownSourceTypeFallsBackToUnknownWeight(t *testing.T) {
	samples := []locationSample{{sourceType: "totally_made_up", confidence: 1.0}}
	got := weightedConfidence(samples)
	assert.Equal(t, sourceWeights["unknown"]*1.0/sourceWeights["unknown"], got)
}

func TestNormalizeLocation_ExpandsKnownAbbreviation(t *testing.T) {
	assert.Equal(t, "san francisco", normalizeLocation("SF"))
}

func TestSplitCityRegion_SplitsOnComma(t *testing.T) {
	city, region := splitCityRegion("seattle, wa")
	assert.Equal(t, "seattle", city)
	assert.Equal(t, "wa", region)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "San Francisco", titleCase("san francisco"))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.88, round2(0.8767))
}
