package correlate

import (
	"context"
	"sort"
	"strings"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/probe"
	"github.com/danieljcheung/trace/internal/osint/seed"
)

// sourceWeights assigns a confidence weight per canonical source_type.
// An unrecognised source_type falls back to the "unknown" weight.
var sourceWeights = map[string]float64{
	"code_host_profile":          0.9,
	"social_site_profile":        0.85,
	"professional_network_profile": 0.95,
	"gravatar_profile":           0.7,
	"keybase_profile":            0.75,
	"subreddit_activity":         0.6,
	"timezone_inference":         0.5,
	"commit_timezone":            0.55,
	"domain_registration":        0.4,
	"ip_geolocation":             0.3,
	"unknown":                    0.3,
}

var abbreviations = map[string]string{
	"sf":  "san francisco",
	"nyc": "new york city",
	"la":  "los angeles",
	"dc":  "washington dc",
	"uk":  "united kingdom",
	"usa": "united states",
	"us":  "united states",
}

type locationSample struct {
	original   string
	source     string
	sourceType string
	confidence float64
}

// LocationAggregator groups the scan's accumulated location hints,
// weights them by source reliability, and surfaces the best-supported
// location plus any competing alternative.
type LocationAggregator struct{}

// NewLocationAggregator returns a ready LocationAggregator.
func NewLocationAggregator() LocationAggregator { return LocationAggregator{} }

func (LocationAggregator) Name() string        { return "Location Analysis" }
func (LocationAggregator) Description() string { return "Aggregate and analyze location data from all sources" }

func (l LocationAggregator) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
	out := make(chan finding.Finding)
	go func() {
		defer close(out)
		defer probe.Recover(l.Name())
		if sd.Kind != probe.KindAggregate || sd.Aggregate == nil {
			return
		}
		l.emit(ctx, out, sd.Aggregate.Locations(), parentID)
	}()
	return out
}

func (l LocationAggregator) emit(ctx context.Context, out chan<- finding.Finding, hints []seed.LocationHint, parentID string) {
	if len(hints) == 0 {
		return
	}

	// Group by city alone rather than by the full "city, region" string:
	// a bare city-level grouping is what lets a region-qualified hint
	// ("San Francisco, CA") and a bare abbreviation ("SF") corroborate
	// each other as the same location instead of splitting into two
	// single-source groups that can never out-score one another.
	groups := make(map[string][]locationSample)
	for _, h := range hints {
		if strings.TrimSpace(h.Location) == "" {
			continue
		}
		normalized := normalizeLocation(h.Location)
		city, _ := splitCityRegion(normalized)
		if city == "" {
			city = normalized
		}
		groups[city] = append(groups[city], locationSample{
			original:   h.Location,
			source:     h.Source,
			sourceType: h.SourceType,
			confidence: h.Confidence,
		})
	}
	if len(groups) == 0 {
		return
	}

	var bestLoc string
	var bestSamples []locationSample
	var bestScore float64

	// Deterministic iteration: sort keys so ties resolve the same way on
	// every run, matching the scorer's "pure function of findings" spirit.
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, loc := range keys {
		samples := groups[loc]
		confidence := weightedConfidence(samples)
		bonus := float64(len(samples)) * 0.1
		if bonus > 0.3 {
			bonus = 0.3
		}
		score := confidence + bonus
		if score > bestScore {
			bestScore = score
			bestLoc = loc
			bestSamples = samples
		}
	}

	if bestLoc == "" || bestScore < 0.3 {
		return
	}

	var level string
	var severity finding.Severity
	switch {
	case bestScore >= 0.8:
		level, severity = "high", finding.SeverityHigh
	case bestScore >= 0.5:
		level, severity = "medium", finding.SeverityMedium
	default:
		level, severity = "low", finding.SeverityLow
	}

	original := bestLoc
	if len(bestSamples) > 0 {
		original = bestSamples[0].original
	}

	sourceNames := make([]string, 0, len(bestSamples))
	for _, s := range bestSamples {
		sourceNames = append(sourceNames, s.source)
	}

	b := finding.NewBuilder("Location Analysis")
	primary := b.New(finding.TypePersonalInfo, severity,
		"Probable Location: "+titleCase(original),
		"Location inferred from multiple sources with "+level+" confidence").
		WithData(map[string]any{
			"location":          original,
			"normalized":        bestLoc,
			"confidence":         round2(bestScore),
			"confidence_level":  level,
			"sources":           sourceNames,
			"source_count":      len(bestSamples),
		}).
		WithParent(parentID, "probably in")
	if !sendFinding(ctx, out, primary) {
		return
	}

	// Any competing group is reported, even a single-source one (e.g. a
	// lone timezone-inference hint): a scan with few corroborating
	// signals is exactly when the analyst most wants to see what else
	// was in the running, not less.
	var alternatives []string
	for _, loc := range keys {
		if loc == bestLoc {
			continue
		}
		if len(groups[loc]) >= 1 {
			alternatives = append(alternatives, titleCase(loc))
		}
		if len(alternatives) == 3 {
			break
		}
	}
	if len(alternatives) == 0 {
		return
	}

	alt := b.New(finding.TypePersonalInfo, finding.SeverityLow,
		"Alternative Locations: "+strings.Join(alternatives, ", "),
		"Other possible locations based on activity").
		WithData(map[string]any{
			"alternatives":     alternatives,
			"primary_location": original,
		}).
		WithParent(parentID, "possibly in")
	sendFinding(ctx, out, alt)
}

func weightedConfidence(samples []locationSample) float64 {
	var totalWeight, weightedSum float64
	for _, s := range samples {
		weight, ok := sourceWeights[s.sourceType]
		if !ok {
			weight = sourceWeights["unknown"]
		}
		weightedSum += weight * s.confidence
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	score := weightedSum / totalWeight
	if score > 1 {
		score = 1
	}
	return score
}

func normalizeLocation(location string) string {
	loc := strings.ToLower(strings.TrimSpace(location))
	for abbr, full := range abbreviations {
		if loc == abbr || strings.HasSuffix(loc, ", "+abbr) {
			loc = strings.ReplaceAll(loc, abbr, full)
		}
	}
	return loc
}

func splitCityRegion(location string) (city, region string) {
	parts := strings.Split(location, ",")
	if len(parts) == 0 {
		return "", ""
	}
	city = strings.TrimSpace(parts[0])
	if len(parts) >= 2 {
		region = strings.TrimSpace(parts[1])
	}
	return city, region
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) == 0 {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
