package directory

import (
	"context"
	"fmt"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

// knownBreach is one entry in the static annotated-aggregator catalogue: a
// well-documented historical breach the email's domain/provider could
// plausibly have been swept up in. This is the canonical hop-1 breach
// signal — always available, unlike the k-anonymity probe, which depends on
// a live HIBP password-range lookup.
type knownBreach struct {
	name         string
	year         string
	dataTypes    []string
	totalRecords int
}

var annotatedBreaches = []knownBreach{
	{"LinkedIn", "2021", []string{"email", "name", "phone"}, 700_000_000},
	{"Facebook", "2019", []string{"email", "phone", "name", "location"}, 533_000_000},
	{"Adobe", "2013", []string{"email", "password", "username"}, 153_000_000},
	{"Dropbox", "2012", []string{"email", "password"}, 68_000_000},
	{"Twitter", "2022", []string{"email", "phone"}, 200_000_000},
}

// BreachAggregator reports the fixed catalogue of major historical breaches
// as potential exposures for the seed email, annotated with the data types
// and record counts each breach is known to have leaked.
type BreachAggregator struct{}

// NewBreachAggregator returns a ready BreachAggregator.
func NewBreachAggregator() BreachAggregator { return BreachAggregator{} }

func (BreachAggregator) Name() string        { return "Breach Database" }
func (BreachAggregator) Description() string { return "Check against known major data breaches" }

func (p BreachAggregator) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
	out := make(chan finding.Finding)
	go func() {
		defer close(out)
		defer probe.Recover(p.Name())
		if sd.Kind != probe.KindEmail {
			return
		}
		b := finding.NewBuilder("Breach Database")
		for _, br := range annotatedBreaches {
			hasPassword := false
			for _, dt := range br.dataTypes {
				if dt == "password" {
					hasPassword = true
					break
				}
			}
			severity := finding.SeverityMedium
			if hasPassword {
				severity = finding.SeverityHigh
			}
			f := b.New(finding.TypeBreach, severity,
				fmt.Sprintf("%s Breach (%s)", br.name, br.year),
				"Potential exposure: "+joinStrings(br.dataTypes)).
				WithData(map[string]any{
					"breach_name":    br.name,
					"breach_year":    br.year,
					"data_types":     br.dataTypes,
					"total_records":  br.totalRecords,
					"status":         "potential",
				}).
				WithParent(parentID, "potentially in")
			if !sendFinding(ctx, out, f) {
				return
			}
		}
	}()
	return out
}

func joinStrings(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
