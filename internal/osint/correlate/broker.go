// Package correlate implements the hop-3 correlation probes. They consume
// an encoded aggregate seed (the accumulated per-scan state) rather than a
// raw identifier. The data-broker and location probes reason purely over
// what earlier hops already discovered and make no network calls; the
// connected-accounts probe also issues existence checks on GitHub, Reddit,
// GitLab and Keybase for up to three discovered usernames.
package correlate

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

// brokerEntry describes one people-search site's catalogue record.
type brokerEntry struct {
	name            string
	searchURLTmpl   string
	optOutURL       string
	dataTypes       []string
	severity        finding.Severity
}

// dataBrokers is the static catalogue of people-search sites the enumerator
// reasons over. It never calls any of these endpoints; most block automated
// access, so the probe only generates the search and opt-out links.
var dataBrokers = []brokerEntry{
	{"Spokeo", "https://www.spokeo.com/search?q=%s", "https://www.spokeo.com/optout",
		[]string{"name", "address", "phone", "email", "social profiles"}, finding.SeverityHigh},
	{"BeenVerified", "https://www.beenverified.com/f/search?email=%s", "https://www.beenverified.com/app/optout/search",
		[]string{"name", "address", "phone", "relatives", "criminal records"}, finding.SeverityHigh},
	{"WhitePages", "https://www.whitepages.com/search?q=%s", "https://www.whitepages.com/suppression-requests",
		[]string{"name", "address", "phone", "relatives"}, finding.SeverityHigh},
	{"TruePeopleSearch", "https://www.truepeoplesearch.com/results?email=%s", "https://www.truepeoplesearch.com/removal",
		[]string{"name", "address", "phone", "associates"}, finding.SeverityHigh},
	{"FastPeopleSearch", "https://www.fastpeoplesearch.com/search?q=%s", "https://www.fastpeoplesearch.com/removal",
		[]string{"name", "address", "phone"}, finding.SeverityMedium},
	{"Intelius", "https://www.intelius.com/search?q=%s", "https://www.intelius.com/opt-out",
		[]string{"name", "address", "phone", "criminal records", "court records"}, finding.SeverityHigh},
	{"PeopleFinder", "https://www.peoplefinder.com/search?q=%s", "https://www.peoplefinder.com/optout",
		[]string{"name", "address", "phone", "relatives"}, finding.SeverityMedium},
	{"Radaris", "https://radaris.com/search?email=%s", "https://radaris.com/page/how-to-remove",
		[]string{"name", "address", "phone", "property records", "social profiles"}, finding.SeverityHigh},
	{"USSearch", "https://www.ussearch.com/search?q=%s", "https://www.ussearch.com/opt-out",
		[]string{"name", "address", "phone", "criminal records"}, finding.SeverityMedium},
	{"ThatsThem", "https://thatsthem.com/email/%s", "https://thatsthem.com/optout",
		[]string{"name", "address", "phone", "email"}, finding.SeverityMedium},
	{"Pipl", "https://pipl.com/search/?q=%s", "https://pipl.com/personal-information-removal-request",
		[]string{"name", "address", "email", "social profiles", "photos"}, finding.SeverityHigh},
	{"PeekYou", "https://www.peekyou.com/search?q=%s", "https://www.peekyou.com/about/contact/optout",
		[]string{"name", "social profiles", "photos", "web presence"}, finding.SeverityMedium},
}

type brokerInfo struct {
	Name        string   `json:"name"`
	SearchURL   string   `json:"search_url"`
	OptOutURL   string   `json:"opt_out_url"`
	DataTypes   []string `json:"data_types"`
}

// DataBrokerEnumerator is a pure-generator correlation probe: it never
// calls a broker, it only URL-encodes the seed email into each template
// and reports the catalogue.
type DataBrokerEnumerator struct{}

// NewDataBrokerEnumerator returns a ready DataBrokerEnumerator.
func NewDataBrokerEnumerator() DataBrokerEnumerator { return DataBrokerEnumerator{} }

func (DataBrokerEnumerator) Name() string { return "Data Broker Warning" }
func (DataBrokerEnumerator) Description() string {
	return "Check for exposure on people-search sites"
}

func (d DataBrokerEnumerator) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
	out := make(chan finding.Finding)
	go func() {
		defer close(out)
		defer probe.Recover(d.Name())
		if sd.Kind != probe.KindAggregate || sd.Aggregate == nil {
			return
		}
		email := seedEmail(sd)
		if email == "" {
			return
		}
		d.emit(ctx, out, email, parentID)
	}()
	return out
}

func (d DataBrokerEnumerator) emit(ctx context.Context, out chan<- finding.Finding, email, parentID string) {
	b := finding.NewBuilder("Data Broker Analysis")
	encoded := url.QueryEscape(strings.ToLower(strings.TrimSpace(email)))

	warn := b.New(finding.TypeBreach, finding.SeverityHigh,
		"Data Broker Exposure Warning",
		fmt.Sprintf("Your information is likely listed on %d people-search sites", len(dataBrokers))).
		WithData(map[string]any{
			"broker_count": len(dataBrokers),
			"warning":      "These sites aggregate public records and may expose your personal information",
			"recommendation": "Consider opting out from each site",
		}).
		WithParent(parentID, "exposed on")
	if !sendFinding(ctx, out, warn) {
		return
	}

	var highRisk, mediumRisk []brokerInfo
	for _, broker := range dataBrokers {
		info := brokerInfo{
			Name:      broker.name,
			SearchURL: fmt.Sprintf(broker.searchURLTmpl, encoded),
			OptOutURL: broker.optOutURL,
			DataTypes: broker.dataTypes,
		}
		if broker.severity == finding.SeverityHigh {
			highRisk = append(highRisk, info)
		} else {
			mediumRisk = append(mediumRisk, info)
		}
	}

	if len(highRisk) > 0 {
		f := b.New(finding.TypeBreach, finding.SeverityHigh,
			fmt.Sprintf("High-Risk Brokers: %d sites", len(highRisk)),
			"Sites with extensive personal data collection").
			WithData(map[string]any{
				"brokers":         highRisk,
				"risk_level":      "high",
				"action_required": "Opt-out recommended",
			}).
			WithParent(parentID, "exposed on")
		if !sendFinding(ctx, out, f) {
			return
		}
	}

	if len(mediumRisk) > 0 {
		f := b.New(finding.TypeBreach, finding.SeverityMedium,
			fmt.Sprintf("Other Brokers: %d sites", len(mediumRisk)),
			"Additional people-search sites").
			WithData(map[string]any{
				"brokers":    mediumRisk,
				"risk_level": "medium",
			}).
			WithParent(parentID, "listed on")
		if !sendFinding(ctx, out, f) {
			return
		}
	}

	optOuts := make([]map[string]string, 0, len(dataBrokers))
	for _, broker := range dataBrokers {
		optOuts = append(optOuts, map[string]string{"name": broker.name, "url": broker.optOutURL})
	}

	summary := b.New(finding.TypePersonalInfo, finding.SeverityLow,
		"Opt-Out Links Available",
		fmt.Sprintf("Direct removal links for %d data brokers", len(optOuts))).
		WithData(map[string]any{
			"opt_out_links": optOuts,
			"instructions":  "Visit each link to request removal of your data",
			"note":          "Removal may take 30-60 days per site",
		}).
		WithParent(parentID, "remove from")
	sendFinding(ctx, out, summary)
}

func seedEmail(sd probe.Seed) string {
	if sd.Aggregate == nil {
		return ""
	}
	return sd.Aggregate.SeedEmail
}

func sendFinding(ctx context.Context, out chan<- finding.Finding, f finding.Finding) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}
