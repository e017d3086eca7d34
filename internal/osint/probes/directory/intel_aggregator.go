package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

var leakUsernamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([a-zA-Z0-9_.-]{3,30}):[\w$./]{6,}`),
	regexp.MustCompile(`(?i)user(?:name)?[=:]\s*([a-zA-Z0-9_.-]{3,30})`),
	regexp.MustCompile(`(?i)login[=:\s]+([a-zA-Z0-9_.-]{3,30})`),
	regexp.MustCompile(`@([a-zA-Z0-9_]{3,30})`),
}

var leakUsernameStopwords = map[string]struct{}{
	"password": {}, "admin": {}, "user": {}, "login": {}, "email": {}, "null": {}, "undefined": {},
}

var allDigitsPattern = regexp.MustCompile(`^[\d.]+$`)

func extractLeakUsernames(text string) []string {
	seen := make(map[string]struct{})
	for _, re := range leakUsernamePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			candidate := m[1]
			lower := strings.ToLower(candidate)
			if _, stop := leakUsernameStopwords[lower]; stop {
				continue
			}
			if allDigitsPattern.MatchString(candidate) {
				continue
			}
			seen[candidate] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for u := range seen {
		out = append(out, u)
		if len(out) == 20 {
			break
		}
	}
	return out
}

// IntelAggregatorSearch queries an intelligence-aggregator-style phonebook
// API for selectors (usernames, identifiers) associated with the seed
// email across indexed leak and paste data.
type IntelAggregatorSearch struct {
	client *httpx.Client
}

// NewIntelAggregatorSearch returns a probe issuing requests through client.
func NewIntelAggregatorSearch(client *httpx.Client) IntelAggregatorSearch {
	return IntelAggregatorSearch{client: client}
}

func (IntelAggregatorSearch) Name() string        { return "Intelligence Aggregator Search" }
func (IntelAggregatorSearch) Description() string { return "Search leaked databases and paste sites" }

func (s IntelAggregatorSearch) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
	out := make(chan finding.Finding)
	go func() {
		defer close(out)
		defer probe.Recover(s.Name())
		if sd.Kind != probe.KindEmail {
			return
		}
		email := strings.ToLower(strings.TrimSpace(sd.Email))
		if !strings.Contains(email, "@") {
			return
		}
		s.emit(ctx, out, email, parentID)
	}()
	return out
}

func (s IntelAggregatorSearch) emit(ctx context.Context, out chan<- finding.Finding, email, parentID string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://2.intelx.io/phonebook/search?term="+url.QueryEscape(email)+"&maxresults=100&media=0&target=1", nil)
	if err != nil {
		return
	}
	resp, outcome, err := s.client.Do(ctx, req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return
	}

	var body struct {
		Selectors []struct {
			SelectorValue string `json:"selectorvalue"`
			SelectorTypeH string `json:"selectortypeh"`
		} `json:"selectors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return
	}

	discovered := make(map[string]struct{})
	emailPrefix := email[:strings.IndexByte(email, '@')]
	for _, sel := range body.Selectors {
		if sel.SelectorTypeH == "Username" || sel.SelectorTypeH == "User" {
			if sel.SelectorValue != "" && sel.SelectorValue != email {
				discovered[sel.SelectorValue] = struct{}{}
			}
		}
		for _, u := range extractLeakUsernames(sel.SelectorValue) {
			discovered[u] = struct{}{}
		}
	}
	delete(discovered, email)
	delete(discovered, emailPrefix)

	total := len(body.Selectors)

	b := finding.NewBuilder("Intelligence Aggregator Search")
	i := 0
	for username := range discovered {
		if i >= 10 {
			break
		}
		i++
		f := b.New(finding.TypeUsername, finding.SeverityHigh,
			"Username Discovered: "+username,
			"Found in leaked database records").
			WithData(map[string]any{
				"username":         username,
				"discovery_method": "intel_aggregator_leak_search",
				"confidence":       "medium",
				"note":             "Extracted from breach/paste data",
			}).
			WithParent(parentID, "discovered username")
		if !sendFinding(ctx, out, f) {
			return
		}
	}

	if total > 0 {
		names := make([]string, 0, len(discovered))
		for u := range discovered {
			names = append(names, u)
		}
		summary := b.New(finding.TypeBreach, finding.SeverityHigh,
			fmt.Sprintf("Intelligence Aggregator: %d Records Found", total),
			"Email found in leaked databases/paste sites").
			WithData(map[string]any{
				"total_records":        total,
				"discovered_usernames": names,
				"remediation":          "Check for leaked credentials; change passwords",
			}).
			WithParent(parentID, "found in")
		sendFinding(ctx, out, summary)
	} else if len(discovered) > 0 {
		names := make([]string, 0, len(discovered))
		for u := range discovered {
			names = append(names, u)
		}
		summary := b.New(finding.TypePersonalInfo, finding.SeverityMedium,
			fmt.Sprintf("Intelligence Aggregator: %d Usernames Discovered", len(discovered)),
			"Associated usernames found in leak data").
			WithData(map[string]any{"usernames": names}).
			WithParent(parentID, "usernames found")
		sendFinding(ctx, out, summary)
	}
}
