package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

var nameFromEmailPattern = regexp.MustCompile(`^([a-z]+)\.([a-z]+)$`)

// ReverseLookup queries email-reputation services for a profile summary of
// the seed email: reputation score, breach/credential-leak indicators,
// known social profiles, and disposable-address detection. It also tries a
// low-confidence name guess from the email's local-part shape.
type ReverseLookup struct {
	client *httpx.Client
}

// NewReverseLookup returns a ReverseLookup issuing requests through client.
func NewReverseLookup(client *httpx.Client) ReverseLookup {
	return ReverseLookup{client: client}
}

func (ReverseLookup) Name() string        { return "Reverse Email Lookup" }
func (ReverseLookup) Description() string { return "Find personal information from email address" }

func (r ReverseLookup) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
	out := make(chan finding.Finding)
	go func() {
		defer close(out)
		defer probe.Recover(r.Name())
		if sd.Kind != probe.KindEmail {
			return
		}
		email := strings.ToLower(strings.TrimSpace(sd.Email))
		if !strings.Contains(email, "@") {
			return
		}
		r.emitReputation(ctx, out, email, parentID)
		r.emitDisposable(ctx, out, email, parentID)
		r.emitNameGuess(ctx, out, email, parentID)
	}()
	return out
}

func (r ReverseLookup) emitReputation(ctx context.Context, out chan<- finding.Finding, email, parentID string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://emailrep.io/"+email, nil)
	if err != nil {
		return
	}
	req.Header.Set("Accept", "application/json")
	resp, outcome, err := r.client.Do(ctx, req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return
	}

	var body struct {
		Reputation string `json:"reputation"`
		Suspicious bool   `json:"suspicious"`
		Details    struct {
			Profiles           []string `json:"profiles"`
			Blacklisted        bool     `json:"blacklisted"`
			DataBreach         bool     `json:"data_breach"`
			MaliciousActivity  bool     `json:"malicious_activity"`
			Spam               bool     `json:"spam"`
			FreeProvider       bool     `json:"free_provider"`
			Deliverable        bool     `json:"deliverable"`
			CredentialsLeaked  bool     `json:"credentials_leaked"`
		} `json:"details"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return
	}

	severity := finding.SeverityLow
	switch {
	case body.Suspicious:
		severity = finding.SeverityCritical
	case body.Reputation == "low":
		severity = finding.SeverityMedium
	}

	description := "Email reputation assessment"
	if body.Suspicious {
		description = "SUSPICIOUS - may be compromised"
	}

	b := finding.NewBuilder("EmailRep.io")
	rep := b.New(finding.TypePersonalInfo, severity,
		"Email Reputation: "+titleCaseWord(body.Reputation), description).
		WithSourceURL("https://emailrep.io").
		WithData(map[string]any{
			"reputation":          body.Reputation,
			"suspicious":          body.Suspicious,
			"blacklisted":         body.Details.Blacklisted,
			"data_breach":         body.Details.DataBreach,
			"malicious_activity":  body.Details.MaliciousActivity,
			"spam":                body.Details.Spam,
			"free_provider":       body.Details.FreeProvider,
			"deliverable":         body.Details.Deliverable,
		}).
		WithParent(parentID, "reputation")
	if !sendFinding(ctx, out, rep) {
		return
	}

	if len(body.Details.Profiles) > 0 {
		shown := body.Details.Profiles
		if len(shown) > 5 {
			shown = shown[:5]
		}
		f := b.New(finding.TypeAccount, finding.SeverityMedium,
			"Social Profiles: "+strings.Join(shown, ", "),
			fmt.Sprintf("Email associated with %d platform(s)", len(body.Details.Profiles))).
			WithData(map[string]any{
				"profiles": body.Details.Profiles,
				"count":    len(body.Details.Profiles),
			}).
			WithParent(rep.ID, "profiles on")
		if !sendFinding(ctx, out, f) {
			return
		}
	}

	if body.Details.DataBreach {
		f := b.New(finding.TypeBreach, finding.SeverityHigh,
			"Data Breach Indicator", "Email has appeared in known data breaches").
			Set("remediation", "Change passwords for all accounts using this email").
			WithParent(rep.ID, "breached")
		if !sendFinding(ctx, out, f) {
			return
		}
	}

	if body.Details.CredentialsLeaked {
		f := b.New(finding.TypeBreach, finding.SeverityCritical,
			"Credentials Leaked", "Username/password combinations have been leaked").
			Set("remediation", "URGENT: Change all passwords immediately").
			WithParent(rep.ID, "credentials leaked")
		sendFinding(ctx, out, f)
	}
}

func (r ReverseLookup) emitDisposable(ctx context.Context, out chan<- finding.Finding, email, parentID string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://disify.com/api/email/"+email, nil)
	if err != nil {
		return
	}
	resp, outcome, err := r.client.Do(ctx, req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return
	}

	var body struct {
		Disposable bool `json:"disposable"`
		DNS        bool `json:"dns"`
		Format     bool `json:"format"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || !body.Disposable {
		return
	}

	f := finding.NewBuilder("Disify").New(finding.TypePersonalInfo, finding.SeverityLow,
		"Disposable Email Detected", "This is a temporary/disposable email address").
		WithData(map[string]any{
			"disposable": true,
			"dns":        body.DNS,
			"format":     body.Format,
		}).
		WithParent(parentID, "is disposable")
	sendFinding(ctx, out, f)
}

func (r ReverseLookup) emitNameGuess(ctx context.Context, out chan<- finding.Finding, email, parentID string) {
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return
	}
	local := email[:at]
	m := nameFromEmailPattern.FindStringSubmatch(local)
	if m == nil {
		return
	}
	first, last := titleCaseWord(m[1]), titleCaseWord(m[2])
	if len(first) <= 1 || len(last) <= 2 {
		return
	}
	f := finding.NewBuilder("Email Analysis").New(finding.TypePersonalInfo, finding.SeverityLow,
		"Possible Name: "+first+" "+last,
		"Name pattern detected in email address").
		WithData(map[string]any{
			"first_name": first,
			"last_name":  last,
			"confidence": "low",
			"note":       "Inferred from email format - may not be accurate",
		}).
		WithParent(parentID, "possibly named")
	sendFinding(ctx, out, f)
}

func titleCaseWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
