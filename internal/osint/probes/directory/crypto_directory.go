package directory

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

var keyIDPattern = regexp.MustCompile(`[A-Fa-f0-9]{8,16}`)

var keybasePlatformMap = map[string]string{
	"twitter":          "Twitter",
	"github":           "GitHub",
	"reddit":           "Reddit",
	"hackernews":       "HackerNews",
	"facebook":         "Facebook",
	"generic_web_site": "Website",
	"dns":              "Domain",
	"mastodon":         "Mastodon",
}

var importantKeybasePlatforms = map[string]struct{}{
	"Twitter": {}, "GitHub": {}, "Reddit": {}, "HackerNews": {},
}

// CryptoProofDirectoryLookup queries PGP keyservers and Keybase for the
// seed email. Keybase identities carry cryptographically verified proofs of
// linked accounts, not guesses, so they are emitted at high confidence.
type CryptoProofDirectoryLookup struct {
	client *httpx.Client
}

// NewCryptoProofDirectoryLookup returns a probe issuing requests through
// client.
func NewCryptoProofDirectoryLookup(client *httpx.Client) CryptoProofDirectoryLookup {
	return CryptoProofDirectoryLookup{client: client}
}

func (CryptoProofDirectoryLookup) Name() string { return "Cryptographic Identity Directory" }
func (CryptoProofDirectoryLookup) Description() string {
	return "Search PGP keyservers and Keybase for verified identity proofs"
}

func (c CryptoProofDirectoryLookup) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
	out := make(chan finding.Finding)
	go func() {
		defer close(out)
		defer probe.Recover(c.Name())
		if sd.Kind != probe.KindEmail {
			return
		}
		email := strings.ToLower(strings.TrimSpace(sd.Email))
		if !strings.Contains(email, "@") {
			return
		}
		c.emitPGP(ctx, out, email, parentID)
		if ctx.Err() != nil {
			return
		}
		c.emitKeybase(ctx, out, email, parentID)
	}()
	return out
}

func (c CryptoProofDirectoryLookup) emitPGP(ctx context.Context, out chan<- finding.Finding, email, parentID string) {
	b := finding.NewBuilder("keys.openpgp.org")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://keys.openpgp.org/vks/v1/by-email/"+url.PathEscape(email), nil)
	if err == nil {
		if resp, outcome, err := c.client.Do(ctx, req); err == nil {
			resp.Body.Close()
			if outcome == httpx.OutcomeOK {
				f := b.New(finding.TypeAccount, finding.SeverityLow,
					"PGP Key (OpenPGP)", "Public PGP key registered with this email").
					WithSourceURL("https://keys.openpgp.org/search?q=" + url.QueryEscape(email)).
					WithData(map[string]any{"keyserver": "keys.openpgp.org"}).
					WithParent(parentID, "has PGP key")
				if !sendFinding(ctx, out, f) {
					return
				}
			}
		}
	}
	if ctx.Err() != nil {
		return
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet,
		"https://keyserver.ubuntu.com/pks/lookup?search="+url.QueryEscape(email)+"&op=index", nil)
	if err == nil {
		if resp, outcome, err := c.client.Do(ctx, req); err == nil {
			defer resp.Body.Close()
			if outcome == httpx.OutcomeOK {
				body := readLimited(resp)
				if strings.Contains(strings.ToLower(body), "pub") {
					ids := dedupeKeyIDs(keyIDPattern.FindAllString(body, -1))
					if len(ids) > 0 {
						f := finding.NewBuilder("Ubuntu Keyserver").New(finding.TypeAccount, finding.SeverityLow,
							"PGP Key (SKS)", "Key ID(s): "+strings.Join(ids, ", ")).
							WithSourceURL("https://keyserver.ubuntu.com/pks/lookup?search=" + url.QueryEscape(email) + "&op=index").
							WithData(map[string]any{"keyserver": "keyserver.ubuntu.com", "key_ids": ids}).
							WithParent(parentID, "has PGP key")
						sendFinding(ctx, out, f)
					}
				}
			}
		}
	}
}

func dedupeKeyIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var out []string
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if len(out) == 3 {
			break
		}
	}
	return out
}

func (c CryptoProofDirectoryLookup) emitKeybase(ctx context.Context, out chan<- finding.Finding, email, parentID string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://keybase.io/_/api/1.0/user/lookup.json?email="+url.QueryEscape(email), nil)
	if err != nil {
		return
	}
	resp, outcome, err := c.client.Do(ctx, req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return
	}

	var body struct {
		Status struct {
			Code int `json:"code"`
		} `json:"status"`
		Them json.RawMessage `json:"them"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Status.Code != 0 {
		return
	}

	var users []keybaseUser
	if err := json.Unmarshal(body.Them, &users); err != nil {
		var single keybaseUser
		if err := json.Unmarshal(body.Them, &single); err != nil {
			return
		}
		users = []keybaseUser{single}
	}

	b := finding.NewBuilder("Keybase")
	for _, user := range users {
		username := user.Basics.Username
		if username == "" {
			continue
		}
		profileURL := "https://keybase.io/" + username

		identity := b.New(finding.TypeUsername, finding.SeverityHigh,
			"Keybase Username: "+username, "Verified Keybase identity found").
			WithSourceURL(profileURL).
			WithData(map[string]any{
				"username":         username,
				"platform":         "Keybase",
				"discovery_method": "keybase_email_lookup",
				"confidence":       "verified",
			}).
			WithParent(parentID, "keybase identity")
		if !sendFinding(ctx, out, identity) {
			return
		}

		var verified []map[string]any
		var platforms []string
		for _, proof := range user.ProofsSummary.All {
			if proof.State != 1 || proof.Nametag == "" {
				continue
			}
			platform := keybasePlatformMap[proof.ProofType]
			if platform == "" {
				platform = proof.ProofType
			}
			verified = append(verified, map[string]any{
				"platform": platform, "username": proof.Nametag, "url": proof.ServiceURL, "verified": true,
			})
			platforms = append(platforms, platform)

			if _, ok := importantKeybasePlatforms[platform]; ok {
				f := finding.NewBuilder("Keybase Proof").New(finding.TypeUsername, finding.SeverityHigh,
					platform+" Username: "+proof.Nametag,
					"Cryptographically verified via Keybase").
					WithSourceURL(firstNonEmpty(proof.ServiceURL, profileURL)).
					WithData(map[string]any{
						"username":          proof.Nametag,
						"platform":          platform,
						"discovery_method":  "keybase_proof",
						"confidence":        "verified",
						"keybase_username":  username,
					}).
					WithParent(identity.ID, "verified account")
				if !sendFinding(ctx, out, f) {
					return
				}
			}
		}

		if len(verified) > 0 {
			summary := b.New(finding.TypeAccount, finding.SeverityMedium,
				"Keybase Verified Accounts: "+strconv.Itoa(len(verified)),
				"Verified on: "+strings.Join(dedupeStrings(platforms), ", ")).
				WithData(map[string]any{
					"accounts":         verified,
					"keybase_username": username,
					"note":             "All accounts cryptographically verified",
				}).
				WithParent(identity.ID, "verified links")
			if !sendFinding(ctx, out, summary) {
				return
			}
		}

		if full := user.Profile.FullName; full != "" {
			f := b.New(finding.TypePersonalInfo, finding.SeverityHigh,
				"Name: "+full, "Name from Keybase profile").
				WithData(map[string]any{"name": full, "source": "keybase_profile", "confidence": "high"}).
				WithParent(identity.ID, "name")
			if !sendFinding(ctx, out, f) {
				return
			}
		}
		if loc := user.Profile.Location; loc != "" {
			f := b.New(finding.TypePersonalInfo, finding.SeverityMedium,
				"Location: "+loc, "Location from Keybase profile").
				WithData(map[string]any{
					"location":   loc,
					"source":     "keybase_profile",
					"confidence": 0.7,
				}).
				WithParent(identity.ID, "located in")
			if !sendFinding(ctx, out, f) {
				return
			}
		}
	}
}

type keybaseUser struct {
	Basics struct {
		Username string `json:"username"`
	} `json:"basics"`
	ProofsSummary struct {
		All []struct {
			ProofType  string `json:"proof_type"`
			Nametag    string `json:"nametag"`
			ServiceURL string `json:"service_url"`
			State      int    `json:"state"`
		} `json:"all"`
	} `json:"proofs_summary"`
	Profile struct {
		FullName string `json:"full_name"`
		Location string `json:"location"`
	} `json:"profile"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func dedupeStrings(ss []string) []string {
	seen := make(map[string]struct{}, len(ss))
	var out []string
	for _, s := range ss {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func readLimited(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return string(body)
}
