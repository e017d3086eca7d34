package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

var stealerPlatformByDomain = map[string]string{
	"twitter.com": "Twitter", "x.com": "Twitter", "facebook.com": "Facebook",
	"instagram.com": "Instagram", "linkedin.com": "LinkedIn", "github.com": "GitHub",
	"reddit.com": "Reddit", "discord.com": "Discord", "twitch.tv": "Twitch",
	"steampowered.com": "Steam", "spotify.com": "Spotify", "netflix.com": "Netflix",
	"amazon.com": "Amazon", "paypal.com": "PayPal", "ebay.com": "eBay",
	"dropbox.com": "Dropbox", "google.com": "Google", "gmail.com": "Google",
	"microsoft.com": "Microsoft", "live.com": "Microsoft", "outlook.com": "Microsoft",
	"apple.com": "Apple", "icloud.com": "Apple",
}

func stealerPlatformFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "Unknown"
	}
	host := strings.ToLower(u.Hostname())
	for domain, platform := range stealerPlatformByDomain {
		if strings.Contains(host, domain) {
			return platform
		}
	}
	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return titleCaseWord(parts[len(parts)-2])
	}
	return host
}

// InfostealerLogSearch checks an info-stealer-malware-log index for
// credentials harvested from an infected machine under the seed email —
// a much more severe signal than an ordinary breach, since it implies the
// victim's device itself was compromised.
type InfostealerLogSearch struct {
	client *httpx.Client
}

// NewInfostealerLogSearch returns a probe issuing requests through client.
func NewInfostealerLogSearch(client *httpx.Client) InfostealerLogSearch {
	return InfostealerLogSearch{client: client}
}

func (InfostealerLogSearch) Name() string        { return "Infostealer Log Search" }
func (InfostealerLogSearch) Description() string { return "Search info-stealer malware logs for credentials" }

func (s InfostealerLogSearch) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
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

func (s InfostealerLogSearch) emit(ctx context.Context, out chan<- finding.Finding, email, parentID string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://cavalier.hudsonrock.com/api/json/v2/osint-tools/search-by-email?email="+url.QueryEscape(email), nil)
	if err != nil {
		return
	}
	resp, outcome, err := s.client.Do(ctx, req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return
	}
	if outcome != httpx.OutcomeOK {
		return
	}

	var body struct {
		Stealers []struct {
			ComputerName    string `json:"computer_name"`
			OperatingSystem string `json:"operating_system"`
			DateCompromised string `json:"date_compromised"`
			Credentials     []struct {
				URL      string `json:"url"`
				Username string `json:"username"`
			} `json:"credentials"`
		} `json:"stealers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || len(body.Stealers) == 0 {
		return
	}

	b := finding.NewBuilder("Infostealer Log Search")
	header := b.New(finding.TypeBreach, finding.SeverityCritical,
		fmt.Sprintf("STEALER MALWARE: %d Infection(s)", len(body.Stealers)),
		"Credentials stolen by info-stealer malware").
		WithSourceURL("https://cavalier.hudsonrock.com").
		Set("infection_count", len(body.Stealers)).
		Set("remediation", "URGENT: Change ALL passwords. Scan device for malware. Enable 2FA everywhere.").
		WithParent(parentID, "infected by")
	if !sendFinding(ctx, out, header) {
		return
	}

	discoveredUsernames := make(map[string]struct {
		platform, url string
	})
	compromisedSites := make(map[string]struct{})
	totalCreds := 0

	for _, stealer := range body.Stealers {
		totalCreds += len(stealer.Credentials)
		for _, cred := range stealer.Credentials {
			if cred.URL == "" {
				continue
			}
			platform := stealerPlatformFromURL(cred.URL)
			compromisedSites[platform] = struct{}{}
			if cred.Username != "" && cred.Username != email {
				if _, ok := discoveredUsernames[cred.Username]; !ok {
					discoveredUsernames[cred.Username] = struct{ platform, url string }{platform, cred.URL}
				}
			}
		}

		entry := b.New(finding.TypeBreach, finding.SeverityCritical,
			"Infection: "+stealer.ComputerName,
			fmt.Sprintf("OS: %s | Date: %s", stealer.OperatingSystem, stealer.DateCompromised)).
			WithData(map[string]any{
				"computer_name":      stealer.ComputerName,
				"operating_system":   stealer.OperatingSystem,
				"date_compromised":   stealer.DateCompromised,
				"credentials_stolen": len(stealer.Credentials),
			}).
			WithParent(header.ID, "infected device")
		if !sendFinding(ctx, out, entry) {
			return
		}
	}

	i := 0
	for username, info := range discoveredUsernames {
		if i >= 15 {
			break
		}
		i++
		f := b.New(finding.TypeUsername, finding.SeverityCritical,
			"Stolen Username: "+username,
			"Credentials stolen from "+info.platform).
			WithData(map[string]any{
				"username":          username,
				"platform":          info.platform,
				"discovery_method":  "stealer_logs",
				"confidence":        "high",
				"compromised_url":   info.url,
				"remediation":       fmt.Sprintf("Change password for %s immediately", info.platform),
			}).
			WithParent(header.ID, "stolen credentials")
		if !sendFinding(ctx, out, f) {
			return
		}
	}

	if len(compromisedSites) > 0 {
		sites := make([]string, 0, len(compromisedSites))
		for site := range compromisedSites {
			sites = append(sites, site)
		}
		summary := b.New(finding.TypeBreach, finding.SeverityCritical,
			fmt.Sprintf("Compromised Sites: %d", len(compromisedSites)),
			"Sites: "+strings.Join(sites, ", ")).
			WithData(map[string]any{
				"sites":            sites,
				"total_credentials": totalCreds,
				"unique_usernames":  len(discoveredUsernames),
				"remediation":       "Change passwords on ALL listed sites",
			}).
			WithParent(header.ID, "compromised on")
		sendFinding(ctx, out, summary)
	}
}
