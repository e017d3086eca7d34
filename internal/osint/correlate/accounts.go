package correlate

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
	"github.com/danieljcheung/trace/internal/osint/seed"
)

type socialLink struct {
	platform string
	username string
}

var bioPatterns = []struct {
	platform string
	re       *regexp.Regexp
	minLen   int
}{
	{"Twitter", regexp.MustCompile(`twitter\.com/(\w+)`), 3},
	{"Twitter", regexp.MustCompile(`x\.com/(\w+)`), 3},
	{"Twitter", regexp.MustCompile(`twitter:\s*@?(\w+)`), 3},
	{"Instagram", regexp.MustCompile(`instagram\.com/(\w+)`), 3},
	{"Instagram", regexp.MustCompile(`instagram:\s*@?(\w+)`), 3},
	{"Instagram", regexp.MustCompile(`ig:\s*@?(\w+)`), 3},
	{"LinkedIn", regexp.MustCompile(`linkedin\.com/in/([a-z0-9-]+)`), 1},
	{"LinkedIn", regexp.MustCompile(`linkedin:\s*([a-z0-9-]+)`), 1},
	{"GitHub", regexp.MustCompile(`github\.com/(\w+)`), 2},
	{"GitHub", regexp.MustCompile(`github:\s*@?(\w+)`), 2},
	{"YouTube", regexp.MustCompile(`youtube\.com/(?:c/|channel/|user/|@)(\w+)`), 1},
}

var excludedTwitterMatches = map[string]struct{}{
	"twitter": {}, "com": {}, "the": {}, "and": {},
}

func extractSocialLinks(text string) []socialLink {
	lower := strings.ToLower(text)
	var links []socialLink
	for _, p := range bioPatterns {
		for _, match := range p.re.FindAllStringSubmatch(lower, -1) {
			if len(match) < 2 {
				continue
			}
			username := match[1]
			if len(username) < p.minLen {
				continue
			}
			if p.platform == "Twitter" {
				if _, excluded := excludedTwitterMatches[username]; excluded {
					continue
				}
			}
			links = append(links, socialLink{platform: p.platform, username: username})
		}
	}
	return dedupeLinks(links)
}

func dedupeLinks(links []socialLink) []socialLink {
	seen := make(map[string]struct{}, len(links))
	out := make([]socialLink, 0, len(links))
	for _, l := range links {
		key := l.platform + ":" + l.username
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	return out
}

var profileURLs = map[string]string{
	"Twitter":   "https://twitter.com/%s",
	"Instagram": "https://instagram.com/%s",
	"LinkedIn":  "https://linkedin.com/in/%s",
	"GitHub":    "https://github.com/%s",
	"Reddit":    "https://reddit.com/u/%s",
	"GitLab":    "https://gitlab.com/%s",
	"Keybase":   "https://keybase.io/%s",
	"YouTube":   "https://youtube.com/@%s",
}

func profileURL(platform, username string) string {
	tmpl, ok := profileURLs[platform]
	if !ok {
		tmpl = "https://" + strings.ToLower(platform) + ".com/%s"
	}
	return fmt.Sprintf(tmpl, username)
}

// ConnectedAccountsCorrelator runs a two-pass account correlation:
// bio-mention extraction, then a bounded cross-platform existence check
// for the first few discovered usernames.
type ConnectedAccountsCorrelator struct {
	client *httpx.Client
}

// NewConnectedAccountsCorrelator returns a correlator issuing its
// existence checks through client.
func NewConnectedAccountsCorrelator(client *httpx.Client) ConnectedAccountsCorrelator {
	return ConnectedAccountsCorrelator{client: client}
}

func (ConnectedAccountsCorrelator) Name() string { return "Connection Analysis" }
func (ConnectedAccountsCorrelator) Description() string {
	return "Find linked accounts across platforms"
}

func (c ConnectedAccountsCorrelator) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
	out := make(chan finding.Finding)
	go func() {
		defer close(out)
		defer probe.Recover(c.Name())
		if sd.Kind != probe.KindAggregate || sd.Aggregate == nil {
			return
		}
		c.emit(ctx, out, sd.Aggregate, parentID)
	}()
	return out
}

func (c ConnectedAccountsCorrelator) emit(ctx context.Context, out chan<- finding.Finding, state *seed.State, parentID string) {
	bios := state.Bios()
	foundAccounts := state.Accounts()

	var allLinks []socialLink
	for _, bio := range bios {
		allLinks = append(allLinks, extractSocialLinks(bio)...)
	}
	uniqueLinks := dedupeLinks(allLinks)

	alreadyFound := make(map[string]struct{}, len(foundAccounts))
	for _, a := range foundAccounts {
		alreadyFound[strings.ToLower(a.Platform)+":"+strings.ToLower(a.Username)] = struct{}{}
	}

	b := finding.NewBuilder("Bio Analysis")
	for _, link := range uniqueLinks {
		key := strings.ToLower(link.platform) + ":" + strings.ToLower(link.username)
		if _, ok := alreadyFound[key]; ok {
			continue
		}
		f := b.New(finding.TypeAccount, finding.SeverityMedium,
			fmt.Sprintf("Linked: %s @%s", link.platform, link.username),
			"Account mentioned in profile bio").
			WithSourceURL(profileURL(link.platform, link.username)).
			WithData(map[string]any{
				"platform":          link.platform,
				"username":          link.username,
				"discovery_method":  "bio_mention",
			}).
			WithParent(parentID, "links to")
		if !sendFinding(ctx, out, f) {
			return
		}
	}

	platformsToCheck := []string{"GitHub", "Reddit", "GitLab", "Keybase"}
	found := make(map[string]struct{}, len(foundAccounts))
	for _, a := range foundAccounts {
		found[strings.ToLower(a.Platform)] = struct{}{}
	}
	var remaining []string
	for _, p := range platformsToCheck {
		if _, ok := found[strings.ToLower(p)]; !ok {
			remaining = append(remaining, p)
		}
	}

	usernames := state.Usernames()
	if len(usernames) > 3 {
		usernames = usernames[:3]
	}

	matchBuilder := finding.NewBuilder("Username Correlation")
	for _, username := range usernames {
		if len(remaining) == 0 {
			break
		}
		for _, platform := range remaining {
			exists := c.checkPlatform(ctx, platform, username)
			if !exists {
				continue
			}
			f := matchBuilder.New(finding.TypeAccount, finding.SeverityMedium,
				fmt.Sprintf("Same Username: %s", platform),
				fmt.Sprintf("Username '%s' also exists on %s", username, platform)).
				WithSourceURL(profileURL(platform, username)).
				WithData(map[string]any{
					"platform":         platform,
					"username":         username,
					"discovery_method": "username_match",
					"confidence":       "high",
				}).
				WithParent(parentID, "same user on")
			if !sendFinding(ctx, out, f) {
				return
			}
		}
	}

	total := len(uniqueLinks)
	if total == 0 {
		return
	}
	summary := finding.NewBuilder("Connection Analysis").New(finding.TypePersonalInfo, finding.SeverityLow,
		fmt.Sprintf("Account Network: %d connections", total),
		"Cross-platform account relationships identified").
		WithData(map[string]any{
			"total_connections": total,
			"linked_accounts":   uniqueLinks,
		}).
		WithParent(parentID, "connected to")
	sendFinding(ctx, out, summary)
}

// checkPlatform issues the quick existence probe used by the original
// implementation for each of the four supported platforms.
func (c ConnectedAccountsCorrelator) checkPlatform(ctx context.Context, platform, username string) bool {
	var url string
	switch platform {
	case "GitHub":
		url = fmt.Sprintf("https://api.github.com/users/%s", username)
	case "Reddit":
		url = fmt.Sprintf("https://www.reddit.com/user/%s/about.json", username)
	case "GitLab":
		url = fmt.Sprintf("https://gitlab.com/api/v4/users?username=%s", username)
	case "Keybase":
		url = fmt.Sprintf("https://keybase.io/_/api/1.0/user/lookup.json?username=%s", username)
	default:
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, outcome, err := c.client.Do(ctx, req)
	if err != nil || outcome != httpx.OutcomeOK {
		return false
	}
	defer resp.Body.Close()

	switch platform {
	case "GitHub":
		return resp.StatusCode == http.StatusOK
	case "Reddit":
		var body struct {
			Data struct {
				Name string `json:"name"`
			} `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return false
		}
		return body.Data.Name != ""
	case "GitLab":
		var users []json.RawMessage
		if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
			return false
		}
		return len(users) > 0
	case "Keybase":
		var body struct {
			Status struct {
				Code int `json:"code"`
			} `json:"status"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return false
		}
		return body.Status.Code == 0
	default:
		return false
	}
}
