package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

var locationSubreddits = map[string]string{
	"nyc": "New York City", "newyorkcity": "New York City", "manhattan": "New York City",
	"brooklyn": "Brooklyn, NY", "losangeles": "Los Angeles", "sanfrancisco": "San Francisco",
	"bayarea": "San Francisco Bay Area", "seattle": "Seattle", "chicago": "Chicago",
	"boston": "Boston", "austin": "Austin", "denver": "Denver", "portland": "Portland",
	"philadelphia": "Philadelphia", "atlanta": "Atlanta", "miami": "Miami", "dallas": "Dallas",
	"houston": "Houston", "phoenix": "Phoenix", "sandiego": "San Diego",
	"washingtondc": "Washington DC", "dc": "Washington DC",
	"london": "London, UK", "unitedkingdom": "United Kingdom", "toronto": "Toronto",
	"vancouver": "Vancouver", "canada": "Canada", "australia": "Australia", "sydney": "Sydney",
	"melbourne": "Melbourne", "berlin": "Berlin", "germany": "Germany", "paris": "Paris",
	"france": "France", "amsterdam": "Amsterdam", "netherlands": "Netherlands", "india": "India",
	"bangalore": "Bangalore, India", "mumbai": "Mumbai, India", "delhi": "Delhi, India",
	"singapore": "Singapore", "japan": "Japan", "tokyo": "Tokyo",
}

var (
	bioMatch      = regexp.MustCompile(`(?is)<p class="profile-bio"[^>]*>(.*?)</p>`)
	locationMatch = regexp.MustCompile(`(?is)<span class="profile-location"[^>]*>(.*?)</span>`)
	websiteMatch  = regexp.MustCompile(`(?i)<a class="profile-website"[^>]*href="([^"]+)"`)
	htmlTagStrip  = regexp.MustCompile(`<[^>]+>`)
)

var nitterInstances = []string{"nitter.net", "nitter.it", "nitter.privacydev.net"}

// SocialDeepDive combines Reddit subreddit-activity analysis, a Twitter
// profile read via a Nitter mirror, and a GitHub profile read into a single
// probe so all three of a username's most common social surfaces get one
// parent finding per platform. Reddit subreddit participation is used the
// same way the location aggregator weighs "subreddit_activity" evidence.
type SocialDeepDive struct {
	client *httpx.Client
}

// NewSocialDeepDive returns a probe issuing requests through client.
func NewSocialDeepDive(client *httpx.Client) SocialDeepDive {
	return SocialDeepDive{client: client}
}

func (SocialDeepDive) Name() string { return "Social Media Deep Dive" }
func (SocialDeepDive) Description() string {
	return "Extract detailed info from Reddit, Twitter and GitHub profiles"
}

func (s SocialDeepDive) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
	out := make(chan finding.Finding)
	go func() {
		defer close(out)
		defer probe.Recover(s.Name())
		if sd.Kind != probe.KindUsername {
			return
		}
		username := strings.TrimSpace(sd.Username)
		if username == "" {
			return
		}
		s.emitReddit(ctx, out, username, parentID)
		if ctx.Err() != nil {
			return
		}
		s.emitTwitter(ctx, out, username, parentID)
		if ctx.Err() != nil {
			return
		}
		s.emitGitHub(ctx, out, username, parentID)
	}()
	return out
}

func (s SocialDeepDive) emitReddit(ctx context.Context, out chan<- finding.Finding, username, parentID string) {
	aboutReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://www.reddit.com/user/"+username+"/about.json", nil)
	if err != nil {
		return
	}
	aboutReq.Header.Set("User-Agent", "identity-probe/1.0")
	aboutResp, outcome, err := s.client.Do(ctx, aboutReq)
	if err != nil || outcome != httpx.OutcomeOK {
		if aboutResp != nil {
			aboutResp.Body.Close()
		}
		return
	}
	var about struct {
		Data struct {
			TotalKarma int `json:"total_karma"`
		} `json:"data"`
	}
	_ = json.NewDecoder(aboutResp.Body).Decode(&about)
	aboutResp.Body.Close()

	commentsReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://www.reddit.com/user/"+username+"/comments.json?limit=100", nil)
	if err != nil {
		return
	}
	commentsReq.Header.Set("User-Agent", "identity-probe/1.0")
	commentsResp, outcome, err := s.client.Do(ctx, commentsReq)
	if err != nil {
		return
	}
	defer commentsResp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return
	}
	var comments struct {
		Data struct {
			Children []struct {
				Data struct {
					Subreddit string `json:"subreddit"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(commentsResp.Body).Decode(&comments); err != nil {
		return
	}

	counts := make(map[string]int)
	for _, c := range comments.Data.Children {
		sub := strings.ToLower(c.Data.Subreddit)
		if sub != "" {
			counts[sub]++
		}
	}

	type hint struct {
		subreddit, location string
		posts                int
	}
	var hints []hint
	for sub, n := range counts {
		if loc, ok := locationSubreddits[sub]; ok {
			hints = append(hints, hint{sub, loc, n})
		}
	}
	if len(hints) == 0 {
		return
	}
	sort.Slice(hints, func(i, j int) bool { return hints[i].posts > hints[j].posts })

	b := finding.NewBuilder("Social Media Deep Dive")
	top := hints[0]
	confidence := "low"
	if top.posts > 5 {
		confidence = "medium"
	}
	f := b.New(finding.TypePersonalInfo, finding.SeverityMedium,
		"Location (Reddit): "+top.location,
		fmt.Sprintf("Inferred from r/%s activity (%d posts)", top.subreddit, top.posts)).
		WithSourceURL("https://reddit.com/u/" + username).
		WithData(map[string]any{
			"location": top.location, "source": "subreddit_activity",
			"subreddit": top.subreddit, "confidence": confidence,
		}).
		WithParent(parentID, "likely in")
	sendFinding(ctx, out, f)

	profile := b.New(finding.TypeAccount, finding.SeverityLow,
		fmt.Sprintf("Reddit Profile: %d karma", about.Data.TotalKarma),
		fmt.Sprintf("Active in %d tracked subreddits", len(counts))).
		WithSourceURL("https://reddit.com/u/" + username).
		WithData(map[string]any{"karma": about.Data.TotalKarma, "subreddit_count": len(counts)}).
		WithParent(parentID, "profile")
	sendFinding(ctx, out, profile)
}

func (s SocialDeepDive) emitTwitter(ctx context.Context, out chan<- finding.Finding, username, parentID string) {
	b := finding.NewBuilder("Social Media Deep Dive")
	for _, instance := range nitterInstances {
		if ctx.Err() != nil {
			return
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+instance+"/"+username, nil)
		if err != nil {
			continue
		}
		resp, outcome, err := s.client.Do(ctx, req)
		if err != nil {
			continue
		}
		if outcome != httpx.OutcomeOK {
			resp.Body.Close()
			continue
		}
		html := readLimited(resp)
		resp.Body.Close()

		var bio, location, website string
		if m := bioMatch.FindStringSubmatch(html); m != nil {
			bio = strings.TrimSpace(htmlTagStrip.ReplaceAllString(m[1], ""))
		}
		if m := locationMatch.FindStringSubmatch(html); m != nil {
			location = strings.TrimSpace(htmlTagStrip.ReplaceAllString(m[1], ""))
		}
		if m := websiteMatch.FindStringSubmatch(html); m != nil {
			website = m[1]
		}
		if bio == "" && location == "" && website == "" {
			continue
		}

		if location != "" {
			f := b.New(finding.TypePersonalInfo, finding.SeverityMedium,
				"Location (Twitter): "+location, "Location from Twitter profile").
				WithSourceURL("https://twitter.com/" + username).
				WithData(map[string]any{"location": location, "source": "twitter_profile", "confidence": "high"}).
				WithParent(parentID, "located in")
			if !sendFinding(ctx, out, f) {
				return
			}
		}
		if bio != "" {
			desc := bio
			if len(desc) > 200 {
				desc = desc[:200]
			}
			f := b.New(finding.TypePersonalInfo, finding.SeverityLow, "Twitter Bio", desc).
				WithSourceURL("https://twitter.com/" + username).
				WithData(map[string]any{"bio": bio}).
				WithParent(parentID, "bio")
			if !sendFinding(ctx, out, f) {
				return
			}
		}
		if website != "" {
			f := b.New(finding.TypeAccount, finding.SeverityMedium, "Website: "+website, "Website linked on Twitter profile").
				WithSourceURL(website).
				WithData(map[string]any{"url": website}).
				WithParent(parentID, "links to")
			sendFinding(ctx, out, f)
		}
		return
	}
}

func (s SocialDeepDive) emitGitHub(ctx context.Context, out chan<- finding.Finding, username, parentID string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/users/"+username, nil)
	if err != nil {
		return
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	resp, outcome, err := s.client.Do(ctx, req, httpx.WithBearerAuth())
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return
	}
	var data struct {
		Bio string `json:"bio"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil || data.Bio == "" {
		return
	}
	links := extractSocialLinks(data.Bio)
	if len(links) == 0 {
		return
	}
	b := finding.NewBuilder("Social Media Deep Dive")
	f := b.New(finding.TypeAccount, finding.SeverityMedium,
		"Bio Links: "+strconv.Itoa(len(links)),
		"Other accounts mentioned in GitHub bio").
		WithData(map[string]any{"links": links}).
		WithParent(parentID, "links to")
	sendFinding(ctx, out, f)
}

var socialLinkPatterns = []struct {
	re       *regexp.Regexp
	platform string
}{
	{regexp.MustCompile(`(?i)twitter\.com/([a-zA-Z0-9_]+)`), "twitter"},
	{regexp.MustCompile(`(?i)instagram\.com/([a-zA-Z0-9_.]+)`), "instagram"},
	{regexp.MustCompile(`(?i)linkedin\.com/in/([a-zA-Z0-9-]+)`), "linkedin"},
	{regexp.MustCompile(`(?i)github\.com/([a-zA-Z0-9-]+)`), "github"},
	{regexp.MustCompile(`(?i)t\.me/([a-zA-Z0-9_]+)`), "telegram"},
}

func extractSocialLinks(text string) []map[string]string {
	var links []map[string]string
	for _, p := range socialLinkPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			links = append(links, map[string]string{"platform": p.platform, "username": m[1]})
		}
	}
	return links
}
