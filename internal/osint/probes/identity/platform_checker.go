package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

type checkKind int

const (
	checkStatus checkKind = iota
	checkContent
)

type platformTarget struct {
	name      string
	urlFormat string
	kind      checkKind
	needle    string
}

var checkedPlatforms = []platformTarget{
	{"GitHub", "https://github.com/%s", checkStatus, ""},
	{"GitLab", "https://gitlab.com/%s", checkStatus, ""},
	{"Bitbucket", "https://bitbucket.org/%s/", checkStatus, ""},
	{"Docker Hub", "https://hub.docker.com/u/%s", checkStatus, ""},
	{"npm", "https://www.npmjs.com/~%s", checkStatus, ""},
	{"PyPI", "https://pypi.org/user/%s/", checkStatus, ""},
	{"Dev.to", "https://dev.to/%s", checkStatus, ""},

	{"Twitter/X", "https://x.com/%s", checkStatus, ""},
	{"Instagram", "https://www.instagram.com/%s/", checkStatus, ""},
	{"TikTok", "https://www.tiktok.com/@%s", checkStatus, ""},
	{"Reddit", "https://www.reddit.com/user/%s/", checkStatus, ""},
	{"Pinterest", "https://www.pinterest.com/%s/", checkStatus, ""},
	{"Tumblr", "https://%s.tumblr.com/", checkStatus, ""},

	{"LinkedIn", "https://www.linkedin.com/in/%s/", checkStatus, ""},
	{"Medium", "https://medium.com/@%s", checkStatus, ""},
	{"About.me", "https://about.me/%s", checkStatus, ""},

	{"Twitch", "https://www.twitch.tv/%s", checkStatus, ""},
	{"Steam", "https://steamcommunity.com/id/%s", checkStatus, ""},

	{"Dribbble", "https://dribbble.com/%s", checkStatus, ""},
	{"Behance", "https://www.behance.net/%s", checkStatus, ""},
	{"SoundCloud", "https://soundcloud.com/%s", checkStatus, ""},
	{"Spotify", "https://open.spotify.com/user/%s", checkStatus, ""},
	{"Vimeo", "https://vimeo.com/%s", checkStatus, ""},
	{"Flickr", "https://www.flickr.com/people/%s/", checkStatus, ""},

	{"Keybase", "https://keybase.io/%s", checkStatus, ""},
	{"Patreon", "https://www.patreon.com/%s", checkStatus, ""},
	{"Linktree", "https://linktr.ee/%s", checkStatus, ""},
	{"HackerNews", "https://news.ycombinator.com/user?id=%s", checkContent, "karma"},
}

var notFoundIndicators = []string{
	"page not found", "user not found", "doesn't exist", "does not exist", "404", "not found",
}

// PlatformExistenceChecker probes a fixed catalogue of platforms for a
// profile matching the username, confirming positive HTTP signal against a
// body-text check for the common "soft 404" pattern (200 status, "not
// found" copy) before treating it as a real account.
type PlatformExistenceChecker struct {
	client *httpx.Client
}

// NewPlatformExistenceChecker returns a probe issuing requests through client.
func NewPlatformExistenceChecker(client *httpx.Client) PlatformExistenceChecker {
	return PlatformExistenceChecker{client: client}
}

func (PlatformExistenceChecker) Name() string { return "Platform Existence Checker" }
func (PlatformExistenceChecker) Description() string {
	return "Check username existence across 25+ platforms"
}

func (c PlatformExistenceChecker) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
	out := make(chan finding.Finding)
	go func() {
		defer close(out)
		defer probe.Recover(c.Name())
		if sd.Kind != probe.KindUsername {
			return
		}
		username := strings.ToLower(strings.TrimSpace(sd.Username))
		if len(username) < 3 {
			return
		}
		c.emit(ctx, out, username, parentID)
	}()
	return out
}

func (c PlatformExistenceChecker) emit(ctx context.Context, out chan<- finding.Finding, username, parentID string) {
	b := finding.NewBuilder("Platform Existence Checker")
	for _, target := range checkedPlatforms {
		if ctx.Err() != nil {
			return
		}
		if !c.check(ctx, target, username) {
			continue
		}
		profileURL := fmt.Sprintf(target.urlFormat, username)
		f := b.New(finding.TypeAccount, finding.SeverityMedium,
			target.name, "Account found on "+target.name).
			WithSourceURL(profileURL).
			WithData(map[string]any{
				"platform": target.name,
				"url":      profileURL,
				"username": username,
			}).
			WithParent(parentID, "found on")
		if !sendFinding(ctx, out, f) {
			return
		}
	}
}

func (c PlatformExistenceChecker) check(ctx context.Context, target platformTarget, username string) bool {
	profileURL := fmt.Sprintf(target.urlFormat, username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return false
	}
	resp, outcome, err := c.client.Do(ctx, req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	switch target.kind {
	case checkContent:
		if outcome != httpx.OutcomeOK {
			return false
		}
		return strings.Contains(strings.ToLower(readLimited(resp)), target.needle)
	default:
		if outcome != httpx.OutcomeOK {
			return false
		}
		body := readLimited(resp)
		if len(body) >= 50000 {
			return true
		}
		lower := strings.ToLower(body)
		for _, indicator := range notFoundIndicators {
			if strings.Contains(lower, indicator) {
				return false
			}
		}
		return true
	}
}
