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

// CommitAuthorSearch discovers usernames on the primary code host that the
// seed email authored or committed under — catching usernames completely
// unrelated to the email's local-part, which the pure extractor can never
// reach.
type CommitAuthorSearch struct {
	client *httpx.Client
}

// NewCommitAuthorSearch returns a CommitAuthorSearch issuing requests
// through client, optionally authenticated via client's configured bearer
// token for a higher search-API rate limit.
func NewCommitAuthorSearch(client *httpx.Client) CommitAuthorSearch {
	return CommitAuthorSearch{client: client}
}

func (CommitAuthorSearch) Name() string        { return "GitHub Email Search" }
func (CommitAuthorSearch) Description() string { return "Discover GitHub usernames via commit email search" }

func (c CommitAuthorSearch) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
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
		c.emit(ctx, out, email, parentID)
	}()
	return out
}

type discoveredUser struct {
	username, avatarURL, profileURL, commitURL, repo string
}

func (c CommitAuthorSearch) emit(ctx context.Context, out chan<- finding.Finding, email, parentID string) {
	discovered := make(map[string]discoveredUser)

	c.searchCommits(ctx, email, discovered)
	if ctx.Err() != nil {
		return
	}
	c.searchUsers(ctx, email, discovered)

	b := finding.NewBuilder("GitHub Commit Search")
	for username, info := range discovered {
		profile := info.profileURL
		if profile == "" {
			profile = "https://github.com/" + username
		}
		f := b.New(finding.TypeUsername, finding.SeverityHigh,
			"GitHub Username Discovered: "+username,
			"Found via commit history search").
			WithSourceURL(profile).
			WithData(map[string]any{
				"username":         username,
				"platform":         "GitHub",
				"discovery_method": "commit_email_search",
				"confidence":       "high",
				"sample_commit":    info.commitURL,
				"sample_repo":      info.repo,
			}).
			WithParent(parentID, "discovered username")
		if !sendFinding(ctx, out, f) {
			return
		}
	}

	if len(discovered) > 1 {
		names := make([]string, 0, len(discovered))
		for u := range discovered {
			names = append(names, u)
		}
		summary := finding.NewBuilder("GitHub Email Search").New(finding.TypePersonalInfo, finding.SeverityMedium,
			fmt.Sprintf("Multiple GitHub Users: %d", len(discovered)),
			"Email used by: "+strings.Join(names, ", ")).
			WithData(map[string]any{
				"usernames": names,
				"note":      "Email may be shared or user has multiple accounts",
			}).
			WithParent(parentID, "multiple accounts")
		sendFinding(ctx, out, summary)
	}
}

func (c CommitAuthorSearch) searchCommits(ctx context.Context, email string, discovered map[string]discoveredUser) {
	q := "author-email:" + email
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://api.github.com/search/commits?q="+url.QueryEscape(q)+"&per_page=30", nil)
	if err != nil {
		return
	}
	req.Header.Set("Accept", "application/vnd.github.cloak-preview+json")
	resp, outcome, err := c.client.Do(ctx, req, httpx.WithBearerAuth())
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return
	}

	var body struct {
		Items []struct {
			HTMLURL string `json:"html_url"`
			Author  struct {
				Login     string `json:"login"`
				AvatarURL string `json:"avatar_url"`
				HTMLURL   string `json:"html_url"`
			} `json:"author"`
			Committer struct {
				Login     string `json:"login"`
				AvatarURL string `json:"avatar_url"`
				HTMLURL   string `json:"html_url"`
			} `json:"committer"`
			Repository struct {
				FullName string `json:"full_name"`
			} `json:"repository"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return
	}

	for _, item := range body.Items {
		if item.Author.Login != "" {
			if _, ok := discovered[item.Author.Login]; !ok {
				discovered[item.Author.Login] = discoveredUser{
					username: item.Author.Login, avatarURL: item.Author.AvatarURL,
					profileURL: item.Author.HTMLURL, commitURL: item.HTMLURL, repo: item.Repository.FullName,
				}
			}
		}
		if item.Committer.Login != "" && item.Committer.Login != item.Author.Login {
			if _, ok := discovered[item.Committer.Login]; !ok {
				discovered[item.Committer.Login] = discoveredUser{
					username: item.Committer.Login, avatarURL: item.Committer.AvatarURL,
					profileURL: item.Committer.HTMLURL, commitURL: item.HTMLURL, repo: item.Repository.FullName,
				}
			}
		}
	}
}

func (c CommitAuthorSearch) searchUsers(ctx context.Context, email string, discovered map[string]discoveredUser) {
	q := email + " in:email"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://api.github.com/search/users?q="+url.QueryEscape(q)+"&per_page=10", nil)
	if err != nil {
		return
	}
	resp, outcome, err := c.client.Do(ctx, req, httpx.WithBearerAuth())
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return
	}

	var body struct {
		Items []struct {
			Login     string `json:"login"`
			AvatarURL string `json:"avatar_url"`
			HTMLURL   string `json:"html_url"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return
	}
	for _, user := range body.Items {
		if user.Login == "" {
			continue
		}
		if _, ok := discovered[user.Login]; !ok {
			discovered[user.Login] = discoveredUser{
				username: user.Login, avatarURL: user.AvatarURL, profileURL: user.HTMLURL,
			}
		}
	}
}
