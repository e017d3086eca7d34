package identity

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

type secretPattern struct {
	query, label string
	severity     finding.Severity
}

var secretPatterns = []secretPattern{
	{"filename:.env", "Environment File", finding.SeverityCritical},
	{"filename:.env.local", "Local Env File", finding.SeverityCritical},
	{"filename:.env.production", "Production Env", finding.SeverityCritical},
	{"filename:config.json password", "Config Password", finding.SeverityCritical},
	{"filename:settings.py SECRET", "Django Secret", finding.SeverityHigh},
	{"filename:credentials", "Credentials File", finding.SeverityCritical},
	{"api_secret", "API Secret", finding.SeverityCritical},
	{"access_token", "Access Token", finding.SeverityHigh},
	{"AWS_SECRET", "AWS Secret", finding.SeverityCritical},
	{"mongodb+srv://", "MongoDB URI", finding.SeverityCritical},
}

var sensitiveFileNames = []string{
	".env", ".env.local", ".env.production", ".env.development",
	"config.json", "secrets.json", "credentials.json",
	".htpasswd", ".netrc", ".npmrc", ".pypirc",
	"id_rsa", "id_dsa", "id_ecdsa", "id_ed25519",
}

// CodeHostSecretScanner searches a username's public repositories for
// filenames and code patterns that commonly carry leaked credentials, and
// scans each repo's root listing for known sensitive filenames. Only runs
// at depth >= 2 since it is the most request-heavy hop-2 probe.
type CodeHostSecretScanner struct {
	client *httpx.Client
}

// NewCodeHostSecretScanner returns a probe issuing requests through client.
func NewCodeHostSecretScanner(client *httpx.Client) CodeHostSecretScanner {
	return CodeHostSecretScanner{client: client}
}

func (CodeHostSecretScanner) Name() string        { return "Code Host Secret Scanner" }
func (CodeHostSecretScanner) Description() string { return "Scan code host repos for exposed secrets" }

func (s CodeHostSecretScanner) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
	out := make(chan finding.Finding)
	go func() {
		defer close(out)
		defer probe.Recover(s.Name())
		if sd.Kind != probe.KindUsername || depth < 2 {
			return
		}
		username := strings.ToLower(strings.TrimSpace(sd.Username))
		if username == "" {
			return
		}
		s.emit(ctx, out, username, parentID)
	}()
	return out
}

type secretHit struct {
	repo, path, url, label string
	severity                finding.Severity
}

type codeHit struct{ url, repo, path string }

func (s CodeHostSecretScanner) emit(ctx context.Context, out chan<- finding.Finding, username, parentID string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/users/"+url.PathEscape(username), nil)
	if err != nil {
		return
	}
	resp, outcome, err := s.client.Do(ctx, req, httpx.WithBearerAuth())
	if err != nil {
		return
	}
	var publicRepos int
	func() {
		defer resp.Body.Close()
		if outcome != httpx.OutcomeOK {
			return
		}
		var body struct {
			PublicRepos int `json:"public_repos"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		publicRepos = body.PublicRepos
	}()
	if outcome != httpx.OutcomeOK || publicRepos == 0 {
		return
	}

	b := finding.NewBuilder("Code Host Secret Scanner")
	var hits []secretHit

	for _, pattern := range secretPatterns {
		if ctx.Err() != nil {
			return
		}
		results := s.searchCode(ctx, username, pattern.query)
		for _, r := range results {
			hits = append(hits, secretHit{repo: r.repo, path: r.path, url: r.url, label: pattern.label, severity: pattern.severity})
		}
		if pattern.severity == finding.SeverityCritical {
			shown := results
			if len(shown) > 2 {
				shown = shown[:2]
			}
			for _, r := range shown {
				f := b.New(finding.TypeBreach, finding.SeverityCritical,
					"Secret Exposed: "+pattern.label,
					fmt.Sprintf("Found in %s/%s", r.repo, r.path)).
					WithSourceURL(r.url).
					WithData(map[string]any{
						"repo": r.repo, "path": r.path, "type": pattern.label,
						"remediation": "Rotate credentials immediately; remove from git history",
					}).
					WithParent(parentID, "secret in")
				if !sendFinding(ctx, out, f) {
					return
				}
			}
		}
	}

	if ctx.Err() != nil {
		return
	}

	for _, repoName := range s.listRepos(ctx, username) {
		if ctx.Err() != nil {
			return
		}
		for _, file := range s.scanRepoContents(ctx, repoName) {
			f := b.New(finding.TypeBreach, finding.SeverityHigh,
				"Sensitive File: "+file.name,
				"Found in "+repoName).
				WithSourceURL(file.url).
				WithData(map[string]any{
					"file": file.name, "repo": repoName, "path": file.path,
					"remediation": "Review file contents; remove if it contains secrets",
				}).
				WithParent(parentID, "sensitive file")
			if !sendFinding(ctx, out, f) {
				return
			}
		}
	}

	if len(hits) > 0 {
		summary := b.New(finding.TypeBreach, finding.SeverityHigh,
			fmt.Sprintf("Code Host Secrets: %d potential exposures", len(hits)),
			"Credentials or sensitive data may be exposed in repositories").
			WithData(map[string]any{"total_findings": len(hits)}).
			WithParent(parentID, "secrets in")
		sendFinding(ctx, out, summary)
	}
}

func (s CodeHostSecretScanner) searchCode(ctx context.Context, username, query string) []codeHit {
	full := "user:" + username + " " + query
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://api.github.com/search/code?q="+url.QueryEscape(full)+"&per_page=10", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	resp, outcome, err := s.client.Do(ctx, req, httpx.WithBearerAuth())
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return nil
	}
	var body struct {
		Items []struct {
			HTMLURL    string `json:"html_url"`
			Path       string `json:"path"`
			Repository struct {
				FullName string `json:"full_name"`
			} `json:"repository"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil
	}
	var hits []codeHit
	for _, item := range body.Items {
		hits = append(hits, codeHit{url: item.HTMLURL, repo: item.Repository.FullName, path: item.Path})
	}
	return hits
}

func (s CodeHostSecretScanner) listRepos(ctx context.Context, username string) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://api.github.com/users/"+url.PathEscape(username)+"/repos?sort=pushed&per_page=5", nil)
	if err != nil {
		return nil
	}
	resp, outcome, err := s.client.Do(ctx, req, httpx.WithBearerAuth())
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return nil
	}
	var repos []struct {
		FullName string `json:"full_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil
	}
	var names []string
	for _, r := range repos {
		if r.FullName != "" {
			names = append(names, r.FullName)
		}
	}
	return names
}

type sensitiveFile struct{ name, path, url string }

func (s CodeHostSecretScanner) scanRepoContents(ctx context.Context, repoFullName string) []sensitiveFile {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/repos/"+repoFullName+"/contents", nil)
	if err != nil {
		return nil
	}
	resp, outcome, err := s.client.Do(ctx, req, httpx.WithBearerAuth())
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return nil
	}
	var items []struct {
		Name    string `json:"name"`
		Path    string `json:"path"`
		HTMLURL string `json:"html_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil
	}
	var out []sensitiveFile
	for _, item := range items {
		lower := strings.ToLower(item.Name)
		for _, sens := range sensitiveFileNames {
			if strings.Contains(lower, sens) {
				out = append(out, sensitiveFile{name: item.Name, path: item.Path, url: item.HTMLURL})
				break
			}
		}
	}
	return out
}
