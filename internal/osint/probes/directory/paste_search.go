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

// PasteSearch looks for the seed email in paste/code-dump archives: GitHub's
// code search (catches committed .env files and config dumps) and the
// psbdmp paste index.
type PasteSearch struct {
	client *httpx.Client
}

// NewPasteSearch returns a PasteSearch issuing requests through client.
func NewPasteSearch(client *httpx.Client) PasteSearch {
	return PasteSearch{client: client}
}

func (PasteSearch) Name() string        { return "Paste Site Search" }
func (PasteSearch) Description() string { return "Search paste and leak sites for email exposure" }

func (p PasteSearch) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
	out := make(chan finding.Finding)
	go func() {
		defer close(out)
		defer probe.Recover(p.Name())
		if sd.Kind != probe.KindEmail {
			return
		}
		email := strings.ToLower(strings.TrimSpace(sd.Email))
		if !strings.Contains(email, "@") {
			return
		}
		p.emit(ctx, out, email, parentID)
	}()
	return out
}

func (p PasteSearch) emit(ctx context.Context, out chan<- finding.Finding, email, parentID string) {
	total := 0
	var sources []string
	b := finding.NewBuilder("Paste Site Analysis")

	codeHits := p.searchGitHubCode(ctx, email)
	if len(codeHits) > 0 {
		total += len(codeHits)
		sources = append(sources, "GitHub")
		shown := codeHits
		if len(shown) > 5 {
			shown = shown[:5]
		}
		for _, hit := range shown {
			path := hit.path
			if len(path) > 40 {
				path = path[:40]
			}
			f := finding.NewBuilder("GitHub Code Search").New(finding.TypeBreach, finding.SeverityHigh,
				"GitHub: "+path,
				"Email found in "+hit.repo).
				WithSourceURL(hit.url).
				WithData(map[string]any{
					"repo":        hit.repo,
					"path":        hit.path,
					"url":         hit.url,
					"remediation": "Check if credentials were exposed; rotate if necessary",
				}).
				WithParent(parentID, "found in")
			if !sendFinding(ctx, out, f) {
				return
			}
		}
	}
	if ctx.Err() != nil {
		return
	}

	pasteCount := p.searchPsbdmp(ctx, email)
	if pasteCount > 0 {
		total += pasteCount
		sources = append(sources, "Paste Archives")
		f := b.New(finding.TypeBreach, finding.SeverityCritical,
			fmt.Sprintf("Found in %d Paste Dump(s)", pasteCount),
			"Email appeared in paste site archives").
			WithData(map[string]any{
				"paste_count": pasteCount,
				"remediation": "Check for leaked credentials; change passwords immediately",
			}).
			WithParent(parentID, "dumped in")
		if !sendFinding(ctx, out, f) {
			return
		}
	}

	if total == 0 {
		return
	}
	summary := b.New(finding.TypeBreach, finding.SeverityHigh,
		fmt.Sprintf("Paste/Leak Exposure: %d instances", total),
		"Found in: "+strings.Join(sources, ", ")).
		WithData(map[string]any{
			"total_exposures": total,
			"sources":         sources,
		}).
		WithParent(parentID, "exposed in")
	sendFinding(ctx, out, summary)
}

type codeHit struct{ url, repo, path string }

func (p PasteSearch) searchGitHubCode(ctx context.Context, email string) []codeHit {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://api.github.com/search/code?q="+url.QueryEscape(fmt.Sprintf("%q", email)), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	resp, outcome, err := p.client.Do(ctx, req, httpx.WithBearerAuth())
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
	for i, item := range body.Items {
		if i >= 10 {
			break
		}
		hits = append(hits, codeHit{url: item.HTMLURL, repo: item.Repository.FullName, path: item.Path})
	}
	return hits
}

func (p PasteSearch) searchPsbdmp(ctx context.Context, email string) int {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://psbdmp.ws/api/v3/search/"+url.PathEscape(email), nil)
	if err != nil {
		return 0
	}
	resp, outcome, err := p.client.Do(ctx, req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return 0
	}
	var pastes []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&pastes); err != nil {
		return 0
	}
	if len(pastes) > 10 {
		return 10
	}
	return len(pastes)
}
