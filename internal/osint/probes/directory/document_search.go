package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

type dorkPattern struct {
	query    string
	category string
	severity finding.Severity
}

func dorkPatterns(email string) []dorkPattern {
	q := fmt.Sprintf("%q", email)
	return []dorkPattern{
		{q + " filetype:pdf", "PDF Documents", finding.SeverityHigh},
		{q + " filetype:doc OR filetype:docx", "Word Documents", finding.SeverityHigh},
		{q + " filetype:xls OR filetype:xlsx", "Spreadsheets", finding.SeverityHigh},
		{q + " resume OR cv", "Resumes/CVs", finding.SeverityHigh},
		{q + " site:pastebin.com", "Pastebin", finding.SeverityCritical},
		{q + " site:linkedin.com", "LinkedIn", finding.SeverityMedium},
		{q + " site:github.com", "GitHub", finding.SeverityMedium},
		{q + " dump OR leak OR breach", "Data Dumps", finding.SeverityCritical},
	}
}

var remediationByCategory = map[string]string{
	"PDF Documents":  "Request removal from hosting site or search engine",
	"Word Documents": "Contact site owner to remove document",
	"Spreadsheets":   "Request removal; may contain sensitive data",
	"Resumes/CVs":    "Remove from job sites; request delisting",
	"Pastebin":       "Report to Pastebin for removal if contains PII",
	"LinkedIn":       "Review LinkedIn privacy settings",
	"GitHub":         "Check for accidental commits of personal info",
	"Data Dumps":     "CRITICAL: Check for leaked credentials; change passwords",
}

var ddgResultPattern = regexp.MustCompile(`(?i)<a[^>]*class="result__a"[^>]*href="([^"]+)"[^>]*>([^<]+)</a>`)

type dorkResult struct {
	url, title, category string
	severity              finding.Severity
}

// DocumentSearch runs a set of search-engine "dork" queries (via DuckDuckGo's
// HTML endpoint, which unlike Google tolerates automated searches) looking
// for documents, profiles, and leak indicators that mention the seed email.
type DocumentSearch struct {
	client *httpx.Client
}

// NewDocumentSearch returns a DocumentSearch issuing requests through client.
func NewDocumentSearch(client *httpx.Client) DocumentSearch {
	return DocumentSearch{client: client}
}

func (DocumentSearch) Name() string        { return "Document Search" }
func (DocumentSearch) Description() string { return "Search for documents and pages containing email" }

func (d DocumentSearch) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
	out := make(chan finding.Finding)
	go func() {
		defer close(out)
		defer probe.Recover(d.Name())
		if sd.Kind != probe.KindEmail {
			return
		}
		email := strings.ToLower(strings.TrimSpace(sd.Email))
		if !strings.Contains(email, "@") {
			return
		}
		d.emit(ctx, out, email, parentID)
	}()
	return out
}

func (d DocumentSearch) emit(ctx context.Context, out chan<- finding.Finding, email, parentID string) {
	seenURLs := make(map[string]struct{})
	var all []dorkResult
	categories := make(map[string]struct{})

	b := finding.NewBuilder("Document Search")
	for _, pattern := range dorkPatterns(email) {
		results := d.search(ctx, pattern.query)
		for _, res := range results {
			if _, ok := seenURLs[res.url]; ok {
				continue
			}
			seenURLs[res.url] = struct{}{}
			categories[pattern.category] = struct{}{}
			dr := dorkResult{url: res.url, title: res.title, category: pattern.category, severity: pattern.severity}
			all = append(all, dr)

			if pattern.severity == finding.SeverityCritical || pattern.severity == finding.SeverityHigh {
				title := dr.title
				if len(title) > 50 {
					title = title[:50]
				}
				f := b.New(finding.TypePersonalInfo, pattern.severity,
					pattern.category+": "+title,
					"Document found via search").
					WithSourceURL(dr.url).
					WithData(map[string]any{
						"url":           dr.url,
						"title":         dr.title,
						"category":      pattern.category,
						"search_query":  pattern.query,
						"remediation":   remediationByCategory[pattern.category],
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
	}

	if len(all) == 0 {
		return
	}
	catNames := make([]string, 0, len(categories))
	for c := range categories {
		catNames = append(catNames, c)
	}
	summary := b.New(finding.TypePersonalInfo, finding.SeverityHigh,
		fmt.Sprintf("Found in %d Search Results", len(all)),
		"Categories: "+strings.Join(catNames, ", ")).
		WithData(map[string]any{
			"total_results": len(all),
			"categories":    catNames,
		}).
		WithParent(parentID, "indexed in")
	sendFinding(ctx, out, summary)
}

type ddgHit struct{ url, title string }

func (d DocumentSearch) search(ctx context.Context, query string) []ddgHit {
	form := url.Values{"q": {query}, "b": {""}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://html.duckduckgo.com/html/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, outcome, err := d.client.Do(ctx, req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil
	}
	html := string(body)

	var hits []ddgHit
	matches := ddgResultPattern.FindAllStringSubmatch(html, -1)
	for _, m := range matches {
		if len(m) < 3 {
			continue
		}
		link := m[1]
		if idx := strings.Index(link, "uddg="); idx >= 0 {
			rest := link[idx+len("uddg="):]
			if amp := strings.IndexByte(rest, '&'); amp >= 0 {
				rest = rest[:amp]
			}
			if decoded, err := url.QueryUnescape(rest); err == nil {
				link = decoded
			}
		}
		hits = append(hits, ddgHit{url: link, title: strings.TrimSpace(m[2])})
		if len(hits) >= 10 {
			break
		}
	}
	return hits
}
