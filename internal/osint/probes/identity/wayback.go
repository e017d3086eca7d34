package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

const cdxAPI = "https://web.archive.org/cdx/search/cdx"

var archiveProfileTemplates = []string{
	"https://twitter.com/%s",
	"https://github.com/%s",
	"https://instagram.com/%s",
	"https://linkedin.com/in/%s",
	"https://facebook.com/%s",
	"https://%s.tumblr.com",
	"https://about.me/%s",
	"https://%s.wordpress.com",
}

// WebArchiveLookup checks the Wayback Machine's CDX index for historical
// snapshots of the well-known profile URLs a username would occupy,
// surfacing deleted or edited profile content that the live site no longer
// shows. Runs at any depth >= 2 but is naturally slow (one CDX round trip
// per candidate URL), so it is the last hop-2 probe in registration order.
type WebArchiveLookup struct {
	client *httpx.Client
	sem    *httpx.Semaphore
	pacer  *httpx.Pacer
}

// NewWebArchiveLookup returns a probe issuing requests through client. One
// invocation walks all of archiveProfileTemplates against web.archive.org;
// sem and pacer keep those CDX lookups, and any other concurrently-running
// invocation of this same probe, from hammering the archive back to back.
func NewWebArchiveLookup(client *httpx.Client) WebArchiveLookup {
	return WebArchiveLookup{
		client: client,
		sem:    httpx.NewSemaphore(6),
		pacer:  httpx.NewPacer(300*time.Millisecond, 1500*time.Millisecond),
	}
}

func (WebArchiveLookup) Name() string        { return "Web Archive Lookup" }
func (WebArchiveLookup) Description() string { return "Search Wayback Machine for historical profile snapshots" }

func (w WebArchiveLookup) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
	out := make(chan finding.Finding)
	go func() {
		defer close(out)
		defer probe.Recover(w.Name())
		if sd.Kind != probe.KindUsername {
			return
		}
		username := strings.TrimSpace(sd.Username)
		if username == "" {
			return
		}
		w.emit(ctx, out, username, parentID)
	}()
	return out
}

type archiveSnapshot struct {
	timestamp, original, date string
}

func (w WebArchiveLookup) archiveURL(s archiveSnapshot) string {
	return "https://web.archive.org/web/" + s.timestamp + "/" + s.original
}

func parseWaybackTimestamp(ts string) string {
	if len(ts) >= 8 {
		return ts[:4] + "-" + ts[4:6] + "-" + ts[6:8]
	}
	return ts
}

func (w WebArchiveLookup) searchCDX(ctx context.Context, target string, limit int) []archiveSnapshot {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cdxAPI, nil)
	if err != nil {
		return nil
	}
	q := req.URL.Query()
	q.Set("url", target)
	q.Set("output", "json")
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("fl", "timestamp,original,statuscode")
	req.URL.RawQuery = q.Encode()

	if err := w.sem.Acquire(ctx); err != nil {
		return nil
	}
	defer w.sem.Release()
	if err := w.pacer.Wait(ctx); err != nil {
		return nil
	}

	resp, outcome, err := w.client.Do(ctx, req, httpx.WithArchiveDeadline())
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return nil
	}
	var rows [][]string
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil || len(rows) < 2 {
		return nil
	}
	var out []archiveSnapshot
	for _, row := range rows[1:] {
		if len(row) < 3 || row[2] != "200" {
			continue
		}
		out = append(out, archiveSnapshot{timestamp: row[0], original: row[1], date: parseWaybackTimestamp(row[0])})
	}
	return out
}

func (w WebArchiveLookup) emit(ctx context.Context, out chan<- finding.Finding, username, parentID string) {
	b := finding.NewBuilder("Web Archive Lookup")
	var archivedProfiles int

	for _, tpl := range archiveProfileTemplates {
		if ctx.Err() != nil {
			return
		}
		target := fmt.Sprintf(tpl, username)
		snapshots := w.searchCDX(ctx, target, 5)
		if len(snapshots) == 0 {
			continue
		}
		archivedProfiles++

		host := strings.TrimPrefix(strings.TrimPrefix(target, "https://"), "http://")
		if idx := strings.Index(host, "/"); idx >= 0 {
			host = host[:idx]
		}
		oldest, newest := snapshots[0], snapshots[0]
		for _, s := range snapshots {
			if s.timestamp < oldest.timestamp {
				oldest = s
			}
			if s.timestamp > newest.timestamp {
				newest = s
			}
		}

		f := b.New(finding.TypeAccount, finding.SeverityMedium,
			"Archived Profile: "+host,
			fmt.Sprintf("%d snapshots found", len(snapshots))).
			WithSourceURL(w.archiveURL(newest)).
			WithData(map[string]any{
				"url": target, "snapshots": len(snapshots),
				"oldest_date": oldest.date, "newest_date": newest.date,
				"remediation": "Review archived content for exposed personal info",
			}).
			WithParent(parentID, "archived at")
		if !sendFinding(ctx, out, f) {
			return
		}
	}

	if archivedProfiles > 1 {
		summary := b.New(finding.TypePersonalInfo, finding.SeverityMedium,
			fmt.Sprintf("Archive History: %d profiles", archivedProfiles),
			"Historical versions of user profiles found in the Wayback Machine").
			WithSourceURL("https://web.archive.org").
			WithData(map[string]any{
				"profiles_archived": archivedProfiles,
				"note":              "May contain old personal info, deleted posts, etc.",
			}).
			WithParent(parentID, "history on")
		sendFinding(ctx, out, summary)
	}
}
