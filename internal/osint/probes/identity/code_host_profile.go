package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

// CodeHostProfileReader reads the primary code host's public profile for a
// username, then mines its recent repositories for commit author emails and
// aggregates organization membership and language usage. The email-mining
// and language/org analysis only run at depth >= 3, since they cost several
// extra round trips per repo.
type CodeHostProfileReader struct {
	client *httpx.Client
	sem    *httpx.Semaphore
	pacer  *httpx.Pacer
}

// NewCodeHostProfileReader returns a probe issuing requests through client.
// A single repo can drive up to ~6 api.github.com calls (profile, orgs,
// repo listing, one commits lookup per mined repo); sem and pacer keep
// those calls, and any other concurrently-running invocation of this same
// probe, from hammering the host.
func NewCodeHostProfileReader(client *httpx.Client) CodeHostProfileReader {
	return CodeHostProfileReader{
		client: client,
		sem:    httpx.NewSemaphore(6),
		pacer:  httpx.NewPacer(300*time.Millisecond, 1500*time.Millisecond),
	}
}

// throttle bounds concurrency and paces one outbound call to api.github.com.
// Callers defer the returned release func.
func (c CodeHostProfileReader) throttle(ctx context.Context) (func(), error) {
	if err := c.sem.Acquire(ctx); err != nil {
		return func() {}, err
	}
	if err := c.pacer.Wait(ctx); err != nil {
		c.sem.Release()
		return func() {}, err
	}
	return c.sem.Release, nil
}

func (CodeHostProfileReader) Name() string { return "Code Host Profile Reader" }
func (CodeHostProfileReader) Description() string {
	return "Deep-read code host profile: commit emails, organizations, languages"
}

func (c CodeHostProfileReader) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
	out := make(chan finding.Finding)
	go func() {
		defer close(out)
		defer probe.Recover(c.Name())
		if sd.Kind != probe.KindUsername {
			return
		}
		username := strings.ToLower(strings.TrimSpace(sd.Username))
		if username == "" {
			return
		}
		c.emit(ctx, out, username, depth, parentID)
	}()
	return out
}

type codeHostProfile struct {
	Name, Company, Location, Email, Bio, Blog, TwitterUsername string
	PublicRepos, Followers                                     int
	CreatedAt                                                  string
}

func (c CodeHostProfileReader) emit(ctx context.Context, out chan<- finding.Finding, username string, depth int, parentID string) {
	profileURL := "https://github.com/" + username
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/users/"+url.PathEscape(username), nil)
	if err != nil {
		return
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	release, err := c.throttle(ctx)
	if err != nil {
		return
	}
	resp, outcome, err := c.client.Do(ctx, req, httpx.WithBearerAuth())
	if err != nil {
		release()
		return
	}
	var p codeHostProfile
	func() {
		defer release()
		defer resp.Body.Close()
		if outcome != httpx.OutcomeOK {
			return
		}
		var body struct {
			Name            string `json:"name"`
			Company         string `json:"company"`
			Location        string `json:"location"`
			Email           string `json:"email"`
			Bio             string `json:"bio"`
			Blog            string `json:"blog"`
			TwitterUsername string `json:"twitter_username"`
			PublicRepos     int    `json:"public_repos"`
			Followers       int    `json:"followers"`
			CreatedAt       string `json:"created_at"`
			HTMLURL         string `json:"html_url"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return
		}
		p = codeHostProfile{
			Name: body.Name, Company: body.Company, Location: body.Location, Email: body.Email,
			Bio: body.Bio, Blog: body.Blog, TwitterUsername: body.TwitterUsername,
			PublicRepos: body.PublicRepos, Followers: body.Followers, CreatedAt: body.CreatedAt,
		}
		if body.HTMLURL != "" {
			profileURL = body.HTMLURL
		}
	}()
	if outcome != httpx.OutcomeOK {
		return
	}

	b := finding.NewBuilder("Code Host Profile Reader")
	root := b.New(finding.TypeAccount, finding.SeverityMedium,
		"GitHub: "+username,
		fmt.Sprintf("%d repos, %d followers", p.PublicRepos, p.Followers)).
		WithSourceURL(profileURL).
		WithData(map[string]any{
			"username": username, "url": profileURL,
			"repos": p.PublicRepos, "followers": p.Followers, "created": p.CreatedAt,
		}).
		WithParent(parentID, "profile on")
	if !sendFinding(ctx, out, root) {
		return
	}

	if p.Name != "" {
		f := b.New(finding.TypePersonalInfo, finding.SeverityHigh, "Real Name: "+p.Name, "Name from GitHub profile").
			WithData(map[string]any{"name": p.Name, "source": "code_host_profile"}).
			WithParent(root.ID, "real name")
		if !sendFinding(ctx, out, f) {
			return
		}
	}
	if p.Location != "" {
		f := b.New(finding.TypePersonalInfo, finding.SeverityMedium, "Location: "+p.Location, "Location from GitHub profile").
			WithData(map[string]any{"location": p.Location, "source": "code_host_profile", "confidence": 0.9}).
			WithParent(root.ID, "located in")
		if !sendFinding(ctx, out, f) {
			return
		}
	}
	if p.Company != "" {
		f := b.New(finding.TypePersonalInfo, finding.SeverityMedium, "Employer: "+p.Company, "Company from GitHub profile").
			WithData(map[string]any{"company": p.Company}).
			WithParent(root.ID, "works at")
		if !sendFinding(ctx, out, f) {
			return
		}
	}
	if p.Email != "" {
		f := b.New(finding.TypePersonalInfo, finding.SeverityHigh, "Public Email: "+p.Email, "Email publicly displayed on GitHub").
			WithData(map[string]any{"email": p.Email}).
			WithParent(root.ID, "email")
		if !sendFinding(ctx, out, f) {
			return
		}
	}
	if p.TwitterUsername != "" {
		f := b.New(finding.TypeAccount, finding.SeverityMedium, "Twitter: @"+p.TwitterUsername, "Twitter linked on GitHub").
			WithSourceURL("https://twitter.com/" + p.TwitterUsername).
			WithData(map[string]any{"twitter": p.TwitterUsername}).
			WithParent(root.ID, "links to")
		if !sendFinding(ctx, out, f) {
			return
		}
	}

	if depth < 3 || ctx.Err() != nil {
		return
	}

	orgs := c.fetchOrgs(ctx, username)
	if len(orgs) > 0 {
		f := b.New(finding.TypePersonalInfo, finding.SeverityMedium,
			fmt.Sprintf("Organizations: %d", len(orgs)),
			"Member of: "+strings.Join(orgs, ", ")).
			WithData(map[string]any{"organizations": orgs}).
			WithParent(root.ID, "member of")
		if !sendFinding(ctx, out, f) {
			return
		}
	}
	if ctx.Err() != nil {
		return
	}

	emails, languages := c.mineRepos(ctx, username)
	if len(emails) > 0 {
		shown := emails
		if len(shown) > 3 {
			shown = shown[:3]
		}
		f := b.New(finding.TypePersonalInfo, finding.SeverityHigh,
			fmt.Sprintf("Commit Emails: %d found", len(emails)),
			"Emails exposed in git history: "+strings.Join(shown, ", ")).
			WithData(map[string]any{
				"emails":      emails,
				"count":       len(emails),
				"remediation": "Use GitHub's email privacy setting; scrub exposed commits from history",
			}).
			WithParent(root.ID, "emails in")
		if !sendFinding(ctx, out, f) {
			return
		}
	}
	if len(languages) > 0 {
		top := topLanguages(languages, 5)
		f := b.New(finding.TypePersonalInfo, finding.SeverityLow,
			"Primary Languages: "+strings.Join(top, ", "),
			"Most-used languages across public repositories").
			WithData(map[string]any{"languages": languages}).
			WithParent(root.ID, "codes in")
		sendFinding(ctx, out, f)
	}
}

func (c CodeHostProfileReader) fetchOrgs(ctx context.Context, username string) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/users/"+url.PathEscape(username)+"/orgs", nil)
	if err != nil {
		return nil
	}
	release, err := c.throttle(ctx)
	if err != nil {
		return nil
	}
	defer release()
	resp, outcome, err := c.client.Do(ctx, req, httpx.WithBearerAuth())
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return nil
	}
	var orgs []struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&orgs); err != nil {
		return nil
	}
	names := make([]string, 0, len(orgs))
	for _, o := range orgs {
		if o.Login != "" {
			names = append(names, o.Login)
		}
	}
	return names
}

func (c CodeHostProfileReader) mineRepos(ctx context.Context, username string) ([]string, map[string]int) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://api.github.com/users/"+url.PathEscape(username)+"/repos?sort=pushed&per_page=5", nil)
	if err != nil {
		return nil, nil
	}
	release, err := c.throttle(ctx)
	if err != nil {
		return nil, nil
	}
	defer release()
	resp, outcome, err := c.client.Do(ctx, req, httpx.WithBearerAuth())
	if err != nil {
		return nil, nil
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return nil, nil
	}
	var repos []struct {
		FullName string `json:"full_name"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, nil
	}

	languages := make(map[string]int)
	emailSet := make(map[string]struct{})

	limit := repos
	if len(limit) > 3 {
		limit = limit[:3]
	}
	for _, repo := range limit {
		if repo.Language != "" {
			languages[repo.Language]++
		}
		if repo.FullName == "" || ctx.Err() != nil {
			continue
		}
		for _, email := range c.commitEmails(ctx, repo.FullName, username) {
			emailSet[email] = struct{}{}
		}
	}
	emails := make([]string, 0, len(emailSet))
	for e := range emailSet {
		emails = append(emails, e)
	}
	sort.Strings(emails)
	return emails, languages
}

func (c CodeHostProfileReader) commitEmails(ctx context.Context, repoFullName, author string) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://api.github.com/repos/"+repoFullName+"/commits?author="+url.QueryEscape(author)+"&per_page=20", nil)
	if err != nil {
		return nil
	}
	release, err := c.throttle(ctx)
	if err != nil {
		return nil
	}
	defer release()
	resp, outcome, err := c.client.Do(ctx, req, httpx.WithBearerAuth())
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return nil
	}
	var commits []struct {
		Commit struct {
			Author struct {
				Email string `json:"email"`
			} `json:"author"`
		} `json:"commit"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&commits); err != nil {
		return nil
	}
	var emails []string
	for _, c := range commits {
		e := c.Commit.Author.Email
		if e != "" && !strings.Contains(strings.ToLower(e), "noreply") {
			emails = append(emails, e)
		}
	}
	return emails
}

func topLanguages(languages map[string]int, n int) []string {
	type kv struct {
		k string
		v int
	}
	pairs := make([]kv, 0, len(languages))
	for k, v := range languages {
		pairs = append(pairs, kv{k, v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].v != pairs[j].v {
			return pairs[i].v > pairs[j].v
		}
		return pairs[i].k < pairs[j].k
	})
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.k
	}
	return out
}
