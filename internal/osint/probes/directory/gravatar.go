package directory

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

// GravatarLookup checks whether the seed email has a Gravatar avatar and, if
// so, fetches the associated public profile JSON for name/location/bio/links.
type GravatarLookup struct {
	client *httpx.Client
}

// NewGravatarLookup returns a GravatarLookup issuing requests through client.
func NewGravatarLookup(client *httpx.Client) GravatarLookup {
	return GravatarLookup{client: client}
}

func (GravatarLookup) Name() string        { return "Gravatar" }
func (GravatarLookup) Description() string { return "Check for a public Gravatar profile" }

func (g GravatarLookup) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
	out := make(chan finding.Finding)
	go func() {
		defer close(out)
		defer probe.Recover(g.Name())
		if sd.Kind != probe.KindEmail {
			return
		}
		g.emit(ctx, out, sd.Email, parentID)
	}()
	return out
}

func (g GravatarLookup) emit(ctx context.Context, out chan<- finding.Finding, email, parentID string) {
	hash := md5Hex(strings.ToLower(strings.TrimSpace(email)))

	avatarURL := fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=404", hash)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, avatarURL, nil)
	if err != nil {
		return
	}
	resp, outcome, err := g.client.Do(ctx, req)
	if err != nil {
		return
	}
	if resp != nil {
		resp.Body.Close()
	}
	if outcome == httpx.OutcomeNotFound {
		return
	}
	if outcome != httpx.OutcomeOK {
		return
	}

	b := finding.NewBuilder("Gravatar")
	avatar := b.New(finding.TypePersonalInfo, finding.SeverityLow,
		"Gravatar Photo Found", "A public avatar is registered for this email").
		WithSourceURL(fmt.Sprintf("https://www.gravatar.com/avatar/%s", hash)).
		WithParent(parentID, "has avatar")
	if !sendFinding(ctx, out, avatar) {
		return
	}

	profileURL := fmt.Sprintf("https://www.gravatar.com/%s.json", hash)
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return
	}
	resp, outcome, err = g.client.Do(ctx, req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return
	}

	var payload struct {
		Entry []struct {
			DisplayName string `json:"displayName"`
			AboutMe     string `json:"aboutMe"`
			CurrentLocation string `json:"currentLocation"`
			Urls        []struct {
				Value string `json:"value"`
				Title string `json:"title"`
			} `json:"urls"`
		} `json:"entry"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || len(payload.Entry) == 0 {
		return
	}
	entry := payload.Entry[0]

	if entry.DisplayName != "" {
		f := b.New(finding.TypePersonalInfo, finding.SeverityMedium,
			"Display Name: "+entry.DisplayName, "Name associated with Gravatar profile").
			Set("name", entry.DisplayName).
			WithParent(avatar.ID, "named")
		if !sendFinding(ctx, out, f) {
			return
		}
	}

	if entry.CurrentLocation != "" {
		f := b.New(finding.TypePersonalInfo, finding.SeverityMedium,
			"Location: "+entry.CurrentLocation, "Location from Gravatar profile").
			WithData(map[string]any{
				"location":   entry.CurrentLocation,
				"source":     "gravatar_profile",
				"confidence": 0.7,
			}).
			WithParent(avatar.ID, "located in")
		if !sendFinding(ctx, out, f) {
			return
		}
	}

	if entry.AboutMe != "" {
		bio := entry.AboutMe
		if len(bio) > 100 {
			bio = bio[:100] + "..."
		}
		f := b.New(finding.TypePersonalInfo, finding.SeverityLow,
			"Bio: "+bio, "About-me text from Gravatar profile").
			Set("bio", entry.AboutMe).
			WithParent(avatar.ID, "wrote")
		if !sendFinding(ctx, out, f) {
			return
		}
	}

	for _, link := range entry.Urls {
		if link.Value == "" {
			continue
		}
		title := link.Title
		if title == "" {
			title = link.Value
		}
		f := b.New(finding.TypeAccount, finding.SeverityLow,
			"Linked URL: "+title, "Link listed on Gravatar profile").
			Set("url", link.Value).
			WithSourceURL(link.Value).
			WithParent(avatar.ID, "links to")
		if !sendFinding(ctx, out, f) {
			return
		}
	}
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
