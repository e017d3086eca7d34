// Package directory holds the hop-1 probes: everything that reasons about
// the seed email directly, without needing a username discovered by an
// earlier probe.
package directory

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

var trailingDigits = regexp.MustCompile(`\d+$`)
var usernameShape = regexp.MustCompile(`^[a-z0-9_]+$`)

// UsernameExtractor derives candidate usernames from the local part of the
// seed email using a handful of common transformation heuristics. It is
// pure text manipulation: no network calls.
type UsernameExtractor struct{}

// NewUsernameExtractor returns a ready UsernameExtractor.
func NewUsernameExtractor() UsernameExtractor { return UsernameExtractor{} }

func (UsernameExtractor) Name() string        { return "Email Analysis" }
func (UsernameExtractor) Description() string { return "Extract potential usernames from email" }

func (u UsernameExtractor) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
	out := make(chan finding.Finding)
	go func() {
		defer close(out)
		defer probe.Recover(u.Name())
		if sd.Kind != probe.KindEmail {
			return
		}
		at := strings.IndexByte(sd.Email, '@')
		if at < 0 {
			return
		}
		local := strings.ToLower(sd.Email[:at])

		candidates := make(map[string]struct{})
		candidates[local] = struct{}{}
		candidates[strings.ReplaceAll(local, ".", "")] = struct{}{}
		candidates[strings.ReplaceAll(local, ".", "_")] = struct{}{}

		for _, sep := range []string{".", "_", "-"} {
			parts := strings.Split(local, sep)
			if len(parts) > 1 {
				candidates[strings.Join(parts, "")] = struct{}{}
				candidates[strings.Join(parts, "_")] = struct{}{}
				if len(parts) == 2 && len(parts[0]) > 0 {
					candidates[parts[0][:1]+parts[1]] = struct{}{}
				}
			}
		}

		if cleaned := trailingDigits.ReplaceAllString(local, ""); cleaned != "" && cleaned != local && len(cleaned) >= 3 {
			candidates[cleaned] = struct{}{}
		}

		usernames := make([]string, 0, len(candidates))
		for c := range candidates {
			if len(c) >= 3 && len(c) <= 30 && usernameShape.MatchString(c) {
				usernames = append(usernames, c)
			}
		}
		sort.Strings(usernames)

		b := finding.NewBuilder("Email Analysis")
		for _, username := range usernames {
			f := b.New(finding.TypeUsername, finding.SeverityLow,
				"Username: "+username,
				"Potential username extracted from email").
				Set("username", username).
				WithParent(parentID, "username from")
			select {
			case out <- f:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
