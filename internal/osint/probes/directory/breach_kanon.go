package directory

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

// hibpRangeURL is the k-anonymity range API: only the first 5 hex chars of
// the SHA-1 digest are sent, never the plaintext email or a full hash.
const hibpRangeURL = "https://api.pwnedpasswords.com/range/%s"

// BreachKAnonymityLookup is the optional, k-anonymity-preserving companion
// to BreachAggregator: it never transmits anything but a 5-character hash
// prefix, at the cost of only confirming exposure, not naming the breach.
type BreachKAnonymityLookup struct {
	client *httpx.Client
}

// NewBreachKAnonymityLookup returns a probe issuing its lookup through client.
func NewBreachKAnonymityLookup(client *httpx.Client) BreachKAnonymityLookup {
	return BreachKAnonymityLookup{client: client}
}

func (BreachKAnonymityLookup) Name() string { return "Breach Lookup (k-anonymity)" }
func (BreachKAnonymityLookup) Description() string {
	return "Check breach exposure via hash-prefix k-anonymity"
}

func (p BreachKAnonymityLookup) Run(ctx context.Context, sd probe.Seed, depth int, parentID string) <-chan finding.Finding {
	out := make(chan finding.Finding)
	go func() {
		defer close(out)
		defer probe.Recover(p.Name())
		if sd.Kind != probe.KindEmail {
			return
		}
		p.emit(ctx, out, sd.Email, parentID)
	}()
	return out
}

func (p BreachKAnonymityLookup) emit(ctx context.Context, out chan<- finding.Finding, email, parentID string) {
	email = strings.ToLower(strings.TrimSpace(email))
	sum := sha1.Sum([]byte(email))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := digest[:5], digest[5:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(hibpRangeURL, prefix), nil)
	if err != nil {
		return
	}
	resp, outcome, err := p.client.Do(ctx, req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if outcome != httpx.OutcomeOK {
		return
	}

	var count int
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		if parts[0] == suffix {
			n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err == nil {
				count = n
			}
			break
		}
	}
	if count == 0 {
		return
	}

	f := finding.NewBuilder("Have I Been Pwned").New(finding.TypeBreach, finding.SeverityCritical,
		"Password Hash Exposed",
		fmt.Sprintf("Found in %d data breach(es)", count)).
		WithSourceURL("https://haveibeenpwned.com").
		WithData(map[string]any{
			"breach_count": count,
			"api":          "k-anonymity",
		}).
		WithParent(parentID, "exposed in")
	sendFinding(ctx, out, f)
}
