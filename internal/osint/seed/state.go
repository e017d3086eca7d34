// Package seed holds the aggregated, ephemeral, per-scan state and the
// extractor that derives new seeds from each finding as the scan runs.
package seed

import (
	"strings"
	"sync"
	"time"

	"github.com/danieljcheung/trace/internal/osint/finding"
)

// LocationHint is one location clue surfaced by a lower-hop probe.
type LocationHint struct {
	Location   string
	Source     string
	SourceType string
	Confidence float64
}

// FoundAccount is a discovered platform/username pairing.
type FoundAccount struct {
	Platform string
	Username string
	URL      string
}

// AuditEntry is one PII-free narration line recorded during the scan.
type AuditEntry struct {
	Timestamp time.Time
	Level     string
	Message   string
}

// State is the aggregated scan state accumulated across hops. It
// lives entirely in process memory for the lifetime of one scan: created at
// scan entry, discarded when the event stream closes. Nothing here is
// persisted or shared across scans.
type State struct {
	mu sync.Mutex

	findings  []finding.Finding
	usernames map[string]struct{}
	usernameOrder []string
	bios      []string
	locations []LocationHint
	accounts  []FoundAccount
	urls      []string
	urlSeen   map[string]struct{}
	audit     []AuditEntry

	StartTime time.Time

	// SeedEmail is the scan's verified seed address. Correlation probes
	// read it (e.g. to build data-broker search URLs) but nothing writes
	// it once the state is constructed.
	SeedEmail string
}

// New returns an empty aggregated state for email, stamped with the current
// time as the scan's start.
func New(email string) *State {
	return &State{
		usernames: make(map[string]struct{}),
		urlSeen:   make(map[string]struct{}),
		StartTime: time.Now(),
		SeedEmail: email,
	}
}

// RecordFinding appends f to the ordered finding list. It does not run
// extraction; callers invoke Extractor.Observe separately so the two
// concerns (storage vs. derivation) stay independent, matching the
// teacher's separation between FindingsStore.Add and patrol's seed-context
// builders.
func (s *State) RecordFinding(f finding.Finding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findings = append(s.findings, f)
}

// Findings returns a snapshot copy of every finding recorded so far, in
// emission order.
func (s *State) Findings() []finding.Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]finding.Finding, len(s.findings))
	copy(out, s.findings)
	return out
}

// AddUsername adds a lower-cased username to the deduplicated set, returning
// true if it was not already present.
func (s *State) AddUsername(username string) bool {
	u := strings.ToLower(strings.TrimSpace(username))
	if len(u) < 3 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usernames[u]; ok {
		return false
	}
	s.usernames[u] = struct{}{}
	s.usernameOrder = append(s.usernameOrder, u)
	return true
}

// Usernames returns the discovered usernames in first-seen (insertion)
// order, which the orchestrator relies on for the hop-2 breadth cap.
func (s *State) Usernames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.usernameOrder))
	copy(out, s.usernameOrder)
	return out
}

// AddBio appends a free-text biography.
func (s *State) AddBio(bio string) {
	if strings.TrimSpace(bio) == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bios = append(s.bios, bio)
}

// Bios returns every biography gathered so far.
func (s *State) Bios() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.bios))
	copy(out, s.bios)
	return out
}

// AddLocation appends a location hint.
func (s *State) AddLocation(h LocationHint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations = append(s.locations, h)
}

// Locations returns every location hint gathered so far.
func (s *State) Locations() []LocationHint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LocationHint, len(s.locations))
	copy(out, s.locations)
	return out
}

// AddAccount appends a discovered platform/username record and folds the
// username into the username set.
func (s *State) AddAccount(a FoundAccount) {
	s.mu.Lock()
	s.accounts = append(s.accounts, a)
	s.mu.Unlock()
	s.AddUsername(a.Username)
}

// Accounts returns every discovered account so far.
func (s *State) Accounts() []FoundAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FoundAccount, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// AddURL records a URL worth checking against historical archives.
// Deduplication happens at consumption time via URLs(), not here, per spec.
func (s *State) AddURL(u string) {
	if u == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = append(s.urls, u)
}

// URLs returns the recorded URLs, deduplicated.
func (s *State) URLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(s.urls))
	out := make([]string, 0, len(s.urls))
	for _, u := range s.urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// Log appends a PII-scrubbed audit entry.
func (s *State) Log(level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, AuditEntry{Timestamp: time.Now().UTC(), Level: level, Message: message})
}

// AuditLog returns the full ordered audit trail.
func (s *State) AuditLog() []AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AuditEntry, len(s.audit))
	copy(out, s.audit)
	return out
}

// AccountCount returns the number of discovered accounts. The risk scorer
// does not read it; risk.Score counts ACCOUNT findings itself.
func (s *State) AccountCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}
