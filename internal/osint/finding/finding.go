// Package finding defines the Finding type: the single currency of an OSINT
// scan. Every probe emits findings; the orchestrator never mutates one after
// it is emitted.
package finding

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Type identifies what kind of thing a Finding describes.
type Type string

const (
	TypeEmail        Type = "EMAIL"
	TypeUsername     Type = "USERNAME"
	TypeAccount      Type = "ACCOUNT"
	TypePersonalInfo Type = "PERSONAL_INFO"
	TypeBreach       Type = "BREACH"
	TypeDomain       Type = "DOMAIN"
)

// Severity is assigned by the producing probe and drives the risk score.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// usernamePattern is the hygiene rule from the data model: usernames are
// 2-30 chars of letters, digits, underscore, dot or hyphen.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{2,30}$`)

// ValidUsername reports whether s satisfies the username hygiene invariant.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// Finding is a single immutable node in the scan's causal graph. Data is an
// open bag of probe-specific evidence (breach name, username, platform,
// location, ...). ParentID is empty only for the root EMAIL finding.
type Finding struct {
	ID          string         `json:"id"`
	Type        Type           `json:"type"`
	Severity    Severity       `json:"severity"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Source      string         `json:"source"`
	SourceURL   string         `json:"source_url,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Data        map[string]any `json:"data,omitempty"`
	ParentID    string         `json:"parent_id,omitempty"`
	LinkLabel   string         `json:"link_label,omitempty"`
}

// Builder constructs findings with a consistent ID/timestamp policy so
// probes never hand-roll uuid.New() calls inline.
type Builder struct {
	Source string
}

// NewBuilder returns a Builder that stamps every finding it creates with
// source as the originating probe name.
func NewBuilder(source string) Builder {
	return Builder{Source: source}
}

// New creates a Finding with a fresh ID and the current UTC timestamp.
func (b Builder) New(typ Type, severity Severity, title, description string) Finding {
	return Finding{
		ID:          uuid.NewString(),
		Type:        typ,
		Severity:    severity,
		Title:       title,
		Description: description,
		Source:      b.Source,
		Timestamp:   time.Now().UTC(),
		Data:        map[string]any{},
	}
}

// WithParent returns f parented to parentID with the given edge label.
func (f Finding) WithParent(parentID, linkLabel string) Finding {
	f.ParentID = parentID
	f.LinkLabel = linkLabel
	return f
}

// WithSourceURL attaches a deep link to the external evidence.
func (f Finding) WithSourceURL(url string) Finding {
	f.SourceURL = url
	return f
}

// WithData merges kv into f.Data, returning f for chaining.
func (f Finding) WithData(kv map[string]any) Finding {
	if f.Data == nil {
		f.Data = make(map[string]any, len(kv))
	}
	for k, v := range kv {
		f.Data[k] = v
	}
	return f
}

// Set stores a single key/value pair in f.Data, returning f for chaining.
func (f Finding) Set(key string, value any) Finding {
	if f.Data == nil {
		f.Data = map[string]any{}
	}
	f.Data[key] = value
	return f
}
