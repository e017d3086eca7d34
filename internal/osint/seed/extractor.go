package seed

import (
	"strings"

	"github.com/danieljcheung/trace/internal/osint/finding"
)

// Extractor derives new seeds from each finding the orchestrator receives
// and folds them into a State. It only reads the finding and writes to the
// aggregate; it never emits findings of its own.
type Extractor struct{}

// NewExtractor returns a ready-to-use Extractor. It carries no state of its
// own — the State is always passed explicitly — so a single Extractor value
// is safe to reuse across concurrent scans.
func NewExtractor() Extractor { return Extractor{} }

// Observe applies the five extraction rules to f, mutating state.
func (Extractor) Observe(state *State, f finding.Finding) {
	if f.Type == finding.TypeUsername {
		if u, ok := stringData(f, "username"); ok {
			state.AddUsername(u)
		}
	} else if u, ok := stringData(f, "username"); ok && len(u) >= 3 {
		state.AddUsername(u)
	}

	if bio, ok := stringData(f, "bio"); ok {
		state.AddBio(bio)
	}

	if loc, ok := stringData(f, "location"); ok {
		confidence := 0.5
		if c, ok := f.Data["confidence"]; ok {
			if cf, ok := toFloat(c); ok {
				confidence = cf
			}
		}
		sourceType, ok := stringData(f, "source")
		if !ok {
			sourceType = "unknown"
		}
		state.AddLocation(LocationHint{
			Location:   loc,
			Source:     f.Source,
			SourceType: sourceType,
			Confidence: confidence,
		})
	}

	if f.Type == finding.TypeAccount {
		platform, hasPlatform := stringData(f, "platform")
		username, hasUsername := stringData(f, "username")
		if hasPlatform && hasUsername {
			state.AddAccount(FoundAccount{
				Platform: platform,
				Username: username,
				URL:      f.SourceURL,
			})
		}
	}

	if u, ok := stringData(f, "url"); ok {
		state.AddURL(u)
	} else if strings.TrimSpace(f.SourceURL) != "" {
		state.AddURL(f.SourceURL)
	}
}

func stringData(f finding.Finding, key string) (string, bool) {
	if f.Data == nil {
		return "", false
	}
	v, ok := f.Data[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
