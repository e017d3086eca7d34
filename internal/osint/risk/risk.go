// Package risk implements the deterministic scoring function over a
// finished scan's finding set. It depends on nothing but the findings
// themselves: no external state, no clock, no randomness.
package risk

import (
	"strings"

	"github.com/danieljcheung/trace/internal/osint/finding"
)

// Label is the risk band a score falls into.
type Label string

const (
	LabelLow      Label = "LOW"
	LabelMedium   Label = "MEDIUM"
	LabelHigh     Label = "HIGH"
	LabelCritical Label = "CRITICAL"
)

// Score computes the bounded risk score and label for findings. It is total
// — it never fails — and is pure in findings alone.
func Score(findings []finding.Finding) (int, Label) {
	var critical, high, medium, low, accounts int
	var titles, descriptions []string

	for _, f := range findings {
		switch f.Severity {
		case finding.SeverityCritical:
			critical++
		case finding.SeverityHigh:
			high++
		case finding.SeverityMedium:
			medium++
		case finding.SeverityLow:
			low++
		}
		if f.Type == finding.TypeAccount {
			accounts++
		}
		titles = append(titles, strings.ToLower(f.Title))
		descriptions = append(descriptions, strings.ToLower(f.Description))
	}

	score := 0
	score += clamp(critical*25, 50)
	score += clamp(high*10, 30)
	score += clamp(medium*3, 15)
	score += clamp(low*1, 5)

	allText := strings.Join(titles, " ") + " " + strings.Join(descriptions, " ")

	if strings.Contains(allText, "password") && (strings.Contains(allText, "exposed") || strings.Contains(allText, "breach")) {
		score += 15
	}
	if strings.Contains(allText, "address") && (strings.Contains(allText, "home") || strings.Contains(allText, "street") || strings.Contains(allText, "residence")) {
		score += 15
	}
	if strings.Contains(allText, "phone") {
		score += 10
	}

	hasNameTitle := false
	hasLocationTitle := false
	for _, t := range titles {
		if strings.Contains(t, "name") && strings.Contains(t, ":") {
			hasNameTitle = true
		}
		if strings.Contains(t, "location") {
			hasLocationTitle = true
		}
	}
	if hasNameTitle && hasLocationTitle {
		score += 5
	}

	if accounts > 10 {
		score += 5
	}

	if score > 100 {
		score = 100
	}

	return score, labelFor(score)
}

func clamp(value, cap int) int {
	if value > cap {
		return cap
	}
	return value
}

func labelFor(score int) Label {
	switch {
	case score >= 70:
		return LabelCritical
	case score >= 50:
		return LabelHigh
	case score >= 30:
		return LabelMedium
	default:
		return LabelLow
	}
}
