package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danieljcheung/trace/internal/osint/finding"
)

func newFinding(typ finding.Type, sev finding.Severity, title, desc string) finding.Finding {
	return finding.NewBuilder("test").New(typ, sev, title, desc)
}

func TestScore_Empty(t *testing.T) {
	score, label := Score(nil)
	assert.Equal(t, 0, score)
	assert.Equal(t, LabelLow, label)
}

func TestScore_SeverityBuckets(t *testing.T) {
	cases := []struct {
		name     string
		findings []finding.Finding
		wantMin  int
	}{
		{
			name: "single critical",
			findings: []finding.Finding{
				newFinding(finding.TypeBreach, finding.SeverityCritical, "Breach", "found"),
			},
			wantMin: 25,
		},
		{
			name: "critical caps at 50",
			findings: func() []finding.Finding {
				var fs []finding.Finding
				for i := 0; i < 10; i++ {
					fs = append(fs, newFinding(finding.TypeBreach, finding.SeverityCritical, "Breach", "found"))
				}
				return fs
			}(),
			wantMin: 50,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, _ := Score(tc.findings)
			assert.GreaterOrEqual(t, score, tc.wantMin)
		})
	}
}

func TestScore_PasswordBreachBonus(t *testing.T) {
	findings := []finding.Finding{
		newFinding(finding.TypeBreach, finding.SeverityLow, "Password Exposed", "credentials breach detected"),
	}
	score, _ := Score(findings)
	// base low severity (1, clamped) + 15-point password/breach text bonus
	assert.GreaterOrEqual(t, score, 15)
}

func TestScore_HomeAddressBonus(t *testing.T) {
	findings := []finding.Finding{
		newFinding(finding.TypePersonalInfo, finding.SeverityLow, "Home Address", "street residence found"),
	}
	score, _ := Score(findings)
	assert.GreaterOrEqual(t, score, 15)
}

func TestScore_NameAndLocationBonus(t *testing.T) {
	findings := []finding.Finding{
		newFinding(finding.TypePersonalInfo, finding.SeverityLow, "Real Name: Jane Doe", "from profile"),
		newFinding(finding.TypePersonalInfo, finding.SeverityLow, "Location: Seattle", "from profile"),
	}
	score, _ := Score(findings)
	assert.GreaterOrEqual(t, score, 5)
}

func TestScore_ManyAccountsBonus(t *testing.T) {
	var findings []finding.Finding
	for i := 0; i < 11; i++ {
		findings = append(findings, newFinding(finding.TypeAccount, finding.SeverityLow, "Account", "found"))
	}
	score, _ := Score(findings)
	assert.GreaterOrEqual(t, score, 5)
}

func TestScore_NeverExceeds100(t *testing.T) {
	var findings []finding.Finding
	for i := 0; i < 50; i++ {
		findings = append(findings, newFinding(finding.TypeBreach, finding.SeverityCritical,
			"Password Exposed", "home address street residence phone breach"))
	}
	score, label := Score(findings)
	assert.LessOrEqual(t, score, 100)
	assert.Equal(t, LabelCritical, label)
}

func TestLabelFor_Bands(t *testing.T) {
	cases := []struct {
		score int
		want  Label
	}{
		{0, LabelLow},
		{29, LabelLow},
		{30, LabelMedium},
		{49, LabelMedium},
		{50, LabelHigh},
		{69, LabelHigh},
		{70, LabelCritical},
		{100, LabelCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, labelFor(tc.score), "score=%d", tc.score)
	}
}
