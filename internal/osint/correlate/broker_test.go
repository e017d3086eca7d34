package correlate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/probe"
	"github.com/danieljcheung/trace/internal/osint/seed"
)

func TestDataBrokerEnumerator_Run_IgnoresNonAggregateSeed(t *testing.T) {
	d := NewDataBrokerEnumerator()
	ch := d.Run(context.Background(), probe.UsernameSeed("alice"), 3, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count)
}

func TestDataBrokerEnumerator_Run_EmitsWarningAndOptOutLinks(t *testing.T) {
	d := NewDataBrokerEnumerator()
	st := seed.New("person@example.com")
	ch := d.Run(context.Background(), probe.AggregateSeed(st), 3, "parent-1")

	var findings []finding.Finding
	for f := range ch {
		findings = append(findings, f)
	}
	require.NotEmpty(t, findings)
	assert.Equal(t, "Data Broker Exposure Warning", findings[0].Title)
	assert.Equal(t, len(dataBrokers), findings[0].Data["broker_count"])

	var sawOptOut bool
	for _, f := range findings {
		if f.Title == "Opt-Out Links Available" {
			sawOptOut = true
			links, _ := f.Data["opt_out_links"].([]map[string]string)
			assert.Len(t, links, len(dataBrokers))
		}
	}
	assert.True(t, sawOptOut)
}
