package main

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljcheung/trace/internal/osint/events"
	"github.com/danieljcheung/trace/internal/osint/finding"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestPrintEvent_Start(t *testing.T) {
	out := captureStdout(t, func() {
		printEvent(events.NewStart(2, time.Now()))
	})
	assert.Contains(t, out, "[start]")
	assert.Contains(t, out, "depth=2")
}

func TestPrintEvent_Finding(t *testing.T) {
	f := finding.Finding{Severity: finding.SeverityHigh, Type: finding.TypeBreach, Title: "Pwned", Description: "found in a breach"}
	out := captureStdout(t, func() {
		printEvent(events.NewFinding(f))
	})
	assert.Contains(t, out, "[finding]")
	assert.Contains(t, out, "Pwned")
	assert.Contains(t, out, "found in a breach")
}

func TestPrintEvent_Progress(t *testing.T) {
	out := captureStdout(t, func() {
		printEvent(events.NewProgress(50, 3, 2500*time.Millisecond))
	})
	assert.Contains(t, out, "[progress]")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "3 findings")
}

func TestPrintEvent_Log(t *testing.T) {
	out := captureStdout(t, func() {
		printEvent(events.NewLog("warn", "probe timed out"))
	})
	assert.Contains(t, out, "[log]")
	assert.Contains(t, out, "warn")
	assert.Contains(t, out, "probe timed out")
}

func TestPrintEvent_Complete(t *testing.T) {
	out := captureStdout(t, func() {
		printEvent(events.NewComplete(events.Complete{
			RiskScore:       72,
			RiskLevel:       "high",
			Findings:        []finding.Finding{{ID: "f-1"}},
			ScanTimeSeconds: 4.2,
			Stats:           events.Stats{ResourcesChecked: 9, AccountsFound: 2, UsernamesFound: 1},
		}))
	})
	assert.Contains(t, out, "[complete]")
	assert.Contains(t, out, "risk=72")
	assert.Contains(t, out, "resources_checked=9")
}

func TestPrintEvent_Timeout(t *testing.T) {
	out := captureStdout(t, func() {
		printEvent(events.NewTimeout(events.Timeout{Findings: []finding.Finding{{ID: "f-1"}, {ID: "f-2"}}, ScanTimeSeconds: 30}))
	})
	assert.Contains(t, out, "[timeout]")
	assert.Contains(t, out, "findings=2")
}

func TestPrintEvent_Error(t *testing.T) {
	out := captureStdout(t, func() {
		printEvent(events.NewError("config_error", "invalid deadline"))
	})
	assert.Contains(t, out, "[error]")
	assert.Contains(t, out, "config_error")
	assert.Contains(t, out, "invalid deadline")
}

func TestScanCmd_RequiresEmailFlag(t *testing.T) {
	buf := &bytes.Buffer{}
	scanCmd.SetArgs([]string{})
	scanCmd.SetOut(buf)
	scanCmd.SetErr(buf)

	err := scanCmd.Execute()
	assert.Error(t, err)
}
