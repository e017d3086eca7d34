package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danieljcheung/trace/internal/osint/events"
	"github.com/danieljcheung/trace/internal/osint/finding"
	"github.com/danieljcheung/trace/internal/osint/scan"
	"github.com/danieljcheung/trace/internal/osintconfig"
	"github.com/danieljcheung/trace/internal/osintlog"
)

var (
	scanEmail   string
	scanDepth   int
	scanEnvFile string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a self-assessment scan against a seed email",
	Long:  `Run the three-hop self-assessment scan and print each finding, progress update, and the final report as it streams in.`,
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanEmail, "email", "", "seed email to scan (required)")
	scanCmd.Flags().IntVar(&scanDepth, "depth", 1, "scan depth: 1 (hop-1 only), 2 (+ username expansion), 3 (+ correlation)")
	scanCmd.Flags().StringVar(&scanEnvFile, "env-file", "", "optional .env file carrying TRACE_OSINT_* overrides")
	_ = scanCmd.MarkFlagRequired("email")
}

func runScan(cmd *cobra.Command, args []string) error {
	osintlog.Init(osintlog.Config{Format: "console", Level: "info", Component: "osint-scan"})

	cfg := osintconfig.Load(scanEnvFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	stream, err := scan.Scan(ctx, cfg, scan.ScanRequest{Email: scanEmail, Depth: scanDepth})
	if err != nil {
		return err
	}

	for ev := range stream {
		printEvent(ev)
	}
	return nil
}

func printEvent(ev events.Event) {
	switch ev.Kind {
	case events.KindStart:
		fmt.Printf("[start] depth=%d\n", ev.Start.Depth)
	case events.KindFinding:
		printFinding(ev.Finding.Finding)
	case events.KindProgress:
		fmt.Printf("[progress] %d%% (%d findings, %.1fs elapsed)\n",
			ev.Progress.Progress, ev.Progress.FindingCount, ev.Progress.ElapsedSeconds)
	case events.KindLog:
		fmt.Printf("[log] %s %s\n", ev.Log.Level, ev.Log.Message)
	case events.KindComplete:
		c := ev.Complete
		fmt.Printf("[complete] risk=%d (%s) findings=%d time=%.1fs\n",
			c.RiskScore, c.RiskLevel, len(c.Findings), c.ScanTimeSeconds)
		fmt.Printf("  resources_checked=%d accounts_found=%d usernames_found=%d\n",
			c.Stats.ResourcesChecked, c.Stats.AccountsFound, c.Stats.UsernamesFound)
	case events.KindTimeout:
		t := ev.Timeout
		fmt.Printf("[timeout] findings=%d time=%.1fs (partial results)\n", len(t.Findings), t.ScanTimeSeconds)
	case events.KindError:
		fmt.Printf("[error] %s: %s\n", ev.Error.ErrorKind, ev.Error.Message)
	}
}

func printFinding(f finding.Finding) {
	fmt.Printf("[finding] %-9s %-8s %s — %s\n", f.Severity, f.Type, f.Title, f.Description)
}
