package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljcheung/trace/internal/osintconfig"
)

var configEnvFile string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  `Inspect the environment knobs the scan core reads at process start.`,
}

var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show effective configuration",
	Long:  `Display the configuration that would be used for a scan, after applying any TRACE_OSINT_* overrides.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := osintconfig.Load(configEnvFile)
		fmt.Printf("scan_deadline:      %s\n", cfg.ScanDeadline)
		fmt.Printf("probe_deadline:     %s\n", cfg.ProbeDeadline)
		fmt.Printf("hop1_fanout:        %d\n", cfg.Hop1FanOut)
		fmt.Printf("hop2_username_cap:  %d\n", cfg.Hop2UsernameCap)
		fmt.Printf("hop2_fanout:        %d\n", cfg.Hop2FanOut)
		if cfg.CodeHostToken == "" {
			fmt.Println("code_host_token:    (none - unauthenticated rate limit)")
		} else {
			fmt.Println("code_host_token:    (set)")
		}
		for depth := 1; depth <= 3; depth++ {
			fmt.Printf("progress_constant[%d]: %d\n", depth, cfg.ProgressConstants[depth])
		}
	},
}

func init() {
	configCmd.PersistentFlags().StringVar(&configEnvFile, "env-file", "", "optional .env file carrying TRACE_OSINT_* overrides")
	configCmd.AddCommand(configInfoCmd)
}
