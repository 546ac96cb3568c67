// src/cli/root.go
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pypdash",
	Short: "Portfolio dashboard for exported analytics data",
	Long: `pypdash turns the analytics data files written by the portfolio exporter
(breakdown.js, growth.js, summary.js) into chart configurations and summary
fragments, either served over HTTP or rendered once to files.

Examples:
  pypdash serve                                   # HTTP server, config from env
  pypdash render --data-dir public/js/output      # JSON to stdout
  pypdash render --viewport xl --out build/       # charts.json + summary.json`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
