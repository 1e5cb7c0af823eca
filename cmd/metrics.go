package cmd

import (
	"github.com/huangsam/wpperf/core"
	"github.com/huangsam/wpperf/internal/contract"
	"github.com/spf13/cobra"
)

// metricsCmd displays the supported metric vocabulary.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "List the supported metrics and the expression syntax",
	Long: `Show every metric name that can be used in --metrics and --thresholds, the
WebPageTest field it reads, its unit, and how expressions are combined.

No WebPageTest result is fetched - this is purely informational.

Examples:
  # Show the vocabulary
  wpperf metrics

  # As JSON for tooling
  wpperf metrics --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
