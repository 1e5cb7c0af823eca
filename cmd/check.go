package cmd

import (
	"errors"
	"os"

	"github.com/huangsam/wpperf/core"
	"github.com/huangsam/wpperf/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Enforce metric thresholds for CI/CD pipelines (fails build on violations)",
	Long: `Extract metrics from WebPageTest results and fail when a median exceeds its threshold.

Designed for CI/CD integration - exits with a non-zero code when any metric is
over budget. A metric without any value also fails, since it cannot be proven
to be within budget.

Thresholds come from the 'thresholds' map in .wpperf.yaml and from --thresholds,
which takes precedence.

Examples:
  # Gate on LCP and TTFB
  wpperf check --test 240101_AiDc4C_1 --thresholds "LCP:2500,TTFB:800"

  # Gate on a Server-Timing metric from a pooled run
  wpperf check -t A1,A2 --thresholds "Server-Timing:wp-total:300"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		err := core.ExecuteCheck(rootCtx, cfg, cacheManager)
		if errors.Is(err, core.ErrCheckFailed) {
			// The result table already explains the failure
			_ = stopProfiling()
			os.Exit(1)
		}
		if err != nil {
			contract.LogFatal("Threshold check failed", err)
		}
	},
}
