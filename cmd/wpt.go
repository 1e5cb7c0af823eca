package cmd

import (
	"github.com/huangsam/wpperf/core"
	"github.com/huangsam/wpperf/internal/contract"
	"github.com/spf13/cobra"
)

// wptMetricsCmd extracts metric expressions from WebPageTest results.
var wptMetricsCmd = &cobra.Command{
	Use:   "wpt-metrics",
	Short: "Extract metrics from one or more WebPageTest results",
	Long: `Fetch WebPageTest results and extract the requested metric expressions from every run.

When several test IDs are given, the runs of all tests are pooled into one
result set before the median and percentiles are computed. This is how you
go beyond the run ceiling of a single WebPageTest test.

Metric expressions combine vocabulary names with + and -, for example
"LCP - TTFB". Run 'wpperf metrics' to list the vocabulary.

Examples:
  # Default metrics for a single test
  wpperf wpt-metrics --test 240101_AiDc4C_1

  # Pool two tests and show the spread
  wpperf wpt-metrics --test 240101_AiDc4C_1,240101_BiDc4C_2 --show-percentiles --show-variance

  # Custom expressions as CSV
  wpperf wpt-metrics -t 240101_AiDc4C_1 -m "LCP,LCP - TTFB" --output csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteWPTMetrics(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot extract WebPageTest metrics", err)
		}
	},
}

// wptServerTimingCmd lists the Server-Timing metrics recorded by WebPageTest.
var wptServerTimingCmd = &cobra.Command{
	Use:   "wpt-server-timing",
	Short: "Extract Server-Timing metrics from one or more WebPageTest results",
	Long: `Fetch WebPageTest results and extract every Server-Timing metric from the
response header of the main document.

The metric names are discovered from the first run. Every other run must carry
the same metrics, otherwise the command fails instead of reporting gaps.

Examples:
  # Server-Timing of a single test
  wpperf wpt-server-timing --test 240101_AiDc4C_1

  # Pool tests and keep every run value
  wpperf wpt-server-timing -t 240101_AiDc4C_1,240101_BiDc4C_2 --include-runs`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteWPTServerTiming(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot extract Server-Timing metrics", err)
		}
	},
}
