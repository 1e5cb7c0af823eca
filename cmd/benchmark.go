package cmd

import (
	"github.com/huangsam/wpperf/core"
	"github.com/huangsam/wpperf/internal/contract"
	"github.com/spf13/cobra"
)

// benchmarkCmd sends live requests and reports their Server-Timing metrics.
var benchmarkCmd = &cobra.Command{
	Use:     "benchmark-server-timing",
	Aliases: []string{"benchmark"},
	Short:   "Benchmark live URLs and report Server-Timing, TTFB and response time",
	Long: `Send a fixed number of GET requests to each URL and collect the Server-Timing
header, the time to first byte and the total response time of every response.

Failed requests and non-2xx responses are left out of the runs. A URL without a
single successful response is reported with its error; the command only fails
when every URL failed.

Examples:
  # 20 requests against one page
  wpperf benchmark-server-timing --url https://example.org/

  # Several URLs from a file over HTTP/2
  wpperf benchmark-server-timing --file urls.txt --number 50 --concurrency 5 --protocol h2

  # HTTP/3 against a staging host with a self-signed certificate
  wpperf benchmark -u https://staging.example.org/ --protocol h3 --insecure`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBenchmark(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run benchmark", err)
		}
	},
}
