package cmd

import (
	"github.com/huangsam/wpperf/core"
	"github.com/huangsam/wpperf/internal/contract"
	"github.com/spf13/cobra"
)

// percentilesCmd summarizes a plain list of numbers.
var percentilesCmd = &cobra.Command{
	Use:   "percentiles [file]",
	Short: "Compute percentiles for newline-separated numbers",
	Long: `Read one number per line from a file or stdin and print the p10, p25, p50,
p75 and p90 percentiles together with the standard deviation and MAD.

Blank lines and "null" count as missing values and are left out of the summary.

Examples:
  # Summarize a file
  wpperf percentiles timings.txt

  # Pipe values in
  cat timings.txt | wpperf percentiles --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		if err := core.ExecutePercentiles(cfg, path); err != nil {
			contract.LogFatal("Cannot compute percentiles", err)
		}
	},
}
