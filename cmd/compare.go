package cmd

import (
	"errors"

	"github.com/huangsam/wpperf/core"
	"github.com/huangsam/wpperf/internal/contract"
	"github.com/spf13/cobra"
)

// compareCmd focused on before/after comparisons of WebPageTest results.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare metric medians between two sets of WebPageTest results",
	Long: `Extract the same metric expressions from a base and a target set of
WebPageTest tests and show how each median moved.

Each set is pooled across its tests first. Deltas are target minus base, so a
positive delta on a timing metric is a regression.

Ideal for:
- Plugin or theme changes - measure the cost before merging
- Hosting moves - compare the old and new stack on the same page
- Release validation - confirm an optimization actually landed

Examples:
  # One test per side
  wpperf compare --base-test 240101_AiDc4C_1 --target-test 240102_BiDc4C_2

  # Pooled sides with custom expressions
  wpperf compare --base-test A1,A2 --target-test B1,B2 -m "LCP,LCP - TTFB"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		checkCompareAndExecute(core.ExecuteCompare)
	},
}

// checkCompareAndExecute validates compare mode and executes the given function.
func checkCompareAndExecute(executeFunc core.ExecutorFunc) {
	if !cfg.CompareMode {
		contract.LogFatal("Cannot run comparison", errors.New("base and target tests must be provided"))
	}
	if err := executeFunc(rootCtx, cfg, cacheManager); err != nil {
		contract.LogFatal("Cannot run comparison", err)
	}
}
