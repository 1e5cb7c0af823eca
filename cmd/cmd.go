// Package cmd defines the command-line interface for wpperf.
package cmd

import (
	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(wptMetricsCmd)
	rootCmd.AddCommand(wptServerTimingCmd)
	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(percentilesCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)

	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Persistent flags double as Viper keys.
	rootCmd.PersistentFlags().StringSliceP("test", "t", nil, "WebPageTest test IDs (repeatable or comma-separated)")
	rootCmd.PersistentFlags().StringSliceP("metrics", "m", contract.DefaultMetrics, "Metric expressions to extract (e.g., \"LCP,LCP - TTFB,Server-Timing:wp-total\")")
	rootCmd.PersistentFlags().String("wpt-server", contract.DefaultWPTServer, "WebPageTest server base URL")
	rootCmd.PersistentFlags().String("wpt-api-key", "", "WebPageTest API key (prefer WPPERF_WPT_API_KEY)")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultTimeout.String(), "Per-request timeout")
	rootCmd.PersistentFlags().Int("retries", contract.DefaultRetries, "Retries for pending or failed WebPageTest fetches")
	rootCmd.PersistentFlags().String("retry-delay", contract.DefaultRetryDelay.String(), "Delay between WebPageTest retries")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().StringP("output", "o", string(schema.TextOut), "Output format: text or csv or json or markdown or yaml or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().Bool("include-runs", false, "Print every run value next to the summary")
	rootCmd.PersistentFlags().Bool("show-percentiles", false, "Print p10 through p90 instead of only the median")
	rootCmd.PersistentFlags().Bool("show-variance", false, "Print standard deviation and MAD columns")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or badger or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Cache connection string or path (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Report history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Report history connection string or path (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in status lines (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	benchmarkCmd.Flags().StringSliceP("url", "u", nil, "Target URLs to benchmark (repeatable or comma-separated)")
	benchmarkCmd.Flags().StringP("file", "f", "", "File with one target URL per line")
	benchmarkCmd.Flags().IntP("number", "n", contract.DefaultNumber, "Requests to send per URL")
	benchmarkCmd.Flags().IntP("concurrency", "c", contract.DefaultConcurrency, "Requests in flight per URL")
	benchmarkCmd.Flags().String("protocol", string(schema.HTTP1), "HTTP protocol: h1 or h2 or h3")
	benchmarkCmd.Flags().BoolP("insecure", "k", false, "Skip TLS certificate verification")
	if err := viper.BindPFlags(benchmarkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding benchmark flags", err)
	}

	compareCmd.Flags().StringSlice("base-test", nil, "WebPageTest test IDs for the BEFORE state")
	compareCmd.Flags().StringSlice("target-test", nil, "WebPageTest test IDs for the AFTER state")
	if err := viper.BindPFlags(compareCmd.Flags()); err != nil {
		contract.LogFatal("Error binding compare flags", err)
	}

	// --thresholds must not shadow the thresholds map read from the config file.
	checkCmd.Flags().String("thresholds", "", "Median thresholds for CI/CD gating (format: 'LCP:2500,TTFB:800')")
	if err := viper.BindPFlag("thresholds-override", checkCmd.Flags().Lookup("thresholds")); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
