// Package core runs the wpperf commands: it fetches results, extracts and pools
// metrics, records history and hands the reports to the output writer.
package core

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/huangsam/wpperf/core/metrics"
	"github.com/huangsam/wpperf/internal/bench"
	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/internal/outwriter"
	"github.com/huangsam/wpperf/internal/wpt"
	"github.com/huangsam/wpperf/schema"
)

// ExecutorFunc defines the function signature for executing the different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// NewResultClient builds the WebPageTest client from the validated config.
func NewResultClient(cfg *contract.Config) contract.ResultClient {
	return wpt.NewHTTPResultClient(cfg.WPTServer, cfg.WPTAPIKey, cfg.Timeout, cfg.Retries, cfg.RetryDelay)
}

// NewBenchmarker builds the HTTP benchmark runner from the validated config.
func NewBenchmarker(cfg *contract.Config) *bench.Runner {
	return bench.NewRunner(bench.Options{
		Number:      cfg.Number,
		Concurrency: cfg.Concurrency,
		Protocol:    cfg.Protocol,
		Timeout:     cfg.Timeout,
		Insecure:    cfg.Insecure,
	})
}

// ExecuteWPTMetrics extracts the configured metric expressions from WebPageTest results.
// It serves as the main entry point for the 'wpt-metrics' command.
func ExecuteWPTMetrics(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	logWPTHeader(ctx, cfg, cfg.TestIDs)
	report, err := GetWPTMetricsResults(ctx, cfg, NewResultClient(cfg), mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteMetricReports([]schema.MetricReport{report}, cfg, time.Since(start))
}

// ExecuteWPTServerTiming lists the Server-Timing metrics of WebPageTest results.
// It serves as the main entry point for the 'wpt-server-timing' command.
func ExecuteWPTServerTiming(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	logWPTHeader(ctx, cfg, cfg.TestIDs)
	report, err := GetWPTServerTimingResults(ctx, cfg, NewResultClient(cfg), mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteMetricReports([]schema.MetricReport{report}, cfg, time.Since(start))
}

// ExecuteBenchmark benchmarks the configured URLs and reports their Server-Timing metrics.
// It serves as the main entry point for the 'benchmark-server-timing' command.
func ExecuteBenchmark(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	urls, err := benchmarkURLs(cfg)
	if err != nil {
		return err
	}
	logBenchmarkHeader(ctx, cfg, urls)

	runner := NewBenchmarker(cfg)
	defer runner.Close()
	reports, err := GetBenchmarkResults(ctx, cfg, runner, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteMetricReports(reports, cfg, time.Since(start))
}

// ExecuteCompare computes the metric deltas between the base and target test sets.
func ExecuteCompare(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	logCompareHeader(ctx, cfg)
	result, err := GetComparisonResults(ctx, cfg, NewResultClient(cfg), mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteComparison(result, cfg, time.Since(start))
}

// ExecuteCheck runs the check command for CI/CD gating. The result is always
// written; ErrCheckFailed is returned afterwards when a threshold was exceeded.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	logWPTHeader(ctx, cfg, cfg.TestIDs)
	result, err := GetCheckResult(ctx, cfg, NewResultClient(cfg), mgr)
	if err != nil {
		return err
	}
	if err := outwriter.NewOutWriter().WriteCheck(result, cfg, time.Since(start)); err != nil {
		return err
	}
	if !result.Passed {
		return ErrCheckFailed
	}
	return nil
}

// ExecuteMetrics prints the supported metric vocabulary.
func ExecuteMetrics(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	return outwriter.NewOutWriter().WriteVocabulary(metrics.Vocabulary(), cfg)
}

// ExecutePercentiles summarizes the numbers read from path, or stdin when path is empty or "-".
func ExecutePercentiles(cfg *contract.Config, path string) error {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	values, err := ReadValues(r)
	if err != nil {
		return err
	}
	summary, err := SummarizeValues(values)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WritePercentiles(summary, cfg)
}
