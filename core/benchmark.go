package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/wpperf/core/metrics"
	"github.com/huangsam/wpperf/internal/bench"
	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
)

// ErrNoURLs is returned when the benchmark command has nothing to request.
var ErrNoURLs = errors.New("at least one --url or a --file is required")

// benchmarkExpressions are measured for every benchmarked URL besides its Server-Timing metrics.
var benchmarkExpressions = []string{"TTFB", "Response Time"}

// benchmarkURLs combines the --url values with the URLs read from --file.
func benchmarkURLs(cfg *contract.Config) ([]string, error) {
	urls := append([]string{}, cfg.URLs...)
	if cfg.URLFile != "" {
		fromFile, err := bench.ReadURLFile(cfg.URLFile)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}
	return urls, nil
}

// GetBenchmarkResults benchmarks every configured URL and returns one report per URL
// in input order. A failing URL keeps its slot with Error set; an error is only
// returned when every URL failed.
func GetBenchmarkResults(ctx context.Context, cfg *contract.Config, b contract.Benchmarker, mgr contract.CacheManager) ([]schema.MetricReport, error) {
	urls, err := benchmarkURLs(cfg)
	if err != nil {
		return nil, err
	}
	ctx = beginReport(ctx, cfg, mgr, "benchmark-server-timing")

	surveyed := bench.Survey(ctx, b, urls, cfg.Workers)
	reports := make([]schema.MetricReport, len(surveyed))
	succeeded := make([]schema.MetricReport, 0, len(surveyed))
	var lastErr error
	for i, res := range surveyed {
		report, err := benchmarkReport(res)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", res.URL, err)
			report = schema.MetricReport{Source: res.URL, Error: err.Error()}
			if res.Err == nil {
				report.Benchmark = benchmarkInfo(res.Result)
			}
		} else {
			succeeded = append(succeeded, report)
		}
		reports[i] = report
	}
	if len(succeeded) == 0 {
		endReport(ctx, mgr, 0)
		return nil, lastErr
	}

	recordReports(ctx, mgr, succeeded)
	return reports, nil
}

// benchmarkReport extracts the fixed timings and the Server-Timing metrics of one URL.
func benchmarkReport(res bench.URLResult) (schema.MetricReport, error) {
	if res.Err != nil {
		return schema.MetricReport{}, res.Err
	}

	runs := make([]contract.Run, len(res.Result.Runs))
	for i, r := range res.Result.Runs {
		runs[i] = r
	}
	timings, err := metrics.ExtractMetrics(runs, benchmarkExpressions)
	if err != nil {
		return schema.MetricReport{}, err
	}
	serverTimings, err := metrics.ExtractServerTimingMetrics(runs)
	if err != nil {
		return schema.MetricReport{}, err
	}

	report := newMetricReport(res.URL, len(runs), append(timings, serverTimings...))
	report.Benchmark = benchmarkInfo(res.Result)
	return report, nil
}

func benchmarkInfo(res schema.BenchmarkResult) *schema.BenchmarkInfo {
	return &schema.BenchmarkInfo{
		SessionID:   res.SessionID,
		Protocol:    res.Protocol,
		Requests:    res.Requests,
		Concurrency: res.Concurrency,
		Succeeded:   res.Succeeded,
		Failed:      res.Failed,
		Errors:      res.Errors,
		Duration:    res.Duration,
	}
}
