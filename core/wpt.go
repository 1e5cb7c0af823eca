package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/wpperf/core/metrics"
	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
)

// ErrNoTests is returned when a WebPageTest command has no test IDs.
var ErrNoTests = errors.New("--test is required")

// extractFunc turns the runs of one test into metrics.
type extractFunc func(runs []contract.Run) ([]schema.Metric, error)

// expressionExtractor extracts the given expressions from every run.
func expressionExtractor(expressions []string) extractFunc {
	return func(runs []contract.Run) ([]schema.Metric, error) {
		return metrics.ExtractMetrics(runs, expressions)
	}
}

// pooledTestMetrics extracts metrics from each test and pools them across tests.
func pooledTestMetrics(ctx context.Context, cfg *contract.Config, client contract.ResultClient, mgr contract.CacheManager, testIDs []string, extract extractFunc) (schema.MetricSet, error) {
	if len(testIDs) == 0 {
		return schema.MetricSet{}, ErrNoTests
	}

	allRuns, err := fetchAllTestRuns(ctx, cfg, client, mgr, testIDs)
	if err != nil {
		return schema.MetricSet{}, err
	}

	sets := make([][]schema.Metric, len(allRuns))
	total := 0
	for i, runs := range allRuns {
		ms, err := extract(runs)
		if err != nil {
			return schema.MetricSet{}, fmt.Errorf("test %s: %w", testIDs[i], err)
		}
		sets[i] = ms
		total += len(runs)
	}

	merged, err := metrics.MergeMetricSets(sets...)
	if err != nil {
		return schema.MetricSet{}, err
	}
	return schema.MetricSet{
		Source:  strings.Join(testIDs, ","),
		Runs:    total,
		Metrics: merged,
	}, nil
}

// GetWPTMetricsResults extracts the configured metric expressions from the configured tests.
func GetWPTMetricsResults(ctx context.Context, cfg *contract.Config, client contract.ResultClient, mgr contract.CacheManager) (schema.MetricReport, error) {
	ctx = beginReport(ctx, cfg, mgr, "wpt-metrics")
	set, err := pooledTestMetrics(ctx, cfg, client, mgr, cfg.TestIDs, expressionExtractor(cfg.Metrics))
	if err != nil {
		endReport(ctx, mgr, 0)
		return schema.MetricReport{}, err
	}
	report := newMetricReport(set.Source, set.Runs, set.Metrics)
	recordReports(ctx, mgr, []schema.MetricReport{report})
	return report, nil
}

// GetWPTServerTimingResults discovers the Server-Timing metrics of the configured tests.
func GetWPTServerTimingResults(ctx context.Context, cfg *contract.Config, client contract.ResultClient, mgr contract.CacheManager) (schema.MetricReport, error) {
	ctx = beginReport(ctx, cfg, mgr, "wpt-server-timing")
	set, err := pooledTestMetrics(ctx, cfg, client, mgr, cfg.TestIDs, metrics.ExtractServerTimingMetrics)
	if err != nil {
		endReport(ctx, mgr, 0)
		return schema.MetricReport{}, err
	}
	report := newMetricReport(set.Source, set.Runs, set.Metrics)
	recordReports(ctx, mgr, []schema.MetricReport{report})
	return report, nil
}
