package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
)

// historyConfigParams captures the settings worth keeping with a report.
func historyConfigParams(cfg *contract.Config) map[string]any {
	params := map[string]any{
		"invocation_id": uuid.NewString(),
		"metrics":       cfg.Metrics,
	}
	if len(cfg.TestIDs) > 0 {
		params["tests"] = cfg.TestIDs
		params["wpt_server"] = cfg.WPTServer
	}
	if len(cfg.URLs) > 0 || cfg.URLFile != "" {
		params["urls"] = cfg.URLs
		params["url_file"] = cfg.URLFile
		params["number"] = cfg.Number
		params["concurrency"] = cfg.Concurrency
		params["protocol"] = string(cfg.Protocol)
	}
	return params
}

// beginReport opens a history report when a history store is configured.
// The report ID travels in the returned context.
func beginReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, command string) context.Context {
	store := historyStore(mgr)
	if store == nil {
		return ctx
	}
	id, err := store.BeginReport(command, time.Now(), historyConfigParams(cfg))
	if err != nil {
		contract.LogWarn("Failed to begin history report", err)
		return ctx
	}
	return withReportID(ctx, id)
}

// recordReports stores every metric run and closes the report opened by beginReport.
func recordReports(ctx context.Context, mgr contract.CacheManager, reports []schema.MetricReport) {
	store := historyStore(mgr)
	id, ok := getReportID(ctx)
	if store == nil || !ok {
		return
	}

	total := 0
	for _, report := range reports {
		for _, m := range report.Metrics {
			metric := schema.Metric{Name: m.Name, Median: m.Median, Runs: m.Runs}
			if err := store.RecordMetric(id, report.Source, metric); err != nil {
				contract.LogWarn("Failed to record metric "+m.Name, err)
				continue
			}
			total++
		}
	}
	endReport(ctx, mgr, total)
}

// endReport closes the report opened by beginReport. Failed commands close it
// with a zero metric count so no report stays open.
func endReport(ctx context.Context, mgr contract.CacheManager, total int) {
	store := historyStore(mgr)
	id, ok := getReportID(ctx)
	if store == nil || !ok {
		return
	}
	if err := store.EndReport(id, time.Now(), total); err != nil {
		contract.LogWarn("Failed to end history report", err)
	}
}

func historyStore(mgr contract.CacheManager) contract.ReportStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetHistoryStore()
}
