package core

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/wpperf/internal/contract"
)

// logWPTHeader prints a concise header for the WebPageTest commands.
func logWPTHeader(ctx context.Context, cfg *contract.Config, testIDs []string) {
	if shouldSuppressHeader(ctx) {
		return
	}
	fmt.Fprintf(os.Stderr, "🔎 Server: %s (Tests: %s)\n", cfg.WPTServer, strings.Join(testIDs, ", "))
}

// logBenchmarkHeader prints a header for the benchmark command.
func logBenchmarkHeader(ctx context.Context, cfg *contract.Config, urls []string) {
	if shouldSuppressHeader(ctx) {
		return
	}
	fmt.Fprintf(os.Stderr, "🔎 Benchmark: %d URL(s) (Protocol: %s)\n", len(urls), cfg.Protocol)
	fmt.Fprintf(os.Stderr, "📨 Requests: %d per URL, concurrency %d\n", cfg.Number, cfg.Concurrency)
}

// logCompareHeader prints a header for the compare command.
func logCompareHeader(ctx context.Context, cfg *contract.Config) {
	if shouldSuppressHeader(ctx) {
		return
	}
	fmt.Fprintf(os.Stderr, "🔎 Server: %s\n", cfg.WPTServer)
	fmt.Fprintf(os.Stderr, "📊 Comparing: %s ↔ %s\n", strings.Join(cfg.BaseTestIDs, ","), strings.Join(cfg.TargetTestIDs, ","))
}
