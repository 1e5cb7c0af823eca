package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/huangsam/wpperf/core"
	"github.com/huangsam/wpperf/core/metrics"
	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// splitArg splits a comma-separated argument, dropping blank entries.
func splitArg(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// applyWPTArgs overrides the WebPageTest server and metric list of cfg.
func applyWPTArgs(cfg *contract.Config, request mcp.CallToolRequest) error {
	if server := request.GetString("wpt_server", ""); server != "" {
		u, err := url.Parse(server)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid wpt_server '%s'. expected an absolute URL", server)
		}
		cfg.WPTServer = strings.TrimRight(server, "/")
	}
	if m := splitArg(request.GetString("metrics", "")); len(m) > 0 {
		cfg.Metrics = m
	}
	return nil
}

func toolJSON(data any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(data, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleGetWPTMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.TestIDs = splitArg(request.GetString("tests", ""))
	if len(cfg.TestIDs) == 0 {
		return mcp.NewToolResultError(core.ErrNoTests.Error()), nil
	}
	if err := applyWPTArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	report, err := core.GetWPTMetricsResults(core.WithSuppressHeader(ctx), cfg, core.NewResultClient(cfg), h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("metric extraction failed: %v", err)), nil
	}
	return toolJSON(report), nil
}

func (h *toolHandler) handleGetWPTServerTiming(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.TestIDs = splitArg(request.GetString("tests", ""))
	if len(cfg.TestIDs) == 0 {
		return mcp.NewToolResultError(core.ErrNoTests.Error()), nil
	}
	if err := applyWPTArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	report, err := core.GetWPTServerTimingResults(core.WithSuppressHeader(ctx), cfg, core.NewResultClient(cfg), h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("server-timing extraction failed: %v", err)), nil
	}
	return toolJSON(report), nil
}

func (h *toolHandler) handleBenchmarkServerTiming(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.URLs = splitArg(request.GetString("urls", ""))
	cfg.URLFile = ""
	if len(cfg.URLs) == 0 {
		return mcp.NewToolResultError(core.ErrNoURLs.Error()), nil
	}
	for _, raw := range cfg.URLs {
		if err := contract.ValidateTargetURL(raw); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
	}
	if n := request.GetInt("number", 0); n != 0 {
		cfg.Number = n
	}
	if c := request.GetInt("concurrency", 0); c != 0 {
		cfg.Concurrency = c
	}
	if p := request.GetString("protocol", ""); p != "" {
		cfg.Protocol = schema.Protocol(p)
	}
	if err := validateBenchmarkArgs(cfg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	runner := core.NewBenchmarker(cfg)
	defer runner.Close()
	reports, err := core.GetBenchmarkResults(core.WithSuppressHeader(ctx), cfg, runner, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("benchmark failed: %v", err)), nil
	}
	return toolJSON(reports), nil
}

// validateBenchmarkArgs applies the same bounds as the benchmark command flags.
func validateBenchmarkArgs(cfg *contract.Config) error {
	if cfg.Number <= 0 || cfg.Number > contract.MaxRequests {
		return fmt.Errorf("number must be greater than 0 and cannot exceed %d (received %d)", contract.MaxRequests, cfg.Number)
	}
	if cfg.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be greater than 0 (received %d)", cfg.Concurrency)
	}
	cfg.Concurrency = min(cfg.Concurrency, cfg.Number)
	if _, ok := schema.ValidProtocols[cfg.Protocol]; !ok {
		return fmt.Errorf("invalid protocol '%s'. must be h1, h2, h3", cfg.Protocol)
	}
	return nil
}

func (h *toolHandler) handleCompareWPT(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.BaseTestIDs = splitArg(request.GetString("base_tests", ""))
	cfg.TargetTestIDs = splitArg(request.GetString("target_tests", ""))
	if len(cfg.BaseTestIDs) == 0 {
		return mcp.NewToolResultError("base_tests is required"), nil
	}
	if len(cfg.TargetTestIDs) == 0 {
		return mcp.NewToolResultError("target_tests is required"), nil
	}
	cfg.CompareMode = true
	if err := applyWPTArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	result, err := core.GetComparisonResults(core.WithSuppressHeader(ctx), cfg, core.NewResultClient(cfg), h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}
	return toolJSON(result), nil
}

func (h *toolHandler) handleCalcPercentiles(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := strings.ReplaceAll(request.GetString("values", ""), ",", "\n")
	values, err := core.ReadValues(strings.NewReader(raw))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid values: %v", err)), nil
	}
	summary, err := core.SummarizeValues(values)
	if errors.Is(err, core.ErrNoValues) {
		return mcp.NewToolResultError("values must contain at least one number"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolJSON(summary), nil
}

func (h *toolHandler) handleListMetrics(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolJSON(metrics.Vocabulary()), nil
}
