// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/wpperf/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the wpperf MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"WordPress Performance Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_wpt_metrics ---
	s.AddTool(mcp.NewTool("get_wpt_metrics",
		mcp.WithDescription("Extract metric medians and per-run values from WebPageTest results, pooled across tests."),
		mcp.WithString("tests", mcp.Description("Comma-separated WebPageTest test IDs."), mcp.Required()),
		mcp.WithString("metrics", mcp.Description("Comma-separated metric expressions such as 'LCP, LCP - TTFB'. Defaults to TTFB, FCP, LCP, CLS, TBT.")),
		mcp.WithString("wpt_server", mcp.Description("WebPageTest server URL (defaults to the configured server).")),
	), h.handleGetWPTMetrics)

	// --- 2. Tool: get_wpt_server_timing ---
	s.AddTool(mcp.NewTool("get_wpt_server_timing",
		mcp.WithDescription("List the Server-Timing metrics of the main document in WebPageTest results."),
		mcp.WithString("tests", mcp.Description("Comma-separated WebPageTest test IDs."), mcp.Required()),
		mcp.WithString("wpt_server", mcp.Description("WebPageTest server URL (defaults to the configured server).")),
	), h.handleGetWPTServerTiming)

	// --- 3. Tool: benchmark_server_timing ---
	s.AddTool(mcp.NewTool("benchmark_server_timing",
		mcp.WithDescription("Send repeated requests to URLs and report TTFB, response time and Server-Timing metrics."),
		mcp.WithString("urls", mcp.Description("Comma-separated absolute http(s) URLs."), mcp.Required()),
		mcp.WithNumber("number", mcp.Description("Requests per URL (defaults to the configured number).")),
		mcp.WithNumber("concurrency", mcp.Description("Concurrent requests per URL.")),
		mcp.WithString("protocol", mcp.Description("HTTP protocol."), mcp.Enum("h1", "h2", "h3")),
	), h.handleBenchmarkServerTiming)

	// --- 4. Tool: compare_wpt ---
	s.AddTool(mcp.NewTool("compare_wpt",
		mcp.WithDescription("Compare metric medians between a base and a target set of WebPageTest tests."),
		mcp.WithString("base_tests", mcp.Description("Comma-separated base test IDs."), mcp.Required()),
		mcp.WithString("target_tests", mcp.Description("Comma-separated target test IDs."), mcp.Required()),
		mcp.WithString("metrics", mcp.Description("Comma-separated metric expressions.")),
		mcp.WithString("wpt_server", mcp.Description("WebPageTest server URL.")),
	), h.handleCompareWPT)

	// --- 5. Tool: calc_percentiles ---
	s.AddTool(mcp.NewTool("calc_percentiles",
		mcp.WithDescription("Compute p10/p25/p50/p75/p90, standard deviation and MAD of a list of numbers."),
		mcp.WithString("values", mcp.Description("Numbers separated by commas or newlines; 'null' or empty entries count as missing."), mcp.Required()),
	), h.handleCalcPercentiles)

	// --- 6. Tool: list_metrics ---
	s.AddTool(mcp.NewTool("list_metrics",
		mcp.WithDescription("List the supported metric names and the WebPageTest fields they read."),
	), h.handleListMetrics)

	return s
}

// StartMCPServer starts the wpperf MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
