package core

import "context"

// Context keys for command options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	reportIDKey       contextKey = "reportID"
)

// WithSuppressHeader marks the context so that status headers are not printed.
// The MCP server uses this because stdout carries the protocol stream.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// withReportID stores the history report ID in the context
func withReportID(ctx context.Context, reportID int64) context.Context {
	return context.WithValue(ctx, reportIDKey, reportID)
}

// getReportID returns the history report ID from context
func getReportID(ctx context.Context) (int64, bool) {
	val := ctx.Value(reportIDKey)
	if val == nil {
		return 0, false
	}
	id, ok := val.(int64)
	return id, ok
}
