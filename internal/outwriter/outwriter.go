// Package outwriter renders wpperf results as tables, CSV, JSON, YAML or Parquet.
package outwriter

import (
	"io"
	"os"
	"time"

	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteMetricReports prints metric reports using the configured output format.
func (ow *OutWriter) WriteMetricReports(reports []schema.MetricReport, cfg *contract.Config, duration time.Duration) error {
	return PrintMetricReports(reports, cfg, duration)
}

// WriteComparison prints comparison results using the configured output format.
func (ow *OutWriter) WriteComparison(result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	return PrintComparisonResult(result, cfg, duration)
}

// WriteCheck prints threshold check results using the configured output format.
func (ow *OutWriter) WriteCheck(result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	return PrintCheckResult(result, cfg, duration)
}

// WritePercentiles prints a percentile summary using the configured output format.
func (ow *OutWriter) WritePercentiles(summary schema.PercentileSummary, cfg *contract.Config) error {
	return PrintPercentileSummary(summary, cfg)
}

// WriteVocabulary prints the metric vocabulary using the configured output format.
func (ow *OutWriter) WriteVocabulary(defs []schema.MetricDefinition, cfg *contract.Config) error {
	return PrintVocabulary(defs, cfg)
}

// newTable creates a right-aligned table, or a left-aligned Markdown one for the
// markdown mode. Headers are printed as given so labels like "p10" stay intact.
func newTable(w io.Writer, cfg *contract.Config) *tablewriter.Table {
	if cfg.Output == schema.MarkdownOut {
		table := tablewriter.NewTable(w, tablewriter.WithRenderer(renderer.NewMarkdown()))
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Header.Formatting.AutoFormat = tw.Off
			cfg.Header.Alignment.Global = tw.AlignLeft
		})
		return table
	}
	table := tablewriter.NewWriter(w)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Header.Formatting.AutoFormat = tw.Off
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	return table
}

// renderTable writes headers and rows and renders the table.
func renderTable(table *tablewriter.Table, headers []string, rows [][]string) error {
	table.Header(headers)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// getMaxLabelWidth calculates the maximum width for metric names and sources in
// table output based on terminal width and the number of value columns.
func getMaxLabelWidth(cfg *contract.Config, valueColumns int) int {
	termWidth := cfg.Width
	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Each value column takes about 12 cells with padding and separators
	available := termWidth - valueColumns*12 - 4
	if available < 15 {
		return 15
	}
	if available > 60 {
		return 60
	}
	return available
}
