package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
)

// expressionHelp explains the metric expression syntax below the vocabulary table.
const expressionHelp = `Expressions:
  Terms are joined with " + " or " - " (spaces required), e.g. "LCP - TTFB".
  "Server-Timing:<name>" reads the dur of that entry from the main document's
  Server-Timing header, e.g. "Server-Timing:wp-total".`

// PrintVocabulary displays the supported metric names and the expression syntax.
func PrintVocabulary(defs []schema.MetricDefinition, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, defs)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, defs)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"name", "field", "unit", "description"}, func(csvWriter *csv.Writer) error {
				for _, d := range defs {
					if err := csvWriter.Write([]string{d.Name, d.Field, d.Unit, d.Description}); err != nil {
						return fmt.Errorf("failed to write CSV record: %w", err)
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errors.New("parquet output is not supported for metrics")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			rows := make([][]string, len(defs))
			for i, d := range defs {
				unit := d.Unit
				if unit == "" {
					unit = missingValue
				}
				rows[i] = []string{d.Name, d.Field, unit, d.Description}
			}
			if err := renderTable(newTable(w, cfg), []string{"Metric", "WebPageTest Field", "Unit", "Description"}, rows); err != nil {
				return err
			}
			_, err := fmt.Fprintln(w, expressionHelp)
			return err
		}, "Wrote text")
	}
}
