package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/wpperf/internal/parquet"
)

// ExecuteHistoryExport exports the report history to Parquet files.
func ExecuteHistoryExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetHistoryStore()
	if store == nil {
		return errors.New("history store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalReports == 0 {
		return errors.New("no report history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total reports: %d\n", status.TotalReports)
	fmt.Printf("Total metric runs: %d\n", status.TableSizes[metricRunsTable])

	reports, err := store.GetAllReports()
	if err != nil {
		return fmt.Errorf("failed to retrieve reports: %w", err)
	}
	metricRuns, err := store.GetAllMetricRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve metric runs: %w", err)
	}

	parquetReports := parquet.ConvertReportRecords(reports)
	parquetMetricRuns := parquet.ConvertMetricRunRecords(metricRuns)

	reportsFile := outputFile + ".reports.parquet"
	if err := parquet.WriteReportsParquet(parquetReports, reportsFile); err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}
	fmt.Printf("Exported %d reports to: %s\n", len(parquetReports), reportsFile)

	metricRunsFile := outputFile + ".metric_runs.parquet"
	if err := parquet.WriteMetricRunsParquet(parquetMetricRuns, metricRunsFile); err != nil {
		return fmt.Errorf("failed to write metric runs: %w", err)
	}
	fmt.Printf("Exported %d metric runs to: %s\n", len(parquetMetricRuns), metricRunsFile)

	fmt.Println("\nExport complete! The Parquet files can be read with DuckDB, Pandas (via pyarrow), Spark or Arrow.")
	return nil
}
