package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/internal/iocache"
	"github.com/huangsam/wpperf/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyConfigSetup reads and validates the history backend settings.
func historyConfigSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get history-related config values
	backendStr := strings.ToLower(viper.GetString("history-backend"))
	connStr := viper.GetString("history-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidHistoryBackends[backend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup() error {
	if err := historyConfigSetup(); err != nil {
		return err
	}

	// Initialize stores with the loaded config (no result cache for history commands)
	if err := iocache.InitStores("", "", cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetupWrapper validates settings for migrate, which must run
// before any table is created on a fresh database.
func historyMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return historyConfigSetup()
}

// historyDBPath resolves the SQLite file backing the history store.
func historyDBPath() string {
	if cfg.HistoryDBConnect != "" {
		return cfg.HistoryDBConnect
	}
	return contract.GetHistoryDBFilePath()
}

// historyCmd focused on report history management.
//
// Note: History subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup used by measurement commands.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded report history and exports",
	Long: `Manage the history of measurement reports used for trend tracking.

When --history-backend is set, wpperf records every wpt-metrics,
wpt-server-timing and benchmark-server-timing report, storing:
- Report metadata (command, timestamps, duration, configuration)
- Every run value and the median of every metric

Subcommands:
  status  - Show history statistics
  export  - Export to Parquet files
  clear   - Remove all history data
  migrate - Run database schema migrations

Examples:
  # Check history status
  wpperf history status --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  wpperf history export --history-backend sqlite --output-file wpperf-history`,
}

// historyClearCmd clears the report history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded report history",
	Long: `Delete all stored reports and metric runs.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  wpperf history export --history-backend sqlite --output-file backup
  wpperf history clear --history-backend sqlite`,
	PreRunE: historyMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(cfg.HistoryBackend, historyDBPath(), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyStatusCmd shows report history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display report history statistics and connection details",
	Long: `Show detailed information about the report history store.

Displays:
- Backend type and connection status
- Total number of reports stored
- Last and oldest report timestamps
- Database table sizes

Examples:
  # Check history status
  wpperf history status --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			contract.LogFatal("Failed to get history status", fmt.Errorf("history store is not initialized"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(status)
	},
}

// historyExportCmd exports report history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export report history to Parquet for BI tools and analytics",
	Long: `Export all stored report history to Parquet format.

Exports two datasets next to --output-file:
- <output-file>.reports.parquet - metadata about each report
- <output-file>.metric_runs.parquet - every run value with its metric median

Requires: --output-file parameter

Examples:
  # Export all data
  wpperf history export --history-backend sqlite --output-file wpperf-history

  # Use with DuckDB for analysis
  duckdb -c "SELECT metric_name, avg(value) FROM read_parquet('wpperf-history.metric_runs.parquet') GROUP BY 1"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the report history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  wpperf history migrate --history-backend postgresql --history-db-connect "host=... dbname=..."

  # Rollback to initial state
  wpperf history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println("Migrations completed successfully.")
	},
}
