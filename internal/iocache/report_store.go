package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
)

// Table names for report history.
const (
	reportsTable    = "wpperf_reports"
	metricRunsTable = "wpperf_metric_runs"
)

// ReportStoreImpl implements the ReportStore interface.
type ReportStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.ReportStore = &ReportStoreImpl{} // Compile-time check

// NewReportStore creates a new ReportStore with the specified backend.
func NewReportStore(backend schema.DatabaseBackend, connStr string) (contract.ReportStore, error) {
	switch backend {
	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &ReportStoreImpl{backend: backend}, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", backend)
	}

	db, err := openSQL(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &ReportStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the report tracking tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{reportsTable, getCreateReportsQuery(backend)},
		{metricRunsTable, getCreateMetricRunsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateReportsQuery returns the CREATE TABLE query for wpperf_reports.
func getCreateReportsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(reportsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				report_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				command VARCHAR(64) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms BIGINT,
				total_metrics INT,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				report_id BIGSERIAL PRIMARY KEY,
				command TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms BIGINT,
				total_metrics INT,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				report_id INTEGER PRIMARY KEY AUTOINCREMENT,
				command TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_metrics INTEGER,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateMetricRunsQuery returns the CREATE TABLE query for wpperf_metric_runs.
func getCreateMetricRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(metricRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				report_id BIGINT NOT NULL,
				source VARCHAR(400) NOT NULL,
				metric_name VARCHAR(255) NOT NULL,
				run_index INT NOT NULL,
				value DOUBLE,
				median DOUBLE NOT NULL,
				PRIMARY KEY (report_id, source, metric_name, run_index)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				report_id BIGINT NOT NULL,
				source TEXT NOT NULL,
				metric_name TEXT NOT NULL,
				run_index INT NOT NULL,
				value DOUBLE PRECISION,
				median DOUBLE PRECISION NOT NULL,
				PRIMARY KEY (report_id, source, metric_name, run_index)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				report_id INTEGER NOT NULL,
				source TEXT NOT NULL,
				metric_name TEXT NOT NULL,
				run_index INTEGER NOT NULL,
				value REAL,
				median REAL NOT NULL,
				PRIMARY KEY (report_id, source, metric_name, run_index)
			);
		`, quotedTableName)
	}
}

// BeginReport creates a new report and returns its unique ID.
func (rs *ReportStoreImpl) BeginReport(command string, startTime time.Time, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(reportsTable, rs.backend)

	var reportID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (command, start_time, config_params) VALUES ($1, $2, $3) RETURNING report_id`, quotedTableName)
		err = rs.db.QueryRow(query, command, startTime, string(configJSON)).Scan(&reportID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (command, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, command, formatTime(startTime, rs.backend), string(configJSON))
		if err == nil {
			reportID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", err)
	}
	return reportID, nil
}

// EndReport records the completion time, duration and metric count of a report.
func (rs *ReportStoreImpl) EndReport(reportID int64, endTime time.Time, totalMetrics int) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(reportsTable, rs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE report_id = %s`, quotedTableName, placeholders(rs.backend, 1))

	var rawStart any
	if err := rs.db.QueryRow(query, reportID).Scan(&rawStart); err != nil {
		return fmt.Errorf("failed to get start_time for report %d: %w", reportID, err)
	}
	startTime, err := parseTime(rawStart)
	if err != nil {
		return fmt.Errorf("failed to parse start_time: %w", err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	var updateQuery string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_metrics = $3 WHERE report_id = $4`, quotedTableName)
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_metrics = ? WHERE report_id = ?`, quotedTableName)
	}

	if _, err := rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs, totalMetrics, reportID); err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	return nil
}

// RecordMetric stores every run value of a metric for one source (a test ID or URL).
func (rs *ReportStoreImpl) RecordMetric(reportID int64, source string, metric schema.Metric) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(metricRunsTable, rs.backend)
	query := fmt.Sprintf(`INSERT INTO %s (report_id, source, metric_name, run_index, value, median) VALUES (%s)`,
		quotedTableName, placeholders(rs.backend, 6))

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare metric insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, value := range metric.Runs {
		if _, err := stmt.Exec(reportID, source, metric.Name, i+1, value, metric.Median); err != nil {
			return fmt.Errorf("failed to insert run %d of %s: %w", i+1, metric.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit metric %s: %w", metric.Name, err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *ReportStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the report store.
func (rs *ReportStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	quotedReports := quoteTableName(reportsTable, rs.backend)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedReports)
	if err := rs.db.QueryRow(countQuery).Scan(&status.TotalReports); err != nil {
		return status, fmt.Errorf("failed to get total reports: %w", err)
	}

	if status.TotalReports > 0 {
		var rawLast, rawOldest any

		lastQuery := fmt.Sprintf("SELECT report_id, start_time FROM %s ORDER BY report_id DESC LIMIT 1", quotedReports)
		if err := rs.db.QueryRow(lastQuery).Scan(&status.LastReportID, &rawLast); err != nil {
			return status, fmt.Errorf("failed to get last report info: %w", err)
		}
		lastTime, err := parseTime(rawLast)
		if err != nil {
			return status, fmt.Errorf("failed to parse last report time: %w", err)
		}
		status.LastReportTime = lastTime

		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY report_id ASC LIMIT 1", quotedReports)
		if err := rs.db.QueryRow(oldestQuery).Scan(&rawOldest); err != nil {
			return status, fmt.Errorf("failed to get oldest report time: %w", err)
		}
		oldestTime, err := parseTime(rawOldest)
		if err != nil {
			return status, fmt.Errorf("failed to parse oldest report time: %w", err)
		}
		status.OldestReportTime = oldestTime

		metricsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_metrics), 0) FROM %s", quotedReports)
		if err := rs.db.QueryRow(metricsQuery).Scan(&status.TotalMetrics); err != nil {
			return status, fmt.Errorf("failed to get total metrics: %w", err)
		}
	}

	for _, table := range []string{reportsTable, metricRunsTable} {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		var count int64
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllReports retrieves all reports ordered by ID.
func (rs *ReportStoreImpl) GetAllReports() ([]schema.ReportRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT report_id, command, start_time, end_time, run_duration_ms, COALESCE(total_metrics, 0), config_params
		FROM %s ORDER BY report_id`, quoteTableName(reportsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ReportRecord
	for rows.Next() {
		var record schema.ReportRecord
		var rawStart, rawEnd any
		if err := rows.Scan(&record.ReportID, &record.Command, &rawStart, &rawEnd,
			&record.RunDurationMs, &record.TotalMetrics, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		if record.StartTime, err = parseTime(rawStart); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if rawEnd != nil {
			endTime, err := parseTime(rawEnd)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &endTime
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return results, nil
}

// GetAllMetricRuns retrieves every stored metric run ordered by report, source, metric and run.
func (rs *ReportStoreImpl) GetAllMetricRuns() ([]schema.MetricRunRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT report_id, source, metric_name, run_index, value, median
		FROM %s ORDER BY report_id, source, metric_name, run_index`, quoteTableName(metricRunsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.MetricRunRecord
	for rows.Next() {
		var record schema.MetricRunRecord
		var value sql.NullFloat64
		if err := rows.Scan(&record.ReportID, &record.Source, &record.MetricName,
			&record.RunIndex, &value, &record.Median); err != nil {
			return nil, fmt.Errorf("failed to scan metric run: %w", err)
		}
		if value.Valid {
			v := value.Float64
			record.Value = &v
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metric runs: %w", err)
	}
	return results, nil
}
