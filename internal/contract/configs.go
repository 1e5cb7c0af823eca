package contract

import (
	"fmt"
	"maps"
	"net/url"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/wpperf/schema"
)

// Default values for configuration.
const (
	DefaultPrecision   = 1
	MaxPrecision       = 3
	DefaultWPTServer   = "https://www.webpagetest.org"
	DefaultTimeout     = 30 * time.Second
	DefaultRetries     = 3
	DefaultRetryDelay  = 5 * time.Second
	DefaultNumber      = 20
	DefaultConcurrency = 1
	MaxRequests        = 10000
)

// CacheTTL is how long a completed WebPageTest result stays valid in the cache.
const CacheTTL = 30 * 24 * time.Hour

// DefaultMetrics is requested when no --metrics are configured.
var DefaultMetrics = []string{"TTFB", "FCP", "LCP", "CLS", "TBT"}

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a command.
// This struct is the "final, validated" config.
type Config struct {
	TestIDs       []string
	BaseTestIDs   []string
	TargetTestIDs []string
	CompareMode   bool
	Metrics       []string

	// Thresholds maps a metric expression to the highest acceptable median.
	Thresholds map[string]float64

	WPTServer  string
	WPTAPIKey  string // Please use env var as this is plaintext
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	Workers    int

	URLs        []string
	URLFile     string
	Number      int
	Concurrency int
	Protocol    schema.Protocol
	Insecure    bool

	Precision       int
	Output          schema.OutputMode
	OutputFile      string
	Width           int // Terminal width override (0 = auto-detect)
	IncludeRuns     bool
	ShowPercentiles bool
	ShowVariance    bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in status lines
	UseColors bool // Enable colored deltas and labels
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Tests            []string `mapstructure:"test"`
	Metrics          []string `mapstructure:"metrics"`
	WPTServer        string   `mapstructure:"wpt-server"`
	WPTAPIKey        string   `mapstructure:"wpt-api-key"`
	Timeout          string   `mapstructure:"timeout"`
	Retries          int      `mapstructure:"retries"`
	RetryDelay       string   `mapstructure:"retry-delay"`
	Workers          int      `mapstructure:"workers"`
	Precision        int      `mapstructure:"precision"`
	Output           string   `mapstructure:"output"`
	OutputFile       string   `mapstructure:"output-file"`
	Width            int      `mapstructure:"width"`
	IncludeRuns      bool     `mapstructure:"include-runs"`
	ShowPercentiles  bool     `mapstructure:"show-percentiles"`
	ShowVariance     bool     `mapstructure:"show-variance"`
	CacheBackend     string   `mapstructure:"cache-backend"`
	CacheDBConnect   string   `mapstructure:"cache-db-connect"`
	HistoryBackend   string   `mapstructure:"history-backend"`
	HistoryDBConnect string   `mapstructure:"history-db-connect"`
	Emoji            string   `mapstructure:"emoji"`
	Color            string   `mapstructure:"color"`

	// --- Fields from benchmarkCmd.Flags() ---
	URLs        []string `mapstructure:"url"`
	URLFile     string   `mapstructure:"file"`
	Number      int      `mapstructure:"number"`
	Concurrency int      `mapstructure:"concurrency"`
	Protocol    string   `mapstructure:"protocol"`
	Insecure    bool     `mapstructure:"insecure"`

	// --- Fields from compareCmd.Flags() ---
	BaseTests   []string `mapstructure:"base-test"`
	TargetTests []string `mapstructure:"target-test"`

	// --- Fields from checkCmd.Flags() ---
	ThresholdsStr string `mapstructure:"thresholds-override"`

	// --- Metric thresholds from config file ---
	Thresholds map[string]float64 `mapstructure:"thresholds"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.TestIDs = slices.Clone(c.TestIDs)
	clone.BaseTestIDs = slices.Clone(c.BaseTestIDs)
	clone.TargetTestIDs = slices.Clone(c.TargetTestIDs)
	clone.Metrics = slices.Clone(c.Metrics)
	clone.URLs = slices.Clone(c.URLs)
	if c.Thresholds != nil {
		clone.Thresholds = make(map[string]float64, len(c.Thresholds))
		maps.Copy(clone.Thresholds, c.Thresholds)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processWebPageTest(cfg, input); err != nil {
		return err
	}
	if err := processCompareMode(cfg, input); err != nil {
		return err
	}
	if err := processBenchmark(cfg, input); err != nil {
		return err
	}
	if err := processThresholds(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.BadgerBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, badger, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidHistoryBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// Cache and history tables live side by side only on server databases
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the rendering and storage fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.IncludeRuns = input.IncludeRuns
	cfg.ShowPercentiles = input.ShowPercentiles
	cfg.ShowVariance = input.ShowVariance

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Precision and Output Validation ---
	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, markdown, yaml, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output parquet requires --output-file")
	}

	// --- 3. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processWebPageTest handles the WebPageTest server, test IDs and metric expressions.
func processWebPageTest(cfg *Config, input *ConfigRawInput) error {
	cfg.TestIDs = splitList(input.Tests)

	cfg.Metrics = trimList(input.Metrics)
	if len(cfg.Metrics) == 0 {
		cfg.Metrics = slices.Clone(DefaultMetrics)
	}

	cfg.WPTServer = strings.TrimRight(strings.TrimSpace(input.WPTServer), "/")
	if cfg.WPTServer == "" {
		cfg.WPTServer = DefaultWPTServer
	}
	if u, err := url.Parse(cfg.WPTServer); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid wpt-server '%s'. expected an absolute URL", input.WPTServer)
	}
	cfg.WPTAPIKey = input.WPTAPIKey

	timeout, err := parseDuration("timeout", input.Timeout, DefaultTimeout)
	if err != nil {
		return err
	}
	cfg.Timeout = timeout

	if input.Retries < 0 {
		return fmt.Errorf("retries cannot be negative (received %d)", input.Retries)
	}
	cfg.Retries = input.Retries

	delay, err := parseDuration("retry-delay", input.RetryDelay, DefaultRetryDelay)
	if err != nil {
		return err
	}
	cfg.RetryDelay = delay
	return nil
}

// processCompareMode handles the base and target test sets.
func processCompareMode(cfg *Config, input *ConfigRawInput) error {
	cfg.BaseTestIDs = splitList(input.BaseTests)
	cfg.TargetTestIDs = splitList(input.TargetTests)

	if len(cfg.BaseTestIDs) == 0 && len(cfg.TargetTestIDs) == 0 {
		cfg.CompareMode = false
		return nil
	}
	cfg.CompareMode = true

	if len(cfg.BaseTestIDs) == 0 {
		return fmt.Errorf("must specify --base-test when running the compare command")
	}
	if len(cfg.TargetTestIDs) == 0 {
		return fmt.Errorf("must specify --target-test when running the compare command")
	}
	return nil
}

// processBenchmark handles the benchmark targets and load shape.
func processBenchmark(cfg *Config, input *ConfigRawInput) error {
	cfg.URLs = splitList(input.URLs)
	cfg.URLFile = strings.TrimSpace(input.URLFile)
	cfg.Insecure = input.Insecure

	for _, raw := range cfg.URLs {
		if err := ValidateTargetURL(raw); err != nil {
			return err
		}
	}

	if input.Number <= 0 || input.Number > MaxRequests {
		return fmt.Errorf("number must be greater than 0 and cannot exceed %d (received %d)", MaxRequests, input.Number)
	}
	cfg.Number = input.Number

	if input.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be greater than 0 (received %d)", input.Concurrency)
	}
	cfg.Concurrency = min(input.Concurrency, cfg.Number)

	cfg.Protocol = schema.Protocol(strings.ToLower(input.Protocol))
	if _, ok := schema.ValidProtocols[cfg.Protocol]; !ok {
		return fmt.Errorf("invalid protocol '%s'. must be h1, h2, h3", input.Protocol)
	}
	return nil
}

// processThresholds merges the config file thresholds with the --thresholds flag.
// The flag takes precedence over config file settings.
func processThresholds(cfg *Config, input *ConfigRawInput) error {
	thresholds := make(map[string]float64, len(input.Thresholds))
	maps.Copy(thresholds, input.Thresholds)

	if input.ThresholdsStr != "" {
		parsed, err := ParseThresholdsString(input.ThresholdsStr)
		if err != nil {
			return fmt.Errorf("invalid --thresholds format: %w", err)
		}
		maps.Copy(thresholds, parsed)
	}

	for name, threshold := range thresholds {
		if threshold < 0 {
			return fmt.Errorf("threshold for metric %s cannot be negative (received %.2f)", name, threshold)
		}
	}
	cfg.Thresholds = thresholds
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ParseThresholdsString parses a string like "LCP:2500,TTFB:800,Server-Timing:wp-total:200"
// into a map of metric expression to threshold. The value follows the last colon, so
// Server-Timing names keep their prefix.
func ParseThresholdsString(s string) (map[string]float64, error) {
	thresholds := make(map[string]float64)

	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		idx := strings.LastIndex(part, ":")
		if idx <= 0 || idx == len(part)-1 {
			return nil, fmt.Errorf("invalid threshold format '%s', expected 'metric:value'", part)
		}
		name := strings.TrimSpace(part[:idx])
		valueStr := strings.TrimSpace(part[idx+1:])
		if name == "" {
			return nil, fmt.Errorf("invalid threshold format '%s', missing metric name", part)
		}

		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold value '%s' for metric %s: %w", valueStr, name, err)
		}
		thresholds[name] = value
	}

	return thresholds, nil
}

// ValidateTargetURL checks that a benchmark target is an absolute http(s) URL.
func ValidateTargetURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url '%s': %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid url '%s': scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid url '%s': missing host", raw)
	}
	return nil
}

// splitList flattens comma-separated entries and drops blanks.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

// trimList drops blank entries without splitting, for values that may not contain commas.
func trimList(values []string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseDuration(flag, value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", flag, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive (received %s)", flag, value)
	}
	return d, nil
}
