package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// Protocol represents the HTTP protocol used by the benchmark runner.
	Protocol string

	// Direction represents how a metric moved between two result sets.
	Direction string
)

// All output modes supported.
const (
	TextOut     OutputMode = "text" // default
	CSVOut      OutputMode = "csv"
	JSONOut     OutputMode = "json"
	MarkdownOut OutputMode = "markdown"
	YAMLOut     OutputMode = "yaml"
	ParquetOut  OutputMode = "parquet"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	BadgerBackend     DatabaseBackend = "badger" // cache only
	NoneBackend       DatabaseBackend = "none"
)

// All benchmark protocols supported.
const (
	HTTP1 Protocol = "h1" // default
	HTTP2 Protocol = "h2"
	HTTP3 Protocol = "h3"
)

// All comparison directions.
const (
	Regressed Direction = "regressed"
	Improved  Direction = "improved"
	Unchanged Direction = "unchanged"
	Unknown   Direction = "unknown"
)

// DefaultPercentiles are the percentiles rendered by --show-percentiles.
var DefaultPercentiles = []float64{10, 25, 50, 75, 90}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:     {},
	CSVOut:      {},
	JSONOut:     {},
	MarkdownOut: {},
	YAMLOut:     {},
	ParquetOut:  {},
}

// ValidCacheBackends lists all valid cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	BadgerBackend:     {},
	NoneBackend:       {},
}

// ValidHistoryBackends lists all valid history backends.
// Badger is excluded because reports are queried relationally.
var ValidHistoryBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidProtocols lists all valid benchmark protocols.
var ValidProtocols = map[Protocol]struct{}{
	HTTP1: {},
	HTTP2: {},
	HTTP3: {},
}

// String returns the display form of the protocol.
func (p Protocol) String() string {
	switch p {
	case HTTP2:
		return "HTTP/2"
	case HTTP3:
		return "HTTP/3"
	default:
		return "HTTP/1.1"
	}
}
