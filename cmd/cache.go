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

// cacheConfigSetup loads and validates the cache settings without opening the store.
func cacheConfigSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get cache-related config values
	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("cache-backend")))
	connStr := viper.GetString("cache-db-connect")

	if _, ok := schema.ValidCacheBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, badger, none", backend)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr

	return nil
}

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := cacheConfigSetup(); err != nil {
		return err
	}

	// Initialize caching with the loaded config (no history tracking for cache commands)
	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheClearSetupWrapper validates the cache settings for clear, which must not hold the store open.
func cacheClearSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheConfigSetup()
}

// cacheLocation resolves the file or directory backing a local cache backend.
func cacheLocation(backend schema.DatabaseBackend, connStr string) string {
	if connStr != "" {
		return connStr
	}
	if backend == schema.BadgerBackend {
		return contract.GetBadgerDirPath()
	}
	return contract.GetCacheDBFilePath()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by measurement commands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the WebPageTest result cache",
	Long: `Manage the cache of completed WebPageTest results.

wpperf stores every completed WebPageTest result it fetches, compressed, so
repeated reports on the same tests never hit the WebPageTest server again.
Pending tests are never cached. Entries older than 30 days are fetched again.

Supported backends: SQLite (default), MySQL, PostgreSQL, Badger, or None

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  wpperf cache status

  # Clear cache after a WebPageTest server migration
  wpperf cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached WebPageTest results",
	Long: `Delete all cached WebPageTest results from the configured backend.

For SQLite: Deletes the database file
For Badger: Deletes the data directory
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  wpperf cache clear

  # Clear MySQL cache (set connection string via env variable)
  WPPERF_CACHE_BACKEND=mysql WPPERF_CACHE_DB_CONNECT="..." wpperf cache clear`,
	PreRunE: cacheClearSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		path := cacheLocation(cfg.CacheBackend, cfg.CacheDBConnect)
		if err := iocache.ClearCache(cfg.CacheBackend, path, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the WebPageTest result cache.

Displays:
- Backend type and connection status
- Total number of cached results
- Last and oldest cache entry timestamps
- Cache table sizes

Examples:
  # Check cache status
  wpperf cache status

  # Check the Badger cache
  wpperf cache status --cache-backend badger`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetResultStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", fmt.Errorf("cache store is not initialized"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(status)
	},
}
