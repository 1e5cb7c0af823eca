package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/schema"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{
		"wpt-metrics", "wpt-server-timing", "benchmark-server-timing", "percentiles",
		"compare", "check", "metrics", "version", "cache", "history", "mcp",
	} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestThresholdsFlagBinding(t *testing.T) {
	flag := checkCmd.Flags().Lookup("thresholds")
	if assert.NotNil(t, flag) {
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestCacheLocation(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "cache.db")
	assert.Equal(t, custom, cacheLocation(schema.SQLiteBackend, custom))
	assert.Equal(t, contract.GetCacheDBFilePath(), cacheLocation(schema.SQLiteBackend, ""))
	assert.Equal(t, contract.GetBadgerDirPath(), cacheLocation(schema.BadgerBackend, ""))
}

func TestInitConfig(t *testing.T) {
	initConfig()
	assert.Equal(t, contract.DefaultWPTServer, viper.GetString("wpt-server"))
	assert.Equal(t, "yes", viper.GetString("color"))
	assert.Equal(t, contract.DefaultWorkers, viper.GetInt("workers"))

	t.Setenv("WPPERF_WPT_SERVER", "https://wpt.internal.test")
	assert.Equal(t, "https://wpt.internal.test", viper.GetString("wpt-server"))
}

func TestReadConfigFile(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("workers: [\n"), 0o600))
	viper.SetConfigFile(broken)
	assert.ErrorContains(t, readConfigFile(), "error reading config file")

	valid := filepath.Join(dir, "valid.yaml")
	require.NoError(t, os.WriteFile(valid, []byte("precision: 4\n"), 0o600))
	viper.SetConfigFile(valid)
	require.NoError(t, readConfigFile())
	assert.Equal(t, 4, viper.GetInt("precision"))
}
