package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/internal/iocache"
	"github.com/huangsam/wpperf/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Build metadata, overridden with -ldflags on release builds.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	rootCtx = context.Background()

	// input is what Viper resolved; cfg is input after validation.
	input = &contract.ConfigRawInput{}
	cfg   = &contract.Config{}

	profile      = &contract.ProfileConfig{}
	cacheManager contract.CacheManager
)

// configDefaults seeds Viper so file and env values fall back to the flag defaults.
var configDefaults = map[string]any{
	"metrics":            contract.DefaultMetrics,
	"wpt-server":         contract.DefaultWPTServer,
	"timeout":            contract.DefaultTimeout.String(),
	"retries":            contract.DefaultRetries,
	"retry-delay":        contract.DefaultRetryDelay.String(),
	"workers":            contract.DefaultWorkers,
	"precision":          contract.DefaultPrecision,
	"output":             schema.TextOut,
	"number":             contract.DefaultNumber,
	"concurrency":        contract.DefaultConcurrency,
	"protocol":           schema.HTTP1,
	"cache-backend":      schema.SQLiteBackend,
	"cache-db-connect":   "",
	"history-backend":    "",
	"history-db-connect": "",
	"color":              "yes",
	"emoji":              "no",
}

var rootCmd = &cobra.Command{
	Use:   "wpperf",
	Short: "Measure WordPress page performance from WebPageTest and live requests.",
	Long: `wpperf pulls metrics out of WebPageTest results and benchmarks live WordPress
endpoints, then reports percentiles so you can see how a site really behaves.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// startProfiling begins a CPU profile at <prefix>.cpu.prof when --profile is set.
func startProfiling() error {
	if !profile.Enabled {
		return nil
	}
	cpuFile, err := os.Create(profile.Prefix + ".cpu.prof")
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}
	_, err = fmt.Fprintf(os.Stderr, "Profiling to %s.cpu.prof and %s.mem.prof\n", profile.Prefix, profile.Prefix)
	return err
}

// stopProfiling ends the CPU profile and writes the heap profile next to it.
func stopProfiling() error {
	if !profile.Enabled {
		return nil
	}
	pprof.StopCPUProfile()

	memFile, err := os.Create(profile.Prefix + ".mem.prof")
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = memFile.Close() }()
	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}
	_, err = fmt.Fprintf(os.Stderr, "Profiles written. Inspect with 'go tool pprof %s.cpu.prof'.\n", profile.Prefix)
	return err
}

// setConfigSearch points Viper at --config or the default .wpperf.yaml locations.
func setConfigSearch() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".wpperf")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
}

// initConfig runs on cobra initialization. WPPERF_WPT_SERVER maps to --wpt-server.
func initConfig() {
	setConfigSearch()
	viper.SetEnvPrefix("WPPERF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for key, value := range configDefaults {
		viper.SetDefault(key, value)
	}
}

// readConfigFile reads the .wpperf.yaml file. A missing file is not an error.
func readConfigFile() error {
	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// sharedSetup resolves and validates the configuration, then opens the stores.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	if err := contract.ProcessProfilingConfig(profile, viper.GetString("profile")); err != nil {
		return fmt.Errorf("failed to process profiling config: %w", err)
	}
	if err := startProfiling(); err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}

	if err := readConfigFile(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// loadConfigFile is the lighter setup of the cache and history maintenance commands.
func loadConfigFile() error {
	setConfigSearch()
	return readConfigFile()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetCacheManager installs the store manager the commands read from.
func SetCacheManager(mgr contract.CacheManager) {
	cacheManager = mgr
}

// StopProfiling flushes any profiles started by --profile.
func StopProfiling() error {
	return stopProfiling()
}
