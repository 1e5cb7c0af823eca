// Package main is the entry point for the wpperf CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/wpperf/cmd"
	"github.com/huangsam/wpperf/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()

	if stopErr := cmd.StopProfiling(); stopErr != nil {
		fmt.Fprintln(os.Stderr, "Error stopping profiling:", stopErr)
	}
	iocache.CloseStores()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
