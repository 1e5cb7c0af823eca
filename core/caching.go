package core

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/huangsam/wpperf/internal/contract"
	"github.com/huangsam/wpperf/internal/iocache"
	"github.com/huangsam/wpperf/internal/wpt"
	"github.com/huangsam/wpperf/schema"
	"golang.org/x/sync/errgroup"
)

// currentCacheVersion defines the version of the cached result format
const currentCacheVersion = 1

// resultCacheKey derives the cache key of a test on a WebPageTest server.
func resultCacheKey(baseURL, testID string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(baseURL+"|"+testID)))
}

// cachedTestRuns returns the ordered runs of one test, reading through the result cache.
func cachedTestRuns(ctx context.Context, client contract.ResultClient, store contract.CacheStore, testID string) ([]schema.WPTRun, error) {
	if store == nil {
		// Fallback to direct fetch
		return fetchTestRuns(ctx, client, nil, testID)
	}

	key := resultCacheKey(client.BaseURL(), testID)

	// Check for cache hit
	if runs := checkCacheHit(store, key); runs != nil {
		return runs, nil
	}

	// Cache miss: fetch and store
	return fetchTestRuns(ctx, client, store, testID)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) []schema.WPTRun {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > contract.CacheTTL {
		return nil
	}

	raw, err := iocache.DecompressValue(data)
	if err != nil {
		return nil
	}
	_, runs, err := wpt.ParseResult(raw)
	if err != nil {
		return nil
	}
	return runs // Cache hit
}

// fetchTestRuns downloads and parses a result. Only results that parse as a
// completed test are written to the store.
func fetchTestRuns(ctx context.Context, client contract.ResultClient, store contract.CacheStore, testID string) ([]schema.WPTRun, error) {
	data, err := client.GetResult(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch test %s: %w", testID, err)
	}

	_, runs, err := wpt.ParseResult(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse test %s: %w", testID, err)
	}

	if store != nil {
		if err := store.Set(resultCacheKey(client.BaseURL(), testID), iocache.CompressValue(data), currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to cache result for "+testID, err)
		}
	}
	return runs, nil
}

// fetchAllTestRuns fetches every test concurrently and returns the runs in testIDs order.
func fetchAllTestRuns(ctx context.Context, cfg *contract.Config, client contract.ResultClient, mgr contract.CacheManager, testIDs []string) ([][]contract.Run, error) {
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetResultStore()
	}

	results := make([][]contract.Run, len(testIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i, testID := range testIDs {
		g.Go(func() error {
			runs, err := cachedTestRuns(gctx, client, store, testID)
			if err != nil {
				return err
			}
			results[i] = wpt.AsRuns(runs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
