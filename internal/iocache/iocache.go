// Package iocache persists WebPageTest results and report history.
package iocache

import (
	"sync"

	"github.com/huangsam/wpperf/internal/contract"
)

// CacheStoreManager manages the result cache and the report history store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	results      contract.CacheStore
	history      contract.ReportStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetResultStore returns the WebPageTest result cache.
func (mgr *CacheStoreManager) GetResultStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.results
}

// GetHistoryStore returns the report history store.
func (mgr *CacheStoreManager) GetHistoryStore() contract.ReportStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
