// Package iocache is for durable storage of feed caches and run history.
package iocache

import (
	"sync"

	"github.com/nkaminski/deeprepo/internal/contract"
)

// AuditStoreManager manages the feed cache and history store instances.
type AuditStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	feed         contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.StoreManager = &AuditStoreManager{} // Compile-time check

// GetFeedStore returns the feed CacheStore.
func (mgr *AuditStoreManager) GetFeedStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.feed
}

// GetHistoryStore returns the history HistoryStore.
func (mgr *AuditStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
