// Package vault implements the File-Derived Collection Store: a directory
// of source files is scanned, diffed against a prior snapshot, run through
// a typed pipeline, and committed to an embedded transactional store with
// a cached read path.
package vault

import (
	"github.com/cuemby/mdvault/pkg/log"
	"github.com/cuemby/mdvault/pkg/metrics"
	"github.com/cuemby/mdvault/pkg/storage"
)

// Store is the opened vault: a root directory, the transaction layer
// underneath it, and an immutable cache of every (key, item) pair as of the
// last commit.
type Store[T any] struct {
	root    string
	scanCfg ScanConfig
	txStore *storage.BoltStore[T]
	cache   []storage.Entry[T]
}

// Open builds a store rooted at dir. If an oxide.db already exists there
// its contents become the initial cache; otherwise the cache starts empty.
func Open[T any](dir string, cfg ScanConfig) (*Store[T], error) {
	return openStore[T](dir, cfg, storage.NewBoltStore[T](dir))
}

func openStore[T any](dir string, cfg ScanConfig, txStore *storage.BoltStore[T]) (*Store[T], error) {
	entries, err := txStore.Snapshot()
	if err != nil {
		return nil, err
	}
	log.WithComponent("vault").Info().Int("items", len(entries)).Msg("created memory cache")
	metrics.CacheItemsTotal.Set(float64(len(entries)))
	return &Store[T]{root: dir, scanCfg: cfg, txStore: txStore, cache: entries}, nil
}

// Root returns the directory the store was opened against.
func (s *Store[T]) Root() string {
	return s.root
}

// CacheSize reports how many (key, item) pairs the in-memory cache
// currently holds. It satisfies pkg/metrics.CacheSizer.
func (s *Store[T]) CacheSize() int {
	return len(s.cache)
}
