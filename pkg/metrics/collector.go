package metrics

import "time"

// CacheSizer reports the current number of (key, item) pairs held by a
// vault's in-memory cache. *vault.Store[T] satisfies this for any T without
// pkg/metrics needing to depend on pkg/vault's generic type parameter.
type CacheSizer func() int

// Collector periodically samples a vault's cache size into CacheItemsTotal.
// Everything else in this package is incremented inline by the scanner,
// pipeline, and store as they run, since those are one-shot operations
// rather than a steady-state value worth polling.
type Collector struct {
	size   CacheSizer
	stopCh chan struct{}
}

// NewCollector creates a collector that samples size on each tick.
func NewCollector(size CacheSizer) *Collector {
	return &Collector{
		size:   size,
		stopCh: make(chan struct{}),
	}
}

// Start begins sampling on a 15-second tick, collecting once immediately.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	CacheItemsTotal.Set(float64(c.size()))
}
