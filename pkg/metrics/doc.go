/*
Package metrics provides Prometheus metrics collection and exposition for
mdvault.

Metrics are registered at package init time using prometheus/client_golang
and exposed over HTTP via Handler(), the same way the rest of the corpus
wires Prometheus in: a package-level registry, MustRegister in init(), a
promhttp.Handler() mounted by the CLI's serve command.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Metric Categories                 │          │
	│  │                                              │          │
	│  │  Scan: files observed, errors, duration     │          │
	│  │  Sync: updates/deletes, item errors, dur.   │          │
	│  │  Store: commit duration, codec errors       │          │
	│  │  Cache: item count after each rebuild       │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Usage

	timer := metrics.NewTimer()
	// ... run the scan ...
	timer.ObserveDuration(metrics.ScanDuration)
	metrics.ScanFilesTotal.Add(float64(len(scanned)))

The Collector in collector.go periodically samples a *vault.Store's cache
size into CacheItemsTotal; everything else is incremented inline by the
scanner, pipeline, and store as they run, since those are one-shot
operations rather than a steady-state loop worth polling.
*/
package metrics
