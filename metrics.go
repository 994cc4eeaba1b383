package logsift

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/logsift/engine"
)

// MetricsCollector receives operational metrics from the engine.
// Implement this interface to integrate with monitoring systems.
type MetricsCollector = engine.MetricsCollector

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector = engine.NoopMetricsCollector

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BatchCount          atomic.Int64
	BatchItems          atomic.Int64
	BatchEvicted        atomic.Int64
	BatchTotalNanos     atomic.Int64
	RecomputeCount      atomic.Int64
	RecomputeParallel   atomic.Int64
	RecomputeTotalNanos atomic.Int64
	IndexBuilds         atomic.Int64
	IndexHits           atomic.Int64
	IndexMisses         atomic.Int64
	PatternErrors       atomic.Int64
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(count, evicted int, duration time.Duration) {
	b.BatchCount.Add(1)
	b.BatchItems.Add(int64(count))
	b.BatchEvicted.Add(int64(evicted))
	b.BatchTotalNanos.Add(duration.Nanoseconds())
}

// RecordRecompute implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRecompute(total, matched int, parallel bool, duration time.Duration) {
	b.RecomputeCount.Add(1)
	if parallel {
		b.RecomputeParallel.Add(1)
	}
	b.RecomputeTotalNanos.Add(duration.Nanoseconds())
}

// RecordIndexBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIndexBuild(field string, distinct int, duration time.Duration) {
	b.IndexBuilds.Add(1)
}

// RecordIndexLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIndexLookup(hit bool) {
	if hit {
		b.IndexHits.Add(1)
	} else {
		b.IndexMisses.Add(1)
	}
}

// RecordPatternError implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPatternError(pattern string) {
	b.PatternErrors.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	stats := BasicMetricsStats{
		BatchCount:        b.BatchCount.Load(),
		BatchItems:        b.BatchItems.Load(),
		BatchEvicted:      b.BatchEvicted.Load(),
		RecomputeCount:    b.RecomputeCount.Load(),
		RecomputeParallel: b.RecomputeParallel.Load(),
		IndexBuilds:       b.IndexBuilds.Load(),
		IndexHits:         b.IndexHits.Load(),
		IndexMisses:       b.IndexMisses.Load(),
		PatternErrors:     b.PatternErrors.Load(),
	}
	if stats.BatchCount > 0 {
		stats.BatchAvgNanos = b.BatchTotalNanos.Load() / stats.BatchCount
	}
	if stats.RecomputeCount > 0 {
		stats.RecomputeAvgNanos = b.RecomputeTotalNanos.Load() / stats.RecomputeCount
	}
	return stats
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BatchCount        int64
	BatchItems        int64
	BatchEvicted      int64
	BatchAvgNanos     int64
	RecomputeCount    int64
	RecomputeParallel int64
	RecomputeAvgNanos int64
	IndexBuilds       int64
	IndexHits         int64
	IndexMisses       int64
	PatternErrors     int64
}
