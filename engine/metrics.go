package engine

import "time"

// MetricsCollector receives operational metrics from the engine.
// Implement it to integrate with monitoring systems.
type MetricsCollector interface {
	// RecordBatch is called after each non-empty batch drain.
	// count is the number of records merged, evicted the number of records
	// dropped from the front of the collection.
	RecordBatch(count, evicted int, duration time.Duration)

	// RecordRecompute is called after each filter recompute.
	RecordRecompute(total, matched int, parallel bool, duration time.Duration)

	// RecordIndexBuild is called after a distinct-value index build.
	RecordIndexBuild(field string, distinct int, duration time.Duration)

	// RecordIndexLookup is called per distinct-value request; hit means the
	// built index served it directly.
	RecordIndexLookup(hit bool)

	// RecordPatternError is called once per invalid text pattern compile.
	RecordPatternError(pattern string)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBatch(int, int, time.Duration) {}

func (NoopMetricsCollector) RecordRecompute(int, int, bool, time.Duration) {}

func (NoopMetricsCollector) RecordIndexBuild(string, int, time.Duration) {}

func (NoopMetricsCollector) RecordIndexLookup(bool) {}

func (NoopMetricsCollector) RecordPatternError(string) {}
