package logsift

import (
	"log/slog"
	"time"

	"github.com/hupe1980/logsift/engine"
	"github.com/hupe1980/logsift/model"
)

type options struct {
	engineConfig engine.Config
	logger       *Logger
	fields       []string
}

// Option configures Sifter constructor behavior.
type Option func(*options)

// WithCapacity sets the maximum number of records kept in the visible
// collection; oldest records are evicted first once exceeded.
// Defaults to 10,000.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		o.engineConfig.Capacity = capacity
	}
}

// WithBatchInterval sets the cadence at which the ingestion buffer is
// drained. Defaults to 50ms.
func WithBatchInterval(interval time.Duration) Option {
	return func(o *options) {
		o.engineConfig.BatchInterval = interval
	}
}

// WithBatchSize bounds the number of records merged per tick, capping
// per-tick latency. Defaults to 50.
func WithBatchSize(size int) Option {
	return func(o *options) {
		o.engineConfig.BatchSize = size
	}
}

// WithThrottleInterval caps ingestion-driven recompute frequency.
// Defaults to 500ms.
func WithThrottleInterval(interval time.Duration) Option {
	return func(o *options) {
		o.engineConfig.ThrottleInterval = interval
	}
}

// WithDebounceDelays sets the per-tier debounce delays applied to filter
// edits. Defaults to 100ms (idle), 200ms (normal), 400ms (high load).
func WithDebounceDelays(idle, normal, load time.Duration) Option {
	return func(o *options) {
		o.engineConfig.IdleDelay = idle
		o.engineConfig.NormalDelay = normal
		o.engineConfig.LoadDelay = load
	}
}

// WithRateThresholds sets the ingestion-rate tier boundaries in records per
// second. Below idleBelow the idle delay applies; above loadAbove the
// high-load delay applies. Defaults to 5 and 50.
func WithRateThresholds(idleBelow, loadAbove float64) Option {
	return func(o *options) {
		o.engineConfig.IdleBelowRate = idleBelow
		o.engineConfig.LoadAboveRate = loadAbove
	}
}

// WithSampleInterval sets the ingestion-rate sampling window.
// Defaults to 1s.
func WithSampleInterval(interval time.Duration) Option {
	return func(o *options) {
		o.engineConfig.SampleInterval = interval
	}
}

// WithParallelThreshold sets the collection size above which recomputes
// evaluate partitions concurrently. Defaults to 5,000.
func WithParallelThreshold(threshold int) Option {
	return func(o *options) {
		o.engineConfig.ParallelThreshold = threshold
	}
}

// WithMaxDistinctValues caps the distinct values served per field by
// DistinctValues. Defaults to 500.
func WithMaxDistinctValues(maxValues int) Option {
	return func(o *options) {
		o.engineConfig.MaxDistinctValues = maxValues
	}
}

// WithTimeField sets the field key treated as the time column.
// Defaults to "time".
func WithTimeField(field string) Option {
	return func(o *options) {
		o.engineConfig.TimeField = field
	}
}

// WithTimeFormats replaces the ordered list of accepted time-text layouts.
// Earlier layouts win.
func WithTimeFormats(formats ...string) Option {
	return func(o *options) {
		o.engineConfig.TimeFormats = formats
	}
}

// WithFields restricts filter operations to the given field keys; operations
// on other keys fail with ErrUnknownField. Without this option any key is
// accepted.
func WithFields(fields ...string) Option {
	return func(o *options) {
		o.fields = fields
	}
}

// WithOnFilterChanged registers a callback fired exactly once per recompute
// from the consumer domain. The callback must not block.
func WithOnFilterChanged(fn func(engine.FilterChange)) Option {
	return func(o *options) {
		o.engineConfig.OnFilterChanged = fn
	}
}

// WithOnCollectionChanged registers a callback fired exactly once per bulk
// collection change from the consumer domain. The callback must not block.
func WithOnCollectionChanged(fn func(added, evicted int)) Option {
	return func(o *options) {
		o.engineConfig.OnCollectionChanged = fn
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.engineConfig.Metrics = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger: NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	o.engineConfig.Logger = o.logger.Logger
	for i, f := range o.fields {
		o.fields[i] = model.NormalizeKey(f)
	}
	return o
}
