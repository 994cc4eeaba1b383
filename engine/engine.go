package engine

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/logsift/filter"
	"github.com/hupe1980/logsift/intern"
	"github.com/hupe1980/logsift/model"
	"github.com/hupe1980/logsift/queue"
	"github.com/hupe1980/logsift/valueindex"
)

// Defaults for the engine configuration.
const (
	DefaultCapacity          = 10_000
	DefaultBatchInterval     = 50 * time.Millisecond
	DefaultBatchSize         = 50
	DefaultThrottleInterval  = 500 * time.Millisecond
	DefaultIdleDelay         = 100 * time.Millisecond
	DefaultNormalDelay       = 200 * time.Millisecond
	DefaultLoadDelay         = 400 * time.Millisecond
	DefaultIdleBelowRate     = 5.0
	DefaultLoadAboveRate     = 50.0
	DefaultSampleInterval    = time.Second
	DefaultParallelThreshold = 5_000
)

// FilterChange summarizes one completed recompute. It is delivered exactly
// once per recompute, never once per field.
type FilterChange struct {
	Total    int
	Filtered int
	Active   bool
	Parallel bool
	Duration time.Duration
}

// Config configures an Engine. Zero fields fall back to defaults.
type Config struct {
	Capacity          int
	BatchInterval     time.Duration
	BatchSize         int
	ThrottleInterval  time.Duration
	IdleDelay         time.Duration
	NormalDelay       time.Duration
	LoadDelay         time.Duration
	IdleBelowRate     float64
	LoadAboveRate     float64
	SampleInterval    time.Duration
	ParallelThreshold int
	MaxDistinctValues int
	TimeField         string
	TimeFormats       []string

	Logger  *slog.Logger
	Metrics MetricsCollector

	// OnFilterChanged fires once per recompute from the consumer domain.
	OnFilterChanged func(FilterChange)
	// OnCollectionChanged fires once per bulk collection change.
	OnCollectionChanged func(added, evicted int)

	// Now overrides the scheduler clock, for tests.
	Now func() time.Time
}

func (c *Config) withDefaults() {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.BatchInterval <= 0 {
		c.BatchInterval = DefaultBatchInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.SampleInterval <= 0 {
		c.SampleInterval = DefaultSampleInterval
	}
	if c.ParallelThreshold <= 0 {
		c.ParallelThreshold = DefaultParallelThreshold
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Metrics == nil {
		c.Metrics = NoopMetricsCollector{}
	}
}

// Engine owns the filter state and the recompute entry point.
type Engine struct {
	cfg     Config
	log     *slog.Logger
	metrics MetricsCollector

	buffer     *queue.Buffer[*model.Record]
	pool       *intern.Pool
	collection *Collection
	index      *valueindex.Index
	state      *filter.State
	eval       *filter.Evaluator
	sched      *Scheduler
	proc       *Processor

	cmdCh  chan func()
	stopCh chan struct{}
	wg     sync.WaitGroup

	// Loop-owned state.
	paused    bool
	debounce  *time.Timer
	debounceC <-chan time.Time
	filtered  []*model.Record

	// Observables readable without a loop round trip.
	totalCount         atomic.Int64
	filteredCount      atomic.Int64
	hasActive          atomic.Bool
	lastRecomputeNanos atomic.Int64

	closed atomic.Bool
}

// New creates and starts an engine.
func New(cfg Config) *Engine {
	cfg.withDefaults()

	e := &Engine{
		cfg:     cfg,
		log:     cfg.Logger,
		metrics: cfg.Metrics,
		buffer:  queue.NewBuffer[*model.Record](),
		pool:    intern.NewPool(),
		index:   valueindex.New(cfg.MaxDistinctValues),
		state:   filter.NewState(),
		cmdCh:   make(chan func(), 64),
		stopCh:  make(chan struct{}),
	}

	e.collection = NewCollection(cfg.Capacity, cfg.OnCollectionChanged)

	patterns := filter.NewPatternCache(filter.DefaultPatternCacheSize, func(pattern string, err error) {
		e.log.Warn("invalid filter pattern, matching everything", "pattern", pattern, "error", err)
		e.metrics.RecordPatternError(pattern)
	})
	e.eval = filter.NewEvaluator(cfg.TimeField, patterns, filter.NewTimeParser(cfg.TimeFormats...))

	e.sched = NewScheduler(SchedulerConfig{
		ThrottleInterval: cfg.ThrottleInterval,
		IdleDelay:        cfg.IdleDelay,
		NormalDelay:      cfg.NormalDelay,
		LoadDelay:        cfg.LoadDelay,
		IdleBelowRate:    cfg.IdleBelowRate,
		LoadAboveRate:    cfg.LoadAboveRate,
		Now:              cfg.Now,
	})

	e.proc = NewProcessor(e.buffer, e.pool, e.collection, cfg.BatchSize, e.metrics)

	e.wg.Add(1)
	go e.run()

	return e
}

// run is the consumer-domain loop. All collection, filter-state, and index
// access happens here.
func (e *Engine) run() {
	defer e.wg.Done()

	batchTicker := time.NewTicker(e.cfg.BatchInterval)
	defer batchTicker.Stop()
	sampleTicker := time.NewTicker(e.cfg.SampleInterval)
	defer sampleTicker.Stop()

	for {
		select {
		case <-e.stopCh:
			if e.debounce != nil {
				e.debounce.Stop()
			}
			return

		case cmd := <-e.cmdCh:
			cmd()

		case <-batchTicker.C:
			e.tickBatch()

		case <-e.debounceC:
			e.sched.DebounceFired()
			e.recompute()

		case <-sampleTicker.C:
			e.sched.Sample()
		}
	}
}

func (e *Engine) tickBatch() {
	if e.paused {
		return
	}
	n := e.proc.Tick()
	if n == 0 {
		return
	}

	e.index.Invalidate()
	e.totalCount.Store(int64(e.collection.Len()))

	switch e.sched.OnIngest(n) {
	case IngestRecompute:
		e.recompute()
	case IngestArmDebounce:
		e.armDebounce()
	case IngestAbsorbed:
		// Pending debounce timer will pick up the change.
	}
}

// armDebounce arms or reschedules the single-shot debounce timer. A new edit
// restarts the clock; a second timer is never started.
func (e *Engine) armDebounce() {
	d := e.sched.OnEdit()
	if e.debounce == nil {
		e.debounce = time.NewTimer(d)
		e.debounceC = e.debounce.C
		return
	}
	if !e.debounce.Stop() {
		select {
		case <-e.debounce.C:
		default:
		}
	}
	e.debounce.Reset(d)
}

// recompute re-evaluates the filter over the whole collection and publishes
// the result. Runs to completion on the consumer domain.
func (e *Engine) recompute() {
	start := time.Now()

	snap := e.state.Snapshot()
	records := e.collection.Records()
	total := len(records)

	var kept []*model.Record
	parallel := false

	switch {
	case !snap.Active():
		kept = append(kept, records...)
	case total >= e.cfg.ParallelThreshold:
		parallel = true
		kept = evalParallel(records, e.matchFunc(snap))
	default:
		kept = evalSequential(records, e.matchFunc(snap))
	}

	elapsed := time.Since(start)

	e.filtered = kept
	e.totalCount.Store(int64(total))
	e.filteredCount.Store(int64(len(kept)))
	e.hasActive.Store(snap.Active())
	e.lastRecomputeNanos.Store(elapsed.Nanoseconds())

	e.metrics.RecordRecompute(total, len(kept), parallel, elapsed)
	e.log.Debug("recompute completed",
		"total", total,
		"filtered", len(kept),
		"parallel", parallel,
		"duration", elapsed,
	)

	if e.cfg.OnFilterChanged != nil {
		e.cfg.OnFilterChanged(FilterChange{
			Total:    total,
			Filtered: len(kept),
			Active:   snap.Active(),
			Parallel: parallel,
			Duration: elapsed,
		})
	}
}

// matchFunc builds the per-record predicate for one recompute, using the
// distinct-value index as a selection pre-filter when it is fresh.
func (e *Engine) matchFunc(snap *filter.Snapshot) func(r *model.Record, pos uint32) bool {
	selFast, ok := e.index.CompileSelection(snap, e.eval.TimeField())
	if !ok {
		return func(r *model.Record, _ uint32) bool {
			return e.safeMatch(r, snap)
		}
	}
	return func(r *model.Record, pos uint32) bool {
		if !selFast(pos) {
			return false
		}
		return e.safeMatch(r, snap)
	}
}

// safeMatch evaluates the predicate for one record. A panic while evaluating
// a single record excludes that record and never aborts the recompute.
func (e *Engine) safeMatch(r *model.Record, snap *filter.Snapshot) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Error("predicate panic, excluding record", "panic", rec)
			ok = false
		}
	}()
	return e.eval.Matches(r, snap)
}

// do posts a command to the run loop.
func (e *Engine) do(fn func()) error {
	if e.closed.Load() {
		return ErrClosed
	}
	select {
	case e.cmdCh <- fn:
		return nil
	case <-e.stopCh:
		return ErrClosed
	}
}

// doWait posts a command and waits for it to complete.
func (e *Engine) doWait(fn func()) error {
	done := make(chan struct{})
	if err := e.do(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-e.stopCh:
		return ErrClosed
	}
}

// applyEdit runs a filter-state mutation on the loop and arms the debounce
// timer when the state actually changed.
func (e *Engine) applyEdit(mutate func() bool) error {
	return e.doWait(func() {
		if mutate() {
			e.hasActive.Store(e.state.Active())
			e.armDebounce()
		}
	})
}

// SetTextFilter sets or clears the text pattern for a field key.
func (e *Engine) SetTextFilter(key, pattern string) error {
	return e.applyEdit(func() bool { return e.state.SetText(key, pattern) })
}

// SetSelection replaces the selection set for a field key. A nil slice
// removes the constraint; an empty slice excludes everything for the field.
func (e *Engine) SetSelection(key string, values []string) error {
	return e.applyEdit(func() bool { return e.state.SetSelection(key, values) })
}

// ClearSelection removes the selection constraint for a field key.
func (e *Engine) ClearSelection(key string) error {
	return e.applyEdit(func() bool { return e.state.ClearSelection(key) })
}

// SetTimeRange sets the inclusive time range; either bound may be nil.
func (e *Engine) SetTimeRange(from, to *time.Time) error {
	return e.applyEdit(func() bool { return e.state.SetTimeRange(from, to) })
}

// ClearAll removes all filter constraints. Idempotent.
func (e *Engine) ClearAll() error {
	return e.applyEdit(func() bool { return e.state.Clear() })
}

// Push enqueues one record for ingestion. Never blocks.
func (e *Engine) Push(r *model.Record) error {
	if e.closed.Load() {
		return ErrClosed
	}
	e.buffer.Enqueue(r)
	return nil
}

// PushBatch enqueues records in order. Never blocks.
func (e *Engine) PushBatch(records []*model.Record) error {
	if e.closed.Load() {
		return ErrClosed
	}
	e.buffer.EnqueueRange(records)
	return nil
}

// DistinctValues returns the distinct values of a field, building the index
// on first request after a structural change.
//
// Returns valueindex.ErrTooManyValues when the field exceeds the configured
// cap; callers must degrade to text filtering.
func (e *Engine) DistinctValues(field string) ([]string, error) {
	var (
		values []string
		err    error
	)
	werr := e.doWait(func() {
		values, err = e.distinctValues(field)
	})
	if werr != nil {
		return nil, werr
	}
	return values, err
}

func (e *Engine) distinctValues(field string) ([]string, error) {
	hit := e.index.Has(field)
	if !hit {
		start := time.Now()
		e.index.Build(field, e.collection.Records())
		elapsed := time.Since(start)

		if values, err := e.index.DistinctValues(field); err == nil {
			e.metrics.RecordIndexBuild(field, len(values), elapsed)
		} else {
			e.metrics.RecordIndexBuild(field, -1, elapsed)
		}
	}
	e.index.MarkLookup(hit)
	e.metrics.RecordIndexLookup(hit)

	return e.index.DistinctValues(field)
}

// Filtered returns a copy of the current filtered view in original order.
func (e *Engine) Filtered() ([]*model.Record, error) {
	var out []*model.Record
	err := e.doWait(func() {
		out = append(out, e.filtered...)
	})
	return out, err
}

// Flush drains the ingestion buffer to empty and recomputes synchronously.
func (e *Engine) Flush() error {
	return e.doWait(func() {
		n := e.proc.Flush()
		if n > 0 {
			e.index.Invalidate()
			e.sched.OnIngest(n)
		}
		e.recompute()
	})
}

// Pause stops draining the ingestion buffer. Producers keep buffering;
// nothing is dropped. Idempotent.
func (e *Engine) Pause() error {
	return e.doWait(func() { e.paused = true })
}

// Resume restarts draining after Pause. Idempotent.
func (e *Engine) Resume() error {
	return e.doWait(func() { e.paused = false })
}

// Reset discards the visible collection, pending buffered records, all
// built indexes, and the interning pool. Filter state is kept.
func (e *Engine) Reset() error {
	return e.doWait(func() {
		e.buffer.Clear()
		e.collection.Reset()
		e.index.Invalidate()
		e.pool.Reset()
		e.eval.Patterns().Purge()
		e.recompute()
	})
}

// TotalCount returns the number of records in the visible collection as of
// the last recompute or merge.
func (e *Engine) TotalCount() int {
	return int(e.totalCount.Load())
}

// FilteredCount returns the number of records passing the current filters.
func (e *Engine) FilteredCount() int {
	return int(e.filteredCount.Load())
}

// HasActiveFilters reports whether any filter is active.
func (e *Engine) HasActiveFilters() bool {
	return e.hasActive.Load()
}

// LastRecomputeDuration returns the duration of the last recompute.
func (e *Engine) LastRecomputeDuration() time.Duration {
	return time.Duration(e.lastRecomputeNanos.Load())
}

// Stats is a snapshot of the engine's observables.
type Stats struct {
	TotalCount            int
	FilteredCount         int
	HasActiveFilters      bool
	LastRecomputeDuration time.Duration

	QueueDepth       int
	BatchesProcessed int64
	ItemsProcessed   int64
	LastBatchLatency time.Duration
	AvgBatchLatency  time.Duration

	DebounceTier  Tier
	DebounceDelay time.Duration

	InternLookups  int64
	InternDistinct int64

	IndexHits   int64
	IndexMisses int64
}

// GetStats returns a consistent snapshot of the engine's observables.
func (e *Engine) GetStats() (Stats, error) {
	var stats Stats
	err := e.doWait(func() {
		proc := e.proc.GetStats()
		pool := e.pool.GetStats()
		hits, misses := e.index.Stats()

		stats = Stats{
			TotalCount:            e.collection.Len(),
			FilteredCount:         len(e.filtered),
			HasActiveFilters:      e.state.Active(),
			LastRecomputeDuration: time.Duration(e.lastRecomputeNanos.Load()),
			QueueDepth:            e.buffer.Len(),
			BatchesProcessed:      proc.Batches,
			ItemsProcessed:        proc.Items,
			LastBatchLatency:      proc.LastDuration,
			AvgBatchLatency:       proc.AvgDuration,
			DebounceTier:          e.sched.CurrentTier(),
			DebounceDelay:         e.sched.CurrentDelay(),
			InternLookups:         pool.Lookups,
			InternDistinct:        pool.Distinct,
			IndexHits:             hits,
			IndexMisses:           misses,
		}
	})
	return stats, err
}

// Close stops the run loop. Idempotent. Buffered-but-undrained records are
// retained in the buffer; call Flush first for a deterministic shutdown.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(e.stopCh)
	e.wg.Wait()
	return nil
}
