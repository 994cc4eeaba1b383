package engine

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/logsift/intern"
	"github.com/hupe1980/logsift/model"
	"github.com/hupe1980/logsift/queue"
)

// Processor drains the ingestion buffer into the visible collection.
//
// Each Tick drains at most one bounded batch to cap per-tick latency. The
// processor is passive: the engine run loop decides the cadence, so all of
// its methods execute on the consumer domain.
type Processor struct {
	buffer     *queue.Buffer[*model.Record]
	pool       *intern.Pool
	collection *Collection
	batchSize  int
	metrics    MetricsCollector

	batches    atomic.Int64
	items      atomic.Int64
	totalNanos atomic.Int64
	lastNanos  atomic.Int64
}

// NewProcessor creates a processor draining buffer into collection.
func NewProcessor(buffer *queue.Buffer[*model.Record], pool *intern.Pool, collection *Collection, batchSize int, metrics MetricsCollector) *Processor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &Processor{
		buffer:     buffer,
		pool:       pool,
		collection: collection,
		batchSize:  batchSize,
		metrics:    metrics,
	}
}

// Tick drains one bounded batch, interns its string fields, and merges it
// into the collection. Returns the number of records merged; zero when the
// buffer was empty.
func (p *Processor) Tick() int {
	if p.buffer.IsEmpty() {
		return 0
	}

	batch := p.buffer.DequeueBatch(p.batchSize)
	if len(batch) == 0 {
		return 0
	}

	start := time.Now()

	for _, r := range batch {
		r.InternFields(p.pool.Intern)
	}
	evicted := p.collection.Append(batch)

	elapsed := time.Since(start)
	p.batches.Add(1)
	p.items.Add(int64(len(batch)))
	p.totalNanos.Add(elapsed.Nanoseconds())
	p.lastNanos.Store(elapsed.Nanoseconds())
	p.metrics.RecordBatch(len(batch), evicted, elapsed)

	return len(batch)
}

// Flush drains the buffer synchronously to empty. Returns the total number
// of records merged. Used for deterministic shutdown and tests.
func (p *Processor) Flush() int {
	total := 0
	for {
		n := p.Tick()
		if n == 0 {
			return total
		}
		total += n
	}
}

// ProcessorStats is a snapshot of processor counters.
type ProcessorStats struct {
	Batches      int64
	Items        int64
	LastDuration time.Duration
	AvgDuration  time.Duration
}

// GetStats returns a snapshot of processor counters.
func (p *Processor) GetStats() ProcessorStats {
	batches := p.batches.Load()
	stats := ProcessorStats{
		Batches:      batches,
		Items:        p.items.Load(),
		LastDuration: time.Duration(p.lastNanos.Load()),
	}
	if batches > 0 {
		stats.AvgDuration = time.Duration(p.totalNanos.Load() / batches)
	}
	return stats
}
