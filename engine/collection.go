package engine

import (
	"github.com/hupe1980/logsift/model"
)

// Collection is the ordered sequence of ingested records, bounded by a
// maximum capacity with oldest-first eviction.
//
// Owned by the engine run loop; not safe for concurrent use.
type Collection struct {
	records  []*model.Record
	capacity int

	// onChanged fires exactly once per bulk operation, regardless of how
	// many records were appended or evicted.
	onChanged func(added, evicted int)
}

// NewCollection creates an empty collection with the given capacity.
func NewCollection(capacity int, onChanged func(added, evicted int)) *Collection {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Collection{
		capacity:  capacity,
		onChanged: onChanged,
	}
}

// Append merges a batch, evicting from the front once capacity is exceeded.
// Emits one change signal for the whole batch. Returns the eviction count.
func (c *Collection) Append(batch []*model.Record) (evicted int) {
	if len(batch) == 0 {
		return 0
	}

	c.records = append(c.records, batch...)

	if over := len(c.records) - c.capacity; over > 0 {
		evicted = over
		n := copy(c.records, c.records[over:])
		for i := n; i < len(c.records); i++ {
			c.records[i] = nil
		}
		c.records = c.records[:n]
	}

	if c.onChanged != nil {
		c.onChanged(len(batch), evicted)
	}
	return evicted
}

// Reset discards all records and emits one change signal.
func (c *Collection) Reset() {
	removed := len(c.records)
	c.records = nil
	if c.onChanged != nil && removed > 0 {
		c.onChanged(0, removed)
	}
}

// Len returns the number of visible records.
func (c *Collection) Len() int {
	return len(c.records)
}

// Records returns the backing slice in arrival order.
//
// The slice is only valid until the next Append or Reset; callers inside the
// run loop must not retain it across loop iterations.
func (c *Collection) Records() []*model.Record {
	return c.records
}
