// Package intern provides a process-wide string deduplication pool.
//
// Log streams repeat a small vocabulary (levels, sources, event names) across
// millions of records. Interning collapses those repeats to a single backing
// string so the bounded record collection stays small.
package intern

import (
	"sync"
	"sync/atomic"
	"unique"
)

// Pool deduplicates strings through unique.Handle.
//
// Safe for concurrent use from any goroutine; both the producer-side batch
// processor and host code may intern through the same pool.
type Pool struct {
	seen     sync.Map // unique.Handle[string] -> struct{}
	lookups  atomic.Int64
	distinct atomic.Int64
}

// NewPool creates an empty interning pool.
func NewPool() *Pool {
	return &Pool{}
}

// Intern returns the canonical instance of s.
//
// The returned string is equal to s but shares backing storage with every
// other interned occurrence of the same content.
func (p *Pool) Intern(s string) string {
	if s == "" {
		return ""
	}

	h := unique.Make(s)

	p.lookups.Add(1)
	if _, loaded := p.seen.LoadOrStore(h, struct{}{}); !loaded {
		p.distinct.Add(1)
	}

	return h.Value()
}

// InternFields interns every value of the given field map in place.
func (p *Pool) InternFields(fields map[string]string) {
	for k, v := range fields {
		fields[k] = p.Intern(v)
	}
}

// Reset clears the pool's bookkeeping.
//
// Called on dataset reset; the unique package keeps handles alive only while
// referenced, so dropping the bookkeeping releases the pool's own hold.
func (p *Pool) Reset() {
	p.seen.Clear()
	p.lookups.Store(0)
	p.distinct.Store(0)
}

// Stats is a snapshot of pool counters.
type Stats struct {
	Lookups  int64
	Distinct int64
}

// GetStats returns a snapshot of the pool counters.
func (p *Pool) GetStats() Stats {
	return Stats{
		Lookups:  p.lookups.Load(),
		Distinct: p.distinct.Load(),
	}
}
