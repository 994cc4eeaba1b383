// Package queue provides the concurrent FIFO ingestion buffer between the
// producer domain and the engine's consumer loop.
package queue

import (
	"sync"
	"sync/atomic"
)

// chunkSize is the number of slots per linked chunk. Chunking keeps enqueue
// O(1) amortized without per-item allocations.
const chunkSize = 128

type chunk[T any] struct {
	items [chunkSize]T
	head  int
	tail  int
	next  *chunk[T]
}

// Buffer is an unbounded FIFO queue.
//
// Enqueue and EnqueueRange never block and are safe to call from any number
// of producer goroutines. DequeueBatch is intended for the single consumer
// side. Len and IsEmpty are approximate lock-free reads.
type Buffer[T any] struct {
	mu    sync.Mutex
	head  *chunk[T]
	tail  *chunk[T]
	count atomic.Int64
}

// NewBuffer creates an empty buffer.
func NewBuffer[T any]() *Buffer[T] {
	c := &chunk[T]{}
	return &Buffer[T]{head: c, tail: c}
}

// Enqueue appends one item.
func (b *Buffer[T]) Enqueue(v T) {
	b.mu.Lock()
	b.enqueueLocked(v)
	b.count.Add(1)
	b.mu.Unlock()
}

// EnqueueRange appends all items in order.
func (b *Buffer[T]) EnqueueRange(vs []T) {
	if len(vs) == 0 {
		return
	}
	b.mu.Lock()
	for _, v := range vs {
		b.enqueueLocked(v)
	}
	b.count.Add(int64(len(vs)))
	b.mu.Unlock()
}

func (b *Buffer[T]) enqueueLocked(v T) {
	if b.tail.tail == chunkSize {
		next := &chunk[T]{}
		b.tail.next = next
		b.tail = next
	}
	b.tail.items[b.tail.tail] = v
	b.tail.tail++
}

// DequeueBatch removes and returns up to maxSize items in FIFO order.
// Returns nil when the buffer is empty.
func (b *Buffer[T]) DequeueBatch(maxSize int) []T {
	if maxSize <= 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var out []T
	for len(out) < maxSize {
		c := b.head
		if c.head == c.tail {
			if c.next == nil {
				break
			}
			b.head = c.next
			continue
		}
		out = append(out, c.items[c.head])
		var zero T
		c.items[c.head] = zero
		c.head++
	}

	if len(out) > 0 {
		b.count.Add(-int64(len(out)))
	}
	return out
}

// Len returns the approximate number of buffered items.
func (b *Buffer[T]) Len() int {
	n := b.count.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// IsEmpty reports whether the buffer is (approximately) empty.
func (b *Buffer[T]) IsEmpty() bool {
	return b.count.Load() <= 0
}

// Clear drains and discards all pending items.
func (b *Buffer[T]) Clear() {
	b.mu.Lock()
	c := &chunk[T]{}
	b.head = c
	b.tail = c
	b.count.Store(0)
	b.mu.Unlock()
}
