// Package engine implements the consumer-side core of logsift: the bounded
// visible collection, the batch processor draining the ingestion buffer, the
// adaptive recompute scheduler, and the filter recompute loop.
//
// All engine state except the ingestion buffer and the interning pool is
// owned by a single run-loop goroutine; public methods post commands into
// that loop. The only concurrent section is the parallel evaluation path,
// which reads an immutable filter snapshot.
package engine
