package engine

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/logsift/model"
)

// evalParallel evaluates match over records across partitions, preserving
// original record order in the result.
//
// The match function must be safe for concurrent use; the engine guarantees
// this by handing it an immutable filter snapshot.
func evalParallel(records []*model.Record, match func(r *model.Record, pos uint32) bool) []*model.Record {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(records) {
		workers = len(records)
	}
	if workers <= 1 {
		return evalSequential(records, match)
	}

	chunk := (len(records) + workers - 1) / workers
	parts := make([][]*model.Record, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(records) {
			end = len(records)
		}
		if start >= end {
			break
		}
		g.Go(func() error {
			var kept []*model.Record
			for i := start; i < end; i++ {
				if match(records[i], uint32(i)) {
					kept = append(kept, records[i])
				}
			}
			parts[w] = kept
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make([]*model.Record, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// evalSequential evaluates match in a single ordered pass.
func evalSequential(records []*model.Record, match func(r *model.Record, pos uint32) bool) []*model.Record {
	var kept []*model.Record
	for i, r := range records {
		if match(r, uint32(i)) {
			kept = append(kept, r)
		}
	}
	return kept
}
