// Package valueindex provides the per-field distinct-value index used to
// populate selection candidates and to accelerate selection filtering.
package valueindex

import (
	"errors"
	"sort"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/logsift/filter"
	"github.com/hupe1980/logsift/model"
)

var (
	// ErrNotBuilt is returned when no index exists yet for the field; the
	// caller must fall back to a full scan and may build the index from it.
	ErrNotBuilt = errors.New("valueindex: field not indexed")

	// ErrTooManyValues is returned when the field's distinct-value count
	// exceeds the configured cap; callers must degrade to text filtering.
	ErrTooManyValues = errors.New("valueindex: too many distinct values")
)

// DefaultMaxDistinct caps the distinct values served per field.
const DefaultMaxDistinct = 500

// fieldIndex maps normalized value -> record positions for a single field.
type fieldIndex struct {
	postings map[string]*roaring.Bitmap
}

// Index maps field keys to value postings over the visible collection.
//
// The index is owned by the engine's run loop and is not safe for concurrent
// mutation. It is stale after any structural change to the collection until
// invalidated and rebuilt; a missing field entry means "not yet built",
// never "no values".
type Index struct {
	maxDistinct int
	fields      map[string]*fieldIndex

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates an index with the given distinct-value cap per field.
func New(maxDistinct int) *Index {
	if maxDistinct <= 0 {
		maxDistinct = DefaultMaxDistinct
	}
	return &Index{
		maxDistinct: maxDistinct,
		fields:      make(map[string]*fieldIndex),
	}
}

// Build indexes a field with a single pass over the collection.
//
// A rebuild replaces any previous index for the field.
func (ix *Index) Build(field string, records []*model.Record) {
	key := model.NormalizeKey(field)

	fi := &fieldIndex{postings: make(map[string]*roaring.Bitmap)}
	for pos, r := range records {
		v, ok := r.Field(key)
		if !ok {
			continue
		}
		nv := filter.Normalize(v)
		bm, ok := fi.postings[nv]
		if !ok {
			bm = roaring.New()
			fi.postings[nv] = bm
		}
		bm.Add(uint32(pos))
	}

	ix.fields[key] = fi
}

// Has reports whether the field currently has a built index.
func (ix *Index) Has(field string) bool {
	_, ok := ix.fields[model.NormalizeKey(field)]
	return ok
}

// DistinctValues returns the sorted distinct values of a field.
//
// Returns ErrNotBuilt when the field has no index yet, and ErrTooManyValues
// when the distinct count exceeds the cap.
func (ix *Index) DistinctValues(field string) ([]string, error) {
	fi, ok := ix.fields[model.NormalizeKey(field)]
	if !ok {
		return nil, ErrNotBuilt
	}

	if len(fi.postings) > ix.maxDistinct {
		return nil, ErrTooManyValues
	}

	values := make([]string, 0, len(fi.postings))
	for v := range fi.postings {
		values = append(values, v)
	}
	sort.Strings(values)

	return values, nil
}

// MarkLookup records whether a distinct-value request was served directly
// from a built index (hit) or required a scan-and-build fallback (miss).
func (ix *Index) MarkLookup(hit bool) {
	if hit {
		ix.hits.Add(1)
	} else {
		ix.misses.Add(1)
	}
}

// Postings returns the position bitmap for one value of a field.
func (ix *Index) Postings(field, value string) (*roaring.Bitmap, bool) {
	fi, ok := ix.fields[model.NormalizeKey(field)]
	if !ok {
		return nil, false
	}
	bm, ok := fi.postings[filter.Normalize(value)]
	return bm, ok
}

// CompileSelection compiles the snapshot's selection filters into a fast
// position-membership test, when every selection field has a built index.
//
// Per field the allowed-value postings are unioned, then the fields are
// intersected. An explicit empty selection set compiles to always-false.
// ok=false means the snapshot cannot be served from the index and the caller
// must evaluate the predicate per record.
func (ix *Index) CompileSelection(s *filter.Snapshot, timeField string) (fn func(pos uint32) bool, ok bool) {
	if len(s.Selection) == 0 {
		return nil, false
	}

	var acc *roaring.Bitmap

	for field, set := range s.Selection {
		if field == timeField {
			// Time selections compare against rendered time-text; leave
			// them to the predicate.
			return nil, false
		}
		fi, built := ix.fields[field]
		if !built {
			return nil, false
		}

		if len(set) == 0 {
			return func(uint32) bool { return false }, true
		}

		union := roaring.New()
		for v := range set {
			if bm, has := fi.postings[v]; has {
				union.Or(bm)
			}
		}
		if union.IsEmpty() {
			return func(uint32) bool { return false }, true
		}

		if acc == nil {
			acc = union
		} else {
			acc.And(union)
			if acc.IsEmpty() {
				return func(uint32) bool { return false }, true
			}
		}
	}

	if acc == nil {
		return nil, false
	}
	return acc.Contains, true
}

// Invalidate drops all built field indexes.
//
// Called after any structural change (append, eviction, reset); fields are
// rebuilt on demand.
func (ix *Index) Invalidate() {
	ix.fields = make(map[string]*fieldIndex)
}

// Stats returns index hit and miss counters.
func (ix *Index) Stats() (hits, misses int64) {
	return ix.hits.Load(), ix.misses.Load()
}
