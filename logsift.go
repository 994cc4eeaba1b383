package logsift

import (
	"time"

	"github.com/hupe1980/logsift/engine"
	"github.com/hupe1980/logsift/model"
)

// FilterChange summarizes one completed recompute.
type FilterChange = engine.FilterChange

// Stats is a snapshot of the engine's observables.
type Stats = engine.Stats

// Tier is the current debounce tier derived from observed ingestion rate.
type Tier = engine.Tier

// Tier values, from snappy to protective.
const (
	TierIdle   = engine.TierIdle
	TierNormal = engine.TierNormal
	TierLoad   = engine.TierLoad
)

// Sifter is the public entry point: it owns the filter state, the bounded
// record collection, and the recompute scheduling.
//
// All methods are safe for concurrent use. Push and PushBatch never block;
// filter setters return after the edit is applied (the recompute itself is
// debounced).
type Sifter struct {
	engine *engine.Engine
	logger *Logger
	fields map[string]struct{}
}

// New creates and starts a Sifter.
func New(optFns ...Option) (*Sifter, error) {
	o := applyOptions(optFns)

	s := &Sifter{
		logger: o.logger,
	}
	if len(o.fields) > 0 {
		s.fields = make(map[string]struct{}, len(o.fields))
		for _, f := range o.fields {
			s.fields[f] = struct{}{}
		}
		timeField := o.engineConfig.TimeField
		if timeField == "" {
			timeField = "time"
		}
		s.fields[model.NormalizeKey(timeField)] = struct{}{}
	}

	s.engine = engine.New(o.engineConfig)
	return s, nil
}

func (s *Sifter) checkField(key string) error {
	if s.fields == nil {
		return nil
	}
	if _, ok := s.fields[model.NormalizeKey(key)]; !ok {
		s.logger.WithField(key).Debug("filter operation on unknown field")
		return &ErrUnknownField{Field: key}
	}
	return nil
}

// SetTextFilter sets the text pattern for a field key. Patterns match
// case-insensitively; an empty pattern removes the constraint.
func (s *Sifter) SetTextFilter(key, pattern string) error {
	if err := s.checkField(key); err != nil {
		return err
	}
	return translateError(s.engine.SetTextFilter(key, pattern))
}

// SetSelection replaces the set of allowed values for a field key. A nil
// slice removes the constraint; an empty slice excludes every record for
// that field.
func (s *Sifter) SetSelection(key string, values []string) error {
	if err := s.checkField(key); err != nil {
		return err
	}
	return translateError(s.engine.SetSelection(key, values))
}

// ClearSelection removes the selection constraint for a field key.
func (s *Sifter) ClearSelection(key string) error {
	if err := s.checkField(key); err != nil {
		return err
	}
	return translateError(s.engine.ClearSelection(key))
}

// SetTimeRange sets the inclusive time range; either bound may be nil.
func (s *Sifter) SetTimeRange(from, to *time.Time) error {
	return translateError(s.engine.SetTimeRange(from, to))
}

// ClearAll removes all filter constraints. Idempotent.
func (s *Sifter) ClearAll() error {
	return translateError(s.engine.ClearAll())
}

// DistinctValues returns the sorted distinct values of a field, or
// ErrTooManyValues when the field exceeds the configured cap.
func (s *Sifter) DistinctValues(field string) ([]string, error) {
	if err := s.checkField(field); err != nil {
		return nil, err
	}
	values, err := s.engine.DistinctValues(field)
	return values, translateError(err)
}

// Push enqueues one record for ingestion. Never blocks.
func (s *Sifter) Push(r *model.Record) error {
	return translateError(s.engine.Push(r))
}

// PushBatch enqueues records in order. Never blocks.
func (s *Sifter) PushBatch(records []*model.Record) error {
	if err := s.engine.PushBatch(records); err != nil {
		return translateError(err)
	}
	s.logger.WithCount(len(records)).Debug("records enqueued")
	return nil
}

// Filtered returns a copy of the current filtered view in arrival order.
func (s *Sifter) Filtered() ([]*model.Record, error) {
	records, err := s.engine.Filtered()
	return records, translateError(err)
}

// Flush drains the ingestion buffer to empty and recomputes synchronously.
// Used for deterministic shutdown and tests.
func (s *Sifter) Flush() error {
	return translateError(s.engine.Flush())
}

// Pause stops draining the ingestion buffer; producers keep buffering and
// nothing is dropped. Idempotent.
func (s *Sifter) Pause() error {
	return translateError(s.engine.Pause())
}

// Resume restarts draining after Pause. Idempotent.
func (s *Sifter) Resume() error {
	return translateError(s.engine.Resume())
}

// Reset discards the visible collection, pending buffered records, and all
// derived caches. Filter state is kept.
func (s *Sifter) Reset() error {
	return translateError(s.engine.Reset())
}

// TotalCount returns the number of records in the visible collection.
func (s *Sifter) TotalCount() int {
	return s.engine.TotalCount()
}

// FilteredCount returns the number of records passing the current filters.
func (s *Sifter) FilteredCount() int {
	return s.engine.FilteredCount()
}

// HasActiveFilters reports whether any filter is active.
func (s *Sifter) HasActiveFilters() bool {
	return s.engine.HasActiveFilters()
}

// LastRecomputeDuration returns the duration of the last recompute.
func (s *Sifter) LastRecomputeDuration() time.Duration {
	return s.engine.LastRecomputeDuration()
}

// GetStats returns a consistent snapshot of the engine's observables.
func (s *Sifter) GetStats() (Stats, error) {
	stats, err := s.engine.GetStats()
	return stats, translateError(err)
}

// Close stops the engine. Idempotent. Buffered-but-undrained records are
// retained; call Flush first for a deterministic shutdown.
func (s *Sifter) Close() error {
	return translateError(s.engine.Close())
}
