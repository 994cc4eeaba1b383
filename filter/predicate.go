package filter

import (
	"github.com/hupe1980/logsift/model"
)

// DefaultTimeField is the field key treated as the time column when the host
// does not configure one.
const DefaultTimeField = "time"

// Evaluator decides record inclusion against a filter snapshot.
//
// Matches is a pure function over (record, snapshot) apart from read-through
// caches: the compiled-pattern cache and the record's memoized timestamp.
// It is safe to call concurrently with the same Evaluator.
type Evaluator struct {
	timeField string
	patterns  *PatternCache
	parser    *TimeParser
}

// NewEvaluator creates an evaluator.
func NewEvaluator(timeField string, patterns *PatternCache, parser *TimeParser) *Evaluator {
	if timeField == "" {
		timeField = DefaultTimeField
	}
	if patterns == nil {
		patterns = NewPatternCache(DefaultPatternCacheSize, nil)
	}
	if parser == nil {
		parser = NewTimeParser()
	}
	return &Evaluator{
		timeField: model.NormalizeKey(timeField),
		patterns:  patterns,
		parser:    parser,
	}
}

// TimeField returns the configured time field key.
func (e *Evaluator) TimeField() string {
	return e.timeField
}

// Patterns returns the evaluator's compiled-pattern cache.
func (e *Evaluator) Patterns() *PatternCache {
	return e.patterns
}

// Matches reports whether the record passes every active filter in the
// snapshot. Constraints are checked in ascending cost order and evaluation
// short-circuits on the first failure.
func (e *Evaluator) Matches(r *model.Record, s *Snapshot) bool {
	if !e.matchTime(r, s) {
		return false
	}
	if !e.matchSelections(r, s) {
		return false
	}
	return e.matchText(r, s)
}

func (e *Evaluator) matchTime(r *model.Record, s *Snapshot) bool {
	timeText, _ := r.Field(e.timeField)

	if pattern, ok := s.Text[e.timeField]; ok {
		if !e.patterns.Match(pattern, timeText) {
			return false
		}
	}

	if set, ok := s.Selection[e.timeField]; ok {
		if len(set) == 0 {
			return false
		}
		if _, member := set[Normalize(timeText)]; !member {
			return false
		}
	}

	if s.From != nil || s.To != nil {
		ts, ok := r.MemoizedTime(timeText, e.parser.Parse)
		if !ok {
			// Fails closed: a record without a resolvable timestamp is
			// excluded while a range bound is active.
			return false
		}
		if s.From != nil && ts.Before(*s.From) {
			return false
		}
		if s.To != nil && ts.After(*s.To) {
			return false
		}
	}

	return true
}

func (e *Evaluator) matchSelections(r *model.Record, s *Snapshot) bool {
	for key, set := range s.Selection {
		if key == e.timeField {
			continue
		}
		if len(set) == 0 {
			return false
		}
		v, _ := r.Field(key)
		if _, member := set[Normalize(v)]; !member {
			return false
		}
	}
	return true
}

func (e *Evaluator) matchText(r *model.Record, s *Snapshot) bool {
	for key, pattern := range s.Text {
		if key == e.timeField {
			continue
		}
		v, ok := r.Field(key)
		if !ok {
			// A missing field never matches a non-empty pattern.
			return false
		}
		if !e.patterns.Match(pattern, v) {
			return false
		}
	}
	return true
}
