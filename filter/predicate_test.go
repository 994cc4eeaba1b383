package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/logsift/model"
)

func newTestEvaluator() *Evaluator {
	return NewEvaluator("time", NewPatternCache(16, nil), NewTimeParser())
}

func rec(fields map[string]string) *model.Record {
	return model.NewRecord(fields)
}

func TestMatchesTextFilterCaseInsensitive(t *testing.T) {
	e := newTestEvaluator()

	s := NewState()
	s.SetText("event", "ERR")
	snap := s.Snapshot()

	tests := []struct {
		event    string
		expected bool
	}{
		{"SEND", false},
		{"ERROR", true},
		{"recv", false},
		{"Error2", true},
	}
	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			got := e.Matches(rec(map[string]string{"event": tt.event}), snap)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMatchesMissingFieldNeverMatchesPattern(t *testing.T) {
	e := newTestEvaluator()

	s := NewState()
	s.SetText("event", "ERR")
	snap := s.Snapshot()

	assert.False(t, e.Matches(rec(map[string]string{"source": "api"}), snap))
}

func TestMatchesInvalidPatternFailsOpen(t *testing.T) {
	var reported []string
	patterns := NewPatternCache(16, func(pattern string, err error) {
		require.Error(t, err)
		reported = append(reported, pattern)
	})
	e := NewEvaluator("time", patterns, NewTimeParser())

	s := NewState()
	s.SetText("event", "[unclosed")
	snap := s.Snapshot()

	assert.True(t, e.Matches(rec(map[string]string{"event": "SEND"}), snap))
	assert.True(t, e.Matches(rec(map[string]string{"event": "ERROR"}), snap))
	assert.Equal(t, []string{"[unclosed"}, reported, "compile error reported once")
}

func TestMatchesSelection(t *testing.T) {
	e := newTestEvaluator()

	s := NewState()
	s.SetSelection("source", []string{"gateway", "api"})
	snap := s.Snapshot()

	assert.True(t, e.Matches(rec(map[string]string{"source": "api"}), snap))
	assert.True(t, e.Matches(rec(map[string]string{"source": " gateway "}), snap), "values normalized")
	assert.False(t, e.Matches(rec(map[string]string{"source": "worker"}), snap))
	assert.False(t, e.Matches(rec(map[string]string{"event": "SEND"}), snap), "missing field is not a member")
}

func TestMatchesEmptySelectionExcludesAll(t *testing.T) {
	e := newTestEvaluator()

	s := NewState()
	s.SetSelection("source", []string{})
	snap := s.Snapshot()

	assert.False(t, e.Matches(rec(map[string]string{"source": "api"}), snap))
	assert.False(t, e.Matches(rec(map[string]string{"source": ""}), snap))
}

func TestMatchesTimeRange(t *testing.T) {
	e := newTestEvaluator()

	from := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 26, 11, 0, 0, 0, time.UTC)

	s := NewState()
	s.SetTimeRange(&from, &to)
	snap := s.Snapshot()

	tests := []struct {
		name     string
		time     string
		expected bool
	}{
		{"before", "2026-08-26T09:59:59Z", false},
		{"at_from", "2026-08-26T10:00:00Z", true},
		{"inside", "2026-08-26T10:30:00Z", true},
		{"at_to", "2026-08-26T11:00:00Z", true},
		{"after", "2026-08-26T11:00:01Z", false},
		{"unparseable_fails_closed", "not a time", false},
		{"empty_fails_closed", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Matches(rec(map[string]string{"time": tt.time}), snap)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMatchesParsedTimestampWins(t *testing.T) {
	e := newTestEvaluator()

	from := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	s := NewState()
	s.SetTimeRange(&from, nil)
	snap := s.Snapshot()

	// The time-text is outside the range but the pre-parsed timestamp is
	// inside; the pre-parsed field wins.
	inside := time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC)
	r := model.NewRecord(
		map[string]string{"time": "2026-08-26T09:00:00Z"},
		model.WithTimestamp(inside),
	)
	assert.True(t, e.Matches(r, snap))
}

func TestMatchesTimeTextFilterAndSelection(t *testing.T) {
	e := newTestEvaluator()

	s := NewState()
	s.SetText("time", "10:1")
	snap := s.Snapshot()

	assert.True(t, e.Matches(rec(map[string]string{"time": "2026-08-26T10:15:04Z"}), snap))
	assert.False(t, e.Matches(rec(map[string]string{"time": "2026-08-26T11:15:04Z"}), snap))

	s = NewState()
	s.SetSelection("time", []string{"10:15:04"})
	snap = s.Snapshot()

	assert.True(t, e.Matches(rec(map[string]string{"time": "10:15:04"}), snap))
	assert.False(t, e.Matches(rec(map[string]string{"time": "10:15:05"}), snap))
}

func TestMatchesShortCircuitAllKinds(t *testing.T) {
	e := newTestEvaluator()

	from := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	s := NewState()
	s.SetTimeRange(&from, nil)
	s.SetSelection("source", []string{"api"})
	s.SetText("event", "ERR")
	snap := s.Snapshot()

	match := rec(map[string]string{
		"time":   "2026-08-26T10:00:00Z",
		"source": "api",
		"event":  "ERROR",
	})
	assert.True(t, e.Matches(match, snap))

	for name, fields := range map[string]map[string]string{
		"bad_time":      {"time": "2025-01-01T00:00:00Z", "source": "api", "event": "ERROR"},
		"bad_selection": {"time": "2026-08-26T10:00:00Z", "source": "other", "event": "ERROR"},
		"bad_text":      {"time": "2026-08-26T10:00:00Z", "source": "api", "event": "SEND"},
	} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, e.Matches(rec(fields), snap))
		})
	}
}

func TestMatchesNoFilters(t *testing.T) {
	e := newTestEvaluator()
	snap := NewState().Snapshot()

	assert.True(t, e.Matches(rec(map[string]string{"event": "anything"}), snap))
	assert.False(t, snap.Active())
}
