package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateTextFilters(t *testing.T) {
	s := NewState()

	assert.True(t, s.SetText("Event", " ERR "))
	p, ok := s.TextPattern("event")
	assert.True(t, ok)
	assert.Equal(t, "ERR", p, "keys case-insensitive, values trimmed")

	// Same pattern again is a no-op.
	assert.False(t, s.SetText("EVENT", "ERR"))

	// Empty value removes the key.
	assert.True(t, s.SetText("event", "  "))
	_, ok = s.TextPattern("event")
	assert.False(t, ok)

	// Removing an absent key is a no-op.
	assert.False(t, s.SetText("event", ""))
}

func TestStateSelections(t *testing.T) {
	s := NewState()

	assert.True(t, s.SetSelection("source", []string{" gateway ", "api"}))
	assert.True(t, s.Active())

	// Identical set is a no-op.
	assert.False(t, s.SetSelection("source", []string{"api", "gateway"}))

	// Explicit empty set is a constraint, not absence.
	assert.True(t, s.SetSelection("source", []string{}))
	assert.True(t, s.Active())

	// Nil clears the key.
	assert.True(t, s.SetSelection("source", nil))
	assert.False(t, s.Active())

	assert.False(t, s.ClearSelection("source"))
}

func TestStateTimeRange(t *testing.T) {
	s := NewState()

	from := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	assert.True(t, s.SetTimeRange(&from, nil))
	assert.True(t, s.Active())

	// Same bounds are a no-op.
	fromCopy := from
	assert.False(t, s.SetTimeRange(&fromCopy, nil))

	assert.True(t, s.SetTimeRange(nil, nil))
	assert.False(t, s.Active())
}

func TestStateActiveInvariant(t *testing.T) {
	s := NewState()
	assert.False(t, s.Active())

	s.SetText("a", "x")
	assert.True(t, s.Active())
	s.SetText("a", "")
	assert.False(t, s.Active())

	s.SetSelection("b", []string{})
	assert.True(t, s.Active())
	s.ClearSelection("b")
	assert.False(t, s.Active())

	to := time.Now()
	s.SetTimeRange(nil, &to)
	assert.True(t, s.Active())
}

func TestStateClearIdempotent(t *testing.T) {
	s := NewState()
	s.SetText("event", "ERR")
	s.SetSelection("source", []string{"api"})

	assert.True(t, s.Clear())
	assert.False(t, s.Active())
	assert.False(t, s.Clear(), "second clear is a no-op")
	assert.False(t, s.Active())
}

func TestStateSnapshotIsolation(t *testing.T) {
	s := NewState()
	s.SetText("event", "ERR")
	s.SetSelection("source", []string{"api"})

	snap := s.Snapshot()
	s.SetText("event", "WARN")
	s.SetSelection("source", []string{"gateway"})

	assert.Equal(t, "ERR", snap.Text["event"])
	_, ok := snap.Selection["source"]["api"]
	assert.True(t, ok)
	assert.True(t, snap.Active())
}
