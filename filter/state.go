package filter

import (
	"strings"
	"time"

	"github.com/hupe1980/logsift/model"
)

// Normalize returns the canonical form of a field value for selection-set
// membership and distinct-value indexing.
func Normalize(value string) string {
	return strings.TrimSpace(value)
}

// State holds the three independent filter sub-states.
//
// State is owned by the engine's run loop and is not safe for concurrent
// mutation; the parallel evaluation path works on an immutable Snapshot.
type State struct {
	text      map[string]string
	selection map[string]map[string]struct{}
	from      *time.Time
	to        *time.Time
}

// NewState creates an empty filter state.
func NewState() *State {
	return &State{
		text:      make(map[string]string),
		selection: make(map[string]map[string]struct{}),
	}
}

// SetText sets or clears the text pattern for a field key.
//
// Keys are case-insensitive, patterns are trimmed, and an empty pattern
// removes the key. Reports whether the state changed.
func (s *State) SetText(key, pattern string) bool {
	k := model.NormalizeKey(key)
	p := strings.TrimSpace(pattern)

	if p == "" {
		if _, ok := s.text[k]; !ok {
			return false
		}
		delete(s.text, k)
		return true
	}

	if s.text[k] == p {
		return false
	}
	s.text[k] = p
	return true
}

// SetSelection replaces the selection set for a field key.
//
// A nil values slice removes the constraint entirely; an empty non-nil slice
// installs the explicit empty set, which excludes every record for that
// field. Reports whether the state changed.
func (s *State) SetSelection(key string, values []string) bool {
	k := model.NormalizeKey(key)

	if values == nil {
		return s.ClearSelection(k)
	}

	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[Normalize(v)] = struct{}{}
	}

	if old, ok := s.selection[k]; ok && setsEqual(old, set) {
		return false
	}
	s.selection[k] = set
	return true
}

// ClearSelection removes the selection constraint for a field key.
// Reports whether the state changed.
func (s *State) ClearSelection(key string) bool {
	k := model.NormalizeKey(key)
	if _, ok := s.selection[k]; !ok {
		return false
	}
	delete(s.selection, k)
	return true
}

// SetTimeRange sets the inclusive time range; either bound may be nil.
// Reports whether the state changed.
func (s *State) SetTimeRange(from, to *time.Time) bool {
	if timesEqual(s.from, from) && timesEqual(s.to, to) {
		return false
	}
	s.from = copyTime(from)
	s.to = copyTime(to)
	return true
}

// Clear removes all constraints. Reports whether the state changed.
func (s *State) Clear() bool {
	if !s.Active() {
		return false
	}
	s.text = make(map[string]string)
	s.selection = make(map[string]map[string]struct{})
	s.from = nil
	s.to = nil
	return true
}

// Active reports whether any filter is active: at least one text key, one
// selection key, or either time bound.
func (s *State) Active() bool {
	return len(s.text) > 0 || len(s.selection) > 0 || s.from != nil || s.to != nil
}

// TextPattern returns the active pattern for a key, if any.
func (s *State) TextPattern(key string) (string, bool) {
	p, ok := s.text[model.NormalizeKey(key)]
	return p, ok
}

// SelectionKeys returns the field keys with an active selection constraint.
func (s *State) SelectionKeys() []string {
	keys := make([]string, 0, len(s.selection))
	for k := range s.selection {
		keys = append(keys, k)
	}
	return keys
}

// Snapshot returns an immutable deep copy of the current state.
func (s *State) Snapshot() *Snapshot {
	snap := &Snapshot{
		Text:      make(map[string]string, len(s.text)),
		Selection: make(map[string]map[string]struct{}, len(s.selection)),
		From:      copyTime(s.from),
		To:        copyTime(s.to),
	}
	for k, v := range s.text {
		snap.Text[k] = v
	}
	for k, set := range s.selection {
		cp := make(map[string]struct{}, len(set))
		for v := range set {
			cp[v] = struct{}{}
		}
		snap.Selection[k] = cp
	}
	return snap
}

// Snapshot is an immutable copy of a State, safe to share across goroutines.
type Snapshot struct {
	Text      map[string]string
	Selection map[string]map[string]struct{}
	From      *time.Time
	To        *time.Time
}

// Active reports whether any filter is active in the snapshot.
func (s *Snapshot) Active() bool {
	return len(s.Text) > 0 || len(s.Selection) > 0 || s.From != nil || s.To != nil
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for v := range a {
		if _, ok := b[v]; !ok {
			return false
		}
	}
	return true
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}
