package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeParserFormats(t *testing.T) {
	p := NewTimeParser()

	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"rfc3339_nano", "2026-08-26T10:15:04.123456789Z", true},
		{"rfc3339", "2026-08-26T10:15:04Z", true},
		{"space_millis", "2026-08-26 10:15:04.123", true},
		{"space_seconds", "2026-08-26 10:15:04", true},
		{"clock_millis", "10:15:04.123", true},
		{"clock", "10:15:04", true},
		{"garbage", "yesterday-ish", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := p.Parse(tt.input)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestTimeParserOrderWins(t *testing.T) {
	// Two layouts that both accept the input; the first one listed decides
	// the interpretation.
	p := NewTimeParser("2006-01-02", "2006-02-01")

	ts, ok := p.Parse("2026-03-04")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), ts)
}

func TestTimeParserCustomFormats(t *testing.T) {
	p := NewTimeParser("02/01/2006 15:04")

	_, ok := p.Parse("26/08/2026 10:15")
	assert.True(t, ok)

	_, ok = p.Parse("2026-08-26T10:15:04Z")
	assert.False(t, ok, "default layouts are replaced, not extended")
}
