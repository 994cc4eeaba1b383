package filter

import "time"

// defaultTimeFormats is the ordered list of accepted time-text layouts.
// Earlier entries win; the order is part of the engine's contract.
var defaultTimeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"15:04:05.000",
	"15:04:05",
}

// TimeParser parses record time-text against an ordered list of layouts.
type TimeParser struct {
	formats []string
}

// NewTimeParser creates a parser with the given layouts, or the default set
// when none are supplied.
func NewTimeParser(formats ...string) *TimeParser {
	if len(formats) == 0 {
		formats = defaultTimeFormats
	}
	return &TimeParser{formats: formats}
}

// Parse attempts each layout in order and returns the first success.
func (p *TimeParser) Parse(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range p.formats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
