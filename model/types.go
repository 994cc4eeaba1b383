package model

import (
	"strings"
	"sync"
	"time"
)

// Record is one ingested row with named string fields, an optional pre-parsed
// timestamp, and an optional payload rendered to text on demand.
//
// A record is immutable after ingestion except for memoized derived state
// (lazily parsed timestamp, rendered payload text), each computed exactly
// once. The memoization is safe under concurrent reads because the parallel
// evaluation path may visit the same record from several goroutines.
type Record struct {
	fields  map[string]string
	ts      time.Time
	hasTS   bool
	payload *Payload

	timeOnce   sync.Once
	parsedTime time.Time
	parsedOK   bool
}

// RecordOption configures a Record at construction time.
type RecordOption func(*Record)

// WithTimestamp attaches a pre-parsed timestamp to the record.
func WithTimestamp(t time.Time) RecordOption {
	return func(r *Record) {
		r.ts = t
		r.hasTS = true
	}
}

// WithPayload attaches a raw payload to the record.
func WithPayload(b []byte) RecordOption {
	return func(r *Record) {
		r.payload = NewPayload(b)
	}
}

// NewRecord creates a record from the given fields.
//
// Field keys are normalized to lower case; values are kept as-is. The fields
// map is copied so the caller may reuse it.
func NewRecord(fields map[string]string, opts ...RecordOption) *Record {
	r := &Record{
		fields: make(map[string]string, len(fields)),
	}
	for k, v := range fields {
		r.fields[NormalizeKey(k)] = v
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

// NormalizeKey returns the canonical form of a field key.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Field returns the value of the named field.
func (r *Record) Field(key string) (string, bool) {
	v, ok := r.fields[NormalizeKey(key)]
	return v, ok
}

// FieldKeys returns the record's field keys in unspecified order.
func (r *Record) FieldKeys() []string {
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	return keys
}

// ParsedTimestamp returns the pre-parsed timestamp, if one was supplied at
// ingestion.
func (r *Record) ParsedTimestamp() (time.Time, bool) {
	return r.ts, r.hasTS
}

// MemoizedTime resolves a timestamp from the record's time-text using parse,
// computing the result exactly once per record.
//
// The pre-parsed timestamp, when present, always wins; the text parse is only
// attempted as a fallback.
func (r *Record) MemoizedTime(timeText string, parse func(string) (time.Time, bool)) (time.Time, bool) {
	if r.hasTS {
		return r.ts, true
	}
	r.timeOnce.Do(func() {
		r.parsedTime, r.parsedOK = parse(timeText)
	})
	return r.parsedTime, r.parsedOK
}

// Payload returns the record's payload, or nil if none was attached.
func (r *Record) Payload() *Payload {
	return r.payload
}

// PayloadText renders the payload to text, or returns "" when the record has
// no payload.
func (r *Record) PayloadText() string {
	if r.payload == nil {
		return ""
	}
	return r.payload.Text()
}

// InternFields replaces every field value with its canonical instance.
//
// Called once by the batch processor before the record enters the visible
// collection.
func (r *Record) InternFields(intern func(string) string) {
	for k, v := range r.fields {
		r.fields[k] = intern(v)
	}
}
