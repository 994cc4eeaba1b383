// Package logsift provides an embeddable filtering engine for live,
// rapidly-growing log-like datasets.
//
// Logsift keeps a bounded, ordered window of ingested records and maintains
// a filtered view over it while producers append at high rate. Producers
// never block: records flow through an unbounded ingestion buffer and are
// merged in bounded batches on a single consumer loop. Recomputes of the
// filtered view are debounced for user filter edits and throttled for
// ingestion-driven changes, with the debounce delay adapting to the observed
// ingestion rate.
//
// # Quick Start
//
//	s, _ := logsift.New(logsift.WithCapacity(50_000))
//	defer s.Close()
//
//	s.Push(model.NewRecord(map[string]string{
//	    "time":   "2026-08-26T10:15:04Z",
//	    "event":  "SEND",
//	    "source": "gateway",
//	}))
//
//	s.SetTextFilter("event", "ERR")
//	s.SetSelection("source", []string{"gateway"})
//
//	values, err := s.DistinctValues("source")
//	if errors.Is(err, logsift.ErrTooManyValues) {
//	    // too many candidates for a selection menu; fall back to text filtering
//	}
//
// # Filtering Model
//
// Three independent filter kinds combine with AND semantics:
//
//   - text patterns per field key (case-insensitive, compiled once; an
//     invalid pattern matches everything rather than hiding data)
//   - selection sets per field key (an explicit empty set excludes all
//     records; an absent key means no constraint)
//   - an optional inclusive time range (a record whose timestamp cannot be
//     resolved is excluded while a range bound is active)
//
// # Memory Model
//
// The visible collection is bounded: once capacity is exceeded the oldest
// records are evicted first. Repeated field values are interned and large
// payloads are held compressed.
package logsift
