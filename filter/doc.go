// Package filter holds the filter state owned by the engine and the pure
// predicate that decides record inclusion.
//
// Evaluation order is by ascending cost: time constraints first (cheapest
// rejection), then selection-set membership, then text pattern matching.
package filter
