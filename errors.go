package logsift

import (
	"errors"
	"fmt"

	"github.com/hupe1980/logsift/engine"
	"github.com/hupe1980/logsift/valueindex"
)

var (
	// ErrClosed is returned when an operation is attempted after Close.
	ErrClosed = errors.New("logsift: closed")

	// ErrTooManyValues is returned by DistinctValues when a field's distinct
	// count exceeds the configured cap; callers must degrade to text
	// filtering.
	ErrTooManyValues = errors.New("logsift: too many distinct values")
)

// ErrUnknownField indicates a filter operation on a field key outside the
// configured field set.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrUnknownField struct {
	Field string
	cause error
}

func (e *ErrUnknownField) Error() string {
	return fmt.Sprintf("unknown field: %q", e.Field)
}

func (e *ErrUnknownField) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, engine.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	if errors.Is(err, valueindex.ErrTooManyValues) {
		return fmt.Errorf("%w: %w", ErrTooManyValues, err)
	}
	return err
}
