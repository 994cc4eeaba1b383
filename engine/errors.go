package engine

import "errors"

// ErrClosed is returned when an operation is attempted on a closed engine.
var ErrClosed = errors.New("engine: closed")
