package growlist

import "errors"

// Errors returned synchronously by GrowList operations. There is no
// transient error here: contention is masked with back-off, never
// surfaced, so every error below is a programmer error or a hard
// capacity limit.
var (
	// ErrCapacityExhausted is returned by Append when the list has
	// already grown to the maximum supported capacity and cannot take
	// another element.
	ErrCapacityExhausted = errors.New("growlist: capacity exhausted")

	// ErrOutOfBounds is returned by Get, Set, and CompareAndSwap when
	// the index is outside the currently published [0, Count()) range.
	ErrOutOfBounds = errors.New("growlist: index out of bounds")

	// ErrInvalidRange is returned by IterateRange when from is negative
	// or greater than to.
	ErrInvalidRange = errors.New("growlist: invalid range")

	// ErrUnsupported marks any mutation GrowList does not offer
	// (removal, insertion, clear). GrowList's Go API has no methods for
	// these and nothing in this module returns it; the sentinel exists
	// for callers that dispatch operations by name rather than through
	// the compiler.
	ErrUnsupported = errors.New("growlist: unsupported mutation")
)
