package balloon

import "errors"

var (
	// ErrInvalidOptions is returned when Options fail validation. The
	// returned error lists every violated constraint.
	ErrInvalidOptions = errors.New("balloon: invalid options")

	// ErrAllocation is returned when the block buffer cannot be allocated.
	ErrAllocation = errors.New("balloon: buffer allocation failed")

	// ErrCompression is returned when the compression primitive fails
	// during fill, mix or extract. The hash state is discarded.
	ErrCompression = errors.New("balloon: compression failed")

	// ErrStateUnusable is returned when a hash state is used after an
	// earlier stage failed or after it was released.
	ErrStateUnusable = errors.New("balloon: hash state is unusable")

	// ErrNotFilled is returned when mix or extract run before fill.
	ErrNotFilled = errors.New("balloon: hash state has not been filled")
)

// ErrClosed is returned by a Hasher after Close.
var ErrClosed = errors.New("balloon: hasher is closed")
