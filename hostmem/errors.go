package hostmem

import "github.com/pkg/errors"

var (
	// ErrInvalidSize indicates a non-positive or overflowing request size.
	ErrInvalidSize = errors.New("hostmem: invalid allocation size")

	// ErrInvalidAlignment indicates an alignment that is not a power of two
	// or exceeds MaxAlignment.
	ErrInvalidAlignment = errors.New("hostmem: invalid alignment")

	// ErrOutOfMemory indicates the allocator could not satisfy the request.
	ErrOutOfMemory = errors.New("hostmem: out of memory")

	// ErrPointerType indicates an element type that holds Go pointers and
	// therefore cannot live in raw memory.
	ErrPointerType = errors.New("hostmem: element type contains pointers")

	// ErrZeroSize indicates a zero-size element type.
	ErrZeroSize = errors.New("hostmem: element type has zero size")

	// ErrClosed indicates use of an allocator after Close.
	ErrClosed = errors.New("hostmem: allocator closed")
)
