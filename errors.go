package rawmem

import "github.com/pkg/errors"

var (
	// ErrNegativeLength indicates a negative element count or dimension.
	ErrNegativeLength = errors.New("rawmem: negative length")

	// ErrOutOfRange indicates a bounds-checked copy that does not fit the
	// destination buffer. Nothing is written.
	ErrOutOfRange = errors.New("rawmem: range out of bounds")

	// ErrRowMismatch indicates source rows of differing lengths for a
	// rectangular grid.
	ErrRowMismatch = errors.New("rawmem: rows have different lengths")

	// ErrNilSource indicates a nil source pointer with a non-zero count.
	ErrNilSource = errors.New("rawmem: nil source pointer")
)
