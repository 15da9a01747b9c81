// Package bounds provides overflow-safe size arithmetic for allocation paths.
package bounds

import (
	"math"

	"github.com/pkg/errors"
)

// ErrOverflow reports that a size computation does not fit in an int.
var ErrOverflow = errors.New("bounds: size overflow")

// Add adds a and b, returning ok = false when the result would overflow int.
func Add(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// Mul multiplies two non-negative ints, returning ok = false on overflow
// or when either operand is negative.
func Mul(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// Bytes returns count*elemSize, or ErrOverflow.
func Bytes(count, elemSize int) (int, error) {
	n, ok := Mul(count, elemSize)
	if !ok {
		return 0, errors.Wrapf(ErrOverflow, "count=%d * elemSize=%d", count, elemSize)
	}
	return n, nil
}

// Within reports whether [off, off+n) lies inside [0, limit).
func Within(limit, off, n int) bool {
	if off < 0 || n < 0 || off > limit {
		return false
	}
	end, ok := Add(off, n)
	return ok && end <= limit
}

// AlignUp rounds v up to a multiple of align, which must be a power of two.
func AlignUp(v, align uintptr) uintptr {
	mask := align - 1
	return (v + mask) &^ mask
}

// IsPowerOfTwo reports whether v is a positive power of two.
func IsPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}
