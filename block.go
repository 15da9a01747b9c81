package rawmem

import (
	"unsafe"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/rawmem/hostmem"
	"github.com/pavanmanishd/rawmem/internal/bounds"
)

// sizeOf returns the element size of T in bytes.
func sizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// elem returns a pointer to element i of the array starting at base.
// No bounds are checked.
func elem[T any](base unsafe.Pointer, i int) *T {
	var zero T
	return (*T)(unsafe.Add(base, uintptr(i)*unsafe.Sizeof(zero)))
}

// allocElems allocates room for n elements of T. A zero n allocates nothing
// and returns nil.
func allocElems[T any](a hostmem.Allocator, n int, class hostmem.Lifetime, zero bool) (unsafe.Pointer, error) {
	l, err := hostmem.LayoutOf[T]()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.Wrapf(ErrNegativeLength, "%d elements", n)
	}
	if n == 0 {
		return nil, nil
	}
	size, err := bounds.Bytes(n, l.Size)
	if err != nil {
		return nil, err
	}
	p, err := a.Allocate(size, l.Align, class)
	if err != nil {
		return nil, errors.Wrapf(err, "rawmem: allocate %d elements of %d bytes", n, l.Size)
	}
	if zero {
		a.MemSet(p, 0, size)
	}
	return p, nil
}

// sliceData returns the address of the first element of s, or nil.
func sliceData[T any](s []T) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(s))
}
