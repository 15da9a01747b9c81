package tracker

import (
	"unsafe"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/rawmem/hostmem"
	"github.com/pavanmanishd/rawmem/internal/bounds"
)

// Alloc returns a pointer to a T initialized to v, allocated from a. Pass a
// Tracker or Registry to have the block tracked.
func Alloc[T any](a hostmem.Allocator, v T, class hostmem.Lifetime) (*T, error) {
	l, err := hostmem.LayoutOf[T]()
	if err != nil {
		return nil, err
	}
	p, err := a.Allocate(l.Size, l.Align, class)
	if err != nil {
		return nil, err
	}
	ptr := (*T)(p)
	*ptr = v
	return ptr, nil
}

// AllocN allocates n zeroed elements of T. Returns nil if n == 0.
func AllocN[T any](a hostmem.Allocator, n int, class hostmem.Lifetime) ([]T, error) {
	return AllocFilled[T](a, n, 0, class)
}

// AllocFilled allocates n elements of T with every byte set to b.
// Returns nil if n == 0.
func AllocFilled[T any](a hostmem.Allocator, n int, b byte, class hostmem.Lifetime) ([]T, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrNegativeCount, "%d elements", n)
	}
	l, err := hostmem.LayoutOf[T]()
	if err != nil {
		return nil, err
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
		return nil, err
	}
	a.MemSet(p, b, size)
	return unsafe.Slice((*T)(p), n), nil
}

// Free releases a block returned by Alloc.
func Free[T any](a hostmem.Allocator, p *T, class hostmem.Lifetime) {
	a.Free(unsafe.Pointer(p), class)
}

// FreeSlice releases a block returned by AllocN or AllocFilled.
func FreeSlice[T any](a hostmem.Allocator, s []T, class hostmem.Lifetime) {
	a.Free(unsafe.Pointer(unsafe.SliceData(s)), class)
}
