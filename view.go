package rawmem

import (
	"iter"
	"unsafe"
)

// View is a non-owning window over elements of some container's block.
// It never frees memory and becomes invalid when the owner is released or
// reallocated. The zero View is empty.
type View[T any] struct {
	ptr unsafe.Pointer
	n   int
}

func viewOf[T any](p unsafe.Pointer, n int) View[T] {
	if n == 0 {
		p = nil
	}
	return View[T]{ptr: p, n: n}
}

// Len returns the number of elements in the view.
func (v View[T]) Len() int { return v.n }

// IsEmpty reports whether the view has no elements.
func (v View[T]) IsEmpty() bool { return v.n == 0 }

// At returns element i. Indices are not checked.
func (v View[T]) At(i int) T { return *elem[T](v.ptr, i) }

// Set stores x at index i. Indices are not checked.
func (v View[T]) Set(i int, x T) { *elem[T](v.ptr, i) = x }

// Ptr returns a pointer to element i. Indices are not checked.
func (v View[T]) Ptr(i int) *T { return elem[T](v.ptr, i) }

// Pointer returns the address of the first element, or nil.
func (v View[T]) Pointer() unsafe.Pointer { return v.ptr }

// Split returns the sub-view of n elements starting at off.
// The range is not checked.
func (v View[T]) Split(off, n int) View[T] {
	return viewOf[T](unsafe.Add(v.ptr, off*sizeOf[T]()), n)
}

// Slice aliases the view as a Go slice. Writes through the slice are
// visible to the owner. Returns nil for an empty view.
func (v View[T]) Slice() []T {
	if v.n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(v.ptr), v.n)
}

// ToSlice copies the elements into a new Go slice.
func (v View[T]) ToSlice() []T {
	out := make([]T, v.n)
	copy(out, v.Slice())
	return out
}

// CopyFrom copies min(len(src), Len()) elements from src into the view and
// returns the number copied.
func (v View[T]) CopyFrom(src []T) int {
	return copy(v.Slice(), src)
}

// Iter returns an enumerator positioned before the first element.
func (v View[T]) Iter() *Enumerator[T] {
	return newEnumerator[T](v.ptr, v.n)
}

// All yields every element in index order.
func (v View[T]) All() iter.Seq[T] {
	return seqOf[T](v.Iter)
}
