package rawmem

import (
	"iter"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/rawmem/hostmem"
	"github.com/pavanmanishd/rawmem/internal/bounds"
)

// Fixed is a fixed-length array of T in a single block obtained from a
// hostmem.Allocator. Element access is unchecked; only the byte copy
// operations validate their range.
//
// A Fixed owns its block until Release. Copies of the struct share the
// block, so release exactly one of them. Not goroutine-safe.
type Fixed[T any] struct {
	alloc  hostmem.Allocator
	class  hostmem.Lifetime
	ptr    unsafe.Pointer
	length int
}

// NewFixed allocates n zeroed elements.
func NewFixed[T any](a hostmem.Allocator, n int, opts ...Option) (*Fixed[T], error) {
	o := buildOptions(opts)
	p, err := allocElems[T](a, n, o.class, true)
	if err != nil {
		return nil, err
	}
	return &Fixed[T]{alloc: a, class: o.class, ptr: p, length: n}, nil
}

// NewFixedFromSlice allocates len(src) elements and copies src into them.
func NewFixedFromSlice[T any](a hostmem.Allocator, src []T, opts ...Option) (*Fixed[T], error) {
	return newFixedFrom[T](a, sliceData(src), len(src), opts)
}

// NewFixedFromPointer allocates n elements and copies them from src, which
// must address at least n readable elements.
func NewFixedFromPointer[T any](a hostmem.Allocator, src *T, n int, opts ...Option) (*Fixed[T], error) {
	if src == nil && n > 0 {
		return nil, errors.Wrapf(ErrNilSource, "%d elements", n)
	}
	return newFixedFrom[T](a, unsafe.Pointer(src), n, opts)
}

func newFixedFrom[T any](a hostmem.Allocator, src unsafe.Pointer, n int, opts []Option) (*Fixed[T], error) {
	o := buildOptions(opts)
	p, err := allocElems[T](a, n, o.class, false)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		a.MemCopy(p, src, n*sizeOf[T]())
	}
	return &Fixed[T]{alloc: a, class: o.class, ptr: p, length: n}, nil
}

// Clone returns an independent copy with the same allocator and lifetime.
func (f *Fixed[T]) Clone() (*Fixed[T], error) {
	return newFixedFrom[T](f.alloc, f.ptr, f.length, []Option{WithLifetime(f.class)})
}

// Len returns the number of elements.
func (f *Fixed[T]) Len() int { return f.length }

// SizeBytes returns Len times the element size.
func (f *Fixed[T]) SizeBytes() int { return f.length * sizeOf[T]() }

// Pointer returns the address of the block, or nil when empty or released.
func (f *Fixed[T]) Pointer() unsafe.Pointer { return f.ptr }

// Lifetime returns the lifetime class the block was allocated under.
func (f *Fixed[T]) Lifetime() hostmem.Lifetime { return f.class }

// At returns element i. Indices are not checked.
func (f *Fixed[T]) At(i int) T { return *elem[T](f.ptr, i) }

// Set stores x at index i. Indices are not checked.
func (f *Fixed[T]) Set(i int, x T) { *elem[T](f.ptr, i) = x }

// Ptr returns a pointer to element i. Indices are not checked.
func (f *Fixed[T]) Ptr(i int) *T { return elem[T](f.ptr, i) }

// Fill sets every byte of the block to b.
func (f *Fixed[T]) Fill(b byte) {
	if f.length > 0 {
		f.alloc.MemSet(f.ptr, b, f.SizeBytes())
	}
}

// View returns a view over all elements.
func (f *Fixed[T]) View() View[T] { return viewOf[T](f.ptr, f.length) }

// Split returns a view of n elements starting at off. The view aliases the
// buffer and the range is not checked.
func (f *Fixed[T]) Split(off, n int) View[T] { return f.View().Split(off, n) }

// Slice aliases the buffer as a Go slice; nil when empty.
func (f *Fixed[T]) Slice() []T { return f.View().Slice() }

// ToSlice copies the elements into a new Go slice.
func (f *Fixed[T]) ToSlice() []T { return f.View().ToSlice() }

// CopyBytesAt copies n raw bytes from src to byte offset off of the buffer.
// It returns ErrOutOfRange, writing nothing, unless off+n fits the buffer.
func (f *Fixed[T]) CopyBytesAt(off int, src unsafe.Pointer, n int) error {
	if !bounds.Within(f.SizeBytes(), off, n) {
		return errors.Wrapf(ErrOutOfRange, "%d bytes at offset %d of %d", n, off, f.SizeBytes())
	}
	if n == 0 {
		return nil
	}
	f.alloc.MemCopy(unsafe.Add(f.ptr, off), src, n)
	return nil
}

// CopyAt copies src into the buffer starting at element index off.
func (f *Fixed[T]) CopyAt(off int, src []T) error {
	size := sizeOf[T]()
	byteOff, ok := bounds.Mul(off, size)
	if !ok {
		return errors.Wrapf(ErrOutOfRange, "element offset %d", off)
	}
	return f.CopyBytesAt(byteOff, sliceData(src), len(src)*size)
}

// CopyFrom copies all of src to the start of the buffer.
func (f *Fixed[T]) CopyFrom(src *Fixed[T]) error {
	return f.CopyBytesAt(0, src.ptr, src.SizeBytes())
}

// Release frees the block. Release is idempotent; the zero Fixed is
// already released.
func (f *Fixed[T]) Release() {
	if f.ptr != nil {
		f.alloc.Free(f.ptr, f.class)
	}
	f.ptr = nil
	f.length = 0
}

// detach hands the block to the caller, leaving f empty.
func (f *Fixed[T]) detach() (unsafe.Pointer, int) {
	p, n := f.ptr, f.length
	f.ptr, f.length = nil, 0
	return p, n
}

// Iter returns an enumerator over the elements.
func (f *Fixed[T]) Iter() *Enumerator[T] { return newEnumerator[T](f.ptr, f.length) }

// All yields every element in index order.
func (f *Fixed[T]) All() iter.Seq[T] { return seqOf[T](f.Iter) }
