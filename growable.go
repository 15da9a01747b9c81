package rawmem

import (
	"iter"
	"math"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/rawmem/hostmem"
	"github.com/pavanmanishd/rawmem/internal/bounds"
)

// Growable is an append-oriented array of T with amortized doubling growth.
// Elements [0, Len) are initialized; [Len, Cap) is reserved. Growth moves
// the contents to a new block, so views and pointers taken earlier become
// invalid. Not goroutine-safe.
type Growable[T any] struct {
	alloc    hostmem.Allocator
	class    hostmem.Lifetime
	ptr      unsafe.Pointer
	count    int
	capacity int
}

// NewGrowable returns an empty Growable. Nothing is allocated until the
// first append.
func NewGrowable[T any](a hostmem.Allocator, opts ...Option) (*Growable[T], error) {
	if _, err := hostmem.LayoutOf[T](); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &Growable[T]{alloc: a, class: o.class}, nil
}

// NewGrowableWithCapacity returns an empty Growable with room for capacity
// elements.
func NewGrowableWithCapacity[T any](a hostmem.Allocator, capacity int, opts ...Option) (*Growable[T], error) {
	g, err := NewGrowable[T](a, opts...)
	if err != nil {
		return nil, err
	}
	if err := g.Reserve(capacity); err != nil {
		return nil, err
	}
	return g, nil
}

// nextCapacity doubles c, starting from 2, until it covers need.
func nextCapacity(c, need int) (int, error) {
	for c < need {
		c = max(c, 2)
		if c > math.MaxInt/2 {
			return 0, errors.Wrapf(bounds.ErrOverflow, "capacity for %d elements", need)
		}
		c *= 2
	}
	return c, nil
}

// ensureCapacity makes room for need elements, moving the contents when the
// block grows. The previous block is returned for the caller to free once it
// has finished reading from it.
func (g *Growable[T]) ensureCapacity(need int) (unsafe.Pointer, error) {
	if need <= g.capacity {
		return nil, nil
	}
	c, err := nextCapacity(g.capacity, need)
	if err != nil {
		return nil, err
	}
	return g.moveTo(c)
}

func (g *Growable[T]) moveTo(capacity int) (unsafe.Pointer, error) {
	p, err := allocElems[T](g.alloc, capacity, g.class, false)
	if err != nil {
		return nil, err
	}
	if g.count > 0 {
		g.alloc.MemCopy(p, g.ptr, g.count*sizeOf[T]())
	}
	old := g.ptr
	g.ptr = p
	g.capacity = capacity
	return old, nil
}

func (g *Growable[T]) free(p unsafe.Pointer) {
	if p != nil {
		g.alloc.Free(p, g.class)
	}
}

// Reserve grows the capacity to at least n elements without changing Len.
// The new capacity is exactly n when growth is needed.
func (g *Growable[T]) Reserve(n int) error {
	if n < 0 {
		return errors.Wrapf(ErrNegativeLength, "reserve %d", n)
	}
	if n <= g.capacity {
		return nil
	}
	old, err := g.moveTo(n)
	if err != nil {
		return err
	}
	g.free(old)
	return nil
}

// Append adds x at the end.
func (g *Growable[T]) Append(x T) error {
	need, ok := bounds.Add(g.count, 1)
	if !ok {
		return errors.Wrap(bounds.ErrOverflow, "append")
	}
	old, err := g.ensureCapacity(need)
	if err != nil {
		return err
	}
	*elem[T](g.ptr, g.count) = x
	g.count = need
	g.free(old)
	return nil
}

// AppendPointer copies n elements from src to the end. src may point into
// this buffer.
func (g *Growable[T]) AppendPointer(src *T, n int) error {
	if n < 0 {
		return errors.Wrapf(ErrNegativeLength, "append %d", n)
	}
	if n == 0 {
		return nil
	}
	if src == nil {
		return errors.Wrapf(ErrNilSource, "append %d", n)
	}
	return g.appendRaw(unsafe.Pointer(src), n)
}

// AppendSlice copies src to the end.
func (g *Growable[T]) AppendSlice(src []T) error {
	if len(src) == 0 {
		return nil
	}
	return g.appendRaw(sliceData(src), len(src))
}

func (g *Growable[T]) appendRaw(src unsafe.Pointer, n int) error {
	need, ok := bounds.Add(g.count, n)
	if !ok {
		return errors.Wrapf(bounds.ErrOverflow, "append %d to %d", n, g.count)
	}
	old, err := g.ensureCapacity(need)
	if err != nil {
		return err
	}
	g.alloc.MemCopy(unsafe.Pointer(elem[T](g.ptr, g.count)), src, n*sizeOf[T]())
	g.count = need
	g.free(old)
	return nil
}

// Extend appends n zeroed elements and returns a view over them.
func (g *Growable[T]) Extend(n int) (View[T], error) {
	if n < 0 {
		return View[T]{}, errors.Wrapf(ErrNegativeLength, "extend %d", n)
	}
	need, ok := bounds.Add(g.count, n)
	if !ok {
		return View[T]{}, errors.Wrapf(bounds.ErrOverflow, "extend %d by %d", g.count, n)
	}
	old, err := g.ensureCapacity(need)
	if err != nil {
		return View[T]{}, err
	}
	g.free(old)
	v := viewOf[T](unsafe.Pointer(elem[T](g.ptr, g.count)), n)
	if n > 0 {
		g.alloc.MemSet(v.ptr, 0, n*sizeOf[T]())
	}
	g.count = need
	return v, nil
}

// RemoveAt removes element i, shifting later elements down by one. The
// vacated slot is zeroed. Indices are not checked.
func (g *Growable[T]) RemoveAt(i int) {
	size := sizeOf[T]()
	if tail := g.count - i - 1; tail > 0 {
		g.alloc.MemCopy(unsafe.Pointer(elem[T](g.ptr, i)), unsafe.Pointer(elem[T](g.ptr, i+1)), tail*size)
	}
	g.count--
	g.alloc.MemSet(unsafe.Pointer(elem[T](g.ptr, g.count)), 0, size)
}

// Clear sets Len to zero, keeping the capacity.
func (g *Growable[T]) Clear() { g.count = 0 }

// Clone returns an independent copy with the same capacity, allocator and
// lifetime.
func (g *Growable[T]) Clone() (*Growable[T], error) {
	c := &Growable[T]{alloc: g.alloc, class: g.class}
	if err := c.Reserve(g.capacity); err != nil {
		return nil, err
	}
	if g.count > 0 {
		c.alloc.MemCopy(c.ptr, g.ptr, g.count*sizeOf[T]())
	}
	c.count = g.count
	return c, nil
}

// Release frees the block and resets the buffer to empty. It is idempotent.
func (g *Growable[T]) Release() {
	g.free(g.ptr)
	g.ptr = nil
	g.count = 0
	g.capacity = 0
}

// Len returns the number of initialized elements.
func (g *Growable[T]) Len() int { return g.count }

// Cap returns the number of elements the block can hold.
func (g *Growable[T]) Cap() int { return g.capacity }

// Pointer returns the address of the block, or nil before the first growth.
func (g *Growable[T]) Pointer() unsafe.Pointer { return g.ptr }

// At returns element i. Indices are not checked.
func (g *Growable[T]) At(i int) T { return *elem[T](g.ptr, i) }

// Set stores x at index i. Indices are not checked.
func (g *Growable[T]) Set(i int, x T) { *elem[T](g.ptr, i) = x }

// Ptr returns a pointer to element i. Indices are not checked.
func (g *Growable[T]) Ptr(i int) *T { return elem[T](g.ptr, i) }

// View returns a view over the initialized elements.
func (g *Growable[T]) View() View[T] { return viewOf[T](g.ptr, g.count) }

// ToSlice copies the initialized elements into a new Go slice.
func (g *Growable[T]) ToSlice() []T { return g.View().ToSlice() }

// Iter returns an enumerator over the initialized elements.
func (g *Growable[T]) Iter() *Enumerator[T] { return newEnumerator[T](g.ptr, g.count) }

// All yields every initialized element in index order.
func (g *Growable[T]) All() iter.Seq[T] { return seqOf[T](g.Iter) }
