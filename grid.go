package rawmem

import (
	"iter"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/rawmem/hostmem"
	"github.com/pavanmanishd/rawmem/internal/bounds"
)

// Grid is a rectangular width x height array of T stored row-major in one
// block: element (x, y) lives at index y*width + x. Not goroutine-safe.
type Grid[T any] struct {
	alloc  hostmem.Allocator
	class  hostmem.Lifetime
	ptr    unsafe.Pointer
	width  int
	height int
}

// NewGrid allocates a zeroed width x height grid.
func NewGrid[T any](a hostmem.Allocator, width, height int, opts ...Option) (*Grid[T], error) {
	if width < 0 || height < 0 {
		return nil, errors.Wrapf(ErrNegativeLength, "grid %dx%d", width, height)
	}
	n, ok := bounds.Mul(width, height)
	if !ok {
		return nil, errors.Wrapf(bounds.ErrOverflow, "grid %dx%d", width, height)
	}
	o := buildOptions(opts)
	p, err := allocElems[T](a, n, o.class, true)
	if err != nil {
		return nil, err
	}
	return &Grid[T]{alloc: a, class: o.class, ptr: p, width: width, height: height}, nil
}

// NewGridFromRows builds a grid with one row per entry of rows. Every row
// must have the same length; otherwise ErrRowMismatch is returned before
// anything is allocated.
func NewGridFromRows[T any](a hostmem.Allocator, rows [][]T, opts ...Option) (*Grid[T], error) {
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	for y, r := range rows {
		if len(r) != width {
			return nil, errors.Wrapf(ErrRowMismatch, "row %d has %d elements, want %d", y, len(r), width)
		}
	}
	g, err := NewGrid[T](a, width, len(rows), opts...)
	if err != nil {
		return nil, err
	}
	for y, r := range rows {
		g.Row(y).CopyFrom(r)
	}
	return g, nil
}

// Clone returns an independent copy with the same allocator and lifetime.
func (g *Grid[T]) Clone() (*Grid[T], error) {
	p, err := allocElems[T](g.alloc, g.Len(), g.class, false)
	if err != nil {
		return nil, err
	}
	if p != nil {
		g.alloc.MemCopy(p, g.ptr, g.Len()*sizeOf[T]())
	}
	return &Grid[T]{alloc: g.alloc, class: g.class, ptr: p, width: g.width, height: g.height}, nil
}

// Width returns the number of columns.
func (g *Grid[T]) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid[T]) Height() int { return g.height }

// Len returns Width * Height.
func (g *Grid[T]) Len() int { return g.width * g.height }

// Pointer returns the address of the block, or nil when empty.
func (g *Grid[T]) Pointer() unsafe.Pointer { return g.ptr }

// Row returns a view over row y. The row index is not checked.
func (g *Grid[T]) Row(y int) View[T] {
	return g.View().Split(y*g.width, g.width)
}

// At returns the element at column x of row y. Indices are not checked.
func (g *Grid[T]) At(x, y int) T { return *g.Ptr(x, y) }

// Set stores v at column x of row y. Indices are not checked.
func (g *Grid[T]) Set(x, y int, v T) { *g.Ptr(x, y) = v }

// Ptr returns a pointer to the element at (x, y). Indices are not checked.
func (g *Grid[T]) Ptr(x, y int) *T { return elem[T](g.ptr, y*g.width+x) }

// Fill sets every byte of the block to b.
func (g *Grid[T]) Fill(b byte) {
	if g.ptr != nil {
		g.alloc.MemSet(g.ptr, b, g.Len()*sizeOf[T]())
	}
}

// View returns a flat row-major view of every element.
func (g *Grid[T]) View() View[T] { return viewOf[T](g.ptr, g.Len()) }

// ToSlice copies the elements, row-major, into a new Go slice.
func (g *Grid[T]) ToSlice() []T { return g.View().ToSlice() }

// ToRows copies the grid into a slice of rows.
func (g *Grid[T]) ToRows() [][]T {
	out := make([][]T, g.height)
	for y := range out {
		out[y] = g.Row(y).ToSlice()
	}
	return out
}

// Release frees the block and resets the grid to 0x0. It is idempotent.
func (g *Grid[T]) Release() {
	if g.ptr != nil {
		g.alloc.Free(g.ptr, g.class)
	}
	g.ptr = nil
	g.width = 0
	g.height = 0
}

// Iter returns a row-major enumerator that also reports positions.
func (g *Grid[T]) Iter() *GridEnumerator[T] {
	return &GridEnumerator[T]{
		Enumerator: Enumerator[T]{base: g.ptr, n: g.Len(), i: -1},
		width:      g.width,
	}
}

// All yields every element in row-major order.
func (g *Grid[T]) All() iter.Seq[T] { return seqOf[T](g.Iter) }

// Cells yields every element with its position, in row-major order.
func (g *Grid[T]) Cells() iter.Seq2[Cell, T] { return cellSeqOf[T](g.Iter) }

// Rows yields each row index with a view over the row.
func (g *Grid[T]) Rows() iter.Seq2[int, View[T]] {
	return func(yield func(int, View[T]) bool) {
		for y := 0; y < g.height; y++ {
			if !yield(y, g.Row(y)) {
				return
			}
		}
	}
}
