package rawmem

import (
	"iter"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/rawmem/hostmem"
)

// Jagged is a sequence of rows of independent lengths. Each row is its own
// block; the row addresses and widths are kept in two Growable index
// buffers that share the Jagged's allocator and lifetime.
// Not goroutine-safe.
type Jagged[T any] struct {
	alloc  hostmem.Allocator
	class  hostmem.Lifetime
	addrs  *Growable[hostmem.Addr]
	widths *Growable[int]
	total  int
}

// NewJagged returns a Jagged with no rows.
func NewJagged[T any](a hostmem.Allocator, opts ...Option) (*Jagged[T], error) {
	if _, err := hostmem.LayoutOf[T](); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	addrs, err := NewGrowable[hostmem.Addr](a, opts...)
	if err != nil {
		return nil, err
	}
	widths, err := NewGrowable[int](a, opts...)
	if err != nil {
		return nil, err
	}
	return &Jagged[T]{alloc: a, class: o.class, addrs: addrs, widths: widths}, nil
}

// PushNewRow appends a zeroed row of n elements and returns a view over it.
func (j *Jagged[T]) PushNewRow(n int) (View[T], error) {
	row, err := NewFixed[T](j.alloc, n, WithLifetime(j.class))
	if err != nil {
		return View[T]{}, err
	}
	return j.adopt(row)
}

// PushRow appends a copy of src as a new row and returns a view over it.
func (j *Jagged[T]) PushRow(src []T) (View[T], error) {
	row, err := NewFixedFromSlice[T](j.alloc, src, WithLifetime(j.class))
	if err != nil {
		return View[T]{}, err
	}
	return j.adopt(row)
}

// adopt takes ownership of row's block and records it in the index.
func (j *Jagged[T]) adopt(row *Fixed[T]) (View[T], error) {
	if err := j.addrs.Append(hostmem.AddrOf(row.Pointer())); err != nil {
		row.Release()
		return View[T]{}, errors.Wrap(err, "rawmem: record row address")
	}
	if err := j.widths.Append(row.Len()); err != nil {
		j.addrs.RemoveAt(j.addrs.Len() - 1)
		row.Release()
		return View[T]{}, errors.Wrap(err, "rawmem: record row width")
	}
	p, n := row.detach()
	j.total += n
	return viewOf[T](p, n), nil
}

// RowCount returns the number of rows.
func (j *Jagged[T]) RowCount() int { return j.addrs.Len() }

// RowLen returns the length of row y. The row index is not checked.
func (j *Jagged[T]) RowLen(y int) int { return j.widths.At(y) }

// Len returns the total number of elements across all rows.
func (j *Jagged[T]) Len() int { return j.total }

// Row returns a view over row y. The row index is not checked.
func (j *Jagged[T]) Row(y int) View[T] {
	return viewOf[T](j.addrs.At(y).Pointer(), j.widths.At(y))
}

// At returns element x of row y. Indices are not checked.
func (j *Jagged[T]) At(x, y int) T { return *j.Ptr(x, y) }

// Set stores v at element x of row y. Indices are not checked.
func (j *Jagged[T]) Set(x, y int, v T) { *j.Ptr(x, y) = v }

// Ptr returns a pointer to element x of row y. Indices are not checked.
func (j *Jagged[T]) Ptr(x, y int) *T { return elem[T](j.addrs.At(y).Pointer(), x) }

// Clone returns a deep copy: every row is copied into a new block.
func (j *Jagged[T]) Clone() (*Jagged[T], error) {
	c, err := NewJagged[T](j.alloc, WithLifetime(j.class))
	if err != nil {
		return nil, err
	}
	if err := c.addrs.Reserve(j.RowCount()); err != nil {
		c.Release()
		return nil, err
	}
	if err := c.widths.Reserve(j.RowCount()); err != nil {
		c.Release()
		return nil, err
	}
	for y := 0; y < j.RowCount(); y++ {
		if _, err := c.PushRow(j.Row(y).Slice()); err != nil {
			c.Release()
			return nil, err
		}
	}
	return c, nil
}

// Release frees every row and both index buffers. It is idempotent.
func (j *Jagged[T]) Release() {
	for y := 0; y < j.addrs.Len(); y++ {
		if p := j.addrs.At(y).Pointer(); p != nil {
			j.alloc.Free(p, j.class)
		}
	}
	j.addrs.Release()
	j.widths.Release()
	j.total = 0
}

// ToSlice copies every element, row by row, into a new Go slice.
func (j *Jagged[T]) ToSlice() []T {
	out := make([]T, 0, j.total)
	for y := 0; y < j.RowCount(); y++ {
		out = append(out, j.Row(y).Slice()...)
	}
	return out
}

// ToRows copies the rows into a slice of slices.
func (j *Jagged[T]) ToRows() [][]T {
	out := make([][]T, j.RowCount())
	for y := range out {
		out[y] = j.Row(y).ToSlice()
	}
	return out
}

// Iter returns an enumerator over every element, row by row.
func (j *Jagged[T]) Iter() *JaggedEnumerator[T] {
	return &JaggedEnumerator[T]{j: j, col: -1}
}

// All yields every element, row by row.
func (j *Jagged[T]) All() iter.Seq[T] { return seqOf[T](j.Iter) }

// Cells yields every element with its position, row by row.
func (j *Jagged[T]) Cells() iter.Seq2[Cell, T] { return cellSeqOf[T](j.Iter) }

// Rows yields each row index with a view over the row.
func (j *Jagged[T]) Rows() iter.Seq2[int, View[T]] {
	return func(yield func(int, View[T]) bool) {
		for y := 0; y < j.RowCount(); y++ {
			if !yield(y, j.Row(y)) {
				return
			}
		}
	}
}
