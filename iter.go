package rawmem

import (
	"iter"
	"unsafe"
)

// Enumerator walks a contiguous run of elements. It starts before the first
// element; Next advances and reports whether an element is available.
//
//	e := buf.Iter()
//	for e.Next() {
//		use(e.Value())
//	}
//
// The owner must not be released or reallocated while enumerating.
type Enumerator[T any] struct {
	base unsafe.Pointer
	n    int
	i    int
}

func newEnumerator[T any](base unsafe.Pointer, n int) *Enumerator[T] {
	return &Enumerator[T]{base: base, n: n, i: -1}
}

// Next advances to the next element.
func (e *Enumerator[T]) Next() bool {
	if e.i+1 >= e.n {
		e.i = e.n
		return false
	}
	e.i++
	return true
}

// Value returns the current element. It must only be called after Next
// returned true.
func (e *Enumerator[T]) Value() T { return *elem[T](e.base, e.i) }

// Index returns the position of the current element.
func (e *Enumerator[T]) Index() int { return e.i }

// Len returns the number of elements the enumerator covers.
func (e *Enumerator[T]) Len() int { return e.n }

// Reset rewinds the enumerator to before the first element.
func (e *Enumerator[T]) Reset() { e.i = -1 }

// Cell is the position of an element in a two-dimensional container.
type Cell struct {
	X, Y int
}

// GridEnumerator walks a Grid in row-major order, reporting the column and
// row of each element.
type GridEnumerator[T any] struct {
	Enumerator[T]
	width int
}

// X returns the column of the current element.
func (e *GridEnumerator[T]) X() int { return e.i % e.width }

// Y returns the row of the current element.
func (e *GridEnumerator[T]) Y() int { return e.i / e.width }

// Cell returns the position of the current element.
func (e *GridEnumerator[T]) Cell() Cell { return Cell{X: e.X(), Y: e.Y()} }

// JaggedEnumerator walks a Jagged row by row, skipping empty rows.
type JaggedEnumerator[T any] struct {
	j   *Jagged[T]
	row int
	col int
}

// Next advances to the next element.
func (e *JaggedEnumerator[T]) Next() bool {
	for e.row < e.j.RowCount() {
		if e.col+1 < e.j.RowLen(e.row) {
			e.col++
			return true
		}
		e.row++
		e.col = -1
	}
	return false
}

// Value returns the current element.
func (e *JaggedEnumerator[T]) Value() T { return e.j.At(e.col, e.row) }

// X returns the column of the current element within its row.
func (e *JaggedEnumerator[T]) X() int { return e.col }

// Y returns the row of the current element.
func (e *JaggedEnumerator[T]) Y() int { return e.row }

// Cell returns the position of the current element.
func (e *JaggedEnumerator[T]) Cell() Cell { return Cell{X: e.col, Y: e.row} }

// Reset rewinds the enumerator to before the first element.
func (e *JaggedEnumerator[T]) Reset() {
	e.row = 0
	e.col = -1
}

type valueEnumerator[T any] interface {
	Next() bool
	Value() T
}

type cellEnumerator[T any] interface {
	valueEnumerator[T]
	Cell() Cell
}

// seqOf adapts an enumerator constructor to a range-over-func sequence.
// Each range loop gets a fresh enumerator.
func seqOf[T any, E valueEnumerator[T]](start func() E) iter.Seq[T] {
	return func(yield func(T) bool) {
		e := start()
		for e.Next() {
			if !yield(e.Value()) {
				return
			}
		}
	}
}

func cellSeqOf[T any, E cellEnumerator[T]](start func() E) iter.Seq2[Cell, T] {
	return func(yield func(Cell, T) bool) {
		e := start()
		for e.Next() {
			if !yield(e.Cell(), e.Value()) {
				return
			}
		}
	}
}
