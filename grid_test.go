package rawmem

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/rawmem/hostmem"
	"github.com/pavanmanishd/rawmem/internal/bounds"
)

func TestNewGrid(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a testAllocator) {
		g, err := NewGrid[float64](a, 3, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, g.Width())
		assert.Equal(t, 2, g.Height())
		assert.Equal(t, 6, g.Len())
		assert.Equal(t, make([]float64, 6), g.ToSlice())

		g.Release()
		assert.Zero(t, g.Width())
		assert.Zero(t, g.Height())
		requireNoLeaks(t, a)
	})
}

func TestNewGridErrors(t *testing.T) {
	a := hostmem.NewHeap()

	_, err := NewGrid[int32](a, -1, 2)
	assert.True(t, errors.Is(err, ErrNegativeLength))

	_, err = NewGrid[int32](a, math.MaxInt, 4)
	assert.True(t, errors.Is(err, bounds.ErrOverflow))

	g, err := NewGrid[int32](a, 0, 5)
	require.NoError(t, err)
	assert.Nil(t, g.Pointer())
	assert.Zero(t, g.Len())
}

func TestNewGridFromRows(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a testAllocator) {
		g, err := NewGridFromRows(a, [][]int32{{1, 2, 3}, {4, 5, 6}})
		require.NoError(t, err)
		defer g.Release()

		assert.Equal(t, int32(6), g.At(2, 1))
		assert.Equal(t, int32(2), g.At(1, 0))
		assert.Equal(t, []int32{1, 2, 3, 4, 5, 6}, g.ToSlice())
		assert.Equal(t, [][]int32{{1, 2, 3}, {4, 5, 6}}, g.ToRows())
	})
}

func TestNewGridFromRowsMismatch(t *testing.T) {
	a := hostmem.NewHeap()
	_, err := NewGridFromRows(a, [][]int32{{1, 2, 3}, {4}})
	assert.True(t, errors.Is(err, ErrRowMismatch))
	assert.Zero(t, a.Metrics().Allocations, "nothing allocated on mismatch")

	g, err := NewGridFromRows[int32](a, nil)
	require.NoError(t, err)
	assert.Zero(t, g.Len())
}

func TestGridRowAliases(t *testing.T) {
	g, err := NewGrid[int32](hostmem.NewHeap(), 4, 3)
	require.NoError(t, err)
	defer g.Release()

	row := g.Row(1)
	assert.Equal(t, 4, row.Len())
	row.Set(2, 7)
	assert.Equal(t, int32(7), g.At(2, 1))

	g.Set(3, 2, 11)
	*g.Ptr(0, 0) = 5
	assert.Equal(t, []int32{0, 0, 0, 11}, g.Row(2).ToSlice())
	assert.Equal(t, int32(5), g.Row(0).At(0))
}

func TestGridFill(t *testing.T) {
	g, err := NewGrid[uint8](hostmem.NewHeap(), 2, 2)
	require.NoError(t, err)
	defer g.Release()

	g.Fill(3)
	assert.Equal(t, []uint8{3, 3, 3, 3}, g.ToSlice())
}

func TestGridClone(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a testAllocator) {
		g, err := NewGridFromRows(a, [][]int64{{1, 2}, {3, 4}})
		require.NoError(t, err)

		c, err := g.Clone()
		require.NoError(t, err)
		assert.Equal(t, g.Width(), c.Width())
		assert.Equal(t, g.Height(), c.Height())
		assert.Equal(t, g.ToSlice(), c.ToSlice())

		c.Set(0, 0, 42)
		assert.Equal(t, int64(1), g.At(0, 0))

		g.Release()
		c.Release()
		requireNoLeaks(t, a)
	})
}

func TestGridEnumeration(t *testing.T) {
	g, err := NewGridFromRows(hostmem.NewHeap(), [][]int32{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	defer g.Release()

	e := g.Iter()
	var cells []Cell
	var values []int32
	for e.Next() {
		cells = append(cells, Cell{e.X(), e.Y()})
		values = append(values, e.Value())
		assert.Equal(t, g.At(e.X(), e.Y()), e.Value())
	}
	assert.Equal(t, []Cell{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {1, 1}, {2, 1}}, cells)
	assert.Equal(t, []int32{1, 2, 3, 4, 5, 6}, values)

	e.Reset()
	require.True(t, e.Next())
	assert.Equal(t, Cell{0, 0}, e.Cell())

	sum := int32(0)
	for v := range g.All() {
		sum += v
	}
	assert.Equal(t, int32(21), sum)

	for c, v := range g.Cells() {
		assert.Equal(t, g.At(c.X, c.Y), v)
	}

	rows := 0
	for y, r := range g.Rows() {
		assert.Equal(t, g.Row(y).ToSlice(), r.ToSlice())
		rows++
	}
	assert.Equal(t, 2, rows)
}

func TestGridEnumerationEmpty(t *testing.T) {
	g, err := NewGrid[int32](hostmem.NewHeap(), 0, 3)
	require.NoError(t, err)

	e := g.Iter()
	assert.False(t, e.Next())
	for range g.All() {
		t.Fatal("empty grid yielded an element")
	}
}
