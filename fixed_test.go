package rawmem

import (
	"testing"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/rawmem/hostmem"
)

func TestNewFixed(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a testAllocator) {
		f, err := NewFixed[int64](a, 8)
		require.NoError(t, err)
		assert.Equal(t, 8, f.Len())
		assert.Equal(t, 64, f.SizeBytes())
		assert.Equal(t, make([]int64, 8), f.ToSlice(), "new buffers are zeroed")
		assert.Zero(t, uintptr(f.Pointer())%unsafe.Alignof(int64(0)))

		f.Release()
		requireNoLeaks(t, a)
	})
}

func TestNewFixedEmpty(t *testing.T) {
	a := hostmem.NewHeap()
	f, err := NewFixed[int32](a, 0)
	require.NoError(t, err)
	assert.Nil(t, f.Pointer())
	assert.Zero(t, f.Len())
	assert.Nil(t, f.Slice())
	assert.Zero(t, a.Metrics().Allocations)
	f.Release()
}

func TestNewFixedErrors(t *testing.T) {
	a := hostmem.NewHeap()

	_, err := NewFixed[int32](a, -1)
	assert.True(t, errors.Is(err, ErrNegativeLength))

	_, err = NewFixed[*int](a, 4)
	assert.True(t, errors.Is(err, hostmem.ErrPointerType))

	_, err = NewFixed[struct{}](a, 4)
	assert.True(t, errors.Is(err, hostmem.ErrZeroSize))

	_, err = NewFixedFromPointer[int32](a, nil, 3)
	assert.True(t, errors.Is(err, ErrNilSource))

	limited := hostmem.NewHeap(hostmem.WithLimit(16))
	_, err = NewFixed[int64](limited, 3)
	assert.True(t, errors.Is(err, hostmem.ErrOutOfMemory))
}

func TestFixedFromSliceAndPointer(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a testAllocator) {
		src := []vec3{{1, 2, 3}, {4, 5, 6}}
		f, err := NewFixedFromSlice(a, src)
		require.NoError(t, err)
		defer f.Release()
		assert.Equal(t, src, f.ToSlice())

		src[0].X = 100
		assert.Equal(t, float32(1), f.At(0).X, "source is copied")

		p, err := NewFixedFromPointer(a, f.Ptr(1), 1)
		require.NoError(t, err)
		defer p.Release()
		assert.Equal(t, []vec3{{4, 5, 6}}, p.ToSlice())
	})
}

func TestFixedAccess(t *testing.T) {
	f, err := NewFixed[int32](hostmem.NewHeap(), 4)
	require.NoError(t, err)
	defer f.Release()

	for i := 0; i < f.Len(); i++ {
		f.Set(i, int32(i*i))
	}
	*f.Ptr(3) += 1
	assert.Equal(t, []int32{0, 1, 4, 10}, f.ToSlice())

	var got []int32
	for v := range f.All() {
		got = append(got, v)
	}
	assert.Equal(t, f.ToSlice(), got)
}

func TestFixedSplitAliases(t *testing.T) {
	f, err := NewFixedFromSlice(hostmem.NewHeap(), []int32{10, 20, 30, 40})
	require.NoError(t, err)
	defer f.Release()

	v := f.Split(1, 2)
	assert.Equal(t, []int32{20, 30}, v.ToSlice())

	v.Set(1, 33)
	assert.Equal(t, int32(33), f.At(2))

	assert.True(t, f.Split(4, 0).IsEmpty())
}

func TestFixedFill(t *testing.T) {
	f, err := NewFixed[uint16](hostmem.NewHeap(), 3)
	require.NoError(t, err)
	defer f.Release()

	f.Fill(0xff)
	assert.Equal(t, []uint16{0xffff, 0xffff, 0xffff}, f.ToSlice())
	f.Fill(0)
	assert.Equal(t, []uint16{0, 0, 0}, f.ToSlice())
}

func TestFixedCopyBytesAt(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a testAllocator) {
		f, err := NewFixed[int32](a, 4)
		require.NoError(t, err)
		defer f.Release()

		src := []int32{7, 8}
		require.NoError(t, f.CopyBytesAt(4, unsafe.Pointer(&src[0]), 8))
		assert.Equal(t, []int32{0, 7, 8, 0}, f.ToSlice())

		// exactly fills the tail
		require.NoError(t, f.CopyBytesAt(8, unsafe.Pointer(&src[0]), 8))
		assert.Equal(t, []int32{0, 7, 7, 8}, f.ToSlice())

		tests := []struct {
			name string
			off  int
			n    int
		}{
			{"past end", 12, 8},
			{"negative offset", -4, 4},
			{"negative count", 0, -1},
			{"offset beyond buffer", 20, 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				before := f.ToSlice()
				err := f.CopyBytesAt(tt.off, unsafe.Pointer(&src[0]), tt.n)
				assert.True(t, errors.Is(err, ErrOutOfRange), "got %v", err)
				assert.Equal(t, before, f.ToSlice(), "nothing written")
			})
		}

		require.NoError(t, f.CopyBytesAt(16, nil, 0))
	})
}

func TestFixedCopyAtAndCopyFrom(t *testing.T) {
	a := hostmem.NewHeap()
	f, err := NewFixed[int32](a, 4)
	require.NoError(t, err)
	defer f.Release()

	require.NoError(t, f.CopyAt(2, []int32{5, 6}))
	assert.Equal(t, []int32{0, 0, 5, 6}, f.ToSlice())
	assert.True(t, errors.Is(f.CopyAt(3, []int32{1, 2}), ErrOutOfRange))

	small, err := NewFixedFromSlice(a, []int32{1, 2})
	require.NoError(t, err)
	defer small.Release()
	require.NoError(t, f.CopyFrom(small))
	assert.Equal(t, []int32{1, 2, 5, 6}, f.ToSlice())

	assert.True(t, errors.Is(small.CopyFrom(f), ErrOutOfRange))
}

func TestFixedClone(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a testAllocator) {
		f, err := NewFixedFromSlice(a, []int64{1, 2, 3}, WithLifetime(hostmem.Persistent))
		require.NoError(t, err)

		c, err := f.Clone()
		require.NoError(t, err)
		assert.NotEqual(t, f.Pointer(), c.Pointer())
		assert.Equal(t, f.ToSlice(), c.ToSlice())
		assert.Equal(t, f.Lifetime(), c.Lifetime())

		c.Set(0, 99)
		assert.Equal(t, int64(1), f.At(0))

		f.Release()
		c.Release()
		requireNoLeaks(t, a)
	})
}

func TestFixedReleaseIdempotent(t *testing.T) {
	a := hostmem.NewHeap()
	f, err := NewFixed[int32](a, 4)
	require.NoError(t, err)

	f.Release()
	assert.Nil(t, f.Pointer())
	assert.Zero(t, f.Len())
	f.Release()
	assert.Equal(t, 1, a.Metrics().Frees)

	var zero Fixed[int32]
	zero.Release()
}

func TestFixedScratchLifetime(t *testing.T) {
	forEachAllocator(t, func(t *testing.T, a testAllocator) {
		f, err := NewFixed[int32](a, 16, WithLifetime(hostmem.Scratch))
		require.NoError(t, err)
		assert.Equal(t, hostmem.Scratch, f.Lifetime())
		assert.Equal(t, 64, a.Metrics().ScratchBytes)

		a.(hostmem.ScratchReclaimer).ReclaimScratch()
		requireNoLeaks(t, a)
	})
}
