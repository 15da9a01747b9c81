package tracker

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/rawmem"
	"github.com/pavanmanishd/rawmem/hostmem"
)

func TestRegistrySingleFlight(t *testing.T) {
	r := NewRegistry(hostmem.NewHeap())

	h, err := r.BeginTemporaryScope()
	require.NoError(t, err)
	assert.Equal(t, Handle(0), h)

	_, err = r.BeginTemporaryScope()
	assert.True(t, errors.Is(err, ErrScopeOpen))

	open, _, ok := r.Scope()
	require.True(t, ok)
	assert.Equal(t, h, open, "failed begin changes nothing")

	require.NoError(t, r.EndTemporaryScope(h))
	_, _, ok = r.Scope()
	assert.False(t, ok)

	h2, err := r.BeginTemporaryScope()
	require.NoError(t, err)
	assert.Equal(t, Handle(1), h2, "handles are never reused")
}

func TestRegistryScopeFreesOnlyScopeBlocks(t *testing.T) {
	heap := hostmem.NewHeap()
	r := NewRegistry(heap)

	before, err := r.Allocate(32, 8, hostmem.Persistent)
	require.NoError(t, err)

	h, err := r.BeginTemporaryScope()
	require.NoError(t, err)
	_, err = r.Allocate(64, 8, hostmem.Persistent)
	require.NoError(t, err)
	_, err = r.Allocate(64, 8, hostmem.Persistent)
	require.NoError(t, err)

	global, err := heap.Allocate(16, 8, hostmem.Persistent)
	require.NoError(t, err)
	r.TrackGlobal(global, hostmem.Persistent)

	_, n, _ := r.Scope()
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, r.Len())

	require.NoError(t, r.EndTemporaryScope(h))
	m := heap.Metrics()
	assert.Equal(t, 2, m.LiveBlocks)
	assert.Equal(t, 48, m.BytesInUse)

	assert.Equal(t, 2, r.ReleaseAllGlobal())
	assert.Zero(t, heap.Metrics().LiveBlocks)
	_ = before
}

func TestRegistryEndMisuse(t *testing.T) {
	heap := hostmem.NewHeap()
	r := NewRegistry(heap)

	err := r.EndTemporaryScope(0)
	assert.True(t, errors.Is(err, ErrNoOpenScope))

	h0, err := r.BeginTemporaryScope()
	require.NoError(t, err)
	require.NoError(t, r.EndTemporaryScope(h0))

	h1, err := r.BeginTemporaryScope()
	require.NoError(t, err)
	_, err = r.Allocate(8, 8, hostmem.Persistent)
	require.NoError(t, err)

	tests := []struct {
		name   string
		handle Handle
	}{
		{"ended handle", h0},
		{"future handle", h1 + 5},
		{"negative handle", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.EndTemporaryScope(tt.handle)
			assert.True(t, errors.Is(err, ErrStaleScope), "got %v", err)
			open, n, ok := r.Scope()
			assert.True(t, ok)
			assert.Equal(t, h1, open)
			assert.Equal(t, 1, n)
			assert.Equal(t, 1, heap.Metrics().LiveBlocks)
		})
	}

	require.NoError(t, r.EndTemporaryScope(h1))
	assert.Zero(t, heap.Metrics().LiveBlocks)
}

func TestRegistryFreeUntracksEverywhere(t *testing.T) {
	heap := hostmem.NewHeap()
	r := NewRegistry(heap)

	h, err := r.BeginTemporaryScope()
	require.NoError(t, err)
	p, err := r.Allocate(8, 8, hostmem.Persistent)
	require.NoError(t, err)
	r.TrackGlobal(p, hostmem.Persistent)

	r.Free(p, hostmem.Persistent)
	_, n, _ := r.Scope()
	assert.Zero(t, n)
	assert.Zero(t, r.Len())

	require.NoError(t, r.EndTemporaryScope(h))
	assert.Equal(t, 1, heap.Metrics().Frees)
}

func TestRegistryReleaseAllGlobal(t *testing.T) {
	heap := hostmem.NewHeap()
	r := NewRegistry(heap)

	_, err := r.Allocate(8, 8, hostmem.Persistent)
	require.NoError(t, err)
	_, err = r.BeginTemporaryScope()
	require.NoError(t, err)
	_, err = r.Allocate(8, 8, hostmem.Persistent)
	require.NoError(t, err)

	assert.Equal(t, 2, r.ReleaseAllGlobal())
	assert.Zero(t, heap.Metrics().LiveBlocks)
	_, _, ok := r.Scope()
	assert.False(t, ok, "registry is idle again")
	assert.Zero(t, r.ReleaseAllGlobal())

	h, err := r.BeginTemporaryScope()
	require.NoError(t, err)
	assert.Equal(t, Handle(1), h, "handles keep counting after a global release")
}

func TestWithTemporaryScope(t *testing.T) {
	heap := hostmem.NewHeap()
	r := NewRegistry(heap)

	err := r.WithTemporaryScope(func() error {
		g, err := rawmem.NewGrid[float32](r, 16, 16)
		if err != nil {
			return err
		}
		g.Fill(1)
		_, err = rawmem.NewFixed[int32](r, 8)
		return err
	})
	require.NoError(t, err)
	assert.Zero(t, heap.Metrics().LiveBlocks)

	boom := errors.New("boom")
	err = r.WithTemporaryScope(func() error {
		_, _ = rawmem.NewFixed[int32](r, 8)
		return boom
	})
	assert.Equal(t, boom, errors.Cause(err))
	assert.Zero(t, heap.Metrics().LiveBlocks)

	_, err = r.BeginTemporaryScope()
	require.NoError(t, err)
	err = r.WithTemporaryScope(func() error { return nil })
	assert.True(t, errors.Is(err, ErrScopeOpen))
}

func TestRegistryPanicEndsScope(t *testing.T) {
	heap := hostmem.NewHeap()
	r := NewRegistry(heap)

	assert.Panics(t, func() {
		_ = r.WithTemporaryScope(func() error {
			_, _ = r.Allocate(8, 8, hostmem.Persistent)
			panic("boom")
		})
	})
	_, _, ok := r.Scope()
	assert.False(t, ok)
	assert.Zero(t, heap.Metrics().LiveBlocks)
}

func TestDefaultRegistry(t *testing.T) {
	SetDefault(nil)
	t.Cleanup(func() { SetDefault(nil) })

	d := Default()
	require.NotNil(t, d)
	assert.Same(t, d, Default())

	custom := NewRegistry(hostmem.NewHeap())
	SetDefault(custom)
	assert.Same(t, custom, Default())
}
