package rawmem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/rawmem/hostmem"
)

type testAllocator interface {
	hostmem.Allocator
	hostmem.MetricsReporter
}

// forEachAllocator runs fn against every allocator implementation.
func forEachAllocator(t *testing.T, fn func(t *testing.T, a testAllocator)) {
	t.Run("heap", func(t *testing.T) {
		fn(t, hostmem.NewHeap())
	})
	t.Run("native", func(t *testing.T) {
		n := hostmem.NewNative()
		t.Cleanup(func() {
			require.NoError(t, n.Close())
		})
		fn(t, n)
	})
}

// requireNoLeaks asserts every block taken from a has been returned.
func requireNoLeaks(t *testing.T, a testAllocator) {
	t.Helper()
	m := a.Metrics()
	require.Zero(t, m.LiveBlocks, "live blocks")
	require.Zero(t, m.BytesInUse, "bytes in use")
}

type vec3 struct {
	X, Y, Z float32
}
