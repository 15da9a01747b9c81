package workload

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/pavanmanishd/rawmem/hostmem"
)

func smallConfig(allocator string) Config {
	cfg := DefaultConfig()
	cfg.Allocator = allocator
	cfg.Iterations = 6
	cfg.Samples = 100
	cfg.GridWidth = 7
	cfg.GridHeight = 5
	cfg.Rows = 9
	cfg.MaxRowWidth = 12
	cfg.ScopeEvery = 2
	cfg.LargeBlockThreshold = 256
	return cfg
}

func TestRun(t *testing.T) {
	for _, name := range []string{AllocatorHeap, AllocatorNative} {
		t.Run(name, func(t *testing.T) {
			cfg := smallConfig(name)
			a, closeFn, err := cfg.NewAllocator()
			require.NoError(t, err)
			defer func() {
				require.NoError(t, closeFn())
			}()

			var seen []int
			rep, err := Run(cfg, a, zaptest.NewLogger(t), func(i int, m hostmem.Metrics) {
				seen = append(seen, i)
				assert.Zero(t, m.LiveBlocks, "iteration %d leaves nothing live", i)
			})
			require.NoError(t, err)

			assert.Equal(t, cfg.Iterations, rep.Iterations)
			assert.Equal(t, 3, rep.Scopes)
			assert.Zero(t, rep.Leaked)
			assert.Zero(t, rep.Metrics.LiveBlocks)
			assert.Positive(t, rep.Metrics.PeakBytes)
			assert.Positive(t, rep.Elements)
			assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, seen)
		})
	}
}

func TestRunIsDeterministic(t *testing.T) {
	cfg := smallConfig(AllocatorHeap)

	first, err := Run(cfg, hostmem.NewHeap(), nil)
	require.NoError(t, err)
	second, err := Run(cfg, hostmem.NewHeap(), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, first.Elements, second.Elements)
	assert.Equal(t, first.Checksum, second.Checksum)

	cfg.Seed++
	third, err := Run(cfg, hostmem.NewHeap(), nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.Checksum, third.Checksum)
}

func TestRunOutOfMemory(t *testing.T) {
	cfg := smallConfig(AllocatorHeap)
	a := hostmem.NewHeap(hostmem.WithLimit(512))

	rep, err := Run(cfg, a, nil)
	assert.True(t, errors.Is(err, hostmem.ErrOutOfMemory), "got %v", err)
	assert.Zero(t, rep.Iterations)
	assert.Zero(t, a.Metrics().LiveBlocks, "failed runs are swept")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig(AllocatorHeap)
	cfg.Iterations = 0
	_, err := Run(cfg, hostmem.NewHeap(), nil)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
