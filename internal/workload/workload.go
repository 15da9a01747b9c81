// Package workload drives every container and the tracker through a
// deterministic, self-checking stress run.
package workload

import (
	"iter"
	"math"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pavanmanishd/rawmem"
	"github.com/pavanmanishd/rawmem/hostmem"
	"github.com/pavanmanishd/rawmem/tracker"
)

// ErrChecksum reports data read back from a container that differs from
// what was written.
var ErrChecksum = errors.New("workload: checksum mismatch")

// Report summarizes a run.
type Report struct {
	Iterations int
	Scopes     int
	Elements   int
	Checksum   float64
	Leaked     int // blocks still tracked at the end and freed by the final sweep
	Duration   time.Duration
	Metrics    hostmem.Metrics
}

// Observer is called after every iteration with the allocator metrics.
type Observer func(iteration int, m hostmem.Metrics)

// Run executes cfg against a. Every block is allocated through a
// tracker.Registry over a, so anything left behind is swept at the end and
// counted in Report.Leaked.
func Run(cfg Config, a hostmem.Allocator, log *zap.Logger, observers ...Observer) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	reg := tracker.NewRegistry(a)
	start := time.Now()
	var rep Report

	for i := 0; i < cfg.Iterations; i++ {
		it := &iteration{
			cfg: cfg,
			reg: reg,
			rng: rand.New(rand.NewPCG(cfg.Seed, uint64(i))),
		}
		if err := it.run(); err != nil {
			rep.Leaked = reg.ReleaseAllGlobal()
			return rep, errors.Wrapf(err, "iteration %d", i)
		}
		if cfg.ScopeEvery > 0 && i%cfg.ScopeEvery == 0 {
			if err := reg.WithTemporaryScope(it.scratch); err != nil {
				rep.Leaked = reg.ReleaseAllGlobal()
				return rep, errors.Wrapf(err, "iteration %d scratch", i)
			}
			reg.ReclaimScratch()
			rep.Scopes++
		}

		rep.Iterations++
		rep.Elements += it.elements
		rep.Checksum += it.checksum

		m := reg.Metrics()
		for _, o := range observers {
			o(i, m)
		}
		log.Debug("iteration complete",
			zap.Int("iteration", i),
			zap.Int("elements", it.elements),
			zap.Int("bytesInUse", m.BytesInUse),
			zap.Int("liveBlocks", m.LiveBlocks))
	}

	rep.Leaked = reg.ReleaseAllGlobal()
	rep.Metrics = reg.Metrics()
	rep.Duration = time.Since(start)
	if rep.Leaked > 0 {
		log.Warn("blocks left tracked after run", zap.Int("blocks", rep.Leaked))
	}
	log.Info("workload complete",
		zap.Int("iterations", rep.Iterations),
		zap.Int("scopes", rep.Scopes),
		zap.Int("elements", rep.Elements),
		zap.Int("peakBytes", rep.Metrics.PeakBytes),
		zap.Duration("duration", rep.Duration))
	return rep, nil
}

type iteration struct {
	cfg      Config
	reg      *tracker.Registry
	rng      *rand.Rand
	elements int
	checksum float64
}

func (it *iteration) run() error {
	if err := it.growable(); err != nil {
		return errors.Wrap(err, "growable")
	}
	if err := it.grid(); err != nil {
		return errors.Wrap(err, "grid")
	}
	if err := it.jagged(); err != nil {
		return errors.Wrap(err, "jagged")
	}
	return nil
}

// growable appends samples, removes every eighth from the back, and checks
// a clone against the expected sum.
func (it *iteration) growable() error {
	g, err := rawmem.NewGrowable[float64](it.reg)
	if err != nil {
		return err
	}
	defer g.Release()

	want := 0.0
	for j := 0; j < it.cfg.Samples; j++ {
		v := it.rng.Float64()
		want += v
		if err := g.Append(v); err != nil {
			return err
		}
	}
	for j := g.Len() - 1; j >= 0; j -= 8 {
		want -= g.At(j)
		g.RemoveAt(j)
	}

	c, err := g.Clone()
	if err != nil {
		return err
	}
	defer c.Release()
	if c.Cap() != g.Cap() || c.Len() != g.Len() {
		return errors.Wrapf(ErrChecksum, "clone shape %d/%d, want %d/%d", c.Len(), c.Cap(), g.Len(), g.Cap())
	}
	if got := sum(c.All()); !nearlyEqual(got, want) {
		return errors.Wrapf(ErrChecksum, "sum %g, want %g", got, want)
	}

	it.elements += g.Len()
	it.checksum += want
	return nil
}

// grid writes a position-derived value into every cell and reads it back
// through the position-aware enumerator.
func (it *iteration) grid() error {
	g, err := rawmem.NewGrid[float32](it.reg, it.cfg.GridWidth, it.cfg.GridHeight)
	if err != nil {
		return err
	}
	defer g.Release()

	cell := func(x, y int) float32 { return float32((x + y*g.Width()) % 1024) }
	for y := 0; y < g.Height(); y++ {
		row := g.Row(y)
		for x := 0; x < row.Len(); x++ {
			row.Set(x, cell(x, y))
		}
	}

	total := 0.0
	for c, v := range g.Cells() {
		if v != cell(c.X, c.Y) {
			return errors.Wrapf(ErrChecksum, "cell (%d,%d) = %g, want %g", c.X, c.Y, v, cell(c.X, c.Y))
		}
		total += float64(v)
	}

	it.elements += g.Len()
	it.checksum += total
	return nil
}

// jagged builds rows of random widths, deep-clones them, releases the
// original and checks the clone.
func (it *iteration) jagged() error {
	j, err := rawmem.NewJagged[int32](it.reg)
	if err != nil {
		return err
	}
	defer j.Release()

	var want int64
	for y := 0; y < it.cfg.Rows; y++ {
		row, err := j.PushNewRow(it.rng.IntN(it.cfg.MaxRowWidth + 1))
		if err != nil {
			return err
		}
		for x := 0; x < row.Len(); x++ {
			v := int32(x * (y + 1))
			row.Set(x, v)
			want += int64(v)
		}
	}

	c, err := j.Clone()
	if err != nil {
		return err
	}
	defer c.Release()
	j.Release()

	var got int64
	n := 0
	for v := range c.All() {
		got += int64(v)
		n++
	}
	if got != want || n != c.Len() {
		return errors.Wrapf(ErrChecksum, "jagged sum %d over %d, want %d over %d", got, n, want, c.Len())
	}

	it.elements += n
	it.checksum += float64(want)
	return nil
}

// scratch allocates scratch buffers inside a temporary scope and leaves
// them for the scope to free.
func (it *iteration) scratch() error {
	src := make([]float64, it.cfg.Samples)
	for i := range src {
		src[i] = float64(i)
	}

	f, err := rawmem.NewFixed[float64](it.reg, len(src), rawmem.WithLifetime(hostmem.Scratch))
	if err != nil {
		return err
	}
	if err := f.CopyAt(0, src); err != nil {
		return err
	}
	if err := f.CopyAt(1, src); !errors.Is(err, rawmem.ErrOutOfRange) {
		return errors.Wrapf(ErrChecksum, "overlong copy returned %v", err)
	}

	half := f.Len() / 2
	lo, hi := f.Split(0, half), f.Split(half, f.Len()-half)
	if got, want := sum(lo.All())+sum(hi.All()), sum(f.All()); got != want {
		return errors.Wrapf(ErrChecksum, "split sum %g, want %g", got, want)
	}

	marks, err := tracker.AllocFilled[uint8](it.reg, it.cfg.Samples, 0xa5, hostmem.Persistent)
	if err != nil {
		return err
	}
	for _, b := range marks {
		if b != 0xa5 {
			return errors.Wrapf(ErrChecksum, "fill byte %#x", b)
		}
	}
	return nil
}

func sum[T float32 | float64](seq iter.Seq[T]) float64 {
	total := 0.0
	for v := range seq {
		total += float64(v)
	}
	return total
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}
