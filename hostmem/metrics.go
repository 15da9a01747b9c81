package hostmem

// SizeInUse returns the number of bytes handed out since the last Reset,
// including alignment padding.
func (a *Arena) SizeInUse() int {
	sum := 0
	for _, c := range a.chunks {
		sum += int(c.offset)
	}
	return sum
}

// NumChunks returns the number of chunks currently held by the arena.
func (a *Arena) NumChunks() int {
	return len(a.chunks)
}

// Capacity returns the total capacity (in bytes) of all chunks in the arena.
func (a *Arena) Capacity() int {
	sum := 0
	for _, c := range a.chunks {
		sum += len(c.buf)
	}
	return sum
}

// Utilization returns the ratio of bytes in use to total capacity (0.0 to 1.0).
// Returns 0.0 if the arena has no capacity.
func (a *Arena) Utilization() float64 {
	capacity := a.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(a.SizeInUse()) / float64(capacity)
}

// ChunkSize returns the default chunk size used by this arena.
func (a *Arena) ChunkSize() int {
	return a.chunkSize
}

// Metrics is a snapshot of allocator statistics.
type Metrics struct {
	Allocations     int // Blocks handed out since creation
	Frees           int // Blocks returned since creation, bulk reclaims included
	LiveBlocks      int // Persistent and scratch blocks currently held
	BytesInUse      int // Bytes requested by live blocks
	PeakBytes       int // High-water mark of BytesInUse
	ScratchBytes    int // Bytes held by scratch blocks
	ScratchCapacity int // Bytes reserved for scratch blocks
	ScratchChunks   int // Backing chunks or blocks serving the scratch class
}

// ScratchUtilization returns ScratchBytes / ScratchCapacity, or 0.
func (m Metrics) ScratchUtilization() float64 {
	if m.ScratchCapacity == 0 {
		return 0
	}
	return float64(m.ScratchBytes) / float64(m.ScratchCapacity)
}

// Fields flattens the snapshot into a name/value map, for metrics sinks.
func (m Metrics) Fields() map[string]interface{} {
	return map[string]interface{}{
		"allocations":      m.Allocations,
		"frees":            m.Frees,
		"live_blocks":      m.LiveBlocks,
		"bytes_in_use":     m.BytesInUse,
		"peak_bytes":       m.PeakBytes,
		"scratch_bytes":    m.ScratchBytes,
		"scratch_capacity": m.ScratchCapacity,
		"scratch_chunks":   m.ScratchChunks,
	}
}

// MetricsReporter is implemented by allocators that expose a Metrics snapshot.
type MetricsReporter interface {
	Metrics() Metrics
}

// counters is the bookkeeping shared by the allocators in this package.
type counters struct {
	allocations int
	frees       int
	live        int
	bytesInUse  int
	peakBytes   int
}

func (c *counters) allocated(size int) {
	c.allocations++
	c.live++
	c.bytesInUse += size
	if c.bytesInUse > c.peakBytes {
		c.peakBytes = c.bytesInUse
	}
}

func (c *counters) freed(size int) {
	c.frees++
	c.live--
	c.bytesInUse -= size
}

func (c *counters) snapshot() Metrics {
	return Metrics{
		Allocations: c.allocations,
		Frees:       c.frees,
		LiveBlocks:  c.live,
		BytesInUse:  c.bytesInUse,
		PeakBytes:   c.peakBytes,
	}
}

// wouldExceed reports whether size more bytes would cross limit (0 = none).
func (c *counters) wouldExceed(size, limit int) bool {
	return limit > 0 && size > limit-c.bytesInUse
}
