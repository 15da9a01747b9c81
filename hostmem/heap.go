package hostmem

import (
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pavanmanishd/rawmem/internal/bounds"
)

// Heap is an Allocator backed by the Go heap.
//
// Persistent blocks are byte slices pinned in a live-block table until they
// are freed, so the garbage collector never reclaims memory a container still
// addresses. Scratch blocks are bump-allocated from an Arena; freeing one is a
// no-op and ReclaimScratch rewinds them all at once.
//
// Heap is portable and needs no native memory, which makes it the default for
// tests and for the process-wide registry. Not goroutine-safe.
type Heap struct {
	MemOps
	cfg     config
	live    map[Addr]heapBlock
	scratch *Arena
	stats   counters
	// scratch bookkeeping since the last ReclaimScratch
	scratchBlocks int
	scratchBytes  int
}

type heapBlock struct {
	buf  []byte
	size int
}

// NewHeap creates a Heap allocator.
func NewHeap(opts ...Option) *Heap {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Heap{
		cfg:     cfg,
		live:    make(map[Addr]heapBlock),
		scratch: NewArena(cfg.scratchChunkSize),
	}
}

// Allocate returns a block of size bytes aligned to align.
func (h *Heap) Allocate(size, align int, class Lifetime) (unsafe.Pointer, error) {
	if err := validateRequest(size, align); err != nil {
		return nil, err
	}
	if h.stats.wouldExceed(size, h.cfg.limit) {
		return nil, errors.Wrapf(ErrOutOfMemory, "heap: %d bytes requested, %d of %d in use",
			size, h.stats.bytesInUse, h.cfg.limit)
	}

	if class == Scratch {
		b := h.scratch.AllocBytes(size, align)
		h.scratchBlocks++
		h.scratchBytes += size
		h.stats.allocated(size)
		return unsafe.Pointer(unsafe.SliceData(b)), nil
	}

	total, ok := bounds.Add(size, align-1)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidSize, "heap: %d bytes at alignment %d", size, align)
	}
	buf := make([]byte, total)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	off := alignUp(base, uintptr(align)) - base
	p := unsafe.Pointer(&buf[off])

	h.live[AddrOf(p)] = heapBlock{buf: buf, size: size}
	h.stats.allocated(size)
	return p, nil
}

// Free releases a persistent block. Scratch blocks are left for ReclaimScratch.
func (h *Heap) Free(p unsafe.Pointer, class Lifetime) {
	if p == nil || class == Scratch {
		return
	}
	addr := AddrOf(p)
	blk, ok := h.live[addr]
	if !ok {
		Logger().Warn("heap: free of unknown block", zap.Uintptr("addr", uintptr(addr)))
		return
	}
	delete(h.live, addr)
	h.stats.freed(blk.size)
}

// ReclaimScratch invalidates every scratch block at once.
func (h *Heap) ReclaimScratch() {
	h.scratch.Reset()
	h.stats.frees += h.scratchBlocks
	h.stats.live -= h.scratchBlocks
	h.stats.bytesInUse -= h.scratchBytes
	h.scratchBlocks = 0
	h.scratchBytes = 0
}

// Metrics returns a snapshot of the allocator statistics.
func (h *Heap) Metrics() Metrics {
	m := h.stats.snapshot()
	m.ScratchBytes = h.scratchBytes
	m.ScratchCapacity = h.scratch.Capacity()
	m.ScratchChunks = h.scratch.NumChunks()
	return m
}

func validateRequest(size, align int) error {
	if size <= 0 {
		return errors.Wrapf(ErrInvalidSize, "size %d", size)
	}
	if !bounds.IsPowerOfTwo(align) || align > MaxAlignment {
		return errors.Wrapf(ErrInvalidAlignment, "alignment %d", align)
	}
	return nil
}
