package hostmem

import (
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"modernc.org/memory"

	"github.com/pavanmanishd/rawmem/internal/bounds"
)

// nativeAlign is the alignment modernc.org/memory guarantees for every block.
const nativeAlign = 2 * int(unsafe.Sizeof(uintptr(0)))

// Native is an Allocator whose blocks live outside the Go heap.
//
// Ordinary blocks come from a modernc.org/memory allocator. Requests with an
// alignment above its native 16 bytes are over-allocated and aligned in place.
// Blocks of at least the large-block threshold are mapped directly from the
// OS where anonymous mappings are supported. Scratch blocks are remembered so
// ReclaimScratch can free them in bulk.
//
// Close must be called to return all memory to the OS. Not goroutine-safe.
type Native struct {
	MemOps
	cfg     config
	mem     memory.Allocator
	live    map[Addr]nativeBlock
	scratch map[Addr]struct{}
	stats   counters
	closed  bool
}

type nativeBlock struct {
	base   unsafe.Pointer // start of the underlying allocation
	mapped []byte         // non-nil for anonymous mappings
	size   int            // requested size
	class  Lifetime
}

// NewNative creates a Native allocator.
func NewNative(opts ...Option) *Native {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Native{
		cfg:     cfg,
		live:    make(map[Addr]nativeBlock),
		scratch: make(map[Addr]struct{}),
	}
}

// Allocate returns a block of size bytes aligned to align.
func (n *Native) Allocate(size, align int, class Lifetime) (unsafe.Pointer, error) {
	if n.closed {
		return nil, ErrClosed
	}
	if err := validateRequest(size, align); err != nil {
		return nil, err
	}
	if n.stats.wouldExceed(size, n.cfg.limit) {
		return nil, errors.Wrapf(ErrOutOfMemory, "native: %d bytes requested, %d of %d in use",
			size, n.stats.bytesInUse, n.cfg.limit)
	}

	var (
		blk nativeBlock
		p   unsafe.Pointer
		err error
	)
	if n.cfg.largeBlockThreshold > 0 && size >= n.cfg.largeBlockThreshold {
		p, blk, err = n.allocateMapped(size)
	}
	if p == nil && err == nil {
		p, blk, err = n.allocateHeapless(size, align)
	}
	if err != nil {
		return nil, err
	}

	blk.size = size
	blk.class = class
	addr := AddrOf(p)
	n.live[addr] = blk
	if class == Scratch {
		n.scratch[addr] = struct{}{}
	}
	n.stats.allocated(size)
	return p, nil
}

func (n *Native) allocateMapped(size int) (unsafe.Pointer, nativeBlock, error) {
	b, err := mapAnon(size)
	if errors.Is(err, errMapUnsupported) {
		return nil, nativeBlock{}, nil
	}
	if err != nil {
		return nil, nativeBlock{}, errors.Wrapf(ErrOutOfMemory, "native: map %d bytes: %v", size, err)
	}
	p := unsafe.Pointer(unsafe.SliceData(b))
	Logger().Debug("native: mapped large block",
		zap.Int("size", size),
		zap.Uintptr("addr", uintptr(p)))
	return p, nativeBlock{base: p, mapped: b}, nil
}

func (n *Native) allocateHeapless(size, align int) (unsafe.Pointer, nativeBlock, error) {
	total := size
	if align > nativeAlign {
		var ok bool
		if total, ok = bounds.Add(size, align-1); !ok {
			return nil, nativeBlock{}, errors.Wrapf(ErrInvalidSize, "native: %d bytes at alignment %d", size, align)
		}
	}
	base, err := n.mem.UnsafeMalloc(total)
	if err != nil {
		return nil, nativeBlock{}, errors.Wrapf(ErrOutOfMemory, "native: malloc %d bytes: %v", total, err)
	}
	off := alignUp(uintptr(base), uintptr(align)) - uintptr(base)
	return unsafe.Add(base, off), nativeBlock{base: base}, nil
}

// Free returns a block to the OS or the underlying allocator.
func (n *Native) Free(p unsafe.Pointer, class Lifetime) {
	if p == nil || n.closed {
		return
	}
	addr := AddrOf(p)
	blk, ok := n.live[addr]
	if !ok {
		Logger().Warn("native: free of unknown block", zap.Uintptr("addr", uintptr(addr)))
		return
	}
	n.release(addr, blk)
}

func (n *Native) release(addr Addr, blk nativeBlock) {
	delete(n.live, addr)
	delete(n.scratch, addr)
	n.stats.freed(blk.size)

	var err error
	if blk.mapped != nil {
		err = unmapAnon(blk.mapped)
	} else {
		err = n.mem.UnsafeFree(blk.base)
	}
	if err != nil {
		Logger().Warn("native: free failed",
			zap.Uintptr("addr", uintptr(addr)),
			zap.Int("size", blk.size),
			zap.Error(err))
	}
}

// ReclaimScratch frees every scratch block still live.
func (n *Native) ReclaimScratch() {
	for addr := range n.scratch {
		n.release(addr, n.live[addr])
	}
}

// Metrics returns a snapshot of the allocator statistics.
func (n *Native) Metrics() Metrics {
	m := n.stats.snapshot()
	for addr := range n.scratch {
		m.ScratchBytes += n.live[addr].size
	}
	m.ScratchCapacity = m.ScratchBytes
	m.ScratchChunks = len(n.scratch)
	return m
}

// Close frees every live block and the allocator's own bookkeeping.
// The allocator cannot be used afterwards; Close is idempotent.
func (n *Native) Close() error {
	if n.closed {
		return nil
	}
	for addr, blk := range n.live {
		n.release(addr, blk)
	}
	n.closed = true
	return errors.Wrap(n.mem.Close(), "native: close")
}
