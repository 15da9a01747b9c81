package tracker

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/pavanmanishd/rawmem/hostmem"
)

// Tracker is a hostmem.Allocator that records every block it hands out so
// they can all be freed with one ReleaseAll. Blocks freed through the
// Tracker are forgotten. Not goroutine-safe.
type Tracker struct {
	base hostmem.Allocator
	live *addrSet
}

// New returns a Tracker allocating from base.
func New(base hostmem.Allocator) *Tracker {
	return &Tracker{base: base, live: newAddrSet()}
}

// Base returns the allocator the Tracker delegates to.
func (t *Tracker) Base() hostmem.Allocator { return t.base }

// Allocate allocates from the base allocator and records the block.
func (t *Tracker) Allocate(size, align int, class hostmem.Lifetime) (unsafe.Pointer, error) {
	p, err := t.base.Allocate(size, align, class)
	if err != nil {
		return nil, err
	}
	t.live.add(p, class)
	return p, nil
}

// Free untracks and frees p.
func (t *Tracker) Free(p unsafe.Pointer, class hostmem.Lifetime) {
	if p == nil {
		return
	}
	t.live.remove(hostmem.AddrOf(p))
	t.base.Free(p, class)
}

// MemSet delegates to the base allocator.
func (t *Tracker) MemSet(p unsafe.Pointer, b byte, n int) { t.base.MemSet(p, b, n) }

// MemCopy delegates to the base allocator.
func (t *Tracker) MemCopy(dst, src unsafe.Pointer, n int) { t.base.MemCopy(dst, src, n) }

// Track records a block obtained from the base allocator elsewhere.
// A nil pointer is ignored.
func (t *Tracker) Track(p unsafe.Pointer, class hostmem.Lifetime) {
	t.live.add(p, class)
}

// Untrack forgets p without freeing it and reports whether it was tracked.
func (t *Tracker) Untrack(p unsafe.Pointer) bool {
	return t.live.remove(hostmem.AddrOf(p))
}

// Len returns the number of tracked blocks.
func (t *Tracker) Len() int { return t.live.len() }

// ReleaseAll frees every tracked block and empties the list. A second call
// frees nothing. It returns the number of blocks freed.
func (t *Tracker) ReleaseAll() int {
	n := t.live.releaseAll(t.base)
	if n > 0 {
		Logger().Debug("tracker: released all", zap.Int("blocks", n))
	}
	return n
}

// ReclaimScratch forgets tracked scratch blocks and lets the base allocator
// reclaim them, when it supports bulk reclamation.
func (t *Tracker) ReclaimScratch() {
	r, ok := t.base.(hostmem.ScratchReclaimer)
	if !ok {
		return
	}
	t.live.dropScratch()
	r.ReclaimScratch()
}

// Metrics returns the base allocator's metrics, or a zero snapshot.
func (t *Tracker) Metrics() hostmem.Metrics {
	if m, ok := t.base.(hostmem.MetricsReporter); ok {
		return m.Metrics()
	}
	return hostmem.Metrics{}
}
