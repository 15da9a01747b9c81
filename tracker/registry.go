package tracker

import (
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pavanmanishd/rawmem/hostmem"
)

// Handle identifies a temporary scope. Handles count every scope ever begun
// on a Registry and are never reused.
type Handle int

// scope is the open temporary scope, if any.
type scope struct {
	handle Handle
	live   *addrSet
}

// Registry tracks blocks in a process-wide list plus at most one temporary
// scope at a time. While a scope is open, blocks allocated or tracked
// through the Registry belong to the scope and are freed when it ends;
// otherwise they go to the process-wide list.
//
// Registry is a hostmem.Allocator. Not goroutine-safe.
type Registry struct {
	base   hostmem.Allocator
	global *addrSet
	open   *scope // nil when idle
	next   Handle
}

// NewRegistry returns an idle Registry allocating from base.
func NewRegistry(base hostmem.Allocator) *Registry {
	return &Registry{base: base, global: newAddrSet()}
}

// Base returns the allocator the Registry delegates to.
func (r *Registry) Base() hostmem.Allocator { return r.base }

func (r *Registry) target() *addrSet {
	if r.open != nil {
		return r.open.live
	}
	return r.global
}

// Allocate allocates from the base allocator and tracks the block in the
// open scope, or in the process-wide list when idle.
func (r *Registry) Allocate(size, align int, class hostmem.Lifetime) (unsafe.Pointer, error) {
	p, err := r.base.Allocate(size, align, class)
	if err != nil {
		return nil, err
	}
	r.target().add(p, class)
	return p, nil
}

// Free untracks p wherever it is tracked and frees it.
func (r *Registry) Free(p unsafe.Pointer, class hostmem.Lifetime) {
	if p == nil {
		return
	}
	r.Untrack(p)
	r.base.Free(p, class)
}

// MemSet delegates to the base allocator.
func (r *Registry) MemSet(p unsafe.Pointer, b byte, n int) { r.base.MemSet(p, b, n) }

// MemCopy delegates to the base allocator.
func (r *Registry) MemCopy(dst, src unsafe.Pointer, n int) { r.base.MemCopy(dst, src, n) }

// Track records an externally allocated block in the open scope, or in the
// process-wide list when idle.
func (r *Registry) Track(p unsafe.Pointer, class hostmem.Lifetime) {
	r.target().add(p, class)
}

// TrackGlobal records a block in the process-wide list regardless of scope.
func (r *Registry) TrackGlobal(p unsafe.Pointer, class hostmem.Lifetime) {
	r.global.add(p, class)
}

// Untrack forgets p without freeing it and reports whether it was tracked.
func (r *Registry) Untrack(p unsafe.Pointer) bool {
	addr := hostmem.AddrOf(p)
	found := r.global.remove(addr)
	if r.open != nil && r.open.live.remove(addr) {
		found = true
	}
	return found
}

// Len returns the number of blocks in the process-wide list.
func (r *Registry) Len() int { return r.global.len() }

// Scope returns the open scope's handle and block count. ok is false when
// the Registry is idle.
func (r *Registry) Scope() (h Handle, n int, ok bool) {
	if r.open == nil {
		return 0, 0, false
	}
	return r.open.handle, r.open.live.len(), true
}

// BeginTemporaryScope opens a new empty scope and returns its handle. It
// fails with ErrScopeOpen, changing nothing, if a scope is already open.
func (r *Registry) BeginTemporaryScope() (Handle, error) {
	if r.open != nil {
		Logger().Warn("tracker: begin while a scope is open", zap.Int("open", int(r.open.handle)))
		return 0, errors.Wrapf(ErrScopeOpen, "scope %d", r.open.handle)
	}
	h := r.next
	r.next++
	r.open = &scope{handle: h, live: newAddrSet()}
	Logger().Debug("tracker: scope begin", zap.Int("scope", int(h)))
	return h, nil
}

// EndTemporaryScope frees every block in scope h and returns to idle.
// Ending with no open scope or with a handle other than the open one is a
// reported no-op.
func (r *Registry) EndTemporaryScope(h Handle) error {
	if r.open == nil {
		Logger().Warn("tracker: end with no open scope", zap.Int("scope", int(h)))
		return errors.Wrapf(ErrNoOpenScope, "scope %d", h)
	}
	if h != r.open.handle {
		Logger().Warn("tracker: end of stale scope",
			zap.Int("scope", int(h)),
			zap.Int("open", int(r.open.handle)))
		return errors.Wrapf(ErrStaleScope, "scope %d, open %d", h, r.open.handle)
	}
	n := r.open.live.releaseAll(r.base)
	r.open = nil
	Logger().Debug("tracker: scope end", zap.Int("scope", int(h)), zap.Int("blocks", n))
	return nil
}

// WithTemporaryScope runs fn inside a new temporary scope and ends the scope
// afterwards, even if fn fails or panics.
func (r *Registry) WithTemporaryScope(fn func() error) (err error) {
	h, err := r.BeginTemporaryScope()
	if err != nil {
		return err
	}
	defer func() {
		if endErr := r.EndTemporaryScope(h); err == nil {
			err = endErr
		}
	}()
	return fn()
}

// ReleaseAllGlobal frees every block in the process-wide list and in the
// open scope, if any, and returns to idle. Handles keep counting upwards.
// It returns the number of blocks freed.
func (r *Registry) ReleaseAllGlobal() int {
	n := r.global.releaseAll(r.base)
	if r.open != nil {
		n += r.open.live.releaseAll(r.base)
		r.open = nil
	}
	Logger().Debug("tracker: released all", zap.Int("blocks", n))
	return n
}

// ReclaimScratch forgets tracked scratch blocks and lets the base allocator
// reclaim them, when it supports bulk reclamation.
func (r *Registry) ReclaimScratch() {
	rec, ok := r.base.(hostmem.ScratchReclaimer)
	if !ok {
		return
	}
	r.global.dropScratch()
	if r.open != nil {
		r.open.live.dropScratch()
	}
	rec.ReclaimScratch()
}

// Metrics returns the base allocator's metrics, or a zero snapshot.
func (r *Registry) Metrics() hostmem.Metrics {
	if m, ok := r.base.(hostmem.MetricsReporter); ok {
		return m.Metrics()
	}
	return hostmem.Metrics{}
}
