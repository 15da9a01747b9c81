package hostmem

import (
	"sync"
	"unsafe"
)

// Synchronized is a mutex-protected wrapper around any Allocator.
// Containers are not goroutine-safe, but several containers owned by
// different goroutines may share one Synchronized allocator.
type Synchronized struct {
	mu sync.Mutex
	a  Allocator
}

// NewSynchronized wraps a.
func NewSynchronized(a Allocator) *Synchronized {
	return &Synchronized{a: a}
}

// Unwrap returns the wrapped allocator.
func (s *Synchronized) Unwrap() Allocator {
	return s.a
}

// Allocate thread-safely allocates a block.
func (s *Synchronized) Allocate(size, align int, class Lifetime) (unsafe.Pointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Allocate(size, align, class)
}

// Free thread-safely frees a block.
func (s *Synchronized) Free(p unsafe.Pointer, class Lifetime) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Free(p, class)
}

// MemSet delegates to the wrapped allocator. The bytes touched belong to the
// caller, so no lock is taken.
func (s *Synchronized) MemSet(p unsafe.Pointer, b byte, n int) {
	s.a.MemSet(p, b, n)
}

// MemCopy delegates to the wrapped allocator without locking.
func (s *Synchronized) MemCopy(dst, src unsafe.Pointer, n int) {
	s.a.MemCopy(dst, src, n)
}

// ReclaimScratch thread-safely reclaims scratch blocks if the wrapped
// allocator supports it.
func (s *Synchronized) ReclaimScratch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.a.(ScratchReclaimer); ok {
		r.ReclaimScratch()
	}
}

// Metrics thread-safely returns the wrapped allocator's metrics, or a zero
// snapshot if it does not report any.
func (s *Synchronized) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.a.(MetricsReporter); ok {
		return r.Metrics()
	}
	return Metrics{}
}
