package tracker

import (
	"sync"

	"github.com/pavanmanishd/rawmem/hostmem"
)

var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
)

// Default returns the process-wide Registry, creating one over a
// hostmem.Heap on first use.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = NewRegistry(hostmem.NewHeap())
	}
	return defaultRegistry
}

// SetDefault replaces the process-wide Registry. A nil r makes the next
// Default call build a fresh one.
func SetDefault(r *Registry) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = r
}
