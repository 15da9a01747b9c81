package tracker

import (
	"unsafe"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/pavanmanishd/rawmem/hostmem"
)

// addrSet is an insertion-ordered set of tracked addresses, each with the
// lifetime class it must be freed under.
type addrSet struct {
	m *linkedhashmap.Map
}

func newAddrSet() *addrSet {
	return &addrSet{m: linkedhashmap.New()}
}

func (s *addrSet) add(p unsafe.Pointer, class hostmem.Lifetime) {
	if p == nil {
		return
	}
	s.m.Put(hostmem.AddrOf(p), class)
}

// remove drops addr and reports whether it was present.
func (s *addrSet) remove(addr hostmem.Addr) bool {
	if _, ok := s.m.Get(addr); !ok {
		return false
	}
	s.m.Remove(addr)
	return true
}

func (s *addrSet) len() int { return s.m.Size() }

// dropScratch forgets every scratch address without freeing it.
func (s *addrSet) dropScratch() int {
	var stale []interface{}
	s.m.Each(func(key, value interface{}) {
		if value.(hostmem.Lifetime) == hostmem.Scratch {
			stale = append(stale, key)
		}
	})
	for _, k := range stale {
		s.m.Remove(k)
	}
	return len(stale)
}

// releaseAll frees every address in insertion order through a, then
// empties the set. It returns the number of blocks freed.
func (s *addrSet) releaseAll(a hostmem.Allocator) int {
	n := 0
	it := s.m.Iterator()
	for it.Next() {
		a.Free(it.Key().(hostmem.Addr).Pointer(), it.Value().(hostmem.Lifetime))
		n++
	}
	s.m.Clear()
	return n
}
