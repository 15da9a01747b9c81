package hostmem

import (
	"unsafe"
)

// Lifetime classifies how an allocation is expected to be released.
type Lifetime uint8

const (
	// Persistent blocks live until they are explicitly freed.
	Persistent Lifetime = iota
	// Scratch blocks may additionally be reclaimed in bulk by the allocator.
	Scratch
)

// String implements fmt.Stringer.
func (l Lifetime) String() string {
	switch l {
	case Persistent:
		return "persistent"
	case Scratch:
		return "scratch"
	default:
		return "unknown"
	}
}

// MaxAlignment is the largest alignment any allocator accepts (one page).
const MaxAlignment = 4096

// Allocator is the host memory substrate every container allocates from.
//
// Allocate returns a block of at least size bytes aligned to align. Contents
// are unspecified; callers that need zeroed memory use MemSet. Free releases
// a block previously returned by Allocate under the same lifetime class;
// freeing nil or an unknown address is a no-op.
//
// Implementations are not required to be safe for concurrent use. Wrap them
// in a Synchronized when several goroutines share one.
type Allocator interface {
	Allocate(size, align int, class Lifetime) (unsafe.Pointer, error)
	Free(p unsafe.Pointer, class Lifetime)
	MemSet(p unsafe.Pointer, b byte, n int)
	MemCopy(dst, src unsafe.Pointer, n int)
}

// ScratchReclaimer is implemented by allocators that can drop every scratch
// block at once.
type ScratchReclaimer interface {
	ReclaimScratch()
}

// Addr is the numeric form of a block address, used where addresses are
// stored inside raw memory or used as map keys.
type Addr uintptr

// AddrOf returns the numeric address of p.
func AddrOf(p unsafe.Pointer) Addr {
	return Addr(uintptr(p))
}

// Pointer converts the address back to a pointer. The block must still be
// owned by the allocator that produced it; allocators keep every live block
// reachable, so the address stays valid until the block is freed.
func (a Addr) Pointer() unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&a))
}

// MemOps implements the byte-level primitives of Allocator. Allocators embed
// it so they only have to provide Allocate and Free.
type MemOps struct{}

// MemSet sets n bytes starting at p to b.
func (MemOps) MemSet(p unsafe.Pointer, b byte, n int) {
	if p == nil || n <= 0 {
		return
	}
	s := unsafe.Slice((*byte)(p), n)
	if b == 0 {
		clear(s)
		return
	}
	s[0] = b
	for filled := 1; filled < n; filled *= 2 {
		copy(s[filled:], s[:filled])
	}
}

// MemCopy copies n bytes from src to dst. Overlapping ranges are handled.
func (MemOps) MemCopy(dst, src unsafe.Pointer, n int) {
	if dst == nil || src == nil || n <= 0 {
		return
	}
	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}
