package hostmem

import "unsafe"

// DefaultChunkSize is the default chunk size for scratch arenas (64 KiB).
const DefaultChunkSize = 1 << 16

// chunk is a single backing block of an arena.
type chunk struct {
	buf    []byte  // backing memory
	offset uintptr // bump offset within buf
}

// base returns the address of the first byte of the chunk.
func (c *chunk) base() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(c.buf)))
}

// fit returns the offset at which n bytes aligned to align would start,
// and whether they fit in the chunk.
func (c *chunk) fit(n int, align uintptr) (uintptr, bool) {
	b := c.base()
	off := alignUp(b+c.offset, align) - b
	return off, off+uintptr(n) <= uintptr(len(c.buf))
}

// Arena is a chunked bump allocator backing the Scratch lifetime class.
// Blocks are never freed individually; Reset reclaims all of them at once
// while keeping the chunks for reuse. Not goroutine-safe.
type Arena struct {
	chunks    []chunk
	chunkSize int
	current   int // index of the chunk served by the fast path
}

// NewArena creates an Arena with the given chunk size.
// If chunkSize <= 0, DefaultChunkSize is used.
func NewArena(chunkSize int) *Arena {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	a := &Arena{chunkSize: chunkSize}
	a.grow(chunkSize)
	return a
}

// AllocBytes returns n bytes aligned to align. The memory is not zeroed
// after a Reset. Returns nil if n <= 0.
func (a *Arena) AllocBytes(n int, align int) []byte {
	if n <= 0 {
		return nil
	}
	a.panicIfReleased()
	if align <= 0 {
		align = int(unsafe.Sizeof(uintptr(0)))
	}
	al := uintptr(align)

	// Fast path: current chunk, then any later chunk kept from before a Reset.
	for i := a.current; i < len(a.chunks); i++ {
		c := &a.chunks[i]
		if off, ok := c.fit(n, al); ok {
			a.current = i
			return a.take(c, off, n)
		}
	}

	// Slow path: a fresh chunk big enough for n bytes at any alignment.
	c := a.grow(n + align - 1)
	off, _ := c.fit(n, al)
	return a.take(c, off, n)
}

func (a *Arena) take(c *chunk, off uintptr, n int) []byte {
	c.offset = off + uintptr(n)
	return unsafe.Slice((*byte)(unsafe.Pointer(&c.buf[off])), n)
}

// EnsureCapacity ensures the current chunk has at least n free bytes.
// If not, it grows the arena with a new chunk.
func (a *Arena) EnsureCapacity(n int) {
	a.panicIfReleased()
	c := &a.chunks[a.current]
	if _, ok := c.fit(n, unsafe.Sizeof(uintptr(0))); !ok {
		a.grow(n)
	}
}

// Reset rewinds every chunk to empty. Previously returned blocks become
// invalid; the chunks are kept for reuse.
func (a *Arena) Reset() {
	a.panicIfReleased()
	for i := range a.chunks {
		a.chunks[i].offset = 0
	}
	a.current = 0
}

// Release drops all chunks and makes the arena unusable.
// Any subsequent allocation panics.
func (a *Arena) Release() {
	a.chunks = nil
	a.current = 0
}

// grow appends a new chunk of at least min bytes and makes it current.
func (a *Arena) grow(min int) *chunk {
	size := a.chunkSize
	if min > size {
		size = min
	}
	a.chunks = append(a.chunks, chunk{buf: make([]byte, size)})
	a.current = len(a.chunks) - 1
	return &a.chunks[a.current]
}

func (a *Arena) panicIfReleased() {
	if a.chunks == nil {
		panic("hostmem: arena used after Release()")
	}
}

func alignUp(v, align uintptr) uintptr {
	mask := align - 1
	return (v + mask) &^ mask
}
