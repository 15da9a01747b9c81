// Package hostmem supplies the raw memory that rawmem containers are built on.
//
// # Overview
//
// Every container allocates through the Allocator interface, which exposes
// four primitives: Allocate, Free, MemSet and MemCopy. Each allocation is
// tagged with a Lifetime class:
//
//   - Persistent blocks stay valid until they are freed explicitly
//   - Scratch blocks may additionally be reclaimed in bulk
//
// # Implementations
//
// Heap keeps blocks on the Go heap. Persistent blocks are pinned in a
// live-block table; scratch blocks are bump-allocated from a chunked Arena
// and reclaimed together by ReclaimScratch.
//
//	h := hostmem.NewHeap()
//	p, err := h.Allocate(1024, 16, hostmem.Persistent)
//	if err != nil {
//	    return err
//	}
//	defer h.Free(p, hostmem.Persistent)
//
// Native keeps blocks outside the Go heap, so they add nothing to garbage
// collection work. Large blocks are mapped directly from the OS:
//
//	n := hostmem.NewNative(hostmem.WithLargeBlockThreshold(4 << 20))
//	defer n.Close()
//
// Synchronized wraps either one with a mutex for sharing across goroutines.
//
// # Element layouts
//
// LayoutOf reports the size and alignment of an element type and rejects
// types that hold Go pointers: raw memory is not scanned by the garbage
// collector, so a pointer stored there would not keep its target alive.
//
// # Metrics
//
// Heap, Native and Synchronized implement MetricsReporter:
//
//	m := h.Metrics()
//	fmt.Printf("live blocks: %d, bytes: %d (peak %d)\n", m.LiveBlocks, m.BytesInUse, m.PeakBytes)
package hostmem
