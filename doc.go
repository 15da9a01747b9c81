// Package rawmem provides typed containers whose storage lives in blocks
// obtained from a hostmem.Allocator instead of Go-managed slices.
//
// # Overview
//
// The containers hold pointer-free element types only. Their memory is
// released explicitly, either per container with Release or in bulk through
// the tracker package. This is useful for:
//
//   - Large numeric buffers kept out of the garbage collector's view
//   - Per-frame or per-request scratch data reclaimed all at once
//   - Data exchanged with native code that expects raw addresses
//
// # Containers
//
//   - Fixed: a fixed-length array with copy-in helpers and sub-views
//   - Growable: an append-oriented array with doubling growth
//   - Grid: a rectangular width x height array stored row-major
//   - Jagged: rows of independent lengths, each in its own block
//   - View: a non-owning window into any of the above
//
// # Basic Usage
//
//	a := hostmem.NewHeap()
//
//	buf, err := rawmem.NewFixed[float32](a, 1024)
//	if err != nil {
//		return err
//	}
//	defer buf.Release()
//
//	buf.Set(0, 1.5)
//	for v := range buf.All() {
//		...
//	}
//
// # Access Rules
//
// Element access through At, Set and Ptr is unchecked. Only the byte-copy
// operations validate their range and return ErrOutOfRange. Views, pointers
// and enumerators are invalidated by Release and, for Growable and Jagged
// index buffers, by growth.
//
// # Thread Safety
//
// Containers are not goroutine-safe. Share an allocator between goroutines
// only through hostmem.Synchronized.
package rawmem
