//go:build linux || darwin || freebsd

package hostmem

import (
	"errors"

	"golang.org/x/sys/unix"
)

var errMapUnsupported = errors.New("hostmem: anonymous mappings unsupported")

// mapAnon maps size bytes of zeroed, page-aligned anonymous memory.
func mapAnon(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func unmapAnon(b []byte) error {
	err := unix.Munmap(b)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}

// PageSize returns the OS page size.
func PageSize() int {
	return unix.Getpagesize()
}
