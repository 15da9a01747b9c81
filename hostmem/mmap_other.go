//go:build !linux && !darwin && !freebsd

package hostmem

import (
	"errors"
	"os"
)

var errMapUnsupported = errors.New("hostmem: anonymous mappings unsupported")

// mapAnon reports errMapUnsupported; Native falls back to its allocator.
func mapAnon(int) ([]byte, error) {
	return nil, errMapUnsupported
}

func unmapAnon([]byte) error {
	return errMapUnsupported
}

// PageSize returns the OS page size.
func PageSize() int {
	return os.Getpagesize()
}
