package tracker

import "github.com/pkg/errors"

var (
	// ErrScopeOpen is returned by BeginTemporaryScope while a scope is open.
	ErrScopeOpen = errors.New("tracker: temporary scope already open")

	// ErrNoOpenScope is returned by EndTemporaryScope when no scope is open.
	ErrNoOpenScope = errors.New("tracker: no temporary scope open")

	// ErrStaleScope is returned by EndTemporaryScope for a handle that does
	// not name the open scope.
	ErrStaleScope = errors.New("tracker: stale temporary scope handle")

	// ErrNegativeCount indicates a negative element count.
	ErrNegativeCount = errors.New("tracker: negative count")
)
