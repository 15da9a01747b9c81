// Package tracker records blocks taken from a hostmem.Allocator so they can
// be freed in bulk.
//
// A Tracker keeps one list per instance. A Registry keeps a process-wide
// list plus a single temporary scope:
//
//	r := tracker.Default()
//	err := r.WithTemporaryScope(func() error {
//		buf, err := rawmem.NewFixed[float32](r, 1024)
//		...
//	})
//
// Every block allocated through r inside the scope is freed when the scope
// ends. Only one scope may be open at a time; BeginTemporaryScope reports
// ErrScopeOpen otherwise.
package tracker
