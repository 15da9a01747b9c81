package rawmem

import "github.com/pavanmanishd/rawmem/hostmem"

type options struct {
	class hostmem.Lifetime
}

// Option configures a container at construction.
type Option func(*options)

// WithLifetime selects the lifetime class the container allocates under.
// The default is hostmem.Persistent.
func WithLifetime(class hostmem.Lifetime) Option {
	return func(o *options) {
		o.class = class
	}
}

func buildOptions(opts []Option) options {
	o := options{class: hostmem.Persistent}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
