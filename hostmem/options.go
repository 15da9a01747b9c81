package hostmem

// DefaultLargeBlockThreshold is the size at which Native maps blocks directly.
const DefaultLargeBlockThreshold = 1 << 20

type config struct {
	scratchChunkSize    int
	limit               int
	largeBlockThreshold int
}

func defaultConfig() config {
	return config{
		scratchChunkSize:    DefaultChunkSize,
		largeBlockThreshold: DefaultLargeBlockThreshold,
	}
}

// Option configures a Heap or Native allocator.
type Option func(*config)

// WithScratchChunkSize sets the chunk size of the scratch arena.
// Values <= 0 select DefaultChunkSize.
func WithScratchChunkSize(n int) Option {
	return func(c *config) {
		if n <= 0 {
			n = DefaultChunkSize
		}
		c.scratchChunkSize = n
	}
}

// WithLimit caps the bytes an allocator may hold at once. Zero means no cap.
func WithLimit(bytes int) Option {
	return func(c *config) {
		if bytes < 0 {
			bytes = 0
		}
		c.limit = bytes
	}
}

// WithLargeBlockThreshold sets the block size from which Native uses
// anonymous mappings. Values <= 0 disable mapping.
func WithLargeBlockThreshold(n int) Option {
	return func(c *config) {
		c.largeBlockThreshold = n
	}
}
