package workload

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pavanmanishd/rawmem/hostmem"
)

// ErrInvalidConfig reports a workload profile that cannot be run.
var ErrInvalidConfig = errors.New("workload: invalid config")

// Allocator names accepted by Config.Allocator.
const (
	AllocatorHeap   = "heap"
	AllocatorNative = "native"
)

// Config is a stress workload profile.
type Config struct {
	Allocator           string `yaml:"allocator"`
	Iterations          int    `yaml:"iterations"`
	Samples             int    `yaml:"samples"`
	GridWidth           int    `yaml:"gridWidth"`
	GridHeight          int    `yaml:"gridHeight"`
	Rows                int    `yaml:"rows"`
	MaxRowWidth         int    `yaml:"maxRowWidth"`
	ScopeEvery          int    `yaml:"scopeEvery"`
	Seed                uint64 `yaml:"seed"`
	LargeBlockThreshold int    `yaml:"largeBlockThreshold"`
	Limit               int    `yaml:"limit"`
}

// DefaultConfig returns the profile used when no file is given.
func DefaultConfig() Config {
	return Config{
		Allocator:           AllocatorHeap,
		Iterations:          100,
		Samples:             1024,
		GridWidth:           64,
		GridHeight:          64,
		Rows:                32,
		MaxRowWidth:         128,
		ScopeEvery:          4,
		Seed:                1,
		LargeBlockThreshold: hostmem.DefaultLargeBlockThreshold,
	}
}

// LoadConfig reads a YAML profile from path on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to read config file [%s]", path)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to load config [%s]", path)
	}
	return cfg, nil
}

// ParseConfig decodes a YAML profile on top of DefaultConfig and validates it.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "unable to unmarshal config data")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every field is usable.
func (c Config) Validate() error {
	switch {
	case c.Allocator != AllocatorHeap && c.Allocator != AllocatorNative:
		return errors.Wrapf(ErrInvalidConfig, "unknown allocator %q", c.Allocator)
	case c.Iterations < 1:
		return errors.Wrapf(ErrInvalidConfig, "iterations %d", c.Iterations)
	case c.Samples < 1:
		return errors.Wrapf(ErrInvalidConfig, "samples %d", c.Samples)
	case c.GridWidth < 0 || c.GridHeight < 0:
		return errors.Wrapf(ErrInvalidConfig, "grid %dx%d", c.GridWidth, c.GridHeight)
	case c.Rows < 0 || c.MaxRowWidth < 0:
		return errors.Wrapf(ErrInvalidConfig, "rows %d, max width %d", c.Rows, c.MaxRowWidth)
	case c.ScopeEvery < 0:
		return errors.Wrapf(ErrInvalidConfig, "scopeEvery %d", c.ScopeEvery)
	case c.LargeBlockThreshold < 0 || c.Limit < 0:
		return errors.Wrapf(ErrInvalidConfig, "largeBlockThreshold %d, limit %d", c.LargeBlockThreshold, c.Limit)
	}
	return nil
}

// Dump renders the profile as YAML.
func (c Config) Dump() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(out)
}

// NewAllocator builds the allocator the profile names. The returned close
// function releases native memory and must be called when done.
func (c Config) NewAllocator() (hostmem.Allocator, func() error, error) {
	opts := []hostmem.Option{
		hostmem.WithLimit(c.Limit),
		hostmem.WithLargeBlockThreshold(c.LargeBlockThreshold),
	}
	switch c.Allocator {
	case AllocatorHeap:
		return hostmem.NewHeap(opts...), func() error { return nil }, nil
	case AllocatorNative:
		n := hostmem.NewNative(opts...)
		return n, n.Close, nil
	default:
		return nil, nil, errors.Wrapf(ErrInvalidConfig, "unknown allocator %q", c.Allocator)
	}
}
