package edgevec

import (
	"fmt"

	"github.com/xDarkicex/edgevec/internal/filter"
)

// Option configures an Engine at construction.
type Option func(*Config) error

// Config holds engine-wide configuration.
type Config struct {
	MaxCollections int
	MetricsEnabled bool
}

// WithMaxCollections caps how many named collections an Engine will hold.
func WithMaxCollections(max int) Option {
	return func(c *Config) error {
		if max <= 0 {
			return fmt.Errorf("max collections must be positive")
		}
		c.MaxCollections = max
		return nil
	}
}

// WithMetrics enables or disables Prometheus instrumentation. Enabled by
// default; disabling it avoids registering counters against the default
// registry, useful when embedding multiple Engines in one process.
func WithMetrics(enabled bool) Option {
	return func(c *Config) error {
		c.MetricsEnabled = enabled
		return nil
	}
}

// CollectionOption configures a Collection at construction.
type CollectionOption func(*CollectionConfig) error

// WithDimension sets the fixed vector dimension for the collection. For
// IndexFlatBinary this is in bits and must be a positive multiple of 8.
func WithDimension(dim int) CollectionOption {
	return func(c *CollectionConfig) error {
		if dim <= 0 {
			return fmt.Errorf("dimension must be positive")
		}
		c.Dimension = dim
		return nil
	}
}

// WithMetric sets the distance/similarity kernel.
func WithMetric(metric Metric) CollectionOption {
	return func(c *CollectionConfig) error {
		c.Metric = metric
		return nil
	}
}

// WithIndexKind selects which index family backs the collection.
func WithIndexKind(kind IndexKind) CollectionOption {
	return func(c *CollectionConfig) error {
		c.IndexKind = kind
		return nil
	}
}

// WithHNSW configures HNSW graph construction/search parameters; it also
// selects IndexHNSW. m0 is the maximum number of links at level 0,
// conventionally 2*m but tunable independently; pass 0 to default it to
// 2*m.
func WithHNSW(m, m0, efConstruction, efSearch int) CollectionOption {
	return func(c *CollectionConfig) error {
		if m <= 0 || efConstruction <= 0 || efSearch <= 0 {
			return fmt.Errorf("HNSW parameters must be positive")
		}
		if m0 == 0 {
			m0 = m * 2
		}
		if m0 <= 0 {
			return fmt.Errorf("HNSW parameters must be positive")
		}
		c.IndexKind = IndexHNSW
		c.M = m
		c.M0 = m0
		c.EfConstruction = efConstruction
		c.EfSearch = efSearch
		return nil
	}
}

// WithSeed fixes the HNSW level-assignment RNG seed for reproducible graphs.
func WithSeed(seed int64) CollectionOption {
	return func(c *CollectionConfig) error {
		c.Seed = seed
		return nil
	}
}

// WithCleanupThreshold sets the flat dense index's tombstone-ratio
// auto-compaction trigger (default 0.5). A threshold of 1.0 disables
// auto-compaction.
func WithCleanupThreshold(threshold float64) CollectionOption {
	return func(c *CollectionConfig) error {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("cleanup threshold must be in [0, 1]")
		}
		c.CleanupThreshold = threshold
		return nil
	}
}

// WithBinaryCapacity sets the fixed vector capacity of an IndexFlatBinary
// collection; it also selects IndexFlatBinary.
func WithBinaryCapacity(capacity int) CollectionOption {
	return func(c *CollectionConfig) error {
		if capacity <= 0 {
			return fmt.Errorf("binary capacity must be positive")
		}
		c.IndexKind = IndexFlatBinary
		c.BinaryCapacity = capacity
		return nil
	}
}

// WithMemoryGovernor configures the collection's synchronous memory-pressure
// governor. A zero ceilingBytes disables the governor (always reports
// normal pressure, never blocks inserts).
func WithMemoryGovernor(ceilingBytes int64, warningThreshold, criticalThreshold float64, allowInsertsAtCritical bool) CollectionOption {
	return func(c *CollectionConfig) error {
		c.MemoryCeilingBytes = ceilingBytes
		c.WarningThreshold = warningThreshold
		c.CriticalThreshold = criticalThreshold
		c.AllowInsertsAtCritical = allowInsertsAtCritical
		return nil
	}
}

// WithFilterStrategy sets the default strategy QueryBuilder.Execute uses
// when a caller doesn't override it per-query.
func WithFilterStrategy(strategy filter.Strategy) CollectionOption {
	return func(c *CollectionConfig) error {
		c.FilterStrategy = strategy
		return nil
	}
}
