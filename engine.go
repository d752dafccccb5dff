package edgevec

import (
	"fmt"
	"sync"

	"github.com/xDarkicex/edgevec/internal/memory"
	"github.com/xDarkicex/edgevec/internal/obs"
	"github.com/xDarkicex/edgevec/internal/obslog"
)

// Engine owns a set of named dense and sparse collections. There is no
// host-side persistence backend behind it: an Engine holds everything it
// manages in memory, and a caller that wants durability saves and loads
// each collection explicitly through its own Save/Load methods.
type Engine struct {
	mu      sync.RWMutex
	cfg     Config
	dense   map[string]*Collection
	sparse  map[string]*SparseCollection
	metrics *obs.Metrics
	logger  *obslog.Logger
	closed  bool
}

// New creates an Engine applying the given options.
func New(opts ...Option) (*Engine, error) {
	cfg := Config{
		MaxCollections: 100,
		MetricsEnabled: true,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, fmt.Errorf("edgevec: failed to apply option: %w", err)
		}
	}

	var metrics *obs.Metrics
	if cfg.MetricsEnabled {
		metrics = obs.NewMetrics()
	}

	return &Engine{
		cfg:     cfg,
		dense:   make(map[string]*Collection),
		sparse:  make(map[string]*SparseCollection),
		metrics: metrics,
		logger:  obslog.NewNop(),
	}, nil
}

// SetLogger replaces the engine's logger, used for every collection created
// afterward. Collections already created keep the logger they were built
// with.
func (e *Engine) SetLogger(logger *obslog.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if logger == nil {
		logger = obslog.NewNop()
	}
	e.logger = logger
}

// CreateCollection creates a new dense collection.
func (e *Engine) CreateCollection(name string, opts ...CollectionOption) (*Collection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrEngineClosed
	}
	if _, exists := e.dense[name]; exists {
		return nil, ErrCollectionExists
	}
	if len(e.dense)+len(e.sparse) >= e.cfg.MaxCollections {
		return nil, ErrTooManyCollections
	}

	cfg := defaultCollectionConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, fmt.Errorf("edgevec: failed to apply collection option: %w", err)
		}
	}

	coll, err := newCollection(name, cfg, e.metrics, e.logger)
	if err != nil {
		return nil, err
	}
	e.dense[name] = coll
	return coll, nil
}

// GetCollection retrieves an existing dense collection by name.
func (e *Engine) GetCollection(name string) (*Collection, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, ErrEngineClosed
	}
	coll, ok := e.dense[name]
	if !ok {
		return nil, ErrCollectionNotFound
	}
	return coll, nil
}

// DropCollection closes and removes a dense collection.
func (e *Engine) DropCollection(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}
	coll, ok := e.dense[name]
	if !ok {
		return ErrCollectionNotFound
	}
	delete(e.dense, name)
	return coll.Close()
}

// ListCollections returns the names of every dense collection.
func (e *Engine) ListCollections() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.dense))
	for name := range e.dense {
		names = append(names, name)
	}
	return names
}

// CreateSparseCollection creates a new sparse collection.
func (e *Engine) CreateSparseCollection(name string) (*SparseCollection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrEngineClosed
	}
	if _, exists := e.sparse[name]; exists {
		return nil, ErrSparseCollectionExists
	}
	if len(e.dense)+len(e.sparse) >= e.cfg.MaxCollections {
		return nil, ErrTooManyCollections
	}

	coll := newSparseCollection(name, e.metrics, e.logger)
	e.sparse[name] = coll
	return coll, nil
}

// GetSparseCollection retrieves an existing sparse collection by name.
func (e *Engine) GetSparseCollection(name string) (*SparseCollection, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, ErrEngineClosed
	}
	coll, ok := e.sparse[name]
	if !ok {
		return nil, ErrSparseCollectionNotFound
	}
	return coll, nil
}

// DropSparseCollection closes and removes a sparse collection.
func (e *Engine) DropSparseCollection(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}
	coll, ok := e.sparse[name]
	if !ok {
		return ErrSparseCollectionNotFound
	}
	delete(e.sparse, name)
	return coll.Close()
}

// ListSparseCollections returns the names of every sparse collection.
func (e *Engine) ListSparseCollections() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.sparse))
	for name := range e.sparse {
		names = append(names, name)
	}
	return names
}

// Stats aggregates statistics across every dense collection the engine
// owns. Sparse collections are reported through ListSparseCollections and
// SparseCollection.Stats, since CollectionStats' IndexKind field doesn't
// describe them.
func (e *Engine) Stats() EngineStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := EngineStats{
		CollectionCount: len(e.dense),
		Collections:     make(map[string]CollectionStats, len(e.dense)),
	}
	var total int64
	for name, coll := range e.dense {
		s := coll.Stats()
		stats.Collections[name] = s
		total += s.MemoryUsage
	}
	stats.MemoryUsage = total
	return stats
}

// Describe returns an aggregate health snapshot across every dense
// collection: total vector/tombstone counts and the worst pressure level
// reported by any collection's memory governor.
func (e *Engine) Describe() HealthSnapshot {
	e.mu.RLock()
	colls := make([]*Collection, 0, len(e.dense))
	for _, coll := range e.dense {
		colls = append(colls, coll)
	}
	e.mu.RUnlock()

	var vectorCount, tombstoneCount int
	worst := memory.Status{Level: memory.Normal, Recommendation: "healthy"}
	for _, coll := range colls {
		st := coll.Stats()
		vectorCount += st.VectorCount
		tombstoneCount += int(float64(st.VectorCount) * st.TombstoneRatio)

		ps := coll.pressure()
		if ps.Level > worst.Level {
			worst = ps
		}
	}
	return obs.BuildSnapshot(worst, vectorCount, tombstoneCount)
}

// Close closes every collection the engine owns and marks the engine
// closed; further calls fail with ErrEngineClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	for _, coll := range e.dense {
		_ = coll.Close()
	}
	for _, coll := range e.sparse {
		_ = coll.Close()
	}
	e.closed = true
	return nil
}
