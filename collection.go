package edgevec

import (
	"io"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xDarkicex/edgevec/internal/bitmap"
	"github.com/xDarkicex/edgevec/internal/distance"
	"github.com/xDarkicex/edgevec/internal/edvcerr"
	"github.com/xDarkicex/edgevec/internal/filter"
	"github.com/xDarkicex/edgevec/internal/index/flat"
	"github.com/xDarkicex/edgevec/internal/index/hnsw"
	"github.com/xDarkicex/edgevec/internal/memory"
	"github.com/xDarkicex/edgevec/internal/metadata"
	"github.com/xDarkicex/edgevec/internal/obs"
	"github.com/xDarkicex/edgevec/internal/obslog"
	"github.com/xDarkicex/edgevec/internal/quant"
)

// CollectionConfig holds the construction parameters for a dense/binary
// Collection. Sparse vectors go in a SparseCollection (created with
// Engine.CreateSparseCollection, which takes no options), since their shape
// (indices/values pairs over a declared vocabulary) doesn't fit this struct.
type CollectionConfig struct {
	Dimension int
	Metric    Metric
	IndexKind IndexKind

	// HNSW parameters (IndexHNSW only).
	M               int
	M0              int
	EfConstruction  int
	EfSearch        int
	LevelMultiplier float64
	Seed            int64

	// CleanupThreshold is the flat dense index's tombstone-ratio
	// auto-compaction trigger (IndexFlatDense only).
	CleanupThreshold float64

	// BinaryCapacity is the fixed vector capacity (IndexFlatBinary only).
	BinaryCapacity int

	// Memory governor configuration. Zero MemoryCeilingBytes disables it.
	MemoryCeilingBytes     int64
	WarningThreshold       float64
	CriticalThreshold      float64
	AllowInsertsAtCritical bool

	// FilterStrategy is the default strategy QueryBuilder.Execute uses
	// when a query doesn't override it.
	FilterStrategy filter.Strategy
}

func defaultCollectionConfig() CollectionConfig {
	return CollectionConfig{
		Dimension:        768,
		Metric:           distance.Cosine,
		IndexKind:        IndexHNSW,
		M:                16,
		M0:               32,
		EfConstruction:   200,
		EfSearch:         50,
		CleanupThreshold: 0.5,
		BinaryCapacity:   1 << 16,
		FilterStrategy:   filter.StrategyAuto,
	}
}

func (c *CollectionConfig) validate() error {
	if c.Dimension <= 0 {
		return edvcerr.New(edvcerr.CodeInvalidDimensions, "dimension must be positive")
	}
	if c.IndexKind == IndexHNSW {
		if c.M <= 0 || c.M0 <= 0 || c.EfConstruction <= 0 || c.EfSearch <= 0 {
			return edvcerr.New(edvcerr.CodeInvalidDimensions, "HNSW parameters must be positive")
		}
	}
	return nil
}

// Collection is a single named index over equal-dimension dense vectors,
// plus the metadata store describing them. The concrete index family
// (HNSW, flat dense, or flat binary) is fixed at construction by
// CollectionConfig.IndexKind.
type Collection struct {
	mu   sync.RWMutex
	name string
	cfg  CollectionConfig

	graph      *hnsw.Index
	flatDense  *flat.DenseIndex
	flatBinary *flat.BinaryIndex

	meta     *metadata.Store
	governor *memory.Governor
	metrics  *obs.Metrics
	logger   *obslog.Logger
	closed   bool
}

func newCollection(name string, cfg CollectionConfig, metrics *obs.Metrics, logger *obslog.Logger) (*Collection, error) {
	if cfg.LevelMultiplier == 0 {
		m := cfg.M
		if m < 2 {
			m = 2
		}
		cfg.LevelMultiplier = 1.0 / math.Log(float64(m))
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = obslog.NewNop()
	}

	c := &Collection{
		name: name,
		cfg:  cfg,
		meta: metadata.NewStore(),
		governor: memory.New(memory.Config{
			CeilingBytes:           cfg.MemoryCeilingBytes,
			WarningThreshold:       cfg.WarningThreshold,
			CriticalThreshold:      cfg.CriticalThreshold,
			AllowInsertsAtCritical: cfg.AllowInsertsAtCritical,
		}),
		metrics: metrics,
		logger:  logger,
	}

	var err error
	switch cfg.IndexKind {
	case IndexHNSW:
		c.graph, err = hnsw.New(hnsw.Config{
			Dimension:       cfg.Dimension,
			M:               cfg.M,
			M0:              cfg.M0,
			EfConstruction:  cfg.EfConstruction,
			EfSearch:        cfg.EfSearch,
			LevelMultiplier: cfg.LevelMultiplier,
			Metric:          cfg.Metric,
			RandomSeed:      cfg.Seed,
		})
	case IndexFlatDense:
		c.flatDense, err = flat.New(flat.DenseConfig{
			Dimension:        cfg.Dimension,
			Metric:           cfg.Metric,
			CleanupThreshold: cfg.CleanupThreshold,
		})
	case IndexFlatBinary:
		c.flatBinary, err = flat.NewBinary(flat.BinaryConfig{
			Dimension: cfg.Dimension,
			Capacity:  cfg.BinaryCapacity,
		})
	default:
		err = edvcerr.Newf(edvcerr.CodeInvalidDimensions, "unsupported index kind %v", cfg.IndexKind)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("collection created",
		zap.String("name", name),
		zap.String("index_kind", cfg.IndexKind.String()),
		zap.Int("dimension", cfg.Dimension),
	)
	return c, nil
}

type idScore struct {
	id    VectorID
	score float32
}

// Insert adds vector (with optional metadata) to the collection and
// returns its newly assigned id. Insertion is atomic: on any error nothing
// changes.
func (c *Collection) Insert(vector []float32, doc Document) (VectorID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrCollectionClosed
	}
	if err := c.governor.Admit(c.memoryUsageLocked()); err != nil {
		return 0, err
	}
	for field, v := range doc {
		ft, err := metadata.TypeOf(v)
		if err != nil {
			return 0, err
		}
		if existing, ok := c.meta.FieldType(field); ok && existing != ft {
			return 0, edvcerr.Newf(edvcerr.CodeFilterTypeMismatch, "field %q previously typed %s, got %s", field, existing, ft)
		}
	}

	var id VectorID
	var err error
	switch c.cfg.IndexKind {
	case IndexHNSW:
		id, err = c.graph.Insert(vector)
	case IndexFlatDense:
		id, err = c.flatDense.Insert(vector)
	case IndexFlatBinary:
		var raw uint64
		raw, err = c.flatBinary.InsertFloat(vector)
		id = VectorID(raw)
	}
	if err != nil {
		return 0, err
	}

	if len(doc) > 0 {
		if err := c.meta.Put(id, doc); err != nil {
			return 0, err
		}
	}
	if c.metrics != nil {
		c.metrics.VectorInserts.Inc()
	}
	return id, nil
}

// Delete soft-deletes id, returning false if it was already deleted or
// never existed (an idempotent no-op, not an error). For IndexFlatDense,
// crossing the configured cleanup threshold triggers an immediate compact.
func (c *Collection) Delete(id VectorID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}

	var ok bool
	switch c.cfg.IndexKind {
	case IndexHNSW:
		ok = c.graph.Delete(id)
	case IndexFlatDense:
		ok = c.flatDense.Delete(id)
	case IndexFlatBinary:
		ok = c.flatBinary.Delete(uint64(id))
	}
	if ok {
		c.meta.Delete(id)
		if c.metrics != nil {
			c.metrics.VectorDeletes.Inc()
		}
	}
	// Compaction renumbers ids, so it runs only after id's own metadata is gone.
	if ok && c.cfg.IndexKind == IndexFlatDense && c.cfg.CleanupThreshold < 1.0 && c.flatDense.TombstoneRatio() > c.cfg.CleanupThreshold {
		remap := c.flatDense.Compact()
		c.meta.Remap(remap)
		if c.metrics != nil {
			c.metrics.CompactionRuns.Inc()
		}
	}
	return ok
}

// Get returns the vector and metadata stored under id. For IndexFlatBinary
// collections the original float32 vector is not recoverable — only the
// sign-quantised bits were kept — so Get returns a nil vector there; use
// GetPacked for the raw bits.
func (c *Collection) Get(id VectorID) ([]float32, Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, nil, ErrCollectionClosed
	}

	var vec []float32
	var err error
	switch c.cfg.IndexKind {
	case IndexHNSW:
		vec, err = c.graph.Get(id)
	case IndexFlatDense:
		vec, err = c.flatDense.Get(id)
	case IndexFlatBinary:
		_, err = c.flatBinary.Get(uint64(id))
	}
	if err != nil {
		return nil, nil, err
	}
	doc, _ := c.meta.Get(id)
	return vec, doc, nil
}

// GetPacked returns the raw packed bits stored under id in an
// IndexFlatBinary collection.
func (c *Collection) GetPacked(id VectorID) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrCollectionClosed
	}
	if c.cfg.IndexKind != IndexFlatBinary {
		return nil, edvcerr.New(edvcerr.CodeInvalidDimensions, "GetPacked is only valid on an IndexFlatBinary collection")
	}
	return c.flatBinary.Get(uint64(id))
}

// Search runs a k-nearest-neighbour query against vector and returns the
// best k hits, best-first, each carrying its stored metadata.
func (c *Collection) Search(vector []float32, k int) (SearchResults, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return SearchResults{}, ErrCollectionClosed
	}

	start := time.Now()
	pairs, err := c.rawSearchLocked(vector, k, nil)
	if err != nil {
		if c.metrics != nil {
			c.metrics.SearchErrors.Inc()
		}
		return SearchResults{}, err
	}
	took := time.Since(start)
	if c.metrics != nil {
		c.metrics.SearchQueries.Inc()
		c.metrics.SearchLatency.Observe(took.Seconds())
	}
	return SearchResults{Results: c.attachMetadataLocked(pairs), Took: took, Complete: true}, nil
}

// rawSearchLocked runs the configured index's native search, restricted
// to allowed when it is non-nil, and returns bare (id, score) pairs.
// Callers must hold at least a read lock.
func (c *Collection) rawSearchLocked(vector []float32, k int, allowed *bitmap.Set) ([]idScore, error) {
	switch c.cfg.IndexKind {
	case IndexHNSW:
		res, err := c.graph.Search(vector, k, allowed)
		if err != nil {
			return nil, err
		}
		out := make([]idScore, len(res))
		for i, r := range res {
			out[i] = idScore{r.ID, r.Score}
		}
		return out, nil
	case IndexFlatDense:
		res, err := c.flatDense.Search(vector, k, allowed)
		if err != nil {
			return nil, err
		}
		out := make([]idScore, len(res))
		for i, r := range res {
			out[i] = idScore{r.ID, r.Score}
		}
		return out, nil
	case IndexFlatBinary:
		res, err := c.flatBinary.Search(quant.Binarize(vector), k, allowed)
		if err != nil {
			return nil, err
		}
		out := make([]idScore, len(res))
		for i, r := range res {
			out[i] = idScore{VectorID(r.ID), float32(r.Distance)}
		}
		return out, nil
	default:
		return nil, nil
	}
}

func (c *Collection) attachMetadataLocked(pairs []idScore) []SearchResult {
	out := make([]SearchResult, len(pairs))
	for i, p := range pairs {
		doc, _ := c.meta.Get(p.id)
		out[i] = SearchResult{ID: p.id, Score: p.score, Metadata: doc}
	}
	return out
}

// filterSearchFunc adapts rawSearchLocked to the filter package's
// SearchFunc contract for a fixed query vector. Each backend honors
// allowed directly during its own scan/traversal (DenseIndex and
// BinaryIndex skip disallowed ids while scoring every live vector
// anyway; the HNSW graph traverses through disallowed nodes but only
// admits allowed ones to its candidate set), so no disallowed id is ever
// scored then discarded. HNSW's admission is still bounded by ef per
// step, so a very small allowed set relative to ef_search can under-fill
// its candidate set in one pass; requesting a wider k gives it more
// room to recover before Result.Complete reports the shortfall to the
// caller.
func (c *Collection) filterSearchFunc(vector []float32) filter.SearchFunc {
	return func(k int, allowed *bitmap.Set) ([]filter.Candidate, error) {
		n := k
		if allowed != nil && c.cfg.IndexKind == IndexHNSW {
			n = k * 8
			if n < k {
				n = k
			}
		}
		pairs, err := c.rawSearchLocked(vector, n, allowed)
		if err != nil {
			return nil, err
		}
		out := make([]filter.Candidate, 0, k)
		for _, p := range pairs {
			out = append(out, filter.Candidate{ID: p.id, Distance: p.score})
			if len(out) == k {
				break
			}
		}
		return out, nil
	}
}

// Stats reports point-in-time statistics for the collection.
func (c *Collection) Stats() CollectionStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := CollectionStats{Name: c.name, Dimension: c.cfg.Dimension, IndexKind: c.cfg.IndexKind}
	switch c.cfg.IndexKind {
	case IndexHNSW:
		st.VectorCount = c.graph.Len()
	case IndexFlatDense:
		st.VectorCount = c.flatDense.Len()
		st.TombstoneRatio = c.flatDense.TombstoneRatio()
	case IndexFlatBinary:
		st.VectorCount = c.flatBinary.Len()
	}
	st.MemoryUsage = c.memoryUsageLocked()
	return st
}

// pressure reports the collection's current memory-governor status, used
// by Engine.Describe to build an aggregate health snapshot.
func (c *Collection) pressure() memory.Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.governor.Check(c.memoryUsageLocked())
}

func (c *Collection) memoryUsageLocked() int64 {
	switch c.cfg.IndexKind {
	case IndexHNSW:
		return int64(c.graph.Len()) * int64(c.cfg.Dimension) * 4
	case IndexFlatDense:
		return int64(c.flatDense.Len()) * int64(c.cfg.Dimension) * 4
	case IndexFlatBinary:
		return int64(c.flatBinary.Len()) * int64(c.cfg.Dimension/8)
	default:
		return 0
	}
}

// Compact physically reclaims tombstoned storage. For IndexHNSW this
// rebuilds the graph preserving surviving ids; for IndexFlatDense it
// rebuilds the arena and renumbers surviving ids contiguously from 1.
// IndexFlatBinary has fixed capacity and no compaction.
func (c *Collection) Compact() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCollectionClosed
	}

	start := time.Now()
	var err error
	switch c.cfg.IndexKind {
	case IndexHNSW:
		err = c.graph.Compact()
	case IndexFlatDense:
		remap := c.flatDense.Compact()
		c.meta.Remap(remap)
	}
	if err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.CompactionRuns.Inc()
		c.metrics.CompactionLatency.Observe(time.Since(start).Seconds())
	}
	c.logger.Info("collection compacted", zap.String("name", c.name), zap.Duration("took", time.Since(start)))
	return nil
}

// Save writes a framed snapshot of the collection's index followed by its
// metadata store to w.
func (c *Collection) Save(w io.Writer) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var err error
	switch c.cfg.IndexKind {
	case IndexHNSW:
		err = c.graph.Save(w)
	case IndexFlatDense:
		err = c.flatDense.Save(w)
	case IndexFlatBinary:
		err = c.flatBinary.Save(w)
	}
	if err != nil {
		return err
	}
	return c.meta.Save(w)
}

// Load replaces the collection's contents with the snapshot read from r.
func (c *Collection) Load(r io.Reader) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	switch c.cfg.IndexKind {
	case IndexHNSW:
		err = c.graph.Load(r)
	case IndexFlatDense:
		err = c.flatDense.Load(r)
	case IndexFlatBinary:
		err = c.flatBinary.Load(r)
	}
	if err != nil {
		return err
	}
	return c.meta.Load(r)
}

// Close marks the collection closed; further operations fail with
// ErrCollectionClosed. There is no background state to release.
func (c *Collection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
