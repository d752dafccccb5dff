package edgevec

import (
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xDarkicex/edgevec/internal/metadata"
	"github.com/xDarkicex/edgevec/internal/obs"
	"github.com/xDarkicex/edgevec/internal/obslog"
	"github.com/xDarkicex/edgevec/internal/sparse"
)

// SparseVector is a sparse vector over a declared vocabulary: Indices must
// be strictly ascending and in [0, Dim).
type SparseVector = sparse.Vector

// SparseCollection indexes sparse vectors (bag-of-words/TF-IDF style
// representations) by dot-product overlap. Unlike Collection, it does not
// support compaction: deletion is a permanent tombstone, since the
// underlying packed CSR storage has no natural unit to shrink without
// rewriting every vector after the deleted one.
type SparseCollection struct {
	mu      sync.RWMutex
	name    string
	storage *sparse.Storage
	meta    *metadata.Store
	metrics *obs.Metrics
	logger  *obslog.Logger
	closed  bool
}

func newSparseCollection(name string, metrics *obs.Metrics, logger *obslog.Logger) *SparseCollection {
	if logger == nil {
		logger = obslog.NewNop()
	}
	logger.Info("sparse collection created", zap.String("name", name))
	return &SparseCollection{
		name:    name,
		storage: sparse.New(),
		meta:    metadata.NewStore(),
		metrics: metrics,
		logger:  logger,
	}
}

// Insert adds vector (with optional metadata) to the collection and
// returns its newly assigned id.
func (c *SparseCollection) Insert(vector *SparseVector, doc Document) (VectorID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrCollectionClosed
	}

	id, err := c.storage.Insert(vector)
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
// never existed.
func (c *SparseCollection) Delete(id VectorID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	ok := c.storage.Delete(id)
	if ok {
		c.meta.Delete(id)
		if c.metrics != nil {
			c.metrics.VectorDeletes.Inc()
		}
	}
	return ok
}

// Get returns the vector and metadata stored under id.
func (c *SparseCollection) Get(id VectorID) (*SparseVector, Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, nil, ErrCollectionClosed
	}
	vec, err := c.storage.Get(id)
	if err != nil {
		return nil, nil, err
	}
	doc, _ := c.meta.Get(id)
	return vec, doc, nil
}

// Search runs a dot-product nearest-neighbour query and returns the best k
// hits, best-first, each carrying its stored metadata.
func (c *SparseCollection) Search(vector *SparseVector, k int) (SearchResults, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return SearchResults{}, ErrCollectionClosed
	}

	start := time.Now()
	res, err := c.storage.Search(vector, k)
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

	out := make([]SearchResult, len(res))
	for i, r := range res {
		doc, _ := c.meta.Get(r.ID)
		out[i] = SearchResult{ID: r.ID, Score: r.Score, Metadata: doc}
	}
	return SearchResults{Results: out, Took: took, Complete: true}, nil
}

// Stats reports point-in-time statistics for the collection.
func (c *SparseCollection) Stats() CollectionStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CollectionStats{Name: c.name, VectorCount: c.storage.Len()}
}

// Save writes a framed snapshot of the collection's storage followed by its
// metadata store to w.
func (c *SparseCollection) Save(w io.Writer) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.storage.Save(w); err != nil {
		return err
	}
	return c.meta.Save(w)
}

// Load replaces the collection's contents with the snapshot read from r.
func (c *SparseCollection) Load(r io.Reader) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.storage.Load(r); err != nil {
		return err
	}
	return c.meta.Load(r)
}

// Close marks the collection closed; further operations fail with
// ErrCollectionClosed.
func (c *SparseCollection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
