package edgevec

import (
	"fmt"
	"time"

	"github.com/xDarkicex/edgevec/internal/edvcerr"
	"github.com/xDarkicex/edgevec/internal/filter"
)

// QueryBuilder provides a fluent interface for a vector search optionally
// narrowed by a metadata filter expression.
type QueryBuilder struct {
	collection  *Collection
	vector      []float32
	filterSrc   string
	strategy    filter.Strategy
	strategySet bool
	limit       int
	threshold   float32
}

// Query returns a new QueryBuilder for the collection.
func (c *Collection) Query() *QueryBuilder {
	return &QueryBuilder{collection: c, limit: 10}
}

// WithVector sets the query vector.
func (qb *QueryBuilder) WithVector(vector []float32) *QueryBuilder {
	qb.vector = append([]float32(nil), vector...)
	return qb
}

// WithFilter sets a metadata filter expression in the grammar described by
// the filter package (e.g. `genre = "scifi" AND year >= 2000`).
func (qb *QueryBuilder) WithFilter(expr string) *QueryBuilder {
	qb.filterSrc = expr
	return qb
}

// WithStrategy overrides the collection's default filter execution
// strategy for this query.
func (qb *QueryBuilder) WithStrategy(strategy filter.Strategy) *QueryBuilder {
	qb.strategy = strategy
	qb.strategySet = true
	return qb
}

// Limit sets the maximum number of results to return.
func (qb *QueryBuilder) Limit(k int) *QueryBuilder {
	qb.limit = k
	return qb
}

// WithThreshold drops results scoring below threshold.
func (qb *QueryBuilder) WithThreshold(threshold float32) *QueryBuilder {
	qb.threshold = threshold
	return qb
}

// Execute runs the query and returns its results.
func (qb *QueryBuilder) Execute() (SearchResults, error) {
	if qb.vector == nil {
		return SearchResults{}, fmt.Errorf("edgevec: query vector is required")
	}
	if qb.limit <= 0 {
		return SearchResults{}, edvcerr.New(edvcerr.CodeInvalidK, "limit must be positive")
	}

	c := qb.collection
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return SearchResults{}, ErrCollectionClosed
	}

	start := time.Now()

	if qb.filterSrc == "" {
		pairs, err := c.rawSearchLocked(qb.vector, qb.limit, nil)
		if err != nil {
			return SearchResults{}, err
		}
		results := applyThreshold(c.attachMetadataLocked(pairs), qb.threshold)
		return SearchResults{Results: results, Took: time.Since(start), Complete: true}, nil
	}

	expr, err := filter.Parse(qb.filterSrc)
	if err != nil {
		return SearchResults{}, err
	}

	strategy := c.cfg.FilterStrategy
	if qb.strategySet {
		strategy = qb.strategy
	}
	if c.cfg.IndexKind == IndexFlatBinary {
		// Post-filter and hybrid cannot guarantee top-k over the coarse
		// Hamming candidate set, so binary + filter always forces pre.
		strategy = filter.StrategyPre
	}

	res, err := filter.Execute(expr, c.meta, qb.limit, strategy, c.filterSearchFunc(qb.vector))
	if err != nil {
		return SearchResults{}, err
	}

	out := make([]SearchResult, len(res.Candidates))
	for i, cand := range res.Candidates {
		doc, _ := c.meta.Get(cand.ID)
		out[i] = SearchResult{ID: cand.ID, Score: cand.Distance, Metadata: doc}
	}
	out = applyThreshold(out, qb.threshold)
	return SearchResults{Results: out, Took: time.Since(start), Complete: res.Complete}, nil
}

func applyThreshold(results []SearchResult, threshold float32) []SearchResult {
	if threshold == 0 {
		return results
	}
	out := results[:0]
	for _, r := range results {
		if r.Score >= threshold {
			out = append(out, r)
		}
	}
	return out
}
