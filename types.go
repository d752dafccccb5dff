// Package edgevec is an embedded vector search engine for memory-constrained
// environments. It indexes dense float32 vectors (via HNSW or a brute-force
// flat scan), sign-quantised binary vectors, and sparse vectors, filters
// results by a metadata query language, and fuses dense and sparse result
// lists via reciprocal-rank or linear combination. Every public call runs to
// completion synchronously on the calling goroutine — there is no
// background compaction, no retry machinery, and no host-side persistence
// backend; callers that need durability hand EdgeVec an io.Writer/io.Reader
// and own the bytes themselves.
package edgevec

import (
	"time"

	"github.com/xDarkicex/edgevec/internal/distance"
	"github.com/xDarkicex/edgevec/internal/memory"
	"github.com/xDarkicex/edgevec/internal/metadata"
	"github.com/xDarkicex/edgevec/internal/obs"
	"github.com/xDarkicex/edgevec/internal/vecstore"
)

// VectorID is the engine-assigned, monotonic identifier for a stored
// vector. Delete alone never recycles an id into a later insert. The
// exception is IndexFlatDense compaction (explicit or automatic), which
// renumbers the surviving vectors contiguously from 1; afterwards new
// inserts continue from the compacted count, so an id that belonged to a
// vector before the compaction can be assigned again.
type VectorID = vecstore.ID

// Metric selects the distance or similarity kernel an index scores with.
type Metric = distance.Metric

// The four supported metrics. Cosine and InnerProduct are similarities
// (higher scores rank better); Euclidean and Hamming are distances (lower
// scores rank better).
const (
	Cosine       = distance.Cosine
	InnerProduct = distance.InnerProduct
	Euclidean    = distance.Euclidean
	Hamming      = distance.Hamming
)

// IndexKind selects which index family backs a Collection.
type IndexKind int

const (
	// IndexHNSW builds an approximate nearest-neighbour graph. Best for
	// large collections where O(log n) search matters more than exactness.
	IndexHNSW IndexKind = iota
	// IndexFlatDense does an exact brute-force scan. Simple, exact, and
	// competitive with HNSW up to tens of thousands of vectors; supports an
	// optional binary-quantisation search sidecar.
	IndexFlatDense
	// IndexFlatBinary stores sign-quantised packed bits at fixed capacity
	// and scores by Hamming distance. Most memory-efficient of the three.
	IndexFlatBinary
)

func (k IndexKind) String() string {
	switch k {
	case IndexHNSW:
		return "hnsw"
	case IndexFlatDense:
		return "flat_dense"
	case IndexFlatBinary:
		return "flat_binary"
	default:
		return "unknown"
	}
}

// Document is a metadata record attached to a vector: string keys mapped to
// one of string, int64, float64, bool, or []string. Field types are fixed
// by the first document that sets them — inserting a different concrete
// type under an existing field name is a validation error.
type Document = metadata.Document

// SearchResult is a single scored hit from a vector or filtered search.
type SearchResult struct {
	ID       VectorID
	Score    float32
	Metadata Document
}

// SearchResults is the response to a Collection.Search or QueryBuilder.Execute call.
type SearchResults struct {
	Results []SearchResult
	Took    time.Duration
	// Complete is false when a post-filter or hybrid filter strategy
	// exhausted its oversampled candidate pool before finding enough
	// live, filter-passing results. A caller that sees Complete == false
	// may choose to retry with a wider oversample or a larger k.
	Complete bool
}

// CollectionStats reports point-in-time statistics for one collection.
type CollectionStats struct {
	Name           string
	Dimension      int
	IndexKind      IndexKind
	VectorCount    int
	TombstoneCount int
	TombstoneRatio float64
	MemoryUsage    int64
}

// EngineStats aggregates statistics across every collection an Engine owns.
type EngineStats struct {
	CollectionCount int
	Collections     map[string]CollectionStats
	MemoryUsage     int64
}

// HealthSnapshot reports the engine's current memory pressure, useful for a
// boundary adapter to surface state to its host without exposing internals.
type HealthSnapshot = obs.Snapshot

// PressureLevel re-exports the memory governor's pressure band so callers
// don't need to import internal/memory directly.
type PressureLevel = memory.Level

const (
	PressureNormal   = memory.Normal
	PressureWarning  = memory.Warning
	PressureCritical = memory.Critical
)
