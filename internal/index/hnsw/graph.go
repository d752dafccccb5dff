// Package hnsw implements the Hierarchical Navigable Small World graph
// index: approximate nearest-neighbor search over dense float32 vectors
// via greedy best-first traversal of a multi-layer proximity graph built
// incrementally as vectors are inserted.
package hnsw

import (
	"math"
	"math/rand"

	"github.com/xDarkicex/edgevec/internal/bitmap"
	"github.com/xDarkicex/edgevec/internal/distance"
	"github.com/xDarkicex/edgevec/internal/edvcerr"
	"github.com/xDarkicex/edgevec/internal/util"
	"github.com/xDarkicex/edgevec/internal/vecstore"
)

// Index is a single HNSW graph. It is not safe for concurrent use; callers
// needing concurrent access must serialize at a higher layer, matching the
// engine's single-threaded, no-internal-scheduler concurrency model.
type Index struct {
	cfg          Config
	arena        *vecstore.Arena
	alloc        *vecstore.Allocator
	scoreFn      distance.Func
	higherBetter bool
	rng          *rand.Rand

	nodes      []*node // parallel to arena slots
	tombstones *bitmap.Set
	entrySlot  int // -1 when the graph is empty
	maxLevel   int
}

// New returns an empty HNSW index.
func New(cfg Config) (*Index, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	fn, err := distance.ForMetric(cfg.Metric)
	if err != nil {
		return nil, err
	}
	return &Index{
		cfg:          cfg,
		arena:        vecstore.NewArena(cfg.Dimension),
		alloc:        vecstore.NewAllocator(),
		scoreFn:      fn,
		higherBetter: cfg.Metric.HigherIsBetter(),
		rng:          rand.New(rand.NewSource(cfg.RandomSeed)),
		tombstones:   bitmap.New(),
		entrySlot:    -1,
		maxLevel:     -1,
	}, nil
}

// Len returns the number of live (non-tombstoned) vectors.
func (idx *Index) Len() int {
	return idx.arena.Len() - idx.tombstones.Cardinality()
}

// Dimension returns the configured vector dimension.
func (idx *Index) Dimension() int {
	return idx.cfg.Dimension
}

// score returns the raw metric score between two vectors.
func (idx *Index) score(a, b []float32) (float32, error) {
	return idx.scoreFn(a, b)
}

// internalDistance returns a score in "lower is better" space regardless
// of the configured metric, so every graph-traversal routine can share one
// comparison direction. Output-facing scores are converted back with
// externalScore.
func (idx *Index) internalDistance(a, b []float32) (float32, error) {
	s, err := idx.scoreFn(a, b)
	if err != nil {
		return 0, err
	}
	if idx.higherBetter {
		return -s, nil
	}
	return s, nil
}

func (idx *Index) externalScore(internal float32) float32 {
	if idx.higherBetter {
		return -internal
	}
	return internal
}

// generateLevel draws a node's maximum level via the standard HNSW
// exponential-decay formula: level = floor(-ln(u) * LevelMultiplier), u
// uniform in (0, 1). Capped at 32 as a sanity bound against a
// pathologically small LevelMultiplier.
func (idx *Index) generateLevel() int {
	u := idx.rng.Float64()
	for u == 0 {
		u = idx.rng.Float64()
	}
	level := int(math.Floor(-math.Log(u) * idx.cfg.LevelMultiplier))
	if level > 32 {
		level = 32
	}
	return level
}

func (idx *Index) maxMForLevel(level int) int {
	if level == 0 {
		return idx.cfg.M0
	}
	return idx.cfg.M
}

// Get returns the vector stored under id.
func (idx *Index) Get(id vecstore.ID) ([]float32, error) {
	v, ok := idx.arena.Get(id)
	if !ok {
		return nil, edvcerr.Newf(edvcerr.CodeIdNotFound, "id %d not found", id)
	}
	return v, nil
}

func (idx *Index) candidatesFromSlots(query []float32, slots []int) ([]*util.Candidate, error) {
	out := make([]*util.Candidate, 0, len(slots))
	for _, s := range slots {
		d, err := idx.internalDistance(query, idx.arena.VectorAt(s))
		if err != nil {
			return nil, err
		}
		out = append(out, &util.Candidate{ID: uint64(s), Distance: d})
	}
	return out, nil
}
