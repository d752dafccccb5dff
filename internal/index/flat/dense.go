// Package flat implements exact brute-force search over dense f32 vectors
// (DenseIndex) and over packed binary vectors (BinaryIndex).
package flat

import (
	"sort"

	"github.com/xDarkicex/edgevec/internal/bitmap"
	"github.com/xDarkicex/edgevec/internal/distance"
	"github.com/xDarkicex/edgevec/internal/edvcerr"
	"github.com/xDarkicex/edgevec/internal/quant"
	"github.com/xDarkicex/edgevec/internal/util"
	"github.com/xDarkicex/edgevec/internal/vecstore"
)

// DenseConfig configures a DenseIndex.
type DenseConfig struct {
	Dimension int
	Metric    distance.Metric
	// CleanupThreshold is the tombstone ratio that should trigger a
	// caller-driven Compact; the index itself never compacts on its own.
	CleanupThreshold float64
}

// DenseIndex is a brute-force exact top-k index over dense float32
// vectors, with an optional binary-quantised sidecar for accelerated
// approximate screening.
type DenseIndex struct {
	cfg        DenseConfig
	arena      *vecstore.Arena
	tombstones *bitmap.Set
	scoreFn    distance.Func
	sidecar    *quant.Sidecar // nil until EnableQuantization is called; invalidated by Insert/Delete
}

// New returns an empty DenseIndex.
func New(cfg DenseConfig) (*DenseIndex, error) {
	if cfg.Dimension <= 0 {
		return nil, edvcerr.New(edvcerr.CodeInvalidDimensions, "dimension must be positive")
	}
	fn, err := distance.ForMetric(cfg.Metric)
	if err != nil {
		return nil, err
	}
	return &DenseIndex{
		cfg:        cfg,
		arena:      vecstore.NewArena(cfg.Dimension),
		tombstones: bitmap.New(),
		scoreFn:    fn,
	}, nil
}

// Insert appends vector, returning its newly assigned id. Invalidates any
// quantisation sidecar.
func (idx *DenseIndex) Insert(vector []float32) (vecstore.ID, error) {
	if err := idx.arena.Validate(vector); err != nil {
		return 0, err
	}
	slot := idx.arena.Len()
	id := vecstore.ID(slot + 1) // reserve 0 as sentinel consistently across index types
	idx.arena.Append(id, vector)
	idx.sidecar = nil
	return id, nil
}

// Delete soft-deletes id. Returns false if id was already deleted or never
// existed. Invalidates any quantisation sidecar.
func (idx *DenseIndex) Delete(id vecstore.ID) bool {
	slot, ok := idx.arena.Slot(id)
	if !ok {
		return false
	}
	ok = idx.tombstones.Mark(uint32(slot))
	if ok {
		idx.sidecar = nil
	}
	return ok
}

// Get returns the vector stored under id. A deleted id is reported as not
// found.
func (idx *DenseIndex) Get(id vecstore.ID) ([]float32, error) {
	slot, ok := idx.arena.Slot(id)
	if !ok || idx.tombstones.Contains(uint32(slot)) {
		return nil, edvcerr.Newf(edvcerr.CodeIdNotFound, "id %d not found", id)
	}
	return idx.arena.VectorAt(slot), nil
}

// Len returns the number of live vectors.
func (idx *DenseIndex) Len() int {
	return idx.arena.Len() - idx.tombstones.Cardinality()
}

// TombstoneRatio returns the fraction of stored slots that are tombstoned.
func (idx *DenseIndex) TombstoneRatio() float64 {
	if idx.arena.Len() == 0 {
		return 0
	}
	return float64(idx.tombstones.Cardinality()) / float64(idx.arena.Len())
}

// Result is one search hit.
type Result struct {
	ID    vecstore.ID
	Score float32
}

// Search scores every live vector against query under the configured
// metric and returns the best k, best-first. When allowed is non-nil,
// only ids present in allowed are scored against, so restricting the
// candidate set costs nothing beyond the scan already in progress.
// Returns InvalidK for k=0 and an empty result (not an error) for an
// index with zero live vectors.
func (idx *DenseIndex) Search(query []float32, k int, allowed *bitmap.Set) ([]Result, error) {
	if k == 0 {
		return nil, edvcerr.New(edvcerr.CodeInvalidK, "k must be positive")
	}
	if err := idx.arena.Validate(query); err != nil {
		return nil, err
	}
	if idx.Len() == 0 {
		return nil, nil
	}
	higherBetter := idx.cfg.Metric.HigherIsBetter()
	h := util.NewMaxHeap(k)
	for slot := 0; slot < idx.arena.Len(); slot++ {
		if idx.tombstones.Contains(uint32(slot)) {
			continue
		}
		id := idx.arena.IDAt(slot)
		if allowed != nil && !allowed.Contains(uint32(id)) {
			continue
		}
		score, err := idx.scoreFn(query, idx.arena.VectorAt(slot))
		if err != nil {
			return nil, err
		}
		// util.MaxHeap always keeps the k smallest "Distance"; for
		// similarity metrics (higher is better) store the negated score so
		// the heap's bounded eviction still keeps the best k.
		d := score
		if higherBetter {
			d = -score
		}
		h.PushBounded(&util.Candidate{ID: uint64(id), Distance: d}, k)
	}
	sorted := h.Sorted()
	out := make([]Result, len(sorted))
	for i, c := range sorted {
		s := c.Distance
		if higherBetter {
			s = -s
		}
		out[i] = Result{ID: vecstore.ID(c.ID), Score: s}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			if higherBetter {
				return out[i].Score > out[j].Score
			}
			return out[i].Score < out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// EnableQuantization builds a binary-quantised sidecar over every live
// vector. Subsequent inserts or deletes invalidate it; the caller must
// call EnableQuantization again to rebuild.
func (idx *DenseIndex) EnableQuantization() error {
	vectors := make([][]float32, 0, idx.Len())
	for slot := 0; slot < idx.arena.Len(); slot++ {
		if idx.tombstones.Contains(uint32(slot)) {
			continue
		}
		vectors = append(vectors, idx.arena.VectorAt(slot))
	}
	sc := quant.NewSidecar(idx.cfg.Dimension)
	if err := sc.Build(vectors); err != nil {
		return err
	}
	idx.sidecar = sc
	return nil
}

// SearchQuantized computes Hamming distance between the binarised query
// and each live vector's sidecar bits, returning the best k (lowest
// Hamming distance first). Returns QuantizationNotEnabled if
// EnableQuantization has not been called since the last mutation.
func (idx *DenseIndex) SearchQuantized(query []float32, k int) ([]Result, error) {
	if idx.sidecar == nil {
		return nil, edvcerr.New(edvcerr.CodeQuantizationDisabled, "quantized search called before EnableQuantization")
	}
	if k == 0 {
		return nil, edvcerr.New(edvcerr.CodeInvalidK, "k must be positive")
	}
	if err := idx.arena.Validate(query); err != nil {
		return nil, err
	}
	qbits := quant.Binarize(query)
	h := util.NewMaxHeap(k)
	sidecarSlot := 0
	for slot := 0; slot < idx.arena.Len(); slot++ {
		if idx.tombstones.Contains(uint32(slot)) {
			continue
		}
		d, err := distance.HammingBits(qbits, idx.sidecar.At(sidecarSlot))
		sidecarSlot++
		if err != nil {
			return nil, err
		}
		id := idx.arena.IDAt(slot)
		h.PushBounded(&util.Candidate{ID: uint64(id), Distance: float32(d)}, k)
	}
	sorted := h.Sorted()
	out := make([]Result, len(sorted))
	for i, c := range sorted {
		out[i] = Result{ID: vecstore.ID(c.ID), Score: c.Distance}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Compact rebuilds the index from its live vectors into a fresh arena,
// physically discarding tombstoned slots and resetting the tombstone
// ratio to zero. Unlike the HNSW graph, a flat index's ids are purely a
// function of arena position (id = slot+1), so compaction renumbers
// surviving vectors contiguously from 1 rather than preserving their old
// ids — there is no routing structure whose correctness depends on a
// vector keeping the id it was inserted under. The returned map lets a
// caller that keeps its own id-keyed side state (metadata, external
// references) carry it over to the new ids.
func (idx *DenseIndex) Compact() map[vecstore.ID]vecstore.ID {
	fresh := vecstore.NewArena(idx.cfg.Dimension)
	remap := make(map[vecstore.ID]vecstore.ID)
	for slot := 0; slot < idx.arena.Len(); slot++ {
		if idx.tombstones.Contains(uint32(slot)) {
			continue
		}
		oldID := idx.arena.IDAt(slot)
		newID := vecstore.ID(fresh.Len() + 1)
		fresh.Append(newID, idx.arena.VectorAt(slot))
		remap[oldID] = newID
	}
	idx.arena = fresh
	idx.tombstones = bitmap.New()
	idx.sidecar = nil
	return remap
}
