package sparse

import (
	"sort"

	"github.com/xDarkicex/edgevec/internal/bitmap"
	"github.com/xDarkicex/edgevec/internal/edvcerr"
	"github.com/xDarkicex/edgevec/internal/util"
	"github.com/xDarkicex/edgevec/internal/vecstore"
)

// Storage holds every inserted sparse vector in a packed CSR-style layout:
// a shared values/indices pool and a per-vector offset range into it, plus
// a per-vector declared dimension (vocabularies may differ across
// vectors). Deletion is soft: a tombstone bit, never a compaction — v1
// documents this as a permanent-growth limitation rather than implementing
// sparse compaction.
type Storage struct {
	alloc      *vecstore.Allocator
	values     []float32
	indices    []uint32
	offsets    []uint32 // len == slots+1; slot i occupies [offsets[i], offsets[i+1])
	dims       []int
	slotToID   []vecstore.ID
	idToSlot   map[vecstore.ID]int
	tombstones *bitmap.Set
}

// New returns an empty sparse storage.
func New() *Storage {
	return &Storage{
		alloc:      vecstore.NewAllocator(),
		offsets:    []uint32{0},
		idToSlot:   make(map[vecstore.ID]int),
		tombstones: bitmap.New(),
	}
}

// Insert validates v and appends it, returning the newly assigned id.
func (s *Storage) Insert(v *Vector) (vecstore.ID, error) {
	if err := v.Validate(); err != nil {
		return 0, err
	}
	id := s.alloc.Next()
	slot := len(s.dims)
	s.values = append(s.values, v.Values...)
	s.indices = append(s.indices, v.Indices...)
	s.offsets = append(s.offsets, uint32(len(s.indices)))
	s.dims = append(s.dims, v.Dim)
	s.slotToID = append(s.slotToID, id)
	s.idToSlot[id] = slot
	return id, nil
}

// Get reconstructs the vector stored under id. The returned slices are
// zero-copy views into the storage's backing pools and must not be
// mutated. A deleted id is reported as not found.
func (s *Storage) Get(id vecstore.ID) (*Vector, error) {
	slot, ok := s.idToSlot[id]
	if !ok || s.tombstones.Contains(uint32(slot)) {
		return nil, edvcerr.Newf(edvcerr.CodeIdNotFound, "id %d not found", id)
	}
	start, end := s.offsets[slot], s.offsets[slot+1]
	return &Vector{
		Dim:     s.dims[slot],
		Indices: s.indices[start:end],
		Values:  s.values[start:end],
	}, nil
}

// Delete soft-deletes id. Returns false if id was already deleted or never
// existed (idempotent, not an error).
func (s *Storage) Delete(id vecstore.ID) bool {
	slot, ok := s.idToSlot[id]
	if !ok {
		return false
	}
	return s.tombstones.Mark(uint32(slot))
}

// Len returns the number of live (non-tombstoned) vectors.
func (s *Storage) Len() int {
	return len(s.dims) - s.tombstones.Cardinality()
}

// Result is one sparse search hit.
type Result struct {
	ID    vecstore.ID
	Score float32
}

// Search computes the dot product of query against every live vector and
// returns the top k by descending score, excluding vectors with zero
// overlap (score == 0). Ties break by ascending id. Returns empty for k=0
// or empty storage.
func (s *Storage) Search(query *Vector, k int) ([]Result, error) {
	if k == 0 || len(s.dims) == 0 {
		return nil, nil
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}
	h := util.NewMaxHeap(k)
	for slot := 0; slot < len(s.dims); slot++ {
		if s.tombstones.Contains(uint32(slot)) {
			continue
		}
		start, end := s.offsets[slot], s.offsets[slot+1]
		cand := &Vector{Dim: s.dims[slot], Indices: s.indices[start:end], Values: s.values[start:end]}
		score := Dot(query, cand)
		if score == 0 {
			continue
		}
		id := s.slotToID[slot]
		// MaxHeap keeps the k smallest Distance; negate score so "smallest
		// distance" means "highest score".
		h.PushBounded(&util.Candidate{ID: uint64(id), Distance: -score}, k)
	}
	sorted := h.Sorted()
	out := make([]Result, len(sorted))
	for i, c := range sorted {
		out[i] = Result{ID: vecstore.ID(c.ID), Score: -c.Distance}
	}
	// Sorted() already orders ascending Distance (= descending score); break
	// remaining score ties by ascending id for a total order.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
