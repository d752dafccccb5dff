package flat

import (
	"sort"

	"github.com/xDarkicex/edgevec/internal/bitmap"
	"github.com/xDarkicex/edgevec/internal/distance"
	"github.com/xDarkicex/edgevec/internal/edvcerr"
	"github.com/xDarkicex/edgevec/internal/quant"
)

// BinaryConfig configures a BinaryIndex.
type BinaryConfig struct {
	Dimension int // in bits; must be a multiple of 8
	Capacity  int // maximum number of vectors the index can hold
}

// BinaryIndex is a fixed-capacity brute-force index over packed-bit
// vectors, scored by Hamming distance. Unlike DenseIndex it pre-allocates
// its full backing storage up front and reports CapacityOverflow instead
// of growing, making its memory footprint exactly predictable: ids are
// 1-based (0 is reserved as the empty-slot sentinel) and the serialized
// size of n stored vectors is 8 + n*(Dimension/8) bytes.
type BinaryIndex struct {
	dim        int
	bytesPerV  int
	capacity   int
	data       []byte // capacity * bytesPerV, slot-major
	count      int
	tombstones *bitmap.Set
}

// NewBinary returns an empty BinaryIndex. Dimension must be a positive
// multiple of 8.
func NewBinary(cfg BinaryConfig) (*BinaryIndex, error) {
	if cfg.Dimension <= 0 || cfg.Dimension%8 != 0 {
		return nil, edvcerr.New(edvcerr.CodeInvalidDimensions, "binary index dimension must be a positive multiple of 8")
	}
	if cfg.Capacity <= 0 {
		return nil, edvcerr.New(edvcerr.CodeInvalidDimensions, "binary index capacity must be positive")
	}
	bpv := cfg.Dimension / 8
	return &BinaryIndex{
		dim:        cfg.Dimension,
		bytesPerV:  bpv,
		capacity:   cfg.Capacity,
		data:       make([]byte, cfg.Capacity*bpv),
		tombstones: bitmap.New(),
	}, nil
}

// Insert stores packed, already-binarised bits and returns the new
// 1-based id. Returns CapacityOverflow once Capacity slots are filled,
// even if some of those slots are tombstoned — v1 never reclaims
// tombstoned slots.
func (idx *BinaryIndex) Insert(packed []byte) (uint64, error) {
	if len(packed) != idx.bytesPerV {
		return 0, edvcerr.Newf(edvcerr.CodeDimensionMismatch, "expected %d packed bytes, got %d", idx.bytesPerV, len(packed))
	}
	if idx.count >= idx.capacity {
		return 0, edvcerr.Newf(edvcerr.CodeCapacityOverflow, "binary index capacity %d exhausted", idx.capacity)
	}
	slot := idx.count
	idx.count++
	copy(idx.data[slot*idx.bytesPerV:(slot+1)*idx.bytesPerV], packed)
	return uint64(slot + 1), nil
}

// InsertFloat binarises vector via sign quantisation and inserts it.
func (idx *BinaryIndex) InsertFloat(vector []float32) (uint64, error) {
	if len(vector) != idx.dim {
		return 0, edvcerr.Newf(edvcerr.CodeDimensionMismatch, "expected dimension %d, got %d", idx.dim, len(vector))
	}
	return idx.Insert(quant.Binarize(vector))
}

func (idx *BinaryIndex) slotFor(id uint64) (int, bool) {
	if id == 0 || id > uint64(idx.count) {
		return 0, false
	}
	slot := int(id) - 1
	if idx.tombstones.Contains(uint32(slot)) {
		return 0, false
	}
	return slot, true
}

// Get returns the packed bits stored under id.
func (idx *BinaryIndex) Get(id uint64) ([]byte, error) {
	slot, ok := idx.slotFor(id)
	if !ok {
		return nil, edvcerr.Newf(edvcerr.CodeIdNotFound, "id %d not found", id)
	}
	return idx.data[slot*idx.bytesPerV : (slot+1)*idx.bytesPerV], nil
}

// Delete soft-deletes id. Returns false if id was already deleted, never
// assigned, or out of range.
func (idx *BinaryIndex) Delete(id uint64) bool {
	slot, ok := idx.slotFor(id)
	if !ok {
		return false
	}
	return idx.tombstones.Mark(uint32(slot))
}

// Len returns the number of live vectors.
func (idx *BinaryIndex) Len() int {
	return idx.count - idx.tombstones.Cardinality()
}

// SerializedSize returns the nominal serialized size of the stored
// vectors: an 8-byte header plus Dimension/8 bytes per stored vector
// (tombstoned slots still occupy physical space in v1, which never
// compacts). It is not the byte length Save writes, which adds the
// snapshot preamble, CBOR header, tombstone bitmap and checksum.
func (idx *BinaryIndex) SerializedSize() int64 {
	return 8 + int64(idx.count)*int64(idx.bytesPerV)
}

// BinaryResult is one Hamming search hit.
type BinaryResult struct {
	ID       uint64
	Distance uint32
}

// Search scans every live vector and returns the k closest by Hamming
// distance, ascending (best first). When allowed is non-nil, only ids
// present in it are scored, at no extra cost beyond the scan already in
// progress.
func (idx *BinaryIndex) Search(query []byte, k int, allowed *bitmap.Set) ([]BinaryResult, error) {
	if k == 0 {
		return nil, edvcerr.New(edvcerr.CodeInvalidK, "k must be positive")
	}
	if len(query) != idx.bytesPerV {
		return nil, edvcerr.Newf(edvcerr.CodeDimensionMismatch, "expected %d packed bytes, got %d", idx.bytesPerV, len(query))
	}
	type hit struct {
		id uint64
		d  uint32
	}
	hits := make([]hit, 0, idx.count)
	for slot := 0; slot < idx.count; slot++ {
		if idx.tombstones.Contains(uint32(slot)) {
			continue
		}
		id := uint64(slot + 1)
		if allowed != nil && !allowed.Contains(uint32(id)) {
			continue
		}
		d, err := distance.HammingBits(query, idx.data[slot*idx.bytesPerV:(slot+1)*idx.bytesPerV])
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit{id: id, d: d})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].d != hits[j].d {
			return hits[i].d < hits[j].d
		}
		return hits[i].id < hits[j].id
	})
	if k > len(hits) {
		k = len(hits)
	}
	out := make([]BinaryResult, k)
	for i := 0; i < k; i++ {
		out[i] = BinaryResult{ID: hits[i].id, Distance: hits[i].d}
	}
	return out, nil
}

// SearchFloat binarises query and searches.
func (idx *BinaryIndex) SearchFloat(vector []float32, k int, allowed *bitmap.Set) ([]BinaryResult, error) {
	if len(vector) != idx.dim {
		return nil, edvcerr.Newf(edvcerr.CodeDimensionMismatch, "expected dimension %d, got %d", idx.dim, len(vector))
	}
	return idx.Search(quant.Binarize(vector), k, allowed)
}
