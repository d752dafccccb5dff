// Package bitmap provides the tombstone and live-id tracking used by every
// index type. Soft-deletion is the spec's delete semantics: an id is marked
// rather than physically removed, and survives until the owning index is
// compacted.
package bitmap

import "github.com/RoaringBitmap/roaring/v2"

// Set is a compact, mutable set of uint32 ids backed by a Roaring bitmap.
// VectorId is a uint64 engine-wide, but any single index's internal dense
// slot indices fit in uint32, which is what Set tracks.
type Set struct {
	bm *roaring.Bitmap
}

// New returns an empty Set.
func New() *Set {
	return &Set{bm: roaring.New()}
}

// Mark adds id to the set. Returns true if id was not already present.
func (s *Set) Mark(id uint32) bool {
	return s.bm.CheckedAdd(id)
}

// Unmark removes id from the set. Returns true if id was present.
func (s *Set) Unmark(id uint32) bool {
	return s.bm.CheckedRemove(id)
}

// Contains reports whether id is in the set.
func (s *Set) Contains(id uint32) bool {
	return s.bm.Contains(id)
}

// Cardinality returns the number of ids currently in the set.
func (s *Set) Cardinality() int {
	return int(s.bm.GetCardinality())
}

// Clear empties the set in place.
func (s *Set) Clear() {
	s.bm.Clear()
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	return &Set{bm: s.bm.Clone()}
}

// ToArray returns the sorted ids in the set.
func (s *Set) ToArray() []uint32 {
	return s.bm.ToArray()
}

// And returns a new Set containing the intersection of s and other.
func (s *Set) And(other *Set) *Set {
	return &Set{bm: roaring.And(s.bm, other.bm)}
}

// Or returns a new Set containing the union of s and other.
func (s *Set) Or(other *Set) *Set {
	return &Set{bm: roaring.Or(s.bm, other.bm)}
}

// AndNot returns a new Set containing ids in s but not in other — used to
// compute "live" ids as (all ids) AndNot (tombstones).
func (s *Set) AndNot(other *Set) *Set {
	return &Set{bm: roaring.AndNot(s.bm, other.bm)}
}

// MarshalBinary serializes the set using roaring's compact on-disk format,
// used by every index's tombstone block in its snapshot.
func (s *Set) MarshalBinary() ([]byte, error) {
	return s.bm.MarshalBinary()
}

// UnmarshalBinary replaces s's contents with the set encoded in data.
func (s *Set) UnmarshalBinary(data []byte) error {
	if s.bm == nil {
		s.bm = roaring.New()
	}
	return s.bm.UnmarshalBinary(data)
}

// FromBytes decodes a Set previously produced by MarshalBinary.
func FromBytes(data []byte) (*Set, error) {
	s := New()
	if err := s.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return s, nil
}
