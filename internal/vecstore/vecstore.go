// Package vecstore provides the engine-assigned vector id allocator and the
// dense in-memory vector arena shared by the flat and HNSW indices.
package vecstore

import "github.com/xDarkicex/edgevec/internal/edvcerr"

// ID is an engine-assigned vector identifier. IDs are allocated as a
// monotonic counter starting at 1 in insertion order — 0 is reserved as a
// sentinel (notably used by the binary flat index to mark an empty slot).
// Because allocation is a pure function of insertion order, two engines
// fed the same insert sequence assign identical ids: this is what makes
// HNSW construction deterministic given the same seed.
type ID uint64

// Reserved is the sentinel id value, never assigned to a real vector.
const Reserved ID = 0

// Allocator hands out monotonically increasing ids.
type Allocator struct {
	next ID
}

// NewAllocator returns an Allocator that will hand out ids starting at 1.
func NewAllocator() *Allocator {
	return &Allocator{next: 1}
}

// Next returns the next id and advances the counter.
func (a *Allocator) Next() ID {
	id := a.next
	a.next++
	return id
}

// Peek returns the id that would be returned by the next call to Next,
// without consuming it.
func (a *Allocator) Peek() ID {
	return a.next
}

// Restore resets the allocator to resume after the given highest-assigned
// id, used when rehydrating from a snapshot.
func (a *Allocator) Restore(highestAssigned ID) {
	a.next = highestAssigned + 1
}

// Arena is a dense, append-only store of float32 vectors indexed by a
// compact slot number. It never shrinks: deletion is handled by the owning
// index's tombstone bitmap, and a slot is only reclaimed when the index is
// compacted and a fresh Arena is built.
type Arena struct {
	dimension int
	slots     [][]float32
	slotToID  []ID
	idToSlot  map[ID]int
}

// NewArena returns an empty Arena for vectors of the given dimension.
func NewArena(dimension int) *Arena {
	return &Arena{
		dimension: dimension,
		idToSlot:  make(map[ID]int),
	}
}

func (a *Arena) Dimension() int { return a.dimension }
func (a *Arena) Len() int       { return len(a.slots) }

// Append stores vector under id, returning its dense slot index. The
// caller must have already validated len(vector) == a.dimension.
func (a *Arena) Append(id ID, vector []float32) int {
	slot := len(a.slots)
	cp := make([]float32, len(vector))
	copy(cp, vector)
	a.slots = append(a.slots, cp)
	a.slotToID = append(a.slotToID, id)
	a.idToSlot[id] = slot
	return slot
}

// Validate returns an error if vector's dimension does not match the arena.
func (a *Arena) Validate(vector []float32) error {
	if len(vector) != a.dimension {
		return edvcerr.Newf(edvcerr.CodeDimensionMismatch, "expected dimension %d, got %d", a.dimension, len(vector))
	}
	return nil
}

// Slot returns the dense slot for id, or (0, false) if id is unknown.
func (a *Arena) Slot(id ID) (int, bool) {
	s, ok := a.idToSlot[id]
	return s, ok
}

// IDAt returns the id stored at the given dense slot.
func (a *Arena) IDAt(slot int) ID {
	return a.slotToID[slot]
}

// VectorAt returns the vector stored at the given dense slot. The returned
// slice is the arena's own backing storage and must not be mutated.
func (a *Arena) VectorAt(slot int) []float32 {
	return a.slots[slot]
}

// Get returns the vector for id, or (nil, false) if id is unknown.
func (a *Arena) Get(id ID) ([]float32, bool) {
	slot, ok := a.idToSlot[id]
	if !ok {
		return nil, false
	}
	return a.slots[slot], true
}
