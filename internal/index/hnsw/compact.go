package hnsw

import (
	"github.com/xDarkicex/edgevec/internal/bitmap"
	"github.com/xDarkicex/edgevec/internal/vecstore"
)

// Compact rebuilds the graph from its live vectors, reinserting each one
// (in current slot order) into a fresh empty graph under its original id.
// This discards every tombstoned vector's storage and every stale link
// pointing at one, at the cost of repeating construction's full insert
// cost for every surviving vector. The allocator is carried over unchanged
// since no id is reassigned.
func (idx *Index) Compact() error {
	type survivor struct {
		id     vecstore.ID
		vector []float32
	}
	survivors := make([]survivor, 0, idx.Len())
	for slot := 0; slot < idx.arena.Len(); slot++ {
		if idx.tombstones.Contains(uint32(slot)) {
			continue
		}
		survivors = append(survivors, survivor{id: idx.arena.IDAt(slot), vector: idx.arena.VectorAt(slot)})
	}

	fresh := &Index{
		cfg:          idx.cfg,
		arena:        vecstore.NewArena(idx.cfg.Dimension),
		alloc:        idx.alloc,
		scoreFn:      idx.scoreFn,
		higherBetter: idx.higherBetter,
		rng:          idx.rng,
		tombstones:   bitmap.New(),
		entrySlot:    -1,
		maxLevel:     -1,
	}
	for _, s := range survivors {
		if _, err := fresh.insertWithID(s.id, s.vector); err != nil {
			return err
		}
	}

	*idx = *fresh
	return nil
}
