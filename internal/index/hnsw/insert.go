package hnsw

import "github.com/xDarkicex/edgevec/internal/vecstore"

// Insert adds vector to the graph and returns its newly assigned id.
//
// The algorithm is the standard two-phase HNSW insert: phase one greedily
// descends from the current top layer down to the new node's own level
// with ef=1, tracking only a single best entry point per layer; phase two
// then runs a full ef=EfConstruction search at each layer from the new
// node's level down to 0, links the new node to the selected neighbors,
// and prunes any neighbor that now exceeds its layer's connection budget.
func (idx *Index) Insert(vector []float32) (vecstore.ID, error) {
	return idx.insertWithID(idx.alloc.Next(), vector)
}

// insertWithID performs the same algorithm as Insert but under a
// caller-supplied id instead of drawing one from the allocator, used by
// Compact to rebuild a graph while preserving every surviving vector's id.
func (idx *Index) insertWithID(id vecstore.ID, vector []float32) (vecstore.ID, error) {
	if err := idx.arena.Validate(vector); err != nil {
		return 0, err
	}

	level := idx.generateLevel()
	slot := idx.arena.Append(id, vector)
	idx.nodes = append(idx.nodes, newNode(level))

	if idx.entrySlot == -1 {
		idx.entrySlot = slot
		idx.maxLevel = level
		return id, nil
	}

	entry := []int{idx.entrySlot}
	for l := idx.maxLevel; l > level; l-- {
		found, err := idx.searchLayer(vector, entry, 1, l, false, nil)
		if err != nil {
			return 0, err
		}
		if len(found) > 0 {
			entry = []int{int(found[0].ID)}
		}
	}

	top := level
	if idx.maxLevel < top {
		top = idx.maxLevel
	}
	for l := top; l >= 0; l-- {
		candidates, err := idx.searchLayer(vector, entry, idx.cfg.EfConstruction, l, false, nil)
		if err != nil {
			return 0, err
		}
		selected, err := idx.selectNeighbors(candidates, idx.maxMForLevel(l))
		if err != nil {
			return 0, err
		}
		for _, c := range selected {
			idx.link(slot, int(c.ID), l)
		}
		for _, c := range selected {
			if err := idx.pruneConnections(int(c.ID), l); err != nil {
				return 0, err
			}
		}
		if len(selected) > 0 {
			entry = make([]int, len(selected))
			for i, c := range selected {
				entry[i] = int(c.ID)
			}
		}
	}

	if level > idx.maxLevel {
		idx.entrySlot = slot
		idx.maxLevel = level
	}
	return id, nil
}
