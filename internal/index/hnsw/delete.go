package hnsw

import "github.com/xDarkicex/edgevec/internal/vecstore"

// Delete soft-deletes id: it flips the node's tombstone bit rather than
// unlinking it from the graph. A tombstoned node stays reachable during
// traversal — removing it from the adjacency lists outright risks
// fragmenting the graph into disconnected components — but it is filtered
// out of every Search result. Returns false if id was already deleted or
// never existed.
func (idx *Index) Delete(id vecstore.ID) bool {
	slot, ok := idx.arena.Slot(id)
	if !ok {
		return false
	}
	if !idx.tombstones.Mark(uint32(slot)) {
		return false
	}
	if slot == idx.entrySlot {
		idx.promoteEntryPoint(slot)
	}
	return true
}

// promoteEntryPoint replaces a deleted entry point. It first tries to
// promote one of the deleted node's own live neighbors, searching from its
// top level down to 0 so the replacement's level is as high as possible
// without a full graph scan. If every neighbor is also tombstoned (or the
// node had none), it falls back to scanning all nodes for the
// highest-level survivor.
func (idx *Index) promoteEntryPoint(deletedSlot int) {
	n := idx.nodes[deletedSlot]
	for l := n.level; l >= 0; l-- {
		for _, nb := range n.links[l] {
			s := int(nb)
			if !idx.tombstones.Contains(uint32(s)) {
				idx.entrySlot = s
				idx.maxLevel = idx.nodes[s].level
				return
			}
		}
	}

	best, bestLevel := -1, -1
	for s, nd := range idx.nodes {
		if idx.tombstones.Contains(uint32(s)) {
			continue
		}
		if nd.level > bestLevel {
			bestLevel = nd.level
			best = s
		}
	}
	idx.entrySlot = best
	idx.maxLevel = bestLevel
}
