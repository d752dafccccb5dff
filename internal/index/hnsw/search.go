package hnsw

import (
	"github.com/xDarkicex/edgevec/internal/bitmap"
	"github.com/xDarkicex/edgevec/internal/edvcerr"
	"github.com/xDarkicex/edgevec/internal/util"
	"github.com/xDarkicex/edgevec/internal/vecstore"
)

// searchLayer implements the greedy search-within-layer routine (Malkov &
// Yashunin, Algorithm 2): starting from entrySlots, it expands the
// frontier of unvisited neighbors, always exploring the closest unvisited
// candidate next, until no unvisited candidate could improve on the
// current worst of the ef best found so far.
//
// Tombstoned nodes are still traversed — excluding them from the graph
// would fragment connectivity — but are never added to the returned
// result set when skipTombstoned is true, so a deleted vector never
// surfaces as a search hit without requiring an immediate physical
// rewire of its neighbors. When allowed is non-nil, nodes whose id is
// absent from it are likewise still traversed (for connectivity) but
// excluded from the candidate set, so a restricted search costs nothing
// beyond the traversal already in progress; callers should still widen
// ef when allowed is small relative to the graph, since the same ef
// budget now yields fewer admissible candidates per step.
func (idx *Index) searchLayer(query []float32, entrySlots []int, ef int, level int, skipTombstoned bool, allowed *bitmap.Set) ([]*util.Candidate, error) {
	visited := make([]bool, idx.arena.Len())
	candidates := util.NewMaxHeap(ef) // bounded best-ef-so-far
	frontier := util.NewMinHeap(ef * 2)

	admissible := func(slot int) bool {
		if skipTombstoned && idx.tombstones.Contains(uint32(slot)) {
			return false
		}
		if allowed != nil && !allowed.Contains(uint32(idx.arena.IDAt(slot))) {
			return false
		}
		return true
	}

	for _, slot := range entrySlots {
		if slot < 0 || slot >= len(visited) || visited[slot] {
			continue
		}
		visited[slot] = true
		d, err := idx.internalDistance(query, idx.arena.VectorAt(slot))
		if err != nil {
			return nil, err
		}
		c := &util.Candidate{ID: uint64(slot), Distance: d}
		frontier.PushCandidate(c)
		if admissible(slot) {
			candidates.PushBounded(c, ef)
		}
	}

	for frontier.Len() > 0 {
		current := frontier.PopCandidate()
		if candidates.Len() >= ef {
			if worst := candidates.Top(); worst != nil && current.Distance > worst.Distance {
				break
			}
		}

		currentNode := idx.nodes[current.ID]
		if level >= len(currentNode.links) {
			continue
		}
		for _, neighborSlot := range currentNode.links[level] {
			ns := int(neighborSlot)
			if ns >= len(visited) || visited[ns] {
				continue
			}
			visited[ns] = true
			d, err := idx.internalDistance(query, idx.arena.VectorAt(ns))
			if err != nil {
				return nil, err
			}
			nc := &util.Candidate{ID: uint64(ns), Distance: d}
			frontier.PushCandidate(nc)
			if admissible(ns) {
				candidates.PushBounded(nc, ef)
			}
		}
	}

	return candidates.Sorted(), nil
}

// Result is one search hit, translated back to the configured metric's
// native score direction.
type Result struct {
	ID    vecstore.ID
	Score float32
}

// Search returns the approximate k nearest neighbors of query. Phase one
// greedily descends from the top layer to layer 1 with ef=1 to find a good
// entry point; phase two runs the full candidate search at layer 0 with
// ef = max(EfSearch, k). When allowed is non-nil, only ids present in it
// are eligible to be returned; the graph is still traversed through
// disallowed nodes so connectivity isn't fragmented.
func (idx *Index) Search(query []float32, k int, allowed *bitmap.Set) ([]Result, error) {
	if k == 0 {
		return nil, edvcerr.New(edvcerr.CodeInvalidK, "k must be positive")
	}
	if err := idx.arena.Validate(query); err != nil {
		return nil, err
	}
	if idx.entrySlot == -1 {
		return nil, nil
	}

	entry := []int{idx.entrySlot}
	for level := idx.maxLevel; level > 0; level-- {
		found, err := idx.searchLayer(query, entry, 1, level, false, nil)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			entry = []int{int(found[0].ID)}
		}
	}

	ef := idx.cfg.EfSearch
	if k > ef {
		ef = k
	}
	found, err := idx.searchLayer(query, entry, ef, 0, true, allowed)
	if err != nil {
		return nil, err
	}
	if k > len(found) {
		k = len(found)
	}
	out := make([]Result, k)
	for i := 0; i < k; i++ {
		out[i] = Result{
			ID:    idx.arena.IDAt(int(found[i].ID)),
			Score: idx.externalScore(found[i].Distance),
		}
	}
	return out, nil
}
