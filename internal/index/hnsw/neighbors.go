package hnsw

import (
	"sort"

	"github.com/xDarkicex/edgevec/internal/util"
)

// selectNeighbors implements the HNSW neighbor-selection heuristic:
// consider candidates closest-to-query first, and keep a candidate only if
// it is closer to the query than it is to every neighbor already selected.
// This diversifies the graph's connections instead of clustering them all
// in the same direction, which is what keeps the graph navigable.
func (idx *Index) selectNeighbors(candidates []*util.Candidate, m int) ([]*util.Candidate, error) {
	sorted := make([]*util.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Distance < sorted[j].Distance })

	selected := make([]*util.Candidate, 0, m)
	for _, c := range sorted {
		if len(selected) >= m {
			break
		}
		redundant := false
		for _, s := range selected {
			d, err := idx.internalDistance(idx.arena.VectorAt(int(c.ID)), idx.arena.VectorAt(int(s.ID)))
			if err != nil {
				return nil, err
			}
			if d < c.Distance {
				redundant = true
				break
			}
		}
		if !redundant {
			selected = append(selected, c)
		}
	}
	return selected, nil
}

func (idx *Index) link(a, b int, level int) {
	idx.nodes[a].links[level] = append(idx.nodes[a].links[level], uint32(b))
	idx.nodes[b].links[level] = append(idx.nodes[b].links[level], uint32(a))
}

// pruneConnections trims slot's links at level back down to maxM using the
// same diversification heuristic, called after a new node links to an
// already-full neighbor.
func (idx *Index) pruneConnections(slot int, level int) error {
	n := idx.nodes[slot]
	maxM := idx.maxMForLevel(level)
	if len(n.links[level]) <= maxM {
		return nil
	}
	slots := make([]int, len(n.links[level]))
	for i, s := range n.links[level] {
		slots[i] = int(s)
	}
	candidates, err := idx.candidatesFromSlots(idx.arena.VectorAt(slot), slots)
	if err != nil {
		return err
	}
	selected, err := idx.selectNeighbors(candidates, maxM)
	if err != nil {
		return err
	}
	newLinks := make([]uint32, len(selected))
	for i, c := range selected {
		newLinks[i] = uint32(c.ID)
	}
	n.links[level] = newLinks
	return nil
}
