// Package util provides the bounded candidate heaps shared by every search
// path (flat, HNSW, sparse): a max-heap used as a bounded top-k result
// buffer, and a min-heap used as the HNSW candidate frontier.
package util

import "container/heap"

// Candidate is a single scored search candidate.
type Candidate struct {
	ID       uint64
	Distance float32
}

// MinHeap is a min-heap of Candidates ordered by ascending Distance, used
// to drive best-first graph traversal.
type MinHeap struct {
	candidates []*Candidate
}

func NewMinHeap(capacityHint int) *MinHeap {
	return &MinHeap{candidates: make([]*Candidate, 0, capacityHint)}
}

func (h *MinHeap) Len() int            { return len(h.candidates) }
func (h *MinHeap) Less(i, j int) bool  { return h.candidates[i].Distance < h.candidates[j].Distance }
func (h *MinHeap) Swap(i, j int)       { h.candidates[i], h.candidates[j] = h.candidates[j], h.candidates[i] }
func (h *MinHeap) Push(x interface{})  { h.candidates = append(h.candidates, x.(*Candidate)) }
func (h *MinHeap) Pop() interface{} {
	old := h.candidates
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.candidates = old[:n-1]
	return item
}

func (h *MinHeap) PushCandidate(c *Candidate) { heap.Push(h, c) }

func (h *MinHeap) PopCandidate() *Candidate {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*Candidate)
}

func (h *MinHeap) Top() *Candidate {
	if h.Len() == 0 {
		return nil
	}
	return h.candidates[0]
}

// MaxHeap is a max-heap of Candidates ordered by descending Distance, used
// as a bounded top-k buffer: once it holds k items, pushing a closer
// candidate evicts the current worst.
type MaxHeap struct {
	candidates []*Candidate
}

func NewMaxHeap(capacityHint int) *MaxHeap {
	return &MaxHeap{candidates: make([]*Candidate, 0, capacityHint)}
}

func (h *MaxHeap) Len() int            { return len(h.candidates) }
func (h *MaxHeap) Less(i, j int) bool  { return h.candidates[i].Distance > h.candidates[j].Distance }
func (h *MaxHeap) Swap(i, j int)       { h.candidates[i], h.candidates[j] = h.candidates[j], h.candidates[i] }
func (h *MaxHeap) Push(x interface{})  { h.candidates = append(h.candidates, x.(*Candidate)) }
func (h *MaxHeap) Pop() interface{} {
	old := h.candidates
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.candidates = old[:n-1]
	return item
}

func (h *MaxHeap) PushCandidate(c *Candidate) { heap.Push(h, c) }

func (h *MaxHeap) PopCandidate() *Candidate {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*Candidate)
}

func (h *MaxHeap) Top() *Candidate {
	if h.Len() == 0 {
		return nil
	}
	return h.candidates[0]
}

// PushBounded maintains a bounded top-k max-heap: while under capacity it
// always inserts; once at capacity it only replaces the current worst
// (heap top) when c is strictly better (smaller distance).
func (h *MaxHeap) PushBounded(c *Candidate, k int) {
	if h.Len() < k {
		h.PushCandidate(c)
		return
	}
	if worst := h.Top(); worst != nil && c.Distance < worst.Distance {
		h.PopCandidate()
		h.PushCandidate(c)
	}
}

// Sorted drains the max-heap into a slice ordered by ascending distance
// (best first). The heap is empty after this call.
func (h *MaxHeap) Sorted() []*Candidate {
	n := h.Len()
	out := make([]*Candidate, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = h.PopCandidate()
	}
	return out
}
