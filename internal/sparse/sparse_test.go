package sparse

import (
	"math"
	"testing"
)

func TestVectorValidate(t *testing.T) {
	v := &Vector{Dim: 10, Indices: []uint32{1, 3, 5}, Values: []float32{1, 2, 3}}
	if err := v.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := &Vector{Dim: 10, Indices: []uint32{3, 1}, Values: []float32{1, 2}}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for non-ascending indices")
	}

	oob := &Vector{Dim: 4, Indices: []uint32{5}, Values: []float32{1}}
	if err := oob.Validate(); err == nil {
		t.Fatal("expected error for out-of-bounds index")
	}

	empty := &Vector{Dim: 4}
	if err := empty.Validate(); err == nil {
		t.Fatal("expected error for empty vector")
	}
}

func TestDotSelf(t *testing.T) {
	v := &Vector{Dim: 4, Indices: []uint32{0, 2}, Values: []float32{3, 4}}
	if got := v.DotSelf(); math.Abs(got-25) > 1e-6 {
		t.Fatalf("got %v, want 25", got)
	}
}

func TestDotOverlap(t *testing.T) {
	a := &Vector{Dim: 10, Indices: []uint32{1, 3, 5}, Values: []float32{1, 2, 3}}
	b := &Vector{Dim: 10, Indices: []uint32{3, 5, 7}, Values: []float32{10, 10, 10}}
	// overlap at 3 (2*10=20) and 5 (3*10=30) => 50
	if got := Dot(a, b); got != 50 {
		t.Fatalf("got %v, want 50", got)
	}
}

func TestDotNoOverlap(t *testing.T) {
	a := &Vector{Dim: 10, Indices: []uint32{1, 2}, Values: []float32{1, 1}}
	b := &Vector{Dim: 10, Indices: []uint32{3, 4}, Values: []float32{1, 1}}
	if got := Dot(a, b); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
}

func TestStorageInsertGetDelete(t *testing.T) {
	s := New()
	id1, err := s.Insert(&Vector{Dim: 5, Indices: []uint32{0, 2}, Values: []float32{1, 2}})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	id2, err := s.Insert(&Vector{Dim: 5, Indices: []uint32{1, 3}, Values: []float32{3, 4}})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("got len %d, want 2", s.Len())
	}

	got, err := s.Get(id1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Indices) != 2 || got.Indices[0] != 0 || got.Values[1] != 2 {
		t.Fatalf("got %+v", got)
	}

	if !s.Delete(id2) {
		t.Fatal("expected Delete to succeed")
	}
	if s.Delete(id2) {
		t.Fatal("expected idempotent Delete to return false")
	}
	if s.Len() != 1 {
		t.Fatalf("got len %d after delete, want 1", s.Len())
	}
}

func TestStorageSearchExcludesZeroOverlapAndTombstones(t *testing.T) {
	s := New()
	idA, _ := s.Insert(&Vector{Dim: 10, Indices: []uint32{1, 2}, Values: []float32{1, 1}})
	idB, _ := s.Insert(&Vector{Dim: 10, Indices: []uint32{1, 2}, Values: []float32{2, 2}})
	_, _ = s.Insert(&Vector{Dim: 10, Indices: []uint32{5, 6}, Values: []float32{1, 1}}) // no overlap

	query := &Vector{Dim: 10, Indices: []uint32{1, 2}, Values: []float32{1, 1}}
	results, err := s.Search(query, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (zero-overlap vector excluded)", len(results))
	}
	if results[0].ID != idB {
		t.Fatalf("expected idB (higher score) first, got %v", results[0])
	}

	s.Delete(idB)
	results, err = s.Search(query, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != idA {
		t.Fatalf("got %+v, want only idA after tombstoning idB", results)
	}
}

func TestStorageSearchEmptyK(t *testing.T) {
	s := New()
	results, err := s.Search(&Vector{Dim: 4, Indices: []uint32{0}, Values: []float32{1}}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Fatalf("expected nil results for k=0, got %+v", results)
	}
}
