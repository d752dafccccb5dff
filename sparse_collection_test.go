package edgevec

import "testing"

func TestSparseCollectionInsertSearch(t *testing.T) {
	c := newSparseCollection("sparse-test", nil, nil)

	a, err := c.Insert(&SparseVector{Dim: 10, Indices: []uint32{1, 3}, Values: []float32{1, 1}}, Document{"title": "a"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	b, err := c.Insert(&SparseVector{Dim: 10, Indices: []uint32{1, 3}, Values: []float32{2, 2}}, nil)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := c.Insert(&SparseVector{Dim: 10, Indices: []uint32{5}, Values: []float32{1}}, nil); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	res, err := c.Search(&SparseVector{Dim: 10, Indices: []uint32{1, 3}, Values: []float32{1, 1}}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Results) != 2 {
		t.Fatalf("got %d results, want 2 (zero-overlap vector excluded)", len(res.Results))
	}
	if res.Results[0].ID != b {
		t.Fatalf("expected higher-overlap vector first, got %+v", res.Results[0])
	}
	if res.Results[0].Metadata != nil {
		t.Fatalf("id %d has no document, got %v", b, res.Results[0].Metadata)
	}
	var found bool
	for _, r := range res.Results {
		if r.ID == a {
			found = true
			if r.Metadata["title"] != "a" {
				t.Fatalf("got metadata %v", r.Metadata)
			}
		}
	}
	if !found {
		t.Fatal("expected id a to appear in results")
	}
}

func TestSparseCollectionDeleteAndClose(t *testing.T) {
	c := newSparseCollection("sparse-test", nil, nil)
	id, _ := c.Insert(&SparseVector{Dim: 4, Indices: []uint32{0}, Values: []float32{1}}, nil)

	if !c.Delete(id) {
		t.Fatal("expected delete to succeed")
	}
	if c.Delete(id) {
		t.Fatal("expected idempotent delete to return false")
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, _, err := c.Get(id); err != ErrCollectionClosed {
		t.Fatalf("got %v, want ErrCollectionClosed", err)
	}
}
