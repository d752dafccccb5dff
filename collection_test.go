package edgevec

import (
	"bytes"
	"testing"
)

func newTestCollection(t *testing.T, opts ...CollectionOption) *Collection {
	t.Helper()
	cfg := defaultCollectionConfig()
	cfg.Dimension = 4
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			t.Fatalf("apply option: %v", err)
		}
	}
	c, err := newCollection("test", cfg, nil, nil)
	if err != nil {
		t.Fatalf("newCollection: %v", err)
	}
	return c
}

func TestCollectionInsertGetSearch(t *testing.T) {
	c := newTestCollection(t, WithHNSW(8, 16, 50, 20))

	id, err := c.Insert([]float32{1, 0, 0, 0}, Document{"title": "a"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == 0 {
		t.Fatal("expected nonzero id")
	}

	vec, doc, err := c.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(vec) != 4 {
		t.Fatalf("got vector len %d, want 4", len(vec))
	}
	if doc["title"] != "a" {
		t.Fatalf("got doc %v", doc)
	}

	if _, err := c.Insert([]float32{0, 1, 0, 0}, nil); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	results, err := c.Search([]float32{1, 0, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(results.Results))
	}
	if results.Results[0].ID != id {
		t.Fatalf("expected closest match first, got %+v", results.Results[0])
	}
}

func TestCollectionDeleteIsIdempotent(t *testing.T) {
	c := newTestCollection(t, WithIndexKind(IndexFlatDense))
	id, _ := c.Insert([]float32{1, 2, 3, 4}, nil)

	if !c.Delete(id) {
		t.Fatal("expected first delete to succeed")
	}
	if c.Delete(id) {
		t.Fatal("expected second delete to be a no-op")
	}
	if _, _, err := c.Get(id); err == nil {
		t.Fatal("expected Get to fail for a deleted id")
	}
}

func TestCollectionClosedRejectsOperations(t *testing.T) {
	c := newTestCollection(t, WithIndexKind(IndexFlatDense))
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := c.Insert([]float32{1, 2, 3, 4}, nil); err != ErrCollectionClosed {
		t.Fatalf("got %v, want ErrCollectionClosed", err)
	}
}

func TestCollectionBinarySearchUsesGetPacked(t *testing.T) {
	c := newTestCollection(t, WithDimension(8), WithBinaryCapacity(16))
	id, err := c.Insert([]float32{1, 1, -1, -1, 1, 1, -1, -1}, nil)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	vec, _, err := c.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if vec != nil {
		t.Fatalf("expected nil vector for binary collection Get, got %v", vec)
	}

	packed, err := c.GetPacked(id)
	if err != nil {
		t.Fatalf("GetPacked: %v", err)
	}
	if len(packed) == 0 {
		t.Fatal("expected non-empty packed bytes")
	}
}

func TestCollectionSaveLoadRoundTrip(t *testing.T) {
	c := newTestCollection(t, WithIndexKind(IndexFlatDense))
	id, err := c.Insert([]float32{1, 2, 3, 4}, Document{"k": "v"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var buf bytes.Buffer
	if err := c.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := newTestCollection(t, WithIndexKind(IndexFlatDense))
	if err := loaded.Load(&buf); err != nil {
		t.Fatalf("Load: %v", err)
	}
	vec, doc, err := loaded.Get(id)
	if err != nil {
		t.Fatalf("Get after load: %v", err)
	}
	if len(vec) != 4 || doc["k"] != "v" {
		t.Fatalf("got vec=%v doc=%v", vec, doc)
	}
}

func TestCollectionCompactReclaimsFlatDense(t *testing.T) {
	c := newTestCollection(t, WithIndexKind(IndexFlatDense))
	a, _ := c.Insert([]float32{1, 0, 0, 0}, Document{"tag": "a"})
	_, _ = c.Insert([]float32{0, 1, 0, 0}, Document{"tag": "b"})
	c.Delete(a)

	if err := c.Compact(); err != nil {
		t.Fatalf("Compact: %v", err)
	}
	// Compact renumbers surviving vectors contiguously from 1, so the lone
	// survivor is now id 1 and its metadata should have followed it there.
	vec, doc, err := c.Get(1)
	if err != nil {
		t.Fatalf("expected renumbered survivor to resolve after compact: %v", err)
	}
	if len(vec) != 4 || doc["tag"] != "b" {
		t.Fatalf("got vec=%v doc=%v, want the surviving vector's metadata to follow its new id", vec, doc)
	}
}
