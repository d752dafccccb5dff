package metadata

import (
	"bytes"
	"testing"
)

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	s := NewStore()
	if err := s.Put(1, Document{"title": "a", "rank": int64(3), "score": 1.5, "active": true}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(2, Document{"title": "b", "tags": []string{"x", "y"}}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	s.Delete(2)

	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := NewStore()
	if err := loaded.Load(&buf); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 1 {
		t.Fatalf("loaded len %d, want 1", loaded.Len())
	}
	doc, ok := loaded.Get(1)
	if !ok {
		t.Fatal("expected document for id 1")
	}
	if doc["rank"] != int64(3) {
		t.Fatalf("rank field did not round-trip as int64: %T %v", doc["rank"], doc["rank"])
	}
	if _, ok := loaded.Get(2); ok {
		t.Fatal("deleted document should not resolve after load")
	}
}
