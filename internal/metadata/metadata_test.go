package metadata

import (
	"testing"

	"github.com/xDarkicex/edgevec/internal/vecstore"
)

func TestStorePutGetDelete(t *testing.T) {
	s := NewStore()
	if err := s.Put(1, Document{"title": "a", "year": int64(2000)}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	doc, ok := s.Get(1)
	if !ok || doc["title"] != "a" {
		t.Fatalf("got %v, %v", doc, ok)
	}

	if _, err := TypeOf(3.14); err != nil {
		t.Fatalf("TypeOf(float64): %v", err)
	}

	if err := s.Put(2, Document{"title": 5}); err == nil {
		t.Fatal("expected error for unsupported document value type")
	}

	s.Delete(1)
	if _, ok := s.Get(1); ok {
		t.Fatal("expected document to be gone after delete")
	}
}

func TestStoreFieldTypeConsistency(t *testing.T) {
	s := NewStore()
	if err := s.Put(1, Document{"year": int64(2000)}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(2, Document{"year": "not a number"}); err == nil {
		t.Fatal("expected error when a field's type disagrees with its established schema")
	}
}

func TestStoreEqualityPostings(t *testing.T) {
	s := NewStore()
	if err := s.Put(1, Document{"genre": "scifi"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(2, Document{"genre": "scifi"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(3, Document{"genre": "drama"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	set := s.EqualityPostings("genre", "scifi")
	if set == nil || set.Cardinality() != 2 {
		t.Fatalf("got %v", set)
	}
}

func TestStoreRemap(t *testing.T) {
	s := NewStore()
	if err := s.Put(5, Document{"title": "a"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(9, Document{"title": "b"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	s.Remap(map[vecstore.ID]vecstore.ID{9: 1})

	if _, ok := s.Get(5); ok {
		t.Fatal("id absent from the mapping should be dropped")
	}
	doc, ok := s.Get(1)
	if !ok || doc["title"] != "b" {
		t.Fatalf("got %v, %v, want remapped document under its new id", doc, ok)
	}
	if s.Len() != 1 {
		t.Fatalf("got len %d, want 1", s.Len())
	}
}
