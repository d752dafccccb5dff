// Package metadata implements the closed-type-set metadata store: every
// vector may carry a map of named fields, each one of string, i64, f64,
// bool, or []string. The store keeps an xxhash-based equality posting list
// per field so the filter engine's pre-filter strategy can intersect
// candidate sets with roaring bitmaps instead of scanning every row.
package metadata

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/xDarkicex/edgevec/internal/bitmap"
	"github.com/xDarkicex/edgevec/internal/edvcerr"
	"github.com/xDarkicex/edgevec/internal/vecstore"
)

// FieldType is the closed set of metadata value types EdgeVec supports.
type FieldType int

const (
	StringType FieldType = iota
	IntType
	FloatType
	BoolType
	StringListType
)

func (t FieldType) String() string {
	switch t {
	case StringType:
		return "string"
	case IntType:
		return "i64"
	case FloatType:
		return "f64"
	case BoolType:
		return "bool"
	case StringListType:
		return "list<string>"
	default:
		return "unknown"
	}
}

// TypeOf returns the FieldType of v, or an error if v is not one of the
// closed set of supported concrete types.
func TypeOf(v interface{}) (FieldType, error) {
	switch v.(type) {
	case string:
		return StringType, nil
	case int64:
		return IntType, nil
	case float64:
		return FloatType, nil
	case bool:
		return BoolType, nil
	case []string:
		return StringListType, nil
	default:
		return 0, edvcerr.Newf(edvcerr.CodeFilterTypeMismatch, "unsupported metadata value type %T", v)
	}
}

// Document is a single vector's metadata fields.
type Document map[string]interface{}

// Store holds metadata for every live vector, keyed by engine id, plus an
// equality posting list per scalar field used to accelerate filter
// pre-filtering.
type Store struct {
	docs     map[vecstore.ID]Document
	postings map[string]map[uint64]*bitmap.Set // field -> xxhash(field=value) -> ids (truncated to uint32)
	schema   map[string]FieldType
}

// NewStore returns an empty metadata store.
func NewStore() *Store {
	return &Store{
		docs:     make(map[vecstore.ID]Document),
		postings: make(map[string]map[uint64]*bitmap.Set),
		schema:   make(map[string]FieldType),
	}
}

func postingKey(field string, value interface{}) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(field)
	_, _ = h.Write([]byte{0})
	fmt.Fprintf(h, "%v", value)
	return h.Sum64()
}

// Put stores (or replaces) the metadata document for id, validating every
// field value is one of the closed supported types and, if a schema has
// already observed that field, that the type is consistent.
func (s *Store) Put(id vecstore.ID, doc Document) error {
	for field, v := range doc {
		ft, err := TypeOf(v)
		if err != nil {
			return err
		}
		if existing, ok := s.schema[field]; ok && existing != ft {
			return edvcerr.Newf(edvcerr.CodeFilterTypeMismatch, "field %q previously typed %s, got %s", field, existing, ft)
		}
		s.schema[field] = ft
	}
	if old, ok := s.docs[id]; ok {
		s.removePostings(id, old)
	}
	cp := make(Document, len(doc))
	for k, v := range doc {
		cp[k] = v
	}
	s.docs[id] = cp
	s.addPostings(id, cp)
	return nil
}

func (s *Store) addPostings(id vecstore.ID, doc Document) {
	u32 := uint32(id)
	for field, v := range doc {
		if _, ok := v.([]string); ok {
			continue // list fields are not equality-postable; evaluator scans them directly
		}
		key := postingKey(field, v)
		m, ok := s.postings[field]
		if !ok {
			m = make(map[uint64]*bitmap.Set)
			s.postings[field] = m
		}
		set, ok := m[key]
		if !ok {
			set = bitmap.New()
			m[key] = set
		}
		set.Mark(u32)
	}
}

func (s *Store) removePostings(id vecstore.ID, doc Document) {
	u32 := uint32(id)
	for field, v := range doc {
		if _, ok := v.([]string); ok {
			continue
		}
		key := postingKey(field, v)
		if m, ok := s.postings[field]; ok {
			if set, ok := m[key]; ok {
				set.Unmark(u32)
			}
		}
	}
}

// Get returns the metadata document for id.
func (s *Store) Get(id vecstore.ID) (Document, bool) {
	d, ok := s.docs[id]
	return d, ok
}

// Delete removes id's metadata document and its postings.
func (s *Store) Delete(id vecstore.ID) {
	if doc, ok := s.docs[id]; ok {
		s.removePostings(id, doc)
		delete(s.docs, id)
	}
}

// FieldType returns the inferred type of field, if any document has set it.
func (s *Store) FieldType(field string) (FieldType, bool) {
	ft, ok := s.schema[field]
	return ft, ok
}

// EqualityPostings returns the set of ids (truncated to uint32) whose field
// equals value, or nil if no such posting exists.
func (s *Store) EqualityPostings(field string, value interface{}) *bitmap.Set {
	m, ok := s.postings[field]
	if !ok {
		return nil
	}
	set, ok := m[postingKey(field, value)]
	if !ok {
		return nil
	}
	return set
}

// Len returns the number of documents stored.
func (s *Store) Len() int {
	return len(s.docs)
}

// All returns a snapshot copy of every document currently stored, keyed by
// id, for callers that need to serialise the full store (the metadata wire
// format snapshot) rather than sample it.
func (s *Store) All() map[vecstore.ID]Document {
	out := make(map[vecstore.ID]Document, len(s.docs))
	for id, doc := range s.docs {
		cp := make(Document, len(doc))
		for k, v := range doc {
			cp[k] = v
		}
		out[id] = cp
	}
	return out
}

// Remap rewrites every document's id per mapping: an id absent from
// mapping is dropped along with its document. Used after an index
// compaction renumbers surviving vectors, so the metadata store's keys
// stay in step with the ids its owning index now reports.
func (s *Store) Remap(mapping map[vecstore.ID]vecstore.ID) {
	fresh := NewStore()
	for oldID, doc := range s.docs {
		newID, ok := mapping[oldID]
		if !ok {
			continue
		}
		// Put validates field types against the schema built so far; since
		// every doc already passed validation once under the old id, this
		// cannot fail.
		_ = fresh.Put(newID, doc)
	}
	*s = *fresh
}

// Sample returns up to n documents for selectivity estimation. Map iteration
// order is unspecified, which is sufficient for a statistical estimate; it
// is not used anywhere determinism is required.
func (s *Store) Sample(n int) []Document {
	if n <= 0 || len(s.docs) == 0 {
		return nil
	}
	out := make([]Document, 0, n)
	for _, d := range s.docs {
		out = append(out, d)
		if len(out) >= n {
			break
		}
	}
	return out
}
