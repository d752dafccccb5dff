package metadata

import (
	"io"

	"github.com/xDarkicex/edgevec/internal/persistence"
	"github.com/xDarkicex/edgevec/internal/vecstore"
)

// record is the wire shape of one document: an id paired with its field
// map, matching the metadata wire format's "list of {key, typed-value}
// entries" framing per record.
type record struct {
	ID     uint64
	Fields map[string]interface{}
}

// Save writes every live document as a single length-prefixed CBOR block.
// There is no magic/version/CRC framing of its own — a metadata block is
// always embedded inside the index snapshot that owns the ids it describes,
// so Collection.Save appends it directly after the index's own framed
// snapshot.
func (s *Store) Save(w io.Writer) error {
	all := s.All()
	records := make([]record, 0, len(all))
	for id, doc := range all {
		records = append(records, record{ID: uint64(id), Fields: doc})
	}
	body, err := persistence.EncodeHeader(records)
	if err != nil {
		return err
	}
	return persistence.WriteBlock64(w, body)
}

// Load replaces s's documents with those decoded from r.
func (s *Store) Load(r io.Reader) error {
	body, err := persistence.ReadBlock64(r)
	if err != nil {
		return err
	}
	var records []record
	if err := persistence.DecodeHeader(body, &records); err != nil {
		return err
	}
	fresh := NewStore()
	for _, rec := range records {
		if err := fresh.Put(vecstore.ID(rec.ID), normalizeDecoded(rec.Fields)); err != nil {
			return err
		}
	}
	*s = *fresh
	return nil
}

// normalizeDecoded repairs the one type ambiguity CBOR's generic decode
// introduces: a positive i64 field round-trips as uint64 (CBOR has no
// signed/unsigned distinction for non-negative integers), which TypeOf
// would otherwise reject as an unsupported type.
func normalizeDecoded(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if u, ok := v.(uint64); ok {
			out[k] = int64(u)
			continue
		}
		out[k] = v
	}
	return out
}
