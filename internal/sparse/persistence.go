package sparse

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/xDarkicex/edgevec/internal/bitmap"
	"github.com/xDarkicex/edgevec/internal/edvcerr"
	"github.com/xDarkicex/edgevec/internal/persistence"
	"github.com/xDarkicex/edgevec/internal/vecstore"
)

// FormatVersion is the current sparse snapshot format version.
const FormatVersion = 1

type snapshotHeader struct {
	NextID   uint64
	Offsets  []uint32
	Dims     []int
	SlotIDs  []uint64
	NNZTotal int
}

// Save writes a framed snapshot of s: preamble, CBOR header carrying the
// CSR offsets/per-vector dims/slot ids, a length-prefixed indices block, a
// length-prefixed values block, a length-prefixed tombstone-bitmap block,
// and a trailing CRC32 over the three data blocks.
func (s *Storage) Save(w io.Writer) error {
	header := snapshotHeader{
		NextID:   uint64(s.alloc.Peek()),
		Offsets:  s.offsets,
		Dims:     s.dims,
		SlotIDs:  idsOf(s.slotToID),
		NNZTotal: len(s.indices),
	}
	body, err := persistence.EncodeHeader(header)
	if err != nil {
		return err
	}
	if err := persistence.WritePreamble(w, persistence.MagicSparse, FormatVersion, body); err != nil {
		return err
	}

	indicesBytes := encodeIndices(s.indices)
	valuesBytes := encodeValues(s.values)
	tombstoneBytes, err := s.tombstones.MarshalBinary()
	if err != nil {
		return edvcerr.Wrap(edvcerr.CodeSerializationError, err, "failed to encode tombstone bitmap")
	}

	if err := persistence.WriteBlock64(w, indicesBytes); err != nil {
		return err
	}
	if err := persistence.WriteBlock64(w, valuesBytes); err != nil {
		return err
	}
	if err := persistence.WriteBlock32(w, tombstoneBytes); err != nil {
		return err
	}
	return persistence.WriteUint32(w, persistence.CRC32(indicesBytes, valuesBytes, tombstoneBytes))
}

// Load replaces s's contents with the snapshot read from r.
func (s *Storage) Load(r io.Reader) error {
	_, body, err := persistence.ReadPreamble(r, persistence.MagicSparse, FormatVersion)
	if err != nil {
		return err
	}
	var header snapshotHeader
	if err := persistence.DecodeHeader(body, &header); err != nil {
		return err
	}

	indicesBytes, err := persistence.ReadBlock64(r)
	if err != nil {
		return err
	}
	valuesBytes, err := persistence.ReadBlock64(r)
	if err != nil {
		return err
	}
	tombstoneBytes, err := persistence.ReadBlock32(r)
	if err != nil {
		return err
	}
	wantCRC, err := persistence.ReadUint32(r)
	if err != nil {
		return err
	}
	if err := persistence.VerifyCRC32(wantCRC, indicesBytes, valuesBytes, tombstoneBytes); err != nil {
		return err
	}

	fresh := New()
	fresh.alloc.Restore(vecstore.ID(header.NextID - 1))
	fresh.offsets = header.Offsets
	fresh.dims = header.Dims
	fresh.indices = decodeIndices(indicesBytes)
	fresh.values = decodeValues(valuesBytes)
	fresh.slotToID = make([]vecstore.ID, len(header.SlotIDs))
	for i, id := range header.SlotIDs {
		fresh.slotToID[i] = vecstore.ID(id)
		fresh.idToSlot[vecstore.ID(id)] = i
	}
	tombstones, err := bitmap.FromBytes(tombstoneBytes)
	if err != nil {
		return edvcerr.Wrap(edvcerr.CodeDeserializationError, err, "failed to decode tombstone bitmap")
	}
	fresh.tombstones = tombstones

	*s = *fresh
	return nil
}

func idsOf(ids []vecstore.ID) []uint64 {
	out := make([]uint64, len(ids))
	for i, id := range ids {
		out[i] = uint64(id)
	}
	return out
}

func encodeIndices(indices []uint32) []byte {
	out := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(out[i*4:], idx)
	}
	return out
}

func decodeIndices(data []byte) []uint32 {
	n := len(data) / 4
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return out
}

func encodeValues(values []float32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func decodeValues(data []byte) []float32 {
	n := len(data) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}
