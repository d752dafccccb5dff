package flat

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/xDarkicex/edgevec/internal/bitmap"
	"github.com/xDarkicex/edgevec/internal/distance"
	"github.com/xDarkicex/edgevec/internal/edvcerr"
	"github.com/xDarkicex/edgevec/internal/persistence"
	"github.com/xDarkicex/edgevec/internal/vecstore"
)

// DenseFormatVersion is the current flat dense snapshot format version.
const DenseFormatVersion = 1

type denseHeader struct {
	Dimension        int
	Metric           int
	CleanupThreshold float64
	SlotIDs          []uint64
}

// Save writes a framed snapshot of idx: preamble, CBOR header, a
// length-prefixed vector block, a length-prefixed tombstone-bitmap block,
// and a trailing CRC32. A quantisation sidecar, if enabled, is not
// persisted — EnableQuantization is cheap to re-run and a stale sidecar
// surviving a load that also restores different live vectors would be a
// correctness hazard.
func (idx *DenseIndex) Save(w io.Writer) error {
	slotIDs := make([]uint64, idx.arena.Len())
	for i := 0; i < idx.arena.Len(); i++ {
		slotIDs[i] = uint64(idx.arena.IDAt(i))
	}
	header := denseHeader{
		Dimension:        idx.cfg.Dimension,
		Metric:           int(idx.cfg.Metric),
		CleanupThreshold: idx.cfg.CleanupThreshold,
		SlotIDs:          slotIDs,
	}
	body, err := persistence.EncodeHeader(header)
	if err != nil {
		return err
	}
	if err := persistence.WritePreamble(w, persistence.MagicFlatDense, DenseFormatVersion, body); err != nil {
		return err
	}

	vectorBytes := encodeFloatVectors(idx.arena)
	tombstoneBytes, err := idx.tombstones.MarshalBinary()
	if err != nil {
		return edvcerr.Wrap(edvcerr.CodeSerializationError, err, "failed to encode tombstone bitmap")
	}
	if err := persistence.WriteBlock64(w, vectorBytes); err != nil {
		return err
	}
	if err := persistence.WriteBlock32(w, tombstoneBytes); err != nil {
		return err
	}
	return persistence.WriteUint32(w, persistence.CRC32(vectorBytes, tombstoneBytes))
}

// Load replaces idx's contents with the snapshot read from r.
func (idx *DenseIndex) Load(r io.Reader) error {
	_, body, err := persistence.ReadPreamble(r, persistence.MagicFlatDense, DenseFormatVersion)
	if err != nil {
		return err
	}
	var header denseHeader
	if err := persistence.DecodeHeader(body, &header); err != nil {
		return err
	}

	vectorBytes, err := persistence.ReadBlock64(r)
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
	if err := persistence.VerifyCRC32(wantCRC, vectorBytes, tombstoneBytes); err != nil {
		return err
	}

	fresh, err := New(DenseConfig{
		Dimension:        header.Dimension,
		Metric:           distance.Metric(header.Metric),
		CleanupThreshold: header.CleanupThreshold,
	})
	if err != nil {
		return err
	}

	vectors := decodeFloatVectors(vectorBytes, header.Dimension)
	for i, v := range vectors {
		fresh.arena.Append(vecstore.ID(header.SlotIDs[i]), v)
	}
	tombstones, err := bitmap.FromBytes(tombstoneBytes)
	if err != nil {
		return edvcerr.Wrap(edvcerr.CodeDeserializationError, err, "failed to decode tombstone bitmap")
	}
	fresh.tombstones = tombstones

	*idx = *fresh
	return nil
}

// BinaryFormatVersion is the current flat binary snapshot format version.
const BinaryFormatVersion = 1

type binaryHeader struct {
	Dimension int
	Capacity  int
	Count     int
}

// Save writes a framed snapshot: the preamble with a CBOR header carrying
// dimension, capacity and count, then the raw packed-bit block of every
// stored slot, the tombstone bitmap, and a trailing CRC32. The packed-bit
// block is the part SerializedSize counts; the rest is framing on top of it.
func (idx *BinaryIndex) Save(w io.Writer) error {
	header := binaryHeader{Dimension: idx.dim, Capacity: idx.capacity, Count: idx.count}
	body, err := persistence.EncodeHeader(header)
	if err != nil {
		return err
	}
	if err := persistence.WritePreamble(w, persistence.MagicFlatBinary, BinaryFormatVersion, body); err != nil {
		return err
	}

	vectorBytes := idx.data[:idx.count*idx.bytesPerV]
	tombstoneBytes, err := idx.tombstones.MarshalBinary()
	if err != nil {
		return edvcerr.Wrap(edvcerr.CodeSerializationError, err, "failed to encode tombstone bitmap")
	}
	if err := persistence.WriteBlock64(w, vectorBytes); err != nil {
		return err
	}
	if err := persistence.WriteBlock32(w, tombstoneBytes); err != nil {
		return err
	}
	return persistence.WriteUint32(w, persistence.CRC32(vectorBytes, tombstoneBytes))
}

// Load replaces idx's contents with the snapshot read from r.
func (idx *BinaryIndex) Load(r io.Reader) error {
	_, body, err := persistence.ReadPreamble(r, persistence.MagicFlatBinary, BinaryFormatVersion)
	if err != nil {
		return err
	}
	var header binaryHeader
	if err := persistence.DecodeHeader(body, &header); err != nil {
		return err
	}

	vectorBytes, err := persistence.ReadBlock64(r)
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
	if err := persistence.VerifyCRC32(wantCRC, vectorBytes, tombstoneBytes); err != nil {
		return err
	}

	fresh, err := NewBinary(BinaryConfig{Dimension: header.Dimension, Capacity: header.Capacity})
	if err != nil {
		return err
	}
	fresh.count = header.Count
	copy(fresh.data, vectorBytes)
	tombstones, err := bitmap.FromBytes(tombstoneBytes)
	if err != nil {
		return edvcerr.Wrap(edvcerr.CodeDeserializationError, err, "failed to decode tombstone bitmap")
	}
	fresh.tombstones = tombstones

	*idx = *fresh
	return nil
}

func encodeFloatVectors(arena *vecstore.Arena) []byte {
	dim := arena.Dimension()
	out := make([]byte, 0, arena.Len()*dim*4)
	var buf [4]byte
	for slot := 0; slot < arena.Len(); slot++ {
		for _, f := range arena.VectorAt(slot) {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
			out = append(out, buf[:]...)
		}
	}
	return out
}

func decodeFloatVectors(data []byte, dim int) [][]float32 {
	if dim == 0 {
		return nil
	}
	stride := dim * 4
	n := len(data) / stride
	out := make([][]float32, n)
	for i := 0; i < n; i++ {
		v := make([]float32, dim)
		for j := 0; j < dim; j++ {
			off := i*stride + j*4
			bits := binary.LittleEndian.Uint32(data[off : off+4])
			v[j] = math.Float32frombits(bits)
		}
		out[i] = v
	}
	return out
}
