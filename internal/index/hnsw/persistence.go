package hnsw

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

// FormatVersion is the current HNSW snapshot format version.
const FormatVersion = 1

type snapshotHeader struct {
	Dimension       int
	M               int
	M0              int
	EfConstruction  int
	EfSearch        int
	LevelMultiplier float64
	Metric          int
	RandomSeed      int64
	NextID          uint64
	EntrySlot       int
	MaxLevel        int
	NodeLevels      []int
	Links           [][][]uint32 // [slot][level] -> neighbor slots
	SlotIDs         []uint64     // [slot] -> original vecstore.ID, since slots are not necessarily id-1 after a compact
}

// Save writes a complete snapshot of the graph: magic/version preamble, a
// CBOR-encoded header carrying configuration and graph topology, a
// length-prefixed vector block, a length-prefixed tombstone-bitmap block,
// and a trailing CRC32 over both data blocks.
func (idx *Index) Save(w io.Writer) error {
	nodeLevels := make([]int, len(idx.nodes))
	links := make([][][]uint32, len(idx.nodes))
	slotIDs := make([]uint64, len(idx.nodes))
	for i, n := range idx.nodes {
		nodeLevels[i] = n.level
		links[i] = n.links
		slotIDs[i] = uint64(idx.arena.IDAt(i))
	}

	header := snapshotHeader{
		Dimension:       idx.cfg.Dimension,
		M:               idx.cfg.M,
		M0:              idx.cfg.M0,
		EfConstruction:  idx.cfg.EfConstruction,
		EfSearch:        idx.cfg.EfSearch,
		LevelMultiplier: idx.cfg.LevelMultiplier,
		Metric:          int(idx.cfg.Metric),
		RandomSeed:      idx.cfg.RandomSeed,
		NextID:          uint64(idx.alloc.Peek()),
		EntrySlot:       idx.entrySlot,
		MaxLevel:        idx.maxLevel,
		NodeLevels:      nodeLevels,
		Links:           links,
		SlotIDs:         slotIDs,
	}
	body, err := persistence.EncodeHeader(header)
	if err != nil {
		return err
	}
	if err := persistence.WritePreamble(w, persistence.MagicHNSW, FormatVersion, body); err != nil {
		return err
	}

	vectorBytes := encodeVectors(idx.arena)
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
func (idx *Index) Load(r io.Reader) error {
	_, body, err := persistence.ReadPreamble(r, persistence.MagicHNSW, FormatVersion)
	if err != nil {
		return err
	}
	var header snapshotHeader
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

	cfg := Config{
		Dimension:       header.Dimension,
		M:               header.M,
		M0:              header.M0,
		EfConstruction:  header.EfConstruction,
		EfSearch:        header.EfSearch,
		LevelMultiplier: header.LevelMultiplier,
		Metric:          distance.Metric(header.Metric),
		RandomSeed:      header.RandomSeed,
	}
	fresh, err := New(cfg)
	if err != nil {
		return err
	}

	arena := vecstore.NewArena(cfg.Dimension)
	vectors := decodeVectors(vectorBytes, cfg.Dimension)
	for i, v := range vectors {
		arena.Append(vecstore.ID(header.SlotIDs[i]), v)
	}
	fresh.arena = arena
	fresh.alloc.Restore(vecstore.ID(header.NextID - 1))

	nodes := make([]*node, len(header.NodeLevels))
	for i, lvl := range header.NodeLevels {
		n := newNode(lvl)
		n.links = header.Links[i]
		nodes[i] = n
	}
	fresh.nodes = nodes
	fresh.entrySlot = header.EntrySlot
	fresh.maxLevel = header.MaxLevel

	tombstones, err := bitmap.FromBytes(tombstoneBytes)
	if err != nil {
		return edvcerr.Wrap(edvcerr.CodeDeserializationError, err, "failed to decode tombstone bitmap")
	}
	fresh.tombstones = tombstones

	*idx = *fresh
	return nil
}

func encodeVectors(arena *vecstore.Arena) []byte {
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

func decodeVectors(data []byte, dim int) [][]float32 {
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
