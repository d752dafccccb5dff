// Package persistence implements the shared framed snapshot codec used by
// every index's save/load path: a 4-byte magic, a little-endian version,
// a CBOR-encoded header body, one or more length-prefixed data blocks, and
// a CRC32 computed over the concatenated data blocks. A streaming chunk
// reader lets a host pull fixed-size chunks of an encoded snapshot instead
// of holding the whole buffer at once.
package persistence

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/xDarkicex/edgevec/internal/edvcerr"
)

// Magic identifies a snapshot's owning component.
type Magic [4]byte

var (
	MagicHNSW       = Magic{'E', 'V', 'E', 'C'}
	MagicFlatDense  = Magic{'E', 'V', 'F', 'I'}
	MagicSparse     = Magic{'E', 'S', 'P', 'V'}
	MagicFlatBinary = Magic{'E', 'V', 'B', 'I'}
)

func (m Magic) String() string { return string(m[:]) }

// DefaultChunkSize is the default streaming chunk size (10 MiB).
const DefaultChunkSize = 10 * 1024 * 1024

// WriteUint32 / ReadUint32 and the 64-bit equivalents are the little-endian
// primitives every framed length prefix uses.
func WriteUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, truncated(err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func WriteUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func ReadUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, truncated(err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func truncated(cause error) error {
	return edvcerr.Wrap(edvcerr.CodeTruncatedData, cause, "snapshot data ends before declared length")
}

// WriteBlock32 writes a block length-prefixed with a u32 LE length, used
// for the deleted-bitmap block.
func WriteBlock32(w io.Writer, data []byte) error {
	if err := WriteUint32(w, uint32(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

func ReadBlock32(r io.Reader) ([]byte, error) {
	n, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, truncated(err)
	}
	return buf, nil
}

// WriteBlock64 writes a block length-prefixed with a u64 LE length, used
// for the vectors and quantised-sidecar blocks.
func WriteBlock64(w io.Writer, data []byte) error {
	if err := WriteUint64(w, uint64(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

func ReadBlock64(r io.Reader) ([]byte, error) {
	n, err := ReadUint64(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, truncated(err)
	}
	return buf, nil
}

// CRC32 computes the checksum over the concatenation of blocks, in order.
func CRC32(blocks ...[]byte) uint32 {
	h := crc32.NewIEEE()
	for _, b := range blocks {
		h.Write(b)
	}
	return h.Sum32()
}

// EncodeHeader CBOR-encodes header into the header-body bytes stored after
// the magic/version/length prefix.
func EncodeHeader(header interface{}) ([]byte, error) {
	body, err := cbor.Marshal(header)
	if err != nil {
		return nil, edvcerr.Wrap(edvcerr.CodeSerializationError, err, "failed to encode snapshot header")
	}
	return body, nil
}

// DecodeHeader CBOR-decodes a header body into out (a pointer).
func DecodeHeader(body []byte, out interface{}) error {
	if err := cbor.Unmarshal(body, out); err != nil {
		return edvcerr.Wrap(edvcerr.CodeDeserializationError, err, "failed to decode snapshot header")
	}
	return nil
}

// WritePreamble writes magic, version, and the length-prefixed header body.
func WritePreamble(w io.Writer, magic Magic, version uint32, headerBody []byte) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := WriteUint32(w, version); err != nil {
		return err
	}
	if err := WriteUint32(w, uint32(len(headerBody))); err != nil {
		return err
	}
	_, err := w.Write(headerBody)
	return err
}

// ReadPreamble reads and validates the magic against want, reads the
// version (rejecting anything newer than maxVersion), and returns the raw
// header body for the caller to decode.
func ReadPreamble(r io.Reader, want Magic, maxVersion uint32) (version uint32, headerBody []byte, err error) {
	var got [4]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return 0, nil, truncated(err)
	}
	if !bytes.Equal(got[:], want[:]) {
		return 0, nil, edvcerr.Newf(edvcerr.CodeInvalidMagic, "snapshot magic %q does not match expected %q", got, want)
	}
	version, err = ReadUint32(r)
	if err != nil {
		return 0, nil, err
	}
	if version > maxVersion {
		return 0, nil, edvcerr.Newf(edvcerr.CodeUnsupportedVersion, "snapshot version %d newer than supported version %d", version, maxVersion)
	}
	headerLen, err := ReadUint32(r)
	if err != nil {
		return 0, nil, err
	}
	headerBody = make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBody); err != nil {
		return 0, nil, truncated(err)
	}
	return version, headerBody, nil
}

// VerifyCRC32 compares want against the checksum recomputed from blocks and
// returns edvcerr.CodeChecksumMismatch on mismatch.
func VerifyCRC32(want uint32, blocks ...[]byte) error {
	if got := CRC32(blocks...); got != want {
		return edvcerr.Newf(edvcerr.CodeChecksumMismatch, "checksum mismatch: stored %08x, recomputed %08x", want, got)
	}
	return nil
}

// ChunkReader is a pull iterator over a byte slice, yielding chunks of at
// most chunkSize bytes so a host can write a snapshot to chunked storage
// without holding the whole buffer.
type ChunkReader struct {
	data      []byte
	pos       int
	chunkSize int
}

// NewChunkReader returns a ChunkReader over data. A chunkSize of 0 uses
// DefaultChunkSize.
func NewChunkReader(data []byte, chunkSize int) *ChunkReader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ChunkReader{data: data, chunkSize: chunkSize}
}

// Next returns the next chunk and true, or (nil, false) once exhausted.
func (c *ChunkReader) Next() ([]byte, bool) {
	if c.pos >= len(c.data) {
		return nil, false
	}
	end := c.pos + c.chunkSize
	if end > len(c.data) {
		end = len(c.data)
	}
	chunk := c.data[c.pos:end]
	c.pos = end
	return chunk, true
}

// Remaining reports how many bytes have not yet been yielded.
func (c *ChunkReader) Remaining() int {
	return len(c.data) - c.pos
}
