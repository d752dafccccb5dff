package persistence

import (
	"bytes"
	"testing"
)

type testHeader struct {
	Dimensions int
	Count      int
	Checksum   uint32
}

func TestPreambleRoundTrip(t *testing.T) {
	header := testHeader{Dimensions: 8, Count: 3, Checksum: 0xdeadbeef}
	body, err := EncodeHeader(header)
	if err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}

	var buf bytes.Buffer
	if err := WritePreamble(&buf, MagicHNSW, 1, body); err != nil {
		t.Fatalf("WritePreamble: %v", err)
	}

	version, gotBody, err := ReadPreamble(&buf, MagicHNSW, 1)
	if err != nil {
		t.Fatalf("ReadPreamble: %v", err)
	}
	if version != 1 {
		t.Fatalf("got version %d, want 1", version)
	}
	var decoded testHeader
	if err := DecodeHeader(gotBody, &decoded); err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if decoded != header {
		t.Fatalf("got %+v, want %+v", decoded, header)
	}
}

func TestPreambleRejectsWrongMagic(t *testing.T) {
	var buf bytes.Buffer
	body, _ := EncodeHeader(testHeader{})
	_ = WritePreamble(&buf, MagicFlatDense, 1, body)
	_, _, err := ReadPreamble(&buf, MagicHNSW, 1)
	if err == nil {
		t.Fatal("expected magic mismatch error")
	}
}

func TestPreambleRejectsNewerVersion(t *testing.T) {
	var buf bytes.Buffer
	body, _ := EncodeHeader(testHeader{})
	_ = WritePreamble(&buf, MagicHNSW, 5, body)
	_, _, err := ReadPreamble(&buf, MagicHNSW, 1)
	if err == nil {
		t.Fatal("expected unsupported version error")
	}
}

func TestBlockRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	data := []byte("some vector bytes")
	if err := WriteBlock64(&buf, data); err != nil {
		t.Fatalf("WriteBlock64: %v", err)
	}
	got, err := ReadBlock64(&buf)
	if err != nil {
		t.Fatalf("ReadBlock64: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("got %q, want %q", got, data)
	}
}

func TestCRC32MismatchDetected(t *testing.T) {
	blocks := [][]byte{[]byte("a"), []byte("b")}
	sum := CRC32(blocks...)
	if err := VerifyCRC32(sum, blocks...); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	corrupted := [][]byte{[]byte("a"), []byte("x")}
	if err := VerifyCRC32(sum, corrupted...); err == nil {
		t.Fatal("expected checksum mismatch")
	}
}

func TestTruncatedDataDetected(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteUint64(&buf, 100) // claims 100 bytes but buffer has none
	_, err := ReadBlock64(&buf)
	if err == nil {
		t.Fatal("expected truncated data error")
	}
}

func TestChunkReader(t *testing.T) {
	data := make([]byte, 25)
	for i := range data {
		data[i] = byte(i)
	}
	cr := NewChunkReader(data, 10)
	var reassembled []byte
	for {
		chunk, ok := cr.Next()
		if !ok {
			break
		}
		reassembled = append(reassembled, chunk...)
	}
	if !bytes.Equal(reassembled, data) {
		t.Fatalf("chunked reassembly mismatch")
	}
}
