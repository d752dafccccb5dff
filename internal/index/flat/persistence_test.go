package flat

import (
	"bytes"
	"testing"

	"github.com/xDarkicex/edgevec/internal/distance"
)

func TestDenseSaveLoadRoundTrip(t *testing.T) {
	idx, _ := New(DenseConfig{Dimension: 3, Metric: distance.Cosine, CleanupThreshold: 0.5})
	a, _ := idx.Insert([]float32{1, 0, 0})
	_, _ = idx.Insert([]float32{0, 1, 0})
	c, _ := idx.Insert([]float32{0, 0, 1})
	idx.Delete(a)

	var buf bytes.Buffer
	if err := idx.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, _ := New(DenseConfig{Dimension: 3, Metric: distance.Cosine})
	if err := loaded.Load(&buf); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != idx.Len() {
		t.Fatalf("loaded len %d, want %d", loaded.Len(), idx.Len())
	}
	if _, err := loaded.Get(a); err == nil {
		t.Fatal("deleted id should not resolve after load")
	}
	v, err := loaded.Get(c)
	if err != nil || v[2] != 1 {
		t.Fatalf("surviving id should resolve after load: %v, %v", v, err)
	}
}

func TestDenseLoadRejectsCorruptedCRC(t *testing.T) {
	idx, _ := New(DenseConfig{Dimension: 2, Metric: distance.Euclidean})
	idx.Insert([]float32{1, 2})

	var buf bytes.Buffer
	if err := idx.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	corrupted := buf.Bytes()
	corrupted[len(corrupted)/2] ^= 0xFF

	loaded, _ := New(DenseConfig{Dimension: 2, Metric: distance.Euclidean})
	if err := loaded.Load(bytes.NewReader(corrupted)); err == nil {
		t.Fatal("expected checksum mismatch on corrupted snapshot")
	}
}

func TestBinarySaveLoadRoundTrip(t *testing.T) {
	idx, _ := NewBinary(BinaryConfig{Dimension: 16, Capacity: 4})
	id1, _ := idx.Insert([]byte{0xFF, 0xFF})
	id2, _ := idx.Insert([]byte{0x00, 0x00})
	idx.Delete(id1)

	var buf bytes.Buffer
	if err := idx.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, _ := NewBinary(BinaryConfig{Dimension: 16, Capacity: 4})
	if err := loaded.Load(&buf); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != idx.Len() {
		t.Fatalf("loaded len %d, want %d", loaded.Len(), idx.Len())
	}
	if _, err := loaded.Get(id1); err == nil {
		t.Fatal("deleted id should not resolve after load")
	}
	v, err := loaded.Get(id2)
	if err != nil || v[0] != 0x00 {
		t.Fatalf("surviving id should resolve after load: %v, %v", v, err)
	}
	if loaded.SerializedSize() != idx.SerializedSize() {
		t.Fatalf("serialized size mismatch: %d vs %d", loaded.SerializedSize(), idx.SerializedSize())
	}
}
