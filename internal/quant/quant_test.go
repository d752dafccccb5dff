package quant

import (
	"testing"

	"github.com/xDarkicex/edgevec/internal/distance"
)

func TestBinarizeSignBit(t *testing.T) {
	v := []float32{1, -1, 2, -2, 0, 0.5, -0.5, 3}
	got := Binarize(v)
	if len(got) != 1 {
		t.Fatalf("got %d bytes, want 1", len(got))
	}
	// bit = v[i] > 0, MSB first: 1,0,1,0,0,1,0,1 -> 0b10100101
	want := byte(0b10100101)
	if got[0] != want {
		t.Fatalf("got %08b, want %08b", got[0], want)
	}
}

func TestBytesForDim(t *testing.T) {
	cases := map[int]int{8: 1, 9: 2, 64: 8, 1: 1, 0: 0}
	for dim, want := range cases {
		if got := BytesForDim(dim); got != want {
			t.Errorf("BytesForDim(%d) = %d, want %d", dim, got, want)
		}
	}
}

func TestSidecarBuildAndHamming(t *testing.T) {
	vectors := [][]float32{
		{1, 1, 1, 1, 1, 1, 1, 1},
		{-1, -1, -1, -1, -1, -1, -1, -1},
		{1, -1, 1, -1, 1, -1, 1, -1},
	}
	sc := NewSidecar(8)
	if err := sc.Build(vectors); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if sc.Len() != 3 {
		t.Fatalf("got %d entries, want 3", sc.Len())
	}
	query := Binarize([]float32{1, 1, 1, 1, 1, 1, 1, 1})
	d0, err := distance.HammingBits(query, sc.At(0))
	if err != nil || d0 != 0 {
		t.Fatalf("expected distance 0 to identical vector, got %d err=%v", d0, err)
	}
	d1, err := distance.HammingBits(query, sc.At(1))
	if err != nil || d1 != 8 {
		t.Fatalf("expected distance 8 to opposite vector, got %d err=%v", d1, err)
	}
}

func TestSidecarBuildDimensionMismatch(t *testing.T) {
	sc := NewSidecar(4)
	err := sc.Build([][]float32{{1, 2, 3}})
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}
