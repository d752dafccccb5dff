// Package quant implements binary quantisation: a 1-bit-per-dimension lossy
// compression of a float32 vector by the sign of each component. It is the
// sidecar format the flat dense index builds when quantisation is enabled,
// letting a query screen candidates by Hamming distance before falling back
// to exact float comparison.
package quant

import "github.com/xDarkicex/edgevec/internal/edvcerr"

// BytesForDim returns the packed-bit byte length for a vector of the given
// float dimension.
func BytesForDim(dim int) int {
	return (dim + 7) / 8
}

// Binarize packs vector into one bit per dimension: bit = v[i] > 0. The
// returned slice has BytesForDim(len(vector)) bytes, bits filled MSB-first
// within each byte.
func Binarize(vector []float32) []byte {
	out := make([]byte, BytesForDim(len(vector)))
	for i, v := range vector {
		if v > 0 {
			out[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return out
}

// Sidecar holds the packed-bit representation of every live vector in an
// index, indexed by the same dense slot numbering as the owning arena.
// Insert or delete on the owning index invalidates the sidecar; it must be
// rebuilt with Build before Query is used again.
type Sidecar struct {
	dim   int
	bytes int
	bits  [][]byte
}

// NewSidecar returns an empty sidecar for vectors of the given float
// dimension.
func NewSidecar(dim int) *Sidecar {
	return &Sidecar{dim: dim, bytes: BytesForDim(dim)}
}

// Dimension returns the float dimension the sidecar was built for.
func (s *Sidecar) Dimension() int { return s.dim }

// Len returns the number of binarised vectors held.
func (s *Sidecar) Len() int { return len(s.bits) }

// Build replaces the sidecar's contents by binarising every vector in
// vectors, in slot order.
func (s *Sidecar) Build(vectors [][]float32) error {
	bits := make([][]byte, len(vectors))
	for i, v := range vectors {
		if len(v) != s.dim {
			return edvcerr.Newf(edvcerr.CodeDimensionMismatch, "vector at slot %d has dimension %d, sidecar expects %d", i, len(v), s.dim)
		}
		bits[i] = Binarize(v)
	}
	s.bits = bits
	return nil
}

// At returns the packed bits for the given dense slot.
func (s *Sidecar) At(slot int) []byte {
	return s.bits[slot]
}
