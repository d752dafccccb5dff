// Package sparse implements CSR-packed sparse vector storage and
// brute-force dot-product top-k search, used for BM25/TF-IDF style
// features and as one half of hybrid retrieval.
package sparse

import (
	"math"

	"github.com/xDarkicex/edgevec/internal/edvcerr"
)

// Vector is a single sparse vector: strictly ascending indices paired with
// finite values, all less than the declared dimension.
type Vector struct {
	Dim     int
	Indices []uint32
	Values  []float32
}

// Validate checks the construction invariants: at least one non-zero,
// strictly ascending indices all below Dim, and no NaN/Inf values.
func (v *Vector) Validate() error {
	if len(v.Indices) != len(v.Values) {
		return edvcerr.Newf(edvcerr.CodeInvalidDimensions, "indices/values length mismatch: %d vs %d", len(v.Indices), len(v.Values))
	}
	if len(v.Indices) == 0 {
		return edvcerr.New(edvcerr.CodeInvalidDimensions, "sparse vector must have at least one non-zero element")
	}
	var last int64 = -1
	for i, idx := range v.Indices {
		if int64(idx) <= last {
			return edvcerr.Newf(edvcerr.CodeInvalidDimensions, "indices must be strictly ascending: index %d (%d) follows %d", i, idx, last)
		}
		last = int64(idx)
		if int(idx) >= v.Dim {
			return edvcerr.Newf(edvcerr.CodeInvalidDimensions, "index %d out of bounds for dimension %d", idx, v.Dim)
		}
		val := v.Values[i]
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return edvcerr.Newf(edvcerr.CodeInvalidDimensions, "value at index %d is NaN or Inf", idx)
		}
	}
	return nil
}

// DotSelf returns dot(v, v) = sum of values squared.
func (v *Vector) DotSelf() float64 {
	var sum float64
	for _, val := range v.Values {
		sum += float64(val) * float64(val)
	}
	return sum
}

// Dot computes the sparse dot product of a and b via two-pointer
// intersection of their sorted index arrays.
func Dot(a, b *Vector) float32 {
	var i, j int
	var sum float64
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] < b.Indices[j]:
			i++
		case a.Indices[i] > b.Indices[j]:
			j++
		default:
			sum += float64(a.Values[i]) * float64(b.Values[j])
			i++
			j++
		}
	}
	return float32(sum)
}
