// Package benchmark holds standalone performance benchmarks against the
// edgevec package's public API, separated from the package-level unit
// tests so a routine `go test ./...` doesn't also pay for large-N index
// construction.
package benchmark

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/xDarkicex/edgevec"
)

const benchDimension = 128

func randomVector(rng *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = rng.Float32()*2 - 1
	}
	return v
}

func buildCollection(b *testing.B, n int, opts ...edgevec.CollectionOption) *edgevec.Collection {
	b.Helper()
	cfg := append([]edgevec.CollectionOption{
		edgevec.WithDimension(benchDimension),
		edgevec.WithHNSW(16, 32, 200, 50),
		edgevec.WithSeed(42),
	}, opts...)

	engine, err := edgevec.New(edgevec.WithMetrics(false))
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	coll, err := engine.CreateCollection("bench", cfg...)
	if err != nil {
		b.Fatalf("CreateCollection: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < n; i++ {
		if _, err := coll.Insert(randomVector(rng, benchDimension), nil); err != nil {
			b.Fatalf("Insert: %v", err)
		}
	}
	return coll
}

func BenchmarkHNSWInsert(b *testing.B) {
	for _, n := range []int{1_000, 10_000} {
		n := n
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			rng := rand.New(rand.NewSource(7))
			vectors := make([][]float32, b.N)
			for i := range vectors {
				vectors[i] = randomVector(rng, benchDimension)
			}

			engine, err := edgevec.New(edgevec.WithMetrics(false))
			if err != nil {
				b.Fatalf("New: %v", err)
			}
			coll, err := engine.CreateCollection("bench",
				edgevec.WithDimension(benchDimension),
				edgevec.WithHNSW(16, 32, 200, 50),
				edgevec.WithSeed(42),
			)
			if err != nil {
				b.Fatalf("CreateCollection: %v", err)
			}

			// Pre-warm with n vectors so the benchmarked inserts land on a
			// graph of realistic size rather than an empty one.
			for i := 0; i < n; i++ {
				if _, err := coll.Insert(randomVector(rng, benchDimension), nil); err != nil {
					b.Fatalf("Insert: %v", err)
				}
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := coll.Insert(vectors[i], nil); err != nil {
					b.Fatalf("Insert: %v", err)
				}
			}
		})
	}
}

func BenchmarkHNSWSearch(b *testing.B) {
	for _, n := range []int{1_000, 25_000} {
		n := n
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			coll := buildCollection(b, n)
			rng := rand.New(rand.NewSource(99))
			query := randomVector(rng, benchDimension)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := coll.Search(query, 10); err != nil {
					b.Fatalf("Search: %v", err)
				}
			}
		})
	}
}

func BenchmarkFlatDenseSearch(b *testing.B) {
	coll := buildCollection(b, 5_000, edgevec.WithIndexKind(edgevec.IndexFlatDense))
	rng := rand.New(rand.NewSource(99))
	query := randomVector(rng, benchDimension)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := coll.Search(query, 10); err != nil {
			b.Fatalf("Search: %v", err)
		}
	}
}
