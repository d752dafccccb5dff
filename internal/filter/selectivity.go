package filter

import "github.com/xDarkicex/edgevec/internal/metadata"

// DefaultSampleSize bounds how many stored documents Estimate inspects.
const DefaultSampleSize = 256

const (
	// EFCap bounds the oversampled candidate width a post-filter or
	// hybrid search will ever request, regardless of how low the
	// estimated selectivity is.
	EFCap = 1000
	// MaxOversample bounds the 1/selectivity oversample multiplier before
	// EFCap is applied.
	MaxOversample = 10.0
	// DefaultOversample is used when selectivity cannot be estimated at
	// all (an empty store), rather than derived from a sampled fraction.
	DefaultOversample = 3.0
)

// Estimate returns the fraction of sampled documents expr matches, in
// [0, 1]. It is used to pick an execution strategy and to decide an
// oversampling multiplier for the post-filter and hybrid strategies. An
// empty store cannot be sampled at all; Estimate reports that case as -1
// rather than guessing a fraction, so OversampleFactor can fall back to
// DefaultOversample instead of treating it as a real selectivity.
func Estimate(expr Expr, store *metadata.Store, sampleSize int) float64 {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	sample := store.Sample(sampleSize)
	if len(sample) == 0 {
		return -1
	}
	matches := 0
	for _, doc := range sample {
		if Eval(expr, doc) {
			matches++
		}
	}
	return float64(matches) / float64(len(sample))
}

// OversampleFactor derives a search oversampling multiplier from an
// estimated selectivity: the sparser the matches, the more candidates a
// post-filter strategy must pull from the index to reliably reach k
// results. min(MAX_OVERSAMPLE, 1/s); a negative selectivity (Estimate
// could not sample anything) falls back to DefaultOversample, while an
// exact selectivity of zero (the predicate matched nothing in a
// non-empty sample) saturates at MaxOversample rather than diverging.
// The caller is responsible for applying EFCap and the k floor to the
// resulting candidate width.
func OversampleFactor(selectivity float64) float64 {
	if selectivity < 0 {
		return DefaultOversample
	}
	if selectivity == 0 {
		return MaxOversample
	}
	factor := 1.0 / selectivity
	if factor > MaxOversample {
		return MaxOversample
	}
	return factor
}
