// Package hybrid fuses a dense ranked list and a sparse ranked list into a
// single ranked list, by Reciprocal Rank Fusion or min-max-normalised
// linear combination.
package hybrid

import (
	"sort"

	"github.com/xDarkicex/edgevec/internal/edvcerr"
	"github.com/xDarkicex/edgevec/internal/vecstore"
)

// Ranked is a single scored hit from one retrieval source, in the order it
// was returned (rank 1 is Ranked[0]).
type Ranked struct {
	ID    vecstore.ID
	Score float32
}

// FusionMethod selects how dense and sparse lists are combined.
type FusionMethod int

const (
	RRF FusionMethod = iota
	Linear
)

// Config controls a fusion call.
type Config struct {
	Method FusionMethod
	// RRFK is the rank-fusion constant k_rrf (default 60 if zero).
	RRFK int
	// Alpha weights the dense list in Linear fusion: score = alpha*dense + (1-alpha)*sparse.
	Alpha float32
	FinalK int
}

// DefaultRRFK is the default Reciprocal Rank Fusion constant.
const DefaultRRFK = 60

// Validate checks the fusion config per the spec's "final_k > 0,
// dense_k+sparse_k > 0" gate — dense_k/sparse_k are the caller's concern
// (the width each source was retrieved with), so Validate only checks
// what Config itself owns.
func (c Config) Validate() error {
	if c.FinalK <= 0 {
		return edvcerr.New(edvcerr.CodeInvalidK, "final_k must be positive")
	}
	if c.Method == Linear && (c.Alpha < 0 || c.Alpha > 1) {
		return edvcerr.Newf(edvcerr.CodeInvalidDimensions, "alpha must be in [0, 1], got %v", c.Alpha)
	}
	return nil
}

// Fused is one output row: a fused score plus each source's original rank
// (1-indexed, 0 meaning absent) and score.
type Fused struct {
	ID         vecstore.ID
	Score      float32
	DenseRank  int
	DenseScore float32
	HasDense   bool
	SparseRank  int
	SparseScore float32
	HasSparse   bool
}

// Fuse combines dense and sparse into a single list of at most cfg.FinalK
// rows, sorted descending by fused score with ties broken by ascending id.
func Fuse(dense, sparse []Ranked, cfg Config) ([]Fused, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Method {
	case RRF:
		return fuseRRF(dense, sparse, cfg), nil
	case Linear:
		return fuseLinear(dense, sparse, cfg), nil
	default:
		return nil, edvcerr.Newf(edvcerr.CodeInvalidDimensions, "unknown fusion method %v", cfg.Method)
	}
}

type row struct {
	id          vecstore.ID
	score       float64
	denseRank   int
	denseScore  float32
	hasDense    bool
	sparseRank  int
	sparseScore float32
	hasSparse   bool
}

func mergeRows(dense, sparse []Ranked) map[vecstore.ID]*row {
	rows := make(map[vecstore.ID]*row, len(dense)+len(sparse))
	for i, r := range dense {
		rows[r.ID] = &row{id: r.ID, denseRank: i + 1, denseScore: r.Score, hasDense: true}
	}
	for i, r := range sparse {
		if existing, ok := rows[r.ID]; ok {
			existing.sparseRank = i + 1
			existing.sparseScore = r.Score
			existing.hasSparse = true
		} else {
			rows[r.ID] = &row{id: r.ID, sparseRank: i + 1, sparseScore: r.Score, hasSparse: true}
		}
	}
	return rows
}

func fuseRRF(dense, sparse []Ranked, cfg Config) []Fused {
	k := cfg.RRFK
	if k == 0 {
		k = DefaultRRFK
	}
	rows := mergeRows(dense, sparse)
	for _, r := range rows {
		if r.hasDense {
			r.score += 1.0 / float64(k+r.denseRank)
		}
		if r.hasSparse {
			r.score += 1.0 / float64(k+r.sparseRank)
		}
	}
	return finalize(rows, cfg.FinalK)
}

func fuseLinear(dense, sparse []Ranked, cfg Config) []Fused {
	denseNorm := minMaxNormalize(dense)
	sparseNorm := minMaxNormalize(sparse)
	rows := mergeRows(dense, sparse)
	for id, r := range rows {
		d := float64(0)
		if r.hasDense {
			d = denseNorm[id]
		}
		s := float64(0)
		if r.hasSparse {
			s = sparseNorm[id]
		}
		r.score = float64(cfg.Alpha)*d + float64(1-cfg.Alpha)*s
	}
	return finalize(rows, cfg.FinalK)
}

// minMaxNormalize maps scores to [0, 1]; if every score is equal, every id
// maps to 1 (spec-specified degenerate case).
func minMaxNormalize(list []Ranked) map[vecstore.ID]float64 {
	out := make(map[vecstore.ID]float64, len(list))
	if len(list) == 0 {
		return out
	}
	lo, hi := list[0].Score, list[0].Score
	for _, r := range list {
		if r.Score < lo {
			lo = r.Score
		}
		if r.Score > hi {
			hi = r.Score
		}
	}
	if hi == lo {
		for _, r := range list {
			out[r.ID] = 1.0
		}
		return out
	}
	for _, r := range list {
		out[r.ID] = float64(r.Score-lo) / float64(hi-lo)
	}
	return out
}

func finalize(rows map[vecstore.ID]*row, finalK int) []Fused {
	out := make([]Fused, 0, len(rows))
	for _, r := range rows {
		out = append(out, Fused{
			ID: r.id, Score: float32(r.score),
			DenseRank: r.denseRank, DenseScore: r.denseScore, HasDense: r.hasDense,
			SparseRank: r.sparseRank, SparseScore: r.sparseScore, HasSparse: r.hasSparse,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if finalK < len(out) {
		out = out[:finalK]
	}
	return out
}
