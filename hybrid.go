package edgevec

import (
	"time"

	"github.com/xDarkicex/edgevec/internal/hybrid"
)

// FusionMethod selects how a dense and a sparse ranked list are combined
// into one.
type FusionMethod = hybrid.FusionMethod

const (
	FusionRRF    = hybrid.RRF
	FusionLinear = hybrid.Linear
)

// FusionConfig controls a HybridSearch call.
type FusionConfig struct {
	Method FusionMethod
	// RRFK is the rank-fusion constant (default 60 if zero); only used by
	// FusionRRF.
	RRFK int
	// Alpha weights the dense list in FusionLinear:
	// score = alpha*dense + (1-alpha)*sparse.
	Alpha float32
	// DenseK and SparseK are the candidate widths each source is searched
	// with before fusion; FinalK is the number of fused rows returned.
	DenseK  int
	SparseK int
	FinalK  int
}

// FusedResult is one row of a HybridSearch response: a fused score plus
// each source's original rank and score, when present.
type FusedResult struct {
	ID          VectorID
	Score       float32
	Metadata    Document
	DenseRank   int
	DenseScore  float32
	HasDense    bool
	SparseRank  int
	SparseScore float32
	HasSparse   bool
}

// HybridResults is the response to a HybridSearch call.
type HybridResults struct {
	Results []FusedResult
	Took    time.Duration
}

// HybridSearch runs a dense query against dense and a sparse query against
// sparse, then fuses the two ranked lists per cfg. Either dense or sparse
// may be nil to run a single-source search through the fusion path (useful
// for callers that want the DenseRank/SparseRank bookkeeping without a
// true hybrid query), but at least one must be non-nil.
func HybridSearch(dense *Collection, denseQuery []float32, sparse *SparseCollection, sparseQuery *SparseVector, cfg FusionConfig) (HybridResults, error) {
	start := time.Now()

	var denseRanked, sparseRanked []hybrid.Ranked
	metaByID := make(map[VectorID]Document)

	if dense != nil && denseQuery != nil {
		res, err := dense.Search(denseQuery, cfg.DenseK)
		if err != nil {
			return HybridResults{}, err
		}
		denseRanked = make([]hybrid.Ranked, len(res.Results))
		for i, r := range res.Results {
			denseRanked[i] = hybrid.Ranked{ID: r.ID, Score: r.Score}
			if r.Metadata != nil {
				metaByID[r.ID] = r.Metadata
			}
		}
	}
	if sparse != nil && sparseQuery != nil {
		res, err := sparse.Search(sparseQuery, cfg.SparseK)
		if err != nil {
			return HybridResults{}, err
		}
		sparseRanked = make([]hybrid.Ranked, len(res.Results))
		for i, r := range res.Results {
			sparseRanked[i] = hybrid.Ranked{ID: r.ID, Score: r.Score}
			if r.Metadata != nil {
				metaByID[r.ID] = r.Metadata
			}
		}
	}

	fused, err := hybrid.Fuse(denseRanked, sparseRanked, hybrid.Config{
		Method: cfg.Method,
		RRFK:   cfg.RRFK,
		Alpha:  cfg.Alpha,
		FinalK: cfg.FinalK,
	})
	if err != nil {
		return HybridResults{}, err
	}

	out := make([]FusedResult, len(fused))
	for i, f := range fused {
		out[i] = FusedResult{
			ID: f.ID, Score: f.Score, Metadata: metaByID[f.ID],
			DenseRank: f.DenseRank, DenseScore: f.DenseScore, HasDense: f.HasDense,
			SparseRank: f.SparseRank, SparseScore: f.SparseScore, HasSparse: f.HasSparse,
		}
	}
	return HybridResults{Results: out, Took: time.Since(start)}, nil
}
