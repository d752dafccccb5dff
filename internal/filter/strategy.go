package filter

import (
	"math"

	"github.com/xDarkicex/edgevec/internal/bitmap"
	"github.com/xDarkicex/edgevec/internal/edvcerr"
	"github.com/xDarkicex/edgevec/internal/metadata"
	"github.com/xDarkicex/edgevec/internal/vecstore"
)

// Strategy selects how a filter expression is combined with a vector
// search.
type Strategy int

const (
	// StrategyAuto picks Pre, Post or Hybrid based on estimated selectivity
	// and whether the expression can be resolved purely from equality
	// postings.
	StrategyAuto Strategy = iota
	// StrategyPre intersects equality postings before searching, requiring
	// the whole expression to be expressible as equality comparisons
	// combined with AND/OR.
	StrategyPre
	// StrategyPost oversamples the vector search and evaluates the filter
	// against each candidate's document directly.
	StrategyPost
	// StrategyHybrid resolves the whole expression into a candidate bitmap
	// when it is built only from equalities combined with AND/OR, and falls
	// back to post-filter oversampling otherwise (or when the bitmap-restricted
	// search returns too few hits). Partially postable expressions are not
	// split: any non-equality leaf sends the whole expression to post-filter.
	StrategyHybrid
)

func (s Strategy) String() string {
	switch s {
	case StrategyPre:
		return "pre"
	case StrategyPost:
		return "post"
	case StrategyHybrid:
		return "hybrid"
	default:
		return "auto"
	}
}

// Candidate is one vector search hit, ordered by ascending distance.
type Candidate struct {
	ID       vecstore.ID
	Distance float32
}

// SearchFunc runs a vector search for up to k results. When allowed is
// non-nil, only ids present in allowed may be returned.
type SearchFunc func(k int, allowed *bitmap.Set) ([]Candidate, error)

// Result is the outcome of a filtered search.
type Result struct {
	Candidates []Candidate
	// Complete is false when a Post or Hybrid strategy exhausted its
	// oversampled candidate pool before finding k matches; the caller may
	// choose to retry with a larger oversample.
	Complete     bool
	StrategyUsed Strategy
}

// Execute runs expr against store using the requested strategy, asking
// search for vector-search candidates as needed.
func Execute(expr Expr, store *metadata.Store, k int, strat Strategy, search SearchFunc) (*Result, error) {
	switch strat {
	case StrategyPre:
		return executePre(expr, store, k, search)
	case StrategyPost:
		return executePost(expr, store, k, search, OversampleFactor(Estimate(expr, store, DefaultSampleSize)))
	case StrategyHybrid:
		return executeHybrid(expr, store, k, search)
	default:
		return executeAuto(expr, store, k, search)
	}
}

// executeAuto estimates selectivity once via random sampling and picks
// pre-filter for highly selective predicates (s >= 0.8), post-filter for
// sparse ones (s <= 0.05), and hybrid otherwise. A high-selectivity
// predicate that can't be resolved into an exact id set (anything beyond
// equality/AND/OR) still falls back to hybrid rather than erroring, since
// executePre requires that resolution to run at all.
func executeAuto(expr Expr, store *metadata.Store, k int, search SearchFunc) (*Result, error) {
	sel := Estimate(expr, store, DefaultSampleSize)
	if sel < 0 {
		return executeHybrid(expr, store, k, search)
	}
	if sel >= 0.8 {
		if _, ok := resolveExact(expr, store); ok {
			return executePre(expr, store, k, search)
		}
		return executeHybrid(expr, store, k, search)
	}
	if sel <= 0.05 {
		return executePost(expr, store, k, search, OversampleFactor(sel))
	}
	return executeHybrid(expr, store, k, search)
}

func executePre(expr Expr, store *metadata.Store, k int, search SearchFunc) (*Result, error) {
	set, ok := resolveExact(expr, store)
	if !ok {
		return nil, edvcerr.New(edvcerr.CodeFilterStrategyInvalid, "expression cannot be resolved from equality postings for the pre-filter strategy")
	}
	cands, err := search(k, set)
	if err != nil {
		return nil, err
	}
	return &Result{Candidates: cands, Complete: len(cands) >= k || set.Cardinality() <= len(cands), StrategyUsed: StrategyPre}, nil
}

func executePost(expr Expr, store *metadata.Store, k int, search SearchFunc, oversample float64) (*Result, error) {
	n := int(math.Ceil(float64(k) * oversample))
	if n < k {
		n = k
	}
	if n > EFCap {
		n = EFCap
	}
	raw, err := search(n, nil)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, k)
	for _, c := range raw {
		doc, _ := store.Get(c.ID)
		if Eval(expr, doc) {
			out = append(out, c)
			if len(out) == k {
				break
			}
		}
	}
	return &Result{Candidates: out, Complete: len(out) == k, StrategyUsed: StrategyPost}, nil
}

func executeHybrid(expr Expr, store *metadata.Store, k int, search SearchFunc) (*Result, error) {
	set, ok := resolveExact(expr, store)
	if ok {
		cands, err := search(k, set)
		if err != nil {
			return nil, err
		}
		if len(cands) >= k || set.Cardinality() <= len(cands) {
			return &Result{Candidates: cands, Complete: true, StrategyUsed: StrategyHybrid}, nil
		}
	}
	sel := Estimate(expr, store, DefaultSampleSize)
	res, err := executePost(expr, store, k, search, OversampleFactor(sel))
	if err != nil {
		return nil, err
	}
	res.StrategyUsed = StrategyHybrid
	return res, nil
}

// resolveExact attempts to turn expr into an exact candidate id set using
// equality postings alone. It succeeds for any expression built from
// CompareExpr(CmpEq) leaves combined with AND/OR; anything else (ranges,
// string matches, NOT, non-equality comparisons) fails resolution and the
// caller must fall back to direct evaluation.
func resolveExact(expr Expr, store *metadata.Store) (*bitmap.Set, bool) {
	switch n := expr.(type) {
	case *CompareExpr:
		if n.Op != CmpEq {
			return nil, false
		}
		set := store.EqualityPostings(n.Field, n.Value.Value)
		if set == nil {
			return bitmap.New(), true
		}
		return set, true
	case *BinaryExpr:
		left, ok := resolveExact(n.Left, store)
		if !ok {
			return nil, false
		}
		right, ok := resolveExact(n.Right, store)
		if !ok {
			return nil, false
		}
		if n.Op == OpAnd {
			return left.And(right), true
		}
		return left.Or(right), true
	default:
		return nil, false
	}
}
