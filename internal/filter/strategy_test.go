package filter

import (
	"testing"

	"github.com/xDarkicex/edgevec/internal/bitmap"
	"github.com/xDarkicex/edgevec/internal/metadata"
	"github.com/xDarkicex/edgevec/internal/vecstore"
)

// fakeSearch returns every known id in ascending order, honoring the
// allowed bitmap when present, truncated to k.
func fakeSearch(ids []vecstore.ID) SearchFunc {
	return func(k int, allowed *bitmap.Set) ([]Candidate, error) {
		var out []Candidate
		for i, id := range ids {
			if allowed != nil && !allowed.Contains(uint32(id)) {
				continue
			}
			out = append(out, Candidate{ID: id, Distance: float32(i)})
			if len(out) == k {
				break
			}
		}
		return out, nil
	}
}

func buildStrategyStore(t *testing.T) (*metadata.Store, []vecstore.ID) {
	t.Helper()
	s := metadata.NewStore()
	ids := []vecstore.ID{1, 2, 3, 4, 5}
	cats := []string{"shoes", "hats", "shoes", "shoes", "hats"}
	for i, id := range ids {
		if err := s.Put(id, metadata.Document{"category": cats[i]}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	return s, ids
}

func TestExecutePreFilter(t *testing.T) {
	store, ids := buildStrategyStore(t)
	expr := mustParse(t, `category = "shoes"`)
	res, err := Execute(expr, store, 10, StrategyPre, fakeSearch(ids))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Candidates) != 3 {
		t.Fatalf("got %d candidates, want 3", len(res.Candidates))
	}
	for _, c := range res.Candidates {
		doc, _ := store.Get(c.ID)
		if doc["category"] != "shoes" {
			t.Errorf("id %d: category %v, want shoes", c.ID, doc["category"])
		}
	}
}

func TestExecutePreFilterUnresolvableFails(t *testing.T) {
	store, ids := buildStrategyStore(t)
	expr := mustParse(t, `category CONTAINS "sho"`)
	_, err := Execute(expr, store, 10, StrategyPre, fakeSearch(ids))
	if err == nil {
		t.Fatal("expected error: string-match expression cannot use pre-filter strategy")
	}
}

func TestExecutePostFilter(t *testing.T) {
	store, ids := buildStrategyStore(t)
	expr := mustParse(t, `category = "hats"`)
	res, err := Execute(expr, store, 2, StrategyPost, fakeSearch(ids))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Candidates) != 2 || !res.Complete {
		t.Fatalf("got %d candidates (complete=%v), want 2 complete", len(res.Candidates), res.Complete)
	}
}

func TestExecutePostFilterIncomplete(t *testing.T) {
	store, ids := buildStrategyStore(t)
	expr := mustParse(t, `category = "hats"`)
	// Ask for more matches than exist: only 2 "hats" rows total.
	res, err := Execute(expr, store, 5, StrategyPost, fakeSearch(ids))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Complete {
		t.Fatal("expected incomplete result when fewer than k matches exist")
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(res.Candidates))
	}
}

func TestExecuteHybridFallsBackToPost(t *testing.T) {
	store, ids := buildStrategyStore(t)
	expr := mustParse(t, `category CONTAINS "sho"`)
	res, err := Execute(expr, store, 3, StrategyHybrid, fakeSearch(ids))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Candidates) != 3 {
		t.Fatalf("got %d candidates, want 3", len(res.Candidates))
	}
}

func TestExecuteAutoUsesHybridForMidSelectivityEquality(t *testing.T) {
	store, ids := buildStrategyStore(t)
	// 2 of 5 rows are "hats": selectivity 0.4 lies between the post (<= 0.05)
	// and pre (>= 0.8) bands, so Auto runs the hybrid strategy.
	expr := mustParse(t, `category = "hats"`)
	res, err := Execute(expr, store, 2, StrategyAuto, fakeSearch(ids))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(res.Candidates))
	}
	if res.StrategyUsed != StrategyHybrid {
		t.Fatalf("got strategy %v, want hybrid", res.StrategyUsed)
	}
}
