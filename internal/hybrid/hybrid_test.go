package hybrid

import (
	"testing"

	"github.com/xDarkicex/edgevec/internal/vecstore"
)

func TestRRFEmptyLists(t *testing.T) {
	out, err := Fuse(nil, nil, Config{Method: RRF, FinalK: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("got %d results, want 0", len(out))
	}
}

func TestRRFIdenticalListsScoreBounds(t *testing.T) {
	list := []Ranked{{ID: 1, Score: .9}, {ID: 2, Score: .8}, {ID: 3, Score: .7}}
	out, err := Fuse(list, list, Config{Method: RRF, RRFK: 60, FinalK: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := len(list)
	lo := 2.0 / float64(60+n)
	hi := 2.0 / float64(60+1)
	for _, f := range out {
		if float64(f.Score) < lo-1e-9 || float64(f.Score) > hi+1e-9 {
			t.Errorf("id %d score %v outside [%v, %v]", f.ID, f.Score, lo, hi)
		}
	}
}

func TestRRFSymmetryScenario(t *testing.T) {
	dense := []Ranked{{ID: 1, Score: .9}, {ID: 2, Score: .8}, {ID: 3, Score: .7}}
	sparse := []Ranked{{ID: 3, Score: 5.0}, {ID: 2, Score: 4.0}, {ID: 1, Score: 3.0}}
	out, err := Fuse(dense, sparse, Config{Method: RRF, RRFK: 60, FinalK: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d results, want 3", len(out))
	}
	// ids 1 and 3 each hold rank 1 in one list and rank 3 in the other, so
	// they tie for the highest combined score; ascending id breaks the tie.
	if out[0].ID != 1 || out[1].ID != 3 {
		t.Fatalf("expected tie broken by ascending id (1 then 3), got %d then %d", out[0].ID, out[1].ID)
	}
	// id 2 holds rank 2 in both lists, which scores strictly lower than the
	// rank1+rank3 combination above despite looking "balanced" -> last.
	if out[2].ID != 2 {
		t.Fatalf("expected id 2 last, got %d", out[2].ID)
	}
}

func TestLinearAlphaExtremesReproduceInputRankings(t *testing.T) {
	dense := []Ranked{{ID: 1, Score: .9}, {ID: 2, Score: .5}, {ID: 3, Score: .1}}
	sparse := []Ranked{{ID: 3, Score: 9}, {ID: 2, Score: 5}, {ID: 1, Score: 1}}

	denseOnly, err := Fuse(dense, sparse, Config{Method: Linear, Alpha: 1, FinalK: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantDenseOrder := []vecstore.ID{1, 2, 3}
	for i, f := range denseOnly {
		if f.ID != wantDenseOrder[i] {
			t.Fatalf("alpha=1: got order %v", denseOnly)
		}
	}

	sparseOnly, err := Fuse(dense, sparse, Config{Method: Linear, Alpha: 0, FinalK: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantSparseOrder := []vecstore.ID{3, 2, 1}
	for i, f := range sparseOnly {
		if f.ID != wantSparseOrder[i] {
			t.Fatalf("alpha=0: got order %v", sparseOnly)
		}
	}
}

func TestLinearDegenerateEqualScoresNormalizeToOne(t *testing.T) {
	dense := []Ranked{{ID: 1, Score: 5}, {ID: 2, Score: 5}}
	out, err := Fuse(dense, nil, Config{Method: Linear, Alpha: 1, FinalK: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range out {
		if f.Score != 1.0 {
			t.Errorf("id %d: got score %v, want 1.0", f.ID, f.Score)
		}
	}
}

func TestFuseValidatesFinalK(t *testing.T) {
	_, err := Fuse(nil, nil, Config{Method: RRF, FinalK: 0})
	if err == nil {
		t.Fatal("expected error for final_k=0")
	}
}
