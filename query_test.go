package edgevec

import "testing"

func TestQueryBuilderPlainVectorSearch(t *testing.T) {
	c := newTestCollection(t, WithIndexKind(IndexFlatDense))
	id, _ := c.Insert([]float32{1, 0, 0, 0}, nil)
	_, _ = c.Insert([]float32{0, 1, 0, 0}, nil)

	res, err := c.Query().WithVector([]float32{1, 0, 0, 0}).Limit(1).Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Results) != 1 || res.Results[0].ID != id {
		t.Fatalf("got %+v", res.Results)
	}
	if !res.Complete {
		t.Fatal("expected a plain vector search to always be complete")
	}
}

func TestQueryBuilderWithFilter(t *testing.T) {
	c := newTestCollection(t, WithIndexKind(IndexFlatDense))
	scifi, err := c.Insert([]float32{1, 0, 0, 0}, Document{"genre": "scifi"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := c.Insert([]float32{0.9, 0, 0, 0}, Document{"genre": "drama"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	res, err := c.Query().
		WithVector([]float32{1, 0, 0, 0}).
		WithFilter(`genre = "scifi"`).
		Limit(5).
		Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Results) != 1 || res.Results[0].ID != scifi {
		t.Fatalf("got %+v", res.Results)
	}
}

func TestQueryBuilderRequiresVector(t *testing.T) {
	c := newTestCollection(t, WithIndexKind(IndexFlatDense))
	if _, err := c.Query().Limit(5).Execute(); err == nil {
		t.Fatal("expected an error when no query vector is set")
	}
}

func TestQueryBuilderThreshold(t *testing.T) {
	c := newTestCollection(t, WithIndexKind(IndexFlatDense), WithMetric(InnerProduct))
	near, _ := c.Insert([]float32{1, 0, 0, 0}, nil)
	_, _ = c.Insert([]float32{0, 0, 0, 0}, nil)

	res, err := c.Query().
		WithVector([]float32{1, 0, 0, 0}).
		WithThreshold(0.5).
		Limit(5).
		Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Results) != 1 || res.Results[0].ID != near {
		t.Fatalf("got %+v, want only the near-perfect-match vector above threshold", res.Results)
	}
}
