package filter

import (
	"testing"

	"github.com/xDarkicex/edgevec/internal/edvcerr"
	"github.com/xDarkicex/edgevec/internal/metadata"
	"github.com/xDarkicex/edgevec/internal/vecstore"
)

func seedStore(t *testing.T) *metadata.Store {
	t.Helper()
	s := metadata.NewStore()
	if err := s.Put(vecstore.ID(1), metadata.Document{
		"price":  int64(10),
		"name":   "a",
		"active": true,
		"tags":   []string{"x"},
	}); err != nil {
		t.Fatalf("seed Put: %v", err)
	}
	return s
}

func TestValidateUnknownField(t *testing.T) {
	store := seedStore(t)
	expr := mustParse(t, `nope = 1`)
	_, err := Validate(expr, store)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.(*edvcerr.Error).Code != edvcerr.CodeFilterUnknownField {
		t.Fatalf("got %v", err)
	}
}

func TestValidateTypeMismatch(t *testing.T) {
	store := seedStore(t)
	expr := mustParse(t, `price = "ten"`)
	_, err := Validate(expr, store)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.(*edvcerr.Error).Code != edvcerr.CodeFilterTypeMismatch {
		t.Fatalf("got %v", err)
	}
}

func TestValidateListFieldRejectsComparison(t *testing.T) {
	store := seedStore(t)
	expr := mustParse(t, `tags = "x"`)
	_, err := Validate(expr, store)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.(*edvcerr.Error).Code != edvcerr.CodeFilterBadOperatorType {
		t.Fatalf("got %v", err)
	}
}

func TestValidateBadRange(t *testing.T) {
	store := seedStore(t)
	expr := mustParse(t, `price BETWEEN 100 AND 1`)
	_, err := Validate(expr, store)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.(*edvcerr.Error).Code != edvcerr.CodeFilterBadRange {
		t.Fatalf("got %v", err)
	}
}

func TestValidateFoldsContradiction(t *testing.T) {
	store := seedStore(t)
	expr := mustParse(t, `FALSE AND price = 10`)
	folded, err := Validate(expr, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := folded.(*BoolLiteralExpr)
	if !ok || b.Value {
		t.Fatalf("expected folded FALSE, got %#v", folded)
	}
}

func TestValidateFoldsTautology(t *testing.T) {
	store := seedStore(t)
	expr := mustParse(t, `TRUE OR price = 10`)
	folded, err := Validate(expr, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := folded.(*BoolLiteralExpr)
	if !ok || !b.Value {
		t.Fatalf("expected folded TRUE, got %#v", folded)
	}
}

func TestValidateFoldsNotSelfContradictionAnd(t *testing.T) {
	store := seedStore(t)
	expr := mustParse(t, `active = TRUE AND NOT active = TRUE`)
	folded, err := Validate(expr, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := folded.(*BoolLiteralExpr)
	if !ok || b.Value {
		t.Fatalf("expected folded FALSE, got %#v", folded)
	}
}

func TestValidateFoldsNotSelfTautologyOr(t *testing.T) {
	store := seedStore(t)
	expr := mustParse(t, `active = TRUE OR NOT active = TRUE`)
	folded, err := Validate(expr, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := folded.(*BoolLiteralExpr)
	if !ok || !b.Value {
		t.Fatalf("expected folded TRUE, got %#v", folded)
	}
}

func TestValidateFoldsDisjointNumericRange(t *testing.T) {
	store := seedStore(t)
	expr := mustParse(t, `price > 100 AND price < 50`)
	folded, err := Validate(expr, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := folded.(*BoolLiteralExpr)
	if !ok || b.Value {
		t.Fatalf("expected folded FALSE, got %#v", folded)
	}
}

func TestValidateDoesNotFoldOverlappingNumericRange(t *testing.T) {
	store := seedStore(t)
	expr := mustParse(t, `price > 5 AND price < 50`)
	folded, err := Validate(expr, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if folded.String() != expr.String() {
		t.Fatalf("expected no folding for an overlapping range, got %q vs %q", folded.String(), expr.String())
	}
}

func TestValidateOK(t *testing.T) {
	store := seedStore(t)
	expr := mustParse(t, `price > 5 AND active = TRUE`)
	folded, err := Validate(expr, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if folded.String() != expr.String() {
		t.Fatalf("expected no folding, got %q vs %q", folded.String(), expr.String())
	}
}
