package filter

import (
	"testing"

	"github.com/xDarkicex/edgevec/internal/metadata"
)

func mustParse(t *testing.T, src string) Expr {
	t.Helper()
	e, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return e
}

func TestEvalCompare(t *testing.T) {
	doc := metadata.Document{"price": int64(42), "name": "widget", "active": true}

	cases := []struct {
		src  string
		want bool
	}{
		{`price = 42`, true},
		{`price != 42`, false},
		{`price > 10`, true},
		{`price < 10`, false},
		{`name = "widget"`, true},
		{`name = "gadget"`, false},
		{`active = TRUE`, true},
		{`missing = 1`, false},
	}
	for _, c := range cases {
		if got := Eval(mustParse(t, c.src), doc); got != c.want {
			t.Errorf("Eval(%q) = %v, want %v", c.src, got, c.want)
		}
	}
}

func TestEvalBetweenAndIn(t *testing.T) {
	doc := metadata.Document{"price": int64(50)}
	if !Eval(mustParse(t, `price BETWEEN 10 AND 100`), doc) {
		t.Error("expected price within range")
	}
	if Eval(mustParse(t, `price BETWEEN 60 AND 100`), doc) {
		t.Error("expected price outside range")
	}
	if !Eval(mustParse(t, `price IN [1, 50, 99]`), doc) {
		t.Error("expected price IN match")
	}
	if Eval(mustParse(t, `price IN [1, 2, 3]`), doc) {
		t.Error("expected price IN non-match")
	}
}

func TestEvalStringMatchAndList(t *testing.T) {
	doc := metadata.Document{
		"title": "red running shoes",
		"tags":  []string{"sale", "outdoor"},
	}
	if !Eval(mustParse(t, `title CONTAINS "running"`), doc) {
		t.Error("expected substring match")
	}
	if !Eval(mustParse(t, `title STARTS_WITH "red"`), doc) {
		t.Error("expected prefix match")
	}
	if !Eval(mustParse(t, `title ENDS_WITH "shoes"`), doc) {
		t.Error("expected suffix match")
	}
	if !Eval(mustParse(t, `title LIKE "red%shoes"`), doc) {
		t.Error("expected LIKE match")
	}
	if !Eval(mustParse(t, `tags CONTAINS "sale"`), doc) {
		t.Error("expected list containment match")
	}
	if Eval(mustParse(t, `tags CONTAINS "clearance"`), doc) {
		t.Error("expected list containment non-match")
	}
}

func TestEvalIsNull(t *testing.T) {
	doc := metadata.Document{"present": int64(1)}
	if !Eval(mustParse(t, `missing IS NULL`), doc) {
		t.Error("expected missing field IS NULL to be true")
	}
	if Eval(mustParse(t, `present IS NULL`), doc) {
		t.Error("expected present field IS NULL to be false")
	}
	if !Eval(mustParse(t, `present IS NOT NULL`), doc) {
		t.Error("expected present field IS NOT NULL to be true")
	}
}

func TestEvalLogical(t *testing.T) {
	doc := metadata.Document{"a": int64(1), "b": int64(2)}
	if !Eval(mustParse(t, `a = 1 AND b = 2`), doc) {
		t.Error("expected AND to be true")
	}
	if Eval(mustParse(t, `a = 1 AND b = 3`), doc) {
		t.Error("expected AND to be false")
	}
	if !Eval(mustParse(t, `a = 9 OR b = 2`), doc) {
		t.Error("expected OR to be true")
	}
	if !Eval(mustParse(t, `NOT a = 9`), doc) {
		t.Error("expected NOT to be true")
	}
}
