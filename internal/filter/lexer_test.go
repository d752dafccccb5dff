package filter

import "testing"

func TestLexerTokens(t *testing.T) {
	src := `category = "shoes" AND price BETWEEN 10 AND 99.5 AND NOT in_stock = TRUE`
	l := newLexer(src)
	var kinds []TokenKind
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected lex error: %v", err)
		}
		kinds = append(kinds, tok.Kind)
		if tok.Kind == TokEOF {
			break
		}
	}
	want := []TokenKind{
		TokIdent, TokEq, TokString, TokAnd,
		TokIdent, TokBetween, TokNumber, TokAnd, TokNumber, TokAnd,
		TokNot, TokIdent, TokEq, TokTrue, TokEOF,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(kinds), len(want), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d: got %d, want %d", i, kinds[i], want[i])
		}
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	l := newLexer(`name = "oops`)
	for {
		tok, err := l.Next()
		if err != nil {
			return
		}
		if tok.Kind == TokEOF {
			t.Fatal("expected unterminated string error, got EOF")
		}
	}
}

func TestLexerNegativeNumber(t *testing.T) {
	l := newLexer(`score > -4.5`)
	_, _ = l.Next() // score
	_, _ = l.Next() // >
	tok, err := l.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Kind != TokNumber || tok.Text != "-4.5" {
		t.Fatalf("got %+v, want number -4.5", tok)
	}
}

func TestLexerCaseInsensitiveKeywords(t *testing.T) {
	l := newLexer(`a and b or not c`)
	var kinds []TokenKind
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		kinds = append(kinds, tok.Kind)
		if tok.Kind == TokEOF {
			break
		}
	}
	want := []TokenKind{TokIdent, TokAnd, TokIdent, TokOr, TokNot, TokIdent, TokEOF}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token %d: got %d, want %d", i, kinds[i], want[i])
		}
	}
}
