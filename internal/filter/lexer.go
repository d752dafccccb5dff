package filter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/xDarkicex/edgevec/internal/edvcerr"
)

// MaxInputLength bounds the raw filter expression string length accepted
// by Parse, guarding against pathological inputs before any parsing work
// is done.
const MaxInputLength = 65536

type lexer struct {
	src []rune
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src)}
}

// errAt attaches pos and its 1-indexed line/column to e. Filter expressions
// are normally single-line, but the lexer doesn't assume that.
func (l *lexer) errAt(pos int, e *edvcerr.Error) *edvcerr.Error {
	line, col := lineAndColumn(l.src, pos)
	return e.WithPos(pos, line, col)
}

// lineAndColumn converts a 0-indexed rune offset into 1-indexed line and
// column numbers for error reporting.
func lineAndColumn(src []rune, pos int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < pos && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func (l *lexer) peekRune() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentCont(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.'
}

// Next returns the next token in the stream, or a *edvcerr.Error on a
// lexical error (unterminated string literal, unexpected character).
func (l *lexer) Next() (Token, error) {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.src) {
		return Token{Kind: TokEOF, Pos: start}, nil
	}

	r := l.src[l.pos]

	switch r {
	case '(':
		l.pos++
		return Token{Kind: TokLParen, Pos: start, Text: "("}, nil
	case ')':
		l.pos++
		return Token{Kind: TokRParen, Pos: start, Text: ")"}, nil
	case '[':
		l.pos++
		return Token{Kind: TokLBracket, Pos: start, Text: "["}, nil
	case ']':
		l.pos++
		return Token{Kind: TokRBracket, Pos: start, Text: "]"}, nil
	case ',':
		l.pos++
		return Token{Kind: TokComma, Pos: start, Text: ","}, nil
	case '=':
		l.pos++
		return Token{Kind: TokEq, Pos: start, Text: "="}, nil
	case '!':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '=' {
			l.pos += 2
			return Token{Kind: TokNeq, Pos: start, Text: "!="}, nil
		}
		return Token{}, l.errAt(start, edvcerr.Newf(edvcerr.CodeFilterUnexpectedToken, "unexpected character '!'"))
	case '<':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '=' {
			l.pos += 2
			return Token{Kind: TokLte, Pos: start, Text: "<="}, nil
		}
		l.pos++
		return Token{Kind: TokLt, Pos: start, Text: "<"}, nil
	case '>':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '=' {
			l.pos += 2
			return Token{Kind: TokGte, Pos: start, Text: ">="}, nil
		}
		l.pos++
		return Token{Kind: TokGt, Pos: start, Text: ">"}, nil
	case '"', '\'':
		return l.lexString(r)
	}

	if unicode.IsDigit(r) || (r == '-' && l.pos+1 < len(l.src) && unicode.IsDigit(l.src[l.pos+1])) {
		return l.lexNumber()
	}

	if isIdentStart(r) {
		return l.lexIdentOrKeyword()
	}

	return Token{}, l.errAt(start, edvcerr.Newf(edvcerr.CodeFilterUnexpectedToken, "unexpected character %q", string(r)))
}

func (l *lexer) lexString(quote rune) (Token, error) {
	start := l.pos
	l.pos++ // consume opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return Token{}, l.errAt(start, edvcerr.Newf(edvcerr.CodeFilterUnterminated, "unterminated string literal").WithSuggestion(fmt.Sprintf("add a closing %c", quote)))
		}
		r := l.src[l.pos]
		if r == '\\' && l.pos+1 < len(l.src) {
			l.pos++
			sb.WriteRune(l.src[l.pos])
			l.pos++
			continue
		}
		if r == quote {
			l.pos++
			return Token{Kind: TokString, Text: sb.String(), Pos: start}, nil
		}
		sb.WriteRune(r)
		l.pos++
	}
}

func (l *lexer) lexNumber() (Token, error) {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	text := string(l.src[start:l.pos])
	if text == "" || text == "-" {
		return Token{}, l.errAt(start, edvcerr.Newf(edvcerr.CodeFilterInvalidNumber, "invalid number literal"))
	}
	return Token{Kind: TokNumber, Text: text, Pos: start}, nil
}

func (l *lexer) lexIdentOrKeyword() (Token, error) {
	start := l.pos
	for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
		l.pos++
	}
	text := string(l.src[start:l.pos])
	upper := strings.ToUpper(text)
	if kind, ok := keywords[upper]; ok {
		return Token{Kind: kind, Text: upper, Pos: start}, nil
	}
	return Token{Kind: TokIdent, Text: text, Pos: start}, nil
}
