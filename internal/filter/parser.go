package filter

import (
	"strconv"

	"github.com/xDarkicex/edgevec/internal/edvcerr"
)

// Parse-time guardrails. These bound the cost of parsing and evaluating a
// single filter expression regardless of how it was produced.
const (
	MaxASTDepth     = 50
	MaxASTNodes     = 1000
	MaxArrayLiteral = 1000
)

type parser struct {
	lex *lexer
	tok Token
}

// errAt delegates to the lexer's source-aware line/column annotation.
func (p *parser) errAt(pos int, e *edvcerr.Error) *edvcerr.Error {
	return p.lex.errAt(pos, e)
}

// Parse compiles a filter expression string into an Expr, applying the
// input-length, AST-depth, AST-node-count and array-literal-length limits.
func Parse(src string) (Expr, error) {
	if len(src) > MaxInputLength {
		return nil, edvcerr.Newf(edvcerr.CodeFilterInputTooLong, "filter expression length %d exceeds limit %d", len(src), MaxInputLength)
	}
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != TokEOF {
		return nil, p.errAt(p.tok.Pos, edvcerr.Newf(edvcerr.CodeFilterUnexpectedToken, "unexpected token %q", p.tok.Text))
	}
	if d := expr.depth(); d > MaxASTDepth {
		return nil, edvcerr.Newf(edvcerr.CodeFilterTooDeep, "expression depth %d exceeds limit %d", d, MaxASTDepth)
	}
	if n := expr.nodeCount(); n > MaxASTNodes {
		return nil, edvcerr.Newf(edvcerr.CodeFilterTooManyNodes, "expression has %d nodes, exceeds limit %d", n, MaxASTNodes)
	}
	return expr, nil
}

func (p *parser) advance() error {
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) expect(k TokenKind, what string) error {
	if p.tok.Kind != k {
		return p.errAt(p.tok.Pos, edvcerr.Newf(edvcerr.CodeFilterMissingOperand, "expected %s, got %q", what, p.tok.Text))
	}
	return p.advance()
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == TokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == TokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.tok.Kind == TokNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &NotExpr{X: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	switch p.tok.Kind {
	case TokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.Kind != TokRParen {
			return nil, p.errAt(p.tok.Pos, edvcerr.Newf(edvcerr.CodeFilterUnbalancedParen, "missing closing parenthesis").WithSuggestion("insert a matching ')'"))
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	case TokTrue:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &BoolLiteralExpr{Value: true}, nil
	case TokFalse:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &BoolLiteralExpr{Value: false}, nil
	case TokIdent:
		return p.parseCondition()
	case TokEOF:
		return nil, edvcerr.New(edvcerr.CodeFilterUnexpectedEOF, "unexpected end of expression")
	default:
		return nil, p.errAt(p.tok.Pos, edvcerr.Newf(edvcerr.CodeFilterUnexpectedToken, "unexpected token %q", p.tok.Text))
	}
}

func (p *parser) parseCondition() (Expr, error) {
	field := p.tok.Text
	if err := p.advance(); err != nil {
		return nil, err
	}

	switch p.tok.Kind {
	case TokEq, TokNeq, TokLt, TokLte, TokGt, TokGte:
		op := cmpOpFor(p.tok.Kind)
		if err := p.advance(); err != nil {
			return nil, err
		}
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &CompareExpr{Field: field, Op: op, Value: lit}, nil

	case TokBetween:
		if err := p.advance(); err != nil {
			return nil, err
		}
		low, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokAnd, "AND"); err != nil {
			return nil, err
		}
		high, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &BetweenExpr{Field: field, Low: low, High: high}, nil

	case TokIn:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect(TokLBracket, "["); err != nil {
			return nil, err
		}
		var values []*Literal
		if p.tok.Kind != TokRBracket {
			for {
				if len(values) >= MaxArrayLiteral {
					return nil, edvcerr.Newf(edvcerr.CodeFilterArrayTooLong, "array literal exceeds %d elements", MaxArrayLiteral)
				}
				lit, err := p.parseLiteral()
				if err != nil {
					return nil, err
				}
				values = append(values, lit)
				if p.tok.Kind == TokComma {
					if err := p.advance(); err != nil {
						return nil, err
					}
					continue
				}
				break
			}
		}
		if err := p.expect(TokRBracket, "]"); err != nil {
			return nil, err
		}
		return &InExpr{Field: field, Values: values}, nil

	case TokContains, TokStartsWith, TokEndsWith, TokLike:
		op := matchOpFor(p.tok.Kind)
		if err := p.advance(); err != nil {
			return nil, err
		}
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &StringMatchExpr{Field: field, Op: op, Value: lit}, nil

	case TokIs:
		if err := p.advance(); err != nil {
			return nil, err
		}
		not := false
		if p.tok.Kind == TokNot {
			not = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if err := p.expect(TokNull, "NULL"); err != nil {
			return nil, err
		}
		return &IsNullExpr{Field: field, Not: not}, nil

	default:
		return nil, p.errAt(p.tok.Pos, edvcerr.Newf(edvcerr.CodeFilterInvalidOperator, "unexpected operator %q after field %q", p.tok.Text, field))
	}
}

func (p *parser) parseLiteral() (*Literal, error) {
	switch p.tok.Kind {
	case TokString:
		v := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{Value: v}, nil
	case TokNumber:
		text := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if iv, err := strconv.ParseInt(text, 10, 64); err == nil {
			return &Literal{Value: iv}, nil
		}
		fv, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, edvcerr.Newf(edvcerr.CodeFilterInvalidNumber, "invalid number literal %q", text)
		}
		return &Literal{Value: fv}, nil
	case TokTrue:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{Value: true}, nil
	case TokFalse:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{Value: false}, nil
	default:
		return nil, p.errAt(p.tok.Pos, edvcerr.Newf(edvcerr.CodeFilterMissingOperand, "expected literal, got %q", p.tok.Text))
	}
}

func cmpOpFor(k TokenKind) CompareOp {
	switch k {
	case TokEq:
		return CmpEq
	case TokNeq:
		return CmpNeq
	case TokLt:
		return CmpLt
	case TokLte:
		return CmpLte
	case TokGt:
		return CmpGt
	case TokGte:
		return CmpGte
	}
	return CmpEq
}

func matchOpFor(k TokenKind) StringMatchOp {
	switch k {
	case TokContains:
		return MatchContains
	case TokStartsWith:
		return MatchStartsWith
	case TokEndsWith:
		return MatchEndsWith
	case TokLike:
		return MatchLike
	}
	return MatchContains
}
