package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Expr is any node in the parsed filter AST.
type Expr interface {
	// String renders the expression back into canonical filter syntax.
	// Parse(e.String()).String() == e.String() for every e produced by Parse.
	String() string
	nodeCount() int
	depth() int
}

// LogicalOp identifies AND/OR.
type LogicalOp int

const (
	OpAnd LogicalOp = iota
	OpOr
)

func (o LogicalOp) String() string {
	if o == OpAnd {
		return "AND"
	}
	return "OR"
}

// BinaryExpr is `Left AND Right` or `Left OR Right`.
type BinaryExpr struct {
	Op    LogicalOp
	Left  Expr
	Right Expr
}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op.String(), b.Right.String())
}
func (b *BinaryExpr) nodeCount() int { return 1 + b.Left.nodeCount() + b.Right.nodeCount() }
func (b *BinaryExpr) depth() int {
	ld, rd := b.Left.depth(), b.Right.depth()
	if ld > rd {
		return 1 + ld
	}
	return 1 + rd
}

// NotExpr is `NOT X`.
type NotExpr struct {
	X Expr
}

func (n *NotExpr) String() string   { return fmt.Sprintf("NOT %s", n.X.String()) }
func (n *NotExpr) nodeCount() int   { return 1 + n.X.nodeCount() }
func (n *NotExpr) depth() int       { return 1 + n.X.depth() }

// CompareOp identifies a scalar comparison operator.
type CompareOp int

const (
	CmpEq CompareOp = iota
	CmpNeq
	CmpLt
	CmpLte
	CmpGt
	CmpGte
)

func (o CompareOp) String() string {
	switch o {
	case CmpEq:
		return "="
	case CmpNeq:
		return "!="
	case CmpLt:
		return "<"
	case CmpLte:
		return "<="
	case CmpGt:
		return ">"
	case CmpGte:
		return ">="
	default:
		return "?"
	}
}

// Literal is a parsed scalar constant: string, float64, int64, or bool.
type Literal struct {
	Value interface{}
}

func (lit *Literal) String() string {
	switch v := lit.Value.(type) {
	case string:
		// The lexer reads a backslash as "take the next character as is", so
		// only the backslash and the double quote need escaping.
		return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v) + `"`
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// CompareExpr is `field OP literal`.
type CompareExpr struct {
	Field string
	Op    CompareOp
	Value *Literal
}

func (c *CompareExpr) String() string { return fmt.Sprintf("%s %s %s", c.Field, c.Op.String(), c.Value.String()) }
func (c *CompareExpr) nodeCount() int { return 1 }
func (c *CompareExpr) depth() int     { return 1 }

// BetweenExpr is `field BETWEEN low AND high`.
type BetweenExpr struct {
	Field string
	Low   *Literal
	High  *Literal
}

func (b *BetweenExpr) String() string {
	return fmt.Sprintf("%s BETWEEN %s AND %s", b.Field, b.Low.String(), b.High.String())
}
func (b *BetweenExpr) nodeCount() int { return 1 }
func (b *BetweenExpr) depth() int     { return 1 }

// InExpr is `field IN [v1, v2, ...]`.
type InExpr struct {
	Field  string
	Values []*Literal
}

func (e *InExpr) String() string {
	parts := make([]string, len(e.Values))
	for i, v := range e.Values {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s IN [%s]", e.Field, strings.Join(parts, ", "))
}
func (e *InExpr) nodeCount() int { return 1 }
func (e *InExpr) depth() int     { return 1 }

// StringMatchOp identifies CONTAINS / STARTS_WITH / ENDS_WITH / LIKE.
type StringMatchOp int

const (
	MatchContains StringMatchOp = iota
	MatchStartsWith
	MatchEndsWith
	MatchLike
)

func (o StringMatchOp) String() string {
	switch o {
	case MatchContains:
		return "CONTAINS"
	case MatchStartsWith:
		return "STARTS_WITH"
	case MatchEndsWith:
		return "ENDS_WITH"
	case MatchLike:
		return "LIKE"
	default:
		return "?"
	}
}

// StringMatchExpr is `field CONTAINS|STARTS_WITH|ENDS_WITH|LIKE literal`.
// For a []string field, CONTAINS checks list membership; for a string
// field it checks substring containment.
type StringMatchExpr struct {
	Field string
	Op    StringMatchOp
	Value *Literal
}

func (e *StringMatchExpr) String() string {
	return fmt.Sprintf("%s %s %s", e.Field, e.Op.String(), e.Value.String())
}
func (e *StringMatchExpr) nodeCount() int { return 1 }
func (e *StringMatchExpr) depth() int     { return 1 }

// IsNullExpr is `field IS NULL` or `field IS NOT NULL`.
type IsNullExpr struct {
	Field string
	Not   bool
}

func (e *IsNullExpr) String() string {
	if e.Not {
		return fmt.Sprintf("%s IS NOT NULL", e.Field)
	}
	return fmt.Sprintf("%s IS NULL", e.Field)
}
func (e *IsNullExpr) nodeCount() int { return 1 }
func (e *IsNullExpr) depth() int     { return 1 }

// BoolLiteralExpr is a bare TRUE/FALSE used as a whole filter expression,
// produced by tautology/contradiction folding and accepted directly by
// the parser as a degenerate expression.
type BoolLiteralExpr struct {
	Value bool
}

func (e *BoolLiteralExpr) String() string {
	if e.Value {
		return "TRUE"
	}
	return "FALSE"
}
func (e *BoolLiteralExpr) nodeCount() int { return 1 }
func (e *BoolLiteralExpr) depth() int     { return 1 }
