package filter

import (
	"github.com/xDarkicex/edgevec/internal/edvcerr"
	"github.com/xDarkicex/edgevec/internal/metadata"
)

// Schema answers field-type questions during validation. *metadata.Store
// satisfies this directly.
type Schema interface {
	FieldType(field string) (metadata.FieldType, bool)
}

// Validate checks e against schema: every referenced field must exist and
// every operator must be compatible with that field's type. It also folds
// provably-tautological or provably-contradictory subexpressions into
// BoolLiteralExpr nodes so the evaluator and strategy selector can short
// circuit on them.
func Validate(e Expr, schema Schema) (Expr, error) {
	folded, err := validateNode(e, schema)
	if err != nil {
		return nil, err
	}
	return fold(folded), nil
}

func validateNode(e Expr, schema Schema) (Expr, error) {
	switch n := e.(type) {
	case *BinaryExpr:
		if _, err := validateNode(n.Left, schema); err != nil {
			return nil, err
		}
		if _, err := validateNode(n.Right, schema); err != nil {
			return nil, err
		}
		return n, nil
	case *NotExpr:
		if _, err := validateNode(n.X, schema); err != nil {
			return nil, err
		}
		return n, nil
	case *BoolLiteralExpr:
		return n, nil
	case *CompareExpr:
		ft, ok := schema.FieldType(n.Field)
		if !ok {
			return nil, edvcerr.Newf(edvcerr.CodeFilterUnknownField, "unknown field %q", n.Field).WithField(n.Field)
		}
		if ft == metadata.StringListType {
			return nil, edvcerr.Newf(edvcerr.CodeFilterBadOperatorType, "field %q is a list, cannot use comparison operators", n.Field).WithField(n.Field)
		}
		if err := checkLiteralType(n.Field, ft, n.Value); err != nil {
			return nil, err
		}
		if (n.Op == CmpLt || n.Op == CmpLte || n.Op == CmpGt || n.Op == CmpGte) && ft == metadata.BoolType {
			return nil, edvcerr.Newf(edvcerr.CodeFilterBadOperatorType, "field %q is bool, cannot use ordering operators", n.Field).WithField(n.Field)
		}
		return n, nil
	case *BetweenExpr:
		ft, ok := schema.FieldType(n.Field)
		if !ok {
			return nil, edvcerr.Newf(edvcerr.CodeFilterUnknownField, "unknown field %q", n.Field).WithField(n.Field)
		}
		if ft != metadata.IntType && ft != metadata.FloatType {
			return nil, edvcerr.Newf(edvcerr.CodeFilterBadOperatorType, "field %q is %s, BETWEEN requires a numeric field", n.Field, ft).WithField(n.Field)
		}
		if err := checkLiteralType(n.Field, ft, n.Low); err != nil {
			return nil, err
		}
		if err := checkLiteralType(n.Field, ft, n.High); err != nil {
			return nil, err
		}
		if numericValue(n.Low.Value) > numericValue(n.High.Value) {
			return nil, edvcerr.Newf(edvcerr.CodeFilterBadRange, "field %q: low bound exceeds high bound", n.Field).WithField(n.Field)
		}
		return n, nil
	case *InExpr:
		ft, ok := schema.FieldType(n.Field)
		if !ok {
			return nil, edvcerr.Newf(edvcerr.CodeFilterUnknownField, "unknown field %q", n.Field).WithField(n.Field)
		}
		if ft == metadata.StringListType {
			return nil, edvcerr.Newf(edvcerr.CodeFilterBadOperatorType, "field %q is a list, cannot use IN", n.Field).WithField(n.Field)
		}
		for _, v := range n.Values {
			if err := checkLiteralType(n.Field, ft, v); err != nil {
				return nil, err
			}
		}
		return n, nil
	case *StringMatchExpr:
		ft, ok := schema.FieldType(n.Field)
		if !ok {
			return nil, edvcerr.Newf(edvcerr.CodeFilterUnknownField, "unknown field %q", n.Field).WithField(n.Field)
		}
		if ft != metadata.StringType && ft != metadata.StringListType {
			return nil, edvcerr.Newf(edvcerr.CodeFilterBadOperatorType, "field %q is %s, string-match operators require string or list<string>", n.Field, ft).WithField(n.Field)
		}
		if ft == metadata.StringListType && n.Op != MatchContains {
			return nil, edvcerr.Newf(edvcerr.CodeFilterBadOperatorType, "field %q is a list, only CONTAINS is supported", n.Field).WithField(n.Field)
		}
		if _, ok := n.Value.Value.(string); !ok {
			return nil, edvcerr.Newf(edvcerr.CodeFilterTypeMismatch, "field %q: string-match operand must be a string literal", n.Field).WithField(n.Field)
		}
		return n, nil
	case *IsNullExpr:
		if _, ok := schema.FieldType(n.Field); !ok {
			return nil, edvcerr.Newf(edvcerr.CodeFilterUnknownField, "unknown field %q", n.Field).WithField(n.Field)
		}
		return n, nil
	default:
		return e, nil
	}
}

func checkLiteralType(field string, ft metadata.FieldType, lit *Literal) error {
	switch ft {
	case metadata.StringType:
		if _, ok := lit.Value.(string); !ok {
			return edvcerr.Newf(edvcerr.CodeFilterTypeMismatch, "field %q expects a string literal", field).WithField(field)
		}
	case metadata.BoolType:
		if _, ok := lit.Value.(bool); !ok {
			return edvcerr.Newf(edvcerr.CodeFilterTypeMismatch, "field %q expects a bool literal", field).WithField(field)
		}
	case metadata.IntType, metadata.FloatType:
		switch lit.Value.(type) {
		case int64, float64:
		default:
			return edvcerr.Newf(edvcerr.CodeFilterTypeMismatch, "field %q expects a numeric literal", field).WithField(field)
		}
	}
	return nil
}

func numericValue(v interface{}) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

// fold recursively collapses AND/OR/NOT nodes whose children are
// BoolLiteralExpr into a single BoolLiteralExpr, short-circuiting where the
// logical identity permits it (e.g. FALSE AND x == FALSE regardless of x).
// It also catches two structural contradiction shapes that never reduce to
// literal children on their own: a clause paired with its own negation
// (x OR NOT x, x AND NOT x), and two numeric comparisons on the same field
// describing disjoint ranges (price > 100 AND price < 50).
func fold(e Expr) Expr {
	switch n := e.(type) {
	case *BinaryExpr:
		left := fold(n.Left)
		right := fold(n.Right)
		lb, lok := left.(*BoolLiteralExpr)
		rb, rok := right.(*BoolLiteralExpr)
		if n.Op == OpAnd {
			if lok && !lb.Value {
				return &BoolLiteralExpr{Value: false}
			}
			if rok && !rb.Value {
				return &BoolLiteralExpr{Value: false}
			}
			if lok && rok {
				return &BoolLiteralExpr{Value: lb.Value && rb.Value}
			}
			if complementary(left, right) || rangeContradicts(left, right) {
				return &BoolLiteralExpr{Value: false}
			}
		} else {
			if lok && lb.Value {
				return &BoolLiteralExpr{Value: true}
			}
			if rok && rb.Value {
				return &BoolLiteralExpr{Value: true}
			}
			if lok && rok {
				return &BoolLiteralExpr{Value: lb.Value || rb.Value}
			}
			if complementary(left, right) {
				return &BoolLiteralExpr{Value: true}
			}
		}
		return &BinaryExpr{Op: n.Op, Left: left, Right: right}
	case *NotExpr:
		x := fold(n.X)
		if b, ok := x.(*BoolLiteralExpr); ok {
			return &BoolLiteralExpr{Value: !b.Value}
		}
		return &NotExpr{X: x}
	default:
		return e
	}
}

// complementary reports whether one of a, b is NOT of the other, detected
// structurally via each node's canonical String form rather than a deep
// field-by-field walk.
func complementary(a, b Expr) bool {
	if na, ok := a.(*NotExpr); ok && na.X.String() == b.String() {
		return true
	}
	if nb, ok := b.(*NotExpr); ok && nb.X.String() == a.String() {
		return true
	}
	return false
}

// numericBound is one side of an open or closed half-range, e.g. the ">100"
// in "price > 100".
type numericBound struct {
	value     float64
	inclusive bool
}

// rangeContradicts reports whether a and b are CompareExprs on the same
// numeric field whose half-ranges never overlap, e.g. price > 100 and
// price < 50. Anything else (different fields, non-numeric literals,
// equality/inequality operators) is left to the evaluator.
func rangeContradicts(a, b Expr) bool {
	ca, aok := a.(*CompareExpr)
	cb, bok := b.(*CompareExpr)
	if !aok || !bok || ca.Field != cb.Field {
		return false
	}
	if lo, ok := lowerBound(ca); ok {
		if hi, ok := upperBound(cb); ok {
			return boundsDisjoint(lo, hi)
		}
	}
	if lo, ok := lowerBound(cb); ok {
		if hi, ok := upperBound(ca); ok {
			return boundsDisjoint(lo, hi)
		}
	}
	return false
}

func lowerBound(c *CompareExpr) (numericBound, bool) {
	v, ok := numericLiteral(c.Value)
	if !ok {
		return numericBound{}, false
	}
	switch c.Op {
	case CmpGt:
		return numericBound{value: v, inclusive: false}, true
	case CmpGte:
		return numericBound{value: v, inclusive: true}, true
	default:
		return numericBound{}, false
	}
}

func upperBound(c *CompareExpr) (numericBound, bool) {
	v, ok := numericLiteral(c.Value)
	if !ok {
		return numericBound{}, false
	}
	switch c.Op {
	case CmpLt:
		return numericBound{value: v, inclusive: false}, true
	case CmpLte:
		return numericBound{value: v, inclusive: true}, true
	default:
		return numericBound{}, false
	}
}

// boundsDisjoint reports whether [lo, +inf) and (-inf, hi], per their own
// inclusivity, share no point.
func boundsDisjoint(lo, hi numericBound) bool {
	if lo.value > hi.value {
		return true
	}
	return lo.value == hi.value && !(lo.inclusive && hi.inclusive)
}

func numericLiteral(lit *Literal) (float64, bool) {
	switch v := lit.Value.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
