package filter

import (
	"strings"

	"github.com/xDarkicex/edgevec/internal/metadata"
)

// Eval evaluates e against doc directly, used by the post-filter and hybrid
// execution strategies and by any caller that just wants a boolean test
// without going through an index strategy at all. A missing field evaluates
// every predicate referencing it to false, except IS NULL which is true.
func Eval(e Expr, doc metadata.Document) bool {
	switch n := e.(type) {
	case *BoolLiteralExpr:
		return n.Value
	case *BinaryExpr:
		if n.Op == OpAnd {
			return Eval(n.Left, doc) && Eval(n.Right, doc)
		}
		return Eval(n.Left, doc) || Eval(n.Right, doc)
	case *NotExpr:
		return !Eval(n.X, doc)
	case *CompareExpr:
		v, ok := doc[n.Field]
		if !ok {
			return false
		}
		return evalCompare(n.Op, v, n.Value.Value)
	case *BetweenExpr:
		v, ok := doc[n.Field]
		if !ok {
			return false
		}
		lo := numericValue(n.Low.Value)
		hi := numericValue(n.High.Value)
		val, ok := asNumeric(v)
		if !ok {
			return false
		}
		return val >= lo && val <= hi
	case *InExpr:
		v, ok := doc[n.Field]
		if !ok {
			return false
		}
		for _, lit := range n.Values {
			if valuesEqual(v, lit.Value) {
				return true
			}
		}
		return false
	case *StringMatchExpr:
		v, ok := doc[n.Field]
		if !ok {
			return false
		}
		needle, _ := n.Value.Value.(string)
		return evalStringMatch(n.Op, v, needle)
	case *IsNullExpr:
		_, ok := doc[n.Field]
		if n.Not {
			return ok
		}
		return !ok
	default:
		return false
	}
}

func evalCompare(op CompareOp, v, target interface{}) bool {
	if s, ok := v.(string); ok {
		ts, ok2 := target.(string)
		if !ok2 {
			return false
		}
		switch op {
		case CmpEq:
			return s == ts
		case CmpNeq:
			return s != ts
		case CmpLt:
			return s < ts
		case CmpLte:
			return s <= ts
		case CmpGt:
			return s > ts
		case CmpGte:
			return s >= ts
		}
		return false
	}
	if b, ok := v.(bool); ok {
		tb, ok2 := target.(bool)
		if !ok2 {
			return false
		}
		switch op {
		case CmpEq:
			return b == tb
		case CmpNeq:
			return b != tb
		}
		return false
	}
	vn, ok := asNumeric(v)
	if !ok {
		return false
	}
	tn := numericValue(target)
	switch op {
	case CmpEq:
		return vn == tn
	case CmpNeq:
		return vn != tn
	case CmpLt:
		return vn < tn
	case CmpLte:
		return vn <= tn
	case CmpGt:
		return vn > tn
	case CmpGte:
		return vn >= tn
	}
	return false
}

func evalStringMatch(op StringMatchOp, v interface{}, needle string) bool {
	switch val := v.(type) {
	case string:
		switch op {
		case MatchContains:
			return strings.Contains(val, needle)
		case MatchStartsWith:
			return strings.HasPrefix(val, needle)
		case MatchEndsWith:
			return strings.HasSuffix(val, needle)
		case MatchLike:
			return likeMatch(val, needle)
		}
	case []string:
		if op == MatchContains {
			for _, s := range val {
				if s == needle {
					return true
				}
			}
		}
	}
	return false
}

// likeMatch implements SQL-style LIKE with % (any run) and _ (single char)
// wildcards, anchored to the full string.
func likeMatch(s, pattern string) bool {
	return likeMatchRunes([]rune(s), []rune(pattern))
}

func likeMatchRunes(s, p []rune) bool {
	if len(p) == 0 {
		return len(s) == 0
	}
	if p[0] == '%' {
		if likeMatchRunes(s, p[1:]) {
			return true
		}
		for i := 0; i < len(s); i++ {
			if likeMatchRunes(s[i+1:], p[1:]) {
				return true
			}
		}
		return false
	}
	if len(s) == 0 {
		return false
	}
	if p[0] == '_' || p[0] == s[0] {
		return likeMatchRunes(s[1:], p[1:])
	}
	return false
}

func asNumeric(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func valuesEqual(a, b interface{}) bool {
	an, aok := asNumeric(a)
	bn, bok := asNumeric(b)
	if aok && bok {
		return an == bn
	}
	return a == b
}
