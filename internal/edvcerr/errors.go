// Package edvcerr defines the structured error codes shared across every
// EdgeVec component.
package edvcerr

import "fmt"

// Code identifies a stable error kind. Callers can switch on Code without
// depending on message text.
type Code string

const (
	// Index errors
	CodeDimensionMismatch    Code = "DIMENSION_MISMATCH"
	CodeInvalidK             Code = "INVALID_K"
	CodeEmptyIndex           Code = "EMPTY_INDEX"
	CodeQuantizationDisabled Code = "QUANTIZATION_NOT_ENABLED"
	CodeIdNotFound           Code = "ID_NOT_FOUND"
	CodeIdOutOfBounds        Code = "ID_OUT_OF_BOUNDS"
	CodeAlreadyDeleted       Code = "ALREADY_DELETED"
	CodeInvalidDimensions    Code = "INVALID_DIMENSIONS"
	CodeCapacityOverflow     Code = "CAPACITY_OVERFLOW"

	// Filter syntax errors (lexer/parser)
	CodeFilterUnexpectedToken Code = "E001_UNEXPECTED_TOKEN"
	CodeFilterUnterminated    Code = "E002_UNTERMINATED_LITERAL"
	CodeFilterUnexpectedEOF   Code = "E003_UNEXPECTED_EOF"
	CodeFilterInvalidNumber   Code = "E004_INVALID_NUMBER"
	CodeFilterUnbalancedParen Code = "E005_UNBALANCED_PAREN"
	CodeFilterMissingOperand  Code = "E006_MISSING_OPERAND"
	CodeFilterInvalidOperator Code = "E007_INVALID_OPERATOR"

	// Filter type errors (validation)
	CodeFilterUnknownField    Code = "E101_UNKNOWN_FIELD"
	CodeFilterTypeMismatch    Code = "E102_TYPE_MISMATCH"
	CodeFilterBadOperatorType Code = "E103_OPERATOR_TYPE_INCOMPATIBLE"
	CodeFilterBadArrayLiteral Code = "E104_INVALID_ARRAY_LITERAL"
	CodeFilterBadRange        Code = "E105_INVALID_RANGE"

	// Filter limit errors (parse-time guardrails)
	CodeFilterInputTooLong   Code = "E301_INPUT_TOO_LONG"
	CodeFilterTooDeep        Code = "E302_AST_TOO_DEEP"
	CodeFilterTooManyNodes   Code = "E303_AST_TOO_MANY_NODES"
	CodeFilterArrayTooLong   Code = "E304_ARRAY_LITERAL_TOO_LONG"

	// Filter strategy errors
	CodeFilterStrategyInvalid Code = "E401_INVALID_STRATEGY"

	// Persistence errors
	CodeInvalidMagic         Code = "INVALID_MAGIC"
	CodeUnsupportedVersion   Code = "UNSUPPORTED_VERSION"
	CodeTruncatedData        Code = "TRUNCATED_DATA"
	CodeChecksumMismatch     Code = "CHECKSUM_MISMATCH"
	CodeSerializationError   Code = "SERIALIZATION_ERROR"
	CodeDeserializationError Code = "DESERIALIZATION_ERROR"

	// Memory governor
	CodeMemoryCritical Code = "MEMORY_CRITICAL"
)

// Error is the structured error type returned by every EdgeVec package.
type Error struct {
	Code    Code
	Message string
	Field   string // optional: offending field name, for filter errors
	Pos     int    // optional: rune offset into filter source, -1 if n/a
	Line    int    // optional: 1-indexed source line, 0 if n/a
	Column  int    // optional: 1-indexed source column, 0 if n/a
	// Suggestion is an optional human-readable fix, e.g. "did you mean
	// 'price'?" or "insert a matching ')'".
	Suggestion string
	Cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d, column %d)", msg, e.Line, e.Column)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field=%s)", msg, e.Field)
	}
	if e.Suggestion != "" {
		msg = fmt.Sprintf("%s - %s", msg, e.Suggestion)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is allows errors.Is(err, edvcerr.New(Code...)) style comparisons by Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New constructs an Error with no cause or field.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Pos: -1}
}

// Newf constructs an Error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Pos: -1}
}

// Wrap constructs an Error that wraps an underlying cause.
func Wrap(code Code, cause error, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause, Pos: -1}
}

// WithField returns a copy of e with Field set, used when building filter
// validation errors that need to name the offending field.
func (e *Error) WithField(field string) *Error {
	c := *e
	c.Field = field
	return &c
}

// WithPos returns a copy of e with Pos set to a rune offset in filter
// source, along with the 1-indexed line and column that offset falls on.
// Callers derive line/column from the source text themselves; edvcerr
// carries no notion of filter syntax.
func (e *Error) WithPos(pos, line, column int) *Error {
	c := *e
	c.Pos = pos
	c.Line = line
	c.Column = column
	return &c
}

// WithSuggestion returns a copy of e with an optional human-readable fix
// attached.
func (e *Error) WithSuggestion(s string) *Error {
	c := *e
	c.Suggestion = s
	return &c
}
