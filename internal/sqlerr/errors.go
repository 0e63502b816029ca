// Package sqlerr defines the single error type returned by every stage of
// SQL-to-SPARQL compilation.
//
// Every failure is synchronous and aborts the whole compilation. Callers
// branch on Code (via Is or errors.As), never on message text. Keyword and
// Fragment carry the offending SQL so a caller can report precisely which
// clause was rejected.
package sqlerr

import (
	"errors"
	"fmt"
	"strings"
)

// Code categorizes compilation errors.
type Code string

const (
	// CodeInvalidIdentifier indicates a name segment contains a reserved separator.
	CodeInvalidIdentifier Code = "INVALID_IDENTIFIER"

	// CodeTableNotFound indicates a table reference matched no catalog table.
	CodeTableNotFound Code = "TABLE_NOT_FOUND"

	// CodeColumnNotFound indicates a column reference matched no column in scope.
	CodeColumnNotFound Code = "COLUMN_NOT_FOUND"

	// CodeAmbiguousColumn indicates a column reference matched more than one column.
	CodeAmbiguousColumn Code = "AMBIGUOUS_COLUMN"

	// CodeAmbiguousReference indicates a partial name matched more than one item.
	CodeAmbiguousReference Code = "AMBIGUOUS_REFERENCE"

	// CodeUnsupportedConstruct indicates SQL with no translation in this model.
	CodeUnsupportedConstruct Code = "UNSUPPORTED_CONSTRUCT"

	// CodeUnsupportedJoinKind indicates a RIGHT, FULL or NATURAL join.
	CodeUnsupportedJoinKind Code = "UNSUPPORTED_JOIN_KIND"

	// CodeUnsupportedFunction indicates a function name no handler table knows.
	CodeUnsupportedFunction Code = "UNSUPPORTED_FUNCTION"

	// CodeWrongArgumentCount indicates a known function called with bad arity.
	CodeWrongArgumentCount Code = "WRONG_ARGUMENT_COUNT"

	// CodeSyntaxError indicates the SQL text could not be parsed.
	CodeSyntaxError Code = "SYNTAX_ERROR"

	// CodeInvalidCatalog indicates a malformed catalog definition.
	CodeInvalidCatalog Code = "INVALID_CATALOG"

	// CodeBuilderConsumed indicates a builder was used after Build.
	CodeBuilderConsumed Code = "BUILDER_CONSUMED"
)

// Codes lists every error code.
var Codes = []Code{
	CodeInvalidIdentifier,
	CodeTableNotFound,
	CodeColumnNotFound,
	CodeAmbiguousColumn,
	CodeAmbiguousReference,
	CodeUnsupportedConstruct,
	CodeUnsupportedJoinKind,
	CodeUnsupportedFunction,
	CodeWrongArgumentCount,
	CodeSyntaxError,
	CodeInvalidCatalog,
	CodeBuilderConsumed,
}

// Known reports whether c is one of Codes.
func Known(c Code) bool {
	for _, k := range Codes {
		if k == c {
			return true
		}
	}
	return false
}

// Error is a compilation error.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Keyword is the SQL keyword or identifier that triggered the error
	// (e.g. "CASE", "RIGHT JOIN", "foo.IntCol").
	Keyword string

	// Fragment is the SQL text of the failing clause, when known.
	Fragment string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Keyword != "" {
		fmt.Fprintf(&b, " [%s]", e.Keyword)
	}
	if e.Fragment != "" {
		fmt.Fprintf(&b, " in %q", e.Fragment)
	}
	return b.String()
}

// Is reports whether err (or anything it wraps) is an *Error with the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of err, or "" when err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// WithFragment attaches the SQL fragment to err if it is an *Error without one.
// Other errors are returned unchanged.
func WithFragment(err error, fragment string) error {
	var e *Error
	if !errors.As(err, &e) || e.Fragment != "" || fragment == "" {
		return err
	}
	cp := *e
	cp.Fragment = fragment
	return &cp
}

// New creates an Error with a formatted message.
func New(code Code, keyword, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Keyword: keyword,
	}
}

// InvalidIdentifier reports a name segment containing a reserved separator.
func InvalidIdentifier(segment, value string) *Error {
	return New(CodeInvalidIdentifier, value, "%s segment %q contains a reserved separator", segment, value)
}

// TableNotFound reports a table reference with no match.
func TableNotFound(ref string) *Error {
	return New(CodeTableNotFound, ref, "table %s not found", ref)
}

// ColumnNotFound reports a column reference with no match.
func ColumnNotFound(ref string) *Error {
	return New(CodeColumnNotFound, ref, "column %s not found", ref)
}

// AmbiguousColumn reports a column reference with several matches.
func AmbiguousColumn(ref string, candidates []string) *Error {
	return New(CodeAmbiguousColumn, ref, "column %s is ambiguous: %s", ref, strings.Join(candidates, ", "))
}

// AmbiguousReference reports a partial name with several matches.
func AmbiguousReference(ref string, candidates []string) *Error {
	return New(CodeAmbiguousReference, ref, "reference %s is ambiguous: %s", ref, strings.Join(candidates, ", "))
}

// Unsupported reports a SQL construct with no SPARQL translation.
func Unsupported(keyword string) *Error {
	return New(CodeUnsupportedConstruct, keyword, "%s is not supported", keyword)
}

// UnsupportedJoin reports a join kind with no SPARQL translation.
func UnsupportedJoin(keyword string) *Error {
	return New(CodeUnsupportedJoinKind, keyword, "%s is not supported", keyword)
}

// UnsupportedFunction reports a function no handler table knows.
func UnsupportedFunction(fn string) *Error {
	return New(CodeUnsupportedFunction, fn, "function %s is not supported", fn)
}

// WrongArgumentCount reports a function called with bad arity.
// max < 0 means unbounded.
func WrongArgumentCount(fn string, got, min, max int) *Error {
	var want string
	switch {
	case max < 0:
		want = fmt.Sprintf("at least %d", min)
	case min == max:
		want = fmt.Sprintf("%d", min)
	default:
		want = fmt.Sprintf("%d to %d", min, max)
	}
	return New(CodeWrongArgumentCount, fn, "function %s takes %s argument(s), got %d", fn, want, got)
}
