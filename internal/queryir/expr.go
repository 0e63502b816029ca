package queryir

import (
	"strconv"

	"github.com/roach88/rdfsql/internal/name"
)

// Expr is a compiled expression.
//
// This is a sealed interface - only types in this package implement it.
// Expr types: *Literal, *VarRef, *Unary, *Binary, *Bound, *In, *Aggregate,
// *Call.
type Expr interface {
	exprNode()
}

// LiteralKind is the datatype of a literal.
type LiteralKind int

const (
	LitString LiteralKind = iota
	LitInteger
	LitDecimal
	LitDouble
	LitBoolean
	LitDate
	LitTime
	LitTimestamp
	LitNull
)

var literalKindNames = [...]string{
	LitString:    "string",
	LitInteger:   "integer",
	LitDecimal:   "decimal",
	LitDouble:    "double",
	LitBoolean:   "boolean",
	LitDate:      "date",
	LitTime:      "time",
	LitTimestamp: "timestamp",
	LitNull:      "null",
}

func (k LiteralKind) String() string {
	if k < 0 || int(k) >= len(literalKindNames) {
		return "LiteralKind(" + strconv.Itoa(int(k)) + ")"
	}
	return literalKindNames[k]
}

// Datatype returns the XSD datatype IRI for typed literal kinds. Plain
// strings and NULL have no datatype.
func (k LiteralKind) Datatype() string {
	switch k {
	case LitInteger:
		return XSD + "integer"
	case LitDecimal:
		return XSD + "decimal"
	case LitDouble:
		return XSD + "double"
	case LitBoolean:
		return XSD + "boolean"
	case LitDate:
		return XSD + "date"
	case LitTime:
		return XSD + "time"
	case LitTimestamp:
		return XSD + "dateTime"
	default:
		return ""
	}
}

// Literal is a constant value. Value holds the lexical form.
//
// Literal is also a Term so catalog templates may carry constants.
type Literal struct {
	Kind  LiteralKind
	Value string
}

func (*Literal) exprNode() {}
func (*Literal) termNode() {}

// Null is the SQL NULL literal. It renders nowhere: null tests compile to
// Bound.
var Null = &Literal{Kind: LitNull}

// IsNull reports whether e is the NULL sentinel.
func IsNull(e Expr) bool {
	l, ok := e.(*Literal)
	return ok && l.Kind == LitNull
}

// String returns a string literal.
func String(s string) *Literal { return &Literal{Kind: LitString, Value: s} }

// Integer returns an integer literal.
func Integer(n int64) *Literal { return &Literal{Kind: LitInteger, Value: strconv.FormatInt(n, 10)} }

// Boolean returns a boolean literal.
func Boolean(b bool) *Literal { return &Literal{Kind: LitBoolean, Value: strconv.FormatBool(b)} }

// VarRef references the variable bound to a registered column.
type VarRef struct {
	Var  Var
	Name name.ItemName
}

func (*VarRef) exprNode() {}

// UnaryOp is a prefix operator.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNeg
	OpPlus
)

func (o UnaryOp) String() string {
	switch o {
	case OpNot:
		return "!"
	case OpNeg:
		return "-"
	case OpPlus:
		return "+"
	default:
		return "UnaryOp(" + strconv.Itoa(int(o)) + ")"
	}
}

// Unary applies a prefix operator.
type Unary struct {
	Op UnaryOp
	X  Expr
}

func (*Unary) exprNode() {}

// BinaryOp is an infix operator.
type BinaryOp int

const (
	OpAnd BinaryOp = iota
	OpOr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAdd
	OpSub
	OpMul
	OpDiv
)

var binaryOpSymbols = [...]string{
	OpAnd: "&&",
	OpOr:  "||",
	OpEq:  "=",
	OpNe:  "!=",
	OpLt:  "<",
	OpLe:  "<=",
	OpGt:  ">",
	OpGe:  ">=",
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
}

// String returns the SPARQL operator symbol.
func (o BinaryOp) String() string {
	if o < 0 || int(o) >= len(binaryOpSymbols) {
		return "BinaryOp(" + strconv.Itoa(int(o)) + ")"
	}
	return binaryOpSymbols[o]
}

// IsComparison reports whether o compares two values.
func (o BinaryOp) IsComparison() bool {
	return o >= OpEq && o <= OpGe
}

// Binary applies an infix operator.
type Binary struct {
	Op BinaryOp
	L  Expr
	R  Expr
}

func (*Binary) exprNode() {}

// And conjoins the given expressions, skipping nils. It returns nil when
// nothing remains.
func And(exprs ...Expr) Expr {
	var out Expr
	for _, e := range exprs {
		switch {
		case e == nil:
		case out == nil:
			out = e
		default:
			out = &Binary{Op: OpAnd, L: out, R: e}
		}
	}
	return out
}

// Bound tests whether a column variable is bound. SQL IS NULL is
// Bound{Not: true}, IS NOT NULL is Bound{Not: false}.
type Bound struct {
	X   *VarRef
	Not bool
}

func (*Bound) exprNode() {}

// In tests membership of X in List.
type In struct {
	X    Expr
	List []Expr
	Not  bool
}

func (*In) exprNode() {}

// AggregateOp is a SPARQL aggregator.
type AggregateOp int

const (
	AggCount AggregateOp = iota
	AggSum
	AggMin
	AggMax
	AggAvg
)

var aggregateNames = [...]string{
	AggCount: "COUNT",
	AggSum:   "SUM",
	AggMin:   "MIN",
	AggMax:   "MAX",
	AggAvg:   "AVG",
}

func (o AggregateOp) String() string {
	if o < 0 || int(o) >= len(aggregateNames) {
		return "AggregateOp(" + strconv.Itoa(int(o)) + ")"
	}
	return aggregateNames[o]
}

// Aggregate applies an aggregator over all solutions. Arg is nil for
// COUNT(*).
type Aggregate struct {
	Op       AggregateOp
	Distinct bool
	Arg      Expr
}

func (*Aggregate) exprNode() {}

// Call invokes a SPARQL builtin function by its upper-case name.
type Call struct {
	Func string
	Args []Expr
}

func (*Call) exprNode() {}
