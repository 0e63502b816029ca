package queryir

import "github.com/roach88/rdfsql/internal/name"

// Well-known IRIs.
const (
	RDFType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	XSD     = "http://www.w3.org/2001/XMLSchema#"
)

// NoLimit marks an unset Limit or Offset.
const NoLimit int64 = -1

// Var is a SPARQL variable name without the leading "?".
type Var string

// String renders the variable in SPARQL syntax.
func (v Var) String() string { return "?" + string(v) }

// Term is a triple pattern position.
//
// This is a sealed interface - only types in this package implement it.
// Term types: Var, IRI, BlankNode, *Literal.
type Term interface {
	termNode()
}

func (Var) termNode() {}

// IRI is an absolute IRI without angle brackets.
type IRI string

func (IRI) termNode() {}

// BlankNode is a blank node label without the "_:" prefix.
type BlankNode string

func (BlankNode) termNode() {}

// Triple is a single triple pattern.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// Block is one element of a group graph pattern.
//
// This is a sealed interface - only types in this package implement it.
// Block types: *BGP, *Optional, *Filter, *Bind, *Equate.
type Block interface {
	blockNode()
}

// Group is an ordered group graph pattern ({ ... } in SPARQL).
type Group struct {
	Blocks []Block
}

// BGP is a basic graph pattern: triples evaluated as a conjunction.
type BGP struct {
	Triples []Triple
}

func (*BGP) blockNode() {}

// Optional wraps a group whose failure to match does not eliminate the
// outer solution.
type Optional struct {
	Group *Group
}

func (*Optional) blockNode() {}

// Filter restricts solutions of its enclosing group.
type Filter struct {
	Expr Expr
}

func (*Filter) blockNode() {}

// Bind assigns an expression value to a fresh variable.
type Bind struct {
	Expr Expr
	Var  Var
}

func (*Bind) blockNode() {}

// Equate states that two column variables bind to the same RDF node.
//
// An Equate is realized by the builder as a shared binding variable used
// by both column triples (see builder.Build). Serializers render nothing
// for it; it stays in the IR so placement can be inspected.
type Equate struct {
	Left  Var
	Right Var
}

func (*Equate) blockNode() {}

// Projection is one output column.
//
// When Expr is nil, Var is projected directly. Otherwise the query projects
// (Expr AS Var). Name is the column label reported to SQL clients.
type Projection struct {
	Var    Var
	Name   string
	Expr   Expr
	Source name.ItemName // column the value came from, zero for computed values
}

// OrderKey is one ORDER BY key.
type OrderKey struct {
	Expr      Expr
	Ascending bool
}

// Prefix is a PREFIX declaration emitted ahead of the query body.
type Prefix struct {
	Name string
	IRI  string
}

// Query is a compiled SELECT query.
type Query struct {
	Prefixes   []Prefix
	Where      *Group
	Projection []Projection
	Distinct   bool
	OrderBy    []OrderKey
	Limit      int64
	Offset     int64
}

// NewQuery returns an empty query with no limit or offset.
func NewQuery() *Query {
	return &Query{
		Where:  &Group{},
		Limit:  NoLimit,
		Offset: NoLimit,
	}
}

// Columns returns the projected column labels in SELECT order.
func (q *Query) Columns() []string {
	cols := make([]string, len(q.Projection))
	for i, p := range q.Projection {
		cols[i] = p.Name
	}
	return cols
}

// ColumnVars maps each projected variable to its column label, in SELECT
// order. A variable projected twice appears twice.
func (q *Query) ColumnVars() []Projection {
	out := make([]Projection, len(q.Projection))
	copy(out, q.Projection)
	return out
}
