package queryir

import (
	"fmt"
	"strings"
)

// WalkExpr calls fn for e and every sub-expression in pre-order. Returning
// false from fn skips the children of that node.
func WalkExpr(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch x := e.(type) {
	case *Literal, *VarRef:
	case *Unary:
		WalkExpr(x.X, fn)
	case *Bound:
		if x.X != nil {
			WalkExpr(x.X, fn)
		}
	case *Binary:
		WalkExpr(x.L, fn)
		WalkExpr(x.R, fn)
	case *In:
		WalkExpr(x.X, fn)
		for _, item := range x.List {
			WalkExpr(item, fn)
		}
	case *Aggregate:
		WalkExpr(x.Arg, fn)
	case *Call:
		for _, a := range x.Args {
			WalkExpr(a, fn)
		}
	default:
		panic(fmt.Sprintf("queryir: unknown expression type %T", e))
	}
}

// ExprVars returns the distinct variables referenced by e in first-seen
// order.
func ExprVars(e Expr) []Var {
	var out []Var
	seen := map[Var]bool{}
	WalkExpr(e, func(n Expr) bool {
		if ref, ok := n.(*VarRef); ok && !seen[ref.Var] {
			seen[ref.Var] = true
			out = append(out, ref.Var)
		}
		return true
	})
	return out
}

// BoundVars returns the distinct variables e tests for boundness, in
// first-seen order.
func BoundVars(e Expr) []Var {
	var out []Var
	seen := map[Var]bool{}
	WalkExpr(e, func(n Expr) bool {
		if b, ok := n.(*Bound); ok && b.X != nil && !seen[b.X.Var] {
			seen[b.X.Var] = true
			out = append(out, b.X.Var)
		}
		return true
	})
	return out
}

// ContainsAggregate reports whether e contains an aggregate.
func ContainsAggregate(e Expr) bool {
	found := false
	WalkExpr(e, func(n Expr) bool {
		if _, ok := n.(*Aggregate); ok {
			found = true
		}
		return !found
	})
	return found
}

// Vars returns the variables among the triple's terms.
func (t Triple) Vars() []Var {
	var out []Var
	for _, term := range [3]Term{t.Subject, t.Predicate, t.Object} {
		if v, ok := term.(Var); ok {
			out = append(out, v)
		}
	}
	return out
}

// Clone returns a deep copy of the group. Expressions are immutable once
// built and are shared.
func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}
	out := &Group{Blocks: make([]Block, 0, len(g.Blocks))}
	for _, b := range g.Blocks {
		out.Blocks = append(out.Blocks, cloneBlock(b))
	}
	return out
}

func cloneBlock(b Block) Block {
	switch x := b.(type) {
	case *BGP:
		triples := make([]Triple, len(x.Triples))
		copy(triples, x.Triples)
		return &BGP{Triples: triples}
	case *Optional:
		return &Optional{Group: x.Group.Clone()}
	case *Filter:
		return &Filter{Expr: x.Expr}
	case *Bind:
		return &Bind{Expr: x.Expr, Var: x.Var}
	case *Equate:
		return &Equate{Left: x.Left, Right: x.Right}
	default:
		panic(fmt.Sprintf("queryir: unknown block type %T", b))
	}
}

// Clone returns a deep copy of the query.
func (q *Query) Clone() *Query {
	out := *q
	out.Where = q.Where.Clone()
	out.Prefixes = append([]Prefix(nil), q.Prefixes...)
	out.Projection = append([]Projection(nil), q.Projection...)
	out.OrderBy = append([]OrderKey(nil), q.OrderBy...)
	return &out
}

// Stats counts the blocks of a group recursively. Blocks inside OPTIONAL
// groups count both toward their kind and toward Optionals.
type Stats struct {
	Triples   int
	Optionals int
	Filters   int
	Binds     int
	Equates   int
}

// Stats walks the group and tallies its blocks.
func (g *Group) Stats() Stats {
	var s Stats
	g.stats(&s)
	return s
}

func (g *Group) stats(s *Stats) {
	if g == nil {
		return
	}
	for _, b := range g.Blocks {
		switch x := b.(type) {
		case *BGP:
			s.Triples += len(x.Triples)
		case *Optional:
			s.Optionals++
			x.Group.stats(s)
		case *Filter:
			s.Filters++
		case *Bind:
			s.Binds++
		case *Equate:
			s.Equates++
		}
	}
}

// Key returns a canonical text form of e. Structurally equal expressions
// have equal keys.
func Key(e Expr) string {
	var sb strings.Builder
	writeKey(&sb, e)
	return sb.String()
}

func writeKey(sb *strings.Builder, e Expr) {
	switch x := e.(type) {
	case nil:
		sb.WriteString("nil")
	case *Literal:
		fmt.Fprintf(sb, "lit(%s,%q)", x.Kind, x.Value)
	case *VarRef:
		sb.WriteString(x.Var.String())
	case *Unary:
		fmt.Fprintf(sb, "(%s ", x.Op)
		writeKey(sb, x.X)
		sb.WriteByte(')')
	case *Bound:
		fmt.Fprintf(sb, "(bound %t ", x.Not)
		if x.X != nil {
			writeKey(sb, x.X)
		}
		sb.WriteByte(')')
	case *Binary:
		fmt.Fprintf(sb, "(%s ", x.Op)
		writeKey(sb, x.L)
		sb.WriteByte(' ')
		writeKey(sb, x.R)
		sb.WriteByte(')')
	case *In:
		fmt.Fprintf(sb, "(in %t ", x.Not)
		writeKey(sb, x.X)
		for _, item := range x.List {
			sb.WriteByte(' ')
			writeKey(sb, item)
		}
		sb.WriteByte(')')
	case *Aggregate:
		fmt.Fprintf(sb, "(%s %t ", x.Op, x.Distinct)
		writeKey(sb, x.Arg)
		sb.WriteByte(')')
	case *Call:
		fmt.Fprintf(sb, "(%s", x.Func)
		for _, a := range x.Args {
			sb.WriteByte(' ')
			writeKey(sb, a)
		}
		sb.WriteByte(')')
	default:
		panic(fmt.Sprintf("queryir: unknown expression type %T", e))
	}
}
