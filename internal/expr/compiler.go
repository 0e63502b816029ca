// Package expr compiles SQL expressions into query IR expressions.
//
// Compilation is a single recursive pass: children are compiled before
// the node that consumes them, so a node always sees fully compiled
// operands. Column references are resolved through a Scope, which the
// query builder implements; function calls are dispatched through an
// explicit Registry of handler tables.
//
// Constructs SPARQL cannot express (CASE, subqueries, LIKE, bitwise
// operators, string concatenation) fail with UNSUPPORTED_CONSTRUCT
// carrying the SQL keyword. Nothing is approximated.
package expr

import (
	"fmt"
	"strings"

	"github.com/roach88/rdfsql/internal/queryir"
	"github.com/roach88/rdfsql/internal/sqlast"
	"github.com/roach88/rdfsql/internal/sqlerr"
)

// Scope resolves column references for one query.
type Scope interface {
	// ResolveColumn returns the variable bound to the referenced column.
	// It fails with COLUMN_NOT_FOUND or AMBIGUOUS_COLUMN.
	ResolveColumn(ref *sqlast.ColumnRef) (*queryir.VarRef, error)
}

// Clause identifies where an expression appears. Aggregates are only
// legal in the SELECT list and ORDER BY.
type Clause int

const (
	ClauseSelect Clause = iota
	ClauseWhere
	ClauseOn
	ClauseOrderBy
)

func (c Clause) String() string {
	switch c {
	case ClauseSelect:
		return "SELECT"
	case ClauseWhere:
		return "WHERE"
	case ClauseOn:
		return "ON"
	case ClauseOrderBy:
		return "ORDER BY"
	default:
		return "expression"
	}
}

func (c Clause) allowsAggregates() bool {
	return c == ClauseSelect || c == ClauseOrderBy
}

// Compiler translates expressions against a scope.
type Compiler struct {
	funcs *Registry
	scope Scope
}

// New returns a compiler using funcs for function calls and scope for
// column references.
func New(funcs *Registry, scope Scope) *Compiler {
	return &Compiler{funcs: funcs, scope: scope}
}

// Compile translates e. Errors carry the innermost failing SQL fragment.
func (c *Compiler) Compile(e sqlast.Expr, clause Clause) (queryir.Expr, error) {
	st := &state{clause: clause}
	return c.compile(e, st)
}

type state struct {
	clause   Clause
	inAggArg bool
}

func (c *Compiler) compile(e sqlast.Expr, st *state) (queryir.Expr, error) {
	out, err := c.compileNode(e, st)
	if err != nil {
		return nil, sqlerr.WithFragment(err, sqlast.Format(e))
	}
	return out, nil
}

func (c *Compiler) compileNode(e sqlast.Expr, st *state) (queryir.Expr, error) {
	switch x := e.(type) {
	case *sqlast.ColumnRef:
		ref, err := c.scope.ResolveColumn(x)
		if err != nil {
			return nil, err
		}
		return ref, nil

	case *sqlast.Literal:
		return literal(x), nil

	case *sqlast.Paren:
		return c.compile(x.X, st)

	case *sqlast.Unary:
		return c.compileUnary(x, st)

	case *sqlast.Binary:
		return c.compileBinary(x, st)

	case *sqlast.Between:
		v, err := c.compile(x.X, st)
		if err != nil {
			return nil, err
		}
		lo, err := c.compile(x.Low, st)
		if err != nil {
			return nil, err
		}
		hi, err := c.compile(x.High, st)
		if err != nil {
			return nil, err
		}
		out := queryir.And(
			&queryir.Binary{Op: queryir.OpGe, L: v, R: lo},
			&queryir.Binary{Op: queryir.OpLe, L: v, R: hi},
		)
		if x.Not {
			out = &queryir.Unary{Op: queryir.OpNot, X: out}
		}
		return out, nil

	case *sqlast.IsNull:
		v, err := c.compile(x.X, st)
		if err != nil {
			return nil, err
		}
		if queryir.IsNull(v) {
			return queryir.Boolean(!x.Not), nil
		}
		ref, ok := v.(*queryir.VarRef)
		if !ok {
			return nil, sqlerr.New(sqlerr.CodeUnsupportedConstruct, "IS NULL", "IS NULL needs a column operand")
		}
		return &queryir.Bound{X: ref, Not: !x.Not}, nil

	case *sqlast.InList:
		v, err := c.compile(x.X, st)
		if err != nil {
			return nil, err
		}
		list := make([]queryir.Expr, len(x.List))
		for i, item := range x.List {
			if list[i], err = c.compile(item, st); err != nil {
				return nil, err
			}
		}
		return &queryir.In{X: v, List: list, Not: x.Not}, nil

	case *sqlast.FuncCall:
		return c.compileCall(x, st)

	case *sqlast.Like:
		kw := "LIKE"
		if x.Regexp {
			kw = "REGEXP"
		}
		if x.Not {
			kw = "NOT " + kw
		}
		return nil, sqlerr.Unsupported(kw)

	case *sqlast.Case:
		return nil, sqlerr.Unsupported("CASE")
	case *sqlast.Subquery:
		return nil, sqlerr.Unsupported("subquery")
	case *sqlast.Exists:
		return nil, sqlerr.Unsupported("EXISTS")
	case *sqlast.Quantified:
		if x.All {
			return nil, sqlerr.Unsupported("ALL")
		}
		return nil, sqlerr.Unsupported("ANY")
	case *sqlast.Match:
		return nil, sqlerr.Unsupported("MATCH")
	case *sqlast.Position:
		return nil, sqlerr.New(sqlerr.CodeUnsupportedConstruct, "position",
			"select list position %d is only allowed in ORDER BY", x.N)

	case nil:
		return nil, sqlerr.New(sqlerr.CodeSyntaxError, "", "missing expression")
	default:
		panic(fmt.Sprintf("expr: unknown expression type %T", e))
	}
}

func (c *Compiler) compileUnary(x *sqlast.Unary, st *state) (queryir.Expr, error) {
	if x.Op == sqlast.UnaryBitNot {
		return nil, sqlerr.Unsupported("~")
	}
	v, err := c.compile(x.X, st)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case sqlast.UnaryNot:
		return &queryir.Unary{Op: queryir.OpNot, X: v}, nil
	case sqlast.UnaryPlus:
		return v, nil
	default:
		if lit, ok := v.(*queryir.Literal); ok && isNumeric(lit.Kind) {
			return negate(lit), nil
		}
		return &queryir.Unary{Op: queryir.OpNeg, X: v}, nil
	}
}

var binaryOps = map[sqlast.BinaryOp]queryir.BinaryOp{
	sqlast.OpAnd: queryir.OpAnd,
	sqlast.OpOr:  queryir.OpOr,
	sqlast.OpEq:  queryir.OpEq,
	sqlast.OpNe:  queryir.OpNe,
	sqlast.OpLt:  queryir.OpLt,
	sqlast.OpLe:  queryir.OpLe,
	sqlast.OpGt:  queryir.OpGt,
	sqlast.OpGe:  queryir.OpGe,
	sqlast.OpAdd: queryir.OpAdd,
	sqlast.OpSub: queryir.OpSub,
	sqlast.OpMul: queryir.OpMul,
	sqlast.OpDiv: queryir.OpDiv,
}

func (c *Compiler) compileBinary(x *sqlast.Binary, st *state) (queryir.Expr, error) {
	op, ok := binaryOps[x.Op]
	if !ok {
		return nil, sqlerr.Unsupported(x.Op.String())
	}
	l, err := c.compile(x.L, st)
	if err != nil {
		return nil, err
	}
	r, err := c.compile(x.R, st)
	if err != nil {
		return nil, err
	}
	if queryir.IsNull(l) || queryir.IsNull(r) {
		if op.IsComparison() {
			return nil, sqlerr.New(sqlerr.CodeUnsupportedConstruct, x.Op.String()+" NULL",
				"comparison with NULL is never true; use IS NULL")
		}
		return nil, sqlerr.New(sqlerr.CodeUnsupportedConstruct, "NULL", "NULL operand of %s", x.Op)
	}
	return &queryir.Binary{Op: op, L: l, R: r}, nil
}

func (c *Compiler) compileCall(x *sqlast.FuncCall, st *state) (queryir.Expr, error) {
	h, _, err := c.funcs.Lookup(x.Name)
	if err != nil {
		return nil, err
	}
	fn := strings.ToUpper(x.Name)

	if h.Aggregate {
		if !st.clause.allowsAggregates() {
			return nil, sqlerr.New(sqlerr.CodeUnsupportedConstruct, fn,
				"aggregate %s is not allowed in %s", fn, st.clause)
		}
		if st.inAggArg {
			return nil, sqlerr.New(sqlerr.CodeUnsupportedConstruct, fn, "nested aggregate %s", fn)
		}
	} else if x.Distinct || x.Star {
		return nil, sqlerr.New(sqlerr.CodeUnsupportedConstruct, fn, "%s does not accept DISTINCT or *", fn)
	}

	n := len(x.Args)
	if x.Star {
		n = 1
	}
	if err := h.CheckArity(fn, n); err != nil {
		return nil, err
	}

	argState := *st
	argState.inAggArg = st.inAggArg || h.Aggregate
	args := Args{Distinct: x.Distinct, Star: x.Star, Values: make([]queryir.Expr, len(x.Args))}
	for i, a := range x.Args {
		if args.Values[i], err = c.compile(a, &argState); err != nil {
			return nil, err
		}
	}
	return h.Build(args)
}

func literal(l *sqlast.Literal) queryir.Expr {
	switch l.Kind {
	case sqlast.LitNull:
		return queryir.Null
	case sqlast.LitInteger:
		return &queryir.Literal{Kind: queryir.LitInteger, Value: l.Value}
	case sqlast.LitDecimal:
		return &queryir.Literal{Kind: queryir.LitDecimal, Value: l.Value}
	case sqlast.LitFloat:
		return &queryir.Literal{Kind: queryir.LitDouble, Value: l.Value}
	case sqlast.LitBoolean:
		return &queryir.Literal{Kind: queryir.LitBoolean, Value: strings.ToLower(l.Value)}
	case sqlast.LitDate:
		return &queryir.Literal{Kind: queryir.LitDate, Value: l.Value}
	case sqlast.LitTime:
		return &queryir.Literal{Kind: queryir.LitTime, Value: l.Value}
	case sqlast.LitTimestamp:
		// xsd:dateTime separates date and time with "T"
		return &queryir.Literal{Kind: queryir.LitTimestamp, Value: strings.Replace(l.Value, " ", "T", 1)}
	default:
		return queryir.String(l.Value)
	}
}

func isNumeric(k queryir.LiteralKind) bool {
	return k == queryir.LitInteger || k == queryir.LitDecimal || k == queryir.LitDouble
}

func negate(l *queryir.Literal) *queryir.Literal {
	if v, ok := strings.CutPrefix(l.Value, "-"); ok {
		return &queryir.Literal{Kind: l.Kind, Value: v}
	}
	return &queryir.Literal{Kind: l.Kind, Value: "-" + l.Value}
}
