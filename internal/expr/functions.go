package expr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/rdfsql/internal/queryir"
	"github.com/roach88/rdfsql/internal/sqlerr"
)

// Unbounded marks a handler with no maximum argument count.
const Unbounded = -1

// Args are the compiled arguments of a function call.
type Args struct {
	Values   []queryir.Expr
	Distinct bool
	Star     bool
}

// Handler translates one SQL function.
type Handler struct {
	// Name is the canonical SQL name.
	Name string

	// MinArgs and MaxArgs bound the argument count. MaxArgs may be
	// Unbounded.
	MinArgs int
	MaxArgs int

	// Aggregate marks handlers that produce *queryir.Aggregate.
	Aggregate bool

	Build func(args Args) (queryir.Expr, error)
}

// Table is a named set of handlers keyed by upper-case function name.
// Aliases share a handler.
type Table struct {
	Name     string
	handlers map[string]Handler
}

// NewTable returns an empty handler table.
func NewTable(tableName string) *Table {
	return &Table{Name: tableName, handlers: map[string]Handler{}}
}

// Register adds h under each of names.
func (t *Table) Register(h Handler, names ...string) *Table {
	for _, n := range names {
		t.handlers[strings.ToUpper(n)] = h
	}
	return t
}

// Lookup finds a handler by case-insensitive name.
func (t *Table) Lookup(fn string) (Handler, bool) {
	h, ok := t.handlers[strings.ToUpper(fn)]
	return h, ok
}

// Names returns the registered names.
func (t *Table) Names() []string {
	out := make([]string, 0, len(t.handlers))
	for n := range t.handlers {
		out = append(out, n)
	}
	return out
}

func aggregate(op queryir.AggregateOp) Handler {
	h := Handler{Name: op.String(), MinArgs: 1, MaxArgs: 1, Aggregate: true}
	h.Build = func(args Args) (queryir.Expr, error) {
		if args.Star {
			if op != queryir.AggCount {
				return nil, sqlerr.Unsupported(op.String() + "(*)")
			}
			return &queryir.Aggregate{Op: op, Distinct: args.Distinct}, nil
		}
		return &queryir.Aggregate{Op: op, Distinct: args.Distinct, Arg: args.Values[0]}, nil
	}
	return h
}

func builtin(fn string, minArgs, maxArgs int) Handler {
	return Handler{
		Name:    fn,
		MinArgs: minArgs,
		MaxArgs: maxArgs,
		Build: func(args Args) (queryir.Expr, error) {
			return &queryir.Call{Func: fn, Args: args.Values}, nil
		},
	}
}

// NumericFunctions returns MAX, MIN, COUNT, SUM, AVG, ABS, CEIL, CEILING,
// FLOOR, ROUND and RAND.
func NumericFunctions() *Table {
	t := NewTable("numeric")
	t.Register(aggregate(queryir.AggMax), "MAX")
	t.Register(aggregate(queryir.AggMin), "MIN")
	t.Register(aggregate(queryir.AggCount), "COUNT")
	t.Register(aggregate(queryir.AggSum), "SUM")
	t.Register(aggregate(queryir.AggAvg), "AVG")
	t.Register(builtin("ABS", 1, 1), "ABS")
	t.Register(builtin("CEIL", 1, 1), "CEIL", "CEILING")
	t.Register(builtin("FLOOR", 1, 1), "FLOOR")
	t.Register(Handler{Name: "ROUND", MinArgs: 1, MaxArgs: 2, Build: buildRound}, "ROUND")
	t.Register(builtin("RAND", 0, 0), "RAND")
	return t
}

// buildRound maps ROUND(x, d) to ROUND(x * 10^d) / 10^d for a literal
// integer d, since SPARQL ROUND takes no precision.
func buildRound(args Args) (queryir.Expr, error) {
	x := args.Values[0]
	if len(args.Values) == 1 {
		return &queryir.Call{Func: "ROUND", Args: []queryir.Expr{x}}, nil
	}
	lit, ok := args.Values[1].(*queryir.Literal)
	if !ok || lit.Kind != queryir.LitInteger {
		return nil, sqlerr.New(sqlerr.CodeUnsupportedConstruct, "ROUND", "ROUND precision must be an integer literal")
	}
	d, err := strconv.Atoi(lit.Value)
	if err != nil || d < 0 || d > 18 {
		return nil, sqlerr.New(sqlerr.CodeUnsupportedConstruct, "ROUND", "ROUND precision %s out of range", lit.Value)
	}
	if d == 0 {
		return &queryir.Call{Func: "ROUND", Args: []queryir.Expr{x}}, nil
	}
	factor := &queryir.Literal{Kind: queryir.LitDecimal, Value: "1" + strings.Repeat("0", d) + ".0"}
	scaled := &queryir.Call{Func: "ROUND", Args: []queryir.Expr{&queryir.Binary{Op: queryir.OpMul, L: x, R: factor}}}
	return &queryir.Binary{Op: queryir.OpDiv, L: scaled, R: factor}, nil
}

// StringFunctions returns LENGTH, LEN, SUBSTRING, SUBSTR, UCASE, UPPER,
// LCASE, LOWER and REPLACE.
func StringFunctions() *Table {
	t := NewTable("string")
	t.Register(builtin("STRLEN", 1, 1), "LENGTH", "LEN")
	t.Register(builtin("SUBSTR", 2, 3), "SUBSTRING", "SUBSTR")
	t.Register(builtin("UCASE", 1, 1), "UCASE", "UPPER")
	t.Register(builtin("LCASE", 1, 1), "LCASE", "LOWER")
	t.Register(Handler{Name: "REPLACE", MinArgs: 3, MaxArgs: 3, Build: buildReplace}, "REPLACE")
	return t
}

// buildReplace maps the literal string replacement of SQL onto the regex
// REPLACE of SPARQL by quoting literal patterns and replacements.
func buildReplace(args Args) (queryir.Expr, error) {
	out := []queryir.Expr{args.Values[0], args.Values[1], args.Values[2]}
	if lit, ok := out[1].(*queryir.Literal); ok && lit.Kind == queryir.LitString {
		out[1] = queryir.String(regexp.QuoteMeta(lit.Value))
	}
	if lit, ok := out[2].(*queryir.Literal); ok && lit.Kind == queryir.LitString {
		out[2] = queryir.String(strings.ReplaceAll(lit.Value, "$", "$$"))
	}
	return &queryir.Call{Func: "REPLACE", Args: out}, nil
}

// SystemInfo supplies the values of the system functions.
type SystemInfo struct {
	Catalog string
	Version string
}

// SystemFunctions returns CATALOG and VERSION, evaluated at compile time.
func SystemFunctions(info SystemInfo) *Table {
	constant := func(fn, value string) Handler {
		return Handler{Name: fn, Build: func(Args) (queryir.Expr, error) {
			return queryir.String(value), nil
		}}
	}
	t := NewTable("system")
	t.Register(constant("CATALOG", info.Catalog), "CATALOG")
	t.Register(constant("VERSION", info.Version), "VERSION")
	return t
}

// Registry dispatches function names across handler tables. A name must
// be registered in exactly one table.
type Registry struct {
	tables []*Table
}

// NewRegistry combines tables. It fails when two tables register the same
// name.
func NewRegistry(tables ...*Table) (*Registry, error) {
	seen := map[string]string{}
	for _, t := range tables {
		for n := range t.handlers {
			if prev, dup := seen[n]; dup {
				return nil, fmt.Errorf("function %s registered in both %s and %s tables", n, prev, t.Name)
			}
			seen[n] = t.Name
		}
	}
	return &Registry{tables: tables}, nil
}

// DefaultRegistry returns the numeric, string and system tables.
func DefaultRegistry(info SystemInfo) *Registry {
	r, err := NewRegistry(NumericFunctions(), StringFunctions(), SystemFunctions(info))
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup resolves fn to its handler and the name of the table holding it.
func (r *Registry) Lookup(fn string) (Handler, string, error) {
	for _, t := range r.tables {
		if h, ok := t.Lookup(fn); ok {
			return h, t.Name, nil
		}
	}
	return Handler{}, "", sqlerr.UnsupportedFunction(fn)
}

// CheckArity returns WRONG_ARGUMENT_COUNT when n is outside the handler's
// range.
func (h Handler) CheckArity(fn string, n int) error {
	if n < h.MinArgs || (h.MaxArgs != Unbounded && n > h.MaxArgs) {
		return sqlerr.WrongArgumentCount(fn, n, h.MinArgs, h.MaxArgs)
	}
	return nil
}
