package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rdfsql/internal/queryir"
	"github.com/roach88/rdfsql/internal/sqlast"
	"github.com/roach88/rdfsql/internal/sqlerr"
)

// fakeScope resolves bare column names to variables named after them.
type fakeScope map[string]bool

func (s fakeScope) ResolveColumn(ref *sqlast.ColumnRef) (*queryir.VarRef, error) {
	if !s[ref.Column] {
		return nil, sqlerr.ColumnNotFound(sqlast.Format(ref))
	}
	return &queryir.VarRef{Var: queryir.Var(ref.Column)}, nil
}

func newCompiler() *Compiler {
	return New(DefaultRegistry(SystemInfo{Catalog: "demo", Version: "1.2.3"}), fakeScope{"a": true, "b": true, "s": true})
}

func v(name string) *queryir.VarRef { return &queryir.VarRef{Var: queryir.Var(name)} }

func TestCompile_Translations(t *testing.T) {
	tests := []struct {
		name string
		in   sqlast.Expr
		want queryir.Expr
	}{
		{
			"not equals string",
			&sqlast.Binary{Op: sqlast.OpNe, L: sqlast.Col("", "s"), R: sqlast.Str("baz")},
			&queryir.Binary{Op: queryir.OpNe, L: v("s"), R: queryir.String("baz")},
		},
		{
			"between",
			&sqlast.Between{X: sqlast.Col("", "a"), Low: sqlast.Int("1"), High: sqlast.Int("5")},
			&queryir.Binary{Op: queryir.OpAnd,
				L: &queryir.Binary{Op: queryir.OpGe, L: v("a"), R: queryir.Integer(1)},
				R: &queryir.Binary{Op: queryir.OpLe, L: v("a"), R: queryir.Integer(5)},
			},
		},
		{
			"is null",
			&sqlast.IsNull{X: sqlast.Col("", "a")},
			&queryir.Bound{X: v("a"), Not: true},
		},
		{
			"is not null",
			&sqlast.IsNull{X: sqlast.Col("", "a"), Not: true},
			&queryir.Bound{X: v("a")},
		},
		{
			"null is null folds",
			&sqlast.IsNull{X: &sqlast.Literal{Kind: sqlast.LitNull}},
			queryir.Boolean(true),
		},
		{
			"null is not null folds",
			&sqlast.IsNull{X: &sqlast.Literal{Kind: sqlast.LitNull}, Not: true},
			queryir.Boolean(false),
		},
		{
			"not in",
			&sqlast.InList{X: sqlast.Col("", "a"), List: []sqlast.Expr{sqlast.Int("1"), sqlast.Int("2")}, Not: true},
			&queryir.In{X: v("a"), List: []queryir.Expr{queryir.Integer(1), queryir.Integer(2)}, Not: true},
		},
		{
			"typed date literal",
			&sqlast.Literal{Kind: sqlast.LitDate, Value: "2020-01-02"},
			&queryir.Literal{Kind: queryir.LitDate, Value: "2020-01-02"},
		},
		{
			"timestamp literal uses T separator",
			&sqlast.Literal{Kind: sqlast.LitTimestamp, Value: "2020-01-02 03:04:05"},
			&queryir.Literal{Kind: queryir.LitTimestamp, Value: "2020-01-02T03:04:05"},
		},
		{
			"negative literal folds",
			&sqlast.Unary{Op: sqlast.UnaryMinus, X: sqlast.Int("7")},
			&queryir.Literal{Kind: queryir.LitInteger, Value: "-7"},
		},
		{
			"parens vanish",
			&sqlast.Paren{X: &sqlast.Unary{Op: sqlast.UnaryNot, X: sqlast.Col("", "b")}},
			&queryir.Unary{Op: queryir.OpNot, X: v("b")},
		},
		{
			"length is strlen",
			&sqlast.FuncCall{Name: "len", Args: []sqlast.Expr{sqlast.Col("", "s")}},
			&queryir.Call{Func: "STRLEN", Args: []queryir.Expr{v("s")}},
		},
		{
			"ceiling alias",
			&sqlast.FuncCall{Name: "Ceiling", Args: []sqlast.Expr{sqlast.Col("", "a")}},
			&queryir.Call{Func: "CEIL", Args: []queryir.Expr{v("a")}},
		},
		{
			"catalog is constant",
			&sqlast.FuncCall{Name: "CATALOG"},
			queryir.String("demo"),
		},
		{
			"version is constant",
			&sqlast.FuncCall{Name: "version"},
			queryir.String("1.2.3"),
		},
	}

	c := newCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Compile(tt.in, ClauseWhere)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_NotBetweenNegates(t *testing.T) {
	got, err := newCompiler().Compile(&sqlast.Between{X: sqlast.Col("", "a"), Low: sqlast.Int("1"), High: sqlast.Int("5"), Not: true}, ClauseWhere)
	require.NoError(t, err)

	u, ok := got.(*queryir.Unary)
	require.True(t, ok)
	assert.Equal(t, queryir.OpNot, u.Op)
}

func TestCompile_Aggregates(t *testing.T) {
	c := newCompiler()

	got, err := c.Compile(&sqlast.FuncCall{Name: "MAX", Args: []sqlast.Expr{sqlast.Col("", "a")}}, ClauseSelect)
	require.NoError(t, err)
	assert.Equal(t, &queryir.Aggregate{Op: queryir.AggMax, Arg: v("a")}, got)

	got, err = c.Compile(&sqlast.FuncCall{Name: "count", Star: true}, ClauseSelect)
	require.NoError(t, err)
	assert.Equal(t, &queryir.Aggregate{Op: queryir.AggCount}, got)

	got, err = c.Compile(&sqlast.FuncCall{Name: "COUNT", Distinct: true, Args: []sqlast.Expr{sqlast.Col("", "a")}}, ClauseOrderBy)
	require.NoError(t, err)
	assert.Equal(t, &queryir.Aggregate{Op: queryir.AggCount, Distinct: true, Arg: v("a")}, got)

	// nested expression inside an aggregate
	got, err = c.Compile(&sqlast.FuncCall{Name: "SUM", Args: []sqlast.Expr{
		&sqlast.Binary{Op: sqlast.OpMul, L: sqlast.Col("", "a"), R: sqlast.Int("2")},
	}}, ClauseSelect)
	require.NoError(t, err)
	assert.Equal(t, &queryir.Aggregate{Op: queryir.AggSum, Arg: &queryir.Binary{Op: queryir.OpMul, L: v("a"), R: queryir.Integer(2)}}, got)
}

func TestCompile_RoundWithPrecision(t *testing.T) {
	got, err := newCompiler().Compile(&sqlast.FuncCall{Name: "ROUND", Args: []sqlast.Expr{sqlast.Col("", "a"), sqlast.Int("2")}}, ClauseSelect)
	require.NoError(t, err)

	factor := &queryir.Literal{Kind: queryir.LitDecimal, Value: "100.0"}
	want := &queryir.Binary{
		Op: queryir.OpDiv,
		L:  &queryir.Call{Func: "ROUND", Args: []queryir.Expr{&queryir.Binary{Op: queryir.OpMul, L: v("a"), R: factor}}},
		R:  factor,
	}
	assert.Equal(t, want, got)
}

func TestCompile_ReplaceQuotesLiteralPattern(t *testing.T) {
	got, err := newCompiler().Compile(&sqlast.FuncCall{Name: "REPLACE", Args: []sqlast.Expr{
		sqlast.Col("", "s"), sqlast.Str("a.b"), sqlast.Str("$1"),
	}}, ClauseSelect)
	require.NoError(t, err)

	call := got.(*queryir.Call)
	assert.Equal(t, "REPLACE", call.Func)
	assert.Equal(t, queryir.String(`a\.b`), call.Args[1])
	assert.Equal(t, queryir.String("$$1"), call.Args[2])
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		in       sqlast.Expr
		clause   Clause
		code     sqlerr.Code
		keyword  string
		fragment string
	}{
		{"unknown column", sqlast.Col("", "zz"), ClauseWhere, sqlerr.CodeColumnNotFound, "zz", "zz"},
		{"like", &sqlast.Like{X: sqlast.Col("", "s"), Pattern: sqlast.Str("x%")}, ClauseWhere, sqlerr.CodeUnsupportedConstruct, "LIKE", "s LIKE 'x%'"},
		{"not regexp", &sqlast.Like{X: sqlast.Col("", "s"), Pattern: sqlast.Str("x"), Regexp: true, Not: true}, ClauseWhere, sqlerr.CodeUnsupportedConstruct, "NOT REGEXP", ""},
		{"case", &sqlast.Case{}, ClauseSelect, sqlerr.CodeUnsupportedConstruct, "CASE", "CASE ... END"},
		{"exists", &sqlast.Exists{Select: &sqlast.Select{}}, ClauseWhere, sqlerr.CodeUnsupportedConstruct, "EXISTS", ""},
		{"all", &sqlast.Quantified{X: sqlast.Col("", "a"), Op: sqlast.OpGt, All: true}, ClauseWhere, sqlerr.CodeUnsupportedConstruct, "ALL", ""},
		{"bitwise and", &sqlast.Binary{Op: sqlast.OpBitAnd, L: sqlast.Col("", "a"), R: sqlast.Int("1")}, ClauseWhere, sqlerr.CodeUnsupportedConstruct, "&", "a & 1"},
		{"bit not", &sqlast.Unary{Op: sqlast.UnaryBitNot, X: sqlast.Col("", "a")}, ClauseWhere, sqlerr.CodeUnsupportedConstruct, "~", ""},
		{"concat", &sqlast.Binary{Op: sqlast.OpConcat, L: sqlast.Col("", "s"), R: sqlast.Str("x")}, ClauseSelect, sqlerr.CodeUnsupportedConstruct, "||", ""},
		{"unknown function", &sqlast.FuncCall{Name: "COALESCE", Args: []sqlast.Expr{sqlast.Col("", "a")}}, ClauseSelect, sqlerr.CodeUnsupportedFunction, "COALESCE", ""},
		{"too many args", &sqlast.FuncCall{Name: "ABS", Args: []sqlast.Expr{sqlast.Col("", "a"), sqlast.Col("", "b")}}, ClauseSelect, sqlerr.CodeWrongArgumentCount, "ABS", ""},
		{"too few args", &sqlast.FuncCall{Name: "SUBSTRING", Args: []sqlast.Expr{sqlast.Col("", "s")}}, ClauseSelect, sqlerr.CodeWrongArgumentCount, "SUBSTRING", ""},
		{"rand takes no seed", &sqlast.FuncCall{Name: "RAND", Args: []sqlast.Expr{sqlast.Int("1")}}, ClauseSelect, sqlerr.CodeWrongArgumentCount, "RAND", ""},
		{"aggregate in where", &sqlast.FuncCall{Name: "MAX", Args: []sqlast.Expr{sqlast.Col("", "a")}}, ClauseWhere, sqlerr.CodeUnsupportedConstruct, "MAX", ""},
		{"nested aggregate", &sqlast.FuncCall{Name: "MAX", Args: []sqlast.Expr{&sqlast.FuncCall{Name: "MIN", Args: []sqlast.Expr{sqlast.Col("", "a")}}}}, ClauseSelect, sqlerr.CodeUnsupportedConstruct, "MIN", ""},
		{"sum star", &sqlast.FuncCall{Name: "SUM", Star: true}, ClauseSelect, sqlerr.CodeUnsupportedConstruct, "SUM(*)", ""},
		{"equals null", &sqlast.Binary{Op: sqlast.OpEq, L: sqlast.Col("", "a"), R: &sqlast.Literal{Kind: sqlast.LitNull}}, ClauseWhere, sqlerr.CodeUnsupportedConstruct, "= NULL", "a = NULL"},
		{"null not equals", &sqlast.Binary{Op: sqlast.OpNe, L: &sqlast.Literal{Kind: sqlast.LitNull}, R: sqlast.Col("", "a")}, ClauseWhere, sqlerr.CodeUnsupportedConstruct, "!= NULL", "NULL != a"},
		{"null arithmetic", &sqlast.Binary{Op: sqlast.OpAdd, L: sqlast.Col("", "a"), R: &sqlast.Literal{Kind: sqlast.LitNull}}, ClauseSelect, sqlerr.CodeUnsupportedConstruct, "NULL", "a + NULL"},
		{"is null on a function", &sqlast.IsNull{X: &sqlast.FuncCall{Name: "UPPER", Args: []sqlast.Expr{sqlast.Col("", "s")}}}, ClauseWhere, sqlerr.CodeUnsupportedConstruct, "IS NULL", "UPPER(s) IS NULL"},
		{"distinct scalar", &sqlast.FuncCall{Name: "ABS", Distinct: true, Args: []sqlast.Expr{sqlast.Col("", "a")}}, ClauseSelect, sqlerr.CodeUnsupportedConstruct, "ABS", ""},
	}

	c := newCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Compile(tt.in, tt.clause)
			require.Error(t, err)

			var e *sqlerr.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.code, e.Code)
			assert.Equal(t, tt.keyword, e.Keyword)
			if tt.fragment != "" {
				assert.Equal(t, tt.fragment, e.Fragment)
			}
		})
	}
}

func TestCompile_FragmentIsInnermost(t *testing.T) {
	in := &sqlast.Binary{
		Op: sqlast.OpAnd,
		L:  &sqlast.Binary{Op: sqlast.OpEq, L: sqlast.Col("", "a"), R: sqlast.Int("1")},
		R:  &sqlast.Like{X: sqlast.Col("", "s"), Pattern: sqlast.Str("x%")},
	}

	_, err := newCompiler().Compile(in, ClauseWhere)

	var e *sqlerr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "s LIKE 'x%'", e.Fragment)
}

func TestRegistry_RejectsDuplicateNames(t *testing.T) {
	_, err := NewRegistry(NumericFunctions(), NewTable("extra").Register(builtin("ABS", 1, 1), "abs"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ABS")
}

func TestRegistry_LookupReportsTable(t *testing.T) {
	r := DefaultRegistry(SystemInfo{})

	tests := map[string]string{"max": "numeric", "UPPER": "string", "Catalog": "system", "CEILING": "numeric", "substr": "string"}
	for fn, table := range tests {
		h, got, err := r.Lookup(fn)
		require.NoError(t, err, fn)
		assert.Equal(t, table, got, fn)
		assert.NotNil(t, h.Build)
	}
}
