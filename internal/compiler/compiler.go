// Package compiler translates one SQL SELECT statement into a SPARQL
// query IR.
//
// Compilation runs in a fixed order, each clause against the same
// builder:
//
//  1. Statement shape: GROUP BY, HAVING, set operations and non-queries
//     are rejected before anything is registered
//  2. FROM and joins, in source order
//  3. SELECT list
//  4. WHERE
//  5. DISTINCT, ORDER BY, LIMIT and OFFSET
//
// The first error aborts the compilation. No partial query is returned.
package compiler

import (
	"fmt"
	"log/slog"

	"github.com/roach88/rdfsql/internal/builder"
	"github.com/roach88/rdfsql/internal/catalog"
	"github.com/roach88/rdfsql/internal/expr"
	"github.com/roach88/rdfsql/internal/queryir"
	"github.com/roach88/rdfsql/internal/sqlast"
	"github.com/roach88/rdfsql/internal/sqlerr"
)

// Compiler compiles statements against one catalog. It holds no
// per-statement state and is safe for concurrent use when its catalog is.
type Compiler struct {
	catalog       catalog.Provider
	funcs         *expr.Registry
	defaultSchema string
	logger        *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithFunctions replaces the default function registry.
func WithFunctions(r *expr.Registry) Option {
	return func(c *Compiler) {
		c.funcs = r
	}
}

// WithDefaultSchema sets the schema tried first for unqualified table
// names.
func WithDefaultSchema(schema string) Option {
	return func(c *Compiler) {
		c.defaultSchema = schema
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = l
	}
}

// New returns a compiler for cat.
func New(cat catalog.Provider, opts ...Option) *Compiler {
	c := &Compiler{catalog: cat, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	if c.funcs == nil {
		c.funcs = expr.DefaultRegistry(expr.SystemInfo{Catalog: cat.Name(), Version: Version})
	}
	return c
}

// Compile translates stmt. Every error is a *sqlerr.Error.
func (c *Compiler) Compile(stmt sqlast.Statement) (*queryir.Query, error) {
	sel, err := selectOf(stmt)
	if err != nil {
		return nil, err
	}
	if err := checkShape(sel); err != nil {
		return nil, sqlerr.WithFragment(err, sqlast.Format(sel))
	}

	b := builder.New()
	s := &statement{
		Compiler: c,
		b:        b,
		exprs:    expr.New(c.funcs, b),
		computed: map[queryir.Var]bool{},
	}
	steps := []struct {
		name string
		run  func(*sqlast.Select) error
	}{
		{"from", s.from},
		{"select", s.selectList},
		{"where", s.where},
		{"distinct", func(sel *sqlast.Select) error { return b.SetDistinct(sel.Distinct) }},
		{"order by", s.orderBy},
		{"limit", s.limit},
	}
	for _, step := range steps {
		if err := step.run(sel); err != nil {
			c.logger.Debug("compile failed", "step", step.name, "error", err)
			return nil, err
		}
	}

	q, err := b.Build()
	if err != nil {
		return nil, err
	}
	stats := q.Where.Stats()
	c.logger.Debug("compiled statement",
		"tables", len(b.Tables()),
		"triples", stats.Triples,
		"optionals", stats.Optionals,
		"filters", stats.Filters,
		"columns", len(q.Projection),
	)
	return q, nil
}

func selectOf(stmt sqlast.Statement) (*sqlast.Select, error) {
	switch x := stmt.(type) {
	case *sqlast.Select:
		return x, nil
	case *sqlast.SetOp:
		return nil, sqlerr.WithFragment(sqlerr.Unsupported(x.Op), sqlast.Format(x))
	case *sqlast.Other:
		return nil, sqlerr.New(sqlerr.CodeUnsupportedConstruct, x.Keyword, "only SELECT statements can be compiled, got %s", x.Keyword)
	case nil:
		return nil, sqlerr.New(sqlerr.CodeSyntaxError, "", "empty statement")
	default:
		panic(fmt.Sprintf("compiler: unknown statement type %T", stmt))
	}
}

func checkShape(sel *sqlast.Select) error {
	switch {
	case len(sel.GroupBy) > 0:
		return sqlerr.Unsupported("GROUP BY")
	case sel.Having != nil:
		return sqlerr.Unsupported("HAVING")
	case sel.Top != nil && sel.Limit != nil:
		return sqlerr.New(sqlerr.CodeUnsupportedConstruct, "TOP", "TOP cannot be combined with LIMIT")
	case sel.Limit != nil && sel.Limit.Count == nil:
		return sqlerr.New(sqlerr.CodeUnsupportedConstruct, "LIMIT", "LIMIT without a row count")
	}
	return nil
}
