package compiler

import (
	"fmt"
	"strconv"

	"github.com/roach88/rdfsql/internal/builder"
	"github.com/roach88/rdfsql/internal/catalog"
	"github.com/roach88/rdfsql/internal/expr"
	"github.com/roach88/rdfsql/internal/name"
	"github.com/roach88/rdfsql/internal/queryir"
	"github.com/roach88/rdfsql/internal/sqlast"
	"github.com/roach88/rdfsql/internal/sqlerr"
)

// statement is the state of one Compile call.
type statement struct {
	*Compiler
	b     *builder.Builder
	exprs *expr.Compiler

	// computed holds the variables of computed projections.
	computed map[queryir.Var]bool

	// aggregate and bare record whether the SELECT list holds aggregates
	// and column values outside aggregates.
	aggregate bool
	bare      bool
}

func (s *statement) from(sel *sqlast.Select) error {
	for _, te := range sel.From {
		if _, err := s.tableExpr(te, false); err != nil {
			return sqlerr.WithFragment(err, sqlast.Format(te))
		}
	}
	return nil
}

// tableExpr registers the tables of te and returns them in source order.
func (s *statement) tableExpr(te sqlast.TableExpr, optional bool) ([]*builder.TableItem, error) {
	switch x := te.(type) {
	case *sqlast.TableName:
		item, err := s.addTable(x, optional)
		if err != nil {
			return nil, err
		}
		return []*builder.TableItem{item}, nil

	case *sqlast.Join:
		return s.join(x, optional)

	case *sqlast.DerivedTable:
		return nil, sqlerr.Unsupported("subquery")

	default:
		panic(fmt.Sprintf("compiler: unknown table expression type %T", te))
	}
}

func (s *statement) join(j *sqlast.Join, optional bool) ([]*builder.TableItem, error) {
	if j.Natural {
		return nil, sqlerr.UnsupportedJoin("NATURAL JOIN")
	}
	switch j.Kind {
	case sqlast.JoinRight, sqlast.JoinFull:
		return nil, sqlerr.UnsupportedJoin(j.Kind.String())
	}

	left, err := s.tableExpr(j.Left, optional)
	if err != nil {
		return nil, err
	}

	outer := j.Kind == sqlast.JoinLeft
	if _, ok := j.Right.(*sqlast.Join); ok && outer {
		return nil, sqlerr.New(sqlerr.CodeUnsupportedJoinKind, j.Kind.String(),
			"the right side of %s must be a single table", j.Kind)
	}
	right, err := s.tableExpr(j.Right, optional || outer)
	if err != nil {
		return nil, err
	}

	var anchors []*builder.TableItem
	if outer {
		anchors = right
	}
	if len(j.Using) > 0 {
		if err := s.using(j.Using, left, right[0], anchors); err != nil {
			return nil, err
		}
	}
	if j.On != nil {
		if err := s.condition(j.On, expr.ClauseOn, anchors); err != nil {
			return nil, err
		}
	}
	return append(left, right...), nil
}

// using merges each named column of right into the single left table
// holding it.
func (s *statement) using(cols []string, left []*builder.TableItem, right *builder.TableItem, anchors []*builder.TableItem) error {
	for _, col := range cols {
		var primary []*builder.ColumnItem
		for _, t := range left {
			if !hasColumn(t.Object, col) {
				continue
			}
			item, err := s.b.Column(t, col)
			if err != nil {
				return err
			}
			primary = append(primary, item)
		}
		switch len(primary) {
		case 0:
			return sqlerr.ColumnNotFound(col)
		case 1:
		default:
			names := make([]string, len(primary))
			for i, p := range primary {
				names[i] = p.Name().QualifiedName()
			}
			return sqlerr.AmbiguousColumn(col, names)
		}
		secondary, err := s.b.Column(right, col)
		if err != nil {
			return err
		}
		if err := s.b.MergeUsing(primary[0], secondary, anchors...); err != nil {
			return err
		}
	}
	return nil
}

func hasColumn(t catalog.Table, col string) bool {
	for _, c := range t.Columns() {
		if c.Name().Column() == col {
			return true
		}
	}
	return false
}

func (s *statement) addTable(t *sqlast.TableName, optional bool) (*builder.TableItem, error) {
	tbl, err := s.findTable(t)
	if err != nil {
		return nil, err
	}
	qn := tbl.Name()
	if t.Alias != "" {
		if qn, err = name.NewTableName(qn.Catalog(), qn.Schema(), t.Alias); err != nil {
			return nil, err
		}
	}
	for _, existing := range s.b.Tables() {
		if existing.Name().Equal(qn) {
			return nil, sqlerr.New(sqlerr.CodeAmbiguousReference, qn.Table(),
				"table %s appears more than once; use an alias", qn.Table())
		}
	}
	return s.b.AddTable(tbl, qn, optional)
}

func (s *statement) findTable(t *sqlast.TableName) (catalog.Table, error) {
	display := sqlast.Format(t)
	if t.Alias != "" {
		display = sqlast.Format(&sqlast.TableName{Schema: t.Schema, Name: t.Name})
	}

	var found []catalog.Table
	if t.Schema == "" && s.defaultSchema != "" {
		ref, err := name.TableRef(s.defaultSchema, t.Name)
		if err != nil {
			return nil, err
		}
		found = s.catalog.FindTables(ref)
	}
	if len(found) == 0 {
		ref, err := name.TableRef(t.Schema, t.Name)
		if err != nil {
			return nil, err
		}
		found = s.catalog.FindTables(ref)
	}

	switch len(found) {
	case 0:
		return nil, sqlerr.TableNotFound(display)
	case 1:
		return found[0], nil
	default:
		names := make([]string, len(found))
		for i, f := range found {
			names[i] = f.Name().QualifiedName()
		}
		return nil, sqlerr.AmbiguousReference(display, names)
	}
}

func (s *statement) selectList(sel *sqlast.Select) error {
	for _, f := range sel.Fields {
		if err := s.selectItem(f); err != nil {
			return sqlerr.WithFragment(err, sqlast.FormatSelectItem(f))
		}
	}
	if s.aggregate && s.bare {
		return sqlerr.New(sqlerr.CodeUnsupportedConstruct, "GROUP BY",
			"aggregates cannot be mixed with plain columns without GROUP BY")
	}
	return nil
}

func (s *statement) selectItem(f sqlast.SelectItem) error {
	if f.Star {
		var ref name.ItemName
		if f.Table != "" {
			var err error
			if ref, err = name.TableRef(f.Schema, f.Table); err != nil {
				return err
			}
		}
		cols, err := s.b.Expand(ref)
		if err != nil {
			return err
		}
		for _, c := range cols {
			if _, err := s.b.AddProjection(&queryir.VarRef{Var: c.Var, Name: c.Name()}, ""); err != nil {
				return err
			}
		}
		s.bare = s.bare || len(cols) > 0
		return nil
	}

	e, err := s.exprs.Compile(f.Expr, expr.ClauseSelect)
	if err != nil {
		return err
	}
	s.track(e)
	v, err := s.b.AddProjection(e, f.Alias)
	if err != nil {
		return err
	}
	if _, isRef := e.(*queryir.VarRef); !isRef {
		s.computed[v] = true
	}
	return nil
}

func (s *statement) track(e queryir.Expr) {
	if queryir.ContainsAggregate(e) {
		s.aggregate = true
	}
	if len(s.bareVars(e)) > 0 {
		s.bare = true
	}
}

// bareVars returns the column variables e reads outside any aggregate.
func (s *statement) bareVars(e queryir.Expr) []queryir.Var {
	var out []queryir.Var
	queryir.WalkExpr(e, func(n queryir.Expr) bool {
		switch x := n.(type) {
		case *queryir.Aggregate:
			return false
		case *queryir.VarRef:
			if !s.computed[x.Var] {
				out = append(out, x.Var)
			}
		}
		return true
	})
	return out
}

func (s *statement) where(sel *sqlast.Select) error {
	if sel.Where == nil {
		return nil
	}
	return s.condition(sel.Where, expr.ClauseWhere, nil)
}

// condition adds each top-level conjunct of e. A conjunct equating two
// columns becomes a join, anything else a filter.
func (s *statement) condition(e sqlast.Expr, clause expr.Clause, anchors []*builder.TableItem) error {
	for _, c := range conjuncts(e) {
		out, err := s.exprs.Compile(c, clause)
		if err != nil {
			return sqlerr.WithFragment(err, sqlast.Format(c))
		}
		if l, r, ok := columnEquality(out); ok {
			err = s.b.AddEquals(l, r, anchors...)
		} else {
			err = s.b.AddFilter(out, anchors...)
		}
		if err != nil {
			return sqlerr.WithFragment(err, sqlast.Format(c))
		}
	}
	return nil
}

func conjuncts(e sqlast.Expr) []sqlast.Expr {
	e = sqlast.Unparen(e)
	if b, ok := e.(*sqlast.Binary); ok && b.Op == sqlast.OpAnd {
		return append(conjuncts(b.L), conjuncts(b.R)...)
	}
	return []sqlast.Expr{e}
}

func columnEquality(e queryir.Expr) (l, r *queryir.VarRef, ok bool) {
	b, isBinary := e.(*queryir.Binary)
	if !isBinary || b.Op != queryir.OpEq {
		return nil, nil, false
	}
	l, lok := b.L.(*queryir.VarRef)
	r, rok := b.R.(*queryir.VarRef)
	return l, r, lok && rok
}

func (s *statement) orderBy(sel *sqlast.Select) error {
	for _, item := range sel.OrderBy {
		e, err := s.orderKey(item.Expr)
		if err != nil {
			return sqlerr.WithFragment(err, sqlast.Format(item.Expr))
		}
		if s.aggregate && len(s.bareVars(e)) > 0 {
			return sqlerr.WithFragment(sqlerr.New(sqlerr.CodeUnsupportedConstruct, "GROUP BY",
				"ORDER BY reads a plain column in an aggregate query"), sqlast.Format(item.Expr))
		}
		if err := s.b.AddOrderBy(e, !item.Desc); err != nil {
			return err
		}
	}
	return nil
}

// orderKey resolves select list positions and aliases before compiling
// the key as an expression.
func (s *statement) orderKey(e sqlast.Expr) (queryir.Expr, error) {
	switch x := sqlast.Unparen(e).(type) {
	case *sqlast.Position:
		proj := s.b.Projection()
		if x.N < 1 || x.N > len(proj) {
			return nil, sqlerr.New(sqlerr.CodeColumnNotFound, strconv.Itoa(x.N),
				"ORDER BY position %d is not in the select list", x.N)
		}
		p := proj[x.N-1]
		return &queryir.VarRef{Var: p.Var, Name: p.Source}, nil
	case *sqlast.ColumnRef:
		if x.Table == "" && x.Schema == "" {
			if ref, ok := s.b.LookupAlias(x.Column); ok {
				return ref, nil
			}
		}
	}
	return s.exprs.Compile(e, expr.ClauseOrderBy)
}

func (s *statement) limit(sel *sqlast.Select) error {
	count, offset := sel.Top, sqlast.Expr(nil)
	keyword := "TOP"
	if sel.Limit != nil {
		count, offset = sel.Limit.Count, sel.Limit.Offset
		keyword = "LIMIT"
	}
	if count != nil {
		n, err := rowCount(count, keyword)
		if err != nil {
			return err
		}
		if err := s.b.SetLimit(n); err != nil {
			return err
		}
	}
	if offset != nil {
		n, err := rowCount(offset, "OFFSET")
		if err != nil {
			return err
		}
		if err := s.b.SetOffset(n); err != nil {
			return err
		}
	}
	return nil
}

func rowCount(e sqlast.Expr, keyword string) (int64, error) {
	lit, ok := sqlast.Unparen(e).(*sqlast.Literal)
	if !ok || lit.Kind != sqlast.LitInteger {
		return 0, sqlerr.WithFragment(sqlerr.New(sqlerr.CodeUnsupportedConstruct, keyword,
			"%s must be an integer literal", keyword), sqlast.Format(e))
	}
	n, err := strconv.ParseInt(lit.Value, 10, 64)
	if err != nil || n < 0 {
		return 0, sqlerr.WithFragment(sqlerr.New(sqlerr.CodeSyntaxError, keyword,
			"invalid %s %s", keyword, lit.Value), sqlast.Format(e))
	}
	return n, nil
}
