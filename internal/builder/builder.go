// Package builder accumulates the state of one SQL query and produces
// its SPARQL query IR.
//
// A Builder owns a table registry, a column registry and a tree of group
// patterns. Registering a table emits its class triples into the group
// that holds it: the root for required tables, a fresh OPTIONAL for the
// right side of a LEFT JOIN. Registering a column emits its property
// triples into its table's group, or into a nested OPTIONAL when the
// column is nullable. Every variable remembers the group that introduced
// it, which drives filter placement.
//
// Build returns a deep snapshot and consumes the builder. Every later
// mutation fails with BUILDER_CONSUMED.
package builder

import (
	"github.com/roach88/rdfsql/internal/catalog"
	"github.com/roach88/rdfsql/internal/name"
	"github.com/roach88/rdfsql/internal/queryir"
	"github.com/roach88/rdfsql/internal/registry"
	"github.com/roach88/rdfsql/internal/sqlerr"
)

// TableItem is a table as referenced by the query.
type TableItem = registry.Item[catalog.Table]

// ColumnItem is a column as referenced by the query.
type ColumnItem = registry.Item[catalog.Column]

// Builder is the mutable state of one query compilation.
//
// Builder is not safe for concurrent use.
type Builder struct {
	tables  *registry.Collection[catalog.Table]
	columns *registry.Collection[catalog.Column]

	root       *groupNode
	homes      map[queryir.Var]*groupNode
	tableHomes map[string]*groupNode
	colItems   map[queryir.Var]*ColumnItem

	// joins is a union-find over column variables joined by shared
	// binding.
	joins map[queryir.Var]queryir.Var

	projection []queryir.Projection
	aliases    map[string]*queryir.VarRef
	computed   map[string]queryir.Var
	orderBy    []queryir.OrderKey
	distinct   bool
	limit      int64
	offset     int64

	templates map[string]*queryir.Template
	consumed  bool
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{
		tables:     registry.New[catalog.Table](),
		columns:    registry.New[catalog.Column](),
		root:       newGroupNode(),
		homes:      map[queryir.Var]*groupNode{},
		tableHomes: map[string]*groupNode{},
		colItems:   map[queryir.Var]*ColumnItem{},
		joins:      map[queryir.Var]queryir.Var{},
		aliases:    map[string]*queryir.VarRef{},
		computed:   map[string]queryir.Var{},
		limit:      queryir.NoLimit,
		offset:     queryir.NoLimit,
		templates:  map[string]*queryir.Template{},
	}
}

func (b *Builder) check() error {
	if b.consumed {
		return sqlerr.New(sqlerr.CodeBuilderConsumed, "", "builder already built")
	}
	return nil
}

// Tables returns the registered tables in registration order.
func (b *Builder) Tables() []*TableItem { return b.tables.Items() }

// Columns returns the registered columns in registration order, including
// the virtual columns of computed projections.
func (b *Builder) Columns() []*ColumnItem { return b.columns.Items() }

// FindTable returns the registered table whose query name agrees with
// ref. It returns (nil, nil) when nothing matches.
func (b *Builder) FindTable(ref name.ItemName) (*TableItem, error) {
	return b.tables.Get(ref)
}

// AddTable registers table under queryName and emits its class triples.
// An optional table gets its own OPTIONAL group. Registering the same
// query name twice returns the existing item.
func (b *Builder) AddTable(table catalog.Table, queryName name.ItemName, optional bool) (*TableItem, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	item := registry.NewItem(table, queryName, optional)
	if existing, ok := b.tables.FindByGUID(item.GUID()); ok {
		return existing, nil
	}

	tmpl, err := b.template(table.QuerySegmentTemplate(), table.Name())
	if err != nil {
		return nil, err
	}
	if !tmpl.UsesSubject() {
		return nil, sqlerr.New(sqlerr.CodeInvalidCatalog, table.Name().QualifiedName(),
			"table template %q does not use {subject}", tmpl)
	}

	home := b.root
	if optional {
		home = b.root.optional()
	}
	home.bgp.Triples = append(home.bgp.Triples, tmpl.Instantiate(item.Var, nil, queryir.IRI(table.URI()))...)

	b.tables.Add(item)
	b.homes[item.Var] = home
	b.tableHomes[item.GUID()] = home
	return item, nil
}

// ColumnName returns the query name of column when read through tbl.
func ColumnName(tbl *TableItem, column catalog.Column) (name.ItemName, error) {
	t := tbl.Name()
	return name.NewColumnName(t.Catalog(), t.Schema(), t.Table(), column.Name().Column())
}

// AddColumn registers column as read through tbl and emits its property
// triples. Registering a column twice returns the existing item, or the
// item it was merged into.
func (b *Builder) AddColumn(tbl *TableItem, column catalog.Column, optional bool) (*ColumnItem, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if catalog.IsVirtual(column) {
		return nil, sqlerr.New(sqlerr.CodeInvalidCatalog, column.Name().QualifiedName(),
			"virtual column %s has no triple pattern", column.Name())
	}
	home, ok := b.tableHomes[tbl.GUID()]
	if !ok {
		return nil, sqlerr.TableNotFound(tbl.Name().QualifiedName())
	}
	qn, err := ColumnName(tbl, column)
	if err != nil {
		return nil, err
	}
	item := registry.NewItem(column, qn, optional || tbl.Optional || column.Nullable())
	if existing, ok := b.columns.FindByGUID(item.GUID()); ok {
		return existing.Resolved(), nil
	}

	tmpl, err := b.template(column.QuerySegmentTemplate(), column.Name())
	if err != nil {
		return nil, err
	}
	if !tmpl.UsesSubject() || !tmpl.UsesObject() {
		return nil, sqlerr.New(sqlerr.CodeInvalidCatalog, column.Name().QualifiedName(),
			"column template %q must use {subject} and {object}", tmpl)
	}

	if column.Nullable() {
		home = home.optional()
	}
	home.bgp.Triples = append(home.bgp.Triples, tmpl.Instantiate(tbl.Var, item.Var, queryir.IRI(column.URI()))...)

	b.columns.Add(item)
	b.homes[item.Var] = home
	b.colItems[item.Var] = item
	return item, nil
}

// Column registers the column named col of tbl.
func (b *Builder) Column(tbl *TableItem, col string) (*ColumnItem, error) {
	for _, c := range tbl.Object.Columns() {
		if c.Name().Column() == col {
			return b.AddColumn(tbl, c, false)
		}
	}
	return nil, sqlerr.ColumnNotFound(tbl.Name().QualifiedName() + name.RelationalSeparator + col)
}

// MergeUsing collapses secondary into primary for a USING join: both are
// constrained equal, and secondary disappears from * expansion and from
// unqualified lookups. Anchors work as for AddEquals.
func (b *Builder) MergeUsing(primary, secondary *ColumnItem, anchors ...*TableItem) error {
	if err := b.check(); err != nil {
		return err
	}
	primary, secondary = primary.Resolved(), secondary.Resolved()
	if primary == secondary {
		return nil
	}
	if err := b.AddEquals(b.ref(primary), b.ref(secondary), anchors...); err != nil {
		return err
	}
	secondary.MergedInto = primary
	return nil
}

func (b *Builder) ref(it *ColumnItem) *queryir.VarRef {
	return &queryir.VarRef{Var: it.Var, Name: it.Name()}
}

// AddFilter places e for the variables it references.
//
// Without anchors (a WHERE condition) the filter goes to the innermost
// group that contains the groups of all its variables, so a condition on
// the columns of one OPTIONAL stays inside it and a condition that also
// reads an outer column stays outside. With anchors (an ON condition) the
// filter goes to the innermost group that introduces one of its variables
// and sees all of them, so it can act as a left-join condition. Anchors
// pin the filter at or below their tables' groups.
//
// A boundness test can never be evaluated inside the OPTIONAL that binds
// its variable. In WHERE it is placed as if the variable were required;
// in ON it moves to the parent of the variable's group.
func (b *Builder) AddFilter(e queryir.Expr, anchors ...*TableItem) error {
	if err := b.check(); err != nil {
		return err
	}
	if e == nil {
		return sqlerr.New(sqlerr.CodeSyntaxError, "", "missing filter expression")
	}
	if queryir.ContainsAggregate(e) {
		return sqlerr.New(sqlerr.CodeUnsupportedConstruct, "HAVING", "aggregate in filter")
	}
	target, err := b.place(queryir.ExprVars(e), queryir.BoundVars(e), anchors)
	if err != nil {
		return err
	}
	target.append(&queryir.Filter{Expr: e})
	return nil
}

// AddEquals records a join condition between two columns. When both
// columns are required and visible without crossing an OPTIONAL, the
// columns share one RDF node: Build rewrites both property triples onto
// a common variable and binds each column from it. Otherwise the
// condition becomes a value filter. Anchors work as for AddFilter; only
// an anchored condition may share a node with its parent group's columns.
func (b *Builder) AddEquals(left, right *queryir.VarRef, anchors ...*TableItem) error {
	if err := b.check(); err != nil {
		return err
	}
	l, lok := b.colItems[left.Var]
	r, rok := b.colItems[right.Var]
	if !lok || !rok {
		return b.AddFilter(&queryir.Binary{Op: queryir.OpEq, L: left, R: right}, anchors...)
	}
	l, r = l.Resolved(), r.Resolved()
	if l == r {
		return nil
	}

	target, err := b.place([]queryir.Var{l.Var, r.Var}, nil, anchors)
	if err != nil {
		return err
	}
	anchored := len(anchors) > 0
	introduced := b.homes[l.Var] == target || b.homes[r.Var] == target
	if !introduced || !b.shareable(target, l, anchored) || !b.shareable(target, r, anchored) {
		target.append(&queryir.Filter{Expr: &queryir.Binary{Op: queryir.OpEq, L: b.ref(l), R: b.ref(r)}})
		return nil
	}
	target.append(&queryir.Equate{Left: l.Var, Right: r.Var})
	b.union(l.Var, r.Var)
	return nil
}

// shareable reports whether col can take part in a shared-binding join
// placed at target. A WHERE join shares only columns of target itself: a
// node shared with an outer group would turn it into a left-join
// condition.
func (b *Builder) shareable(target *groupNode, col *ColumnItem, anchored bool) bool {
	if col.Object.Nullable() {
		return false
	}
	h := b.homes[col.Var]
	return h == target || (anchored && h == target.parent)
}

func (b *Builder) find(v queryir.Var) queryir.Var {
	for {
		p, ok := b.joins[v]
		if !ok || p == v {
			return v
		}
		v = p
	}
}

func (b *Builder) union(x, y queryir.Var) {
	rx, ry := b.find(x), b.find(y)
	b.joins[x], b.joins[y] = rx, ry
	if rx != ry {
		b.joins[ry] = rx
	}
}

// place returns the group a condition over vars belongs in. bound lists
// the variables the condition tests for boundness.
func (b *Builder) place(vars, bound []queryir.Var, anchors []*TableItem) (*groupNode, error) {
	tested := make(map[queryir.Var]bool, len(bound))
	for _, v := range bound {
		tested[v] = true
	}
	homes := make([]*groupNode, 0, len(vars)+len(anchors))
	for _, v := range vars {
		h, ok := b.homes[v]
		if !ok {
			return nil, sqlerr.New(sqlerr.CodeColumnNotFound, v.String(), "variable %s is not bound by any pattern", v)
		}
		if tested[v] {
			if len(anchors) == 0 {
				h = b.root
			} else if h.parent != nil {
				h = h.parent
			}
		}
		homes = append(homes, h)
	}
	for _, t := range anchors {
		h, ok := b.tableHomes[t.GUID()]
		if !ok {
			return nil, sqlerr.TableNotFound(t.Name().QualifiedName())
		}
		homes = append(homes, h)
	}
	if len(anchors) == 0 {
		return lca(b.root, homes), nil
	}
	return placement(b.root, homes), nil
}

func (b *Builder) template(text string, owner name.ItemName) (*queryir.Template, error) {
	if t, ok := b.templates[text]; ok {
		return t, nil
	}
	t, err := queryir.ParseTemplate(text)
	if err != nil {
		return nil, sqlerr.New(sqlerr.CodeInvalidCatalog, owner.QualifiedName(), "template of %s: %v", owner, err)
	}
	b.templates[text] = t
	return t, nil
}
