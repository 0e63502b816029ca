package builder

import (
	"github.com/roach88/rdfsql/internal/catalog"
	"github.com/roach88/rdfsql/internal/expr"
	"github.com/roach88/rdfsql/internal/name"
	"github.com/roach88/rdfsql/internal/queryir"
	"github.com/roach88/rdfsql/internal/registry"
	"github.com/roach88/rdfsql/internal/sqlast"
	"github.com/roach88/rdfsql/internal/sqlerr"
)

type candidate struct {
	table  *TableItem
	column catalog.Column
	// merged is the surviving item when the column was collapsed by USING.
	merged *ColumnItem
}

// ResolveColumn finds the one column of the registered tables that ref
// names and registers it on first use. Qualifiers match the table's query
// name, so an aliased table is only reachable through its alias.
func (b *Builder) ResolveColumn(ref *sqlast.ColumnRef) (*queryir.VarRef, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	search, err := name.ColumnRef(ref.Schema, ref.Table, ref.Column)
	if err != nil {
		return nil, err
	}
	display := sqlast.Format(ref)

	var found []candidate
	seen := map[string]bool{}
	for t := range b.tables.Match(search.TableName()) {
		for _, c := range t.Object.Columns() {
			if c.Name().Column() != ref.Column {
				continue
			}
			cand := candidate{table: t, column: c}
			key := b.candidateKey(&cand)
			if seen[key] {
				continue
			}
			seen[key] = true
			found = append(found, cand)
		}
	}

	switch len(found) {
	case 0:
		return nil, sqlerr.ColumnNotFound(display)
	case 1:
	default:
		names := make([]string, len(found))
		for i, c := range found {
			qn, _ := ColumnName(c.table, c.column)
			names[i] = qn.QualifiedName()
		}
		return nil, sqlerr.AmbiguousColumn(display, names)
	}

	c := found[0]
	if c.merged != nil {
		return b.ref(c.merged), nil
	}
	item, err := b.AddColumn(c.table, c.column, false)
	if err != nil {
		return nil, err
	}
	return b.ref(item), nil
}

// candidateKey identifies the item a candidate resolves to, so USING
// pairs count once.
func (b *Builder) candidateKey(c *candidate) string {
	qn, err := ColumnName(c.table, c.column)
	if err != nil {
		return ""
	}
	guid := qn.GUID()
	if it, ok := b.columns.FindByGUID(guid); ok && it.MergedInto != nil {
		c.merged = it.Resolved()
		return c.merged.GUID()
	}
	return guid
}

// LookupAlias returns the variable projected under alias.
func (b *Builder) LookupAlias(alias string) (*queryir.VarRef, bool) {
	r, ok := b.aliases[alias]
	return r, ok
}

// Expand returns the columns a "*" or "t.*" selects: every column of
// every matching table in registration order, skipping columns merged by
// USING.
func (b *Builder) Expand(tables name.ItemName) ([]*ColumnItem, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	var matched []*TableItem
	for t := range b.tables.Match(tables) {
		matched = append(matched, t)
	}
	if len(matched) == 0 {
		return nil, sqlerr.TableNotFound(tables.QualifiedName())
	}

	var out []*ColumnItem
	for _, t := range matched {
		for _, c := range t.Object.Columns() {
			qn, err := ColumnName(t, c)
			if err != nil {
				return nil, err
			}
			if it, ok := b.columns.FindByGUID(qn.GUID()); ok && it.MergedInto != nil {
				continue
			}
			item, err := b.AddColumn(t, c, false)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
	}
	return out, nil
}

var _ expr.Scope = (*Builder)(nil)

// virtualItem registers a virtual column for a computed projection.
// It returns false when label is already taken.
func (b *Builder) virtualItem(label string, typ catalog.SQLType) (*ColumnItem, bool, error) {
	qn, err := name.NewColumnName("", "", "", label)
	if err != nil {
		return nil, false, err
	}
	if it, ok := b.columns.FindByGUID(qn.GUID()); ok {
		return it, false, nil
	}
	it := registry.NewItem[catalog.Column](catalog.NewVirtualColumn(qn, typ), qn, false)
	b.columns.Add(it)
	return it, true, nil
}
