package catalog

import (
	"fmt"
	"slices"

	"github.com/roach88/rdfsql/internal/name"
	"github.com/roach88/rdfsql/internal/queryir"
	"github.com/roach88/rdfsql/internal/sqlerr"
)

// Table is a relational view of an RDF class.
type Table interface {
	Name() name.ItemName
	// QuerySegmentTemplate is the triple template that binds a row
	// variable to {subject}; {uri} is replaced by URI.
	QuerySegmentTemplate() string
	URI() string
	Columns() []Column
}

// Column is a relational view of an RDF property.
type Column interface {
	Name() name.ItemName
	// QuerySegmentTemplate is the triple template that links the row
	// {subject} to the column value {object}; {uri} is replaced by URI.
	QuerySegmentTemplate() string
	URI() string
	Nullable() bool
	Type() SQLType
}

// Provider answers table lookups. Implementations must not change while a
// compilation is using them.
type Provider interface {
	// Name is the catalog name.
	Name() string
	// FindTables returns every table whose name agrees with ref. Segments
	// absent in ref match anything. Results are in catalog order.
	FindTables(ref name.ItemName) []Table
}

// Catalog is an in-memory Provider.
type Catalog struct {
	name   string
	tables []*MemTable
}

// New returns an empty catalog.
func New(catalogName string) (*Catalog, error) {
	if _, err := name.NewCatalogName(catalogName); err != nil {
		return nil, err
	}
	return &Catalog{name: catalogName}, nil
}

// Name implements Provider.
func (c *Catalog) Name() string { return c.name }

// Tables returns all tables in insertion order.
func (c *Catalog) Tables() []Table {
	out := make([]Table, len(c.tables))
	for i, t := range c.tables {
		out[i] = t
	}
	return out
}

// Schemas returns the distinct schema names in first-seen order.
func (c *Catalog) Schemas() []string {
	var out []string
	for _, t := range c.tables {
		if s := t.name.Schema(); !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// FindTables implements Provider.
func (c *Catalog) FindTables(ref name.ItemName) []Table {
	var out []Table
	for _, t := range c.tables {
		if t.name.Matches(ref) {
			out = append(out, t)
		}
	}
	return out
}

// AddTable adds a table. An empty template selects the default table
// template.
func (c *Catalog) AddTable(schema, table, uri, template string) (*MemTable, error) {
	n, err := name.NewTableName(c.name, schema, table)
	if err != nil {
		return nil, err
	}
	for _, existing := range c.tables {
		if existing.name.Equal(n) {
			return nil, sqlerr.New(sqlerr.CodeInvalidCatalog, n.QualifiedName(), "duplicate table %s", n)
		}
	}
	if template == "" {
		template = queryir.DefaultTableTemplate
	}
	t := &MemTable{name: n, uri: uri, template: template}
	c.tables = append(c.tables, t)
	return t, nil
}

// MemTable is a Table held by a Catalog.
type MemTable struct {
	name     name.ItemName
	uri      string
	template string
	columns  []*MemColumn
}

func (t *MemTable) Name() name.ItemName          { return t.name }
func (t *MemTable) QuerySegmentTemplate() string { return t.template }
func (t *MemTable) URI() string                  { return t.uri }

// Columns implements Table.
func (t *MemTable) Columns() []Column {
	out := make([]Column, len(t.columns))
	for i, c := range t.columns {
		out[i] = c
	}
	return out
}

// AddColumn adds a column. An empty template selects the default column
// template.
func (t *MemTable) AddColumn(column, uri, template string, typ SQLType, nullable bool) (*MemColumn, error) {
	n, err := name.NewColumnName(t.name.Catalog(), t.name.Schema(), t.name.Table(), column)
	if err != nil {
		return nil, err
	}
	for _, existing := range t.columns {
		if existing.name.Equal(n) {
			return nil, sqlerr.New(sqlerr.CodeInvalidCatalog, n.QualifiedName(), "duplicate column %s", n)
		}
	}
	if template == "" {
		template = queryir.DefaultColumnTemplate
	}
	c := &MemColumn{name: n, uri: uri, template: template, typ: typ, nullable: nullable}
	t.columns = append(t.columns, c)
	return c, nil
}

// MemColumn is a Column held by a MemTable.
type MemColumn struct {
	name     name.ItemName
	uri      string
	template string
	typ      SQLType
	nullable bool
}

func (c *MemColumn) Name() name.ItemName          { return c.name }
func (c *MemColumn) QuerySegmentTemplate() string { return c.template }
func (c *MemColumn) URI() string                  { return c.uri }
func (c *MemColumn) Nullable() bool               { return c.nullable }
func (c *MemColumn) Type() SQLType                { return c.typ }

// VirtualColumn is a column with no triple pattern, such as an aggregate
// result. It only exists inside a single compilation.
type VirtualColumn struct {
	name name.ItemName
	typ  SQLType
}

// NewVirtualColumn returns a virtual column named n.
func NewVirtualColumn(n name.ItemName, typ SQLType) *VirtualColumn {
	return &VirtualColumn{name: n, typ: typ}
}

func (c *VirtualColumn) Name() name.ItemName          { return c.name }
func (c *VirtualColumn) QuerySegmentTemplate() string { return "" }
func (c *VirtualColumn) URI() string                  { return "" }
func (c *VirtualColumn) Nullable() bool               { return true }
func (c *VirtualColumn) Type() SQLType                { return c.typ }

// IsVirtual reports whether c has no triple pattern.
func IsVirtual(c Column) bool {
	_, ok := c.(*VirtualColumn)
	return ok
}

// String summarizes the catalog for logs.
func (c *Catalog) String() string {
	cols := 0
	for _, t := range c.tables {
		cols += len(t.columns)
	}
	return fmt.Sprintf("catalog %s (%d tables, %d columns)", c.name, len(c.tables), cols)
}
