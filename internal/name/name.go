package name

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/rdfsql/internal/sqlerr"
)

const (
	// RelationalSeparator joins segments in SQL text.
	RelationalSeparator = "."

	// SPARQLSeparator joins segments when a name is rendered into SPARQL.
	SPARQLSeparator = "․"
)

// ItemName is an immutable catalog/schema/table/column identifier.
//
// The zero value is an empty name of no kind; use the constructors.
// Constructors store every segment NFC normalized.
type ItemName struct {
	parts [4]string
	set   Segments
	kind  Kind
}

func newName(kind Kind, set Segments, parts [4]string) (ItemName, error) {
	set &= kind.mask()
	for i, seg := range segmentOrder {
		if !set.Has(seg) {
			parts[i] = ""
			continue
		}
		if strings.Contains(parts[i], RelationalSeparator) || strings.Contains(parts[i], SPARQLSeparator) {
			return ItemName{}, sqlerr.InvalidIdentifier(segmentLabels[i], parts[i])
		}
		parts[i] = norm.NFC.String(parts[i])
	}
	return ItemName{parts: parts, set: set, kind: kind}, nil
}

// NewCatalogName creates a catalog-level name.
func NewCatalogName(catalog string) (ItemName, error) {
	return newName(KindCatalog, Catalog, [4]string{catalog})
}

// NewSchemaName creates a schema-level name.
func NewSchemaName(catalog, schema string) (ItemName, error) {
	return newName(KindSchema, Catalog|Schema, [4]string{catalog, schema})
}

// NewTableName creates a fully qualified table name.
func NewTableName(catalog, schema, table string) (ItemName, error) {
	return newName(KindTable, Catalog|Schema|Table, [4]string{catalog, schema, table})
}

// NewColumnName creates a fully qualified column name.
func NewColumnName(catalog, schema, table, column string) (ItemName, error) {
	return newName(KindColumn, All, [4]string{catalog, schema, table, column})
}

// TableRef creates a partial table name for lookups. Empty arguments are
// absent segments; the catalog is always absent.
func TableRef(schema, table string) (ItemName, error) {
	return newName(KindTable, presence(None, schema, table, ""), [4]string{"", schema, table})
}

// ColumnRef creates a partial column name for lookups. Empty arguments
// are absent segments; the catalog is always absent.
func ColumnRef(schema, table, column string) (ItemName, error) {
	return newName(KindColumn, presence(None, schema, table, column), [4]string{"", schema, table, column})
}

func presence(s Segments, schema, table, column string) Segments {
	if schema != "" {
		s |= Schema
	}
	if table != "" {
		s |= Table
	}
	if column != "" {
		s |= Column
	}
	return s
}

// MustTableName is like NewTableName but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustTableName(catalog, schema, table string) ItemName {
	n, err := NewTableName(catalog, schema, table)
	if err != nil {
		panic(err)
	}
	return n
}

// MustColumnName is like NewColumnName but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustColumnName(catalog, schema, table, column string) ItemName {
	n, err := NewColumnName(catalog, schema, table, column)
	if err != nil {
		panic(err)
	}
	return n
}

// Kind returns the level of the name.
func (n ItemName) Kind() Kind { return n.kind }

// Segments returns the mask of segments that are set.
func (n ItemName) Segments() Segments { return n.set }

// Has reports whether every segment in s is set.
func (n ItemName) Has(s Segments) bool { return n.set.Has(s) }

// IsZero reports whether no segment is set.
func (n ItemName) IsZero() bool { return n.set == None }

func (n ItemName) Catalog() string { return n.parts[0] }
func (n ItemName) Schema() string  { return n.parts[1] }
func (n ItemName) Table() string   { return n.parts[2] }
func (n ItemName) Column() string  { return n.parts[3] }

// ShortName returns the last set segment.
func (n ItemName) ShortName() string {
	for i := len(segmentOrder) - 1; i >= 0; i-- {
		if n.set.Has(segmentOrder[i]) {
			return n.parts[i]
		}
	}
	return ""
}

// QualifiedName joins the set, non-empty segments with ".".
func (n ItemName) QualifiedName() string {
	return n.join(RelationalSeparator)
}

// SPARQLName joins the set, non-empty segments with the SPARQL separator.
func (n ItemName) SPARQLName() string {
	return n.join(SPARQLSeparator)
}

func (n ItemName) join(sep string) string {
	parts := make([]string, 0, 4)
	for i, seg := range segmentOrder {
		if n.set.Has(seg) && n.parts[i] != "" {
			parts = append(parts, n.parts[i])
		}
	}
	return strings.Join(parts, sep)
}

// String implements fmt.Stringer.
func (n ItemName) String() string {
	if q := n.QualifiedName(); q != "" {
		return q
	}
	return "<" + n.kind.String() + ">"
}

// WithSegments returns a copy holding only the segments selected by mask.
// Dropped segments cannot be recovered from the result.
func (n ItemName) WithSegments(mask Segments) ItemName {
	out := n
	out.set &= mask
	for i, seg := range segmentOrder {
		if !out.set.Has(seg) {
			out.parts[i] = ""
		}
	}
	return out
}

// TableName returns the table-level part of a table or column name.
func (n ItemName) TableName() ItemName {
	out := n.WithSegments(Catalog | Schema | Table)
	out.kind = KindTable
	return out
}

// SchemaName returns the schema-level part of the name.
func (n ItemName) SchemaName() ItemName {
	out := n.WithSegments(Catalog | Schema)
	out.kind = KindSchema
	return out
}

// CatalogName returns the catalog-level part of the name.
func (n ItemName) CatalogName() ItemName {
	out := n.WithSegments(Catalog)
	out.kind = KindCatalog
	return out
}

// Merge fills every segment absent in n with the corresponding segment of
// other. Segments outside n's kind are never filled.
func (n ItemName) Merge(other ItemName) ItemName {
	out := n
	for i, seg := range segmentOrder {
		if !n.kind.mask().Has(seg) || out.set.Has(seg) || !other.set.Has(seg) {
			continue
		}
		out.parts[i] = other.parts[i]
		out.set |= seg
	}
	return out
}

// Equal reports whether both names set the same segments to the same values.
func (n ItemName) Equal(other ItemName) bool {
	return n.set == other.set && n.parts == other.parts
}

// Compare orders names segment by segment from catalog to column. When only
// one side sets a segment, the absent side sorts first.
func (n ItemName) Compare(other ItemName) int {
	for i, seg := range segmentOrder {
		a, b := n.set.Has(seg), other.set.Has(seg)
		switch {
		case a && b:
			if c := strings.Compare(n.parts[i], other.parts[i]); c != 0 {
				return c
			}
		case a:
			return 1
		case b:
			return -1
		}
	}
	return 0
}

// Matches reports whether n agrees with every segment set in search.
// Absent segments in search match anything.
func (n ItemName) Matches(search ItemName) bool {
	for i, seg := range segmentOrder {
		if !search.set.Has(seg) {
			continue
		}
		if !n.set.Has(seg) || n.parts[i] != search.parts[i] {
			return false
		}
	}
	return true
}
