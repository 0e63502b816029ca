package name

import "strings"

// Segments is a bitmask selecting which of catalog, schema, table and
// column participate in a view of a name.
type Segments uint8

const (
	Catalog Segments = 1 << iota
	Schema
	Table
	Column

	// None selects no segments.
	None Segments = 0

	// All selects every segment.
	All = Catalog | Schema | Table | Column
)

// segmentOrder lists segments in qualification order; index i holds the
// mask for ItemName.parts[i].
var segmentOrder = [4]Segments{Catalog, Schema, Table, Column}

var segmentLabels = [4]string{"catalog", "schema", "table", "column"}

// Has reports whether every segment in o is selected.
func (s Segments) Has(o Segments) bool {
	return s&o == o
}

// String renders the mask as "catalog|table" style text.
func (s Segments) String() string {
	if s == None {
		return "none"
	}
	var parts []string
	for i, seg := range segmentOrder {
		if s.Has(seg) {
			parts = append(parts, segmentLabels[i])
		}
	}
	return strings.Join(parts, "|")
}

// Kind is the level of an ItemName.
type Kind int

const (
	KindCatalog Kind = iota + 1
	KindSchema
	KindTable
	KindColumn
)

// mask returns the segments a name of this kind may populate.
func (k Kind) mask() Segments {
	switch k {
	case KindCatalog:
		return Catalog
	case KindSchema:
		return Catalog | Schema
	case KindTable:
		return Catalog | Schema | Table
	case KindColumn:
		return All
	default:
		return None
	}
}

func (k Kind) String() string {
	switch k {
	case KindCatalog:
		return "catalog"
	case KindSchema:
		return "schema"
	case KindTable:
		return "table"
	case KindColumn:
		return "column"
	default:
		return "unknown"
	}
}
