package name

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rdfsql/internal/sqlerr"
)

func TestNewColumnName_Accessors(t *testing.T) {
	n, err := NewColumnName("cat", "sch", "foo", "IntCol")
	require.NoError(t, err)

	assert.Equal(t, KindColumn, n.Kind())
	assert.Equal(t, "cat", n.Catalog())
	assert.Equal(t, "sch", n.Schema())
	assert.Equal(t, "foo", n.Table())
	assert.Equal(t, "IntCol", n.Column())
	assert.Equal(t, "IntCol", n.ShortName())
	assert.Equal(t, "cat.sch.foo.IntCol", n.QualifiedName())
	assert.Equal(t, "cat․sch․foo․IntCol", n.SPARQLName())
	assert.Equal(t, All, n.Segments())
}

func TestConstructors_RejectReservedSeparators(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (ItemName, error)
	}{
		{"dot in catalog", func() (ItemName, error) { return NewCatalogName("a.b") }},
		{"dot in schema", func() (ItemName, error) { return NewSchemaName("", "a.b") }},
		{"dot in table", func() (ItemName, error) { return NewTableName("", "s", "t.x") }},
		{"sparql separator in column", func() (ItemName, error) { return NewColumnName("", "s", "t", "c․d") }},
		{"dot in column ref", func() (ItemName, error) { return ColumnRef("", "t", "c.d") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			require.Error(t, err)
			assert.True(t, sqlerr.Is(err, sqlerr.CodeInvalidIdentifier))
		})
	}
}

func TestKinds_PinLowerSegmentsAbsent(t *testing.T) {
	tbl := MustTableName("c", "s", "t")
	assert.False(t, tbl.Has(Column))
	assert.Equal(t, "", tbl.Column())

	sch, err := NewSchemaName("c", "s")
	require.NoError(t, err)
	assert.False(t, sch.Has(Table))
	assert.Equal(t, KindSchema, sch.Kind())
}

func TestTableName_RoundTrip(t *testing.T) {
	col := MustColumnName("c", "s", "t", "col")
	assert.True(t, col.TableName().Equal(MustTableName("c", "s", "t")))
	assert.Equal(t, KindTable, col.TableName().Kind())
}

func TestWithSegments_IsLossy(t *testing.T) {
	col := MustColumnName("c", "s", "t", "col")

	view := col.WithSegments(Table | Column)
	assert.Equal(t, "t.col", view.QualifiedName())
	assert.False(t, view.Has(Schema))

	restored := view.WithSegments(All)
	assert.False(t, restored.Equal(col))
	assert.Equal(t, "", restored.Schema())
}

func TestRefs_TreatEmptyAsAbsent(t *testing.T) {
	ref, err := ColumnRef("", "foo", "IntCol")
	require.NoError(t, err)

	assert.Equal(t, Table|Column, ref.Segments())
	assert.Equal(t, "foo.IntCol", ref.QualifiedName())

	tref, err := TableRef("", "foo")
	require.NoError(t, err)
	assert.Equal(t, Table, tref.Segments())
}

func TestMatches_Wildcards(t *testing.T) {
	col := MustColumnName("c", "s", "foo", "IntCol")

	tests := []struct {
		schema, table, column string
		want                  bool
	}{
		{"", "", "IntCol", true},
		{"", "foo", "IntCol", true},
		{"s", "foo", "IntCol", true},
		{"other", "foo", "IntCol", false},
		{"", "bar", "IntCol", false},
		{"", "", "intcol", false},
		{"", "foo", "", true},
	}

	for _, tt := range tests {
		ref, err := ColumnRef(tt.schema, tt.table, tt.column)
		require.NoError(t, err)
		assert.Equal(t, tt.want, col.Matches(ref), "ref %s", ref)
	}
}

func TestMatches_EmptySetSegmentIsNotWildcard(t *testing.T) {
	synthetic := MustColumnName("", "", "", "m")
	real := MustColumnName("c", "s", "foo", "m")

	search := MustColumnName("", "", "", "m")
	assert.True(t, synthetic.Matches(search))
	assert.False(t, real.Matches(search))
}

func TestMerge_FillsAbsentSegments(t *testing.T) {
	ref, err := ColumnRef("", "", "IntCol")
	require.NoError(t, err)

	merged := ref.Merge(MustTableName("c", "s", "foo"))
	assert.True(t, merged.Equal(MustColumnName("c", "s", "foo", "IntCol")))

	// Set segments are kept
	ref2, err := ColumnRef("", "bar", "IntCol")
	require.NoError(t, err)
	merged2 := ref2.Merge(MustTableName("c", "s", "foo"))
	assert.Equal(t, "bar", merged2.Table())
	assert.Equal(t, "s", merged2.Schema())
}

func TestMerge_RespectsKind(t *testing.T) {
	tbl := MustTableName("c", "s", "t")
	merged := tbl.Merge(MustColumnName("x", "y", "z", "col"))
	assert.False(t, merged.Has(Column))
	assert.True(t, merged.Equal(tbl))
}

func TestCompare_TotalOrder(t *testing.T) {
	a := MustColumnName("c", "s", "a", "x")
	b := MustColumnName("c", "s", "b", "a")
	ref, err := ColumnRef("", "a", "x")
	require.NoError(t, err)

	assert.Equal(t, 0, a.Compare(a))
	assert.Negative(t, a.Compare(b))
	assert.Positive(t, b.Compare(a))
	// Absent catalog sorts before a set one
	assert.Negative(t, ref.Compare(a))

	names := []ItemName{b, ref, a}
	sort.Slice(names, func(i, j int) bool { return names[i].Compare(names[j]) < 0 })
	assert.Equal(t, []string{"a.x", "c.s.a.x", "c.s.b.a"}, []string{
		names[0].QualifiedName(), names[1].QualifiedName(), names[2].QualifiedName(),
	})
}

func TestGUID_Stable(t *testing.T) {
	a := MustColumnName("c", "s", "foo", "IntCol")
	b := MustColumnName("c", "s", "foo", "IntCol")

	assert.Equal(t, a.GUID(), a.GUID())
	assert.Equal(t, a.GUID(), b.GUID())
	assert.True(t, strings.HasPrefix(a.GUID(), GUIDPrefix))
	assert.Len(t, a.GUID(), len(GUIDPrefix)+32)
}

func TestGUID_DistinguishesNames(t *testing.T) {
	guids := map[string]string{}
	names := []ItemName{
		MustColumnName("c", "s", "foo", "IntCol"),
		MustColumnName("c", "s", "bar", "IntCol"),
		MustColumnName("", "", "", "IntCol"),
		MustTableName("c", "s", "foo"),
	}
	ref, err := ColumnRef("", "", "IntCol")
	require.NoError(t, err)
	names = append(names, ref)

	for _, n := range names {
		g := n.GUID()
		prev, dup := guids[g]
		assert.False(t, dup, "%s collides with %s", n, prev)
		guids[g] = n.String()
	}
}

func TestGUID_NormalizesUnicode(t *testing.T) {
	// "é" precomposed vs decomposed
	a := MustColumnName("", "", "t", "caf\u00e9")
	b := MustColumnName("", "", "t", "cafe\u0301")

	assert.Equal(t, a.GUID(), b.GUID())
}

func TestNames_NormalizeUnicode(t *testing.T) {
	a := MustColumnName("", "", "t", "caf\u00e9")
	b := MustColumnName("", "", "t", "cafe\u0301")

	assert.True(t, a.Equal(b))
	assert.Zero(t, a.Compare(b))
	assert.Equal(t, "caf\u00e9", b.Column())
	assert.Equal(t, a.GUID(), b.GUID())
}

func TestGUID_DependsOnSegmentPresence(t *testing.T) {
	n := MustColumnName("", "", "foo", "IntCol")
	assert.NotEqual(t, n.GUID(), n.WithSegments(Column).GUID())
	assert.NotEqual(t, n.GUID(), n.WithSegments(Table|Column).GUID())
}

func TestDigest(t *testing.T) {
	assert.Equal(t, Digest("a", "b"), Digest("a", "b"))
	assert.NotEqual(t, Digest("ab"), Digest("a", "b"))
	assert.Len(t, Digest("x"), 16)
}

func TestSegments_String(t *testing.T) {
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "catalog|schema|table|column", All.String())
	assert.Equal(t, "table|column", (Table | Column).String())
}
