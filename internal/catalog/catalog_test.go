package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rdfsql/internal/name"
	"github.com/roach88/rdfsql/internal/queryir"
	"github.com/roach88/rdfsql/internal/sqlerr"
)

func names(tables []Table) []string {
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = t.Name().QualifiedName()
	}
	return out
}

func TestLoadFile_CUEAndYAMLAgree(t *testing.T) {
	fromCUE, err := LoadFile("testdata/demo.cue")
	require.NoError(t, err)
	fromYAML, err := LoadFile("testdata/demo.yaml")
	require.NoError(t, err)

	assert.Equal(t, names(fromCUE.Tables()), names(fromYAML.Tables()))
	assert.Equal(t, []string{"demo.sales.foo", "demo.sales.bar"}, names(fromCUE.Tables()))

	for i, ct := range fromCUE.Tables() {
		yt := fromYAML.Tables()[i]
		require.Len(t, yt.Columns(), len(ct.Columns()))
		for j, cc := range ct.Columns() {
			yc := yt.Columns()[j]
			assert.True(t, cc.Name().Equal(yc.Name()))
			assert.Equal(t, cc.Nullable(), yc.Nullable(), cc.Name().String())
			assert.Equal(t, cc.Type(), yc.Type(), cc.Name().String())
			assert.Equal(t, cc.QuerySegmentTemplate(), yc.QuerySegmentTemplate())
		}
	}
}

func TestLoadFile_Defaults(t *testing.T) {
	cat, err := LoadFile("testdata/demo.yaml")
	require.NoError(t, err)

	foo := cat.FindTables(name.MustTableName("demo", "sales", "foo"))
	require.Len(t, foo, 1)
	assert.Equal(t, queryir.DefaultTableTemplate, foo[0].QuerySegmentTemplate())
	assert.Equal(t, "http://example.org/Foo", foo[0].URI())

	cols := foo[0].Columns()
	require.Len(t, cols, 4)
	assert.Equal(t, queryir.DefaultColumnTemplate, cols[0].QuerySegmentTemplate())
	assert.False(t, cols[0].Nullable())
	assert.True(t, cols[2].Nullable())
	assert.Equal(t, TypeInteger, cols[0].Type())

	bar := cat.FindTables(name.MustTableName("demo", "sales", "bar"))
	require.Len(t, bar, 1)
	assert.Equal(t, TypeVarchar, bar[0].Columns()[2].Type())
}

func TestLoadFile_CUEDirectory(t *testing.T) {
	cat, err := LoadFile("testdata/cuedir")
	require.NoError(t, err)

	assert.Equal(t, "split", cat.Name())
	assert.Equal(t, []string{"split.main.people"}, names(cat.Tables()))
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	_, err := LoadFile("catalog_test.go")
	require.Error(t, err)
	assert.True(t, sqlerr.Is(err, sqlerr.CodeInvalidCatalog))
	assert.Contains(t, err.Error(), "unsupported catalog format")
}

func TestParseYAML_RejectsUnknownFields(t *testing.T) {
	_, err := ParseYAML("x.yaml", []byte("catalog: c\nschemaz: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schemaz")
}

func TestParseCUE_ReportsTypeErrors(t *testing.T) {
	src := `catalog: "c"
schema: s: table: t: {
	uri: 42
}
`
	_, err := ParseCUE("bad.cue", []byte(src))
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, err.Error(), "bad.cue")
	assert.True(t, sqlerr.Is(err, sqlerr.CodeInvalidCatalog))
}

func TestDefinitionValidate_CollectsAllProblems(t *testing.T) {
	def := &Definition{
		Catalog: "c",
		Schemas: []SchemaDef{{
			Name: "s",
			Tables: []TableDef{
				{Name: "t", Template: "{uri} a <http://x> ."},
				{Name: "t", URI: "http://t"},
				{Name: "u.v", URI: "http://u"},
				{Name: "w", URI: "http://w", Columns: []ColumnDef{
					{Name: "a", URI: "http://a", Type: "BLOB"},
					{Name: "a", URI: "http://a"},
					{Name: "b", Template: "{subject} <http://p> <http://o> ."},
				}},
			},
		}},
	}

	errs := def.Validate()

	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
		assert.True(t, sqlerr.Is(e, sqlerr.CodeInvalidCatalog))
	}
	assert.Len(t, msgs, 7, "%v", msgs)
	assert.Contains(t, msgs[0], "does not use {subject}")
	assert.Contains(t, msgs[1], "uses {uri} but no uri")
	assert.Contains(t, msgs[2], "duplicate table")
	assert.Contains(t, msgs[3], "reserved separator")
	assert.Contains(t, msgs[4], "unknown SQL type")
	assert.Contains(t, msgs[5], "duplicate column")
	assert.Contains(t, msgs[6], "does not use {object}")
}

func TestCatalog_FindTablesWildcard(t *testing.T) {
	cat, err := New("c")
	require.NoError(t, err)
	_, err = cat.AddTable("s1", "t", "http://t1", "")
	require.NoError(t, err)
	_, err = cat.AddTable("s2", "t", "http://t2", "")
	require.NoError(t, err)
	_, err = cat.AddTable("s2", "u", "http://u", "")
	require.NoError(t, err)

	ref, err := name.TableRef("", "t")
	require.NoError(t, err)
	assert.Equal(t, []string{"c.s1.t", "c.s2.t"}, names(cat.FindTables(ref)))

	ref, err = name.TableRef("s2", "t")
	require.NoError(t, err)
	assert.Equal(t, []string{"c.s2.t"}, names(cat.FindTables(ref)))

	assert.Equal(t, []string{"s1", "s2"}, cat.Schemas())
}

func TestCatalog_RejectsDuplicates(t *testing.T) {
	cat, err := New("c")
	require.NoError(t, err)
	tbl, err := cat.AddTable("s", "t", "http://t", "")
	require.NoError(t, err)

	_, err = cat.AddTable("s", "t", "http://t", "")
	assert.True(t, sqlerr.Is(err, sqlerr.CodeInvalidCatalog))

	_, err = tbl.AddColumn("a", "http://a", "", TypeInteger, false)
	require.NoError(t, err)
	_, err = tbl.AddColumn("a", "http://a", "", TypeInteger, false)
	assert.True(t, sqlerr.Is(err, sqlerr.CodeInvalidCatalog))

	_, err = tbl.AddColumn("a.b", "http://a", "", TypeInteger, false)
	assert.True(t, sqlerr.Is(err, sqlerr.CodeInvalidIdentifier))
}

func TestVirtualColumn(t *testing.T) {
	c := NewVirtualColumn(name.MustColumnName("", "", "", "m"), TypeInteger)

	assert.True(t, IsVirtual(c))
	assert.Empty(t, c.QuerySegmentTemplate())
	assert.True(t, c.Nullable())
}

func TestSQLType(t *testing.T) {
	tests := []struct {
		in   string
		want SQLType
		kind queryir.LiteralKind
	}{
		{"integer", TypeInteger, queryir.LitInteger},
		{"INT", TypeInteger, queryir.LitInteger},
		{"text", TypeVarchar, queryir.LitString},
		{"Decimal", TypeDecimal, queryir.LitDecimal},
		{"DATETIME", TypeTimestamp, queryir.LitTimestamp},
		{"date", TypeDate, queryir.LitDate},
		{"real", TypeReal, queryir.LitDouble},
	}
	for _, tt := range tests {
		got, err := ParseSQLType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.kind, got.LiteralKind())
	}

	_, err := ParseSQLType("BLOB")
	assert.Error(t, err)
	assert.True(t, TypeBigInt.IsNumeric())
	assert.False(t, TypeDate.IsNumeric())
	assert.Equal(t, "TIMESTAMP", TypeTimestamp.String())
}
