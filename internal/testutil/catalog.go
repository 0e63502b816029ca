package testutil

import (
	"github.com/roach88/rdfsql/internal/catalog"
)

// DemoNS prefixes every URI of the demo catalog.
const DemoNS = "http://example.org/"

// DemoCatalog returns the two-table fixture used across package tests.
//
//	sales.foo: IntCol INTEGER, StringCol VARCHAR,
//	           NullableStringCol VARCHAR NULL, NullableIntCol INTEGER NULL
//	sales.bar: BarKey VARCHAR, IntCol INTEGER, BarStringCol VARCHAR NULL
//
// BarStringCol uses a custom template. The fixture is identical to
// internal/catalog/testdata/demo.cue.
func DemoCatalog() *catalog.Catalog {
	cat, err := catalog.New("demo")
	must(err)

	foo, err := cat.AddTable("sales", "foo", DemoNS+"Foo", "")
	must(err)
	addColumn(foo, "IntCol", DemoNS+"foo/int", "", catalog.TypeInteger, false)
	addColumn(foo, "StringCol", DemoNS+"foo/string", "", catalog.TypeVarchar, false)
	addColumn(foo, "NullableStringCol", DemoNS+"foo/nstring", "", catalog.TypeVarchar, true)
	addColumn(foo, "NullableIntCol", DemoNS+"foo/nint", "", catalog.TypeInteger, true)

	bar, err := cat.AddTable("sales", "bar", DemoNS+"Bar", "")
	must(err)
	addColumn(bar, "BarKey", DemoNS+"bar/key", "", catalog.TypeVarchar, false)
	addColumn(bar, "IntCol", DemoNS+"bar/int", "", catalog.TypeInteger, false)
	addColumn(bar, "BarStringCol", DemoNS+"bar/string",
		"{subject} <"+DemoNS+"bar/detail> {object} .", catalog.TypeVarchar, true)

	return cat
}

func addColumn(t *catalog.MemTable, col, uri, template string, typ catalog.SQLType, nullable bool) {
	_, err := t.AddColumn(col, uri, template, typ, nullable)
	must(err)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
