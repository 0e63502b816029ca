// Package catalog provides the relational metadata the compiler resolves
// table and column references against.
//
// A catalog maps RDF classes to tables and RDF properties to columns. Each
// table and column carries a query segment template: the triple patterns
// that realize it in SPARQL. The defaults are
//
//	table:  {subject} a {uri} .
//	column: {subject} {uri} {object} .
//
// Catalog definitions are read from CUE or YAML files:
//
//	cat, err := catalog.LoadFile("testdata/demo.cue")
//
// A loaded *Catalog is immutable in practice and safe for concurrent
// readers; callers that need to replace it swap the whole value.
package catalog
