// Package name provides the immutable hierarchical identifiers used
// throughout SQL-to-SPARQL compilation.
//
// This package imports nothing internal except sqlerr; every other compiler
// package builds on it.
//
// An ItemName has up to four ordered segments:
//
//	catalog . schema . table . column
//
// Each segment is either set (possibly to the empty string) or absent. The
// Kind fixed by the constructor decides which segments may be set:
// NewTableName never sets the column segment, NewSchemaName never sets
// table or column.
//
// Partial names built with TableRef and ColumnRef act as search patterns:
// an absent segment matches any value (see Matches).
//
// RESERVED CHARACTERS:
//
// No segment may contain "." (the relational separator) or "․" (U+2024,
// used when a qualified name is rendered into SPARQL text).
//
// GUIDS:
//
// GUID() is a deterministic digest of the fully segmented name. It is legal
// SPARQL variable syntax and never collides for distinct names, so the
// builder uses it to derive query variables from names that may contain
// characters SPARQL forbids.
package name
