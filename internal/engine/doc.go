// Package engine runs SQL statements through the full compilation
// pipeline and keeps the compilation log.
//
// A statement flows through five stages:
//
//  1. sqlparse turns the text into a sqlast.Statement
//  2. compiler translates it against the current catalog
//  3. queryir.Validate checks the structural integrity of the result
//  4. querysparql renders the query text
//  5. the outcome, success or failure, is recorded in the store
//
// Every compilation is stamped with a seq from a logical clock and an id
// from an IDGenerator. The log is ordered by seq, never by wall-clock
// time, so two runs over the same input with a deterministic clock and id
// generator record identical logs.
//
// The catalog is held behind an atomic pointer. SetCatalog may be called
// while other goroutines are preparing statements; each Prepare sees one
// catalog for its whole run.
package engine
