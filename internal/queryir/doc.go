// Package queryir provides the compiled query intermediate representation
// (IR) produced by the SQL compiler and consumed by SPARQL backends.
//
// ARCHITECTURE:
//
// The IR sits between the SQL statement compiler and anything that can
// evaluate SPARQL algebra:
//
//	[SQL AST] → [builder] → [Query IR] → [querysparql text]
//	                                   → [in-process SPARQL store] (algebra)
//
// A Query is an ordered group graph pattern plus solution modifiers:
//
//	Query{
//	  Where:      *Group   // BGP, OPTIONAL, FILTER, BIND, Equate blocks
//	  Projection: []Projection
//	  Distinct, OrderBy, Limit, Offset
//	}
//
// SEALED INTERFACES:
//
// Term, Block and Expr are sealed with marker methods. Only types in this
// package implement them, so backends can type switch exhaustively:
//
//	switch b := block.(type) {
//	case *BGP:
//	case *Optional:
//	case *Filter:
//	case *Bind:
//	case *Equate:
//	}
//
// RELATIONAL MAPPING:
//
//	SQL                      IR
//	---                      --
//	table row                BGP triple from the table template
//	NOT NULL column          BGP triple from the column template
//	nullable column          Optional{ BGP triple }
//	LEFT OUTER JOIN          Optional{ table + columns + ON predicate }
//	a.x = b.y (join)         Equate{a, b} (shared binding node)
//	WHERE / ON predicate     Filter placed in the innermost group that
//	                         sees all of its variables
//	aggregate                Aggregate expression in a Projection
//
// Variables are derived from name GUIDs, so two distinct relational
// entities never share a variable unless an Equate joins them.
package queryir
