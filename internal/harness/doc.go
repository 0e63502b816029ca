// Package harness runs compilation scenarios against the engine.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: left_join_filter
//	description: "ON conditions on the preserved table stay inside the OPTIONAL"
//	catalog: ../catalogs/demo.yaml   # relative to the scenario file
//	default_schema: sales
//	sql: |
//	  SELECT foo.IntCol, bar.BarKey
//	  FROM foo LEFT JOIN bar ON foo.IntCol = bar.IntCol AND foo.StringCol = 'a'
//	assertions:
//	  - type: columns
//	    columns: [IntCol, BarKey]
//	  - type: stats
//	    optionals: 1
//	    filters: 1
//	  - type: contains
//	    text: "OPTIONAL {"
//
// A scenario that expects the statement to be rejected names the error
// code instead:
//
//	expect_error: UNSUPPORTED_JOIN_KIND
//
// When catalog is omitted the demo catalog from testutil is used.
//
// # Assertion Types
//
//   - columns: the result column names, in order
//   - contains / not_contains: a substring of the SPARQL text
//   - stats: block counts of the WHERE pattern (triples, optionals,
//     filters, binds, equates); omitted counts are not checked
//   - recorded: the compilation log holds exactly one entry with the
//     expected status
//
// # Deterministic Runs
//
// Every run uses a fresh in-memory store, a testutil.DeterministicClock
// and a testutil.SequentialIDGenerator, so two runs of the same scenario
// record identical logs. Golden snapshots replace variable names with
// ?v1, ?v2, ... in order of first appearance, which keeps them readable
// and independent of the name hashing.
package harness
