// Package store provides SQLite-backed durable storage for the compilation
// log.
//
// Every statement the engine compiles is recorded once, with its SQL text,
// a content hash of the normalized text, the rendered SPARQL or the error
// that stopped compilation. The log is append-only.
//
// # Ordering
//
// Rows carry a logical seq from the engine clock. Reads order by
// seq, then id COLLATE BINARY, so results are identical across runs and
// never depend on wall-clock time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Schema upgrades are numbered migrations tracked in PRAGMA user_version.
package store
