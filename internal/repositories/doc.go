// Package repositories implements SQLite persistence for sync state.
//
// Key Implementations:
//   - [CursorRepository] : the single-row resume cursor
//   - [DedupRepository] : append-only log of inserted video titles
//   - [RunRepository] : history of finished runs
//
// Sequence numbers provide stable insertion ordering independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
