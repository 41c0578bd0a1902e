// Package store provides SQLite-backed storage for pattern catalogs and
// archived move transcripts.
//
// Two tables:
//   - patterns: an imported catalog, ordered by ordinal
//   - transcripts: explicitly archived move logs, append-only
//
// A transcript is an export, not a saved session. Sessions are never resumed
// from the store; the verify command replays archived logs through the rule
// engine to check they are still reachable.
//
// # Ordering
//
// Queries order by seq (transcripts) or ordinal (patterns) and then by id
// COLLATE BINARY, so results are identical across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Move logs and setups are stored as canonical JSON (internal/ir) and every
// transcript carries the log and layout digests computed at write time.
package store
