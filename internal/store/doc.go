// Package store provides SQLite-backed storage for generation history.
//
// Each generation run is recorded with the class it resolved, the template
// it instantiated and the statements it produced:
//   - Runs: one row per (class, template) batch, stamped with a logical seq
//   - Statements: one row per instantiated statement, keyed by (run_id, position)
//
// Writes are idempotent. Writing the same run or statement twice is a no-op,
// so a batch can be re-saved safely after a partial failure.
//
// Reads are deterministic: runs are ordered by seq then id, statements by
// position. Patterns are stored as canonical JSON (see ir.MarshalCanonical),
// so equal statements are byte-identical on disk.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
