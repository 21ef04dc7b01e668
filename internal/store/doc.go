// Package store provides the SQLite-backed process library.
//
// The library keeps every distinct version of every process and the code
// generated from it:
//   - Processes: one row per distinct process content, addressed by
//     ir.ProcessHash. Saving unchanged content never creates a new version.
//   - Artifacts: one row per (process version, format) render.
//
// # Ordering
//
// All ordering uses the seq column (a logical clock), never timestamps.
// Queries break ties with id COLLATE BINARY so results are identical across
// runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
