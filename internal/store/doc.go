// Package store is the live target: a SQLite database that holds the
// version marker and receives payload statements.
//
// # Tables
//
//   - version table (default revline_version): zero or one row naming the
//     current revision. The name is configurable; it is created on Open.
//   - revline_history: append-only log of marker changes, ordered by seq.
//
// Each step runs in one transaction: payload statements, marker change and
// history row commit together or not at all.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
