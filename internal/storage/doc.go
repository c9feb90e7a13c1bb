// Package storage persists the fire journal: one record per task occurrence the runner
// dispatched.
//
// Drivers:
//   - "file": dependency-free JSON Lines file with periodic compaction
//   - "sqlite": SQLite database file (build tag sqlite)
package storage
