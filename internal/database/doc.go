// Package database provides SQLite-based run history storage.
//
// This package implements the HistoryDB, which stores:
//   - One row per aggregation run with timing and token totals
//   - Per-input outcomes (kind, failure reason) in processing order
//   - URLs visited by web crawls during the run
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
