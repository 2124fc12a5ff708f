// Package sqlite provides the SQLite-backed implementation of
// driven.HistoryStore, recording batch conversion runs.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Runs and their per-document results live in two
// tables joined by run ID.
//
// # Data Location
//
// By default, the database is stored at ~/.pagestream/data/history.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
