// Package sqlite provides a SQLite-based implementation of the persistence ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. It implements through a single database connection:
//
//   - DocumentStore: ingested documents, used to rebuild the in-memory vector index
//   - UsageStore: per-model chat token accounting
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.docassist/data/docassist.db
package sqlite
