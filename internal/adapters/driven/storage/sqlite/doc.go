// Package sqlite provides a SQLite-based driven.TranscriptStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files,
// and applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.vox/data/transcripts.db
//
// # Thread Safety
//
// All operations are thread-safe. Concurrent writers are serialised by SQLite
// in WAL mode with a busy timeout.
package sqlite
