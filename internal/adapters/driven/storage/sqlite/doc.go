// Package sqlite provides the embedded SQLite implementation of the storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. One database file backs every store:
//
//   - RecordStore: circuits, constructors, races, drivers and results
//   - EmbeddingStore: sentence embeddings, mirrored onto each source row
//   - MessageStore: chats and the append-only message log
//   - SchedulerStore: background task state and history
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each applied version is recorded in schema_migrations.
//
// # Integrity
//
// Foreign keys are enabled on every connection, so a result cannot be written
// before its circuit and its (driver, season) row exist.
//
// # Data Location
//
// By default, the database is stored at ~/.paddock/paddock.db
package sqlite
