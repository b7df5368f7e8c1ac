// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - LedgerStore: budget expense rows and grouped aggregates
//   - DocumentIndex: flattened operational records for lexical retrieval
//   - RecordStore: finance, HR and procurement records as JSON payloads
//   - AuditStore: the audit trail of answered queries
//   - SessionStore: chat sessions and their messages
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory as .up.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.govquery/data/govquery.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
