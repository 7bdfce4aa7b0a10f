// Package repository defines the data access interfaces for fluidnet.
//
// Diagrams themselves are never persisted. The only stored data is the solve
// journal: one row per solve attempt with its status, message, counts, the
// digest of the request body and the port values the solver returned.
//
// # SQLite Implementation
//
// The sqlite subpackage implements SolveJournal on modernc.org/sqlite (pure
// Go, no cgo). The schema is created on open. Tests run against in-memory
// databases.
package repository
