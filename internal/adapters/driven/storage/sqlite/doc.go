// Package sqlite provides the SQLite-backed evidence and eval-query stores.
//
// A single Store owns the database handle and runs embedded migrations on
// open; the port interfaces are exposed through wrapper types so consumers
// depend only on the slice of behaviour they need.
package sqlite
