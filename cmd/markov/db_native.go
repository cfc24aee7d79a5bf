//go:build !cgo_sqlite

package main

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// openMemoryDB opens a private in-memory database through the pure-Go driver.
// Each connection to ":memory:" is a separate database, so the pool is
// pinned to a single connection.
func openMemoryDB() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
