//go:build cgo_sqlite

package main

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// openMemoryDB opens a private in-memory database through the cgo driver.
// Each connection to ":memory:" is a separate database, so the pool is
// pinned to a single connection.
func openMemoryDB() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
