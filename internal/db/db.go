package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Cascading deletes of nodes, assignments and measurements need foreign_keys.
var pragmas = []struct{ stmt, what string }{
	{"journal_mode = WAL", "setting WAL mode"},
	{"foreign_keys = ON", "enabling foreign keys"},
	{"busy_timeout = 5000", "setting busy timeout"},
}

// OpenDB opens the tally SQLite database at the given path.
// If path is ":memory:", uses an in-memory database held by a single
// connection so every query sees the same schema.
// Applies pragmas and runs migrations.
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	for _, p := range pragmas {
		if _, err := db.Exec("PRAGMA " + p.stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p.what, err)
		}
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}
