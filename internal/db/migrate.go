package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/alexanderramin/tally/internal/domain"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE statements are re-run on every open.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := seedAdvanceTypes(db); err != nil {
		return fmt.Errorf("seeding advance types: %w", err)
	}
	if err := migrateBackfillOrderSequences(db); err != nil {
		return fmt.Errorf("backfilling order sequence allocator state: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS orders (
		id           TEXT PRIMARY KEY,
		code         TEXT NOT NULL UNIQUE,
		name         TEXT NOT NULL,
		weight_basis TEXT NOT NULL DEFAULT 'hours'
		             CHECK(weight_basis IN ('hours','budget')),
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS work_nodes (
		id          TEXT PRIMARY KEY,
		order_id    TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		parent_id   TEXT REFERENCES work_nodes(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL DEFAULT 0,
		code        TEXT NOT NULL DEFAULT '',
		name        TEXT NOT NULL,
		kind        TEXT NOT NULL DEFAULT 'line'
		            CHECK(kind IN ('group','line')),
		order_index INTEGER NOT NULL DEFAULT 0,
		hours       INTEGER NOT NULL DEFAULT 0 CHECK(hours >= 0),
		budget      TEXT NOT NULL DEFAULT '0',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_work_nodes_order ON work_nodes(order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_work_nodes_parent ON work_nodes(parent_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_work_nodes_seq ON work_nodes(order_id, seq) WHERE seq > 0`,

	`CREATE TABLE IF NOT EXISTS order_sequences (
		order_id TEXT PRIMARY KEY REFERENCES orders(id) ON DELETE CASCADE,
		next_seq INTEGER NOT NULL CHECK(next_seq > 0)
	)`,

	`CREATE TABLE IF NOT EXISTS advance_types (
		name              TEXT PRIMARY KEY,
		default_max_value TEXT NOT NULL,
		precision         INTEGER NOT NULL DEFAULT 4 CHECK(precision >= 0),
		percentage        INTEGER NOT NULL DEFAULT 0,
		updatable         INTEGER NOT NULL DEFAULT 1,
		active            INTEGER NOT NULL DEFAULT 1,
		predefined        INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS advance_assignments (
		id            TEXT PRIMARY KEY,
		node_id       TEXT NOT NULL REFERENCES work_nodes(id) ON DELETE CASCADE,
		advance_type  TEXT NOT NULL REFERENCES advance_types(name),
		max_value     TEXT NOT NULL,
		report_global INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL,
		UNIQUE(node_id, advance_type)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_advance_assignments_node ON advance_assignments(node_id)`,

	`CREATE TABLE IF NOT EXISTS advance_measurements (
		id            TEXT PRIMARY KEY,
		assignment_id TEXT NOT NULL REFERENCES advance_assignments(id) ON DELETE CASCADE,
		date          TEXT NOT NULL,
		value         TEXT NOT NULL,
		UNIQUE(assignment_id, date)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_advance_measurements_assignment ON advance_measurements(assignment_id)`,

	// Reporting date of a measurement, distinct from the day it measures.
	`ALTER TABLE advance_measurements ADD COLUMN communication_date TEXT`,
}

// seedAdvanceTypes inserts the predefined advance types. Existing rows are
// left alone so user edits to a type's limits survive re-opening.
func seedAdvanceTypes(db *sql.DB) error {
	ctx := context.Background()
	for _, at := range domain.PredefinedAdvanceTypes() {
		if _, err := db.ExecContext(ctx,
			`INSERT OR IGNORE INTO advance_types
			 (name, default_max_value, precision, percentage, updatable, active, predefined)
			 VALUES (?, ?, ?, ?, ?, ?, 1)`,
			at.Name, at.DefaultMaxValue.String(), at.Precision,
			at.Percentage, at.Updatable, at.Active,
		); err != nil {
			return fmt.Errorf("inserting %s: %w", at.Name, err)
		}
	}
	return nil
}

// migrateBackfillOrderSequences makes sure every order has an allocator row
// whose next_seq is above the highest node seq in use.
func migrateBackfillOrderSequences(db *sql.DB) error {
	ctx := context.Background()

	query := `INSERT INTO order_sequences (order_id, next_seq)
		SELECT o.id, COALESCE(MAX(n.seq), 0) + 1
		FROM orders o
		LEFT JOIN work_nodes n ON n.order_id = o.id AND n.seq > 0
		GROUP BY o.id
		ON CONFLICT(order_id) DO UPDATE
		SET next_seq = MAX(order_sequences.next_seq, excluded.next_seq)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("upserting order sequence rows: %w", err)
	}
	return nil
}
