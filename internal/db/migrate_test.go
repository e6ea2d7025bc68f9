package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

const ts = "2025-01-01T00:00:00Z"

func insertOrderAndNode(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO orders (id, code, name, created_at, updated_at)
		VALUES ('o1', 'ORD', 'Order', ?, ?)`, ts, ts)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO work_nodes (id, order_id, name, kind, hours, created_at, updated_at)
		VALUES ('n1', 'o1', 'Line', 'line', 100, ?, ?)`, ts, ts)
	require.NoError(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM advance_types`).Scan(&n))
	assert.Equal(t, 5, n, "seeding must not duplicate rows")
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"orders", "work_nodes", "order_sequences", "advance_types", "advance_assignments", "advance_measurements"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_work_nodes_order",
		"idx_work_nodes_parent",
		"idx_work_nodes_seq",
		"idx_advance_assignments_node",
		"idx_advance_measurements_assignment",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestMigrate_SeedsPredefinedAdvanceTypes(t *testing.T) {
	db := openTestDB(t)

	var max string
	var precision int
	var percentage, predefined bool
	err := db.QueryRow(`SELECT default_max_value, precision, percentage, predefined
		FROM advance_types WHERE name = 'units'`).Scan(&max, &precision, &percentage, &predefined)
	require.NoError(t, err)
	assert.Equal(t, "2147483647", max)
	assert.Equal(t, 4, precision)
	assert.False(t, percentage)
	assert.True(t, predefined)

	err = db.QueryRow(`SELECT percentage FROM advance_types WHERE name = 'children'`).Scan(&percentage)
	require.NoError(t, err)
	assert.True(t, percentage)
}

func TestMigrate_SeedKeepsEditedType(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`UPDATE advance_types SET default_max_value = '500' WHERE name = 'units'`)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	var max string
	require.NoError(t, db.QueryRow(`SELECT default_max_value FROM advance_types WHERE name = 'units'`).Scan(&max))
	assert.Equal(t, "500", max)
}

func TestMigrate_CommunicationDateColumn(t *testing.T) {
	db := openTestDB(t)

	rows, err := db.Query(`PRAGMA table_info(advance_measurements)`)
	require.NoError(t, err)
	defer rows.Close()

	found := false
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull, pk int
		var dflt sql.NullString
		require.NoError(t, rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk))
		if name == "communication_date" {
			found = true
		}
	}
	assert.True(t, found, "advance_measurements should have communication_date")
}

func TestMigrate_WorkNodeCheckConstraints(t *testing.T) {
	db := openTestDB(t)
	insertOrderAndNode(t, db)

	_, err := db.Exec(`INSERT INTO work_nodes (id, order_id, name, kind, created_at, updated_at)
		VALUES ('n2', 'o1', 'Bad', 'milestone', ?, ?)`, ts, ts)
	assert.Error(t, err, "unknown kind should be rejected")

	_, err = db.Exec(`INSERT INTO work_nodes (id, order_id, name, kind, hours, created_at, updated_at)
		VALUES ('n3', 'o1', 'Bad', 'line', -5, ?, ?)`, ts, ts)
	assert.Error(t, err, "negative hours should be rejected")

	_, err = db.Exec(`INSERT INTO orders (id, code, name, weight_basis, created_at, updated_at)
		VALUES ('o2', 'OTH', 'Other', 'cost', ?, ?)`, ts, ts)
	assert.Error(t, err, "unknown weight basis should be rejected")
}

func TestMigrate_OneAssignmentPerNodeAndType(t *testing.T) {
	db := openTestDB(t)
	insertOrderAndNode(t, db)

	_, err := db.Exec(`INSERT INTO advance_assignments (id, node_id, advance_type, max_value, created_at, updated_at)
		VALUES ('a1', 'n1', 'units', '100', ?, ?)`, ts, ts)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO advance_assignments (id, node_id, advance_type, max_value, created_at, updated_at)
		VALUES ('a2', 'n1', 'units', '200', ?, ?)`, ts, ts)
	assert.Error(t, err)

	_, err = db.Exec(`INSERT INTO advance_assignments (id, node_id, advance_type, max_value, created_at, updated_at)
		VALUES ('a3', 'n1', 'nonexistent', '200', ?, ?)`, ts, ts)
	assert.Error(t, err, "advance type must exist")
}

func TestMigrate_DeletingNodeCascades(t *testing.T) {
	db := openTestDB(t)
	insertOrderAndNode(t, db)
	_, err := db.Exec(`INSERT INTO advance_assignments (id, node_id, advance_type, max_value, created_at, updated_at)
		VALUES ('a1', 'n1', 'units', '100', ?, ?)`, ts, ts)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO advance_measurements (id, assignment_id, date, value) VALUES ('m1', 'a1', '2025-01-02', '10')`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM work_nodes WHERE id = 'n1'`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM advance_measurements`).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM advance_assignments`).Scan(&n))
	assert.Zero(t, n)
}

func TestMigrate_BackfillsOrderSequences(t *testing.T) {
	db := openTestDB(t)
	insertOrderAndNode(t, db)
	_, err := db.Exec(`UPDATE work_nodes SET seq = 7 WHERE id = 'n1'`)
	require.NoError(t, err)

	require.NoError(t, migrateBackfillOrderSequences(db))

	var next int
	require.NoError(t, db.QueryRow(`SELECT next_seq FROM order_sequences WHERE order_id = 'o1'`).Scan(&next))
	assert.Equal(t, 8, next)
}
