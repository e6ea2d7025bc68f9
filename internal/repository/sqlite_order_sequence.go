package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/tally/internal/db"
)

// SQLiteOrderSequenceRepo allocates order-scoped node sequence values
// atomically using the order_sequences table.
type SQLiteOrderSequenceRepo struct {
	db db.DBTX
}

func NewSQLiteOrderSequenceRepo(conn db.DBTX) *SQLiteOrderSequenceRepo {
	return &SQLiteOrderSequenceRepo{db: conn}
}

// NextOrderSeq returns the next free seq for a node of the order. The
// allocator row is created on first use from the highest seq in use.
func (r *SQLiteOrderSequenceRepo) NextOrderSeq(ctx context.Context, orderID string) (int, error) {
	seedQuery := `INSERT OR IGNORE INTO order_sequences (order_id, next_seq)
		SELECT ?, COALESCE(MAX(seq), 0) + 1
		FROM work_nodes WHERE order_id = ? AND seq > 0`
	if _, err := r.db.ExecContext(ctx, seedQuery, orderID, orderID); err != nil {
		return 0, fmt.Errorf("seeding order sequence for %s: %w", orderID, err)
	}

	var next int
	allocQuery := `UPDATE order_sequences
		SET next_seq = next_seq + 1
		WHERE order_id = ?
		RETURNING next_seq - 1`
	if err := r.db.QueryRowContext(ctx, allocQuery, orderID).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocating next seq for order %s: %w", orderID, err)
	}
	return next, nil
}
