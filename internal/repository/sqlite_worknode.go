package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/domain"
)

// workNodeColumns is the canonical SELECT column list for work_nodes.
const workNodeColumns = `id, order_id, parent_id, seq, code, name, kind, order_index,
		hours, budget, created_at, updated_at`

// SQLiteWorkNodeRepo implements WorkNodeRepo using a SQLite database.
type SQLiteWorkNodeRepo struct {
	db db.DBTX
}

func NewSQLiteWorkNodeRepo(conn db.DBTX) *SQLiteWorkNodeRepo {
	return &SQLiteWorkNodeRepo{db: conn}
}

func (r *SQLiteWorkNodeRepo) Create(ctx context.Context, n *domain.WorkNode) error {
	query := `INSERT INTO work_nodes (` + workNodeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.OrderID,
		n.ParentID, // *string: nil becomes SQL NULL
		n.Seq,
		n.Code,
		n.Name,
		string(n.Kind),
		n.OrderIndex,
		n.Hours,
		n.Budget.String(),
		n.CreatedAt.UTC().Format(time.RFC3339),
		n.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting work node: %w", err)
	}
	return nil
}

func (r *SQLiteWorkNodeRepo) GetByID(ctx context.Context, id string) (*domain.WorkNode, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+workNodeColumns+` FROM work_nodes WHERE id = ?`, id)
	return scanWorkNode(row)
}

func (r *SQLiteWorkNodeRepo) GetBySeq(ctx context.Context, orderID string, seq int) (*domain.WorkNode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+workNodeColumns+` FROM work_nodes WHERE order_id = ? AND seq = ?`, orderID, seq)
	return scanWorkNode(row)
}

func (r *SQLiteWorkNodeRepo) ListByOrder(ctx context.Context, orderID string) ([]*domain.WorkNode, error) {
	return r.list(ctx, "listing work nodes by order",
		`SELECT `+workNodeColumns+` FROM work_nodes WHERE order_id = ? ORDER BY order_index, seq`, orderID)
}

func (r *SQLiteWorkNodeRepo) ListChildren(ctx context.Context, parentID string) ([]*domain.WorkNode, error) {
	return r.list(ctx, "listing child work nodes",
		`SELECT `+workNodeColumns+` FROM work_nodes WHERE parent_id = ? ORDER BY order_index, seq`, parentID)
}

func (r *SQLiteWorkNodeRepo) ListRoots(ctx context.Context, orderID string) ([]*domain.WorkNode, error) {
	return r.list(ctx, "listing root work nodes",
		`SELECT `+workNodeColumns+` FROM work_nodes WHERE order_id = ? AND parent_id IS NULL ORDER BY order_index, seq`, orderID)
}

func (r *SQLiteWorkNodeRepo) list(ctx context.Context, what, query string, arg string) ([]*domain.WorkNode, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	var nodes []*domain.WorkNode
	for rows.Next() {
		n, err := scanWorkNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (r *SQLiteWorkNodeRepo) Update(ctx context.Context, n *domain.WorkNode) error {
	query := `UPDATE work_nodes SET parent_id = ?, seq = ?, code = ?, name = ?, kind = ?,
		order_index = ?, hours = ?, budget = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		n.ParentID,
		n.Seq,
		n.Code,
		n.Name,
		string(n.Kind),
		n.OrderIndex,
		n.Hours,
		n.Budget.String(),
		n.UpdatedAt.UTC().Format(time.RFC3339),
		n.ID,
	)
	if err != nil {
		return fmt.Errorf("updating work node: %w", err)
	}
	return requireAffected(res, "work node")
}

// Delete removes the node; children, assignments and measurements follow
// through cascading foreign keys.
func (r *SQLiteWorkNodeRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM work_nodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting work node: %w", err)
	}
	return requireAffected(res, "work node")
}

func scanWorkNode(row rowScanner) (*domain.WorkNode, error) {
	var n domain.WorkNode
	var parentID sql.NullString
	var kind, budget, createdAt, updatedAt string

	err := row.Scan(
		&n.ID, &n.OrderID, &parentID, &n.Seq, &n.Code, &n.Name, &kind, &n.OrderIndex,
		&n.Hours, &budget, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("work node: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning work node: %w", err)
	}

	if parentID.Valid {
		p := parentID.String
		n.ParentID = &p
	}
	n.Kind = domain.NodeKind(kind)
	if n.Budget, err = parseDecimal(budget, "budget"); err != nil {
		return nil, fmt.Errorf("work node %s: %w", n.ID, err)
	}
	if n.CreatedAt, n.UpdatedAt, err = parseTimestamps(createdAt, updatedAt); err != nil {
		return nil, fmt.Errorf("work node %s: %w", n.ID, err)
	}
	return &n, nil
}
