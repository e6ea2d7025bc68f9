package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/domain"
)

const advanceTypeColumns = `name, default_max_value, precision, percentage, updatable, active, predefined`

// SQLiteAdvanceTypeRepo implements AdvanceTypeRepo using a SQLite database.
type SQLiteAdvanceTypeRepo struct {
	db db.DBTX
}

func NewSQLiteAdvanceTypeRepo(conn db.DBTX) *SQLiteAdvanceTypeRepo {
	return &SQLiteAdvanceTypeRepo{db: conn}
}

func (r *SQLiteAdvanceTypeRepo) Create(ctx context.Context, t *domain.AdvanceType) error {
	query := `INSERT INTO advance_types (` + advanceTypeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.Name,
		t.DefaultMaxValue.String(),
		t.Precision,
		t.Percentage,
		t.Updatable,
		t.Active,
		t.Predefined,
	)
	if err != nil {
		return fmt.Errorf("inserting advance type: %w", err)
	}
	return nil
}

func (r *SQLiteAdvanceTypeRepo) Get(ctx context.Context, name string) (*domain.AdvanceType, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+advanceTypeColumns+` FROM advance_types WHERE name = ?`, name)
	return scanAdvanceType(row)
}

func (r *SQLiteAdvanceTypeRepo) List(ctx context.Context) ([]*domain.AdvanceType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+advanceTypeColumns+` FROM advance_types ORDER BY predefined DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("listing advance types: %w", err)
	}
	defer rows.Close()

	var types []*domain.AdvanceType
	for rows.Next() {
		t, err := scanAdvanceType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// Update changes the limits and flags of a type. The name is the key and
// predefined stays as stored.
func (r *SQLiteAdvanceTypeRepo) Update(ctx context.Context, t *domain.AdvanceType) error {
	query := `UPDATE advance_types SET default_max_value = ?, precision = ?, percentage = ?,
		updatable = ?, active = ? WHERE name = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.DefaultMaxValue.String(), t.Precision, t.Percentage, t.Updatable, t.Active, t.Name)
	if err != nil {
		return fmt.Errorf("updating advance type: %w", err)
	}
	return requireAffected(res, "advance type")
}

func (r *SQLiteAdvanceTypeRepo) Delete(ctx context.Context, name string) error {
	existing, err := r.Get(ctx, name)
	if err != nil {
		return err
	}
	if existing.Predefined {
		return fmt.Errorf("advance type %q: %w", name, ErrPredefinedType)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM advance_types WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting advance type: %w", err)
	}
	return nil
}

func scanAdvanceType(row rowScanner) (*domain.AdvanceType, error) {
	var t domain.AdvanceType
	var max string
	err := row.Scan(&t.Name, &max, &t.Precision, &t.Percentage, &t.Updatable, &t.Active, &t.Predefined)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("advance type: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning advance type: %w", err)
	}
	if t.DefaultMaxValue, err = parseDecimal(max, "default_max_value"); err != nil {
		return nil, fmt.Errorf("advance type %s: %w", t.Name, err)
	}
	return &t, nil
}
