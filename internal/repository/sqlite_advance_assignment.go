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

const assignmentColumns = `a.id, a.node_id, a.advance_type, a.max_value, a.report_global, a.created_at, a.updated_at`

const measurementColumns = `m.id, m.assignment_id, m.date, m.value, m.communication_date`

// SQLiteAdvanceAssignmentRepo implements AdvanceAssignmentRepo using a
// SQLite database. Assignments are always returned with their measurements,
// date ascending.
type SQLiteAdvanceAssignmentRepo struct {
	db db.DBTX
}

func NewSQLiteAdvanceAssignmentRepo(conn db.DBTX) *SQLiteAdvanceAssignmentRepo {
	return &SQLiteAdvanceAssignmentRepo{db: conn}
}

// Create inserts the assignment and any measurements it carries.
func (r *SQLiteAdvanceAssignmentRepo) Create(ctx context.Context, a *domain.DirectAdvanceAssignment) error {
	query := `INSERT INTO advance_assignments (id, node_id, advance_type, max_value, report_global, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.NodeID,
		a.AdvanceType,
		a.MaxValue.String(),
		a.ReportGlobalAdvance,
		a.CreatedAt.UTC().Format(time.RFC3339),
		a.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting advance assignment: %w", err)
	}
	for i := range a.Measurements {
		m := &a.Measurements[i]
		m.AssignmentID = a.ID
		if err := r.UpsertMeasurement(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteAdvanceAssignmentRepo) GetByID(ctx context.Context, id string) (*domain.DirectAdvanceAssignment, error) {
	return r.getOne(ctx, `SELECT `+assignmentColumns+` FROM advance_assignments a WHERE a.id = ?`, id)
}

func (r *SQLiteAdvanceAssignmentRepo) GetByNodeAndType(ctx context.Context, nodeID, typeName string) (*domain.DirectAdvanceAssignment, error) {
	return r.getOne(ctx,
		`SELECT `+assignmentColumns+` FROM advance_assignments a WHERE a.node_id = ? AND a.advance_type = ?`,
		nodeID, typeName)
}

func (r *SQLiteAdvanceAssignmentRepo) getOne(ctx context.Context, query string, args ...any) (*domain.DirectAdvanceAssignment, error) {
	a, err := scanAssignment(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	ms, err := r.ListMeasurements(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Measurements = ascending(ms)
	return a, nil
}

func (r *SQLiteAdvanceAssignmentRepo) ListByNode(ctx context.Context, nodeID string) ([]*domain.DirectAdvanceAssignment, error) {
	assignments, err := r.list(ctx,
		`SELECT `+assignmentColumns+` FROM advance_assignments a WHERE a.node_id = ? ORDER BY a.advance_type`, nodeID)
	if err != nil {
		return nil, err
	}
	err = r.attachMeasurements(ctx, assignments,
		`SELECT `+measurementColumns+` FROM advance_measurements m
		 JOIN advance_assignments a ON a.id = m.assignment_id
		 WHERE a.node_id = ? ORDER BY m.date`, nodeID)
	return assignments, err
}

// ListByOrder returns every assignment held by a node of the order.
func (r *SQLiteAdvanceAssignmentRepo) ListByOrder(ctx context.Context, orderID string) ([]*domain.DirectAdvanceAssignment, error) {
	assignments, err := r.list(ctx,
		`SELECT `+assignmentColumns+` FROM advance_assignments a
		 JOIN work_nodes n ON n.id = a.node_id
		 WHERE n.order_id = ? ORDER BY n.seq, a.advance_type`, orderID)
	if err != nil {
		return nil, err
	}
	err = r.attachMeasurements(ctx, assignments,
		`SELECT `+measurementColumns+` FROM advance_measurements m
		 JOIN advance_assignments a ON a.id = m.assignment_id
		 JOIN work_nodes n ON n.id = a.node_id
		 WHERE n.order_id = ? ORDER BY m.date`, orderID)
	return assignments, err
}

func (r *SQLiteAdvanceAssignmentRepo) list(ctx context.Context, query string, arg string) ([]*domain.DirectAdvanceAssignment, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("listing advance assignments: %w", err)
	}
	defer rows.Close()

	var out []*domain.DirectAdvanceAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteAdvanceAssignmentRepo) attachMeasurements(ctx context.Context, assignments []*domain.DirectAdvanceAssignment, query string, arg string) error {
	if len(assignments) == 0 {
		return nil
	}
	byID := make(map[string]*domain.DirectAdvanceAssignment, len(assignments))
	for _, a := range assignments {
		byID[a.ID] = a
	}

	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return fmt.Errorf("listing advance measurements: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return err
		}
		if a, ok := byID[m.AssignmentID]; ok {
			a.Measurements = append(a.Measurements, m)
		}
	}
	return rows.Err()
}

func (r *SQLiteAdvanceAssignmentRepo) Update(ctx context.Context, a *domain.DirectAdvanceAssignment) error {
	query := `UPDATE advance_assignments SET max_value = ?, report_global = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		a.MaxValue.String(), a.ReportGlobalAdvance, a.UpdatedAt.UTC().Format(time.RFC3339), a.ID)
	if err != nil {
		return fmt.Errorf("updating advance assignment: %w", err)
	}
	return requireAffected(res, "advance assignment")
}

// Delete removes the assignment and, by cascade, its measurements.
func (r *SQLiteAdvanceAssignmentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM advance_assignments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting advance assignment: %w", err)
	}
	return requireAffected(res, "advance assignment")
}

// UpsertMeasurement stores a measurement keyed by assignment and day. A
// measurement already stored for that day keeps its ID and takes the new
// value.
func (r *SQLiteAdvanceAssignmentRepo) UpsertMeasurement(ctx context.Context, m *domain.AdvanceMeasurement) error {
	query := `INSERT INTO advance_measurements (id, assignment_id, date, value, communication_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(assignment_id, date) DO UPDATE
		SET value = excluded.value, communication_date = excluded.communication_date`
	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.AssignmentID,
		m.Date.Format(dateLayout),
		m.Value.String(),
		nullableTimeToString(m.CommunicationDate, time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting advance measurement: %w", err)
	}
	return nil
}

func (r *SQLiteAdvanceAssignmentRepo) DeleteMeasurement(ctx context.Context, assignmentID string, date time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM advance_measurements WHERE assignment_id = ? AND date = ?`,
		assignmentID, date.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("deleting advance measurement: %w", err)
	}
	return requireAffected(res, "advance measurement")
}

// ListMeasurements returns the assignment's measurements latest first.
func (r *SQLiteAdvanceAssignmentRepo) ListMeasurements(ctx context.Context, assignmentID string) ([]domain.AdvanceMeasurement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+measurementColumns+` FROM advance_measurements m WHERE m.assignment_id = ? ORDER BY m.date DESC`,
		assignmentID)
	if err != nil {
		return nil, fmt.Errorf("listing advance measurements: %w", err)
	}
	defer rows.Close()

	var out []domain.AdvanceMeasurement
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func ascending(latestFirst []domain.AdvanceMeasurement) []domain.AdvanceMeasurement {
	out := make([]domain.AdvanceMeasurement, len(latestFirst))
	for i, m := range latestFirst {
		out[len(latestFirst)-1-i] = m
	}
	return out
}

func scanAssignment(row rowScanner) (*domain.DirectAdvanceAssignment, error) {
	var a domain.DirectAdvanceAssignment
	var max, createdAt, updatedAt string
	err := row.Scan(&a.ID, &a.NodeID, &a.AdvanceType, &max, &a.ReportGlobalAdvance, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("advance assignment: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning advance assignment: %w", err)
	}
	if a.MaxValue, err = parseDecimal(max, "max_value"); err != nil {
		return nil, fmt.Errorf("advance assignment %s: %w", a.ID, err)
	}
	if a.CreatedAt, a.UpdatedAt, err = parseTimestamps(createdAt, updatedAt); err != nil {
		return nil, fmt.Errorf("advance assignment %s: %w", a.ID, err)
	}
	return &a, nil
}

func scanMeasurement(row rowScanner) (domain.AdvanceMeasurement, error) {
	var m domain.AdvanceMeasurement
	var date, value string
	var communicated sql.NullString
	if err := row.Scan(&m.ID, &m.AssignmentID, &date, &value, &communicated); err != nil {
		return m, fmt.Errorf("scanning advance measurement: %w", err)
	}
	var err error
	if m.Date, err = time.Parse(dateLayout, date); err != nil {
		return m, fmt.Errorf("parsing measurement date %q: %w", date, err)
	}
	if m.Value, err = parseDecimal(value, "value"); err != nil {
		return m, err
	}
	m.CommunicationDate = parseNullableTime(communicated, time.RFC3339)
	return m, nil
}
