package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tally/internal/advance"
	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/google/uuid"
)

// treeRepos are the stores an order tree is loaded from and written to.
type treeRepos struct {
	orders      repository.OrderRepo
	nodes       repository.WorkNodeRepo
	types       repository.AdvanceTypeRepo
	assignments repository.AdvanceAssignmentRepo
}

func txRepos(tx db.DBTX) treeRepos {
	return treeRepos{
		orders:      repository.NewSQLiteOrderRepo(tx),
		nodes:       repository.NewSQLiteWorkNodeRepo(tx),
		types:       repository.NewSQLiteAdvanceTypeRepo(tx),
		assignments: repository.NewSQLiteAdvanceAssignmentRepo(tx),
	}
}

type assignmentKey struct {
	nodeID   string
	typeName string
}

// orderTree is an order loaded into the aggregation engine together with
// the rows it was built from. The order itself is the engine's root.
type orderTree struct {
	order       *domain.Order
	tree        *advance.Tree
	nodes       []*domain.WorkNode // pre-order
	byID        map[string]*domain.WorkNode
	handles     map[string]advance.NodeID
	assignments map[assignmentKey]*domain.DirectAdvanceAssignment
}

func loadOrderTree(ctx context.Context, r treeRepos, orderID string, opts ...advance.Option) (*orderTree, error) {
	rows, err := loadOrderRows(ctx, r, orderID)
	if err != nil {
		return nil, err
	}
	return rows.build(opts...)
}

// orderRows are the stored rows an order tree is built from.
type orderRows struct {
	order       *domain.Order
	nodes       []*domain.WorkNode
	types       []*domain.AdvanceType
	assignments []*domain.DirectAdvanceAssignment
}

func loadOrderRows(ctx context.Context, r treeRepos, orderID string) (*orderRows, error) {
	order, err := r.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("loading order: %w", err)
	}
	nodes, err := r.nodes.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	types, err := r.types.List(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := r.assignments.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &orderRows{order: order, nodes: nodes, types: types, assignments: assignments}, nil
}

func (rows *orderRows) build(opts ...advance.Option) (*orderTree, error) {
	return buildOrderTree(rows.order, rows.nodes, rows.types, rows.assignments, opts...)
}

// replaceNode swaps in an edited version of a stored node.
func (rows *orderRows) replaceNode(n *domain.WorkNode) {
	for i, cur := range rows.nodes {
		if cur.ID == n.ID {
			rows.nodes[i] = n
			return
		}
	}
}

// replaceType swaps in an edited version of a registered advance type.
func (rows *orderRows) replaceType(at *domain.AdvanceType) {
	for i, cur := range rows.types {
		if cur.Name == at.Name {
			rows.types[i] = at
			return
		}
	}
}

// buildOrderTree replays stored rows through the engine, so rows that break
// an engine rule are rejected here.
func buildOrderTree(
	order *domain.Order,
	nodes []*domain.WorkNode,
	types []*domain.AdvanceType,
	assignments []*domain.DirectAdvanceAssignment,
	opts ...advance.Option,
) (*orderTree, error) {
	opts = append([]advance.Option{advance.WithWeightBasis(order.WeightBasis)}, opts...)
	ot := &orderTree{
		order:       order,
		tree:        advance.NewTree(advance.NodeSpec{Key: order.ID, Name: order.Name}, opts...),
		nodes:       make([]*domain.WorkNode, 0, len(nodes)),
		byID:        make(map[string]*domain.WorkNode, len(nodes)),
		handles:     make(map[string]advance.NodeID, len(nodes)),
		assignments: make(map[assignmentKey]*domain.DirectAdvanceAssignment, len(assignments)),
	}

	for _, at := range types {
		if err := ot.tree.RegisterType(*at); err != nil {
			return nil, err
		}
	}

	children := make(map[string][]*domain.WorkNode)
	for _, n := range nodes {
		parent := ""
		if n.ParentID != nil {
			parent = *n.ParentID
		}
		children[parent] = append(children[parent], n)
	}
	var attach func(parentKey string, parent advance.NodeID) error
	attach = func(parentKey string, parent advance.NodeID) error {
		for _, n := range children[parentKey] {
			h, err := ot.tree.AddNode(parent, advance.NodeSpec{
				Key:    n.ID,
				Name:   n.Name,
				Hours:  n.Hours,
				Budget: n.Budget,
			})
			if err != nil {
				return fmt.Errorf("node #%d: %w", n.Seq, err)
			}
			ot.nodes = append(ot.nodes, n)
			ot.byID[n.ID] = n
			ot.handles[n.ID] = h
			if err := attach(n.ID, h); err != nil {
				return err
			}
		}
		return nil
	}
	if err := attach("", ot.tree.Root()); err != nil {
		return nil, err
	}
	if len(ot.nodes) != len(nodes) {
		return nil, fmt.Errorf("order %s: %d nodes are not reachable from the order", order.DisplayID(), len(nodes)-len(ot.nodes))
	}

	for _, a := range assignments {
		n, ok := ot.byID[a.NodeID]
		if !ok {
			return nil, fmt.Errorf("assignment %s: node %s is not part of order %s", a.ID, a.NodeID, order.DisplayID())
		}
		h := ot.handles[a.NodeID]
		if err := ot.tree.AddAdvanceAssignment(h, advance.NewAssignment(a.AdvanceType, a.MaxValue, a.ReportGlobalAdvance)); err != nil {
			return nil, fmt.Errorf("node #%d %s assignment: %w", n.Seq, a.AdvanceType, err)
		}
		for _, m := range a.Measurements {
			if err := ot.tree.AddMeasurement(h, a.AdvanceType, m.Date, m.Value); err != nil {
				return nil, fmt.Errorf("node #%d %s measurement %s: %w", n.Seq, a.AdvanceType, m.Date.Format(dateLayout), err)
			}
		}
		ot.assignments[assignmentKey{a.NodeID, a.AdvanceType}] = a
	}
	return ot, nil
}

// handle resolves a work node of the order to its engine handle.
func (ot *orderTree) handle(nodeID string) (advance.NodeID, error) {
	h, ok := ot.handles[nodeID]
	if !ok {
		return advance.NoNode, fmt.Errorf("node %s is not part of order %s: %w", nodeID, ot.order.DisplayID(), repository.ErrNotFound)
	}
	return h, nil
}

// persist writes the engine's direct assignments back, touching only rows
// that differ from what was loaded. New and changed measurements are stamped
// with now as their communication date.
func (ot *orderTree) persist(ctx context.Context, repo repository.AdvanceAssignmentRepo, now time.Time) error {
	for _, n := range ot.nodes {
		current := ot.tree.DirectAdvanceAssignments(ot.handles[n.ID])
		kept := make(map[string]bool, len(current))

		for _, a := range current {
			kept[a.Type] = true
			row, ok := ot.assignments[assignmentKey{n.ID, a.Type}]
			if !ok {
				if err := repo.Create(ctx, newAssignmentRow(n.ID, a, now)); err != nil {
					return err
				}
				continue
			}
			if !row.MaxValue.Equal(a.MaxValue) || row.ReportGlobalAdvance != a.ReportGlobalAdvance {
				row.MaxValue = a.MaxValue
				row.ReportGlobalAdvance = a.ReportGlobalAdvance
				row.UpdatedAt = now
				if err := repo.Update(ctx, row); err != nil {
					return err
				}
			}
			if err := syncMeasurements(ctx, repo, row, a, now); err != nil {
				return err
			}
		}

		for key, row := range ot.assignments {
			if key.nodeID == n.ID && !kept[key.typeName] {
				if err := repo.Delete(ctx, row.ID); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func newAssignmentRow(nodeID string, a *advance.Assignment, now time.Time) *domain.DirectAdvanceAssignment {
	row := &domain.DirectAdvanceAssignment{
		ID:                  uuid.New().String(),
		NodeID:              nodeID,
		AdvanceType:         a.Type,
		MaxValue:            a.MaxValue,
		ReportGlobalAdvance: a.ReportGlobalAdvance,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	for _, p := range a.Measurements() {
		row.Measurements = append(row.Measurements, newMeasurementRow(row.ID, "", p, now))
	}
	return row
}

func newMeasurementRow(assignmentID, id string, p advance.Point, now time.Time) domain.AdvanceMeasurement {
	communicated := now
	return domain.AdvanceMeasurement{
		ID:                domain.Coalesce(id, uuid.New().String()),
		AssignmentID:      assignmentID,
		Date:              p.Date,
		Value:             p.Value,
		CommunicationDate: &communicated,
	}
}

func syncMeasurements(ctx context.Context, repo repository.AdvanceAssignmentRepo, row *domain.DirectAdvanceAssignment, a *advance.Assignment, now time.Time) error {
	stored := make(map[string]domain.AdvanceMeasurement, len(row.Measurements))
	for _, m := range row.Measurements {
		stored[m.Date.Format(dateLayout)] = m
	}

	for _, p := range a.Measurements() {
		day := p.Date.Format(dateLayout)
		m, ok := stored[day]
		delete(stored, day)
		if ok && m.Value.Equal(p.Value) {
			continue
		}
		next := newMeasurementRow(row.ID, m.ID, p, now)
		if err := repo.UpsertMeasurement(ctx, &next); err != nil {
			return err
		}
	}

	for _, m := range stored {
		if err := repo.DeleteMeasurement(ctx, row.ID, m.Date); err != nil {
			return err
		}
	}
	return nil
}
