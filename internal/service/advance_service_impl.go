package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tally/internal/advance"
	"github.com/alexanderramin/tally/internal/contract"
	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/shopspring/decimal"
)

type advanceService struct {
	repos treeRepos
	uow   db.UnitOfWork
	opts  options
}

func NewAdvanceService(
	orders repository.OrderRepo,
	nodes repository.WorkNodeRepo,
	types repository.AdvanceTypeRepo,
	assignments repository.AdvanceAssignmentRepo,
	uow db.UnitOfWork,
	opts ...Option,
) AdvanceService {
	return &advanceService{
		repos: treeRepos{orders: orders, nodes: nodes, types: types, assignments: assignments},
		uow:   uow,
		opts:  buildOptions(opts),
	}
}

// mutate loads the node's order inside a transaction, applies fn through the
// engine and writes back whatever changed.
func (s *advanceService) mutate(ctx context.Context, nodeID string, fn func(ot *orderTree, h advance.NodeID) error) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := txRepos(tx)
		ot, h, err := s.load(ctx, repos, nodeID)
		if err != nil {
			return err
		}
		if err := fn(ot, h); err != nil {
			return err
		}
		return ot.persist(ctx, repos.assignments, s.opts.now().UTC())
	})
}

func (s *advanceService) load(ctx context.Context, repos treeRepos, nodeID string) (*orderTree, advance.NodeID, error) {
	node, err := repos.nodes.GetByID(ctx, nodeID)
	if err != nil {
		return nil, advance.NoNode, err
	}
	ot, err := loadOrderTree(ctx, repos, node.OrderID, s.opts.treeOptions()...)
	if err != nil {
		return nil, advance.NoNode, err
	}
	h, err := ot.handle(node.ID)
	if err != nil {
		return nil, advance.NoNode, err
	}
	return ot, h, nil
}

func (s *advanceService) AddAssignment(ctx context.Context, nodeID, typeName string, maxValue *decimal.Decimal, reportGlobal bool) (created *domain.DirectAdvanceAssignment, err error) {
	fields := map[string]any{"node_id": nodeID, "type": typeName}
	defer observe(ctx, s.opts.observer, "add-assignment", time.Now(), fields, &err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := txRepos(tx)
		ot, h, err := s.load(ctx, repos, nodeID)
		if err != nil {
			return err
		}
		if typeName == domain.AdvanceTypeChildren {
			return advance.ErrChildrenTypeNotAssignable
		}
		at, ok := ot.tree.Type(typeName)
		if !ok {
			return fmt.Errorf("advance type %q: %w", typeName, advance.ErrUnknownAdvanceType)
		}
		if !at.Active {
			return fmt.Errorf("advance type %q is inactive", typeName)
		}
		max := at.DefaultMaxValue
		if maxValue != nil {
			max = *maxValue
		}
		if err := ot.tree.AddAdvanceAssignment(h, advance.NewAssignment(typeName, max, reportGlobal)); err != nil {
			return err
		}
		if err := ot.persist(ctx, repos.assignments, s.opts.now().UTC()); err != nil {
			return err
		}
		created, err = repos.assignments.GetByNodeAndType(ctx, nodeID, typeName)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RemoveAssignment deletes the assignment with its measurements. When it
// reported global advance and one assignment remains, that one takes over.
func (s *advanceService) RemoveAssignment(ctx context.Context, nodeID, typeName string) (err error) {
	defer observe(ctx, s.opts.observer, "remove-assignment", time.Now(), map[string]any{"node_id": nodeID, "type": typeName}, &err)

	return s.mutate(ctx, nodeID, func(ot *orderTree, h advance.NodeID) error {
		return ot.tree.RemoveAdvanceAssignment(h, typeName)
	})
}

func (s *advanceService) SetGlobal(ctx context.Context, nodeID, typeName string) (err error) {
	defer observe(ctx, s.opts.observer, "set-global", time.Now(), map[string]any{"node_id": nodeID, "type": typeName}, &err)

	return s.mutate(ctx, nodeID, func(ot *orderTree, h advance.NodeID) error {
		if err := ot.tree.ClearReportGlobalAdvance(h); err != nil {
			return err
		}
		if typeName == "" {
			return nil
		}
		return ot.tree.SetReportGlobalAdvance(h, typeName, true)
	})
}

func (s *advanceService) UpdateMaxValue(ctx context.Context, nodeID, typeName string, maxValue decimal.Decimal) (err error) {
	fields := map[string]any{"node_id": nodeID, "type": typeName, "max_value": maxValue.String()}
	defer observe(ctx, s.opts.observer, "update-max-value", time.Now(), fields, &err)

	return s.mutate(ctx, nodeID, func(ot *orderTree, h advance.NodeID) error {
		return ot.tree.UpdateMaxValue(h, typeName, maxValue)
	})
}

// AddMeasurement records value on date, replacing a value already recorded
// for that day.
func (s *advanceService) AddMeasurement(ctx context.Context, nodeID, typeName string, date time.Time, value decimal.Decimal) (err error) {
	fields := map[string]any{"node_id": nodeID, "type": typeName, "date": date.Format(dateLayout)}
	defer observe(ctx, s.opts.observer, "add-measurement", time.Now(), fields, &err)

	return s.mutate(ctx, nodeID, func(ot *orderTree, h advance.NodeID) error {
		return ot.tree.AddMeasurement(h, typeName, date, value)
	})
}

func (s *advanceService) RemoveMeasurement(ctx context.Context, nodeID, typeName string, date time.Time) (err error) {
	fields := map[string]any{"node_id": nodeID, "type": typeName, "date": date.Format(dateLayout)}
	defer observe(ctx, s.opts.observer, "remove-measurement", time.Now(), fields, &err)

	return s.mutate(ctx, nodeID, func(ot *orderTree, h advance.NodeID) error {
		return ot.tree.RemoveMeasurement(h, typeName, date)
	})
}

func (s *advanceService) ListAssignments(ctx context.Context, nodeID string, at time.Time) ([]contract.AssignmentView, error) {
	ot, h, err := s.load(ctx, s.repos, nodeID)
	if err != nil {
		return nil, err
	}
	direct := ot.tree.DirectAdvanceAssignments(h)
	views := make([]contract.AssignmentView, 0, len(direct))
	for _, a := range direct {
		views = append(views, assignmentView(ot, nodeID, a, at))
	}
	return views, nil
}

// Indirect lists the assignments the node derives from its descendants.
// Lines have none.
func (s *advanceService) Indirect(ctx context.Context, nodeID string, at time.Time) ([]contract.IndirectView, error) {
	ot, h, err := s.load(ctx, s.repos, nodeID)
	if err != nil {
		return nil, err
	}
	return indirectViews(ot.tree, h, at)
}

// Fake returns the consolidated series of one indirect assignment.
func (s *advanceService) Fake(ctx context.Context, nodeID, typeName string, at time.Time) (*contract.IndirectView, error) {
	ot, h, err := s.load(ctx, s.repos, nodeID)
	if err != nil {
		return nil, err
	}
	ia, err := ot.tree.IndirectAdvanceAssignment(h, typeName)
	if err != nil {
		return nil, err
	}
	view, err := indirectView(ot.tree, h, ia, at)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *advanceService) Percentage(ctx context.Context, nodeID string, at time.Time) (decimal.Decimal, error) {
	ot, h, err := s.load(ctx, s.repos, nodeID)
	if err != nil {
		return decimal.Zero, err
	}
	return ot.tree.AdvancePercentageAt(h, at), nil
}
