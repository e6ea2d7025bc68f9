package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/importer"
	"github.com/alexanderramin/tally/internal/repository"
)

type importService struct {
	orders repository.OrderRepo
	types  repository.AdvanceTypeRepo
	uow    db.UnitOfWork
	opts   options
}

func NewImportService(
	orders repository.OrderRepo,
	types repository.AdvanceTypeRepo,
	uow db.UnitOfWork,
	opts ...Option,
) ImportService {
	return &importService{
		orders: orders,
		types:  types,
		uow:    uow,
		opts:   buildOptions(opts),
	}
}

func (s *importService) ImportOrder(ctx context.Context, filePath string) (*ImportResult, error) {
	schema, err := importer.LoadImportFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.importSchema(ctx, schema)
}

func (s *importService) ImportOrderFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error) {
	return s.importSchema(ctx, schema)
}

func (s *importService) importSchema(ctx context.Context, schema *importer.ImportSchema) (result *ImportResult, err error) {
	fields := map[string]any{"order_code": schema.Order.Code}
	defer observe(ctx, s.opts.observer, "import-order", time.Now(), fields, &err)

	stored, err := s.types.List(ctx)
	if err != nil {
		return nil, err
	}
	known := make([]domain.AdvanceType, len(stored))
	for i, at := range stored {
		known[i] = *at
	}

	if errs := importer.ValidateImportSchema(schema, known...); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	generated, err := importer.Convert(schema, known...)
	if err != nil {
		return nil, fmt.Errorf("converting import schema: %w", err)
	}
	if _, err := s.orders.GetByCode(ctx, generated.Order.Code); err == nil {
		return nil, fmt.Errorf("order code %q already exists", generated.Order.Code)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// The engine checks what the file format cannot: one type per
	// root-to-leaf path and values within their max.
	allTypes := append(stored, generated.AdvanceTypes...)
	if _, err := buildOrderTree(generated.Order, generated.Nodes, allTypes, generated.Assignments); err != nil {
		return nil, fmt.Errorf("import rejected: %w", err)
	}

	measurements := 0
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTypes := repository.NewSQLiteAdvanceTypeRepo(tx)
		for _, at := range generated.AdvanceTypes {
			if err := txTypes.Create(ctx, at); err != nil {
				return fmt.Errorf("creating advance type %q: %w", at.Name, err)
			}
		}
		if err := repository.NewSQLiteOrderRepo(tx).Create(ctx, generated.Order); err != nil {
			return fmt.Errorf("creating order: %w", err)
		}
		txNodes := repository.NewSQLiteWorkNodeRepo(tx)
		for _, n := range generated.Nodes {
			if err := txNodes.Create(ctx, n); err != nil {
				return fmt.Errorf("creating node %q: %w", n.Name, err)
			}
		}
		txAssignments := repository.NewSQLiteAdvanceAssignmentRepo(tx)
		for _, a := range generated.Assignments {
			if err := txAssignments.Create(ctx, a); err != nil {
				return fmt.Errorf("creating %s assignment: %w", a.AdvanceType, err)
			}
			measurements += len(a.Measurements)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields["nodes"] = len(generated.Nodes)
	fields["assignments"] = len(generated.Assignments)
	return &ImportResult{
		Order:            generated.Order,
		NodeCount:        len(generated.Nodes),
		AssignmentCount:  len(generated.Assignments),
		MeasurementCount: measurements,
	}, nil
}
