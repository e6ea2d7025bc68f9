package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/repository"
)

type advanceTypeService struct {
	types repository.AdvanceTypeRepo
	uow   db.UnitOfWork
}

func NewAdvanceTypeService(types repository.AdvanceTypeRepo, uow db.UnitOfWork) AdvanceTypeService {
	return &advanceTypeService{types: types, uow: uow}
}

// Create registers a custom advance type. Custom types are updatable and
// active unless the caller says otherwise through Update.
func (s *advanceTypeService) Create(ctx context.Context, t *domain.AdvanceType) error {
	t.Name = strings.TrimSpace(t.Name)
	if err := validateAdvanceType(t); err != nil {
		return err
	}
	t.Predefined = false
	t.Updatable = true
	t.Active = true
	return s.types.Create(ctx, t)
}

func (s *advanceTypeService) Get(ctx context.Context, name string) (*domain.AdvanceType, error) {
	return s.types.Get(ctx, name)
}

func (s *advanceTypeService) List(ctx context.Context) ([]*domain.AdvanceType, error) {
	return s.types.List(ctx)
}

// Update changes a custom type. Predefined types are fixed. Every order is
// replayed with the changed type, so a new limit below a stored max value or
// measurement is rejected.
func (s *advanceTypeService) Update(ctx context.Context, t *domain.AdvanceType) error {
	if err := validateAdvanceType(t); err != nil {
		return err
	}
	t.Predefined = false

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repos := txRepos(tx)
		current, err := repos.types.Get(ctx, t.Name)
		if err != nil {
			return err
		}
		if current.Predefined {
			return fmt.Errorf("advance type %q: %w", t.Name, repository.ErrPredefinedType)
		}

		orders, err := repos.orders.List(ctx)
		if err != nil {
			return err
		}
		for _, o := range orders {
			rows, err := loadOrderRows(ctx, repos, o.ID)
			if err != nil {
				return err
			}
			rows.replaceType(t)
			if _, err := rows.build(); err != nil {
				return fmt.Errorf("advance type %q in order %s: %w", t.Name, o.DisplayID(), err)
			}
		}
		return repos.types.Update(ctx, t)
	})
}

func (s *advanceTypeService) Delete(ctx context.Context, name string) error {
	return s.types.Delete(ctx, name)
}

func validateAdvanceType(t *domain.AdvanceType) error {
	if t.Name == "" {
		return fmt.Errorf("advance type name is required")
	}
	if !t.DefaultMaxValue.IsPositive() {
		return fmt.Errorf("advance type %q max value must be positive (got %s)", t.Name, t.DefaultMaxValue)
	}
	if t.Precision < 0 {
		return fmt.Errorf("advance type %q precision must not be negative", t.Name)
	}
	return nil
}
