package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/google/uuid"
)

type orderService struct {
	orders repository.OrderRepo
	opts   options
}

func NewOrderService(orders repository.OrderRepo, opts ...Option) OrderService {
	return &orderService{orders: orders, opts: buildOptions(opts)}
}

func (s *orderService) Create(ctx context.Context, o *domain.Order) error {
	o.Code = strings.ToUpper(o.Code)
	if err := o.ValidateCode(); err != nil {
		return err
	}
	if err := validateOrder(o, s.opts.weightBasis); err != nil {
		return err
	}
	if existing, err := s.orders.GetByCode(ctx, o.Code); err == nil {
		return fmt.Errorf("order code %q is already used by %q", o.Code, existing.Name)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	return s.orders.Create(ctx, o)
}

func (s *orderService) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *orderService) GetByCode(ctx context.Context, code string) (*domain.Order, error) {
	return s.orders.GetByCode(ctx, code)
}

func (s *orderService) List(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.List(ctx)
}

func (s *orderService) Update(ctx context.Context, o *domain.Order) error {
	if err := validateOrder(o, domain.WeightHours); err != nil {
		return err
	}
	o.UpdatedAt = time.Now().UTC()
	return s.orders.Update(ctx, o)
}

// Delete removes the order with its nodes, assignments and measurements.
func (s *orderService) Delete(ctx context.Context, id string) error {
	return s.orders.Delete(ctx, id)
}

func validateOrder(o *domain.Order, defaultBasis domain.WeightBasis) error {
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("order name is required")
	}
	if o.WeightBasis == "" {
		o.WeightBasis = defaultBasis
	}
	if !domain.ValidWeightBases[string(o.WeightBasis)] {
		return fmt.Errorf("invalid weight basis %q (use hours or budget)", o.WeightBasis)
	}
	return nil
}
