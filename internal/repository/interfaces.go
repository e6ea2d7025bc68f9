package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
)

type OrderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByCode(ctx context.Context, code string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	Delete(ctx context.Context, id string) error
}

type WorkNodeRepo interface {
	Create(ctx context.Context, n *domain.WorkNode) error
	GetByID(ctx context.Context, id string) (*domain.WorkNode, error)
	GetBySeq(ctx context.Context, orderID string, seq int) (*domain.WorkNode, error)
	ListByOrder(ctx context.Context, orderID string) ([]*domain.WorkNode, error)
	ListChildren(ctx context.Context, parentID string) ([]*domain.WorkNode, error)
	ListRoots(ctx context.Context, orderID string) ([]*domain.WorkNode, error)
	Update(ctx context.Context, n *domain.WorkNode) error
	Delete(ctx context.Context, id string) error
}

type OrderSequenceRepo interface {
	NextOrderSeq(ctx context.Context, orderID string) (int, error)
}

type AdvanceTypeRepo interface {
	Create(ctx context.Context, t *domain.AdvanceType) error
	Get(ctx context.Context, name string) (*domain.AdvanceType, error)
	List(ctx context.Context) ([]*domain.AdvanceType, error)
	Update(ctx context.Context, t *domain.AdvanceType) error
	Delete(ctx context.Context, name string) error
}

type AdvanceAssignmentRepo interface {
	Create(ctx context.Context, a *domain.DirectAdvanceAssignment) error
	GetByID(ctx context.Context, id string) (*domain.DirectAdvanceAssignment, error)
	GetByNodeAndType(ctx context.Context, nodeID, typeName string) (*domain.DirectAdvanceAssignment, error)
	ListByNode(ctx context.Context, nodeID string) ([]*domain.DirectAdvanceAssignment, error)
	ListByOrder(ctx context.Context, orderID string) ([]*domain.DirectAdvanceAssignment, error)
	Update(ctx context.Context, a *domain.DirectAdvanceAssignment) error
	Delete(ctx context.Context, id string) error

	UpsertMeasurement(ctx context.Context, m *domain.AdvanceMeasurement) error
	DeleteMeasurement(ctx context.Context, assignmentID string, date time.Time) error
	ListMeasurements(ctx context.Context, assignmentID string) ([]domain.AdvanceMeasurement, error)
}
