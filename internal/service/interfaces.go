package service

import (
	"context"
	"time"

	"github.com/alexanderramin/tally/internal/app"
	"github.com/alexanderramin/tally/internal/contract"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/importer"
	"github.com/shopspring/decimal"
)

type OrderService interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByCode(ctx context.Context, code string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	Delete(ctx context.Context, id string) error
}

type NodeService interface {
	Create(ctx context.Context, n *domain.WorkNode) error
	GetByID(ctx context.Context, id string) (*domain.WorkNode, error)
	GetBySeq(ctx context.Context, orderID string, seq int) (*domain.WorkNode, error)
	ListByOrder(ctx context.Context, orderID string) ([]*domain.WorkNode, error)
	ListChildren(ctx context.Context, parentID string) ([]*domain.WorkNode, error)
	Update(ctx context.Context, n *domain.WorkNode) error
	Delete(ctx context.Context, id string) error
}

type AdvanceTypeService interface {
	Create(ctx context.Context, t *domain.AdvanceType) error
	Get(ctx context.Context, name string) (*domain.AdvanceType, error)
	List(ctx context.Context) ([]*domain.AdvanceType, error)
	Update(ctx context.Context, t *domain.AdvanceType) error
	Delete(ctx context.Context, name string) error
}

// AdvanceService applies advance operations to a node through the
// aggregation engine and persists the outcome.
type AdvanceService interface {
	// AddAssignment creates a direct assignment. A nil maxValue takes the
	// type's default.
	AddAssignment(ctx context.Context, nodeID, typeName string, maxValue *decimal.Decimal, reportGlobal bool) (*domain.DirectAdvanceAssignment, error)
	RemoveAssignment(ctx context.Context, nodeID, typeName string) error
	// SetGlobal makes typeName the node's global assignment. An empty
	// typeName leaves the node without one.
	SetGlobal(ctx context.Context, nodeID, typeName string) error
	UpdateMaxValue(ctx context.Context, nodeID, typeName string, maxValue decimal.Decimal) error
	AddMeasurement(ctx context.Context, nodeID, typeName string, date time.Time, value decimal.Decimal) error
	RemoveMeasurement(ctx context.Context, nodeID, typeName string, date time.Time) error

	ListAssignments(ctx context.Context, nodeID string, at time.Time) ([]contract.AssignmentView, error)
	Indirect(ctx context.Context, nodeID string, at time.Time) ([]contract.IndirectView, error)
	Fake(ctx context.Context, nodeID, typeName string, at time.Time) (*contract.IndirectView, error)
	Percentage(ctx context.Context, nodeID string, at time.Time) (decimal.Decimal, error)
}

type ProgressService interface {
	GetProgress(ctx context.Context, req contract.ProgressRequest) (*contract.ProgressResponse, error)
}

// ImportResult holds the outcome of an order import.
type ImportResult = app.ImportResult

type ImportService interface {
	ImportOrder(ctx context.Context, filePath string) (*ImportResult, error)
	ImportOrderFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error)
}
