package app

import (
	"context"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/importer"
)

type ProgressUseCase interface {
	GetProgress(ctx context.Context, req ProgressRequest) (*ProgressResponse, error)
}

type ImportResult struct {
	Order            *domain.Order
	NodeCount        int
	AssignmentCount  int
	MeasurementCount int
}

type ImportOrderUseCase interface {
	ImportOrder(ctx context.Context, filePath string) (*ImportResult, error)
	ImportOrderFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error)
}
