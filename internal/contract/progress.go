package contract

import "github.com/alexanderramin/tally/internal/app"

type ProgressRequest = app.ProgressRequest

func NewProgressRequest(orderID string) ProgressRequest {
	return app.NewProgressRequest(orderID)
}

const SelectNone = app.SelectNone

type ProgressResponse = app.ProgressResponse

type ProgressRow = app.ProgressRow

type AssignmentView = app.AssignmentView

type IndirectView = app.IndirectView

type MeasurementView = app.MeasurementView

type ProgressErrorCode = app.ProgressErrorCode

const (
	ProgressErrInvalidSelection ProgressErrorCode = app.ProgressErrInvalidSelection
	ProgressErrUnknownOrder     ProgressErrorCode = app.ProgressErrUnknownOrder
)

type ProgressError = app.ProgressError
