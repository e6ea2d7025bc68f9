package app

import (
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/shopspring/decimal"
)

// ProgressRequest asks for the advance breakdown of one order.
type ProgressRequest struct {
	OrderID string
	// At is the date percentages are computed at. Nil means today.
	At *time.Time
	// Selections maps a group node ID to the indirect advance type that
	// reports its global advance for this request only. SelectNone clears
	// the default choice.
	Selections map[string]string
	// IncludeAssignments fills Direct and Indirect on every row.
	IncludeAssignments bool
}

// SelectNone as a selection value leaves a group without a global indirect
// assignment.
const SelectNone = "none"

func NewProgressRequest(orderID string) ProgressRequest {
	return ProgressRequest{
		OrderID:            orderID,
		Selections:         map[string]string{},
		IncludeAssignments: true,
	}
}

type MeasurementView struct {
	Date       time.Time
	Value      decimal.Decimal
	Percentage decimal.Decimal
}

type AssignmentView struct {
	ID           string
	Type         string
	MaxValue     decimal.Decimal
	ReportGlobal bool
	Percentage   decimal.Decimal
	Measurements []MeasurementView // latest first
}

// IndirectView is a derived assignment of a group with its consolidated
// values.
type IndirectView struct {
	Type         string
	ReportGlobal bool
	Consensus    bool
	Contributors int
	MaxValue     decimal.Decimal
	Percentage   decimal.Decimal
	Measurements []MeasurementView // latest first
}

type ProgressRow struct {
	NodeID     string
	Seq        int
	Code       string
	Name       string
	Kind       domain.NodeKind
	Depth      int
	Weight     decimal.Decimal
	Percentage decimal.Decimal
	Source     domain.SourceKind
	SourceType string
	Direct     []AssignmentView
	Indirect   []IndirectView
}

type ProgressResponse struct {
	OrderID     string
	OrderCode   string
	OrderName   string
	WeightBasis domain.WeightBasis
	At          time.Time
	Percentage  decimal.Decimal
	Rows        []ProgressRow // pre-order, top-level nodes at depth 0
	Warnings    []string
}

type ProgressErrorCode string

const (
	ProgressErrInvalidSelection ProgressErrorCode = "INVALID_SELECTION"
	ProgressErrUnknownOrder     ProgressErrorCode = "UNKNOWN_ORDER"
)

type ProgressError struct {
	Code    ProgressErrorCode
	Message string
}

func (e *ProgressError) Error() string {
	return string(e.Code) + ": " + e.Message
}
