package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Names of the advance types seeded on every database.
const (
	AdvanceTypeChildren      = "children"
	AdvanceTypePercentage    = "percentage"
	AdvanceTypeUnits         = "units"
	AdvanceTypeSubcontractor = "subcontractor"
	AdvanceTypeTimesheets    = "timesheets"
)

// DefaultAdvancePrecision is the number of decimal places percentage
// fractions are rounded to unless an advance type says otherwise.
const DefaultAdvancePrecision = 4

// AdvanceType identifies a unit of progress measurement.
type AdvanceType struct {
	Name            string
	DefaultMaxValue decimal.Decimal
	Precision       int32
	Percentage      bool
	Updatable       bool
	Active          bool
	Predefined      bool
}

// PredefinedAdvanceTypes returns the advance types every store starts with.
func PredefinedAdvanceTypes() []AdvanceType {
	hundred := decimal.NewFromInt(100)
	return []AdvanceType{
		{Name: AdvanceTypeChildren, DefaultMaxValue: hundred, Precision: DefaultAdvancePrecision, Percentage: true, Active: true, Predefined: true},
		{Name: AdvanceTypePercentage, DefaultMaxValue: hundred, Precision: DefaultAdvancePrecision, Percentage: true, Active: true, Predefined: true},
		{Name: AdvanceTypeUnits, DefaultMaxValue: decimal.NewFromInt(2147483647), Precision: DefaultAdvancePrecision, Updatable: true, Active: true, Predefined: true},
		{Name: AdvanceTypeSubcontractor, DefaultMaxValue: hundred, Precision: DefaultAdvancePrecision, Percentage: true, Active: true, Predefined: true},
		{Name: AdvanceTypeTimesheets, DefaultMaxValue: hundred, Precision: DefaultAdvancePrecision, Percentage: true, Active: true, Predefined: true},
	}
}

// DirectAdvanceAssignment is a progress series recorded directly on a node.
type DirectAdvanceAssignment struct {
	ID                  string
	NodeID              string
	AdvanceType         string
	MaxValue            decimal.Decimal
	ReportGlobalAdvance bool
	Measurements        []AdvanceMeasurement // date ascending
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// AdvanceMeasurement is a single dated value of a direct assignment.
type AdvanceMeasurement struct {
	ID                string
	AssignmentID      string
	Date              time.Time
	Value             decimal.Decimal
	CommunicationDate *time.Time
}
