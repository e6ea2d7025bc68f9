package advance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Assignment is a direct advance assignment owned by one node of a Tree.
// Measurements are kept date ascending with at most one value per day.
type Assignment struct {
	Type                string
	MaxValue            decimal.Decimal
	ReportGlobalAdvance bool

	series Series
}

// NewAssignment creates an assignment with no measurements.
func NewAssignment(typeName string, maxValue decimal.Decimal, reportGlobal bool) *Assignment {
	return &Assignment{
		Type:                typeName,
		MaxValue:            maxValue,
		ReportGlobalAdvance: reportGlobal,
	}
}

// Measurements returns a copy of the measurement series, date ascending.
func (a *Assignment) Measurements() Series {
	out := make(Series, len(a.series))
	copy(out, a.series)
	return out
}

// LastMeasurement returns the most recent measurement regardless of date.
func (a *Assignment) LastMeasurement() (Point, bool) {
	return a.series.Last()
}

// ValueAt returns the value of the latest measurement at or before date.
func (a *Assignment) ValueAt(date time.Time) decimal.Decimal {
	return a.series.ValueAt(date)
}

// upsert stores value at date, replacing an existing value for that day.
// It reports whether an existing measurement was replaced.
func (a *Assignment) upsert(date time.Time, value decimal.Decimal) bool {
	day := Day(date)
	i := sort.Search(len(a.series), func(i int) bool { return !a.series[i].Date.Before(day) })
	if i < len(a.series) && a.series[i].Date.Equal(day) {
		a.series[i].Value = value
		return true
	}
	a.series = append(a.series, Point{})
	copy(a.series[i+1:], a.series[i:])
	a.series[i] = Point{Date: day, Value: value}
	return false
}

func (a *Assignment) remove(date time.Time) bool {
	day := Day(date)
	for i, p := range a.series {
		if p.Date.Equal(day) {
			a.series = append(a.series[:i], a.series[i+1:]...)
			return true
		}
	}
	return false
}

// highestValue returns the largest recorded value, or zero.
func (a *Assignment) highestValue() decimal.Decimal {
	highest := decimal.Zero
	for _, p := range a.series {
		if p.Value.GreaterThan(highest) {
			highest = p.Value
		}
	}
	return highest
}
