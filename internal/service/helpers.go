package service

import (
	"fmt"
	"time"

	"github.com/alexanderramin/tally/internal/advance"
	"github.com/alexanderramin/tally/internal/contract"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// assignmentView renders a direct assignment with percentages at date.
func assignmentView(ot *orderTree, nodeID string, a *advance.Assignment, at time.Time) contract.AssignmentView {
	precision := typePrecision(ot.tree, a.Type)
	view := contract.AssignmentView{
		Type:         a.Type,
		MaxValue:     a.MaxValue,
		ReportGlobal: a.ReportGlobalAdvance,
		Percentage:   advance.Percentage(a.ValueAt(at), a.MaxValue, precision),
		Measurements: measurementViews(a.Measurements(), a.MaxValue, precision),
	}
	if row, ok := ot.assignments[assignmentKey{nodeID, a.Type}]; ok {
		view.ID = row.ID
	}
	return view
}

// indirectView renders an indirect assignment with its consolidated series.
func indirectView(t *advance.Tree, id advance.NodeID, ia advance.IndirectAssignment, at time.Time) (contract.IndirectView, error) {
	fake, err := t.CalculateFakeDirectAdvanceAssignment(id, ia)
	if err != nil {
		return contract.IndirectView{}, err
	}
	return contract.IndirectView{
		Type:         ia.Type,
		ReportGlobal: ia.ReportGlobalAdvance,
		Consensus:    ia.Consensus,
		Contributors: len(ia.Contributors),
		MaxValue:     fake.MaxValue,
		Percentage:   fake.PercentageAt(at),
		Measurements: measurementViews(fake.Measurements, fake.MaxValue, fake.Precision),
	}, nil
}

func indirectViews(t *advance.Tree, id advance.NodeID, at time.Time) ([]contract.IndirectView, error) {
	list := t.IndirectAdvanceAssignments(id)
	views := make([]contract.IndirectView, 0, len(list))
	for _, ia := range list {
		v, err := indirectView(t, id, ia, at)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// measurementViews returns the series latest first.
func measurementViews(s advance.Series, maxValue decimal.Decimal, precision int32) []contract.MeasurementView {
	latest := s.LatestFirst()
	views := make([]contract.MeasurementView, len(latest))
	for i, p := range latest {
		views[i] = contract.MeasurementView{
			Date:       p.Date,
			Value:      p.Value,
			Percentage: advance.Percentage(p.Value, maxValue, precision),
		}
	}
	return views
}

func typePrecision(t *advance.Tree, typeName string) int32 {
	if at, ok := t.Type(typeName); ok {
		return at.Precision
	}
	return domain.DefaultAdvancePrecision
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
