package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ValidateImportSchema checks the import schema for errors before conversion.
// known lists advance types that already exist in the store; predefined
// types are always known. Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema, known ...domain.AdvanceType) []error {
	var errs []error

	errs = append(errs, validateOrder(&schema.Order)...)

	types := typeDefaults(known)
	errs = append(errs, validateAdvanceTypes(schema.AdvanceTypes, types)...)

	nodeKinds := make(map[string]domain.NodeKind)
	errs = append(errs, validateNodes(schema.Nodes, nodeKinds)...)

	errs = append(errs, validateAssignments(schema.Assignments, nodeKinds, types)...)

	return errs
}

// typeDefaults maps every known advance type name to its default max value.
func typeDefaults(known []domain.AdvanceType) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, at := range domain.PredefinedAdvanceTypes() {
		out[at.Name] = at.DefaultMaxValue
	}
	for _, at := range known {
		out[at.Name] = at.DefaultMaxValue
	}
	return out
}

func validateOrder(o *OrderImport) []error {
	var errs []error

	code := &domain.Order{Code: strings.ToUpper(o.Code)}
	if err := code.ValidateCode(); err != nil {
		errs = append(errs, fmt.Errorf("order.code: %w", err))
	}
	if o.Name == "" {
		errs = append(errs, fmt.Errorf("order.name is required"))
	}
	if o.WeightBasis != "" && !domain.ValidWeightBases[o.WeightBasis] {
		errs = append(errs, fmt.Errorf("order.weight_basis: invalid value %q", o.WeightBasis))
	}

	return errs
}

func validateAdvanceTypes(list []AdvanceTypeImport, types map[string]decimal.Decimal) []error {
	var errs []error

	predefined := typeDefaults(nil)
	seen := make(map[string]bool)
	for i, at := range list {
		prefix := fmt.Sprintf("advance_types[%d]", i)

		_, isPredefined := predefined[at.Name]
		switch {
		case at.Name == "":
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		case isPredefined:
			errs = append(errs, fmt.Errorf("%s.name: %q is a predefined type", prefix, at.Name))
		case seen[at.Name]:
			errs = append(errs, fmt.Errorf("%s.name: duplicate type %q", prefix, at.Name))
		}
		seen[at.Name] = true

		maxValue, err := at.MaxValue.Decimal()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.max_value: invalid number %q", prefix, at.MaxValue))
		} else if !maxValue.IsPositive() {
			errs = append(errs, fmt.Errorf("%s.max_value must be positive", prefix))
		}
		if at.Precision != nil && *at.Precision < 0 {
			errs = append(errs, fmt.Errorf("%s.precision must not be negative", prefix))
		}

		if at.Name != "" && err == nil {
			types[at.Name] = maxValue
		}
	}

	return errs
}

func validateNodes(nodes []NodeImport, nodeKinds map[string]domain.NodeKind) []error {
	var errs []error

	for i, n := range nodes {
		prefix := fmt.Sprintf("nodes[%d]", i)

		if n.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if n.Kind == "" {
			errs = append(errs, fmt.Errorf("%s.kind is required", prefix))
		} else if !domain.ValidNodeKinds[n.Kind] {
			errs = append(errs, fmt.Errorf("%s.kind: invalid value %q", prefix, n.Kind))
		}

		if n.ParentRef != nil && *n.ParentRef != "" {
			kind, ok := nodeKinds[*n.ParentRef]
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("%s.parent_ref: ref %q not found (must appear earlier in nodes list)", prefix, *n.ParentRef))
			case kind != domain.NodeGroup:
				errs = append(errs, fmt.Errorf("%s.parent_ref: ref %q is a line and cannot hold children", prefix, *n.ParentRef))
			}
		}

		if n.Hours != nil && *n.Hours < 0 {
			errs = append(errs, fmt.Errorf("%s.hours must not be negative", prefix))
		}
		if n.Budget != nil {
			budget, err := n.Budget.Decimal()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s.budget: invalid number %q", prefix, *n.Budget))
			} else if budget.IsNegative() {
				errs = append(errs, fmt.Errorf("%s.budget must not be negative", prefix))
			}
		}

		if n.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if _, dup := nodeKinds[n.Ref]; dup {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, n.Ref))
		} else {
			nodeKinds[n.Ref] = domain.NodeKind(n.Kind)
		}
	}

	return errs
}

func validateAssignments(list []AssignmentImport, nodeKinds map[string]domain.NodeKind, types map[string]decimal.Decimal) []error {
	var errs []error

	seen := make(map[string]bool)    // node_ref + type
	globals := make(map[string]bool) // node_ref
	for i, a := range list {
		prefix := fmt.Sprintf("assignments[%d]", i)

		if a.NodeRef == "" {
			errs = append(errs, fmt.Errorf("%s.node_ref is required", prefix))
		} else if _, ok := nodeKinds[a.NodeRef]; !ok {
			errs = append(errs, fmt.Errorf("%s.node_ref: ref %q not found in nodes", prefix, a.NodeRef))
		}

		defaultMax, known := types[a.Type]
		switch {
		case a.Type == "":
			errs = append(errs, fmt.Errorf("%s.type is required", prefix))
		case a.Type == domain.AdvanceTypeChildren:
			errs = append(errs, fmt.Errorf("%s.type: %q cannot be assigned directly", prefix, a.Type))
		case !known:
			errs = append(errs, fmt.Errorf("%s.type: unknown advance type %q", prefix, a.Type))
		}

		key := a.NodeRef + "\x00" + a.Type
		if seen[key] {
			errs = append(errs, fmt.Errorf("%s: node %q already has an assignment of type %q", prefix, a.NodeRef, a.Type))
		}
		seen[key] = true

		if a.ReportGlobal {
			if globals[a.NodeRef] {
				errs = append(errs, fmt.Errorf("%s.report_global: node %q already has a global assignment", prefix, a.NodeRef))
			}
			globals[a.NodeRef] = true
		}

		maxValue := defaultMax
		if a.MaxValue != nil {
			v, err := a.MaxValue.Decimal()
			switch {
			case err != nil:
				errs = append(errs, fmt.Errorf("%s.max_value: invalid number %q", prefix, *a.MaxValue))
			case !v.IsPositive():
				errs = append(errs, fmt.Errorf("%s.max_value must be positive", prefix))
			case known && v.GreaterThan(defaultMax):
				errs = append(errs, fmt.Errorf("%s.max_value %s exceeds the %q maximum %s", prefix, v, a.Type, defaultMax))
			}
			if err == nil {
				maxValue = v
			}
		}

		errs = append(errs, validateMeasurements(prefix, a.Measurements, maxValue)...)
	}

	return errs
}

func validateMeasurements(prefix string, list []MeasurementImport, maxValue decimal.Decimal) []error {
	var errs []error

	dates := make(map[string]bool)
	for j, m := range list {
		mp := fmt.Sprintf("%s.measurements[%d]", prefix, j)

		if _, err := time.Parse(dateLayout, m.Date); err != nil {
			errs = append(errs, fmt.Errorf("%s.date: invalid date format %q (expected YYYY-MM-DD)", mp, m.Date))
		} else if dates[m.Date] {
			errs = append(errs, fmt.Errorf("%s.date: duplicate date %q", mp, m.Date))
		}
		dates[m.Date] = true

		v, err := m.Value.Decimal()
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s.value: invalid number %q", mp, m.Value))
		case v.IsNegative():
			errs = append(errs, fmt.Errorf("%s.value must not be negative", mp))
		case maxValue.IsPositive() && v.GreaterThan(maxValue):
			errs = append(errs, fmt.Errorf("%s.value %s exceeds max_value %s", mp, v, maxValue))
		}
	}

	return errs
}
