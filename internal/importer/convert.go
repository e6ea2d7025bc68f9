package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GeneratedOrder holds the domain objects produced from an import file.
type GeneratedOrder struct {
	Order        *domain.Order
	AdvanceTypes []*domain.AdvanceType
	Nodes        []*domain.WorkNode // parents before children
	Assignments  []*domain.DirectAdvanceAssignment
}

// Convert transforms a validated ImportSchema into domain objects ready for persistence.
// Call ValidateImportSchema first; Convert assumes the schema is valid.
// Nodes get sequential numbers in file order starting at 1.
func Convert(schema *ImportSchema, known ...domain.AdvanceType) (*GeneratedOrder, error) {
	now := time.Now().UTC()

	basis := domain.WeightBasis(domain.Coalesce(schema.Order.WeightBasis, string(domain.WeightHours)))
	order := &domain.Order{
		ID:          uuid.New().String(),
		Code:        strings.ToUpper(schema.Order.Code),
		Name:        schema.Order.Name,
		WeightBasis: basis,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	types := typeDefaults(known)
	advanceTypes := make([]*domain.AdvanceType, 0, len(schema.AdvanceTypes))
	for _, at := range schema.AdvanceTypes {
		maxValue, err := at.MaxValue.Decimal()
		if err != nil {
			return nil, fmt.Errorf("advance type %q max_value: %w", at.Name, err)
		}
		types[at.Name] = maxValue
		advanceTypes = append(advanceTypes, &domain.AdvanceType{
			Name:            at.Name,
			DefaultMaxValue: maxValue,
			Precision:       int32(domain.FirstSet(domain.DefaultAdvancePrecision, at.Precision)),
			Percentage:      at.Percentage,
			Updatable:       true,
			Active:          true,
		})
	}

	refMap := make(map[string]string) // ref -> UUID

	nodes := make([]*domain.WorkNode, 0, len(schema.Nodes))
	for i, n := range schema.Nodes {
		realID := uuid.New().String()
		refMap[n.Ref] = realID

		var parentID *string
		if n.ParentRef != nil && *n.ParentRef != "" {
			pid, ok := refMap[*n.ParentRef]
			if !ok {
				return nil, fmt.Errorf("parent_ref %q not found for node %q", *n.ParentRef, n.Ref)
			}
			parentID = &pid
		}

		budget := decimal.Zero
		if n.Budget != nil {
			b, err := n.Budget.Decimal()
			if err != nil {
				return nil, fmt.Errorf("node %q budget: %w", n.Ref, err)
			}
			budget = b
		}

		nodes = append(nodes, &domain.WorkNode{
			ID:         realID,
			OrderID:    order.ID,
			ParentID:   parentID,
			Seq:        i + 1,
			Code:       domain.Coalesce(n.Code, n.Ref),
			Name:       n.Name,
			Kind:       domain.NodeKind(n.Kind),
			OrderIndex: n.Order,
			Hours:      domain.FirstSet(0, n.Hours),
			Budget:     budget,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	assignments := make([]*domain.DirectAdvanceAssignment, 0, len(schema.Assignments))
	for _, a := range schema.Assignments {
		nodeUUID, ok := refMap[a.NodeRef]
		if !ok {
			return nil, fmt.Errorf("node_ref %q not found for %q assignment", a.NodeRef, a.Type)
		}

		maxValue := types[a.Type]
		if a.MaxValue != nil {
			v, err := a.MaxValue.Decimal()
			if err != nil {
				return nil, fmt.Errorf("assignment %s/%s max_value: %w", a.NodeRef, a.Type, err)
			}
			maxValue = v
		}

		assignment := &domain.DirectAdvanceAssignment{
			ID:                  uuid.New().String(),
			NodeID:              nodeUUID,
			AdvanceType:         a.Type,
			MaxValue:            maxValue,
			ReportGlobalAdvance: a.ReportGlobal,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		for _, m := range a.Measurements {
			date, err := time.Parse(dateLayout, m.Date)
			if err != nil {
				return nil, fmt.Errorf("parsing measurement date: %w", err)
			}
			value, err := m.Value.Decimal()
			if err != nil {
				return nil, fmt.Errorf("measurement %s value: %w", m.Date, err)
			}
			assignment.Measurements = append(assignment.Measurements, domain.AdvanceMeasurement{
				ID:           uuid.New().String(),
				AssignmentID: assignment.ID,
				Date:         date,
				Value:        value,
			})
		}
		assignments = append(assignments, assignment)
	}

	return &GeneratedOrder{
		Order:        order,
		AdvanceTypes: advanceTypes,
		Nodes:        nodes,
		Assignments:  assignments,
	}, nil
}
