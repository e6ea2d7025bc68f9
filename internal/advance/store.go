package advance

import (
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/shopspring/decimal"
)

// AddAdvanceAssignment attaches a direct assignment to a node. The type must
// be registered and directly assignable, and no node on the same root-to-leaf
// path may already hold a direct assignment of that type. At most one direct
// assignment of a node reports its global advance.
func (t *Tree) AddAdvanceAssignment(id NodeID, a *Assignment) error {
	if !t.valid(id) {
		return fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}
	if a == nil {
		return fmt.Errorf("nil assignment: %w", ErrUnknownAdvanceType)
	}
	if a.Type == domain.AdvanceTypeChildren {
		return ErrChildrenTypeNotAssignable
	}
	at, ok := t.types[a.Type]
	if !ok {
		return fmt.Errorf("advance type %q: %w", a.Type, ErrUnknownAdvanceType)
	}
	if !a.MaxValue.IsPositive() || a.MaxValue.GreaterThan(at.DefaultMaxValue) {
		return fmt.Errorf("max value %s for type %q (allowed up to %s): %w",
			a.MaxValue, a.Type, at.DefaultMaxValue, ErrInvalidMaxValue)
	}
	if holder, found := t.lineageHolder(id, a.Type); found {
		return fmt.Errorf("type %q already assigned on node %s: %w",
			a.Type, t.key(holder), ErrDuplicateAdvanceAssignmentForNode)
	}
	if a.ReportGlobalAdvance {
		if g := t.directGlobal(id); g != nil {
			return fmt.Errorf("node %s type %q: %w", t.key(id), g.Type, ErrDuplicateGlobalReportFlag)
		}
	}
	for _, p := range a.series {
		if err := validateValue(at, a.MaxValue, p.Value); err != nil {
			return err
		}
	}

	t.nodes[id].direct = append(t.nodes[id].direct, a)
	return nil
}

// lineageHolder finds a node among id, its ancestors and its descendants that
// holds a direct assignment of typeName.
func (t *Tree) lineageHolder(id NodeID, typeName string) (NodeID, bool) {
	for cur := id; cur != NoNode; cur = t.nodes[cur].parent {
		if t.find(cur, typeName) >= 0 {
			return cur, true
		}
	}
	holder, found := NoNode, false
	for _, c := range t.nodes[id].children {
		t.walk(c, 0, func(n NodeID, _ int) bool {
			if found {
				return false
			}
			if t.find(n, typeName) >= 0 {
				holder, found = n, true
				return false
			}
			return true
		})
	}
	return holder, found
}

// RemoveAdvanceAssignment detaches the node's direct assignment of typeName
// together with its measurements. When the removed assignment reported global
// advance and exactly one direct assignment remains, the remaining one takes
// over the flag.
func (t *Tree) RemoveAdvanceAssignment(id NodeID, typeName string) error {
	a, i, err := t.lookup(id, typeName)
	if err != nil {
		return err
	}
	n := &t.nodes[id]
	n.direct = append(n.direct[:i], n.direct[i+1:]...)

	if a.ReportGlobalAdvance && len(n.direct) == 1 {
		n.direct[0].ReportGlobalAdvance = true
		t.logger.Debug("global advance moved to remaining assignment",
			"node", t.key(id), "removed", typeName, "global", n.direct[0].Type)
	}
	return nil
}

// SetReportGlobalAdvance sets or clears the global flag of one direct
// assignment of the node.
func (t *Tree) SetReportGlobalAdvance(id NodeID, typeName string, global bool) error {
	a, _, err := t.lookup(id, typeName)
	if err != nil {
		return err
	}
	if global {
		if g := t.directGlobal(id); g != nil && g != a {
			return fmt.Errorf("node %s type %q: %w", t.key(id), g.Type, ErrDuplicateGlobalReportFlag)
		}
	}
	a.ReportGlobalAdvance = global
	return nil
}

// ClearReportGlobalAdvance clears the global flag on every direct assignment
// of the node.
func (t *Tree) ClearReportGlobalAdvance(id NodeID) error {
	if !t.valid(id) {
		return fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}
	for _, a := range t.nodes[id].direct {
		a.ReportGlobalAdvance = false
	}
	return nil
}

// UpdateMaxValue changes the max value of a direct assignment. The new value
// must stay within the type default and cover every recorded measurement.
func (t *Tree) UpdateMaxValue(id NodeID, typeName string, max decimal.Decimal) error {
	a, _, err := t.lookup(id, typeName)
	if err != nil {
		return err
	}
	at := t.types[typeName]
	if !max.IsPositive() || max.GreaterThan(at.DefaultMaxValue) {
		return fmt.Errorf("max value %s for type %q: %w", max, typeName, ErrInvalidMaxValue)
	}
	if h := a.highestValue(); h.GreaterThan(max) {
		return fmt.Errorf("max value %s below recorded value %s: %w", max, h, ErrInvalidMaxValue)
	}
	a.MaxValue = max
	return nil
}

// AddMeasurement records value on date for the node's direct assignment of
// typeName. A measurement already present for that day is replaced.
func (t *Tree) AddMeasurement(id NodeID, typeName string, date time.Time, value decimal.Decimal) error {
	a, _, err := t.lookup(id, typeName)
	if err != nil {
		return err
	}
	if date.IsZero() {
		return fmt.Errorf("measurement date is required: %w", ErrInvalidMeasurement)
	}
	if err := validateValue(t.types[typeName], a.MaxValue, value); err != nil {
		return err
	}
	a.upsert(date, value)
	return nil
}

func validateValue(at domain.AdvanceType, max, value decimal.Decimal) error {
	if value.IsNegative() {
		return fmt.Errorf("value %s is negative: %w", value, ErrInvalidMeasurement)
	}
	if value.GreaterThan(max) {
		return fmt.Errorf("value %s exceeds max value %s: %w", value, max, ErrInvalidMeasurement)
	}
	if at.DefaultMaxValue.IsPositive() && value.GreaterThan(at.DefaultMaxValue) {
		return fmt.Errorf("value %s exceeds %q limit %s: %w", value, at.Name, at.DefaultMaxValue, ErrInvalidMeasurement)
	}
	return nil
}

// RemoveMeasurement deletes the measurement recorded on date.
func (t *Tree) RemoveMeasurement(id NodeID, typeName string, date time.Time) error {
	a, _, err := t.lookup(id, typeName)
	if err != nil {
		return err
	}
	if !a.remove(date) {
		return fmt.Errorf("no %q measurement on %s: %w", typeName, Day(date).Format(time.DateOnly), ErrInvalidMeasurement)
	}
	return nil
}

// DirectAdvanceAssignments returns the node's direct assignments sorted by
// type name.
func (t *Tree) DirectAdvanceAssignments(id NodeID) []*Assignment {
	if !t.valid(id) {
		return nil
	}
	out := make([]*Assignment, len(t.nodes[id].direct))
	copy(out, t.nodes[id].direct)
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// DirectAdvanceAssignment returns the node's direct assignment of typeName.
func (t *Tree) DirectAdvanceAssignment(id NodeID, typeName string) (*Assignment, error) {
	a, _, err := t.lookup(id, typeName)
	return a, err
}

// ReportGlobalAdvanceAssignment returns the node's direct assignment flagged
// as reporting global advance, or nil.
func (t *Tree) ReportGlobalAdvanceAssignment(id NodeID) *Assignment {
	if !t.valid(id) {
		return nil
	}
	return t.directGlobal(id)
}

func (t *Tree) directGlobal(id NodeID) *Assignment {
	for _, a := range t.nodes[id].direct {
		if a.ReportGlobalAdvance {
			return a
		}
	}
	return nil
}

func (t *Tree) find(id NodeID, typeName string) int {
	for i, a := range t.nodes[id].direct {
		if a.Type == typeName {
			return i
		}
	}
	return -1
}

func (t *Tree) lookup(id NodeID, typeName string) (*Assignment, int, error) {
	if !t.valid(id) {
		return nil, -1, fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}
	i := t.find(id, typeName)
	if i < 0 {
		return nil, -1, fmt.Errorf("node %s type %q: %w", t.key(id), typeName, ErrAssignmentNotFound)
	}
	return t.nodes[id].direct[i], i, nil
}
