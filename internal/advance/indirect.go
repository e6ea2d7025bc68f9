package advance

import (
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/shopspring/decimal"
)

// IndirectAssignment is an advance assignment a group derives from the
// direct assignments below it. It holds no measurements of its own; values
// come from CalculateFakeDirectAdvanceAssignment.
type IndirectAssignment struct {
	Type string

	// ReportGlobalAdvance marks the indirect assignment the group's overall
	// percentage is taken from when the group has no direct global one.
	ReportGlobalAdvance bool

	// Consensus is true when every child reports its own global advance
	// through this type.
	Consensus bool

	// Contributors are the descendants holding a direct assignment of Type.
	// Empty for the children type.
	Contributors []NodeID
}

// IndirectAdvanceAssignments returns one indirect assignment per advance
// type directly assigned somewhere strictly below the node, plus the
// children type, sorted by type name. Leaves have none. The result is
// rebuilt on every call.
func (t *Tree) IndirectAdvanceAssignments(id NodeID) []IndirectAssignment {
	if !t.valid(id) || t.IsLeaf(id) {
		return nil
	}

	byType := t.descendantHolders(id)
	global := t.globalIndirectType(id)
	consensus := t.consensusType(id)

	out := []IndirectAssignment{{
		Type:                domain.AdvanceTypeChildren,
		ReportGlobalAdvance: global == domain.AdvanceTypeChildren,
		Consensus:           consensus == domain.AdvanceTypeChildren,
	}}
	for typeName, holders := range byType {
		out = append(out, IndirectAssignment{
			Type:                typeName,
			ReportGlobalAdvance: global == typeName,
			Consensus:           consensus == typeName,
			Contributors:        holders,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// IndirectAdvanceAssignment returns the node's indirect assignment of
// typeName.
func (t *Tree) IndirectAdvanceAssignment(id NodeID, typeName string) (IndirectAssignment, error) {
	if !t.valid(id) {
		return IndirectAssignment{}, fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}
	for _, ia := range t.IndirectAdvanceAssignments(id) {
		if ia.Type == typeName {
			return ia, nil
		}
	}
	return IndirectAssignment{}, fmt.Errorf("node %s indirect %q: %w", t.key(id), typeName, ErrAssignmentNotFound)
}

// descendantHolders maps every type directly assigned strictly below id to
// the nodes holding it, in pre-order.
func (t *Tree) descendantHolders(id NodeID) map[string][]NodeID {
	byType := make(map[string][]NodeID)
	for _, c := range t.nodes[id].children {
		t.walk(c, 0, func(n NodeID, _ int) bool {
			for _, a := range t.nodes[n].direct {
				byType[a.Type] = append(byType[a.Type], n)
			}
			return true
		})
	}
	return byType
}

func (t *Tree) hasIndirect(id NodeID, typeName string) bool {
	if t.IsLeaf(id) {
		return false
	}
	if typeName == domain.AdvanceTypeChildren {
		return true
	}
	_, ok := t.descendantHolders(id)[typeName]
	return ok
}

// SelectIndirectGlobal makes the node's indirect assignment of typeName the
// one reporting global advance. The choice lives only as long as the Tree.
func (t *Tree) SelectIndirectGlobal(id NodeID, typeName string) error {
	if !t.valid(id) {
		return fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}
	if !t.hasIndirect(id, typeName) {
		return fmt.Errorf("node %s indirect %q: %w", t.key(id), typeName, ErrAssignmentNotFound)
	}
	if g := t.directGlobal(id); g != nil {
		return fmt.Errorf("node %s type %q: %w", t.key(id), g.Type, ErrDuplicateGlobalReportFlag)
	}
	t.nodes[id].selected = selection{set: true, typeName: typeName}
	t.logger.Debug("indirect global selected", "node", t.key(id), "type", typeName)
	return nil
}

// ClearIndirectGlobal drops any selection so the default global indirect
// applies again.
func (t *Tree) ClearIndirectGlobal(id NodeID) error {
	if !t.valid(id) {
		return fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}
	t.nodes[id].selected = selection{}
	return nil
}

// SetIndirectReportGlobal sets or clears the global flag of one indirect
// assignment. Clearing the current global one leaves the group without an
// indirect global assignment.
func (t *Tree) SetIndirectReportGlobal(id NodeID, typeName string, global bool) error {
	if global {
		return t.SelectIndirectGlobal(id, typeName)
	}
	if !t.valid(id) {
		return fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}
	if !t.hasIndirect(id, typeName) {
		return fmt.Errorf("node %s indirect %q: %w", t.key(id), typeName, ErrAssignmentNotFound)
	}
	if t.globalIndirectType(id) == typeName {
		t.nodes[id].selected = selection{set: true}
		t.logger.Debug("indirect global cleared", "node", t.key(id), "type", typeName)
	}
	return nil
}

// globalIndirectType returns the type of the indirect assignment reporting
// global advance for a group, or "" when none does.
func (t *Tree) globalIndirectType(id NodeID) string {
	if t.IsLeaf(id) || t.directGlobal(id) != nil {
		return ""
	}
	if sel := t.nodes[id].selected; sel.set {
		if sel.typeName == "" || t.hasIndirect(id, sel.typeName) {
			return sel.typeName
		}
	}
	if t.consensus {
		if c := t.consensusType(id); c != "" {
			return c
		}
	}
	return domain.AdvanceTypeChildren
}

// globalType returns the type a node reports its overall percentage with.
func (t *Tree) globalType(id NodeID) (string, domain.SourceKind) {
	if g := t.directGlobal(id); g != nil {
		return g.Type, domain.SourceDirect
	}
	if g := t.globalIndirectType(id); g != "" {
		return g, domain.SourceIndirect
	}
	return "", domain.SourceNone
}

// consensusType returns the type every child reports global advance with,
// or "" when the children disagree or one reports nothing.
func (t *Tree) consensusType(id NodeID) string {
	children := t.nodes[id].children
	if len(children) == 0 {
		return ""
	}
	first, _ := t.globalType(children[0])
	if first == "" {
		return ""
	}
	for _, c := range children[1:] {
		if g, _ := t.globalType(c); g != first {
			return ""
		}
	}
	return first
}

// FakeAssignment is the direct-assignment view of an indirect assignment:
// a merged measurement series with its max value.
type FakeAssignment struct {
	Type         string
	MaxValue     decimal.Decimal
	Precision    int32
	Measurements Series
}

// PercentageAt returns the fraction of MaxValue reached at date.
func (f FakeAssignment) PercentageAt(date time.Time) decimal.Decimal {
	return Percentage(f.Measurements.ValueAt(date), f.MaxValue, f.Precision)
}

// LastMeasurement returns the latest merged point.
func (f FakeAssignment) LastMeasurement() (Point, bool) {
	return f.Measurements.Last()
}

// LastPercentage returns the fraction reached by the latest merged point.
func (f FakeAssignment) LastPercentage() decimal.Decimal {
	p, ok := f.Measurements.Last()
	if !ok {
		return decimal.Zero
	}
	return Percentage(p.Value, f.MaxValue, f.Precision)
}

// CalculateFakeDirectAdvanceAssignment merges the measurements behind an
// indirect assignment of the node.
//
// For the children type the max value is 100 and there is one point per
// distinct measurement date found below the node, valued at the children
// average percentage on that date. For a percentage type the children's
// series are averaged by weight and the max is the type default. For any
// other type the series are summed and the max is the sum of the
// contributing max values.
func (t *Tree) CalculateFakeDirectAdvanceAssignment(id NodeID, ia IndirectAssignment) (FakeAssignment, error) {
	if !t.valid(id) {
		return FakeAssignment{}, fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}
	if !t.hasIndirect(id, ia.Type) {
		return FakeAssignment{}, fmt.Errorf("node %s indirect %q: %w", t.key(id), ia.Type, ErrAssignmentNotFound)
	}
	precision := t.precision(ia.Type)

	if ia.Type == domain.AdvanceTypeChildren {
		var all []Series
		t.Walk(id, func(n NodeID, depth int) bool {
			if depth > 0 {
				for _, a := range t.nodes[n].direct {
					all = append(all, a.series)
				}
			}
			return true
		})
		dates := unionDates(all...)
		s := make(Series, 0, len(dates))
		for _, d := range dates {
			s = append(s, Point{Date: d, Value: t.childrenPercentageAt(id, d).Mul(hundred)})
		}
		return FakeAssignment{Type: ia.Type, MaxValue: hundred, Precision: precision, Measurements: s}, nil
	}

	s, max := t.mergedSeries(id, ia.Type)
	return FakeAssignment{Type: ia.Type, MaxValue: max, Precision: precision, Measurements: s}, nil
}

// mergedSeries returns the series and max value of typeName as seen from
// id: its own direct assignment if it has one, otherwise the merge of the
// children carrying the type somewhere in their subtree.
func (t *Tree) mergedSeries(id NodeID, typeName string) (Series, decimal.Decimal) {
	if i := t.find(id, typeName); i >= 0 {
		a := t.nodes[id].direct[i]
		return a.series, a.MaxValue
	}

	at := t.types[typeName]
	var inputs []WeightedSeries
	var plain []Series
	maxSum := decimal.Zero
	for _, c := range t.nodes[id].children {
		if t.find(c, typeName) < 0 && !t.hasIndirect(c, typeName) {
			continue
		}
		s, m := t.mergedSeries(c, typeName)
		inputs = append(inputs, WeightedSeries{Series: s, Weight: t.Weight(c)})
		plain = append(plain, s)
		maxSum = maxSum.Add(m)
	}

	if at.Percentage {
		return MergeWeighted(inputs, ValueScale(plain...)), at.DefaultMaxValue
	}
	return MergeSum(plain...), maxSum
}
