package advance

import (
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/shopspring/decimal"
)

// AdvancePercentage returns the node's overall completion in [0, 1] as of
// the tree clock's current date.
func (t *Tree) AdvancePercentage(id NodeID) decimal.Decimal {
	return t.AdvancePercentageAt(id, t.Today())
}

// AdvancePercentageAt returns the node's overall completion at date.
// A direct global assignment always wins. A leaf without one is at zero.
// A group uses its global indirect assignment.
func (t *Tree) AdvancePercentageAt(id NodeID, date time.Time) decimal.Decimal {
	if !t.valid(id) {
		return decimal.Zero
	}
	day := Day(date)
	if g := t.directGlobal(id); g != nil {
		return Percentage(g.ValueAt(day), g.MaxValue, t.precision(g.Type))
	}
	switch typeName := t.globalIndirectType(id); typeName {
	case "":
		return decimal.Zero
	case domain.AdvanceTypeChildren:
		return t.childrenPercentageAt(id, day)
	default:
		s, max := t.mergedSeries(id, typeName)
		return Percentage(s.ValueAt(day), max, t.precision(typeName))
	}
}

// childrenPercentageAt averages the children's percentages by weight.
func (t *Tree) childrenPercentageAt(id NodeID, date time.Time) decimal.Decimal {
	total := decimal.Zero
	sum := decimal.Zero
	for _, c := range t.nodes[id].children {
		w := t.Weight(c)
		total = total.Add(w)
		sum = sum.Add(t.AdvancePercentageAt(c, date).Mul(w))
	}
	if !total.IsPositive() {
		return decimal.Zero
	}
	p := sum.DivRound(total, t.precision(domain.AdvanceTypeChildren))
	if p.GreaterThan(one) {
		return one
	}
	return p
}

// GlobalSource tells where the node's overall percentage comes from and
// through which advance type.
func (t *Tree) GlobalSource(id NodeID) (domain.SourceKind, string) {
	if !t.valid(id) {
		return domain.SourceNone, ""
	}
	typeName, kind := t.globalType(id)
	return kind, typeName
}

// NodeReport is the advance breakdown of one node.
type NodeReport struct {
	ID         NodeID
	Key        string
	Name       string
	Depth      int
	Weight     decimal.Decimal
	Percentage decimal.Decimal
	Source     domain.SourceKind
	SourceType string
	Direct     []*Assignment
	Indirect   []IndirectAssignment
}

// ReportAt returns one row per node of the tree in pre-order with
// percentages computed at date.
func (t *Tree) ReportAt(date time.Time) []NodeReport {
	rows := make([]NodeReport, 0, len(t.nodes))
	t.Walk(t.Root(), func(id NodeID, depth int) bool {
		kind, typeName := t.GlobalSource(id)
		rows = append(rows, NodeReport{
			ID:         id,
			Key:        t.nodes[id].spec.Key,
			Name:       t.nodes[id].spec.Name,
			Depth:      depth,
			Weight:     t.Weight(id),
			Percentage: t.AdvancePercentageAt(id, date),
			Source:     kind,
			SourceType: typeName,
			Direct:     t.DirectAdvanceAssignments(id),
			Indirect:   t.IndirectAdvanceAssignments(id),
		})
		return true
	})
	return rows
}
