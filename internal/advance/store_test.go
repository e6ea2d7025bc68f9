package advance

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAdvanceAssignment_DuplicateTypeOnNode(t *testing.T) {
	tree, _, line1, _ := groupWithTwoLines(t, 100, 100)
	require.NoError(t, tree.AddAdvanceAssignment(line1, NewAssignment(domain.AdvanceTypeUnits, dec(10), true)))

	err := tree.AddAdvanceAssignment(line1, NewAssignment(domain.AdvanceTypeUnits, dec(20), false))

	assert.ErrorIs(t, err, ErrDuplicateAdvanceAssignmentForNode)
	assert.Len(t, tree.DirectAdvanceAssignments(line1), 1)
}

func TestAddAdvanceAssignment_DuplicateTypeInLineage(t *testing.T) {
	tree, group, line1, line2 := groupWithTwoLines(t, 100, 100)
	require.NoError(t, tree.AddAdvanceAssignment(line1, NewAssignment(domain.AdvanceTypeUnits, dec(10), true)))

	// Siblings may share a type.
	require.NoError(t, tree.AddAdvanceAssignment(line2, NewAssignment(domain.AdvanceTypeUnits, dec(10), true)))

	err := tree.AddAdvanceAssignment(group, NewAssignment(domain.AdvanceTypeUnits, dec(10), false))
	assert.ErrorIs(t, err, ErrDuplicateAdvanceAssignmentForNode, "descendant holds the type")

	require.NoError(t, tree.AddAdvanceAssignment(group, NewAssignment(domain.AdvanceTypePercentage, dec(100), false)))
	err = tree.AddAdvanceAssignment(line1, NewAssignment(domain.AdvanceTypePercentage, dec(100), false))
	assert.ErrorIs(t, err, ErrDuplicateAdvanceAssignmentForNode, "ancestor holds the type")
}

func TestAddAdvanceAssignment_DuplicateGlobalFlag(t *testing.T) {
	tree, _, line1, _ := groupWithTwoLines(t, 100, 100)
	require.NoError(t, tree.AddAdvanceAssignment(line1, NewAssignment(domain.AdvanceTypeUnits, dec(10), true)))

	err := tree.AddAdvanceAssignment(line1, NewAssignment(domain.AdvanceTypePercentage, dec(100), true))

	assert.ErrorIs(t, err, ErrDuplicateGlobalReportFlag)
	assert.Len(t, tree.DirectAdvanceAssignments(line1), 1)
}

func TestAddAdvanceAssignment_Preconditions(t *testing.T) {
	tree, _, line1, _ := groupWithTwoLines(t, 100, 100)

	tests := []struct {
		name string
		id   NodeID
		a    *Assignment
		want error
	}{
		{"unknown node", NodeID(99), NewAssignment(domain.AdvanceTypeUnits, dec(1), false), ErrUnknownNode},
		{"unknown type", line1, NewAssignment("bogus", dec(1), false), ErrUnknownAdvanceType},
		{"children type", line1, NewAssignment(domain.AdvanceTypeChildren, dec(100), false), ErrChildrenTypeNotAssignable},
		{"zero max", line1, NewAssignment(domain.AdvanceTypeUnits, dec(0), false), ErrInvalidMaxValue},
		{"max above type default", line1, NewAssignment(domain.AdvanceTypePercentage, dec(101), false), ErrInvalidMaxValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tree.AddAdvanceAssignment(tt.id, tt.a), tt.want)
		})
	}
	assert.Empty(t, tree.DirectAdvanceAssignments(line1))
}

func TestRemoveAdvanceAssignment_SpreadsGlobalFlag(t *testing.T) {
	tree := NewTree(NodeSpec{Name: "Order"})
	line, err := tree.AddNode(tree.Root(), NodeSpec{Name: "element", Hours: 100})
	require.NoError(t, err)
	require.NoError(t, tree.AddAdvanceAssignment(line, NewAssignment(domain.AdvanceTypePercentage, dec(10), true)))
	require.NoError(t, tree.AddAdvanceAssignment(line, NewAssignment(domain.AdvanceTypeUnits, dec(10), false)))
	require.Equal(t, domain.AdvanceTypePercentage, tree.ReportGlobalAdvanceAssignment(line).Type)

	require.NoError(t, tree.RemoveAdvanceAssignment(line, domain.AdvanceTypePercentage))

	g := tree.ReportGlobalAdvanceAssignment(line)
	require.NotNil(t, g)
	assert.Equal(t, domain.AdvanceTypeUnits, g.Type)
}

func TestRemoveAdvanceAssignment_NoSpreadWithSeveralRemaining(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tree := NewTree(NodeSpec{Name: "Order"}, WithLogger(logger))
	line, err := tree.AddNode(tree.Root(), NodeSpec{Name: "element", Hours: 100})
	require.NoError(t, err)
	require.NoError(t, tree.AddAdvanceAssignment(line, NewAssignment(domain.AdvanceTypePercentage, dec(10), true)))
	require.NoError(t, tree.AddAdvanceAssignment(line, NewAssignment(domain.AdvanceTypeUnits, dec(10), false)))
	require.NoError(t, tree.AddAdvanceAssignment(line, NewAssignment(domain.AdvanceTypeTimesheets, dec(10), false)))

	require.NoError(t, tree.RemoveAdvanceAssignment(line, domain.AdvanceTypePercentage))

	assert.Nil(t, tree.ReportGlobalAdvanceAssignment(line))
	assert.Empty(t, buf.String())

	require.NoError(t, tree.RemoveAdvanceAssignment(line, domain.AdvanceTypeUnits))
	assert.Nil(t, tree.ReportGlobalAdvanceAssignment(line), "removed assignment was not global")
}

func TestRemoveAdvanceAssignment_LogsSpread(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tree := NewTree(NodeSpec{Name: "Order"}, WithLogger(logger))
	line, err := tree.AddNode(tree.Root(), NodeSpec{Key: "L", Hours: 1})
	require.NoError(t, err)
	require.NoError(t, tree.AddAdvanceAssignment(line, NewAssignment(domain.AdvanceTypePercentage, dec(10), true)))
	require.NoError(t, tree.AddAdvanceAssignment(line, NewAssignment(domain.AdvanceTypeUnits, dec(10), false)))

	require.NoError(t, tree.RemoveAdvanceAssignment(line, domain.AdvanceTypePercentage))

	assert.Contains(t, buf.String(), "global advance moved")
	assert.Contains(t, buf.String(), "node=L")
}

func TestRemoveAdvanceAssignment_NotFound(t *testing.T) {
	tree, _, line1, _ := groupWithTwoLines(t, 100, 100)
	assert.ErrorIs(t, tree.RemoveAdvanceAssignment(line1, domain.AdvanceTypeUnits), ErrAssignmentNotFound)
}

func TestSetReportGlobalAdvance(t *testing.T) {
	tree, _, line1, _ := groupWithTwoLines(t, 100, 100)
	assignWith(t, tree, line1, domain.AdvanceTypeUnits, 10, true)
	assignWith(t, tree, line1, domain.AdvanceTypePercentage, 100, false)

	err := tree.SetReportGlobalAdvance(line1, domain.AdvanceTypePercentage, true)
	assert.ErrorIs(t, err, ErrDuplicateGlobalReportFlag)

	require.NoError(t, tree.SetReportGlobalAdvance(line1, domain.AdvanceTypeUnits, true), "re-flagging the holder is a no-op")
	require.NoError(t, tree.ClearReportGlobalAdvance(line1))
	assert.Nil(t, tree.ReportGlobalAdvanceAssignment(line1))

	require.NoError(t, tree.SetReportGlobalAdvance(line1, domain.AdvanceTypePercentage, true))
	assert.Equal(t, domain.AdvanceTypePercentage, tree.ReportGlobalAdvanceAssignment(line1).Type)
}

func TestAddMeasurement_Validation(t *testing.T) {
	tree, _, line1, _ := groupWithTwoLines(t, 100, 100)
	assignWith(t, tree, line1, domain.AdvanceTypeUnits, 1000, true)

	assert.ErrorIs(t, tree.AddMeasurement(line1, domain.AdvanceTypeUnits, sept(1), dec(-1)), ErrInvalidMeasurement)
	assert.ErrorIs(t, tree.AddMeasurement(line1, domain.AdvanceTypeUnits, sept(1), dec(1001)), ErrInvalidMeasurement)
	assert.ErrorIs(t, tree.AddMeasurement(line1, domain.AdvanceTypeUnits, time.Time{}, dec(1)), ErrInvalidMeasurement)
	assert.ErrorIs(t, tree.AddMeasurement(line1, domain.AdvanceTypePercentage, sept(1), dec(1)), ErrAssignmentNotFound)
}

func TestAddMeasurement_SameDayReplaces(t *testing.T) {
	tree, _, line1, _ := groupWithTwoLines(t, 100, 100)
	assignWith(t, tree, line1, domain.AdvanceTypeUnits, 1000, true,
		measured{sept(3), 300}, measured{sept(1), 100})

	require.NoError(t, tree.AddMeasurement(line1, domain.AdvanceTypeUnits, sept(3), dec(350)))

	a, err := tree.DirectAdvanceAssignment(line1, domain.AdvanceTypeUnits)
	require.NoError(t, err)
	ms := a.Measurements()
	require.Len(t, ms, 2)
	assert.Equal(t, sept(1), ms[0].Date, "kept date ascending")
	assert.True(t, ms[1].Value.Equal(dec(350)))
}

func TestRemoveMeasurement(t *testing.T) {
	tree, _, line1, _ := groupWithTwoLines(t, 100, 100)
	assignWith(t, tree, line1, domain.AdvanceTypeUnits, 1000, true, measured{sept(1), 100}, measured{sept(2), 200})

	require.NoError(t, tree.RemoveMeasurement(line1, domain.AdvanceTypeUnits, sept(2)))
	assert.ErrorIs(t, tree.RemoveMeasurement(line1, domain.AdvanceTypeUnits, sept(2)), ErrInvalidMeasurement)

	a, _ := tree.DirectAdvanceAssignment(line1, domain.AdvanceTypeUnits)
	last, ok := a.LastMeasurement()
	require.True(t, ok)
	assert.True(t, last.Value.Equal(dec(100)))
}

func TestUpdateMaxValue(t *testing.T) {
	tree, _, line1, _ := groupWithTwoLines(t, 100, 100)
	assignWith(t, tree, line1, domain.AdvanceTypeUnits, 1000, true, measured{sept(1), 400})

	assert.ErrorIs(t, tree.UpdateMaxValue(line1, domain.AdvanceTypeUnits, dec(300)), ErrInvalidMaxValue)
	require.NoError(t, tree.UpdateMaxValue(line1, domain.AdvanceTypeUnits, dec(800)))
	assert.True(t, tree.AdvancePercentageAt(line1, sept(2)).Equal(dec(1).Div(dec(2))))
}

func TestDirectAdvanceAssignments_SortedByType(t *testing.T) {
	tree, _, line1, _ := groupWithTwoLines(t, 100, 100)
	assignWith(t, tree, line1, domain.AdvanceTypeUnits, 10, false)
	assignWith(t, tree, line1, domain.AdvanceTypePercentage, 100, false)

	got := tree.DirectAdvanceAssignments(line1)
	require.Len(t, got, 2)
	assert.Equal(t, domain.AdvanceTypePercentage, got[0].Type)
	assert.Equal(t, domain.AdvanceTypeUnits, got[1].Type)
}

func TestAddNode_RejectsNegativeWeight(t *testing.T) {
	tree := NewTree(NodeSpec{Name: "Order"})
	_, err := tree.AddNode(tree.Root(), NodeSpec{Name: "bad", Hours: -1})
	assert.ErrorIs(t, err, ErrInvalidWeight)
	_, err = tree.AddNode(tree.Root(), NodeSpec{Name: "bad", Budget: dec(-100)})
	assert.ErrorIs(t, err, ErrInvalidWeight)
	_, err = tree.AddNode(NodeID(5), NodeSpec{Name: "orphan"})
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestWeight_GroupSumsChildren(t *testing.T) {
	tree := NewTree(NodeSpec{Name: "Order"}, WithWeightBasis(domain.WeightBudget))
	group, err := tree.AddNode(tree.Root(), NodeSpec{Name: "group"})
	require.NoError(t, err)
	_, err = tree.AddNode(group, NodeSpec{Name: "a", Hours: 20, Budget: dec(50)})
	require.NoError(t, err)
	_, err = tree.AddNode(group, NodeSpec{Name: "b", Hours: 30, Budget: dec(70)})
	require.NoError(t, err)

	assert.True(t, tree.Weight(group).Equal(dec(120)))
	assert.True(t, tree.Weight(tree.Root()).Equal(dec(120)))
}
