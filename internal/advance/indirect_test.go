package advance

import (
	"testing"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndirectAdvanceAssignments_LeafHasNone(t *testing.T) {
	tree, _, line1, _ := groupWithTwoLines(t, 100, 100)
	assignWith(t, tree, line1, domain.AdvanceTypeUnits, 10, true)

	assert.Empty(t, tree.IndirectAdvanceAssignments(line1))
}

func TestIndirectAdvanceAssignments_OnePerDescendantType(t *testing.T) {
	tree, group, line1, line2 := groupWithTwoLines(t, 1000, 2000)
	registerCustomType(t, tree, "test1")
	registerCustomType(t, tree, "test2")
	assignWith(t, tree, line1, "test1", 1000, true)
	assignWith(t, tree, line2, "test2", 1000, true)
	assignWith(t, tree, line2, domain.AdvanceTypeUnits, 1000, false)

	got := tree.IndirectAdvanceAssignments(group)

	var types []string
	for _, ia := range got {
		types = append(types, ia.Type)
	}
	assert.Equal(t, []string{domain.AdvanceTypeChildren, "test1", "test2", domain.AdvanceTypeUnits}, types)
	assert.True(t, got[0].ReportGlobalAdvance, "children reports global by default")
	assert.Equal(t, []NodeID{line2}, got[3].Contributors)
}

func TestIndirectAdvanceAssignments_Idempotent(t *testing.T) {
	tree, group, line1, line2 := groupWithTwoLines(t, 1000, 2000)
	assignWith(t, tree, line1, domain.AdvanceTypeUnits, 1000, true, measured{sept(1), 200})
	assignWith(t, tree, line2, domain.AdvanceTypeUnits, 2000, true, measured{sept(1), 400})

	first := tree.IndirectAdvanceAssignments(group)
	second := tree.IndirectAdvanceAssignments(group)
	assert.Equal(t, first, second)
	assert.Len(t, second, 2)
	assert.Empty(t, tree.DirectAdvanceAssignments(group))

	fake, err := tree.CalculateFakeDirectAdvanceAssignment(group, findIndirect(t, tree, group, domain.AdvanceTypeUnits))
	require.NoError(t, err)
	assert.True(t, fake.MaxValue.Equal(dec(3000)))
	require.Len(t, fake.Measurements, 1)
	assert.True(t, fake.Measurements[0].Value.Equal(dec(600)))
}

func TestIndirectAdvanceAssignments_Consensus(t *testing.T) {
	tree, group, line1, line2 := groupWithTwoLines(t, 1000, 2000)
	assignWith(t, tree, line1, domain.AdvanceTypeUnits, 1000, true)
	assignWith(t, tree, line2, domain.AdvanceTypeUnits, 1000, false)
	assignWith(t, tree, line2, domain.AdvanceTypePercentage, 100, true)

	assert.False(t, findIndirect(t, tree, group, domain.AdvanceTypeUnits).Consensus)

	require.NoError(t, tree.SetReportGlobalAdvance(line2, domain.AdvanceTypePercentage, false))
	require.NoError(t, tree.SetReportGlobalAdvance(line2, domain.AdvanceTypeUnits, true))

	units := findIndirect(t, tree, group, domain.AdvanceTypeUnits)
	assert.True(t, units.Consensus)
	assert.False(t, units.ReportGlobalAdvance, "consensus does not select by default")
	assert.False(t, findIndirect(t, tree, group, domain.AdvanceTypePercentage).Consensus)
}

func TestIndirectAdvanceAssignments_ConsensusSelection(t *testing.T) {
	tree, group, line1, line2 := groupWithTwoLines(t, 2000, 3000, WithConsensusSelection())
	assignWith(t, tree, line1, domain.AdvanceTypeUnits, 1000, true, measured{sept(1), 100})
	assignWith(t, tree, line2, domain.AdvanceTypeUnits, 1000, true, measured{sept(1), 300})

	units := findIndirect(t, tree, group, domain.AdvanceTypeUnits)
	assert.True(t, units.ReportGlobalAdvance)
	assert.False(t, findIndirect(t, tree, group, domain.AdvanceTypeChildren).ReportGlobalAdvance)
	assertPct(t, "0.2", tree.AdvancePercentage(group))

	// The root sees its only child report through units as well.
	assert.True(t, findIndirect(t, tree, tree.Root(), domain.AdvanceTypeUnits).Consensus)
}

func TestSelectIndirectGlobal_Errors(t *testing.T) {
	tree, group, line1, _ := groupWithTwoLines(t, 100, 100)
	assignWith(t, tree, line1, domain.AdvanceTypeUnits, 10, true)

	assert.ErrorIs(t, tree.SelectIndirectGlobal(group, domain.AdvanceTypePercentage), ErrAssignmentNotFound)
	assert.ErrorIs(t, tree.SelectIndirectGlobal(line1, domain.AdvanceTypeChildren), ErrAssignmentNotFound)
	assert.ErrorIs(t, tree.SelectIndirectGlobal(NodeID(42), domain.AdvanceTypeChildren), ErrUnknownNode)

	assignWith(t, tree, group, domain.AdvanceTypePercentage, 100, true)
	assert.ErrorIs(t, tree.SelectIndirectGlobal(group, domain.AdvanceTypeUnits), ErrDuplicateGlobalReportFlag)
}

func TestSelectIndirectGlobal_FallsBackWhenTypeDisappears(t *testing.T) {
	tree, group, line1, _ := groupWithTwoLines(t, 100, 100)
	assignWith(t, tree, line1, domain.AdvanceTypeUnits, 10, true)
	require.NoError(t, tree.SelectIndirectGlobal(group, domain.AdvanceTypeUnits))

	require.NoError(t, tree.RemoveAdvanceAssignment(line1, domain.AdvanceTypeUnits))

	assert.True(t, findIndirect(t, tree, group, domain.AdvanceTypeChildren).ReportGlobalAdvance)
}

func TestCalculateFake_UnitsMerge(t *testing.T) {
	tree, group, line1, line2 := groupWithTwoLines(t, 1000, 2000)
	assignWith(t, tree, line1, domain.AdvanceTypeUnits, 1000, true,
		measured{sept(1), 200}, measured{sept(3), 400}, measured{sept(5), 500})
	assignWith(t, tree, line2, domain.AdvanceTypeUnits, 1000, true,
		measured{sept(2), 100}, measured{sept(3), 350}, measured{sept(4), 400})

	assertPct(t, "0.4333", tree.AdvancePercentage(group))
	assert.Len(t, tree.IndirectAdvanceAssignments(group), 2)

	fake, err := tree.CalculateFakeDirectAdvanceAssignment(group, findIndirect(t, tree, group, domain.AdvanceTypeUnits))
	require.NoError(t, err)

	assert.True(t, fake.MaxValue.Equal(dec(2000)))
	want := []int64{200, 300, 750, 800, 900}
	require.Len(t, fake.Measurements, len(want))
	for i, w := range want {
		assert.Equal(t, sept(i+1), fake.Measurements[i].Date)
		assert.True(t, fake.Measurements[i].Value.Equal(dec(w)), "day %d", i+1)
	}
}

func TestCalculateFake_ChildrenType(t *testing.T) {
	tree, group, line1, line2 := groupWithTwoLines(t, 1000, 2000)
	registerCustomType(t, tree, "test1")
	registerCustomType(t, tree, "test2")
	assignWith(t, tree, line1, "test1", 1000, true,
		measured{sept(1), 200}, measured{sept(3), 400}, measured{sept(5), 500})
	assignWith(t, tree, line2, "test2", 1000, true,
		measured{sept(2), 100}, measured{sept(3), 350}, measured{sept(4), 400})

	assert.Len(t, tree.IndirectAdvanceAssignments(group), 3)

	fake, err := tree.CalculateFakeDirectAdvanceAssignment(group, findIndirect(t, tree, group, domain.AdvanceTypeChildren))
	require.NoError(t, err)

	assert.True(t, fake.MaxValue.Equal(dec(100)))
	want := []string{"6.67", "13.33", "36.67", "40", "43.33"}
	require.Len(t, fake.Measurements, len(want))
	for i, w := range want {
		assert.Equal(t, sept(i+1), fake.Measurements[i].Date)
		assertPct(t, w, fake.Measurements[i].Value)
	}
	assertPct(t, "0.4333", fake.LastPercentage())
}

func TestCalculateFake_PercentageTypeMerge(t *testing.T) {
	tree, group, line1, line2 := groupWithTwoLines(t, 1000, 2000)
	assignWith(t, tree, line1, domain.AdvanceTypePercentage, 100, true,
		measured{sept(2), 10}, measured{sept(3), 20}, measured{sept(4), 40})
	assignWith(t, tree, line2, domain.AdvanceTypePercentage, 100, true,
		measured{sept(1), 10}, measured{sept(4), 20}, measured{sept(5), 50})

	assertPct(t, "0.4667", tree.AdvancePercentage(group))

	fake, err := tree.CalculateFakeDirectAdvanceAssignment(group, findIndirect(t, tree, group, domain.AdvanceTypePercentage))
	require.NoError(t, err)

	assert.True(t, fake.MaxValue.Equal(dec(100)))
	want := []int64{6, 9, 12, 24, 44}
	require.Len(t, fake.Measurements, len(want))
	for i, w := range want {
		assert.True(t, fake.Measurements[i].Value.Equal(dec(w)), "day %d: got %s", i+1, fake.Measurements[i].Value)
	}
}

func TestCalculateFake_NestedPercentageFeedsTruncatedSeries(t *testing.T) {
	tree := NewTree(NodeSpec{Name: "Order"}, WithClock(fixedClock(sept(30))))
	inner, err := tree.AddNode(tree.Root(), NodeSpec{Key: "inner"})
	require.NoError(t, err)
	a, err := tree.AddNode(inner, NodeSpec{Key: "a", Hours: 1})
	require.NoError(t, err)
	b, err := tree.AddNode(inner, NodeSpec{Key: "b", Hours: 2})
	require.NoError(t, err)
	c, err := tree.AddNode(tree.Root(), NodeSpec{Key: "c", Hours: 3})
	require.NoError(t, err)
	assignWith(t, tree, a, domain.AdvanceTypePercentage, 100, true, measured{sept(1), 10})
	assignWith(t, tree, b, domain.AdvanceTypePercentage, 100, true, measured{sept(1), 10})
	assignWith(t, tree, c, domain.AdvanceTypePercentage, 100, true, measured{sept(1), 10})

	innerFake, err := tree.CalculateFakeDirectAdvanceAssignment(inner, findIndirect(t, tree, inner, domain.AdvanceTypePercentage))
	require.NoError(t, err)
	// 10*1/3 -> 3, 10*2/3 -> 6
	assert.True(t, innerFake.Measurements.ValueAt(sept(1)).Equal(dec(9)))

	rootFake, err := tree.CalculateFakeDirectAdvanceAssignment(tree.Root(), findIndirect(t, tree, tree.Root(), domain.AdvanceTypePercentage))
	require.NoError(t, err)
	// inner contributes its truncated 9 with weight 3, c its 10 with weight 3.
	assert.True(t, rootFake.Measurements.ValueAt(sept(1)).Equal(dec(9)), "got %s", rootFake.Measurements.ValueAt(sept(1)))
}

func TestCalculateFake_MaxIsSumOfContributors(t *testing.T) {
	for _, swap := range []bool{false, true} {
		h1, h2 := 5000, 1000
		if swap {
			h1, h2 = 1000, 5000
		}
		tree, group, line1, line2 := groupWithTwoLines(t, h1, h2)
		empty, full := line1, line2
		if swap {
			empty, full = line2, line1
		}
		assignWith(t, tree, empty, domain.AdvanceTypeUnits, 1000, true)
		assignWith(t, tree, full, domain.AdvanceTypeUnits, 10000, true,
			measured{sept(1), 100}, measured{sept(2), 1000}, measured{sept(3), 5000})

		assertPct(t, "0.0833", tree.AdvancePercentage(group))
		assert.Len(t, tree.IndirectAdvanceAssignments(group), 2)

		fake, err := tree.CalculateFakeDirectAdvanceAssignment(group, findIndirect(t, tree, group, domain.AdvanceTypeUnits))
		require.NoError(t, err)
		assert.True(t, fake.MaxValue.Equal(dec(11000)))
		assert.Len(t, fake.Measurements, 3)
		last, ok := fake.LastMeasurement()
		require.True(t, ok)
		assert.True(t, last.Value.Equal(dec(5000)))
		assertPct(t, "0.4545", fake.LastPercentage())
		assertPct(t, "0.4545", fake.PercentageAt(sept(3)))
	}
}

func TestCalculateFake_UnknownIndirect(t *testing.T) {
	tree, group, _, _ := groupWithTwoLines(t, 100, 100)
	_, err := tree.CalculateFakeDirectAdvanceAssignment(group, IndirectAssignment{Type: domain.AdvanceTypeUnits})
	assert.ErrorIs(t, err, ErrAssignmentNotFound)

	fake, err := tree.CalculateFakeDirectAdvanceAssignment(group, IndirectAssignment{Type: domain.AdvanceTypeChildren})
	require.NoError(t, err)
	assert.Empty(t, fake.Measurements)
	assert.True(t, fake.LastPercentage().Equal(decimal.Zero))
}
