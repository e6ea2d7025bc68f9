package advance

import (
	"testing"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func sept(day int) time.Time {
	return time.Date(2009, time.September, day, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// groupWithTwoLines builds root -> group -> (line1, line2) with the given hours.
func groupWithTwoLines(t *testing.T, hours1, hours2 int, opts ...Option) (*Tree, NodeID, NodeID, NodeID) {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock(sept(30)))}, opts...)
	tree := NewTree(NodeSpec{Key: "order", Name: "Order"}, opts...)
	group, err := tree.AddNode(tree.Root(), NodeSpec{Key: "1", Name: "Group"})
	require.NoError(t, err)
	line1, err := tree.AddNode(group, NodeSpec{Key: "1.1", Name: "Line 1", Hours: hours1})
	require.NoError(t, err)
	line2, err := tree.AddNode(group, NodeSpec{Key: "1.2", Name: "Line 2", Hours: hours2})
	require.NoError(t, err)
	return tree, group, line1, line2
}

func registerCustomType(t *testing.T, tree *Tree, name string) {
	t.Helper()
	require.NoError(t, tree.RegisterType(domain.AdvanceType{
		Name:            name,
		DefaultMaxValue: dec(10000),
		Precision:       domain.DefaultAdvancePrecision,
		Updatable:       true,
		Active:          true,
	}))
}

type measured struct {
	date  time.Time
	value int64
}

func assignWith(t *testing.T, tree *Tree, id NodeID, typeName string, max int64, global bool, ms ...measured) {
	t.Helper()
	require.NoError(t, tree.AddAdvanceAssignment(id, NewAssignment(typeName, dec(max), global)))
	for _, m := range ms {
		require.NoError(t, tree.AddMeasurement(id, typeName, m.date, dec(m.value)))
	}
}

func findIndirect(t *testing.T, tree *Tree, id NodeID, typeName string) IndirectAssignment {
	t.Helper()
	ia, err := tree.IndirectAdvanceAssignment(id, typeName)
	require.NoError(t, err)
	return ia
}
