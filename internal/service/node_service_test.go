package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/tally/internal/advance"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeService_Create_AssignsSeq(t *testing.T) {
	orders, nodes, _, _, uow := setupRepos(t)
	ctx := context.Background()

	o := testutil.NewTestOrder("Seq")
	require.NoError(t, orders.Create(ctx, o))

	svc := NewNodeService(nodes, uow)
	group := &domain.WorkNode{OrderID: o.ID, Name: "Group", Kind: domain.NodeGroup}
	require.NoError(t, svc.Create(ctx, group))
	line := &domain.WorkNode{OrderID: o.ID, ParentID: &group.ID, Name: "Line", Hours: 8}
	require.NoError(t, svc.Create(ctx, line))

	assert.Equal(t, 1, group.Seq)
	assert.Equal(t, 2, line.Seq)
	assert.Equal(t, domain.NodeLine, line.Kind, "kind defaults to line")

	fetched, err := svc.GetBySeq(ctx, o.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, line.ID, fetched.ID)
}

func TestNodeService_Create_ParentRules(t *testing.T) {
	orders, nodes, _, _, uow := setupRepos(t)
	ctx := context.Background()

	b := seedBridge(t, orders, nodes)
	other := testutil.NewTestOrder("Other")
	require.NoError(t, orders.Create(ctx, other))

	svc := NewNodeService(nodes, uow)

	err := svc.Create(ctx, &domain.WorkNode{OrderID: b.order.ID, ParentID: &b.line1.ID, Name: "Under a line"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a line")

	err = svc.Create(ctx, &domain.WorkNode{OrderID: other.ID, ParentID: &b.group.ID, Name: "Cross order"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another order")

	missing := "missing"
	err = svc.Create(ctx, &domain.WorkNode{OrderID: b.order.ID, ParentID: &missing, Name: "Orphan"})
	assert.Error(t, err)
}

func TestNodeService_Create_RejectsNegativeWeights(t *testing.T) {
	orders, nodes, _, _, uow := setupRepos(t)
	ctx := context.Background()

	o := testutil.NewTestOrder("Weights")
	require.NoError(t, orders.Create(ctx, o))
	svc := NewNodeService(nodes, uow)

	err := svc.Create(ctx, &domain.WorkNode{OrderID: o.ID, Name: "Neg hours", Hours: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hours must not be negative")

	err = svc.Create(ctx, &domain.WorkNode{OrderID: o.ID, Name: "Neg budget", Budget: decimal.NewFromInt(-5)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budget must not be negative")
}

func TestNodeService_Update(t *testing.T) {
	orders, nodes, _, _, uow := setupRepos(t)
	ctx := context.Background()

	b := seedBridge(t, orders, nodes)
	svc := NewNodeService(nodes, uow)

	b.line1.Hours = 1500
	b.line1.Budget = dec("99.95")
	require.NoError(t, svc.Update(ctx, b.line1))
	fetched, err := svc.GetByID(ctx, b.line1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1500, fetched.Hours)
	assertDec(t, "99.95", fetched.Budget)

	b.group.Kind = domain.NodeLine
	err = svc.Update(ctx, b.group)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must stay a group")

	b.group.Kind = domain.NodeGroup
	b.group.ParentID = &b.group.ID
	err = svc.Update(ctx, b.group)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below itself")
}

func TestNodeService_Update_MoveKeepsTypesUniquePerPath(t *testing.T) {
	orders, nodes, types, assignments, uow := setupRepos(t)
	ctx := context.Background()

	b := seedBridge(t, orders, nodes)
	svc := NewNodeService(nodes, uow)
	advances := NewAdvanceService(orders, nodes, types, assignments, uow, fixedClock())

	_, err := advances.AddAssignment(ctx, b.group.ID, domain.AdvanceTypeUnits, decPtr("3000"), false)
	require.NoError(t, err)
	loose := &domain.WorkNode{OrderID: b.order.ID, Name: "Railings", Hours: 50}
	require.NoError(t, svc.Create(ctx, loose))
	_, err = advances.AddAssignment(ctx, loose.ID, domain.AdvanceTypeUnits, decPtr("10"), true)
	require.NoError(t, err)

	loose.ParentID = &b.group.ID
	err = svc.Update(ctx, loose)
	require.ErrorIs(t, err, advance.ErrDuplicateAdvanceAssignmentForNode)

	stored, err := svc.GetByID(ctx, loose.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ParentID, "move rolled back")

	_, err = advances.Percentage(ctx, b.line1.ID, sept30)
	require.NoError(t, err, "order still loads")

	require.NoError(t, advances.RemoveAssignment(ctx, b.group.ID, domain.AdvanceTypeUnits))
	require.NoError(t, svc.Update(ctx, loose), "move succeeds once the group no longer holds units")
}

func TestNodeService_ListChildrenAndDelete(t *testing.T) {
	orders, nodes, _, _, uow := setupRepos(t)
	ctx := context.Background()

	b := seedBridge(t, orders, nodes)
	svc := NewNodeService(nodes, uow)

	children, err := svc.ListChildren(ctx, b.group.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, b.line1.ID, children[0].ID)

	require.NoError(t, svc.Delete(ctx, b.group.ID))
	all, err := svc.ListByOrder(ctx, b.order.ID)
	require.NoError(t, err)
	assert.Empty(t, all)
}
