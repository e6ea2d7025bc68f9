package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/tally/internal/contract"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProgressFixture(t *testing.T) (ProgressService, bridge) {
	t.Helper()
	orders, nodes, types, assignments, _ := setupRepos(t)
	b := seedBridge(t, orders, nodes)
	seedUnits(t, assignments, b)
	return NewProgressService(orders, nodes, types, assignments, fixedClock()), b
}

func TestProgressService_RowsFollowTree(t *testing.T) {
	svc, b := newProgressFixture(t)

	resp, err := svc.GetProgress(context.Background(), contract.NewProgressRequest(b.order.ID))
	require.NoError(t, err)

	assert.Equal(t, b.order.Code, resp.OrderCode)
	assert.True(t, sept30.Equal(resp.At))
	assertDec(t, "0.4333", resp.Percentage)
	assert.Empty(t, resp.Warnings)

	require.Len(t, resp.Rows, 3)
	group, line1, line2 := resp.Rows[0], resp.Rows[1], resp.Rows[2]

	assert.Equal(t, b.group.ID, group.NodeID)
	assert.Equal(t, 0, group.Depth)
	assert.Equal(t, domain.SourceIndirect, group.Source)
	assert.Equal(t, domain.AdvanceTypeChildren, group.SourceType)
	assertDec(t, "3000", group.Weight)
	assertDec(t, "0.4333", group.Percentage)
	require.Len(t, group.Indirect, 2)
	assert.Empty(t, group.Direct)

	assert.Equal(t, 1, line1.Depth)
	assert.Equal(t, 2, line1.Seq)
	assert.Equal(t, domain.SourceDirect, line1.Source)
	assert.Equal(t, domain.AdvanceTypeUnits, line1.SourceType)
	assertDec(t, "0.1", line1.Percentage)
	require.Len(t, line1.Direct, 1)

	assertDec(t, "0.6", line2.Percentage)
}

func TestProgressService_WithoutAssignments(t *testing.T) {
	svc, b := newProgressFixture(t)

	req := contract.NewProgressRequest(b.order.ID)
	req.IncludeAssignments = false
	resp, err := svc.GetProgress(context.Background(), req)
	require.NoError(t, err)

	for _, row := range resp.Rows {
		assert.Nil(t, row.Direct)
		assert.Nil(t, row.Indirect)
	}
}

func TestProgressService_Selections(t *testing.T) {
	svc, b := newProgressFixture(t)
	ctx := context.Background()

	req := contract.NewProgressRequest(b.order.ID)
	req.Selections[b.group.ID] = domain.AdvanceTypeUnits
	resp, err := svc.GetProgress(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.AdvanceTypeUnits, resp.Rows[0].SourceType)
	assertDec(t, "0.2667", resp.Rows[0].Percentage)
	assertDec(t, "0.2667", resp.Percentage)

	req = contract.NewProgressRequest(b.order.ID)
	req.Selections[b.group.ID] = contract.SelectNone
	resp, err = svc.GetProgress(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceNone, resp.Rows[0].Source)
	assertDec(t, "0", resp.Rows[0].Percentage)
	assertDec(t, "0", resp.Percentage)

	// Selections do not outlive the request.
	resp, err = svc.GetProgress(ctx, contract.NewProgressRequest(b.order.ID))
	require.NoError(t, err)
	assertDec(t, "0.4333", resp.Percentage)
}

func TestProgressService_InvalidSelection(t *testing.T) {
	svc, b := newProgressFixture(t)
	ctx := context.Background()

	cases := map[string]string{
		b.group.ID: domain.AdvanceTypePercentage,
		"missing":  domain.AdvanceTypeUnits,
	}
	for nodeID, typeName := range cases {
		req := contract.NewProgressRequest(b.order.ID)
		req.Selections[nodeID] = typeName

		_, err := svc.GetProgress(ctx, req)
		var perr *contract.ProgressError
		require.True(t, errors.As(err, &perr), "node %s type %s: %v", nodeID, typeName, err)
		assert.Equal(t, contract.ProgressErrInvalidSelection, perr.Code)
	}
}

func TestProgressService_UnknownOrder(t *testing.T) {
	svc, _ := newProgressFixture(t)

	_, err := svc.GetProgress(context.Background(), contract.NewProgressRequest("missing"))
	var perr *contract.ProgressError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, contract.ProgressErrUnknownOrder, perr.Code)
}

func TestProgressService_AtEarlierDate(t *testing.T) {
	svc, b := newProgressFixture(t)

	req := contract.NewProgressRequest(b.order.ID)
	before := sept1.AddDate(0, 0, -1)
	req.At = &before
	resp, err := svc.GetProgress(context.Background(), req)
	require.NoError(t, err)
	assertDec(t, "0", resp.Percentage)
}

func TestProgressService_WarnsOnUnreportedAssignments(t *testing.T) {
	orders, nodes, types, assignments, _ := setupRepos(t)
	b := seedBridge(t, orders, nodes)
	require.NoError(t, assignments.Create(context.Background(),
		testutil.NewTestAssignment(b.line1.ID, domain.AdvanceTypeUnits, 2000, testutil.WithMeasurement("2009-09-01", 200))))
	svc := NewProgressService(orders, nodes, types, assignments, fixedClock())

	resp, err := svc.GetProgress(context.Background(), contract.NewProgressRequest(b.order.ID))
	require.NoError(t, err)
	assert.Contains(t, resp.Warnings, "node #2 has assignments but none reports global advance")
	assertDec(t, "0", resp.Rows[1].Percentage)
}

func TestProgressService_WarnsOnZeroWeight(t *testing.T) {
	orders, nodes, types, assignments, _ := setupRepos(t)
	ctx := context.Background()
	o := testutil.NewTestOrder("Empty")
	require.NoError(t, orders.Create(ctx, o))
	require.NoError(t, nodes.Create(ctx, testutil.NewTestNode(o.ID, "Unplanned", testutil.WithHours(0), testutil.WithSeq(1))))
	svc := NewProgressService(orders, nodes, types, assignments, fixedClock())

	resp, err := svc.GetProgress(ctx, contract.NewProgressRequest(o.ID))
	require.NoError(t, err)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "order has no planned")
	assertDec(t, "0", resp.Percentage)
}
