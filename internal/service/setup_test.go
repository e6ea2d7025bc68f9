package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/alexanderramin/tally/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setupRepos(t *testing.T) (
	repository.OrderRepo,
	repository.WorkNodeRepo,
	repository.AdvanceTypeRepo,
	repository.AdvanceAssignmentRepo,
	db.UnitOfWork,
) {
	database := testutil.NewTestDB(t)
	return repository.NewSQLiteOrderRepo(database),
		repository.NewSQLiteWorkNodeRepo(database),
		repository.NewSQLiteAdvanceTypeRepo(database),
		repository.NewSQLiteAdvanceAssignmentRepo(database),
		testutil.NewTestUoW(database)
}

var (
	sept1  = time.Date(2009, 9, 1, 0, 0, 0, 0, time.UTC)
	sept30 = time.Date(2009, 9, 30, 0, 0, 0, 0, time.UTC)
)

func fixedClock() Option {
	return WithClock(func() time.Time { return sept30 })
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// bridge is an order with one group holding two lines of 1000 and 2000 hours.
type bridge struct {
	order *domain.Order
	group *domain.WorkNode
	line1 *domain.WorkNode
	line2 *domain.WorkNode
}

func seedBridge(t *testing.T, orders repository.OrderRepo, nodes repository.WorkNodeRepo) bridge {
	t.Helper()
	ctx := context.Background()

	o := testutil.NewTestOrder("Bridge")
	require.NoError(t, orders.Create(ctx, o))
	group := testutil.NewTestNode(o.ID, "Deck", testutil.WithNodeKind(domain.NodeGroup), testutil.WithSeq(1))
	require.NoError(t, nodes.Create(ctx, group))
	line1 := testutil.NewTestNode(o.ID, "Beams", testutil.WithParentID(group.ID), testutil.WithHours(1000),
		testutil.WithOrderIndex(1), testutil.WithSeq(2))
	require.NoError(t, nodes.Create(ctx, line1))
	line2 := testutil.NewTestNode(o.ID, "Slabs", testutil.WithParentID(group.ID), testutil.WithHours(2000),
		testutil.WithOrderIndex(2), testutil.WithSeq(3))
	require.NoError(t, nodes.Create(ctx, line2))
	return bridge{order: o, group: group, line1: line1, line2: line2}
}

// seedUnits records 200 of 2000 units on line1 and 600 of 1000 on line2,
// both global, on September 1st.
func seedUnits(t *testing.T, assignments repository.AdvanceAssignmentRepo, b bridge) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, assignments.Create(ctx, testutil.NewTestAssignment(b.line1.ID, domain.AdvanceTypeUnits, 2000,
		testutil.WithReportGlobal(), testutil.WithMeasurement("2009-09-01", 200))))
	require.NoError(t, assignments.Create(ctx, testutil.NewTestAssignment(b.line2.ID, domain.AdvanceTypeUnits, 1000,
		testutil.WithReportGlobal(), testutil.WithMeasurement("2009-09-01", 600))))
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

type recordingObserver struct {
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	r.events = append(r.events, event)
}
