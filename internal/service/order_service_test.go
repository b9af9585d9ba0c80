package service

import (
	"context"
	"errors"
	"testing"

	"sales-flow/internal/models"
	"sales-flow/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitSample(t *testing.T, f *fixture, actor models.User) *models.Order {
	t.Helper()
	order, err := f.orders.SubmitOrder(context.Background(), actor, workflow.Submission{
		Items: []workflow.ItemRequest{{SKUID: "10228494", Quantity: 2}},
	})
	require.NoError(t, err)
	return order
}

func TestSubmitOrder(t *testing.T) {
	f := newFixture(t)

	order := submitSample(t, f, f.agus)
	assert.Equal(t, models.OrderStatusPendingSPV, order.Status)
	assert.Equal(t, models.OrderTypeRegular, order.Type)
	assert.Equal(t, "DHM 20 Y25 A", order.Items[0].SKUName)

	snap := f.store.Snapshot()
	require.Len(t, snap.Orders, 1)
	require.Len(t, snap.Notifications, 1)
	assert.Equal(t, "New Order Submission", snap.Notifications[0].Title)
	assert.True(t, snap.Notifications[0].Target.Matches(f.spv))

	require.Len(t, f.publisher.submitted, 1)
	assert.Equal(t, order.ID, f.publisher.submitted[0].OrderID)
	require.Len(t, f.publisher.notified, 1)
	assert.Equal(t, "role:SPV", f.publisher.notified[0].Target)
}

func TestSubmitOrderRefusals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orders.SubmitOrder(ctx, f.spv, workflow.Submission{
		Items: []workflow.ItemRequest{{SKUID: "10228494", Quantity: 1}},
	})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	_, err = f.orders.SubmitOrder(ctx, f.agus, workflow.Submission{
		Items: []workflow.ItemRequest{{SKUID: "NOPE", Quantity: 1}},
	})
	assert.ErrorIs(t, err, models.ErrSKUNotFound)

	_, err = f.orders.SubmitOrder(ctx, f.agus, workflow.Submission{})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	snap := f.store.Snapshot()
	assert.Empty(t, snap.Orders)
	assert.Empty(t, snap.Notifications)
	assert.Empty(t, f.publisher.submitted)
}

func TestApprovalChain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := submitSample(t, f, f.agus)

	reviewed, err := f.orders.Approve(ctx, f.spv, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPendingManager, reviewed.Status)

	approved, err := f.orders.Approve(ctx, f.manager, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusApproved, approved.Status)

	snap := f.store.Snapshot()
	titles := make([]string, 0, len(snap.Notifications))
	for _, n := range snap.Notifications {
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{"Order Approved", "Order Final Approval", "Order Reviewed by SPV", "New Order Submission"}, titles)

	require.Len(t, f.publisher.changed, 2)
	assert.Equal(t, models.OrderStatusPendingSPV, f.publisher.changed[0].From)
	assert.Equal(t, models.OrderStatusApproved, f.publisher.changed[1].To)
	assert.Equal(t, f.manager.ID, f.publisher.changed[1].ActorID)
}

func TestRejectKeepsMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := submitSample(t, f, f.agus)

	rejected, err := f.orders.Reject(ctx, f.spv, order.ID, "wrong quantity")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusRejectedSPV, rejected.Status)
	assert.Equal(t, "wrong quantity", rejected.RejectionMessage)

	feed := f.notifs.List(f.agus)
	require.Len(t, feed, 1)
	assert.Contains(t, feed[0].Message, "wrong quantity")
	assert.Equal(t, models.NotificationAlert, feed[0].Type)
}

func TestRejectWithoutMessageUsesPlaceholder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := submitSample(t, f, f.agus)

	_, err := f.orders.Approve(ctx, f.spv, order.ID)
	require.NoError(t, err)
	_, err = f.orders.Reject(ctx, f.manager, order.ID, "")
	require.NoError(t, err)

	feed := f.notifs.List(f.agus)
	require.NotEmpty(t, feed)
	assert.Contains(t, feed[0].Message, workflow.DefaultRejectionReason)
}

func TestAdvanceRefusals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := submitSample(t, f, f.agus)

	_, err := f.orders.Approve(ctx, f.agus, order.ID)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	_, err = f.orders.Approve(ctx, f.manager, order.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = f.orders.AdvanceOrder(ctx, f.manager, order.ID, models.OrderStatusRejectedSPV, "")
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	_, err = f.orders.Approve(ctx, f.spv, "ORD-MISSING")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	current, err := f.orders.GetOrder(f.admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPendingSPV, current.Status)
	assert.Len(t, f.store.Snapshot().Notifications, 1)
}

func TestTerminalOrdersStayPut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := submitSample(t, f, f.agus)

	_, err := f.orders.Reject(ctx, f.spv, order.ID, "no")
	require.NoError(t, err)

	_, err = f.orders.Approve(ctx, f.spv, order.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestPublishFailureDoesNotFailSubmit(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	order := submitSample(t, f, f.agus)
	assert.Equal(t, models.OrderStatusPendingSPV, order.Status)
	assert.Len(t, f.store.Snapshot().Orders, 1)
}

func TestOrderVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agusOrder := submitSample(t, f, f.agus)
	tedyOrder := submitSample(t, f, f.tedy)

	_, err := f.orders.GetOrder(f.tedy, agusOrder.ID)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	own := f.orders.ListOrders(f.tedy)
	require.Len(t, own, 1)
	assert.Equal(t, tedyOrder.ID, own[0].ID)
	assert.Len(t, f.orders.ListOrders(f.admin), 2)

	_, err = f.orders.Approve(ctx, f.spv, agusOrder.ID)
	require.NoError(t, err)

	pending := f.orders.Pending(f.spv)
	require.Len(t, pending, 1)
	assert.Equal(t, tedyOrder.ID, pending[0].ID)
	assert.Len(t, f.orders.Pending(f.manager), 1)
	assert.Len(t, f.orders.Processed(f.spv), 1)
	assert.Empty(t, f.orders.Processed(f.manager))
}
