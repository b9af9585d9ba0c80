package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkAllReadIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	submitSample(t, f, f.agus)
	submitSample(t, f, f.tedy)

	assert.Equal(t, 2, f.notifs.UnreadCount(f.spv))
	assert.Equal(t, 0, f.notifs.UnreadCount(f.agus))

	changed, err := f.notifs.MarkAllRead(ctx, f.spv)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)
	assert.Equal(t, 0, f.notifs.UnreadCount(f.spv))

	changed, err = f.notifs.MarkAllRead(ctx, f.spv)
	require.NoError(t, err)
	assert.Equal(t, 0, changed)

	feed := f.notifs.List(f.spv)
	require.Len(t, feed, 2)
	assert.True(t, feed[0].IsRead)
	assert.Empty(t, f.notifs.List(f.manager))
}

func TestMarkAllReadLeavesOthersUnread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := submitSample(t, f, f.agus)
	_, err := f.orders.Reject(ctx, f.spv, order.ID, "too many")
	require.NoError(t, err)

	_, err = f.notifs.MarkAllRead(ctx, f.agus)
	require.NoError(t, err)

	assert.Equal(t, 0, f.notifs.UnreadCount(f.agus))
	assert.Equal(t, 1, f.notifs.UnreadCount(f.spv))
}
