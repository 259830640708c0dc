package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/stackit/backend/internal/models"
)

func TestNotificationListUnreadCountsEverything(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	for i := 0; i < 5; i++ {
		require.NoError(t, f.svc.Notifications.notify(f.ctx, f.store, alice.ID, models.NotificationNewAnswer, fmt.Sprintf("n%d", i), nil))
	}

	items, unread, err := f.svc.Notifications.List(f.ctx, alice, 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.EqualValues(t, 5, unread)
	assert.Equal(t, "n4", items[0].Message)

	_, _, err = f.svc.Notifications.List(f.ctx, alice, MaxNotificationLimit+1)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestMarkReadIsScopedToOwner(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bobby")
	require.NoError(t, f.svc.Notifications.notify(f.ctx, f.store, alice.ID, models.NotificationNewAnswer, "hello", nil))

	items, _, err := f.svc.Notifications.List(f.ctx, alice, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = f.svc.Notifications.MarkRead(f.ctx, items[0].ID, bob)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := f.svc.Notifications.MarkRead(f.ctx, items[0].ID, alice)
	require.NoError(t, err)
	assert.True(t, n.IsRead)

	_, unread, err := f.svc.Notifications.List(f.ctx, alice, 0)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestMarkAllRead(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bobby")
	for _, u := range []*models.User{alice, alice, alice, bob} {
		require.NoError(t, f.svc.Notifications.notify(f.ctx, f.store, u.ID, models.NotificationNewAnswer, "msg", nil))
	}

	updated, err := f.svc.Notifications.MarkAllRead(f.ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 3, updated)

	_, unread, err := f.svc.Notifications.List(f.ctx, bob, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}
