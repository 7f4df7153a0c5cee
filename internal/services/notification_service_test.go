package services

import (
	"context"
	"testing"

	"github.com/awakenedyouth/awakened-be/internal/auth"
	"github.com/awakenedyouth/awakened-be/internal/localstore"
	"github.com/awakenedyouth/awakened-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgeCountFollowsUnreadList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A stale stored flag must not win over the unread list.
	require.NoError(t, localstore.SaveList(ctx, f.store, localstore.KeyBellNotifications, []models.Notification{
		{ID: "a", Title: "A", RecipientID: models.RecipientAdmin, Read: false},
		{ID: "b", Title: "B", RecipientID: models.RecipientAdmin, Read: true},
	}))
	require.NoError(t, localstore.SaveList(ctx, f.store, localstore.KeyUnreadNotifications, []string{"a"}))

	count, err := f.notifications.UnreadCount(ctx, adminSession())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, f.notifications.MarkRead(ctx, adminSession(), []string{"a"}))

	unread, err := localstore.LoadList[string](ctx, f.store, localstore.KeyUnreadNotifications)
	require.NoError(t, err)
	assert.Empty(t, unread)

	items, err := f.notifications.List(ctx, adminSession())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].Read)
	assert.True(t, items[1].Read)
	assert.Equal(t, "B", items[1].Title)
}

func TestNotifyAdminKeepsListsInSync(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.notifications.NotifyAdmin(ctx, models.NotificationNewUser, "New User", "Aisha joined", map[string]string{"id": "u1"})
	require.NoError(t, err)
	second, err := f.notifications.NotifyAdmin(ctx, models.NotificationNewSubmission, "New Column", "Patience", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u1"}`, string(first.Data))

	bell, err := f.notifications.List(ctx, adminSession())
	require.NoError(t, err)
	require.Len(t, bell, 2)
	assert.Equal(t, second.ID, bell[0].ID, "bell list is newest first")

	legacy, err := f.notifications.AdminNotifications(ctx, adminSession())
	require.NoError(t, err)
	require.Len(t, legacy, 2)
	assert.Equal(t, first.ID, legacy[0].ID, "legacy list is append order")

	require.NoError(t, f.notifications.MarkRead(ctx, adminSession(), []string{first.ID}))
	legacy, err = f.notifications.AdminNotifications(ctx, adminSession())
	require.NoError(t, err)
	assert.True(t, legacy[0].Read)
	assert.False(t, legacy[1].Read)

	require.NoError(t, f.notifications.MarkUnread(ctx, adminSession(), []string{first.ID}))
	count, err := f.notifications.UnreadCount(ctx, adminSession())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.Len(t, f.publisher.sent, 2)
}

func TestNotificationVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.notifications.NotifyAdmin(ctx, models.NotificationNewUser, "Admins only", "", nil)
	require.NoError(t, err)
	_, err = f.notifications.NotifyUser(ctx, "u1", models.NotificationStatusChange, "For Aisha", "", nil)
	require.NoError(t, err)
	_, err = f.notifications.Broadcast(ctx, models.NotificationDemo, "Everyone", "")
	require.NoError(t, err)

	visitor, err := f.notifications.List(ctx, writerSession("", ""))
	require.NoError(t, err)
	require.Len(t, visitor, 1)
	assert.Equal(t, "Everyone", visitor[0].Title)

	aisha, err := f.notifications.List(ctx, writerSession("u1", "Aisha"))
	require.NoError(t, err)
	assert.Len(t, aisha, 2)

	admin, err := f.notifications.List(ctx, adminSession())
	require.NoError(t, err)
	assert.Len(t, admin, 2)

	_, err = f.notifications.AdminNotifications(ctx, writerSession("u1", "Aisha"))
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestMarkAllReadOnlyTouchesVisible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.notifications.NotifyAdmin(ctx, models.NotificationNewUser, "Admins only", "", nil)
	require.NoError(t, err)
	_, err = f.notifications.NotifyUser(ctx, "u1", models.NotificationStatusChange, "For Aisha", "", nil)
	require.NoError(t, err)

	require.NoError(t, f.notifications.MarkAllRead(ctx, writerSession("u1", "Aisha")))

	count, err := f.notifications.UnreadCount(ctx, writerSession("u1", "Aisha"))
	require.NoError(t, err)
	assert.Zero(t, count)
	count, err = f.notifications.UnreadCount(ctx, adminSession())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMarkReadIgnoresUnknownIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n, err := f.notifications.Broadcast(ctx, models.NotificationDemo, "Hello", "")
	require.NoError(t, err)

	require.NoError(t, f.notifications.MarkRead(ctx, adminSession(), []string{"nope"}))
	unread, err := localstore.LoadList[string](ctx, f.store, localstore.KeyUnreadNotifications)
	require.NoError(t, err)
	assert.Equal(t, []string{n.ID}, unread)
}

func TestMarkReadSkipsNotificationsTheCallerCannotSee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	forAdmin, err := f.notifications.NotifyAdmin(ctx, models.NotificationNewUser, "New User", "Aisha joined", nil)
	require.NoError(t, err)
	forAisha, err := f.notifications.NotifyUser(ctx, "u1", models.NotificationStatusChange, "For Aisha", "", nil)
	require.NoError(t, err)

	ids := []string{forAdmin.ID, forAisha.ID}
	require.NoError(t, f.notifications.MarkRead(ctx, writerSession("", ""), ids))
	require.NoError(t, f.notifications.MarkRead(ctx, writerSession("u2", "Omar"), ids))

	count, err := f.notifications.UnreadCount(ctx, adminSession())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = f.notifications.UnreadCount(ctx, writerSession("u1", "Aisha"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, f.notifications.MarkRead(ctx, writerSession("u1", "Aisha"), ids))
	count, err = f.notifications.UnreadCount(ctx, writerSession("u1", "Aisha"))
	require.NoError(t, err)
	assert.Zero(t, count)
	count, err = f.notifications.UnreadCount(ctx, adminSession())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBroadcastReadStateIsPerUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.notifications.Broadcast(ctx, models.NotificationDemo, "Everyone", "")
	require.NoError(t, err)

	aisha := writerSession("u1", "Aisha")
	omar := writerSession("u2", "Omar")
	require.NoError(t, f.notifications.MarkRead(ctx, aisha, []string{n.ID}))

	count, err := f.notifications.UnreadCount(ctx, aisha)
	require.NoError(t, err)
	assert.Zero(t, count)
	for _, other := range []auth.Session{omar, adminSession(), writerSession("", "")} {
		count, err = f.notifications.UnreadCount(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, 1, count, other.UserID)
	}

	// Visitors have nowhere to keep a receipt.
	require.NoError(t, f.notifications.MarkRead(ctx, writerSession("", ""), []string{n.ID}))
	count, err = f.notifications.UnreadCount(ctx, omar)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, f.notifications.MarkUnread(ctx, aisha, []string{n.ID}))
	count, err = f.notifications.UnreadCount(ctx, aisha)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
