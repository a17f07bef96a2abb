package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teaminbox/internal/model"
	"github.com/nhle/teaminbox/internal/store"
	"github.com/nhle/teaminbox/internal/testutil"
)

func ids(ns []model.Notification) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.ID)
	}
	return out
}

func TestReplaceNotifications_ReportsNewIDs(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	added, err := s.ReplaceNotifications(ctx, []model.Notification{
		testutil.Invitation("a", "t1", 0),
		testutil.Notice("b", 1),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, added)

	added, err = s.ReplaceNotifications(ctx, []model.Notification{
		testutil.Invitation("a", "t1", 0),
		testutil.Invitation("c", "t3", 2),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, added)

	all, err := s.ListNotifications(ctx, store.NotificationFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ids(all), "snapshot replaced, newest first")
}

func TestReplaceNotifications_SkipsEmptyIDs(t *testing.T) {
	s := testutil.NewTestStore(t)

	added, err := s.ReplaceNotifications(context.Background(), []model.Notification{
		{Title: "no id"},
		testutil.Notice("b", 0),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, added)
}

func TestListNotifications_Filters(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	read := testutil.Invitation("read-invite", "t2", 3)
	read.Status = model.StatusRead
	_, err := s.ReplaceNotifications(ctx, []model.Notification{
		testutil.Invitation("a", "t1", 0),
		testutil.Notice("b", 1),
		read,
		testutil.Invitation("c", "t3", 2),
	})
	require.NoError(t, err)

	invites, err := s.ListNotifications(ctx, store.NotificationFilter{InvitationsOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"read-invite", "c", "a"}, ids(invites))

	unread, err := s.ListNotifications(ctx, store.NotificationFilter{InvitationsOnly: true, UnreadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ids(unread))

	limited, err := s.ListNotifications(ctx, store.NotificationFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"read-invite"}, ids(limited))

	count, err := s.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGetNotification(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	n := testutil.Invitation("a", "inv-42", 0)
	n.ActionURL = "https://app.example.com/invitation/accept/abc"
	n.Direction = model.DirectionInbound
	_, err := s.ReplaceNotifications(ctx, []model.Notification{n})
	require.NoError(t, err)

	got, err := s.GetNotification(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.NotificationTypeInvitation, got.Type)
	assert.Equal(t, model.StatusUnread, got.Status)
	assert.Equal(t, "inv-42", got.RelatedID)
	assert.Equal(t, n.ActionURL, got.ActionURL)
	assert.Equal(t, model.DirectionInbound, got.Direction)
	assert.True(t, n.CreatedAt.Equal(got.CreatedAt))

	missing, err := s.GetNotification(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
