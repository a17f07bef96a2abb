package inbox

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teaminbox/internal/action"
	"github.com/nhle/teaminbox/internal/invite"
	"github.com/nhle/teaminbox/internal/keys"
	"github.com/nhle/teaminbox/internal/model"
	"github.com/nhle/teaminbox/internal/testutil"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newInbox(t *testing.T, ns ...model.Notification) (Model, *invite.Overlay) {
	t.Helper()

	s := testutil.NewTestStore(t)
	_, err := s.ReplaceNotifications(context.Background(), ns)
	require.NoError(t, err)

	overlay := invite.NewOverlay()
	m := New(s, keys.DefaultKeyMap(), overlay, "bob@x.com", 100, 30)
	msg := m.LoadNotifications()()
	m, _ = m.Update(msg)
	return m, overlay
}

func TestItems_Flags(t *testing.T) {
	m, overlay := newInbox(t,
		testutil.Invitation("n1", "t1", 2),
		testutil.Invitation("n2", "t2", 1),
		testutil.Notice("n3", 0),
	)

	require.True(t, overlay.Begin("n2"))

	items := m.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "n1", items[0].Notification.ID, "newest first")
	assert.True(t, items[0].Pending)
	assert.False(t, items[0].Busy)
	assert.True(t, items[1].Busy)
	assert.False(t, items[2].Pending)

	overlay.Fail("n2")
	items = m.Items()
	assert.True(t, items[1].Failed)
	assert.True(t, items[1].Pending)
	assert.False(t, items[1].Busy)
}

func TestAcceptKey_EmitsRequestForPending(t *testing.T) {
	m, _ := newInbox(t, testutil.Invitation("n1", "t1", 0))

	_, cmd := m.Update(keyMsg("a"))
	require.NotNil(t, cmd)
	req, ok := cmd().(ActionRequestedMsg)
	require.True(t, ok)
	assert.Equal(t, "n1", req.Notification.ID)
	assert.Equal(t, action.Accept, req.Action)

	_, cmd = m.Update(keyMsg("d"))
	require.NotNil(t, cmd)
	assert.Equal(t, action.Reject, cmd().(ActionRequestedMsg).Action)
}

func TestAcceptKey_IgnoredWhenNotActionable(t *testing.T) {
	m, _ := newInbox(t, testutil.Notice("n1", 0))
	_, cmd := m.Update(keyMsg("a"))
	assert.Nil(t, cmd)

	m, overlay := newInbox(t, testutil.Invitation("n1", "t1", 0))
	overlay.Begin("n1")
	m.Rebuild()
	_, cmd = m.Update(keyMsg("a"))
	assert.Nil(t, cmd, "busy items hide their actions")
}

func TestInvitationsOnlyToggle(t *testing.T) {
	m, _ := newInbox(t,
		testutil.Invitation("n1", "t1", 0),
		testutil.Notice("n2", 1),
	)
	assert.Len(t, m.Items(), 2)

	m, cmd := m.Update(keyMsg("i"))
	require.NotNil(t, cmd)
	assert.True(t, m.InvitationsOnly())
	assert.NotEmpty(t, m.FilterSummary())

	m, _ = m.Update(cmd())
	items := m.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "n1", items[0].Notification.ID)
}

func TestUnreadOnlyAndClearFilters(t *testing.T) {
	m, _ := newInbox(t,
		testutil.Invitation("n1", "t1", 0),
		testutil.Notice("n2", 1),
	)

	cmd := m.SetUnreadOnly(true)
	assert.Equal(t, "showing unread only", m.FilterSummary())
	m, _ = m.Update(cmd())
	require.Len(t, m.Items(), 1)
	assert.Equal(t, "n1", m.Items()[0].Notification.ID)

	m.SetInvitationsOnly(true)
	assert.Equal(t, "showing unread invitations", m.FilterSummary())

	cmd = m.ClearFilters()
	assert.Empty(t, m.FilterSummary())
	assert.False(t, m.InvitationsOnly())
	m, _ = m.Update(cmd())
	assert.Len(t, m.Items(), 2)
}

func TestView_EmptyUnreadState(t *testing.T) {
	m, _ := newInbox(t, testutil.Notice("n1", 0))

	cmd := m.SetUnreadOnly(true)
	m, _ = m.Update(cmd())
	assert.Contains(t, m.View(), "Nothing unread")
}

func TestOpenKey_EmitsSelected(t *testing.T) {
	m, _ := newInbox(t, testutil.Notice("n1", 0))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SelectedMsg{ID: "n1"}, cmd())
}

func TestView_EmptyState(t *testing.T) {
	m, _ := newInbox(t)
	assert.Contains(t, m.View(), "No notifications yet")
}

func TestRelativeTime(t *testing.T) {
	assert.Equal(t, "", relativeTime(time.Time{}))
}
