package invite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/teaminbox/internal/model"
)

const viewer = "bob@x.com"

func pendingInvite() model.Notification {
	return model.Notification{
		ID:        "n1",
		Type:      model.NotificationTypeInvitation,
		Status:    model.StatusUnread,
		Title:     "Team Invitation",
		Message:   "You have been invited to join Design Team",
		RelatedID: "inv-42",
	}
}

func TestIsForCurrentUser(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		message string
		viewer  string
		want    bool
	}{
		{"no viewer", "Team Invitation", "You have been invited", "", false},
		{"inbound phrase in message", "Hello", "Alice invited you to Design", viewer, true},
		{"inbound phrase in title", "Team Invitation", "Design Team", viewer, true},
		{"viewer email in message", "Hello", "bob@x.com was added to Design", viewer, true},
		{"viewer email matched case-insensitively", "Hello", "BOB@X.COM was added", viewer, true},
		{"viewer email only in title does not count", "bob@x.com", "Design", viewer, false},
		{"outbound beats email", "Hello", "You invited bob@x.com to join Design Team", viewer, false},
		{"outbound in title beats inbound in message", "Invitation sent", "You have been invited", viewer, false},
		{"you sent", "Team Invitation", "You sent an invitation to carol", viewer, false},
		{"unrelated", "Build finished", "Pipeline #12 passed", viewer, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := model.Notification{Title: tt.title, Message: tt.message}
			assert.Equal(t, tt.want, IsForCurrentUser(n, tt.viewer))
		})
	}
}

func TestIsForCurrentUser_StructuredFieldsWin(t *testing.T) {
	n := pendingInvite()

	n.Direction = model.DirectionOutbound
	assert.False(t, IsForCurrentUser(n, viewer))

	n.Direction = model.DirectionInbound
	n.Message = "You invited carol"
	assert.True(t, IsForCurrentUser(n, viewer))

	n.Direction = ""
	n.RecipientEmail = "Bob@X.com"
	assert.True(t, IsForCurrentUser(n, viewer))

	n.RecipientEmail = "carol@x.com"
	n.Message = "You have been invited"
	assert.False(t, IsForCurrentUser(n, viewer))

	n.Direction = model.DirectionInbound
	assert.False(t, IsForCurrentUser(n, ""), "no viewer is never a match")
}

type processedIDs map[string]bool

func (p processedIDs) IsProcessed(id string) bool { return p[id] }

func TestIsPendingInvitation(t *testing.T) {
	assert.True(t, IsPendingInvitation(pendingInvite(), viewer, nil))

	tests := []struct {
		name      string
		mutate    func(*model.Notification)
		processed ProcessedSet
	}{
		{"not an invitation", func(n *model.Notification) { n.Type = model.NotificationTypeSystem }, nil},
		{"already read", func(n *model.Notification) { n.Status = model.StatusRead }, nil},
		{"no related id", func(n *model.Notification) { n.RelatedID = "" }, nil},
		{"accepted title", func(n *model.Notification) { n.Title = "Invitation Accepted" }, nil},
		{"declined title", func(n *model.Notification) { n.Title = "Team Invitation Declined" }, nil},
		{"processed locally", func(n *model.Notification) {}, processedIDs{"n1": true}},
		{"sent by viewer", func(n *model.Notification) { n.Message = "you invited bob@x.com to join Design Team" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := pendingInvite()
			tt.mutate(&n)
			assert.False(t, IsPendingInvitation(n, viewer, tt.processed))
		})
	}
}

func TestIsPendingInvitation_OverlayAsProcessedSet(t *testing.T) {
	o := NewOverlay()
	n := pendingInvite()

	assert.True(t, o.Begin(n.ID))
	assert.True(t, IsPendingInvitation(n, viewer, o), "processing is still pending")

	assert.True(t, o.Complete(n.ID))
	assert.False(t, IsPendingInvitation(n, viewer, o))
}
