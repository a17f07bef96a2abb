// Package inbox is the notification list view.
package inbox

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teaminbox/internal/action"
	"github.com/nhle/teaminbox/internal/invite"
	"github.com/nhle/teaminbox/internal/keys"
	"github.com/nhle/teaminbox/internal/model"
	"github.com/nhle/teaminbox/internal/store"
	"github.com/nhle/teaminbox/internal/theme"
)

// NotificationsLoadedMsg is sent when notifications have been loaded
// from the store.
type NotificationsLoadedMsg struct {
	Notifications []model.Notification
	Err           error
}

// ActionRequestedMsg is sent when the viewer presses accept or decline on
// a pending invitation.
type ActionRequestedMsg struct {
	Notification model.Notification
	Action       action.Action
}

// SelectedMsg is sent when the viewer opens a notification.
type SelectedMsg struct {
	ID string
}

// Model is the inbox list view.
type Model struct {
	list          list.Model
	store         store.Store
	keys          *keys.KeyMap
	overlay       *invite.Overlay
	viewerEmail   string
	filter        store.NotificationFilter
	notifications []model.Notification
	spinner       spinner.Model
	frame         *string
	width         int
	height        int
}

// New creates a new inbox model. The overlay is read to decide which
// invitations are pending and which are busy.
func New(s store.Store, k *keys.KeyMap, overlay *invite.Overlay, viewerEmail string, width, height int) Model {
	frame := new(string)
	l := list.New([]list.Item{}, ItemDelegate{frame: frame}, width, height)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorYellow)
	*frame = sp.View()

	return Model{
		list:        l,
		store:       s,
		keys:        k,
		overlay:     overlay,
		viewerEmail: viewerEmail,
		spinner:     sp,
		frame:       frame,
		width:       width,
		height:      height,
	}
}

// Init loads the cached feed and starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.LoadNotifications(), m.spinner.Tick)
}

// Update handles messages for the inbox view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case NotificationsLoadedMsg:
		if msg.Err != nil {
			return m, nil
		}
		m.notifications = msg.Notifications
		cmd := m.Rebuild()
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		*m.frame = m.spinner.View()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Open):
		it, ok := m.SelectedItem()
		if !ok {
			return m, nil
		}
		id := it.Notification.ID
		return m, func() tea.Msg {
			return SelectedMsg{ID: id}
		}

	case key.Matches(msg, m.keys.Accept):
		return m, m.request(action.Accept)

	case key.Matches(msg, m.keys.Decline):
		return m, m.request(action.Reject)

	case key.Matches(msg, m.keys.InvitationsOnly):
		m.filter.InvitationsOnly = !m.filter.InvitationsOnly
		return m, m.LoadNotifications()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// request emits an ActionRequestedMsg when the selected item still shows
// its action hints.
func (m Model) request(a action.Action) tea.Cmd {
	it, ok := m.SelectedItem()
	if !ok || !it.Pending || it.Busy {
		return nil
	}
	n := it.Notification
	return func() tea.Msg {
		return ActionRequestedMsg{Notification: n, Action: a}
	}
}

// Items builds list items from the current notifications and overlay.
func (m Model) Items() []Item {
	items := make([]Item, len(m.notifications))
	for i, n := range m.notifications {
		items[i] = Item{
			Notification: n,
			Pending:      invite.IsPendingInvitation(n, m.viewerEmail, m.overlay),
			Busy:         m.overlay.Busy(n.ID),
			Failed:       m.overlay.State(n.ID) == invite.StateFailed,
		}
	}
	return items
}

// Rebuild recomputes item flags, e.g. after the overlay changed.
func (m *Model) Rebuild() tea.Cmd {
	items := m.Items()
	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = it
	}
	return m.list.SetItems(listItems)
}

// SelectedItem returns the focused item.
func (m Model) SelectedItem() (Item, bool) {
	it, ok := m.list.SelectedItem().(Item)
	return it, ok
}

// SetInvitationsOnly turns the invitation filter on or off and reloads.
func (m *Model) SetInvitationsOnly(on bool) tea.Cmd {
	m.filter.InvitationsOnly = on
	return m.LoadNotifications()
}

// SetUnreadOnly hides read notifications when on and reloads.
func (m *Model) SetUnreadOnly(on bool) tea.Cmd {
	m.filter.UnreadOnly = on
	return m.LoadNotifications()
}

// ClearFilters shows every notification again and reloads.
func (m *Model) ClearFilters() tea.Cmd {
	m.filter = store.NotificationFilter{}
	return m.LoadNotifications()
}

// InvitationsOnly reports whether the invitation filter is on.
func (m Model) InvitationsOnly() bool {
	return m.filter.InvitationsOnly
}

// FilterSummary describes the active filter, or "" when none is set.
func (m Model) FilterSummary() string {
	switch {
	case m.filter.InvitationsOnly && m.filter.UnreadOnly:
		return "showing unread invitations"
	case m.filter.InvitationsOnly:
		return "showing invitations only"
	case m.filter.UnreadOnly:
		return "showing unread only"
	}
	return ""
}

// View renders the inbox.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

// renderEmptyState shows guidance text when there is nothing to list.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.filter.InvitationsOnly {
		return style.Render("No invitations.\nPress i to show everything.")
	}
	if m.filter.UnreadOnly {
		return style.Render("Nothing unread.\nRun :all to show everything.")
	}
	return style.Render("No notifications yet.\n\nPress r to refresh.")
}

// LoadNotifications returns a tea.Cmd that queries the store with the
// current filter.
func (m Model) LoadNotifications() tea.Cmd {
	filter := m.filter
	s := m.store
	return func() tea.Msg {
		ns, err := s.ListNotifications(context.Background(), filter)
		return NotificationsLoadedMsg{Notifications: ns, Err: err}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
