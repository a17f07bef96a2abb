package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teaminbox/internal/action"
	"github.com/nhle/teaminbox/internal/invite"
	"github.com/nhle/teaminbox/internal/keys"
	"github.com/nhle/teaminbox/internal/model"
	"github.com/nhle/teaminbox/internal/theme"
)

// BackMsg signals the parent to navigate back to the inbox.
type BackMsg struct{}

// DetailLoadedMsg carries the loaded notification. A nil Notification
// means it is no longer in the feed.
type DetailLoadedMsg struct {
	Notification *model.Notification
	Pending      bool
}

// ActionMsg signals the parent to accept or decline the shown invitation.
type ActionMsg struct {
	Notification model.Notification
	Action       action.Action
}

// Model is the notification detail view component.
type Model struct {
	notification *model.Notification
	pending      bool
	viewport     viewport.Model
	keys         *keys.KeyMap
	width        int
	height       int
	loading      bool
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DetailLoadedMsg:
		m.SetNotification(msg.Notification, msg.Pending)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.Accept):
			return m, m.request(action.Accept)

		case key.Matches(msg, m.keys.Decline):
			return m, m.request(action.Reject)
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) request(a action.Action) tea.Cmd {
	if m.notification == nil || !m.pending {
		return nil
	}
	n := *m.notification
	return func() tea.Msg {
		return ActionMsg{Notification: n, Action: a}
	}
}

// View renders the detail view.
func (m Model) View() string {
	placeholder := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.loading {
		return placeholder.Render("Loading notification...")
	}
	if m.notification == nil {
		return placeholder.Render("This notification is no longer in the feed.")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.notification == nil {
		return ""
	}

	n := m.notification
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(n.Title))

	typeBadge := theme.TypeLabelStyle(string(n.Type)).Render(string(n.Type))
	statusBadge := theme.StatusStyle(string(n.Status)).Render(string(n.Status))
	sections = append(sections,
		lipgloss.JoinHorizontal(lipgloss.Top, typeBadge, "  ", statusBadge),
		"",
	)

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	meta := func(label, value string) {
		if value == "" {
			return
		}
		sections = append(sections, fmt.Sprintf("%-11s %s",
			metaStyle.Render(label+":"), valStyle.Render(value)))
	}

	if !n.CreatedAt.IsZero() {
		meta("Created", n.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	meta("Recipient", n.RecipientEmail)
	meta("Direction", string(n.Direction))
	meta("Link", n.ActionURL)
	if n.IsInvitation() {
		if tok, err := invite.ResolveToken(*n); err == nil {
			meta("Token", tok)
		}
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	body := n.Message
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No message")
	}
	sections = append(sections, lipgloss.NewStyle().Width(max(m.width-4, 20)).Render(body))

	if m.pending {
		sections = append(sections, "", theme.ActionStyle.Render("[a] accept  [d] decline"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetNotification updates the notification being displayed.
func (m *Model) SetNotification(n *model.Notification, pending bool) {
	m.notification = n
	m.pending = pending
	m.loading = false
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.viewport.SetContent(m.renderContent())
}
