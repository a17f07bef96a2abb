package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nhle/teaminbox/internal/action"
	"github.com/nhle/teaminbox/internal/invite"
	"github.com/nhle/teaminbox/internal/keys"
	"github.com/nhle/teaminbox/internal/store"
	appsync "github.com/nhle/teaminbox/internal/sync"
	"github.com/nhle/teaminbox/internal/theme"
	"github.com/nhle/teaminbox/internal/ui"
	"github.com/nhle/teaminbox/internal/ui/command"
	"github.com/nhle/teaminbox/internal/ui/confirm"
	"github.com/nhle/teaminbox/internal/ui/detail"
	helpview "github.com/nhle/teaminbox/internal/ui/help"
	"github.com/nhle/teaminbox/internal/ui/inbox"
)

// unreadCountMsg carries the number of unread notifications to the UI.
type unreadCountMsg struct {
	count int
}

// actionEventMsg wraps a coordinator event.
type actionEventMsg struct {
	event action.Event
}

// submissionDoneMsg is sent when the network step of an action returns.
type submissionDoneMsg struct {
	id      string
	action  action.Action
	outcome action.Outcome
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewInbox ViewState = iota
	ViewDetail
	ViewConfirm
	ViewHelp
	ViewCommand
)

// Model is the root Bubble Tea model that manages view routing,
// layout, and the feed and action engine.
type Model struct {
	currentView      ViewState
	previousView     ViewState
	layout           ui.Layout
	store            store.Store
	keys             *keys.KeyMap
	poller           *appsync.Poller
	coord            *action.Coordinator
	log              *zap.SugaredLogger
	viewerEmail      string
	inbox            inbox.Model
	detail           detail.Model
	confirm          confirm.Model
	helpView         helpview.Model
	commandView      command.Model
	ready            bool
	unreadCount      int
	newCount         int
	flash            string
	authErrorMessage string
}

// New creates the root model for viewerEmail.
func New(s store.Store, svc *Services, viewerEmail string, log *zap.SugaredLogger) Model {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	k := keys.DefaultKeyMap()

	return Model{
		currentView: ViewInbox,
		store:       s,
		keys:        k,
		poller:      svc.Poller,
		coord:       svc.Coordinator,
		log:         log,
		viewerEmail: viewerEmail,
		detail:      detail.New(k, 80, 24),
		inbox:       inbox.New(s, k, svc.Coordinator.Overlay(), viewerEmail, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
	}
}

// Init loads the cached feed, starts polling and subscribes to action
// events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.inbox.Init(),
		m.poller.Start(),
		m.waitForEvent(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.inbox.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.confirm.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		return m.updateActiveView(msg)

	case appsync.FeedResultMsg:
		switch {
		case msg.AuthFailed:
			m.authErrorMessage = "authentication failed: run 'teaminbox login'"
		case msg.Err == nil:
			m.authErrorMessage = ""
			m.newCount = msg.NewCount
		}
		return m, tea.Batch(
			m.inbox.LoadNotifications(),
			m.poller.WaitForNextResult(),
			m.fetchUnreadCount(),
		)

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case inbox.SelectedMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.SetLoading(true)
		return m, m.loadDetail(msg.ID)

	case detail.DetailLoadedMsg:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case detail.BackMsg:
		m.currentView = ViewInbox
		return m, nil

	case inbox.ActionRequestedMsg:
		m.flash = ""
		sub, outcome := m.coord.Perform(msg.Notification, msg.Action)
		return m.handleOutcome(sub, outcome)

	case detail.ActionMsg:
		m.flash = ""
		m.currentView = ViewInbox
		sub, outcome := m.coord.Perform(msg.Notification, msg.Action)
		return m.handleOutcome(sub, outcome)

	case confirm.ResultMsg:
		m.currentView = ViewInbox
		if !msg.Confirmed {
			m.coord.Cancel()
			return m, nil
		}
		sub, outcome := m.coord.Confirm()
		return m.handleOutcome(sub, outcome)

	case submissionDoneMsg:
		m.log.Debugw("invitation action finished",
			"notification_id", msg.id,
			"outcome", msg.outcome.String(),
		)
		if msg.outcome == action.OutcomeFailed {
			verb := "accept"
			if msg.action == action.Reject {
				verb = "decline"
			}
			m.flash = fmt.Sprintf("Could not %s the invitation. Try again.", verb)
		}
		cmd := m.inbox.Rebuild()
		return m, cmd

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case actionEventMsg:
		cmd := m.inbox.Rebuild()
		return m, tea.Batch(cmd, m.waitForEvent())

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}

		// The dialog and the palette own the keyboard while open.
		if m.currentView == ViewConfirm || m.currentView == ViewCommand {
			return m.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, m.quit()

		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case key.Matches(msg, m.keys.Command):
			m.previousView = m.currentView
			m.currentView = ViewCommand
			cmd := m.commandView.Focus()
			return m, cmd

		case key.Matches(msg, m.keys.Back):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}

		case key.Matches(msg, m.keys.Refresh):
			if m.currentView == ViewInbox {
				m.flash = ""
				m.poller.Refresh()
				return m, nil
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleOutcome reacts to the synchronous result of an accept, decline or
// confirmation.
func (m Model) handleOutcome(sub *action.Submission, outcome action.Outcome) (tea.Model, tea.Cmd) {
	switch outcome {
	case action.OutcomeAwaitingConfirmation:
		subject, ok := m.coord.Gate().Subject()
		if !ok {
			return m, nil
		}
		m.confirm = confirm.New(m.keys, subject, m.layout.ContentWidth(), m.layout.ContentHeight())
		m.currentView = ViewConfirm
		return m, m.confirm.Init()

	case action.OutcomeNoToken:
		m.flash = "This invitation has no token and cannot be answered here."
		return m, nil

	case action.OutcomeSubmitted:
		cmd := m.inbox.Rebuild()
		return m, tea.Batch(cmd, runSubmission(sub))
	}
	return m, nil
}

// runSubmission performs the network step off the update loop.
func runSubmission(sub *action.Submission) tea.Cmd {
	return func() tea.Msg {
		outcome := sub.Run(context.Background())
		return submissionDoneMsg{
			id:      sub.Notification().ID,
			action:  sub.Action(),
			outcome: outcome,
		}
	}
}

// waitForEvent returns a tea.Cmd that waits for the next coordinator event.
func (m Model) waitForEvent() tea.Cmd {
	events := m.coord.Events()
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return actionEventMsg{event: e}
	}
}

func (m Model) quit() tea.Cmd {
	m.poller.Stop()
	m.log.Infow("session ended",
		"answered", m.coord.Overlay().Processed(),
		"in_flight", m.coord.Overlay().Processing(),
	)
	return tea.Quit
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewInbox:
		m.inbox, cmd = m.inbox.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewConfirm:
		m.confirm, cmd = m.confirm.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	// The spinner keeps ticking whatever view is on top.
	if _, ok := msg.(spinner.TickMsg); ok && m.currentView != ViewInbox {
		var c tea.Cmd
		m.inbox, c = m.inbox.Update(msg)
		cmd = tea.Batch(cmd, c)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "Team Inbox"
	if m.unreadCount > 0 {
		title = fmt.Sprintf("Team Inbox [%d unread]", m.unreadCount)
	}
	header := m.layout.RenderHeader(title, m.feedStatus())
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDetail:
		return m.detail.View()
	case ViewConfirm:
		return m.confirm.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return m.inbox.View()
	}
}

// feedStatus returns a short string describing the poller state and any
// actions still in flight.
func (m Model) feedStatus() string {
	s := m.pollerStatus()
	if n := len(m.coord.Overlay().Processing()); n > 0 {
		s = fmt.Sprintf("%d sending | %s", n, s)
	}
	return s
}

func (m Model) pollerStatus() string {
	st := m.poller.Status()
	switch st.State {
	case appsync.FeedRunning:
		return "syncing"
	case appsync.FeedError:
		return "⚠ feed unreachable"
	}
	if st.LastSync.IsZero() {
		return "waiting for feed"
	}
	s := "updated " + st.LastSync.Format("15:04:05")
	if m.newCount > 0 {
		s = fmt.Sprintf("%d new | %s", m.newCount, s)
	}
	return s
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.currentView == ViewInbox {
		if m.flash != "" {
			return lipgloss.NewStyle().Foreground(theme.ColorYellow).Render(m.flash)
		}
		if m.authErrorMessage != "" {
			return m.authErrorMessage
		}
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "tab complete | enter execute | esc back"
	case ViewDetail:
		return "esc back | j/k scroll | a accept | d decline"
	case ViewConfirm:
		return "←/→ choose | enter select | y decline | esc cancel"
	default:
		hints := "q quit | ? help | a accept | d decline | r refresh | i invitations"
		if summary := m.inbox.FilterSummary(); summary != "" {
			return summary + " | " + hints
		}
		return hints
	}
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case "refresh", "r":
		m.flash = ""
		m.poller.Refresh()
		return nil
	case "invitations", "inv":
		m.currentView = ViewInbox
		return m.inbox.SetInvitationsOnly(true)
	case "unread":
		m.currentView = ViewInbox
		return m.inbox.SetUnreadOnly(true)
	case "all":
		m.currentView = ViewInbox
		return m.inbox.ClearFilters()
	case "help":
		m.currentView = ViewHelp
		return nil
	case "quit", "q":
		return m.quit()
	default:
		m.flash = fmt.Sprintf("Unknown command %q", cmd)
		return nil
	}
}

// loadDetail returns a command that loads a notification by ID from the
// store.
func (m Model) loadDetail(id string) tea.Cmd {
	s := m.store
	overlay := m.coord.Overlay()
	viewer := m.viewerEmail
	return func() tea.Msg {
		n, err := s.GetNotification(context.Background(), id)
		if err != nil || n == nil {
			return detail.DetailLoadedMsg{}
		}
		return detail.DetailLoadedMsg{
			Notification: n,
			Pending:      invite.IsPendingInvitation(*n, viewer, overlay) && !overlay.Busy(n.ID),
		}
	}
}

// fetchUnreadCount returns a tea.Cmd that queries the store for the
// number of unread notifications.
func (m Model) fetchUnreadCount() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		count, err := s.CountUnread(context.Background())
		if err != nil {
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: count}
	}
}
