// Package confirm renders the decline confirmation dialog.
package confirm

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teaminbox/internal/keys"
	"github.com/nhle/teaminbox/internal/model"
	"github.com/nhle/teaminbox/internal/theme"
)

// ResultMsg is sent once when the dialog closes.
type ResultMsg struct {
	ID        string
	Confirmed bool
}

type bindings struct {
	confirm bool
}

// Model is the decline confirmation dialog for one notification.
type Model struct {
	keys    *keys.KeyMap
	subject model.Notification
	form    *huh.Form
	fb      *bindings
	width   int
	height  int
}

// New builds a dialog asking to decline n.
func New(k *keys.KeyMap, n model.Notification, width, height int) Model {
	m := Model{
		keys:    k,
		subject: n,
		fb:      &bindings{},
		width:   width,
		height:  height,
	}
	m.form = m.buildForm()
	return m
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Decline %q?", m.subject.Title)).
				Description(m.subject.Message).
				Affirmative("Yes, decline").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

// Subject returns the notification the dialog is about.
func (m Model) Subject() model.Notification {
	return m.subject
}

// Init returns the form's initial command.
func (m Model) Init() tea.Cmd {
	if m.form == nil {
		return nil
	}
	return m.form.Init()
}

// Update forwards messages to the form and reports the answer once.
// Back cancels and Confirm declines from either button.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok && m.keys != nil {
		switch {
		case key.Matches(km, m.keys.Back):
			m.form = nil
			return m, m.result(false)
		case key.Matches(km, m.keys.Confirm):
			m.form = nil
			return m, m.result(true)
		}
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		return m, m.result(m.fb.confirm)
	case huh.StateAborted:
		m.form = nil
		return m, m.result(false)
	}
	return m, cmd
}

func (m Model) result(confirmed bool) tea.Cmd {
	id := m.subject.ID
	return func() tea.Msg {
		return ResultMsg{ID: id, Confirmed: confirmed}
	}
}

// View renders the dialog centered in the content area.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	dialog := theme.DialogStyle.Render(m.form.View())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w < 30 {
		w = 30
	}
	if w > 70 {
		w = 70
	}
	return w
}
