package inbox

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teaminbox/internal/model"
	"github.com/nhle/teaminbox/internal/theme"
)

// Item wraps a notification with its display flags so it can be used in
// a bubbles/list.
type Item struct {
	Notification model.Notification

	// Pending marks an invitation the viewer can still accept or decline.
	Pending bool
	// Busy shows the processing indicator instead of the action hints.
	Busy bool
	// Failed marks an invitation whose last action failed.
	Failed bool
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Notification.Title }

// Title returns the notification title for the list.
func (i Item) Title() string { return i.Notification.Title }

// Description returns a short summary line for the list.
func (i Item) Description() string {
	parts := []string{
		string(i.Notification.Type),
		string(i.Notification.Status),
		relativeTime(i.Notification.CreatedAt),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering notifications.
type ItemDelegate struct {
	// frame is the current spinner frame, shared by reference with the
	// inbox Model so ticks are visible without rebuilding the list.
	frame *string
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a notification as a title line and a message line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	n := it.Notification

	marker := " "
	if n.IsUnread() {
		marker = theme.StatusStyle(string(n.Status)).Render("●")
	}

	typeBadge := theme.TypeLabelStyle(string(n.Type)).Render(typeLabel(n.Type))

	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(n.CreatedAt))

	line := fmt.Sprintf("%s %s %s  %s%s", marker, typeBadge, n.Title, timeStr, d.actions(it))

	msg := lipgloss.NewStyle().Foreground(theme.ColorGray).Render("    " + truncate(n.Message, m.Width()-6))

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
		msg = theme.SelectedItemStyle.UnsetBold().Render(msg)
	} else {
		line = theme.ListItemStyle.Render(line)
		msg = theme.ListItemStyle.Render(msg)
	}

	fmt.Fprint(w, line+"\n"+msg)
}

// actions renders the right-hand action area of an item.
func (d ItemDelegate) actions(it Item) string {
	switch {
	case it.Busy:
		frame := ""
		if d.frame != nil {
			frame = *d.frame
		}
		return "  " + frame + " processing"
	case it.Pending && it.Failed:
		return "  " + theme.ErrorStyle.Render("failed") + "  " +
			theme.ActionStyle.Render("[a] accept  [d] decline")
	case it.Pending:
		return "  " + theme.ActionStyle.Render("[a] accept  [d] decline")
	default:
		return ""
	}
}

func typeLabel(t model.NotificationType) string {
	switch t {
	case model.NotificationTypeInvitation:
		return "INV"
	case model.NotificationTypeSystem:
		return "SYS"
	case model.NotificationTypeMessage:
		return "MSG"
	default:
		return "???"
	}
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-1 {
		r = r[:width-1]
	}
	return string(r) + "…"
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}
