package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestLayout_ContentHeight(t *testing.T) {
	assert.Equal(t, 22, NewLayout(80, 24).ContentHeight())
	assert.Equal(t, 0, NewLayout(80, 1).ContentHeight())
}

func TestLayout_BarsSpanWidth(t *testing.T) {
	l := NewLayout(60, 24)

	header := l.RenderHeader("Team Inbox [2 unread]", "syncing")
	assert.Equal(t, 60, lipgloss.Width(header))
	assert.Contains(t, header, "Team Inbox [2 unread]")
	assert.Contains(t, header, "syncing")

	assert.Equal(t, 60, lipgloss.Width(l.RenderStatusBar("q quit")))
}
