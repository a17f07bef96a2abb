// Package invite decides which notifications are actionable invitations
// for the viewer and tracks the local state of accept/decline actions.
package invite

import (
	"strings"

	"github.com/nhle/teaminbox/internal/model"
)

// outboundPatterns mark a notification the viewer sent rather than received.
var outboundPatterns = []string{
	"you invited",
	"you sent",
	"invitation sent",
}

// inboundPatterns mark a notification addressed to the viewer.
var inboundPatterns = []string{
	"invited you",
	"you to join",
	"join the team",
	"team invitation",
	"you have been invited",
	"invitation for you",
}

// resolvedMarkers appear in the title once the server has resolved the
// invitation. Matching is case-sensitive.
var resolvedMarkers = []string{"Accepted", "Declined"}

// ProcessedSet reports whether an action for a notification id already
// completed in this session.
type ProcessedSet interface {
	IsProcessed(id string) bool
}

// IsForCurrentUser reports whether n is addressed to the viewer.
//
// Structured fields win when the server sends them. Otherwise the free
// text is matched: an outbound phrase always means the viewer is the
// sender, then the viewer's email in the message, then an inbound phrase
// in the message or title.
func IsForCurrentUser(n model.Notification, viewerEmail string) bool {
	viewer := strings.ToLower(strings.TrimSpace(viewerEmail))
	if viewer == "" {
		return false
	}

	// Server-set direction outranks every text pattern below.
	switch n.Direction {
	case model.DirectionOutbound:
		return false
	case model.DirectionInbound:
		return true
	}
	if n.RecipientEmail != "" {
		return strings.EqualFold(strings.TrimSpace(n.RecipientEmail), viewer)
	}

	message := strings.ToLower(n.Message)
	title := strings.ToLower(n.Title)

	if containsAny(message, outboundPatterns) || containsAny(title, outboundPatterns) {
		return false
	}
	if strings.Contains(message, viewer) {
		return true
	}
	return containsAny(message, inboundPatterns) || containsAny(title, inboundPatterns)
}

// IsPendingInvitation reports whether n should show accept/decline
// actions to the viewer. A nil processed set counts as empty.
func IsPendingInvitation(n model.Notification, viewerEmail string, processed ProcessedSet) bool {
	if !n.IsInvitation() || !n.IsUnread() {
		return false
	}
	if processed != nil && processed.IsProcessed(n.ID) {
		return false
	}
	if strings.TrimSpace(n.RelatedID) == "" {
		return false
	}
	if containsAny(n.Title, resolvedMarkers) {
		return false
	}
	return IsForCurrentUser(n, viewerEmail)
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
