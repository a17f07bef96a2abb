package model

import "time"

// NotificationType is the kind of a notification as reported by the
// notification service.
type NotificationType string

const (
	NotificationTypeInvitation NotificationType = "INVITATION"
	NotificationTypeSystem     NotificationType = "SYSTEM"
	NotificationTypeMessage    NotificationType = "MESSAGE"
)

// NotificationStatus is the read-state of a notification.
type NotificationStatus string

const (
	StatusUnread NotificationStatus = "UNREAD"
	StatusRead   NotificationStatus = "READ"
)

// Direction optionally tells whether the viewer is the recipient or the
// sender of a notification. Older notification services leave it empty.
type Direction string

const (
	DirectionInbound  Direction = "INBOUND"
	DirectionOutbound Direction = "OUTBOUND"
)

// Notification is a server-owned record from the notification feed.
type Notification struct {
	// ID is the opaque unique identifier assigned by the server.
	ID string `json:"id" db:"id"`

	// Title is a short human-readable headline. The server rewrites it
	// (e.g. "Invitation Accepted") once an invitation is resolved.
	Title string `json:"title" db:"title"`

	// Message is the free-text body.
	Message string `json:"message" db:"message"`

	Type   NotificationType   `json:"type" db:"type"`
	Status NotificationStatus `json:"status" db:"status"`

	// CreatedAt is used for ordering and display only.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// ActionURL may embed an invitation token as a path segment.
	ActionURL string `json:"action_url,omitempty" db:"action_url"`

	// RelatedID is the fallback invitation token.
	RelatedID string `json:"related_id,omitempty" db:"related_id"`

	// RecipientEmail is the structured recipient, when the server sends one.
	RecipientEmail string `json:"recipient_email,omitempty" db:"recipient_email"`

	// Direction is the structured direction, when the server sends one.
	Direction Direction `json:"direction,omitempty" db:"direction"`
}

// IsInvitation reports whether the notification is of kind INVITATION.
func (n Notification) IsInvitation() bool {
	return n.Type == NotificationTypeInvitation
}

// IsUnread reports whether the notification has not been read yet.
func (n Notification) IsUnread() bool {
	return n.Status == StatusUnread
}
