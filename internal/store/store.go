// Package store keeps the session's copy of the notification feed in an
// in-memory SQLite database. Nothing is written to disk; the cache is
// rebuilt from the server on every start.
package store

import (
	"context"

	"github.com/nhle/teaminbox/internal/model"
)

// NotificationFilter controls filtering and limits for feed queries.
// Results are always ordered newest first.
type NotificationFilter struct {
	InvitationsOnly bool
	UnreadOnly      bool
	Limit           int
}

// Store is the persistence interface for the feed snapshot.
type Store interface {
	// ReplaceNotifications swaps the snapshot for ns and returns the ids
	// that were not in the previous snapshot.
	ReplaceNotifications(ctx context.Context, ns []model.Notification) ([]string, error)
	ListNotifications(ctx context.Context, filter NotificationFilter) ([]model.Notification, error)
	GetNotification(ctx context.Context, id string) (*model.Notification, error)
	CountUnread(ctx context.Context) (int, error)
}
