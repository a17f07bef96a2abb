// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/nhle/teaminbox/internal/model"
	"github.com/nhle/teaminbox/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSessionStore()
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Invitation returns an unread invitation addressed to the viewer by
// text, created at base plus offset minutes.
func Invitation(id, token string, offset int) model.Notification {
	return model.Notification{
		ID:        id,
		Type:      model.NotificationTypeInvitation,
		Status:    model.StatusUnread,
		Title:     "Team Invitation",
		Message:   "You have been invited to join Design Team",
		RelatedID: token,
		CreatedAt: base.Add(time.Duration(offset) * time.Minute),
	}
}

// Notice returns a plain, read system notification.
func Notice(id string, offset int) model.Notification {
	return model.Notification{
		ID:        id,
		Type:      model.NotificationTypeSystem,
		Status:    model.StatusRead,
		Title:     "Build finished",
		Message:   "Pipeline passed",
		CreatedAt: base.Add(time.Duration(offset) * time.Minute),
	}
}

var base = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
