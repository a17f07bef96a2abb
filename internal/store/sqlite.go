package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/teaminbox/internal/model"
)

// notificationColumns is the column list shared by every query.
const notificationColumns = `
	id, title, message, type, status, created_at,
	action_url, related_id, recipient_email, direction`

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSessionStore opens a private in-memory database for one session.
func NewSessionStore() (*SQLiteStore, error) {
	return NewSQLiteStore(":memory:")
}

// NewSQLiteStore opens a SQLite database at dbPath and runs any pending
// schema migrations. The pool is limited to one connection because each
// connection to ":memory:" would otherwise see its own empty database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// ReplaceNotifications swaps the whole snapshot in one transaction and
// returns the ids that were not present before, in feed order.
func (s *SQLiteStore) ReplaceNotifications(
	ctx context.Context,
	ns []model.Notification,
) ([]string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var existing []string
	if err := tx.SelectContext(ctx, &existing, "SELECT id FROM notifications"); err != nil {
		return nil, fmt.Errorf("reading existing ids: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, id := range existing {
		seen[id] = true
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		return nil, fmt.Errorf("clearing notifications: %w", err)
	}

	const query = `
		INSERT OR REPLACE INTO notifications (` + notificationColumns + `)
		VALUES (
			:id, :title, :message, :type, :status, :created_at,
			:action_url, :related_id, :recipient_email, :direction
		)`

	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	var added []string
	for _, n := range ns {
		if n.ID == "" {
			continue
		}
		n.CreatedAt = n.CreatedAt.UTC()
		if _, err := stmt.ExecContext(ctx, n); err != nil {
			return nil, fmt.Errorf("inserting notification %s: %w", n.ID, err)
		}
		if !seen[n.ID] {
			seen[n.ID] = true
			added = append(added, n.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return added, nil
}

// ListNotifications returns the snapshot filtered by filter, newest first.
func (s *SQLiteStore) ListNotifications(
	ctx context.Context,
	filter NotificationFilter,
) ([]model.Notification, error) {
	var (
		where []string
		args  []any
	)
	if filter.InvitationsOnly {
		where = append(where, "type = ?")
		args = append(args, string(model.NotificationTypeInvitation))
	}
	if filter.UnreadOnly {
		where = append(where, "status = ?")
		args = append(args, string(model.StatusUnread))
	}

	query := "SELECT " + notificationColumns + " FROM notifications"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var ns []model.Notification
	if err := s.db.SelectContext(ctx, &ns, query, args...); err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	return ns, nil
}

// GetNotification returns a single notification, or nil when absent.
func (s *SQLiteStore) GetNotification(
	ctx context.Context,
	id string,
) (*model.Notification, error) {
	var n model.Notification
	err := s.db.GetContext(ctx, &n,
		"SELECT "+notificationColumns+" FROM notifications WHERE id = ?", id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting notification %s: %w", id, err)
	}
	return &n, nil
}

// CountUnread returns the number of unread notifications in the snapshot.
func (s *SQLiteStore) CountUnread(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM notifications WHERE status = ?", string(model.StatusUnread),
	)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}
