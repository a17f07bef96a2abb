package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL DEFAULT '',
	message         TEXT NOT NULL DEFAULT '',
	type            TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL,
	action_url      TEXT NOT NULL DEFAULT '',
	related_id      TEXT NOT NULL DEFAULT '',
	recipient_email TEXT NOT NULL DEFAULT '',
	direction       TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);
CREATE INDEX IF NOT EXISTS idx_notifications_type_status ON notifications(type, status);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
