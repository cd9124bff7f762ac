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

CREATE TABLE IF NOT EXISTS tasks (
	id                    TEXT PRIMARY KEY,
	title                 TEXT NOT NULL,
	description           TEXT NOT NULL DEFAULT '',
	priority              TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('low', 'medium', 'high')),
	category              TEXT NOT NULL DEFAULT '',
	due_date              TEXT,
	completed             INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
	completed_at          TEXT,
	created_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	is_recurring          INTEGER NOT NULL DEFAULT 0 CHECK(is_recurring IN (0, 1)),
	recurring_pattern     TEXT,
	notification_settings TEXT,
	parent_task_id        TEXT,
	occurrence            INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks(completed);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
CREATE INDEX IF NOT EXISTS idx_tasks_parent_task_id ON tasks(parent_task_id);
CREATE INDEX IF NOT EXISTS idx_tasks_updated_at ON tasks(updated_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS scheduled_notifications (
	id                   TEXT PRIMARY KEY,
	task_id              TEXT NOT NULL,
	title                TEXT NOT NULL DEFAULT '',
	label                TEXT NOT NULL DEFAULT '',
	fire_at              DATETIME NOT NULL,
	requires_interaction INTEGER NOT NULL DEFAULT 0 CHECK(requires_interaction IN (0, 1)),
	sent                 INTEGER NOT NULL DEFAULT 0 CHECK(sent IN (0, 1)),
	created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_scheduled_notifications_task_id
	ON scheduled_notifications(task_id);

CREATE INDEX IF NOT EXISTS idx_scheduled_notifications_pending
	ON scheduled_notifications(sent, fire_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
