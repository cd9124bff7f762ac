package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/task-recurrence/internal/model"
)

// SQLiteStore implements Store using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// dsn makes the driver write time.Time values in a format it can read back.
func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_time_format=sqlite"
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SchemaVersion reports the highest applied migration.
func (s *SQLiteStore) SchemaVersion() (int, error) {
	var version int
	if err := s.db.Get(&version, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order, each in its own transaction.
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
		if currentVersion, err = s.SchemaVersion(); err != nil {
			return err
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		tx, err := s.db.Beginx()
		if err != nil {
			return fmt.Errorf("beginning migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// taskRow mirrors the tasks table. Pattern and settings are stored as JSON.
type taskRow struct {
	ID                   string     `db:"id"`
	Title                string     `db:"title"`
	Description          string     `db:"description"`
	Priority             string     `db:"priority"`
	Category             string     `db:"category"`
	DueDate              *string    `db:"due_date"`
	Completed            bool       `db:"completed"`
	CompletedAt          *string    `db:"completed_at"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
	IsRecurring          bool       `db:"is_recurring"`
	RecurringPattern     *string    `db:"recurring_pattern"`
	NotificationSettings *string    `db:"notification_settings"`
	ParentTaskID         *string    `db:"parent_task_id"`
	Occurrence           int        `db:"occurrence"`
}

// newTaskRow flattens a task for storage.
func newTaskRow(t model.Task) (taskRow, error) {
	row := taskRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Category:    t.Category,
		DueDate:     formatTime(t.DueDate),
		Completed:   t.Completed,
		CompletedAt: formatTime(t.CompletedAt),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
		IsRecurring: t.IsRecurring,
		Occurrence:  t.Occurrence,
	}

	if t.RecurringPattern != nil {
		data, err := json.Marshal(t.RecurringPattern)
		if err != nil {
			return taskRow{}, fmt.Errorf("marshaling recurring_pattern for task %s: %w", t.ID, err)
		}
		s := string(data)
		row.RecurringPattern = &s
	}
	if t.NotificationSettings != nil {
		data, err := json.Marshal(t.NotificationSettings)
		if err != nil {
			return taskRow{}, fmt.Errorf("marshaling notification_settings for task %s: %w", t.ID, err)
		}
		s := string(data)
		row.NotificationSettings = &s
	}
	if t.ParentTaskID != "" {
		p := t.ParentTaskID
		row.ParentTaskID = &p
	}

	return row, nil
}

// task rebuilds the domain value from a row.
func (r taskRow) task() (model.Task, error) {
	t := model.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    model.Priority(r.Priority),
		Category:    r.Category,
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		IsRecurring: r.IsRecurring,
		Occurrence:  r.Occurrence,
	}

	var err error
	if t.DueDate, err = parseTime(r.DueDate); err != nil {
		return model.Task{}, fmt.Errorf("parsing due_date for task %s: %w", r.ID, err)
	}
	if t.CompletedAt, err = parseTime(r.CompletedAt); err != nil {
		return model.Task{}, fmt.Errorf("parsing completed_at for task %s: %w", r.ID, err)
	}

	if r.RecurringPattern != nil && *r.RecurringPattern != "" {
		var p model.RecurringPattern
		if err := json.Unmarshal([]byte(*r.RecurringPattern), &p); err != nil {
			return model.Task{}, fmt.Errorf("unmarshaling recurring_pattern for task %s: %w", r.ID, err)
		}
		t.RecurringPattern = &p
	}
	if r.NotificationSettings != nil && *r.NotificationSettings != "" {
		var s model.NotificationSettings
		if err := json.Unmarshal([]byte(*r.NotificationSettings), &s); err != nil {
			return model.Task{}, fmt.Errorf("unmarshaling notification_settings for task %s: %w", r.ID, err)
		}
		t.NotificationSettings = &s
	}
	if r.ParentTaskID != nil {
		t.ParentTaskID = *r.ParentTaskID
	}

	return t, nil
}

// formatTime stores t as RFC 3339 text so its offset, and with it the
// wall clock, survives the round trip.
func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339Nano)
	return &s
}

func parseTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
