package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/task-recurrence/internal/model"
)

// ErrNotFound is returned when the addressed task or notification does not
// exist.
var ErrNotFound = errors.New("not found")

// TaskFilter controls filtering, sorting, and pagination for task queries.
type TaskFilter struct {
	Completed *bool           // nil (all), open only, or completed only
	Priority  *model.Priority // exact priority or nil (all)
	Category  *string         // exact category or nil (all)
	ParentID  *string         // instances of a series root or nil (all)
	Recurring *bool           // recurring only, one-off only, or nil (all)
	Query     *string         // search title + description
	DueBefore *time.Time      // due strictly before this instant
	SortBy    string          // "due_date", "created_at", "updated_at", "title", "priority"
	SortDesc  bool
	Limit     int
	Offset    int
}

// TaskPatch is a partial update. Nil fields are left untouched; the Clear
// flags unset optional fields.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *model.Priority
	Category    *string

	DueDate      *time.Time
	ClearDueDate bool

	Completed *bool

	RecurringPattern *model.RecurringPattern
	ClearPattern     bool

	NotificationSettings *model.NotificationSettings
}

// Apply returns a copy of t with the patch applied. Completing a task stamps
// CompletedAt with now; reopening clears it.
func (p TaskPatch) Apply(t model.Task, now time.Time) model.Task {
	out := t.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.Category != nil {
		out.Category = *p.Category
	}

	switch {
	case p.ClearDueDate:
		out.DueDate = nil
	case p.DueDate != nil:
		d := *p.DueDate
		out.DueDate = &d
	}

	if p.Completed != nil {
		if *p.Completed && !out.Completed {
			at := now
			out.CompletedAt = &at
		}
		if !*p.Completed {
			out.CompletedAt = nil
		}
		out.Completed = *p.Completed
	}

	switch {
	case p.ClearPattern:
		out.RecurringPattern = nil
	case p.RecurringPattern != nil:
		pattern := p.RecurringPattern.Clone()
		out.RecurringPattern = &pattern
	}

	if p.NotificationSettings != nil {
		s := p.NotificationSettings.Clone()
		out.NotificationSettings = &s
	}

	out.UpdatedAt = now
	return out.Normalize()
}

// TaskStore persists tasks. Implementations return deep copies so callers
// never share pattern or settings values with the store.
type TaskStore interface {
	AddTask(ctx context.Context, task model.Task) (string, error)
	GetTask(ctx context.Context, id string) (*model.Task, error)
	UpdateTask(ctx context.Context, id string, patch TaskPatch) error
	DeleteTask(ctx context.Context, id string) error
	ListByParent(ctx context.Context, parentID string) ([]model.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)

	// DeleteSeries removes the root and every task naming it as parent in
	// one transaction and reports how many tasks were removed.
	DeleteSeries(ctx context.Context, rootID string) (int, error)
}

// NotificationJournal records dispatched reminders so they can be restored
// after a restart.
type NotificationJournal interface {
	SaveNotification(ctx context.Context, n model.ScheduledNotification) error
	PendingNotifications(ctx context.Context, after time.Time) ([]model.ScheduledNotification, error)
	NotificationsForTask(ctx context.Context, taskID string) ([]model.ScheduledNotification, error)
	MarkNotificationSent(ctx context.Context, id string) error
	DeleteNotificationsForTask(ctx context.Context, taskID string) error
}

// Store is the full persistence interface used by the application.
type Store interface {
	TaskStore
	NotificationJournal
	Close() error
}
