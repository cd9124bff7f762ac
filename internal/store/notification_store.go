package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/task-recurrence/internal/model"
)

// SaveNotification inserts or replaces a scheduled notification record.
func (s *SQLiteStore) SaveNotification(ctx context.Context, n model.ScheduledNotification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO scheduled_notifications (
			id, task_id, title, label, fire_at, requires_interaction, sent, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.TaskID, n.Title, n.Label, n.FireAt.UTC(),
		boolToInt(n.RequiresInteraction), boolToInt(n.Sent), n.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving notification %s: %w", n.ID, err)
	}
	return nil
}

// PendingNotifications returns unsent notifications firing after the given
// instant, earliest first.
func (s *SQLiteStore) PendingNotifications(ctx context.Context, after time.Time) ([]model.ScheduledNotification, error) {
	var out []model.ScheduledNotification
	err := s.db.SelectContext(ctx, &out, `
		SELECT * FROM scheduled_notifications
		WHERE sent = 0 AND fire_at > ?
		ORDER BY fire_at ASC`,
		after.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying pending notifications: %w", err)
	}
	return out, nil
}

// NotificationsForTask returns every journaled notification of a task.
func (s *SQLiteStore) NotificationsForTask(ctx context.Context, taskID string) ([]model.ScheduledNotification, error) {
	var out []model.ScheduledNotification
	err := s.db.SelectContext(ctx, &out,
		"SELECT * FROM scheduled_notifications WHERE task_id = ? ORDER BY fire_at ASC", taskID)
	if err != nil {
		return nil, fmt.Errorf("querying notifications for task %s: %w", taskID, err)
	}
	return out, nil
}

// MarkNotificationSent flags a single notification as delivered.
func (s *SQLiteStore) MarkNotificationSent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE scheduled_notifications SET sent = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s as sent: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("marking notification %s as sent: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteNotificationsForTask drops every journaled notification of a task.
func (s *SQLiteStore) DeleteNotificationsForTask(ctx context.Context, taskID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM scheduled_notifications WHERE task_id = ?", taskID,
	)
	if err != nil {
		return fmt.Errorf("deleting notifications for task %s: %w", taskID, err)
	}
	return nil
}
