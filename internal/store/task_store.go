package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/task-recurrence/internal/model"
)

const insertTask = `
	INSERT INTO tasks (
		id, title, description, priority, category,
		due_date, completed, completed_at, created_at, updated_at,
		is_recurring, recurring_pattern, notification_settings,
		parent_task_id, occurrence
	) VALUES (
		:id, :title, :description, :priority, :category,
		:due_date, :completed, :completed_at, :created_at, :updated_at,
		:is_recurring, :recurring_pattern, :notification_settings,
		:parent_task_id, :occurrence
	)`

const updateTask = `
	UPDATE tasks SET
		title = :title, description = :description, priority = :priority,
		category = :category, due_date = :due_date, completed = :completed,
		completed_at = :completed_at, updated_at = :updated_at,
		is_recurring = :is_recurring, recurring_pattern = :recurring_pattern,
		notification_settings = :notification_settings
	WHERE id = :id`

// AddTask inserts a normalized copy of task. Generates a UUID if ID is empty.
func (s *SQLiteStore) AddTask(ctx context.Context, task model.Task) (string, error) {
	if strings.TrimSpace(task.Title) == "" {
		return "", fmt.Errorf("task title must not be empty")
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	task = task.Normalize()

	row, err := newTaskRow(task)
	if err != nil {
		return "", err
	}
	if _, err := s.db.NamedExecContext(ctx, insertTask, row); err != nil {
		return "", fmt.Errorf("creating task: %w", err)
	}
	return task.ID, nil
}

// GetTask retrieves a single task by ID.
func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	var row taskRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM tasks WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	task, err := row.task()
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies patch to the stored task inside a transaction.
func (s *SQLiteStore) UpdateTask(ctx context.Context, id string, patch TaskPatch) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current taskRow
	err = tx.GetContext(ctx, &current, "SELECT * FROM tasks WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("updating task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("updating task %s: %w", id, err)
	}

	task, err := current.task()
	if err != nil {
		return err
	}
	task = patch.Apply(task, time.Now().UTC())
	if strings.TrimSpace(task.Title) == "" {
		return fmt.Errorf("task title must not be empty")
	}

	row, err := newTaskRow(task)
	if err != nil {
		return err
	}
	result, err := tx.NamedExecContext(ctx, updateTask, row)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("updating task %s: %w", id, ErrNotFound)
	}

	return tx.Commit()
}

// DeleteTask removes exactly one task by ID.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("deleting task %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListByParent returns the generated instances of a series root, oldest
// occurrence first.
func (s *SQLiteStore) ListByParent(ctx context.Context, parentID string) ([]model.Task, error) {
	var rows []taskRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM tasks WHERE parent_task_id = ? ORDER BY occurrence, created_at", parentID)
	if err != nil {
		return nil, fmt.Errorf("listing instances of %s: %w", parentID, err)
	}
	return toTasks(rows)
}

// ListTasks retrieves tasks matching the filter.
func (s *SQLiteStore) ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query, args := buildTaskQuery(filter)

	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	return toTasks(rows)
}

// DeleteSeries removes the root and all of its instances atomically.
func (s *SQLiteStore) DeleteSeries(ctx context.Context, rootID string) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	children, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE parent_task_id = ?", rootID)
	if err != nil {
		return 0, fmt.Errorf("deleting instances of series %s: %w", rootID, err)
	}
	root, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", rootID)
	if err != nil {
		return 0, fmt.Errorf("deleting series root %s: %w", rootID, err)
	}

	nChildren, _ := children.RowsAffected()
	nRoot, _ := root.RowsAffected()
	total := int(nChildren + nRoot)
	if total == 0 {
		return 0, fmt.Errorf("deleting series %s: %w", rootID, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing series delete %s: %w", rootID, err)
	}
	return total, nil
}

func toTasks(rows []taskRow) ([]model.Task, error) {
	tasks := make([]model.Task, 0, len(rows))
	for _, r := range rows {
		t, err := r.task()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// buildTaskQuery constructs the SELECT statement and args for a TaskFilter.
func buildTaskQuery(filter TaskFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Completed != nil {
		conditions = append(conditions, "completed = ?")
		args = append(args, boolToInt(*filter.Completed))
	}
	if filter.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, string(*filter.Priority))
	}
	if filter.Category != nil {
		conditions = append(conditions, "category = ?")
		args = append(args, *filter.Category)
	}
	if filter.ParentID != nil {
		conditions = append(conditions, "parent_task_id = ?")
		args = append(args, *filter.ParentID)
	}
	if filter.Recurring != nil {
		conditions = append(conditions, "is_recurring = ?")
		args = append(args, boolToInt(*filter.Recurring))
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q)
	}
	if filter.DueBefore != nil {
		conditions = append(conditions, "due_date IS NOT NULL AND julianday(due_date) < julianday(?)")
		args = append(args, filter.DueBefore.Format(time.RFC3339Nano))
	}

	query := "SELECT * FROM tasks"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	sortExprs := map[string]string{
		"due_date":   "due_date IS NULL, julianday(due_date)",
		"created_at": "created_at",
		"updated_at": "updated_at",
		"title":      "title",
		"priority":   "CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END",
	}
	sortExpr, ok := sortExprs[filter.SortBy]
	if !ok {
		sortExpr = sortExprs["due_date"]
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, created_at ASC, id ASC", sortExpr, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	return query, args
}
