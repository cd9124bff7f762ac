package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/task-recurrence/internal/model"
)

// MemoryStore is an in-process Store, used by tests and dry runs.
type MemoryStore struct {
	mu            sync.RWMutex
	tasks         map[string]model.Task
	notifications map[string]model.ScheduledNotification
	now           func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:         make(map[string]model.Task),
		notifications: make(map[string]model.ScheduledNotification),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

// AddTask stores a normalized copy of task.
func (m *MemoryStore) AddTask(_ context.Context, task model.Task) (string, error) {
	if strings.TrimSpace(task.Title) == "" {
		return "", fmt.Errorf("task title must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if _, exists := m.tasks[task.ID]; exists {
		return "", fmt.Errorf("creating task: duplicate id %s", task.ID)
	}
	now := m.now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	m.tasks[task.ID] = task.Normalize()
	return task.ID, nil
}

// GetTask returns a copy of the stored task.
func (m *MemoryStore) GetTask(_ context.Context, id string) (*model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("getting task %s: %w", id, ErrNotFound)
	}
	out := t.Clone()
	return &out, nil
}

// UpdateTask applies patch to the stored task.
func (m *MemoryStore) UpdateTask(_ context.Context, id string, patch TaskPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return fmt.Errorf("updating task %s: %w", id, ErrNotFound)
	}
	updated := patch.Apply(t, m.now())
	if strings.TrimSpace(updated.Title) == "" {
		return fmt.Errorf("task title must not be empty")
	}
	m.tasks[id] = updated
	return nil
}

// DeleteTask removes exactly one task.
func (m *MemoryStore) DeleteTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return fmt.Errorf("deleting task %s: %w", id, ErrNotFound)
	}
	delete(m.tasks, id)
	return nil
}

// ListByParent returns the instances of a series root, oldest occurrence
// first.
func (m *MemoryStore) ListByParent(_ context.Context, parentID string) ([]model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Task
	for _, t := range m.tasks {
		if t.ParentTaskID == parentID {
			out = append(out, t.Clone())
		}
	}
	slices.SortFunc(out, func(a, b model.Task) int {
		return cmp.Or(
			cmp.Compare(a.Occurrence, b.Occurrence),
			a.CreatedAt.Compare(b.CreatedAt),
			strings.Compare(a.ID, b.ID),
		)
	})
	return out, nil
}

// ListTasks returns tasks matching the filter, ordered like SQLiteStore.
func (m *MemoryStore) ListTasks(_ context.Context, filter TaskFilter) ([]model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Task
	for _, t := range m.tasks {
		if matches(filter, t) {
			out = append(out, t.Clone())
		}
	}

	slices.SortFunc(out, func(a, b model.Task) int {
		return cmp.Or(compareBy(filter.SortBy, filter.SortDesc, a, b), a.CreatedAt.Compare(b.CreatedAt), strings.Compare(a.ID, b.ID))
	})

	if filter.Limit > 0 {
		start := min(filter.Offset, len(out))
		end := min(start+filter.Limit, len(out))
		out = out[start:end]
	}
	return out, nil
}

// DeleteSeries removes the root and every instance naming it as parent.
func (m *MemoryStore) DeleteSeries(_ context.Context, rootID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, t := range m.tasks {
		if id == rootID || t.ParentTaskID == rootID {
			delete(m.tasks, id)
			n++
		}
	}
	if n == 0 {
		return 0, fmt.Errorf("deleting series %s: %w", rootID, ErrNotFound)
	}
	return n, nil
}

// SaveNotification inserts or replaces a journal entry.
func (m *MemoryStore) SaveNotification(_ context.Context, n model.ScheduledNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = m.now()
	}
	m.notifications[n.ID] = n
	return nil
}

// PendingNotifications returns unsent entries firing after the given instant.
func (m *MemoryStore) PendingNotifications(_ context.Context, after time.Time) ([]model.ScheduledNotification, error) {
	return m.selectNotifications(func(n model.ScheduledNotification) bool {
		return !n.Sent && n.FireAt.After(after)
	}), nil
}

// NotificationsForTask returns every entry of a task.
func (m *MemoryStore) NotificationsForTask(_ context.Context, taskID string) ([]model.ScheduledNotification, error) {
	return m.selectNotifications(func(n model.ScheduledNotification) bool {
		return n.TaskID == taskID
	}), nil
}

// MarkNotificationSent flags an entry as delivered.
func (m *MemoryStore) MarkNotificationSent(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notifications[id]
	if !ok {
		return fmt.Errorf("marking notification %s as sent: %w", id, ErrNotFound)
	}
	n.Sent = true
	m.notifications[id] = n
	return nil
}

// DeleteNotificationsForTask drops every entry of a task.
func (m *MemoryStore) DeleteNotificationsForTask(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, n := range m.notifications {
		if n.TaskID == taskID {
			delete(m.notifications, id)
		}
	}
	return nil
}

func (m *MemoryStore) selectNotifications(keep func(model.ScheduledNotification) bool) []model.ScheduledNotification {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.ScheduledNotification
	for _, n := range m.notifications {
		if keep(n) {
			out = append(out, n)
		}
	}
	slices.SortFunc(out, func(a, b model.ScheduledNotification) int {
		return cmp.Or(a.FireAt.Compare(b.FireAt), strings.Compare(a.ID, b.ID))
	})
	return out
}

func matches(f TaskFilter, t model.Task) bool {
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Category != nil && t.Category != *f.Category {
		return false
	}
	if f.ParentID != nil && t.ParentTaskID != *f.ParentID {
		return false
	}
	if f.Recurring != nil && t.IsRecurring != *f.Recurring {
		return false
	}
	if f.Query != nil && *f.Query != "" {
		q := strings.ToLower(*f.Query)
		if !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	if f.DueBefore != nil && (t.DueDate == nil || !t.DueDate.Before(*f.DueBefore)) {
		return false
	}
	return true
}

var priorityRank = map[model.Priority]int{
	model.PriorityHigh:   0,
	model.PriorityMedium: 1,
	model.PriorityLow:    2,
}

func compareBy(field string, desc bool, a, b model.Task) int {
	sign := 1
	if desc {
		sign = -1
	}

	switch field {
	case "created_at":
		return sign * a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return sign * a.UpdatedAt.Compare(b.UpdatedAt)
	case "title":
		return sign * strings.Compare(a.Title, b.Title)
	case "priority":
		return sign * cmp.Compare(priorityRank[a.Priority], priorityRank[b.Priority])
	default:
		// Tasks without a due date sort last in either direction.
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		}
		return sign * a.DueDate.Compare(*b.DueDate)
	}
}
