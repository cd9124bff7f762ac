// Package series manages the lifecycle of recurring task series: creating
// tasks, spawning the next instance on completion, and deleting single
// instances or whole series while keeping reminders in step.
package series

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nhle/task-recurrence/internal/model"
	"github.com/nhle/task-recurrence/internal/notify"
	"github.com/nhle/task-recurrence/internal/recurrence"
	"github.com/nhle/task-recurrence/internal/reminder"
	"github.com/nhle/task-recurrence/internal/store"
)

// Manager mediates between callers and the task store. It holds no
// goroutines; the dispatcher owns all timers.
type Manager struct {
	store      store.TaskStore
	dispatcher notify.Dispatcher
	calc       reminder.Calculator
	logger     *slog.Logger
	now        func() time.Time
	notify     bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithDispatcher enables reminder scheduling through d.
func WithDispatcher(d notify.Dispatcher) Option {
	return func(m *Manager) {
		m.dispatcher = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithCalculator sets the reminder calculator.
func WithCalculator(c reminder.Calculator) Option {
	return func(m *Manager) {
		m.calc = c
	}
}

// WithNotificationsEnabled is the global switch. When off, every reschedule
// only cancels.
func WithNotificationsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.notify = enabled
	}
}

// New returns a Manager over s.
func New(s store.TaskStore, opts ...Option) *Manager {
	m := &Manager{
		store:  s,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		notify: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CompleteResult reports what a completion did.
type CompleteResult struct {
	// Completed is the task as saved after completion.
	Completed model.Task

	// Next is the spawned instance, nil when none was created.
	Next *model.Task

	// Last is set when Next is the final instance of its series.
	Last bool

	// Ended is set when the series has no further instances.
	Ended bool
}

// Create stores a new task and schedules its reminders. Tasks without
// notification settings get the default reminder set.
func (m *Manager) Create(ctx context.Context, task model.Task) (*model.Task, error) {
	task = task.Normalize()
	if task.NotificationSettings == nil {
		s := model.DefaultNotificationSettings()
		task.NotificationSettings = &s
	}

	id, err := m.store.AddTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	created, err := m.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	m.reschedule(ctx, *created)
	return created, nil
}

// Get returns a task by id.
func (m *Manager) Get(ctx context.Context, id string) (*model.Task, error) {
	return m.store.GetTask(ctx, id)
}

// Update applies patch and reschedules the task's reminders.
func (m *Manager) Update(ctx context.Context, id string, patch store.TaskPatch) (*model.Task, error) {
	if err := m.store.UpdateTask(ctx, id, patch); err != nil {
		return nil, err
	}
	task, err := m.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	m.reschedule(ctx, *task)
	return task, nil
}

// Complete marks a task done and, for a recurring task whose series has
// not ended, adds the next instance. Completing an already completed task
// changes nothing.
func (m *Manager) Complete(ctx context.Context, id string) (*CompleteResult, error) {
	task, err := m.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Completed {
		return &CompleteResult{Completed: *task}, nil
	}

	done := true
	if err := m.store.UpdateTask(ctx, id, store.TaskPatch{Completed: &done}); err != nil {
		return nil, fmt.Errorf("completing task %s: %w", id, err)
	}
	completed, err := m.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	m.reschedule(ctx, *completed)

	result := &CompleteResult{Completed: *completed}
	if !completed.IsRecurring {
		return result, nil
	}

	next, last, ended, err := m.spawn(ctx, *completed)
	if err != nil {
		return result, err
	}
	result.Next = next
	result.Last = last
	result.Ended = ended
	return result, nil
}

// Reopen marks a completed task as open again and restores its reminders.
func (m *Manager) Reopen(ctx context.Context, id string) (*model.Task, error) {
	open := false
	return m.Update(ctx, id, store.TaskPatch{Completed: &open})
}

// DeleteInstance removes exactly one task and cancels its reminders. Other
// members of its series are left untouched.
func (m *Manager) DeleteInstance(ctx context.Context, id string) error {
	if err := m.store.DeleteTask(ctx, id); err != nil {
		return err
	}
	m.cancel(ctx, id)
	return nil
}

// DeleteSeries removes the series containing id: the root and every
// instance naming it as parent. It returns the number of tasks removed.
func (m *Manager) DeleteSeries(ctx context.Context, id string) (int, error) {
	members, err := m.Series(ctx, id)
	if err != nil {
		return 0, err
	}
	rootID := members[0].SeriesID()

	n, err := m.store.DeleteSeries(ctx, rootID)
	if err != nil {
		return 0, fmt.Errorf("deleting series %s: %w", rootID, err)
	}
	for _, t := range members {
		m.cancel(ctx, t.ID)
	}

	m.logger.Debug("deleted series", "root_id", rootID, "tasks", n)
	return n, nil
}

// Series returns the members of the series containing id, root first when
// it still exists, then instances in occurrence order.
func (m *Manager) Series(ctx context.Context, id string) ([]model.Task, error) {
	task, err := m.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	rootID := task.SeriesID()

	var members []model.Task
	root, err := m.store.GetTask(ctx, rootID)
	switch {
	case err == nil:
		if root.ParentTaskID != "" {
			return nil, fmt.Errorf("series root %s has parent %s: %w", rootID, root.ParentTaskID, ErrSeriesIntegrity)
		}
		members = append(members, *root)
	case errors.Is(err, store.ErrNotFound):
		// The root was deleted on its own; its instances still form the series.
	default:
		return nil, err
	}

	children, err := m.store.ListByParent(ctx, rootID)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		if c.ParentTaskID != rootID {
			return nil, fmt.Errorf("instance %s names parent %s, want %s: %w", c.ID, c.ParentTaskID, rootID, ErrSeriesIntegrity)
		}
	}
	return append(members, children...), nil
}

// Upcoming previews the next n due dates of a recurring task's series.
func (m *Manager) Upcoming(ctx context.Context, id string, n int) ([]time.Time, error) {
	task, err := m.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.IsRecurring || task.RecurringPattern == nil {
		return nil, fmt.Errorf("previewing task %s: %w", id, ErrNotRecurring)
	}

	generated, err := m.generated(ctx, *task)
	if err != nil {
		return nil, err
	}
	return recurrence.Preview(m.anchor(*task), *task.RecurringPattern, generated, n), nil
}

// Snooze schedules a one-off reminder d from now. It returns an empty handle
// when no dispatcher is configured.
func (m *Manager) Snooze(ctx context.Context, id string, d time.Duration) (notify.Handle, error) {
	task, err := m.store.GetTask(ctx, id)
	if err != nil {
		return "", err
	}
	if m.dispatcher == nil {
		return "", nil
	}

	h, err := m.dispatcher.Schedule(ctx, notify.Request{
		TaskID:              task.ID,
		FireAt:              m.now().Add(d),
		RequiresInteraction: task.Priority.RequiresInteraction(),
		Title:               task.Title,
		Label:               "now",
	})
	if err != nil {
		return "", fmt.Errorf("snoozing task %s: %w", id, err)
	}
	return h, nil
}

// RescheduleAll recomputes reminders for every open task and returns how
// many notifications were scheduled.
func (m *Manager) RescheduleAll(ctx context.Context) (int, error) {
	open := false
	tasks, err := m.store.ListTasks(ctx, store.TaskFilter{Completed: &open})
	if err != nil {
		return 0, fmt.Errorf("rescheduling reminders: %w", err)
	}

	total := 0
	for _, t := range tasks {
		total += m.reschedule(ctx, t)
	}
	return total, nil
}

// spawn adds the instance following source. It returns a nil instance when
// the series has ended or source is not its latest occurrence; ended is set
// only in the first case.
func (m *Manager) spawn(ctx context.Context, source model.Task) (next *model.Task, last, ended bool, err error) {
	if source.RecurringPattern == nil {
		return nil, false, false, fmt.Errorf("spawning from task %s: %w", source.ID, ErrNotRecurring)
	}

	generated, err := m.generated(ctx, source)
	if err != nil {
		return nil, false, false, err
	}
	if source.Occurrence < generated {
		// A later instance already exists; completing an older one again
		// must not fork the series.
		m.logger.Debug("skipping spawn from earlier occurrence",
			"task_id", source.ID, "occurrence", source.Occurrence, "generated", generated)
		return nil, false, false, nil
	}

	occ, ok := recurrence.Next(m.anchor(source), *source.RecurringPattern, generated).Get()
	if !ok {
		m.logger.Debug("series ended", "root_id", source.SeriesID(), "generated", generated)
		return nil, false, true, nil
	}

	child := source.Clone()
	child.ID = ""
	child.Completed = false
	child.CompletedAt = nil
	child.CreatedAt = time.Time{}
	child.DueDate = &occ.Due
	child.ParentTaskID = source.SeriesID()
	child.Occurrence = occ.Index

	id, err := m.store.AddTask(ctx, child)
	if err != nil {
		return nil, false, false, fmt.Errorf("%w: task %s: %w", ErrSpawnFailed, source.ID, err)
	}
	spawned, err := m.store.GetTask(ctx, id)
	if err != nil {
		return nil, false, false, fmt.Errorf("%w: task %s: %w", ErrSpawnFailed, source.ID, err)
	}

	m.logger.Debug("spawned instance",
		"root_id", spawned.ParentTaskID, "task_id", spawned.ID,
		"occurrence", spawned.Occurrence, "due", occ.Due)
	m.reschedule(ctx, *spawned)
	return spawned, occ.Last, false, nil
}

// generated counts the instances produced so far as the highest occurrence
// index in the series, so deleting earlier instances does not extend it.
func (m *Manager) generated(ctx context.Context, task model.Task) (int, error) {
	members, err := m.Series(ctx, task.ID)
	if err != nil {
		return 0, err
	}

	n := max(task.Occurrence, 1)
	for _, t := range members {
		n = max(n, t.Occurrence)
	}
	return n, nil
}

func (m *Manager) anchor(task model.Task) time.Time {
	if task.DueDate != nil {
		return *task.DueDate
	}
	return m.now()
}

// reschedule cancels the task's notifications and schedules its future fire
// times. Dispatcher failures are logged and never fail the caller.
func (m *Manager) reschedule(ctx context.Context, task model.Task) int {
	if m.dispatcher == nil {
		return 0
	}
	m.cancel(ctx, task.ID)
	if task.Completed || !m.notify {
		return 0
	}

	now := m.now()
	scheduled := 0
	for _, ft := range m.calc.ForTask(task) {
		if !ft.At.After(now) {
			continue
		}
		_, err := m.dispatcher.Schedule(ctx, notify.Request{
			TaskID:              task.ID,
			FireAt:              ft.At,
			RequiresInteraction: ft.RequiresInteraction,
			Title:               task.Title,
			Label:               ft.Label,
		})
		if err != nil {
			m.logger.Warn("scheduling reminder failed",
				"task_id", task.ID, "fire_at", ft.At, "error", err)
			continue
		}
		scheduled++
	}
	return scheduled
}

func (m *Manager) cancel(ctx context.Context, taskID string) {
	if m.dispatcher == nil {
		return
	}
	if err := m.dispatcher.CancelAll(ctx, taskID); err != nil {
		m.logger.Warn("canceling reminders failed", "task_id", taskID, "error", err)
	}
}
