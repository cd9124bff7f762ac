// Package notify delivers task reminders at their fire times.
package notify

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/task-recurrence/internal/model"
)

// ErrFireTimeElapsed is returned when a request's fire time is not in the
// future.
var ErrFireTimeElapsed = errors.New("fire time already elapsed")

// Handle identifies one scheduled notification.
type Handle string

// Request asks for a single notification about a task.
type Request struct {
	TaskID              string
	FireAt              time.Time
	RequiresInteraction bool
	Title               string
	Label               string
}

// Dispatcher schedules and cancels task notifications.
type Dispatcher interface {
	Schedule(ctx context.Context, req Request) (Handle, error)
	CancelAll(ctx context.Context, taskID string) error
}

// notification converts a request into its journal form.
func (r Request) notification(h Handle, now time.Time) model.ScheduledNotification {
	return model.ScheduledNotification{
		ID:                  string(h),
		TaskID:              r.TaskID,
		Title:               r.Title,
		Label:               r.Label,
		FireAt:              r.FireAt,
		RequiresInteraction: r.RequiresInteraction,
		CreatedAt:           now,
	}
}

// Message renders the text delivered for a notification.
func Message(n model.ScheduledNotification) string {
	marker := "⏰"
	if n.RequiresInteraction {
		marker = "❗"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", marker, n.Title)
	if n.Label != "" {
		fmt.Fprintf(&b, "\ndue %s", n.Label)
	}
	return b.String()
}

// MemoryDispatcher records requests without delivering them. It accepts any
// fire time.
type MemoryDispatcher struct {
	mu       sync.Mutex
	pending  map[string][]model.ScheduledNotification
	canceled map[string]int
}

var _ Dispatcher = (*MemoryDispatcher)(nil)

// NewMemoryDispatcher returns an empty MemoryDispatcher.
func NewMemoryDispatcher() *MemoryDispatcher {
	return &MemoryDispatcher{
		pending:  make(map[string][]model.ScheduledNotification),
		canceled: make(map[string]int),
	}
}

// Schedule records the request.
func (d *MemoryDispatcher) Schedule(_ context.Context, req Request) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	h := Handle(uuid.NewString())
	d.pending[req.TaskID] = append(d.pending[req.TaskID], req.notification(h, time.Now().UTC()))
	return h, nil
}

// CancelAll drops every recorded request of a task.
func (d *MemoryDispatcher) CancelAll(_ context.Context, taskID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.pending, taskID)
	d.canceled[taskID]++
	return nil
}

// Pending returns the recorded requests of a task, earliest first.
func (d *MemoryDispatcher) Pending(taskID string) []model.ScheduledNotification {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := slices.Clone(d.pending[taskID])
	slices.SortFunc(out, func(a, b model.ScheduledNotification) int {
		return cmp.Compare(a.FireAt.UnixNano(), b.FireAt.UnixNano())
	})
	return out
}

// Total counts recorded requests across all tasks.
func (d *MemoryDispatcher) Total() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, p := range d.pending {
		n += len(p)
	}
	return n
}

// Cancellations reports how many times CancelAll ran for a task.
func (d *MemoryDispatcher) Cancellations(taskID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.canceled[taskID]
}
