package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownPriority is returned for priority names other than low, medium,
// or high.
var ErrUnknownPriority = errors.New("unknown priority")

// Priority is the user-assigned importance of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority converts a name into a Priority. The empty string maps to
// PriorityMedium.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPriority, s)
}

// UnmarshalText rejects unknown priorities.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// RequiresInteraction reports whether reminders for this priority should
// stay on screen until the user dismisses them.
func (p Priority) RequiresInteraction() bool {
	return p == PriorityHigh
}

// Task is a to-do item, optionally recurring and optionally reminded.
type Task struct {
	// ID is the unique, stable identifier for this task.
	ID string `json:"id"`

	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority"`

	// Category references a user-defined grouping by name or id.
	Category string `json:"category,omitempty"`

	// DueDate is the date the task is due. A midnight clock means the task
	// carries no time of day.
	DueDate *time.Time `json:"dueDate,omitempty"`

	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt,omitzero"`

	// IsRecurring mirrors RecurringPattern != nil.
	IsRecurring          bool                  `json:"isRecurring"`
	RecurringPattern     *RecurringPattern     `json:"recurringPattern,omitempty"`
	NotificationSettings *NotificationSettings `json:"notificationSettings,omitempty"`

	// ParentTaskID is set on generated instances and names the series root.
	ParentTaskID string `json:"parentTaskId,omitempty"`

	// Occurrence is the 1-based position of this task within its series.
	Occurrence int `json:"occurrence,omitempty"`
}

// IsInstance reports whether the task was generated from another task.
func (t Task) IsInstance() bool {
	return t.ParentTaskID != "" && t.ParentTaskID != t.ID
}

// SeriesID returns the id of the series root: the parent id for generated
// instances, the task's own id otherwise.
func (t Task) SeriesID() string {
	if t.IsInstance() {
		return t.ParentTaskID
	}
	return t.ID
}

// IsOverdue reports whether an open task's due date has passed.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Completed
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		v := *t.DueDate
		out.DueDate = &v
	}
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		out.CompletedAt = &v
	}
	if t.RecurringPattern != nil {
		p := t.RecurringPattern.Clone()
		out.RecurringPattern = &p
	}
	if t.NotificationSettings != nil {
		s := t.NotificationSettings.Clone()
		out.NotificationSettings = &s
	}
	return out
}

// Normalize returns a copy that satisfies the task invariants: priority
// defaults to medium, the pattern is normalized, IsRecurring follows the
// pattern, and a self-referencing parent id is cleared.
func (t Task) Normalize() Task {
	out := t.Clone()
	if out.Priority == "" {
		out.Priority = PriorityMedium
	}
	if out.RecurringPattern != nil {
		p := out.RecurringPattern.Normalize()
		out.RecurringPattern = &p
	}
	out.IsRecurring = out.RecurringPattern != nil
	if out.ParentTaskID == out.ID {
		out.ParentTaskID = ""
	}
	if out.Occurrence < 1 {
		out.Occurrence = 1
	}
	return out
}
