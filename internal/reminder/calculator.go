// Package reminder turns reminder offsets into absolute fire times.
package reminder

import (
	"fmt"
	"sort"
	"time"

	"github.com/nhle/task-recurrence/internal/model"
)

// DefaultTimeOfDay is used for due dates that carry no clock time.
const DefaultTimeOfDay = 9 * time.Hour

// FireTime is one computed notification.
type FireTime struct {
	ReminderID string
	At         time.Time

	// RequiresInteraction asks the dispatcher for a notification that is not
	// dismissed automatically. It is set for high priority tasks.
	RequiresInteraction bool

	// Label describes the offset relative to the due date, e.g. "in 2 hrs".
	Label string
}

// Calculator computes fire times. The zero value uses DefaultTimeOfDay.
type Calculator struct {
	// TimeOfDay is applied to due dates whose clock reads midnight.
	TimeOfDay time.Duration
}

// NewCalculator returns a Calculator placing date-only due dates at
// timeOfDay.
func NewCalculator(timeOfDay time.Duration) Calculator {
	return Calculator{TimeOfDay: timeOfDay}
}

// DueTime resolves a due date to a concrete instant.
func (c Calculator) DueTime(due time.Time) time.Time {
	hour, minute, sec := due.Clock()
	if hour != 0 || minute != 0 || sec != 0 || due.Nanosecond() != 0 {
		return due
	}
	tod := c.TimeOfDay
	if tod <= 0 || tod >= 24*time.Hour {
		tod = DefaultTimeOfDay
	}
	return due.Add(tod)
}

// FireTimes computes one fire time per enabled reminder, earliest first.
// Nothing is produced without a due date, without settings, or when the
// settings are disabled. Reminders with a negative amount are skipped.
func (c Calculator) FireTimes(due *time.Time, settings *model.NotificationSettings, priority model.Priority) []FireTime {
	if due == nil || settings == nil {
		return nil
	}

	at := c.DueTime(*due)
	var out []FireTime
	for _, r := range settings.EnabledReminders() {
		if r.Amount < 0 {
			continue
		}
		fire, err := Offset(at, r)
		if err != nil {
			continue
		}
		out = append(out, FireTime{
			ReminderID:          r.ID,
			At:                  fire,
			RequiresInteraction: priority.RequiresInteraction(),
			Label:               Describe(r),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At.Before(out[j].At)
	})
	return out
}

// ForTask computes the fire times for a task.
func (c Calculator) ForTask(task model.Task) []FireTime {
	return c.FireTimes(task.DueDate, task.NotificationSettings, task.Priority)
}

// Offset subtracts the reminder's amount from due. Days are calendar days.
func Offset(due time.Time, r model.Reminder) (time.Time, error) {
	switch r.Unit {
	case model.UnitMinutes:
		return due.Add(-time.Duration(r.Amount) * time.Minute), nil
	case model.UnitHours:
		return due.Add(-time.Duration(r.Amount) * time.Hour), nil
	case model.UnitDays:
		return due.AddDate(0, 0, -r.Amount), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", model.ErrUnknownReminderUnit, r.Unit)
	}
}

// Describe renders how far ahead of the due date a reminder fires.
func Describe(r model.Reminder) string {
	if r.Amount == 0 {
		return "now"
	}

	var unit string
	switch r.Unit {
	case model.UnitMinutes:
		unit = "min"
	case model.UnitHours:
		unit = "hr"
	default:
		unit = "day"
	}
	if r.Amount > 1 {
		unit += "s"
	}
	return fmt.Sprintf("in %d %s", r.Amount, unit)
}
