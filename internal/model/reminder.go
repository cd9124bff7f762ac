package model

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// ErrUnknownReminderUnit is returned for unit names other than minutes,
// hours, or days.
var ErrUnknownReminderUnit = errors.New("unknown reminder unit")

// ReminderUnit is the unit a reminder offset is expressed in.
type ReminderUnit string

const (
	UnitMinutes ReminderUnit = "minutes"
	UnitHours   ReminderUnit = "hours"
	UnitDays    ReminderUnit = "days"
)

// ParseReminderUnit converts a name into a ReminderUnit.
func ParseReminderUnit(s string) (ReminderUnit, error) {
	switch ReminderUnit(s) {
	case UnitMinutes, UnitHours, UnitDays:
		return ReminderUnit(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownReminderUnit, s)
}

// UnmarshalText rejects unknown units.
func (u *ReminderUnit) UnmarshalText(text []byte) error {
	parsed, err := ParseReminderUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Reminder is a notification offset before a task's due date.
type Reminder struct {
	ID      string       `json:"id,omitempty"`
	Unit    ReminderUnit `json:"unit"`
	Amount  int          `json:"amount"`
	Enabled bool         `json:"enabled"`
}

// NotificationSettings is the reminder configuration owned by a task.
type NotificationSettings struct {
	// Enabled gates every reminder: when false nothing is scheduled.
	Enabled bool `json:"enabled"`

	// Reminders is kept in insertion order for display only.
	Reminders []Reminder `json:"reminders"`
}

// Clone returns a deep copy of the settings.
func (s NotificationSettings) Clone() NotificationSettings {
	return NotificationSettings{
		Enabled:   s.Enabled,
		Reminders: slices.Clone(s.Reminders),
	}
}

// EnabledReminders returns the reminders that would produce fire times.
// It is empty when the settings themselves are disabled.
func (s NotificationSettings) EnabledReminders() []Reminder {
	if !s.Enabled {
		return nil
	}
	var out []Reminder
	for _, r := range s.Reminders {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// DefaultNotificationSettings returns the starter reminder set given to new
// tasks: disabled overall, with a 15 minute reminder switched on and 1 hour
// and 1 day reminders available but off.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Enabled: false,
		Reminders: []Reminder{
			{ID: uuid.NewString(), Unit: UnitMinutes, Amount: 15, Enabled: true},
			{ID: uuid.NewString(), Unit: UnitHours, Amount: 1, Enabled: false},
			{ID: uuid.NewString(), Unit: UnitDays, Amount: 1, Enabled: false},
		},
	}
}
