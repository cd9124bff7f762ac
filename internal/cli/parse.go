package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/task-recurrence/internal/model"
)

var dueLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.RFC3339,
}

// parseDue reads a due date in local time. "today" and "tomorrow" are
// date-only; an explicit clock keeps its time of day.
func parseDue(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch strings.ToLower(s) {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}

	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or YYYY-MM-DD HH:MM", s)
}

var weekdayNames = map[string]int{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

// parseWeekdays converts "mon,wed" into weekday indices (Sunday = 0).
func parseWeekdays(s string) ([]int, error) {
	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if len(part) > 3 {
			part = part[:3]
		}
		d, ok := weekdayNames[part]
		if !ok {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		days = append(days, d)
	}
	return days, nil
}

// parseReminders converts "15m,2h,1d" into enabled reminders with fresh ids.
func parseReminders(s string) ([]model.Reminder, error) {
	var out []model.Reminder
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		r, err := parseReminder(part)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseReminder(s string) (model.Reminder, error) {
	if len(s) < 2 {
		return model.Reminder{}, fmt.Errorf("invalid reminder %q, expected e.g. 15m, 2h or 1d", s)
	}
	amount, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || amount < 0 {
		return model.Reminder{}, fmt.Errorf("invalid reminder %q, expected e.g. 15m, 2h or 1d", s)
	}

	var unit model.ReminderUnit
	switch s[len(s)-1] {
	case 'm':
		unit = model.UnitMinutes
	case 'h':
		unit = model.UnitHours
	case 'd':
		unit = model.UnitDays
	default:
		return model.Reminder{}, fmt.Errorf("invalid reminder unit in %q, use m, h or d", s)
	}
	return model.Reminder{ID: uuid.NewString(), Unit: unit, Amount: amount, Enabled: true}, nil
}
