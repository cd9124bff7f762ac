package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/nhle/task-recurrence/internal/model"
	"github.com/nhle/task-recurrence/internal/recurrence"
	"github.com/nhle/task-recurrence/internal/reminder"
)

const productID = "-//taskrecur//Task Export//EN"

// RFC 5545 priorities: 1 is highest, 9 lowest.
var icalPriority = map[model.Priority]int{
	model.PriorityHigh:   1,
	model.PriorityMedium: 5,
	model.PriorityLow:    9,
}

// Calendar builds a VCALENDAR holding one VTODO per task. Series roots carry
// an RRULE; generated instances point at their root with RELATED-TO.
func Calendar(tasks []model.Task, stamp time.Time) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	for _, t := range tasks {
		todo, err := todoComponent(t, stamp)
		if err != nil {
			return nil, err
		}
		cal.Children = append(cal.Children, todo)
	}
	return cal, nil
}

// WriteICal encodes tasks as an iCalendar stream.
func WriteICal(w io.Writer, tasks []model.Task) error {
	cal, err := Calendar(tasks, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	return nil
}

func todoComponent(t model.Task, stamp time.Time) (*ical.Component, error) {
	todo := ical.NewComponent(ical.CompToDo)
	todo.Props.SetText(ical.PropUID, t.ID)
	todo.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	todo.Props.SetText(ical.PropSummary, t.Title)
	if t.Description != "" {
		todo.Props.SetText(ical.PropDescription, t.Description)
	}
	if t.Category != "" {
		todo.Props.SetText(ical.PropCategories, t.Category)
	}
	if p, ok := icalPriority[t.Priority]; ok {
		prio := ical.NewProp(ical.PropPriority)
		prio.Value = strconv.Itoa(p)
		todo.Props.Set(prio)
	}
	if !t.CreatedAt.IsZero() {
		todo.Props.SetDateTime(ical.PropCreated, t.CreatedAt.UTC())
	}

	if t.Completed {
		todo.Props.SetText(ical.PropStatus, "COMPLETED")
		if t.CompletedAt != nil {
			todo.Props.SetDateTime(ical.PropCompleted, t.CompletedAt.UTC())
		}
	} else {
		todo.Props.SetText(ical.PropStatus, "NEEDS-ACTION")
	}

	if t.DueDate != nil {
		setDue(todo.Props, ical.PropDue, *t.DueDate)
	}

	if t.IsInstance() {
		todo.Props.SetText(ical.PropRelatedTo, t.ParentTaskID)
	} else if t.RecurringPattern != nil && t.DueDate != nil {
		rule, err := recurrence.ToROption(*t.RecurringPattern)
		if err != nil {
			return nil, fmt.Errorf("exporting task %s: %w", t.ID, err)
		}
		setDue(todo.Props, ical.PropDateTimeStart, *t.DueDate)
		todo.Props.SetRecurrenceRule(rule)
	}

	if t.NotificationSettings != nil {
		for _, r := range t.NotificationSettings.EnabledReminders() {
			if r.Amount < 0 {
				continue
			}
			todo.Children = append(todo.Children, alarmComponent(t.Title, r))
		}
	}

	return todo, nil
}

// setDue writes a DATE value for date-only times and DATE-TIME otherwise.
func setDue(props ical.Props, name string, due time.Time) {
	hour, minute, sec := due.Clock()
	if hour == 0 && minute == 0 && sec == 0 && due.Nanosecond() == 0 {
		props.SetDate(name, due)
		return
	}
	props.SetDateTime(name, due)
}

func alarmComponent(title string, r model.Reminder) *ical.Component {
	alarm := ical.NewComponent(ical.CompAlarm)
	alarm.Props.SetText(ical.PropAction, "DISPLAY")
	alarm.Props.SetText(ical.PropDescription, fmt.Sprintf("%s (%s)", title, reminder.Describe(r)))

	trigger := ical.NewProp(ical.PropTrigger)
	trigger.SetValueType(ical.ValueDuration)
	trigger.Value = triggerDuration(r)
	alarm.Props.Set(trigger)

	return alarm
}

// triggerDuration formats a reminder as a negative RFC 5545 duration,
// e.g. "-PT15M" or "-P1D".
func triggerDuration(r model.Reminder) string {
	if r.Amount == 0 {
		return "PT0S"
	}

	var b strings.Builder
	b.WriteString("-P")
	switch r.Unit {
	case model.UnitDays:
		fmt.Fprintf(&b, "%dD", r.Amount)
	case model.UnitHours:
		fmt.Fprintf(&b, "T%dH", r.Amount)
	default:
		fmt.Fprintf(&b, "T%dM", r.Amount)
	}
	return b.String()
}
