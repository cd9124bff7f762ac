// Package recurrence computes the due dates of recurring task series.
//
// Every function here is pure: the same anchor, pattern and count always
// produce the same result. Arithmetic is date-only; the clock and location of
// the anchor are carried over unchanged to generated dates.
package recurrence

import (
	"time"

	"github.com/samber/mo"

	"github.com/nhle/task-recurrence/internal/model"
)

// Occurrence is a generated due date within a series.
type Occurrence struct {
	// Due is the due date of the new instance.
	Due time.Time

	// Index is the 1-based position of the new instance in the series.
	Index int

	// Last is set when the occurrence cap is reached by this instance, so no
	// further instance will be generated after it.
	Last bool
}

// Next returns the occurrence that follows current, or None once the series
// has ended. generated is the number of occurrences that already exist,
// the originating task included.
//
// An end date is exclusive: a candidate on or after it ends the series. A
// maxOccurrences cap ends the series once generated reaches it.
func Next(current time.Time, pattern model.RecurringPattern, generated int) mo.Option[Occurrence] {
	p := pattern.Normalize()
	if generated < 1 {
		generated = 1
	}

	if p.MaxOccurrences != nil && generated >= *p.MaxOccurrences {
		return mo.None[Occurrence]()
	}

	candidate, ok := advance(current, p)
	if !ok {
		return mo.None[Occurrence]()
	}

	if p.EndDate != nil && !dateBefore(candidate, *p.EndDate) {
		return mo.None[Occurrence]()
	}

	return mo.Some(Occurrence{
		Due:   candidate,
		Index: generated + 1,
		Last:  p.MaxOccurrences != nil && generated+1 >= *p.MaxOccurrences,
	})
}

// Preview lists up to n due dates that would follow anchor, stopping early
// when the series ends.
func Preview(anchor time.Time, pattern model.RecurringPattern, generated, n int) []time.Time {
	var out []time.Time
	current := anchor
	for range n {
		occ, ok := Next(current, pattern, generated).Get()
		if !ok {
			break
		}
		out = append(out, occ.Due)
		current = occ.Due
		generated = occ.Index
	}
	return out
}

// advance applies the pattern rule once. It reports false for unknown
// pattern types.
func advance(current time.Time, p model.RecurringPattern) (time.Time, bool) {
	switch p.Type {
	case model.PatternDaily, model.PatternCustom:
		return current.AddDate(0, 0, p.Interval), true
	case model.PatternWeekly:
		if len(p.DaysOfWeek) == 0 {
			return current.AddDate(0, 0, 7*p.Interval), true
		}
		return nextWeekday(current, p.DaysOfWeek, p.Interval), true
	case model.PatternMonthly:
		day := current.Day()
		if p.MonthDay != nil {
			day = *p.MonthDay
		}
		return addMonthsClamped(current, p.Interval, day), true
	case model.PatternYearly:
		return addMonthsClamped(current, 12*p.Interval, current.Day()), true
	default:
		return time.Time{}, false
	}
}

// nextWeekday finds the first listed weekday after current. Staying inside
// the current week moves forward day by day; wrapping past Saturday jumps to
// the week block interval weeks ahead. days must be sorted and non-empty.
func nextWeekday(current time.Time, days []int, interval int) time.Time {
	today := int(current.Weekday())
	for _, d := range days {
		if d > today {
			return current.AddDate(0, 0, d-today)
		}
	}
	// Back to the start of this week, then forward interval weeks.
	return current.AddDate(0, 0, 7*interval-today+days[0])
}

// addMonthsClamped moves t forward by months and lands on day, clamped to
// the last day of the target month.
func addMonthsClamped(t time.Time, months, day int) time.Time {
	year, month, _ := t.Date()
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := daysInMonth(first.Year(), first.Month())
	if day > last {
		day = last
	}
	hour, minute, sec := t.Clock()
	return time.Date(first.Year(), first.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// dateBefore compares calendar dates, ignoring clock time.
func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
