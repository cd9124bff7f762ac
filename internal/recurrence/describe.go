package recurrence

import (
	"fmt"
	"strings"

	"github.com/nhle/task-recurrence/internal/model"
)

var dayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Describe renders a pattern for humans, e.g. "Every 2 weeks on Mon, Thu".
func Describe(pattern model.RecurringPattern) string {
	p := pattern.Normalize()
	n := p.Interval

	switch p.Type {
	case model.PatternDaily, model.PatternCustom:
		return every(n, "Daily", "days")
	case model.PatternWeekly:
		text := every(n, "Weekly", "weeks")
		if len(p.DaysOfWeek) > 0 {
			names := make([]string, len(p.DaysOfWeek))
			for i, d := range p.DaysOfWeek {
				names[i] = dayNames[d]
			}
			text += " on " + strings.Join(names, ", ")
		}
		return text
	case model.PatternMonthly:
		text := every(n, "Monthly", "months")
		if p.MonthDay != nil {
			text += fmt.Sprintf(" on the %d%s", *p.MonthDay, ordinalSuffix(*p.MonthDay))
		}
		return text
	case model.PatternYearly:
		return every(n, "Yearly", "years")
	default:
		return "Custom"
	}
}

func every(n int, single, plural string) string {
	if n == 1 {
		return single
	}
	return fmt.Sprintf("Every %d %s", n, plural)
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
