package recurrence

import (
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"

	"github.com/nhle/task-recurrence/internal/model"
)

// rrule-go numbers weekdays from Monday; model patterns number them from
// Sunday.
var weekdays = []rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// ToROption renders a pattern as RFC 5545 recurrence options. The end date
// is exclusive in a pattern but UNTIL is inclusive, so UNTIL is set to the
// day before. Month-end clamping has no RRULE equivalent; calendars that
// import the rule skip short months instead.
func ToROption(pattern model.RecurringPattern) (*rrule.ROption, error) {
	p := pattern.Normalize()

	opt := &rrule.ROption{Interval: p.Interval}
	switch p.Type {
	case model.PatternDaily, model.PatternCustom:
		opt.Freq = rrule.DAILY
	case model.PatternWeekly:
		opt.Freq = rrule.WEEKLY
		for _, d := range p.DaysOfWeek {
			opt.Byweekday = append(opt.Byweekday, weekdays[d])
		}
	case model.PatternMonthly:
		opt.Freq = rrule.MONTHLY
		if p.MonthDay != nil {
			opt.Bymonthday = []int{*p.MonthDay}
		}
	case model.PatternYearly:
		opt.Freq = rrule.YEARLY
	default:
		return nil, fmt.Errorf("converting pattern to rrule: %w: %q", model.ErrUnknownPatternType, p.Type)
	}

	if p.EndDate != nil {
		opt.Until = p.EndDate.AddDate(0, 0, -1)
	}
	if p.MaxOccurrences != nil {
		opt.Count = *p.MaxOccurrences
	}
	return opt, nil
}

// FormatRule returns the RRULE value for a pattern, e.g.
// "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE".
func FormatRule(pattern model.RecurringPattern) (string, error) {
	opt, err := ToROption(pattern)
	if err != nil {
		return "", err
	}
	return opt.RRuleString(), nil
}

// ParseRule converts an RRULE value into a normalized pattern. Only the
// parts a pattern can express are kept: frequency, interval, weekdays for
// weekly rules, the first month day for monthly rules, UNTIL and COUNT.
func ParseRule(s string) (model.RecurringPattern, error) {
	opt, err := rrule.StrToROption(strings.TrimPrefix(strings.TrimSpace(s), "RRULE:"))
	if err != nil {
		return model.RecurringPattern{}, fmt.Errorf("parsing rrule %q: %w", s, err)
	}
	return FromROption(opt)
}

// FromROption is the inverse of ToROption.
func FromROption(opt *rrule.ROption) (model.RecurringPattern, error) {
	var p model.RecurringPattern
	switch opt.Freq {
	case rrule.DAILY:
		p.Type = model.PatternDaily
	case rrule.WEEKLY:
		p.Type = model.PatternWeekly
		for _, wd := range opt.Byweekday {
			p.DaysOfWeek = append(p.DaysOfWeek, (wd.Day()+1)%7)
		}
	case rrule.MONTHLY:
		p.Type = model.PatternMonthly
		if len(opt.Bymonthday) > 0 {
			p.MonthDay = model.IntPtr(opt.Bymonthday[0])
		}
	case rrule.YEARLY:
		p.Type = model.PatternYearly
	default:
		return model.RecurringPattern{}, fmt.Errorf("unsupported rrule frequency %v", opt.Freq)
	}

	p.Interval = opt.Interval
	if !opt.Until.IsZero() {
		end := opt.Until.AddDate(0, 0, 1)
		p.EndDate = &end
	}
	if opt.Count > 0 {
		p.MaxOccurrences = model.IntPtr(opt.Count)
	}
	return p.Normalize(), nil
}
