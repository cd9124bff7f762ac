package model

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrUnknownPatternType is returned when a recurrence type name is not one
// of the PatternType constants.
var ErrUnknownPatternType = errors.New("unknown recurrence type")

// PatternType identifies how often a recurring task repeats.
type PatternType string

const (
	PatternDaily   PatternType = "daily"
	PatternWeekly  PatternType = "weekly"
	PatternMonthly PatternType = "monthly"
	PatternYearly  PatternType = "yearly"
	// PatternCustom repeats every Interval days, same as PatternDaily.
	PatternCustom PatternType = "custom"
)

// PatternTypes lists every supported recurrence type in display order.
var PatternTypes = []PatternType{
	PatternDaily, PatternWeekly, PatternMonthly, PatternYearly, PatternCustom,
}

// ParsePatternType converts a name into a PatternType.
func ParsePatternType(s string) (PatternType, error) {
	for _, t := range PatternTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPatternType, s)
}

// UnmarshalText rejects names outside the closed set of recurrence types.
func (t *PatternType) UnmarshalText(text []byte) error {
	parsed, err := ParsePatternType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// RecurringPattern describes how a recurring task repeats and when the
// series stops.
type RecurringPattern struct {
	// Type selects the generation rule.
	Type PatternType `json:"type"`

	// Interval is the "every N units" multiplier. Values below 1 normalize to 1.
	Interval int `json:"interval"`

	// DaysOfWeek holds weekday indices (Sunday = 0). Weekly patterns only.
	DaysOfWeek []int `json:"daysOfWeek,omitempty"`

	// MonthDay pins monthly occurrences to a day of the month (1-31).
	MonthDay *int `json:"monthDay,omitempty"`

	// EndDate is an exclusive upper bound on generated due dates.
	EndDate *time.Time `json:"endDate,omitempty"`

	// MaxOccurrences caps the series size, the originating task included.
	MaxOccurrences *int `json:"maxOccurrences,omitempty"`
}

// NewPattern returns a normalized pattern of the given type and interval.
func NewPattern(t PatternType, interval int) RecurringPattern {
	return RecurringPattern{Type: t, Interval: interval}.Normalize()
}

// Normalize returns a copy with out-of-range values replaced by their
// defaults: interval is clamped to at least 1, month days outside 1-31 and
// fields that do not belong to the pattern type are cleared, weekday sets
// are deduplicated and sorted, and non-positive occurrence caps are dropped.
func (p RecurringPattern) Normalize() RecurringPattern {
	out := p.Clone()
	if out.Interval < 1 {
		out.Interval = 1
	}

	if out.Type == PatternWeekly {
		out.DaysOfWeek = normalizeWeekdays(out.DaysOfWeek)
	} else {
		out.DaysOfWeek = nil
	}

	if out.Type != PatternMonthly || (out.MonthDay != nil && (*out.MonthDay < 1 || *out.MonthDay > 31)) {
		out.MonthDay = nil
	}

	if out.MaxOccurrences != nil && *out.MaxOccurrences < 1 {
		out.MaxOccurrences = nil
	}

	return out
}

// WithType returns a normalized copy switched to t. Weekday and month-day
// settings are always cleared on a type change so they cannot go stale.
func (p RecurringPattern) WithType(t PatternType) RecurringPattern {
	out := p.Clone()
	if out.Type != t {
		out.DaysOfWeek = nil
		out.MonthDay = nil
	}
	out.Type = t
	return out.Normalize()
}

// Validate reports whether the pattern type is one of the known types.
func (p RecurringPattern) Validate() error {
	if _, err := ParsePatternType(string(p.Type)); err != nil {
		return err
	}
	return nil
}

// HasEndCondition reports whether the series is bounded by a date or count.
func (p RecurringPattern) HasEndCondition() bool {
	return p.EndDate != nil || p.MaxOccurrences != nil
}

// Clone returns a deep copy so callers never share slices or pointers.
func (p RecurringPattern) Clone() RecurringPattern {
	out := p
	if p.DaysOfWeek != nil {
		out.DaysOfWeek = slices.Clone(p.DaysOfWeek)
	}
	if p.MonthDay != nil {
		v := *p.MonthDay
		out.MonthDay = &v
	}
	if p.EndDate != nil {
		v := *p.EndDate
		out.EndDate = &v
	}
	if p.MaxOccurrences != nil {
		v := *p.MaxOccurrences
		out.MaxOccurrences = &v
	}
	return out
}

// Equal compares two patterns field by field.
func (p RecurringPattern) Equal(o RecurringPattern) bool {
	if p.Type != o.Type || p.Interval != o.Interval {
		return false
	}
	if !slices.Equal(p.DaysOfWeek, o.DaysOfWeek) {
		return false
	}
	if !equalIntPtr(p.MonthDay, o.MonthDay) || !equalIntPtr(p.MaxOccurrences, o.MaxOccurrences) {
		return false
	}
	switch {
	case p.EndDate == nil && o.EndDate == nil:
		return true
	case p.EndDate == nil || o.EndDate == nil:
		return false
	default:
		return p.EndDate.Equal(*o.EndDate)
	}
}

func normalizeWeekdays(days []int) []int {
	var out []int
	for _, d := range days {
		if d < 0 || d > 6 || slices.Contains(out, d) {
			continue
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return out
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
