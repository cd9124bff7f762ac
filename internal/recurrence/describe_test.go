package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/task-recurrence/internal/model"
)

func TestDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern model.RecurringPattern
		want    string
	}{
		{model.RecurringPattern{Type: model.PatternDaily, Interval: 1}, "Daily"},
		{model.RecurringPattern{Type: model.PatternDaily, Interval: 3}, "Every 3 days"},
		{model.RecurringPattern{Type: model.PatternCustom, Interval: 10}, "Every 10 days"},
		{model.RecurringPattern{Type: model.PatternWeekly, Interval: 1}, "Weekly"},
		{model.RecurringPattern{Type: model.PatternWeekly, Interval: 2, DaysOfWeek: []int{4, 1}}, "Every 2 weeks on Mon, Thu"},
		{model.RecurringPattern{Type: model.PatternMonthly, Interval: 1, MonthDay: model.IntPtr(21)}, "Monthly on the 21st"},
		{model.RecurringPattern{Type: model.PatternMonthly, Interval: 6, MonthDay: model.IntPtr(12)}, "Every 6 months on the 12th"},
		{model.RecurringPattern{Type: model.PatternMonthly, Interval: 1, MonthDay: model.IntPtr(3)}, "Monthly on the 3rd"},
		{model.RecurringPattern{Type: model.PatternYearly, Interval: 2}, "Every 2 years"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Describe(tc.pattern))
		})
	}
}

func TestRuleRoundTrip(t *testing.T) {
	t.Parallel()

	end := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	patterns := []model.RecurringPattern{
		model.NewPattern(model.PatternDaily, 1),
		{Type: model.PatternWeekly, Interval: 2, DaysOfWeek: []int{0, 1, 3}},
		{Type: model.PatternMonthly, Interval: 1, MonthDay: model.IntPtr(15), MaxOccurrences: model.IntPtr(6)},
		{Type: model.PatternYearly, Interval: 1, EndDate: &end},
	}

	for _, p := range patterns {
		rule, err := FormatRule(p)
		require.NoError(t, err)

		parsed, err := ParseRule(rule)
		require.NoError(t, err)
		assert.True(t, p.Normalize().Equal(parsed), "rule %q parsed to %+v", rule, parsed)
	}
}

func TestFormatRule(t *testing.T) {
	t.Parallel()

	rule, err := FormatRule(model.RecurringPattern{Type: model.PatternWeekly, Interval: 2, DaysOfWeek: []int{1, 3}})
	require.NoError(t, err)

	assert.Contains(t, rule, "FREQ=WEEKLY")
	assert.Contains(t, rule, "INTERVAL=2")
	assert.Contains(t, rule, "BYDAY=MO,WE")
}

func TestFormatRuleCustomIsDaily(t *testing.T) {
	t.Parallel()

	rule, err := FormatRule(model.RecurringPattern{Type: model.PatternCustom, Interval: 4})
	require.NoError(t, err)
	assert.Contains(t, rule, "FREQ=DAILY")
}

func TestParseRuleRejectsUnsupportedFrequency(t *testing.T) {
	t.Parallel()

	_, err := ParseRule("FREQ=HOURLY;INTERVAL=2")
	assert.Error(t, err)
}
