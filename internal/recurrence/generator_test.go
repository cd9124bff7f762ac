package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/task-recurrence/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustNext(t *testing.T, current time.Time, p model.RecurringPattern, generated int) Occurrence {
	t.Helper()
	occ, ok := Next(current, p, generated).Get()
	require.True(t, ok, "expected a next occurrence after %s", current)
	return occ
}

func TestNext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current time.Time
		pattern model.RecurringPattern
		want    time.Time
	}{
		{
			name:    "daily every 3 days",
			current: date(2025, time.March, 10),
			pattern: model.RecurringPattern{Type: model.PatternDaily, Interval: 3},
			want:    date(2025, time.March, 13),
		},
		{
			name:    "daily interval clamped to 1",
			current: date(2025, time.March, 10),
			pattern: model.RecurringPattern{Type: model.PatternDaily, Interval: 0},
			want:    date(2025, time.March, 11),
		},
		{
			name:    "custom falls back to day interval",
			current: date(2025, time.March, 10),
			pattern: model.RecurringPattern{Type: model.PatternCustom, Interval: 5},
			want:    date(2025, time.March, 15),
		},
		{
			name:    "weekly without weekdays",
			current: date(2025, time.March, 10),
			pattern: model.RecurringPattern{Type: model.PatternWeekly, Interval: 2},
			want:    date(2025, time.March, 24),
		},
		{
			name:    "weekly empty weekday set behaves like no weekdays",
			current: date(2025, time.March, 10),
			pattern: model.RecurringPattern{Type: model.PatternWeekly, Interval: 1, DaysOfWeek: []int{}},
			want:    date(2025, time.March, 17),
		},
		{
			name:    "weekly next weekday in the same week",
			current: date(2025, time.March, 10), // Monday
			pattern: model.RecurringPattern{Type: model.PatternWeekly, Interval: 2, DaysOfWeek: []int{1, 3, 5}},
			want:    date(2025, time.March, 12),
		},
		{
			name:    "weekly wrap to next week",
			current: date(2025, time.March, 14), // Friday
			pattern: model.RecurringPattern{Type: model.PatternWeekly, Interval: 1, DaysOfWeek: []int{1, 3}},
			want:    date(2025, time.March, 17),
		},
		{
			name:    "weekly wrap skips interval weeks",
			current: date(2025, time.March, 14), // Friday
			pattern: model.RecurringPattern{Type: model.PatternWeekly, Interval: 2, DaysOfWeek: []int{3, 1}},
			want:    date(2025, time.March, 24),
		},
		{
			name:    "weekly single weekday equal to today",
			current: date(2025, time.March, 12), // Wednesday
			pattern: model.RecurringPattern{Type: model.PatternWeekly, Interval: 1, DaysOfWeek: []int{3}},
			want:    date(2025, time.March, 19),
		},
		{
			name:    "monthly Jan 31 to Feb 28 on non-leap year",
			current: date(2025, time.January, 31),
			pattern: model.RecurringPattern{Type: model.PatternMonthly, Interval: 1},
			want:    date(2025, time.February, 28),
		},
		{
			name:    "monthly Jan 31 to Feb 29 on leap year",
			current: date(2024, time.January, 31),
			pattern: model.RecurringPattern{Type: model.PatternMonthly, Interval: 1},
			want:    date(2024, time.February, 29),
		},
		{
			name:    "monthly across year boundary",
			current: date(2025, time.November, 15),
			pattern: model.RecurringPattern{Type: model.PatternMonthly, Interval: 3},
			want:    date(2026, time.February, 15),
		},
		{
			name:    "monthly with month day clamped",
			current: date(2025, time.March, 15),
			pattern: model.RecurringPattern{Type: model.PatternMonthly, Interval: 1, MonthDay: model.IntPtr(31)},
			want:    date(2025, time.April, 30),
		},
		{
			name:    "monthly with month day earlier than current day",
			current: date(2025, time.January, 31),
			pattern: model.RecurringPattern{Type: model.PatternMonthly, Interval: 1, MonthDay: model.IntPtr(15)},
			want:    date(2025, time.February, 15),
		},
		{
			name:    "monthly with out of range month day uses current day",
			current: date(2025, time.January, 20),
			pattern: model.RecurringPattern{Type: model.PatternMonthly, Interval: 1, MonthDay: model.IntPtr(42)},
			want:    date(2025, time.February, 20),
		},
		{
			name:    "yearly Feb 29 to Feb 28",
			current: date(2024, time.February, 29),
			pattern: model.RecurringPattern{Type: model.PatternYearly, Interval: 1},
			want:    date(2025, time.February, 28),
		},
		{
			name:    "yearly Feb 29 to leap year",
			current: date(2024, time.February, 29),
			pattern: model.RecurringPattern{Type: model.PatternYearly, Interval: 4},
			want:    date(2028, time.February, 29),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			occ := mustNext(t, tc.current, tc.pattern, 1)
			assert.True(t, tc.want.Equal(occ.Due), "got %s, want %s", occ.Due, tc.want)
			assert.Equal(t, 2, occ.Index)
			assert.False(t, occ.Last)
		})
	}
}

func TestNextIsStrictlyAfterAnchor(t *testing.T) {
	t.Parallel()

	patterns := []model.RecurringPattern{
		{Type: model.PatternDaily, Interval: 1},
		{Type: model.PatternDaily, Interval: 7},
		{Type: model.PatternWeekly, Interval: 1},
		{Type: model.PatternWeekly, Interval: 3, DaysOfWeek: []int{0}},
		{Type: model.PatternWeekly, Interval: 1, DaysOfWeek: []int{0, 6}},
		{Type: model.PatternWeekly, Interval: 2, DaysOfWeek: []int{1, 2, 3, 4, 5}},
		{Type: model.PatternMonthly, Interval: 1},
		{Type: model.PatternMonthly, Interval: 1, MonthDay: model.IntPtr(1)},
		{Type: model.PatternMonthly, Interval: 2, MonthDay: model.IntPtr(31)},
		{Type: model.PatternYearly, Interval: 1},
	}

	start := date(2024, time.January, 1)
	for _, p := range patterns {
		for i := range 400 {
			anchor := start.AddDate(0, 0, i)
			occ := mustNext(t, anchor, p, 1)
			require.True(t, occ.Due.After(anchor), "%s from %s gave %s", Describe(p), anchor, occ.Due)
		}
	}
}

func TestNextPreservesClock(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+7", 7*60*60)
	current := time.Date(2025, time.January, 31, 9, 30, 0, 0, loc)

	occ := mustNext(t, current, model.NewPattern(model.PatternMonthly, 1), 1)

	assert.Equal(t, time.Date(2025, time.February, 28, 9, 30, 0, 0, loc), occ.Due)
}

func TestNextMaxOccurrences(t *testing.T) {
	t.Parallel()

	p := model.RecurringPattern{Type: model.PatternDaily, Interval: 1, MaxOccurrences: model.IntPtr(3)}

	current := date(2025, time.March, 10)
	generated := 1
	var spawned []Occurrence
	for {
		occ, ok := Next(current, p, generated).Get()
		if !ok {
			break
		}
		spawned = append(spawned, occ)
		current = occ.Due
		generated = occ.Index
		require.Less(t, len(spawned), 10, "series did not terminate")
	}

	require.Len(t, spawned, 2)
	assert.False(t, spawned[0].Last)
	assert.True(t, spawned[1].Last)
	assert.Equal(t, 3, spawned[1].Index)
}

func TestNextEndDate(t *testing.T) {
	t.Parallel()

	current := date(2025, time.March, 10)

	t.Run("end date before candidate ends series", func(t *testing.T) {
		t.Parallel()
		end := date(2025, time.March, 11)
		p := model.RecurringPattern{Type: model.PatternWeekly, Interval: 1, EndDate: &end}
		assert.True(t, Next(current, p, 1).IsAbsent())
	})

	t.Run("candidate on end date is excluded", func(t *testing.T) {
		t.Parallel()
		end := date(2025, time.March, 11)
		p := model.RecurringPattern{Type: model.PatternDaily, Interval: 1, EndDate: &end}
		assert.True(t, Next(current, p, 1).IsAbsent())
	})

	t.Run("candidate before end date is produced", func(t *testing.T) {
		t.Parallel()
		end := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
		p := model.RecurringPattern{Type: model.PatternDaily, Interval: 1, EndDate: &end}
		occ := mustNext(t, current.Add(23*time.Hour), p, 1)
		assert.Equal(t, 11, occ.Due.Day())
	})

	t.Run("first bound reached wins", func(t *testing.T) {
		t.Parallel()
		end := date(2025, time.April, 1)
		p := model.RecurringPattern{
			Type:           model.PatternDaily,
			Interval:       1,
			EndDate:        &end,
			MaxOccurrences: model.IntPtr(2),
		}
		got := Preview(current, p, 1, 10)
		assert.Len(t, got, 1)
	})
}

func TestNextUnknownTypeEnds(t *testing.T) {
	t.Parallel()

	p := model.RecurringPattern{Type: "hourly", Interval: 1}
	assert.True(t, Next(date(2025, time.March, 10), p, 1).IsAbsent())
}

func TestNextIsIdempotent(t *testing.T) {
	t.Parallel()

	p := model.RecurringPattern{Type: model.PatternWeekly, Interval: 2, DaysOfWeek: []int{2, 4}}
	current := date(2025, time.March, 13)

	first := mustNext(t, current, p, 4)
	second := mustNext(t, current, p, 4)
	assert.Equal(t, first, second)
}

func TestPreview(t *testing.T) {
	t.Parallel()

	p := model.RecurringPattern{Type: model.PatternWeekly, Interval: 1, DaysOfWeek: []int{1, 5}}
	got := Preview(date(2025, time.March, 10), p, 1, 4)

	want := []time.Time{
		date(2025, time.March, 14),
		date(2025, time.March, 17),
		date(2025, time.March, 21),
		date(2025, time.March, 24),
	}
	assert.Equal(t, want, got)
}
