package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	t.Parallel()

	p, err := ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, p)

	p, err = ParsePriority("high")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)
	assert.True(t, p.RequiresInteraction())
	assert.False(t, PriorityLow.RequiresInteraction())

	_, err = ParsePriority("urgent")
	assert.ErrorIs(t, err, ErrUnknownPriority)
}

func TestTaskNormalize(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in            Task
		wantRecurring bool
		wantParent    string
		wantPriority  Priority
	}{
		"flag without pattern is cleared": {
			in:            Task{ID: "a", IsRecurring: true},
			wantRecurring: false,
			wantPriority:  PriorityMedium,
		},
		"pattern without flag sets it": {
			in:            Task{ID: "a", Priority: PriorityLow, RecurringPattern: &RecurringPattern{Type: PatternDaily}},
			wantRecurring: true,
			wantPriority:  PriorityLow,
		},
		"self parent is cleared": {
			in:           Task{ID: "a", ParentTaskID: "a"},
			wantPriority: PriorityMedium,
		},
		"real parent is kept": {
			in:           Task{ID: "b", ParentTaskID: "a", Priority: PriorityHigh},
			wantParent:   "a",
			wantPriority: PriorityHigh,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := tc.in.Normalize()
			assert.Equal(t, tc.wantRecurring, got.IsRecurring)
			assert.Equal(t, tc.wantParent, got.ParentTaskID)
			assert.Equal(t, tc.wantPriority, got.Priority)
			assert.Equal(t, 1, got.Occurrence)
		})
	}
}

func TestTaskNormalizeDoesNotAlias(t *testing.T) {
	t.Parallel()

	due := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	in := Task{
		ID:               "a",
		DueDate:          &due,
		RecurringPattern: &RecurringPattern{Type: PatternWeekly, Interval: 1, DaysOfWeek: []int{3, 1}},
	}

	out := in.Normalize()
	out.RecurringPattern.DaysOfWeek[0] = 6
	*out.DueDate = due.Add(time.Hour)

	assert.Equal(t, []int{3, 1}, in.RecurringPattern.DaysOfWeek)
	assert.True(t, in.DueDate.Equal(due))
}

func TestSeriesID(t *testing.T) {
	t.Parallel()

	root := Task{ID: "root"}
	child := Task{ID: "child", ParentTaskID: "root"}

	assert.False(t, root.IsInstance())
	assert.Equal(t, "root", root.SeriesID())
	assert.True(t, child.IsInstance())
	assert.Equal(t, "root", child.SeriesID())
}

func TestIsOverdue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, Task{DueDate: &past}.IsOverdue(now))
	assert.False(t, Task{DueDate: &past, Completed: true}.IsOverdue(now))
	assert.False(t, Task{DueDate: &future}.IsOverdue(now))
	assert.False(t, Task{}.IsOverdue(now))
}

func TestTaskJSONRejectsUnknownEnums(t *testing.T) {
	t.Parallel()

	var task Task
	err := json.Unmarshal([]byte(`{"id":"a","priority":"urgent"}`), &task)
	assert.ErrorIs(t, err, ErrUnknownPriority)

	var r Reminder
	err = json.Unmarshal([]byte(`{"unit":"weeks","amount":1}`), &r)
	assert.ErrorIs(t, err, ErrUnknownReminderUnit)
}

func TestEnabledReminders(t *testing.T) {
	t.Parallel()

	s := NotificationSettings{
		Enabled: true,
		Reminders: []Reminder{
			{ID: "a", Unit: UnitMinutes, Amount: 15, Enabled: true},
			{ID: "b", Unit: UnitHours, Amount: 1, Enabled: false},
		},
	}
	require.Len(t, s.EnabledReminders(), 1)
	assert.Equal(t, "a", s.EnabledReminders()[0].ID)

	s.Enabled = false
	assert.Empty(t, s.EnabledReminders())
}

func TestDefaultNotificationSettings(t *testing.T) {
	t.Parallel()

	a := DefaultNotificationSettings()
	b := DefaultNotificationSettings()

	assert.False(t, a.Enabled)
	require.Len(t, a.Reminders, 3)
	assert.Equal(t, Reminder{ID: a.Reminders[0].ID, Unit: UnitMinutes, Amount: 15, Enabled: true}, a.Reminders[0])
	assert.False(t, a.Reminders[1].Enabled)
	assert.False(t, a.Reminders[2].Enabled)
	assert.NotEqual(t, a.Reminders[0].ID, b.Reminders[0].ID)
}

func TestComputeStats(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)

	st := ComputeStats([]Task{
		{Completed: true},
		{DueDate: &past},
		{},
		{Completed: true, DueDate: &past},
	}, now)

	assert.Equal(t, TaskStats{Total: 4, Completed: 2, Pending: 2, Overdue: 1, CompletionRate: 50}, st)
	assert.Equal(t, TaskStats{}, ComputeStats(nil, now))
}
