package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/task-recurrence/internal/model"
)

func ids(ts []model.NotificationTemplate) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestAll(t *testing.T) {
	t.Parallel()

	all := All()
	require.Len(t, all, 18)

	seen := map[string]bool{}
	for _, tmpl := range all {
		assert.False(t, seen[tmpl.ID], "duplicate id %s", tmpl.ID)
		seen[tmpl.ID] = true
		assert.NotEmpty(t, tmpl.Reminders, tmpl.ID)
	}
}

func TestByCategory(t *testing.T) {
	t.Parallel()

	for _, c := range Categories() {
		got := ByCategory(c.ID)
		assert.Len(t, got, 3, c.ID)
		for _, tmpl := range got {
			assert.Equal(t, c.ID, tmpl.Category)
		}
	}

	assert.Empty(t, ByCategory("leisure"))
}

func TestPopular(t *testing.T) {
	t.Parallel()

	assert.ElementsMatch(t,
		[]string{"meeting-reminder", "medication-reminder", "bill-payment", "quick-reminder", "important-task"},
		ids(Popular()),
	)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query string
		want  []string
	}{
		{"MEDICATION", []string{"medication-reminder"}},
		{"standup", []string{"daily-standup"}},
		{"habits", []string{"routine-task"}},
		{"no such thing", nil},
	}

	for _, tc := range tests {
		got := Search(tc.query)
		if tc.want == nil {
			assert.Empty(t, got, tc.query)
			continue
		}
		assert.Equal(t, tc.want, ids(got), tc.query)
	}

	assert.Contains(t, ids(Search("deadline")), "deadline-alert")
	assert.Contains(t, ids(Search("deadline")), "tax-deadline")
}

func TestByID(t *testing.T) {
	t.Parallel()

	tmpl, err := ByID("tax-deadline")
	require.NoError(t, err)
	assert.Equal(t, model.TemplateFinance, tmpl.Category)
	assert.Len(t, tmpl.Reminders, 4)

	_, err = ByID("missing")
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
}

func TestReturnedTemplatesAreCopies(t *testing.T) {
	t.Parallel()

	tmpl, err := ByID("quick-reminder")
	require.NoError(t, err)
	tmpl.Reminders[0].Amount = 999

	again, err := ByID("quick-reminder")
	require.NoError(t, err)
	assert.Equal(t, 15, again.Reminders[0].Amount)
}

func TestApply(t *testing.T) {
	t.Parallel()

	first, err := Apply("meeting-reminder")
	require.NoError(t, err)
	second, err := Apply("meeting-reminder")
	require.NoError(t, err)

	assert.True(t, first.Enabled)
	require.Len(t, first.Reminders, 3)

	firstIDs := map[string]bool{}
	for _, r := range first.Reminders {
		require.NotEmpty(t, r.ID)
		assert.True(t, r.Enabled)
		firstIDs[r.ID] = true
	}
	for _, r := range second.Reminders {
		assert.False(t, firstIDs[r.ID], "reminder id %s reused across applications", r.ID)
	}

	assert.Equal(t, model.UnitDays, first.Reminders[0].Unit)
	assert.Equal(t, 1, first.Reminders[0].Amount)

	_, err = Apply("missing")
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
}

func TestSettingsKeepsReminderSwitch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		reminders []model.Reminder
		want      []bool
	}{
		{
			name:      "all enabled",
			reminders: []model.Reminder{days(1), hours(2)},
			want:      []bool{true, true},
		},
		{
			name: "one disabled",
			reminders: []model.Reminder{
				days(1),
				{ID: "template-id", Unit: model.UnitMinutes, Amount: 30, Enabled: false},
			},
			want: []bool{true, false},
		},
		{
			name:      "empty",
			reminders: nil,
			want:      []bool{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Settings(model.NotificationTemplate{ID: "custom", Reminders: tc.reminders})
			assert.True(t, got.Enabled)
			require.Len(t, got.Reminders, len(tc.want))

			enabled := make([]bool, len(got.Reminders))
			for i, r := range got.Reminders {
				enabled[i] = r.Enabled
				assert.NotEmpty(t, r.ID)
				assert.NotEqual(t, "template-id", r.ID)
				assert.Equal(t, tc.reminders[i].Amount, r.Amount)
			}
			assert.Equal(t, tc.want, enabled)
		})
	}
}
