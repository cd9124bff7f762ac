package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/task-recurrence/internal/credential"
	"github.com/nhle/task-recurrence/internal/model"
	"github.com/nhle/task-recurrence/internal/store"
)

type env struct {
	t     *testing.T
	dir   string
	db    string
	creds *credential.Store
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	return &env{
		t:     t,
		dir:   dir,
		db:    filepath.Join(dir, "tasks.db"),
		creds: credential.NewStore(keyring.NewArrayKeyring(nil)),
	}
}

// run executes one taskrecur invocation and returns its combined output.
func (e *env) run(args ...string) (string, error) {
	e.t.Helper()

	a := &app{
		openCredentials: func() (*credential.Store, error) { return e.creds, nil },
	}
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(e.dir, "config.yaml"),
		"--db", e.db,
	}, args...))

	err := cmd.ExecuteContext(context.Background())
	require.NoError(e.t, a.close())
	return out.String(), err
}

func (e *env) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, out)
	return out
}

// addedID returns the short id printed by "add".
func addedID(t *testing.T, out string) string {
	t.Helper()
	fields := strings.Fields(out)
	require.GreaterOrEqual(t, len(fields), 2, out)
	require.Equal(t, "added", fields[0], out)
	return fields[1]
}

func (e *env) tasks() []model.Task {
	e.t.Helper()
	st, err := store.NewSQLiteStore(e.db)
	require.NoError(e.t, err)
	defer st.Close()

	tasks, err := st.ListTasks(context.Background(), store.TaskFilter{SortBy: "created_at"})
	require.NoError(e.t, err)
	return tasks
}

func byTitle(t *testing.T, tasks []model.Task, title string) model.Task {
	t.Helper()
	for _, task := range tasks {
		if task.Title == title {
			return task
		}
	}
	t.Fatalf("no task titled %q", title)
	return model.Task{}
}

func TestAddAndList(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	out := e.mustRun("add", "Water", "plants", "--due", "2030-01-06", "--repeat", "weekly", "--on", "mon,thu", "-p", "high")
	assert.Contains(t, out, "Water plants")
	assert.Contains(t, out, "Weekly on Mon, Thu")

	e.mustRun("add", "Buy milk", "-p", "low")

	out = e.mustRun("list")
	assert.Contains(t, out, "Water plants")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Sun 2030-01-06")
	assert.Contains(t, out, "2 tasks")

	out = e.mustRun("list", "--recurring")
	assert.Contains(t, out, "Water plants")
	assert.NotContains(t, out, "Buy milk")

	tasks := e.tasks()
	require.Len(t, tasks, 2)
	water := byTitle(t, tasks, "Water plants")
	assert.Equal(t, model.PriorityHigh, water.Priority)
	assert.Equal(t, []int{1, 4}, water.RecurringPattern.DaysOfWeek)
	require.NotNil(t, water.NotificationSettings)
	assert.False(t, water.NotificationSettings.Enabled)
}

func TestAddRejectsBadInput(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	_, err := e.run("add", "x", "--priority", "urgent")
	assert.ErrorIs(t, err, model.ErrUnknownPriority)

	_, err = e.run("add", "x", "--repeat", "hourly")
	assert.ErrorIs(t, err, model.ErrUnknownPatternType)

	_, err = e.run("add", "x", "--due", "next week")
	assert.Error(t, err)

	_, err = e.run("add", "x", "--template", "nope")
	assert.Error(t, err)
}

func TestAddWithReminders(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	e.mustRun("add", "Pay rent", "--due", "2030-01-06 18:00", "--remind", "1d,2h")
	e.mustRun("add", "Stand-up", "--due", "2030-01-07 09:30", "--template", "meeting-reminder")

	tasks := e.tasks()
	require.Len(t, tasks, 2)

	rent := byTitle(t, tasks, "Pay rent")
	require.NotNil(t, rent.NotificationSettings)
	assert.True(t, rent.NotificationSettings.Enabled)
	require.Len(t, rent.NotificationSettings.Reminders, 2)
	assert.Equal(t, model.UnitDays, rent.NotificationSettings.Reminders[0].Unit)
	assert.Equal(t, 18, rent.DueDate.Hour())

	standup := byTitle(t, tasks, "Stand-up")
	assert.True(t, standup.NotificationSettings.Enabled)
	assert.NotEmpty(t, standup.NotificationSettings.Reminders)

	st, err := store.NewSQLiteStore(e.db)
	require.NoError(t, err)
	defer st.Close()
	journaled, err := st.NotificationsForTask(context.Background(), rent.ID)
	require.NoError(t, err)
	assert.Len(t, journaled, 2)
}

func TestCompleteSpawnsUntilSeriesEnds(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	id := addedID(t, e.mustRun("add", "Gym", "--due", "2030-01-06", "--repeat", "daily", "--count", "2"))

	out := e.mustRun("complete", id)
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "2030-01-07")
	assert.Contains(t, out, "last occurrence")

	fields := strings.Fields(out[strings.Index(out, "next "):])
	next := fields[1]

	out = e.mustRun("complete", next)
	assert.Contains(t, out, "series ended")

	out = e.mustRun("list", "--all")
	assert.Contains(t, out, "(#2)")
	assert.Contains(t, out, "100% done")

	out = e.mustRun("reopen", next)
	assert.Contains(t, out, "reopened")
	assert.Contains(t, e.mustRun("list"), "Gym")
}

func TestDeleteSeries(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	id := addedID(t, e.mustRun("add", "Gym", "--due", "2030-01-06", "--repeat", "daily"))
	e.mustRun("complete", id)
	e.mustRun("add", "Unrelated")

	out := e.mustRun("delete", id, "--series", "--yes")
	assert.Contains(t, out, "deleted 2 tasks")

	tasks := e.tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Unrelated", tasks[0].Title)
}

func TestDeleteSingle(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	id := addedID(t, e.mustRun("add", "Once"))
	e.mustRun("delete", id)
	assert.Empty(t, e.tasks())

	_, err := e.run("delete", id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestNext(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	id := addedID(t, e.mustRun("add", "Gym", "--due", "2030-01-06", "--repeat", "daily"))
	out := e.mustRun("next", id, "-n", "3")
	assert.Equal(t, []string{"Mon 2030-01-07", "Tue 2030-01-08", "Wed 2030-01-09"},
		strings.Split(strings.TrimSpace(out), "\n"))

	plain := addedID(t, e.mustRun("add", "Once"))
	_, err := e.run("next", plain)
	assert.ErrorContains(t, err, "does not repeat")
}

func TestExportImport(t *testing.T) {
	t.Parallel()
	src := newEnv(t)

	src.mustRun("add", "Gym", "--due", "2030-01-06", "--repeat", "weekly", "--on", "mon")
	src.mustRun("add", "Buy milk")

	path := filepath.Join(src.dir, "backup.json")
	src.mustRun("export", "-o", path)

	dst := newEnv(t)
	out := dst.mustRun("import", path)
	assert.Contains(t, out, "imported 2 tasks, skipped 0 existing")
	out = dst.mustRun("import", path)
	assert.Contains(t, out, "imported 0 tasks, skipped 2 existing")

	got := dst.tasks()
	require.Len(t, got, 2)
	for _, want := range src.tasks() {
		imported := byTitle(t, got, want.Title)
		assert.Equal(t, want.ID, imported.ID)
		assert.Equal(t, want.IsRecurring, imported.IsRecurring)
		assert.True(t, want.CreatedAt.Equal(imported.CreatedAt))
	}

	ics := src.mustRun("export", "--format", "ics")
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Equal(t, 2, strings.Count(ics, "BEGIN:VTODO"))

	_, err := src.run("export", "--format", "xml")
	assert.Error(t, err)
}

func TestTemplates(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	out := e.mustRun("templates", "--popular")
	assert.Contains(t, out, "meeting-reminder")
	assert.Contains(t, out, "bill-payment")

	out = e.mustRun("templates", "--category", "health")
	assert.Contains(t, out, "medication-reminder")
	assert.NotContains(t, out, "meeting-reminder")

	out = e.mustRun("templates", "--search", "zzzz")
	assert.Contains(t, out, "no matching templates")
}

func TestToken(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	e.mustRun("token", "set", "123:abc")
	got, err := e.creds.Get(credential.TelegramTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "123:abc", got)

	e.mustRun("token", "delete")
	_, err = e.creds.Get(credential.TelegramTokenKey)
	assert.ErrorIs(t, err, credential.ErrNotFound)
}

func TestResolvePrefix(t *testing.T) {
	t.Parallel()

	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	for _, id := range []string{"abc-1", "abc-2", "xyz-1"} {
		_, err := st.AddTask(ctx, model.Task{ID: id, Title: id})
		require.NoError(t, err)
	}

	a := &app{store: st}
	id, err := a.resolve(ctx, "xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz-1", id)

	id, err = a.resolve(ctx, "abc-2")
	require.NoError(t, err)
	assert.Equal(t, "abc-2", id)

	_, err = a.resolve(ctx, "abc")
	assert.ErrorIs(t, err, errAmbiguousID)

	_, err = a.resolve(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestParseDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 1, 15, 4, 0, 0, time.UTC)
	tests := map[string]time.Time{
		"today":            time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		"tomorrow":         time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC),
		"2025-04-10":       time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC),
		"2025-04-10 18:30": time.Date(2025, time.April, 10, 18, 30, 0, 0, time.UTC),
		"2025-04-10T07:00": time.Date(2025, time.April, 10, 7, 0, 0, 0, time.UTC),
	}
	for in, want := range tests {
		got, err := parseDue(in, now)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s: got %s", in, got)
	}

	_, err := parseDue("someday", now)
	assert.Error(t, err)
}

func TestParseReminders(t *testing.T) {
	t.Parallel()

	rs, err := parseReminders("15m, 2h,1d,0m")
	require.NoError(t, err)
	require.Len(t, rs, 4)
	assert.Equal(t, model.UnitMinutes, rs[0].Unit)
	assert.Equal(t, 15, rs[0].Amount)
	assert.Equal(t, model.UnitHours, rs[1].Unit)
	assert.Equal(t, model.UnitDays, rs[2].Unit)
	assert.Equal(t, 0, rs[3].Amount)
	for _, r := range rs {
		assert.True(t, r.Enabled)
		assert.NotEmpty(t, r.ID)
	}

	for _, bad := range []string{"15", "m", "2w", "-1h", "xh"} {
		_, err := parseReminders(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseWeekdays(t *testing.T) {
	t.Parallel()

	days, err := parseWeekdays("Mon, wednesday,sun")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 0}, days)

	_, err = parseWeekdays("funday")
	assert.Error(t, err)
}
