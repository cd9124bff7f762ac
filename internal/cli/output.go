package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/nhle/task-recurrence/internal/catalog"
	"github.com/nhle/task-recurrence/internal/model"
	"github.com/nhle/task-recurrence/internal/recurrence"
	"github.com/nhle/task-recurrence/internal/reminder"
	"github.com/nhle/task-recurrence/internal/theme"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// formatDue renders a due date, omitting the clock for date-only values.
func formatDue(due *time.Time) string {
	if due == nil {
		return "-"
	}
	h, m, s := due.Clock()
	if h == 0 && m == 0 && s == 0 {
		return due.Format("Mon 2006-01-02")
	}
	return due.Format("Mon 2006-01-02 15:04")
}

func status(t model.Task, now time.Time) string {
	switch {
	case t.Completed:
		return theme.StatusDone
	case t.IsOverdue(now):
		return theme.StatusOverdue
	default:
		return theme.StatusOpen
	}
}

func repeats(t model.Task) string {
	if t.RecurringPattern == nil {
		return ""
	}
	desc := recurrence.Describe(*t.RecurringPattern)
	if t.Occurrence > 1 {
		desc += fmt.Sprintf(" (#%d)", t.Occurrence)
	}
	return desc
}

func reminders(rs []model.Reminder) string {
	labels := make([]string, 0, len(rs))
	for _, r := range rs {
		labels = append(labels, reminder.Describe(r))
	}
	return strings.Join(labels, ", ")
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = false
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func renderTasks(w io.Writer, tasks []model.Task, now time.Time) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Title", "Priority", "Due", "Repeats", "Status"})
	for _, task := range tasks {
		st := status(task, now)
		t.AppendRow(table.Row{
			shortID(task.ID),
			task.Title,
			theme.PriorityStyle(task.Priority).Render(string(task.Priority)),
			formatDue(task.DueDate),
			repeats(task),
			theme.StatusStyle(st).Render(st),
		})
	}

	stats := model.ComputeStats(tasks, now)
	t.AppendFooter(table.Row{
		"", fmt.Sprintf("%d tasks", stats.Total), "",
		fmt.Sprintf("%d overdue", stats.Overdue), "",
		fmt.Sprintf("%.0f%% done", stats.CompletionRate),
	})
	t.Render()
}

func renderTemplates(w io.Writer, templates []model.NotificationTemplate) {
	colors := make(map[model.TemplateCategory]model.CategoryInfo)
	for _, c := range catalog.Categories() {
		colors[c.ID] = c
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Category", "Priority", "Reminders"})
	for _, tmpl := range templates {
		info := colors[tmpl.Category]
		t.AppendRow(table.Row{
			tmpl.ID,
			tmpl.Icon + " " + tmpl.Name,
			theme.CategoryStyle(info.Color).Render(info.Name),
			theme.PriorityStyle(tmpl.Priority).Render(string(tmpl.Priority)),
			reminders(tmpl.Reminders),
		})
	}
	t.Render()
}

func errorLine(err error) string {
	return theme.ErrorStyle.Render("error:") + " " + err.Error()
}
