package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/task-recurrence/internal/catalog"
	"github.com/nhle/task-recurrence/internal/model"
	"github.com/nhle/task-recurrence/internal/recurrence"
	"github.com/nhle/task-recurrence/internal/series"
	"github.com/nhle/task-recurrence/internal/store"
	"github.com/nhle/task-recurrence/internal/theme"
)

type addOptions struct {
	description string
	priority    string
	category    string
	due         string

	repeat   string
	every    int
	on       string
	monthDay int
	until    string
	count    int

	template string
	remind   string
	notify   bool
}

func newAddCmd(a *app) *cobra.Command {
	var o addOptions

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := o.task(strings.Join(args, " "), time.Now())
			if err != nil {
				return err
			}
			if err := a.open(nil); err != nil {
				return err
			}

			created, err := a.manager.Create(cmd.Context(), task)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				theme.SuccessStyle.Render("added"), shortID(created.ID), created.Title)
			if created.RecurringPattern != nil {
				fmt.Fprintln(cmd.OutOrStdout(), theme.HelpStyle.Render(recurrence.Describe(*created.RecurringPattern)))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.description, "description", "d", "", "task description")
	f.StringVarP(&o.priority, "priority", "p", "medium", "low, medium or high")
	f.StringVarP(&o.category, "category", "c", "", "category")
	f.StringVar(&o.due, "due", "", "due date: YYYY-MM-DD, YYYY-MM-DD HH:MM, today or tomorrow")
	f.StringVarP(&o.repeat, "repeat", "r", "", "daily, weekly, monthly, yearly or custom")
	f.IntVar(&o.every, "every", 1, "repeat every N units")
	f.StringVar(&o.on, "on", "", "weekdays for weekly repeats, e.g. mon,wed")
	f.IntVar(&o.monthDay, "month-day", 0, "day of month for monthly repeats")
	f.StringVar(&o.until, "until", "", "stop repeating before this date")
	f.IntVar(&o.count, "count", 0, "total number of occurrences")
	f.StringVar(&o.template, "template", "", "notification template id")
	f.StringVar(&o.remind, "remind", "", "reminders before due, e.g. 15m,2h,1d")
	f.BoolVar(&o.notify, "notify", false, "enable the default reminders")
	return cmd
}

// task builds the task described by the flags.
func (o addOptions) task(title string, now time.Time) (model.Task, error) {
	priority, err := model.ParsePriority(o.priority)
	if err != nil {
		return model.Task{}, err
	}
	task := model.Task{
		Title:       title,
		Description: o.description,
		Priority:    priority,
		Category:    o.category,
	}

	if o.due != "" {
		due, err := parseDue(o.due, now)
		if err != nil {
			return model.Task{}, err
		}
		task.DueDate = &due
	}

	if o.repeat != "" {
		pattern, err := o.pattern(now)
		if err != nil {
			return model.Task{}, err
		}
		task.RecurringPattern = &pattern
	}

	switch {
	case o.template != "":
		settings, err := catalog.Apply(o.template)
		if err != nil {
			return model.Task{}, err
		}
		task.NotificationSettings = &settings
	case o.remind != "":
		rs, err := parseReminders(o.remind)
		if err != nil {
			return model.Task{}, err
		}
		task.NotificationSettings = &model.NotificationSettings{Enabled: true, Reminders: rs}
	case o.notify:
		settings := model.DefaultNotificationSettings()
		settings.Enabled = true
		task.NotificationSettings = &settings
	}

	return task.Normalize(), nil
}

func (o addOptions) pattern(now time.Time) (model.RecurringPattern, error) {
	t, err := model.ParsePatternType(o.repeat)
	if err != nil {
		return model.RecurringPattern{}, err
	}
	p := model.RecurringPattern{Type: t, Interval: o.every}

	if o.on != "" {
		days, err := parseWeekdays(o.on)
		if err != nil {
			return model.RecurringPattern{}, err
		}
		p.DaysOfWeek = days
	}
	if o.monthDay != 0 {
		p.MonthDay = model.IntPtr(o.monthDay)
	}
	if o.until != "" {
		end, err := parseDue(o.until, now)
		if err != nil {
			return model.RecurringPattern{}, err
		}
		p.EndDate = &end
	}
	if o.count > 0 {
		p.MaxOccurrences = model.IntPtr(o.count)
	}
	return p.Normalize(), nil
}

func newListCmd(a *app) *cobra.Command {
	var (
		all       bool
		done      bool
		recurring bool
		priority  string
		category  string
		search    string
		sortBy    string
		desc      bool
		limit     int
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := store.TaskFilter{
				SortBy:   sortBy,
				SortDesc: desc,
				Limit:    limit,
			}
			if category != "" {
				filter.Category = &category
			}
			if !all {
				filter.Completed = &done
			}
			if recurring {
				filter.Recurring = &recurring
			}
			if priority != "" {
				p, err := model.ParsePriority(priority)
				if err != nil {
					return err
				}
				filter.Priority = &p
			}
			if search != "" {
				filter.Query = &search
			}

			if err := a.open(nil); err != nil {
				return err
			}
			tasks, err := a.store.ListTasks(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), theme.HelpStyle.Render("no tasks"))
				return nil
			}
			renderTasks(cmd.OutOrStdout(), tasks, time.Now())
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&all, "all", "a", false, "include completed tasks")
	f.BoolVar(&done, "done", false, "show completed tasks only")
	f.BoolVar(&recurring, "recurring", false, "show recurring tasks only")
	f.StringVarP(&priority, "priority", "p", "", "filter by priority")
	f.StringVarP(&category, "category", "c", "", "filter by category")
	f.StringVarP(&search, "search", "s", "", "search title and description")
	f.StringVar(&sortBy, "sort", "due_date", "due_date, created_at, updated_at, title or priority")
	f.BoolVar(&desc, "desc", false, "sort descending")
	f.IntVarP(&limit, "limit", "n", 0, "maximum number of tasks")
	return cmd
}

func newCompleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "complete <id>",
		Aliases: []string{"done"},
		Short:   "Complete a task and spawn the next occurrence",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(nil); err != nil {
				return err
			}
			id, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			res, err := a.manager.Complete(cmd.Context(), id)
			if res == nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s %s\n",
				theme.SuccessStyle.Render("completed"), shortID(res.Completed.ID), res.Completed.Title)
			switch {
			case res.Next != nil:
				fmt.Fprintf(out, "next %s due %s\n", shortID(res.Next.ID), formatDue(res.Next.DueDate))
				if res.Last {
					fmt.Fprintln(out, theme.HelpStyle.Render("this is the last occurrence"))
				}
			case res.Ended:
				fmt.Fprintln(out, theme.HelpStyle.Render("series ended"))
			}
			return err
		},
	}
}

func newReopenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <id>",
		Short: "Mark a completed task as open again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(nil); err != nil {
				return err
			}
			id, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			task, err := a.manager.Reopen(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reopened %s %s\n", shortID(task.ID), task.Title)
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	var whole, yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task or its whole series",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(nil); err != nil {
				return err
			}
			ctx := cmd.Context()
			id, err := a.resolve(ctx, args[0])
			if err != nil {
				return err
			}

			if !whole {
				if err := a.manager.DeleteInstance(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", shortID(id))
				return nil
			}

			members, err := a.manager.Series(ctx, id)
			if err != nil {
				return err
			}
			if !yes {
				ok, err := confirm(
					fmt.Sprintf("Delete %d tasks in this series?", len(members)),
					"Every occurrence and its reminders will be removed.",
				)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "canceled")
					return nil
				}
			}

			n, err := a.manager.DeleteSeries(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d tasks\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&whole, "series", false, "delete every occurrence of the series")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func confirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&ok),
		),
	).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

func newNextCmd(a *app) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "next <id>",
		Short: "Preview upcoming due dates of a recurring task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(nil); err != nil {
				return err
			}
			id, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			dates, err := a.manager.Upcoming(cmd.Context(), id, n)
			if errors.Is(err, series.ErrNotRecurring) {
				return fmt.Errorf("task %s does not repeat", shortID(id))
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(dates) == 0 {
				fmt.Fprintln(out, theme.HelpStyle.Render("no further occurrences"))
				return nil
			}
			for i := range dates {
				fmt.Fprintln(out, formatDue(&dates[i]))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "count", "n", 5, "number of dates")
	return cmd
}

func newSnoozeCmd(a *app) *cobra.Command {
	var d time.Duration

	cmd := &cobra.Command{
		Use:   "snooze <id>",
		Short: "Remind about a task again later",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(nil); err != nil {
				return err
			}
			if d <= 0 {
				d = a.cfg.SnoozeDuration()
			}
			id, err := a.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if _, err := a.manager.Snooze(cmd.Context(), id, d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "snoozed %s for %s\n", shortID(id), d)
			return nil
		},
	}

	cmd.Flags().DurationVar(&d, "for", 0, "snooze length (default notifications.snooze_minutes)")
	return cmd
}
