package cli

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/task-recurrence/internal/export"
	"github.com/nhle/task-recurrence/internal/store"
)

func newExportCmd(a *app) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as JSON or iCalendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format == "" {
				format = "json"
				if strings.EqualFold(filepath.Ext(output), ".ics") {
					format = "ics"
				}
			}

			if err := a.open(nil); err != nil {
				return err
			}
			tasks, err := a.store.ListTasks(cmd.Context(), store.TaskFilter{SortBy: "created_at"})
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			switch format {
			case "json":
				data, err := export.MarshalTasks(tasks)
				if err != nil {
					return err
				}
				buf.Write(data)
			case "ics":
				if err := export.WriteICal(&buf, tasks); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown export format %q, use json or ics", format)
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := export.WriteFile(output, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d tasks to %s\n", len(tasks), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "json or ics (default from output extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import tasks from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := export.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := a.open(nil); err != nil {
				return err
			}

			ctx := cmd.Context()
			imported, skipped := 0, 0
			for _, t := range tasks {
				if t.ID != "" {
					_, err := a.store.GetTask(ctx, t.ID)
					if err == nil {
						skipped++
						continue
					}
					if !errors.Is(err, store.ErrNotFound) {
						return err
					}
				}
				if _, err := a.store.AddTask(ctx, t); err != nil {
					return fmt.Errorf("importing task %q: %w", t.Title, err)
				}
				imported++
			}

			if _, err := a.manager.RescheduleAll(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d tasks, skipped %d existing\n", imported, skipped)
			return nil
		},
	}
}
