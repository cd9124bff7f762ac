// Package cli implements the taskrecur command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/task-recurrence/internal/credential"
	"github.com/nhle/task-recurrence/internal/model"
	"github.com/nhle/task-recurrence/internal/notify"
	"github.com/nhle/task-recurrence/internal/reminder"
	"github.com/nhle/task-recurrence/internal/series"
	"github.com/nhle/task-recurrence/internal/store"
)

// errAmbiguousID is returned when an id prefix matches more than one task.
var errAmbiguousID = errors.New("ambiguous task id")

// app holds the state shared by every command of one invocation.
type app struct {
	configPath string
	dbPath     string
	verbose    bool

	logger     *slog.Logger
	cfg        *model.AppConfig
	store      *store.SQLiteStore
	dispatcher *notify.CronDispatcher
	manager    *series.Manager

	openCredentials func() (*credential.Store, error)
}

// NewRootCmd builds the taskrecur command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskrecur",
		Short:         "Recurring tasks with reminders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", model.DefaultConfigPath(), "config file")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "database file (overrides database.path)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newCompleteCmd(a),
		newReopenCmd(a),
		newDeleteCmd(a),
		newNextCmd(a),
		newSnoozeCmd(a),
		newTemplatesCmd(),
		newExportCmd(a),
		newImportCmd(a),
		newServeCmd(a),
		newTokenCmd(a),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), errorLine(err))
		return 1
	}
	return 0
}

// init loads configuration and sets up logging. The store is opened lazily
// by the commands that need it.
func (a *app) init(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := model.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	a.cfg = cfg
	return nil
}

// open connects the store and builds the series manager. Reminders are
// journaled to the store and picked up by a running serve process.
func (a *app) open(sink notify.Sink) error {
	if a.manager != nil {
		return nil
	}

	path := a.cfg.Database.Path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}
	st, err := store.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	a.store = st
	a.logger.Debug("opened database", "path", path)

	if sink == nil {
		sink = notify.NewLogSink(a.logger)
	}
	a.dispatcher = notify.NewCronDispatcher(sink,
		notify.WithJournal(st),
		notify.WithLogger(a.logger),
		notify.WithSyncInterval(syncInterval),
	)
	a.manager = series.New(st,
		series.WithDispatcher(a.dispatcher),
		series.WithLogger(a.logger),
		series.WithCalculator(reminder.NewCalculator(a.cfg.DefaultTimeOfDay())),
		series.WithNotificationsEnabled(a.cfg.Notifications.Enabled),
	)
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	a.manager = nil
	return err
}

// resolve maps a full id or a unique id prefix to a task id.
func (a *app) resolve(ctx context.Context, ref string) (string, error) {
	if _, err := a.store.GetTask(ctx, ref); err == nil {
		return ref, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	tasks, err := a.store.ListTasks(ctx, store.TaskFilter{})
	if err != nil {
		return "", err
	}
	var match string
	for _, t := range tasks {
		if !strings.HasPrefix(t.ID, ref) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%w: %s", errAmbiguousID, ref)
		}
		match = t.ID
	}
	if match == "" {
		return "", fmt.Errorf("task %s: %w", ref, store.ErrNotFound)
	}
	return match, nil
}
