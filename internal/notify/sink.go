package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/nhle/task-recurrence/internal/model"
)

// Sink delivers a due notification to the user.
type Sink interface {
	Deliver(ctx context.Context, n model.ScheduledNotification) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n model.ScheduledNotification) error

// Deliver calls f.
func (f SinkFunc) Deliver(ctx context.Context, n model.ScheduledNotification) error {
	return f(ctx, n)
}

// MultiSink delivers to every sink and joins their errors.
type MultiSink []Sink

// Deliver hands n to each sink in order.
func (m MultiSink) Deliver(ctx context.Context, n model.ScheduledNotification) error {
	var errs []error
	for _, s := range m {
		if err := s.Deliver(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes notifications to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a LogSink. A nil logger discards output.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LogSink{logger: logger}
}

// Deliver logs the notification at info level, or warn when it requires
// interaction.
func (s *LogSink) Deliver(ctx context.Context, n model.ScheduledNotification) error {
	level := slog.LevelInfo
	if n.RequiresInteraction {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, Message(n),
		"task_id", n.TaskID,
		"notification_id", n.ID,
		"fire_at", n.FireAt,
	)
	return nil
}
