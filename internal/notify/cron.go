package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/nhle/task-recurrence/internal/model"
	"github.com/nhle/task-recurrence/internal/store"
)

const deliveryTimeout = 30 * time.Second

// once is a cron.Schedule that activates a single time.
type once time.Time

// Next returns the fire time until it has passed, then the zero time, which
// cron treats as never.
func (o once) Next(t time.Time) time.Time {
	at := time.Time(o)
	if t.Before(at) {
		return at
	}
	return time.Time{}
}

type scheduled struct {
	entry cron.EntryID
	n     model.ScheduledNotification
}

// CronDispatcher fires notifications from a cron runner. Scheduled entries
// are journaled when a journal is configured so Start can restore them
// after a restart.
type CronDispatcher struct {
	cron      *cron.Cron
	sink      Sink
	journal   store.NotificationJournal
	logger    *slog.Logger
	now       func() time.Time
	syncEvery time.Duration

	mu     sync.Mutex
	byTask map[string]map[Handle]scheduled
}

var _ Dispatcher = (*CronDispatcher)(nil)

// CronOption configures a CronDispatcher.
type CronOption func(*CronDispatcher)

// WithJournal persists scheduled notifications.
func WithJournal(j store.NotificationJournal) CronOption {
	return func(d *CronDispatcher) {
		d.journal = j
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) CronOption {
	return func(d *CronDispatcher) {
		d.logger = logger
	}
}

// WithClock replaces time.Now for the elapsed-time check and journaling.
func WithClock(now func() time.Time) CronOption {
	return func(d *CronDispatcher) {
		d.now = now
	}
}

// WithSyncInterval makes a started dispatcher reconcile its timers with the
// journal every interval, picking up changes made by other processes.
func WithSyncInterval(interval time.Duration) CronOption {
	return func(d *CronDispatcher) {
		d.syncEvery = interval
	}
}

// NewCronDispatcher returns a stopped dispatcher delivering to sink.
func NewCronDispatcher(sink Sink, opts ...CronOption) *CronDispatcher {
	d := &CronDispatcher{
		cron:   cron.New(),
		sink:   sink,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		byTask: make(map[string]map[Handle]scheduled),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start restores unsent journal entries whose fire time is still ahead and
// starts the runner.
func (d *CronDispatcher) Start(ctx context.Context) error {
	if d.journal != nil {
		pending, err := d.journal.PendingNotifications(ctx, d.now())
		if err != nil {
			return fmt.Errorf("restoring notifications: %w", err)
		}
		for _, n := range pending {
			d.add(n)
		}
		d.logger.Info("restored scheduled notifications", "count", len(pending))

		if d.syncEvery > 0 {
			d.cron.Schedule(cron.Every(d.syncEvery), cron.FuncJob(func() {
				if err := d.Sync(ctx); err != nil {
					d.logger.Warn("syncing notifications failed", "error", err)
				}
			}))
		}
	}

	d.cron.Start()
	return nil
}

// Stop halts the runner and waits for running deliveries.
func (d *CronDispatcher) Stop() {
	ctx := d.cron.Stop()
	<-ctx.Done()
}

// Schedule registers a notification for req.FireAt.
func (d *CronDispatcher) Schedule(ctx context.Context, req Request) (Handle, error) {
	now := d.now()
	if !req.FireAt.After(now) {
		return "", fmt.Errorf("scheduling notification for task %s at %s: %w",
			req.TaskID, req.FireAt.Format(time.RFC3339), ErrFireTimeElapsed)
	}

	h := Handle(uuid.NewString())
	n := req.notification(h, now.UTC())
	if d.journal != nil {
		if err := d.journal.SaveNotification(ctx, n); err != nil {
			return "", fmt.Errorf("journaling notification for task %s: %w", req.TaskID, err)
		}
	}

	d.add(n)
	d.logger.Debug("scheduled notification",
		"task_id", req.TaskID, "handle", h, "fire_at", req.FireAt)
	return h, nil
}

// CancelAll removes every pending notification of a task.
func (d *CronDispatcher) CancelAll(ctx context.Context, taskID string) error {
	d.mu.Lock()
	entries := d.byTask[taskID]
	delete(d.byTask, taskID)
	d.mu.Unlock()

	for _, s := range entries {
		d.cron.Remove(s.entry)
	}

	if d.journal != nil {
		if err := d.journal.DeleteNotificationsForTask(ctx, taskID); err != nil {
			return fmt.Errorf("canceling notifications for task %s: %w", taskID, err)
		}
	}
	if len(entries) > 0 {
		d.logger.Debug("canceled notifications", "task_id", taskID, "count", len(entries))
	}
	return nil
}

// Sync reconciles timers with the journal. Unsent future rows without a
// timer are scheduled; future timers whose rows are gone are removed.
func (d *CronDispatcher) Sync(ctx context.Context) error {
	if d.journal == nil {
		return nil
	}
	now := d.now()
	pending, err := d.journal.PendingNotifications(ctx, now)
	if err != nil {
		return fmt.Errorf("syncing notifications: %w", err)
	}

	want := make(map[Handle]model.ScheduledNotification, len(pending))
	for _, n := range pending {
		want[Handle(n.ID)] = n
	}

	var stale []cron.EntryID
	d.mu.Lock()
	for taskID, entries := range d.byTask {
		for h, s := range entries {
			if _, ok := want[h]; ok {
				delete(want, h)
				continue
			}
			if s.n.FireAt.After(now) {
				stale = append(stale, s.entry)
				delete(entries, h)
			}
		}
		if len(entries) == 0 {
			delete(d.byTask, taskID)
		}
	}
	d.mu.Unlock()

	for _, id := range stale {
		d.cron.Remove(id)
	}
	for _, n := range want {
		d.add(n)
	}
	if len(stale) > 0 || len(want) > 0 {
		d.logger.Debug("synced notifications", "added", len(want), "removed", len(stale))
	}
	return nil
}

// Pending returns the notifications waiting to fire, earliest first.
func (d *CronDispatcher) Pending() []model.ScheduledNotification {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []model.ScheduledNotification
	for _, entries := range d.byTask {
		for _, s := range entries {
			out = append(out, s.n)
		}
	}
	slices.SortFunc(out, func(a, b model.ScheduledNotification) int {
		return a.FireAt.Compare(b.FireAt)
	})
	return out
}

func (d *CronDispatcher) add(n model.ScheduledNotification) {
	d.mu.Lock()
	defer d.mu.Unlock()

	h := Handle(n.ID)
	if _, ok := d.byTask[n.TaskID][h]; ok {
		return
	}
	id := d.cron.Schedule(once(n.FireAt), cron.FuncJob(func() {
		d.fire(h, n)
	}))

	if d.byTask[n.TaskID] == nil {
		d.byTask[n.TaskID] = make(map[Handle]scheduled)
	}
	d.byTask[n.TaskID][h] = scheduled{entry: id, n: n}
}

// fire delivers n and retires its cron entry.
func (d *CronDispatcher) fire(h Handle, n model.ScheduledNotification) {
	d.mu.Lock()
	s, ok := d.byTask[n.TaskID][h]
	if ok {
		delete(d.byTask[n.TaskID], h)
		if len(d.byTask[n.TaskID]) == 0 {
			delete(d.byTask, n.TaskID)
		}
	}
	d.mu.Unlock()
	if !ok {
		// Canceled between the timer firing and this job running.
		return
	}
	d.cron.Remove(s.entry)

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	n.Sent = true
	if err := d.sink.Deliver(ctx, n); err != nil {
		d.logger.Warn("delivering notification failed",
			"task_id", n.TaskID, "handle", h, "error", err)
		return
	}

	if d.journal != nil {
		if err := d.journal.MarkNotificationSent(ctx, n.ID); err != nil {
			d.logger.Warn("marking notification sent failed",
				"task_id", n.TaskID, "handle", h, "error", err)
		}
	}
	d.logger.Debug("delivered notification", "task_id", n.TaskID, "handle", h)
}
