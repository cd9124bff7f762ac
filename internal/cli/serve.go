package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/task-recurrence/internal/credential"
	"github.com/nhle/task-recurrence/internal/model"
	"github.com/nhle/task-recurrence/internal/notify"
)

// syncInterval is how often serve picks up reminders changed by other
// taskrecur invocations.
const syncInterval = time.Minute

// telegramTokenEnv overrides the keyring token.
const telegramTokenEnv = "TASKRECUR_TELEGRAM_TOKEN"

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Deliver reminders until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			sinks := notify.MultiSink{
				notify.NewLogSink(a.logger),
				notify.SinkFunc(func(_ context.Context, n model.ScheduledNotification) error {
					_, err := fmt.Fprintln(out, notify.Message(n))
					return err
				}),
			}

			if a.cfg.Telegram.Enabled {
				token, err := a.telegramToken()
				if err != nil {
					return err
				}
				tg, err := notify.NewTelegramSink(token, a.cfg.Telegram.ChatID)
				if err != nil {
					return err
				}
				sinks = append(sinks, tg)
			}

			if err := a.open(sinks); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			n, err := a.manager.RescheduleAll(ctx)
			if err != nil {
				return err
			}
			if err := a.dispatcher.Start(ctx); err != nil {
				return err
			}
			a.logger.Info("serving reminders", "scheduled", n, "telegram", a.cfg.Telegram.Enabled)

			<-ctx.Done()
			a.dispatcher.Stop()
			a.logger.Info("stopped")
			return nil
		},
	}
}

// telegramToken returns the bot token from the environment or the keyring.
func (a *app) telegramToken() (string, error) {
	if token := os.Getenv(telegramTokenEnv); token != "" {
		return token, nil
	}

	creds, err := a.credentials()
	if err != nil {
		return "", err
	}
	token, err := creds.Get(credential.TelegramTokenKey)
	if errors.Is(err, credential.ErrNotFound) {
		return "", fmt.Errorf("telegram is enabled but no bot token is stored, run 'taskrecur token set' or set %s", telegramTokenEnv)
	}
	return token, err
}
