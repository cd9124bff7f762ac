package notify

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nhle/task-recurrence/internal/model"
)

// BotSender is the part of *tgbotapi.BotAPI used for delivery.
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink sends notifications as chat messages.
type TelegramSink struct {
	bot    BotSender
	chatID int64
}

// NewTelegramSink authorizes a bot with token and sends to chatID.
func NewTelegramSink(token string, chatID int64) (*TelegramSink, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return NewTelegramSinkWithBot(api, chatID), nil
}

// NewTelegramSinkWithBot sends through an existing bot.
func NewTelegramSinkWithBot(bot BotSender, chatID int64) *TelegramSink {
	return &TelegramSink{bot: bot, chatID: chatID}
}

// Deliver sends one HTML message. Notifications that do not require
// interaction are sent silently.
func (s *TelegramSink) Deliver(_ context.Context, n model.ScheduledNotification) error {
	text := html.EscapeString(Message(n))
	if n.RequiresInteraction {
		text = "<b>" + text + "</b>"
	}

	msg := tgbotapi.NewMessage(s.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableNotification = !n.RequiresInteraction
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("sending notification %s to chat %d: %w", n.ID, s.chatID, err)
	}
	return nil
}
