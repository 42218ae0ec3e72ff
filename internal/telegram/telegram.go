// Package telegram sends price alerts to a Telegram chat.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of tgbotapi.BotAPI the notifier needs
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier forwards alerts to one chat
type Notifier struct {
	bot    Sender
	chatID int64
}

// Init connects the bot and checks the token
func Init(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN is not set")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		if err.Error() == "Unauthorized" {
			return nil, errors.New("telegram token is invalid or expired, ask @BotFather for a new one")
		}
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}

	bot.Debug = false
	slog.Info("telegram bot authorized", "username", bot.Self.UserName)
	return bot, nil
}

// NewNotifier creates a notifier for chatID
func NewNotifier(bot Sender, chatID int64) *Notifier {
	return &Notifier{bot: bot, chatID: chatID}
}

// Notify sends text to the configured chat
func (n *Notifier) Notify(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	slog.DebugContext(ctx, "telegram alert sent", "chat_id", n.chatID)
	return nil
}
