package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier pushes price alerts to a Telegram chat. It is the
// push channel for headless deployments where no app is in the
// foreground to show a local notification.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier connects the bot. Returns an error when the token
// is rejected; callers should fall back to the log sink.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// PriceChange implements Notifier.
func (t *TelegramNotifier) PriceChange(_ context.Context, n PriceChange) error {
	text := n.Message()
	if n.ProductImage != "" {
		text += "\n" + n.ProductImage
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Test sends a fixed probe message so users can verify the channel.
func (t *TelegramNotifier) Test() error {
	msg := tgbotapi.NewMessage(t.chatID, "Bazenda price tracking is active. You will be notified here when a favorited product changes price.")
	_, err := t.bot.Send(msg)
	return err
}
