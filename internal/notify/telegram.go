// Package notify delivers payment-confirmation messages to the customer.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier sends confirmation messages over a Telegram bot.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    zerolog.Logger
}

// NewTelegram creates a notifier for one chat.
func NewTelegram(token string, chatID int64, logger zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, log: logger}, nil
}

// PaymentConfirmed tells the customer their order is paid.
func (n *TelegramNotifier) PaymentConfirmed(orderID string, amount float64) error {
	text := fmt.Sprintf("✅ Payment confirmed for order %s", orderID)
	if amount > 0 {
		text = fmt.Sprintf("✅ Payment of %.2f confirmed for order %s", amount, orderID)
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Error().Err(err).Str("order_id", orderID).Msg("failed to send confirmation message")
		return fmt.Errorf("send confirmation: %w", err)
	}
	return nil
}
