package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Alerter tells operators about events that need a human, such as a tenant
// submitting payment proof
type Alerter interface {
	Alert(ctx context.Context, text string) error
}

// messageSender is the part of *tgbotapi.BotAPI the alerter needs
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramAlerter posts alerts to an ops chat
type TelegramAlerter struct {
	bot    messageSender
	chatID int64
	logger logrus.FieldLogger
}

// NewTelegramAlerter authorizes the bot and returns an alerter for chatID
func NewTelegramAlerter(token string, chatID int64, logger logrus.FieldLogger) (*TelegramAlerter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}
	logger.WithField("bot", bot.Self.UserName).Info("Telegram ops alerts enabled")
	return newTelegramAlerter(bot, chatID, logger), nil
}

func newTelegramAlerter(bot messageSender, chatID int64, logger logrus.FieldLogger) *TelegramAlerter {
	return &TelegramAlerter{bot: bot, chatID: chatID, logger: logger}
}

// Alert sends text to the ops chat
func (a *TelegramAlerter) Alert(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(a.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := a.bot.Send(msg); err != nil {
		a.logger.WithError(err).Warn("Failed to send telegram alert")
		return fmt.Errorf("failed to send telegram alert: %w", err)
	}
	return nil
}

// NoopAlerter is used when no ops chat is configured
type NoopAlerter struct{}

// Alert implements Alerter
func (NoopAlerter) Alert(context.Context, string) error { return nil }
