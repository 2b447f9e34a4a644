package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"hkstockanalyzer/internal/utils"
)

// Notifier delivers the rendered artifact and its caption.
type Notifier interface {
	SendPhoto(path, caption string) error
	SendMessage(text string) error
}

// Telegram sends charts and messages to a single chat. Credentials come
// from configuration, not module globals.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger utils.Logger
}

func NewTelegram(cfg utils.TelegramConfig, logger utils.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("Telegram bot authorized as %s", bot.Self.UserName)
	return &Telegram{
		bot:    bot,
		chatID: cfg.ChatID,
		logger: logger,
	}, nil
}

func (t *Telegram) SendPhoto(path, caption string) error {
	photo := tgbotapi.NewPhoto(t.chatID, tgbotapi.FilePath(path))
	photo.Caption = caption

	if _, err := t.bot.Send(photo); err != nil {
		return fmt.Errorf("failed to send photo: %w", err)
	}
	t.logger.Info("Sent chart to chat %d", t.chatID)
	return nil
}

func (t *Telegram) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
