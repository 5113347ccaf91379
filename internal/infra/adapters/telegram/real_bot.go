package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"seo-article-agent/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*RealBotAdapter)(nil)

// RealBotAdapter sends messages through the Telegram Bot API.
type RealBotAdapter struct {
	bot *tgbotapi.BotAPI
}

func NewRealBotAdapter(token string) (*RealBotAdapter, error) {
	return NewRealBotAdapterWithEndpoint(token, tgbotapi.APIEndpoint)
}

// NewRealBotAdapterWithEndpoint targets a custom Bot API server. The endpoint
// is a format string taking the token and the method name.
func NewRealBotAdapterWithEndpoint(token, endpoint string) (*RealBotAdapter, error) {
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, err
	}
	return &RealBotAdapter{bot: bot}, nil
}

func (r *RealBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	_, err := r.bot.Send(msg)
	return err
}
