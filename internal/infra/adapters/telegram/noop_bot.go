package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"seo-article-agent/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter logs messages instead of sending them. Used in dev mode.
type NoopBotAdapter struct {
	log *zerolog.Logger
}

func NewNoopBotAdapter(log *zerolog.Logger) *NoopBotAdapter {
	return &NoopBotAdapter{log: log}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Int64("chat_id", chatID).Str("text", text).Msg("noop telegram message")
	return nil
}
