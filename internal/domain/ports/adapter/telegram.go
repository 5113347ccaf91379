// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

// TelegramBotAdapter sends plain text messages to a chat.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
