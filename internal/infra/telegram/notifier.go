// File: internal/infra/telegram/notifier.go
package telegram

import (
	"context"
	"fmt"
	"strings"

	"seo-article-agent/internal/domain/ports/adapter"
)

var _ adapter.JobEventSink = (*Notifier)(nil)

// Notifier posts a chat message when a job completes or fails.
type Notifier struct {
	bot    adapter.TelegramBotAdapter
	chatID int64
}

func NewNotifier(bot adapter.TelegramBotAdapter, chatID int64) *Notifier {
	return &Notifier{bot: bot, chatID: chatID}
}

func (n *Notifier) Publish(ctx context.Context, ev adapter.JobEvent) error {
	var text string
	switch ev.Type {
	case adapter.JobEventCompleted:
		text = completedText(ev)
	case adapter.JobEventFailed:
		text = fmt.Sprintf("❌ Job %s failed\nTopic: %s\nError: %s", ev.JobID, ev.Topic, ev.Error)
	default:
		return nil
	}
	if err := n.bot.SendMessage(ctx, n.chatID, text); err != nil {
		return fmt.Errorf("telegram notify %s: %w", ev.JobID, err)
	}
	return nil
}

func completedText(ev adapter.JobEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Job %s completed\nTopic: %s", ev.JobID, ev.Topic)
	if ev.Job != nil && ev.Job.Article != nil {
		a := ev.Job.Article
		fmt.Fprintf(&b, "\nTitle: %s\nWords: %d", a.SEOMetadata.TitleTag, a.WordCount)
	}
	return b.String()
}
