package ai

import (
	"context"
	"time"

	"seo-article-agent/internal/domain/ports/adapter"
	"seo-article-agent/internal/infra/metrics"
)

var (
	_ adapter.AIServiceAdapter = (*meteredAI)(nil)
	_ adapter.TokenCounter     = (*meteredAI)(nil)
)

// meteredAI records latency and token usage for every chat call.
type meteredAI struct {
	inner adapter.AIServiceAdapter
}

func NewMeteredAI(inner adapter.AIServiceAdapter) adapter.AIServiceAdapter {
	return &meteredAI{inner: inner}
}

func (m *meteredAI) Provider() string { return m.inner.Provider() }

func (m *meteredAI) ListModels(ctx context.Context) ([]string, error) {
	return m.inner.ListModels(ctx)
}

func (m *meteredAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	reply, _, err := m.ChatWithUsage(ctx, model, messages)
	return reply, err
}

func (m *meteredAI) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	start := time.Now()
	reply, u, err := m.inner.ChatWithUsage(ctx, model, messages)
	metrics.ObserveChatUsage(m.inner.Provider(), model, u.PromptTokens, u.CompletionTokens, u.TotalTokens,
		int(time.Since(start)/time.Millisecond), err == nil)
	return reply, u, err
}

func (m *meteredAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	tc, ok := m.inner.(adapter.TokenCounter)
	if !ok {
		return 0, errTokenCountUnsupported
	}
	return tc.CountTokens(ctx, model, messages)
}
