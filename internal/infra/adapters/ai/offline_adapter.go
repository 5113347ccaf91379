package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"seo-article-agent/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*OfflineAdapter)(nil)

const OfflineModel = "offline-v1"

var offlineTopic = regexp.MustCompile(`article about "([^"]+)"`)

// OfflineAdapter answers article prompts deterministically without network
// access. It renders the outline found in the prompt into a contract-shaped
// JSON reply. Used for -dev runs and tests.
type OfflineAdapter struct{}

func NewOfflineAdapter() *OfflineAdapter { return &OfflineAdapter{} }

func (a *OfflineAdapter) Provider() string { return "offline" }

func (a *OfflineAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{OfflineModel}, nil
}

func (a *OfflineAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	reply, _, err := a.ChatWithUsage(ctx, model, messages)
	return reply, err
}

func (a *OfflineAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	if err := ctx.Err(); err != nil {
		return "", adapter.Usage{}, err
	}
	var prompt string
	for i := len(messages) - 1; i >= 0; i-- {
		if strings.EqualFold(messages[i].Role, "user") {
			prompt = messages[i].Content
			break
		}
	}
	topic := "the topic"
	if m := offlineTopic.FindStringSubmatch(prompt); m != nil {
		topic = m[1]
	}

	var body strings.Builder
	for _, line := range strings.Split(prompt, "\n") {
		switch {
		case strings.HasPrefix(line, "### "):
			h := strings.TrimPrefix(line, "### ")
			fmt.Fprintf(&body, "<h3>%s</h3><p>%s covers %s with practical examples and clear steps for readers.</p>", h, h, topic)
		case strings.HasPrefix(line, "## "):
			fmt.Fprintf(&body, "<h2>%s</h2>", strings.TrimPrefix(line, "## "))
		case strings.HasPrefix(line, "# "):
			fmt.Fprintf(&body, "<h1>%s</h1><p>This guide explains %s from the basics to advanced practice.</p>", strings.TrimPrefix(line, "# "), topic)
		}
	}
	faq := fmt.Sprintf("<h2>FAQ</h2><h3>What is %s?</h3><p>%s is a discipline worth learning step by step.</p>", topic, topic)

	slug := strings.ReplaceAll(strings.ToLower(topic), " ", "-")
	reply, err := json.Marshal(map[string]interface{}{
		"article_html":       body.String() + faq,
		"title_tag":          "The Complete Guide to " + topic,
		"meta_description":   fmt.Sprintf("Everything you need to know about %s: strategies, best practices and tools to get started today.", topic),
		"primary_keyword":    topic,
		"secondary_keywords": []string{topic + " strategies", topic + " tools", topic + " tips"},
		"internal_links": []map[string]string{
			{"anchor_text": topic + " tools", "target_page": slug + "-tools", "context": "Tools and Resources"},
			{"anchor_text": topic + " examples", "target_page": slug + "-examples", "context": "Getting Started"},
		},
		"external_references": []map[string]string{
			{"source_name": "Industry Report", "url": "https://example.com/report", "context": "Cite adoption statistics"},
		},
		"faq_html": faq,
	})
	if err != nil {
		return "", adapter.Usage{}, err
	}
	u := adapter.Usage{PromptTokens: len(strings.Fields(prompt)), CompletionTokens: len(strings.Fields(string(reply)))}
	u.TotalTokens = u.PromptTokens + u.CompletionTokens
	return string(reply), u, nil
}
