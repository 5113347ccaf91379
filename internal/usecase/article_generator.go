// File: internal/usecase/article_generator.go
package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"seo-article-agent/internal/domain"
	"seo-article-agent/internal/domain/model"
	"seo-article-agent/internal/domain/ports/adapter"
)

// GenerationObserver receives generator and pipeline telemetry.
type GenerationObserver interface {
	PromptTokens(provider, model string, n int)
	Fallback(reason string)
	PipelineDone(outcome string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) PromptTokens(string, string, int) {}
func (nopObserver) Fallback(string) {}
func (nopObserver) PipelineDone(string, time.Duration) {}

// ArticleGenerator turns an outline into a finished article with one AI call.
type ArticleGenerator struct {
	ai       adapter.AIServiceAdapter
	model    string
	log      *zerolog.Logger
	observer GenerationObserver
}

func NewArticleGenerator(ai adapter.AIServiceAdapter, modelName string, log *zerolog.Logger, observer GenerationObserver) *ArticleGenerator {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &ArticleGenerator{ai: ai, model: modelName, log: log, observer: observer}
}

// Generate asks the model for the article. Service errors are returned wrapped
// in domain.ErrAIServiceFailure; unusable replies fall back to a minimal article.
func (g *ArticleGenerator) Generate(ctx context.Context, topic string, outline model.Outline, targetWordCount int, questions []string) (*model.Article, error) {
	prompt := buildArticlePrompt(topic, outline, targetWordCount, questions)
	msgs := []adapter.Message{{Role: "user", Content: prompt}}

	if tc, ok := g.ai.(adapter.TokenCounter); ok {
		if n, err := tc.CountTokens(ctx, g.model, msgs); err == nil {
			g.observer.PromptTokens(g.ai.Provider(), g.model, n)
			g.log.Debug().Int("prompt_tokens", n).Str("model", g.model).Msg("prompt size estimated")
		}
	}

	reply, usage, err := g.ai.ChatWithUsage(ctx, g.model, msgs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAIServiceFailure, err)
	}
	g.log.Debug().
		Str("provider", g.ai.Provider()).
		Int("tokens_in", usage.PromptTokens).
		Int("tokens_out", usage.CompletionTokens).
		Msg("article reply received")

	resp, err := parseArticleResponse(reply)
	if err != nil {
		g.log.Warn().Err(err).Str("topic", topic).Msg("unusable model reply, using fallback article")
		g.observer.Fallback("malformed")
		resp = fallbackArticleResponse(topic, outline)
	}
	return finishArticle(resp, outline), nil
}

func finishArticle(resp *articleResponse, outline model.Outline) *model.Article {
	wordCount := len(strings.Fields(resp.ArticleHTML))
	article := &model.Article{
		Content: resp.ArticleHTML,
		Outline: outline.Clone(),
		SEOMetadata: model.SEOMetadata{
			TitleTag:        truncateRunes(resp.TitleTag, model.MaxTitleTagLength),
			MetaDescription: truncateRunes(resp.MetaDescription, model.MaxMetaDescriptionLength),
		},
		KeywordAnalysis: model.KeywordAnalysis{
			PrimaryKeyword:    resp.PrimaryKeyword,
			SecondaryKeywords: nonNil(resp.SecondaryKeywords),
			KeywordDensity:    keywordDensity(resp.ArticleHTML, resp.PrimaryKeyword, wordCount),
		},
		InternalLinks:      resp.InternalLinks,
		ExternalReferences: resp.ExternalReferences,
		WordCount:          wordCount,
		FAQSection:         resp.FAQHTML,
	}
	if article.InternalLinks == nil {
		article.InternalLinks = []model.InternalLink{}
	}
	if article.ExternalReferences == nil {
		article.ExternalReferences = []model.ExternalReference{}
	}
	return article
}

// keywordDensity is occurrences per hundred words, rounded to two decimals.
func keywordDensity(content, keyword string, wordCount int) float64 {
	keyword = strings.ToLower(keyword)
	if wordCount == 0 || keyword == "" {
		return 0
	}
	n := strings.Count(strings.ToLower(content), keyword)
	return math.Round(float64(n)/float64(wordCount)*100*100) / 100
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
