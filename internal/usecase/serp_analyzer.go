// File: internal/usecase/serp_analyzer.go
package usecase

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"seo-article-agent/internal/domain"
	"seo-article-agent/internal/domain/model"
	"seo-article-agent/internal/domain/ports/adapter"
)

const maxThemes = 20

var themeWord = regexp.MustCompile(`\b[a-zA-Z]{4,}\b`)

var themeStopWords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "they": {}, "will": {},
	"your": {}, "about": {}, "their": {}, "which": {}, "these": {}, "best": {}, "guide": {},
}

// SERPAnalyzer fetches search data for a topic and derives the writing brief from it.
type SERPAnalyzer struct {
	provider adapter.SearchProvider
}

func NewSERPAnalyzer(provider adapter.SearchProvider) *SERPAnalyzer {
	return &SERPAnalyzer{provider: provider}
}

func (a *SERPAnalyzer) Fetch(ctx context.Context, topic string) (*model.SourceData, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("%w: empty search topic", domain.ErrInvalidArgument)
	}
	data, err := a.provider.Search(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", topic, err)
	}
	return data, nil
}

// ExtractThemes counts alphabetic terms of four or more letters across titles
// and snippets. Ties keep first-seen order.
func (a *SERPAnalyzer) ExtractThemes(data *model.SourceData) []model.Theme {
	if data == nil {
		return nil
	}
	parts := make([]string, 0, len(data.Results))
	for _, r := range data.Results {
		parts = append(parts, r.Title+" "+r.Snippet)
	}
	text := strings.ToLower(strings.Join(parts, " "))

	counts := make(map[string]int)
	var order []string
	for _, w := range themeWord.FindAllString(text, -1) {
		if _, stop := themeStopWords[w]; stop {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	themes := make([]model.Theme, 0, len(order))
	for _, w := range order {
		themes = append(themes, model.Theme{Term: w, Count: counts[w]})
	}
	sort.SliceStable(themes, func(i, j int) bool { return themes[i].Count > themes[j].Count })
	if len(themes) > maxThemes {
		themes = themes[:maxThemes]
	}
	return themes
}

// BuildOutline returns the fixed four-section outline for the query.
// Themes are accepted for future shaping and do not alter the layout.
func (a *SERPAnalyzer) BuildOutline(data *model.SourceData, _ []model.Theme) model.Outline {
	t := titleCase(data.Query)
	return model.Outline{
		H1: "The Complete Guide to " + t,
		Sections: []model.Section{
			{Heading: "What is " + t + "?", Subheadings: []string{"Definition and Overview", "Why It Matters", "Key Benefits"}},
			{Heading: "Top Strategies for " + t, Subheadings: []string{"Strategy #1: Foundation", "Strategy #2: Implementation", "Strategy #3: Optimization"}},
			{Heading: "Best Practices and Tips", Subheadings: []string{"Common Mistakes to Avoid", "Expert Recommendations", "Tools and Resources"}},
			{Heading: "Getting Started with " + t, Subheadings: []string{"Step-by-Step Guide", "Measuring Success", "Next Steps"}},
		},
	}
}

func (a *SERPAnalyzer) ExtractQuestions(data *model.SourceData) []string {
	q := data.Query
	return []string{
		"What is " + q + "?",
		"How do I get started with " + q + "?",
		"What are the benefits of " + q + "?",
		"What tools are best for " + q + "?",
	}
}

func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}
