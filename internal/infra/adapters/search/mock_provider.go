package search

import (
	"context"
	"fmt"

	"seo-article-agent/internal/domain/model"
	"seo-article-agent/internal/domain/ports/adapter"
)

const mockResultCount = 10

var _ adapter.SearchProvider = (*MockProvider)(nil)

// MockProvider returns a deterministic first page of results for any query.
type MockProvider struct{}

func NewMockProvider() *MockProvider { return &MockProvider{} }

func (p *MockProvider) Search(ctx context.Context, query string) (*model.SourceData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results := make([]model.SearchResult, 0, mockResultCount)
	for i := 0; i < mockResultCount; i++ {
		results = append(results, model.SearchResult{
			Rank:    i + 1,
			URL:     fmt.Sprintf("https://example%d.com/article", i),
			Title:   fmt.Sprintf("Top %d %s - Complete Guide 2025", 10+i, query),
			Snippet: fmt.Sprintf("Discover the best practices for %s. Learn about tools, strategies, and tips...", query),
		})
	}
	return &model.SourceData{Query: query, Results: results}, nil
}
