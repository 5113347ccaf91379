package adapter

import (
	"context"

	"seo-article-agent/internal/domain/model"
)

// SearchProvider returns the ranked search results for a query.
type SearchProvider interface {
	Search(ctx context.Context, query string) (*model.SourceData, error)
}
