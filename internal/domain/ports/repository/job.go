package repository

import (
	"context"

	"seo-article-agent/internal/domain/model"
)

// JobRepository persists generation jobs. Every mutation is a full-record
// upsert and refreshes UpdatedAt.
type JobRepository interface {
	Create(ctx context.Context, req model.ArticleRequest) (*model.Job, error)
	Get(ctx context.Context, id string) (*model.Job, error)
	UpdateStatus(ctx context.Context, id string, status model.JobStatus, errMsg *string) error
	SaveSourceData(ctx context.Context, id string, data *model.SourceData) error
	SaveArticle(ctx context.Context, id string, article *model.Article) error
	List(ctx context.Context, limit int) ([]model.JobSummary, error)
}
