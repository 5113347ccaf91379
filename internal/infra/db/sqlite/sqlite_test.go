package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"seo-article-agent/internal/domain"
	"seo-article-agent/internal/domain/model"
	"seo-article-agent/internal/infra/db/jobstore"
)

func openTestStore(t *testing.T, path string) (*jobstore.Store, *Backend) {
	t.Helper()
	b, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return jobstore.New(b), b
}

func TestSQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t, filepath.Join(t.TempDir(), "jobs.db"))

	job, err := store.Create(ctx, model.ArticleRequest{Topic: "content marketing", TargetWordCount: 800, Language: "en"})
	require.NoError(t, err)
	require.NoError(t, store.UpdateStatus(ctx, job.ID, model.JobStatusRunning, nil))

	data := &model.SourceData{Query: "content marketing", Results: []model.SearchResult{
		{Rank: 1, URL: "https://example0.com/article", Title: "t", Snippet: "s"},
	}}
	require.NoError(t, store.SaveSourceData(ctx, job.ID, data))

	got, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, model.JobStatusRunning, got.Status)
	require.Equal(t, data, got.SourceData)
	require.Nil(t, got.Article)
	require.Nil(t, got.ErrorMessage)
	require.False(t, got.UpdatedAt.Before(got.CreatedAt))

	article := &model.Article{Content: "<h1>x</h1><p>content marketing</p>", WordCount: 3}
	require.NoError(t, store.SaveArticle(ctx, job.ID, article))
	got, err = store.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, model.JobStatusCompleted, got.Status)
	require.Equal(t, article.Content, got.Article.Content)
	require.Nil(t, got.Article.FAQSection)
}

func TestSQLite_NotFound(t *testing.T) {
	_, b := openTestStore(t, filepath.Join(t.TempDir(), "jobs.db"))
	_, err := b.Load(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLite_RecentOrdering(t *testing.T) {
	ctx := context.Background()
	b, err := Open(ctx, filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	defer b.Close()

	same := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	store := jobstore.New(b, jobstore.WithClock(func() time.Time { return same }))

	var ids []string
	for _, topic := range []string{"one", "two", "three"} {
		job, err := store.Create(ctx, model.ArticleRequest{Topic: topic})
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}
	// An upsert must not move the row in insertion order.
	require.NoError(t, store.UpdateStatus(ctx, ids[0], model.JobStatusRunning, nil))

	list, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, ids[2], list[0].ID)
	require.Equal(t, ids[1], list[1].ID)
	require.Equal(t, ids[0], list[2].ID)
	require.Equal(t, model.JobStatusRunning, list[2].Status)
}

func TestSQLite_DurableAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "jobs.db")

	b, err := Open(ctx, path)
	require.NoError(t, err)
	store := jobstore.New(b)
	job, err := store.Create(ctx, model.ArticleRequest{Topic: "durable"})
	require.NoError(t, err)
	msg := "boom"
	require.NoError(t, store.UpdateStatus(ctx, job.ID, model.JobStatusFailed, &msg))
	require.NoError(t, b.Close())

	reopened, _ := openTestStore(t, path)
	got, err := reopened.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, model.JobStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	require.Equal(t, "boom", *got.ErrorMessage)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}
