package jobstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"seo-article-agent/internal/domain"
	"seo-article-agent/internal/domain/model"
)

// memBackend keeps rows in insertion order.
type memBackend struct {
	mu    sync.Mutex
	rows  map[string]Row
	order map[string]int
	seq   int
}

func newMemBackend() *memBackend {
	return &memBackend{rows: map[string]Row{}, order: map[string]int{}}
}

func (m *memBackend) Upsert(_ context.Context, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.order[row.ID]; !ok {
		m.seq++
		m.order[row.ID] = m.seq
	}
	m.rows[row.ID] = row
	return nil
}

func (m *memBackend) Load(_ context.Context, id string) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return Row{}, domain.ErrNotFound
	}
	return r, nil
}

func (m *memBackend) Recent(_ context.Context, limit int) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Row, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return m.order[out[i].ID] > m.order[out[j].ID]
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newTestStore() (*Store, *memBackend) {
	b := newMemBackend()
	clock := &stepClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), step: time.Second}
	return New(b, WithClock(clock.Now)), b
}

func TestStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	job, err := store.Create(ctx, model.ArticleRequest{Topic: "remote work tools"})
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)
	require.Equal(t, model.JobStatusPending, job.Status)
	require.Equal(t, model.DefaultTargetWordCount, job.Request.TargetWordCount)
	require.True(t, job.CreatedAt.Equal(job.UpdatedAt))

	got, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, job.ID, got.ID)
	require.Equal(t, job.Request, got.Request)
	require.True(t, job.CreatedAt.Equal(got.CreatedAt))
	require.Nil(t, got.SourceData)
	require.Nil(t, got.Article)
	require.Nil(t, got.ErrorMessage)

	_, err = store.Create(ctx, model.ArticleRequest{Topic: "  "})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, store.UpdateStatus(ctx, "missing", model.JobStatusRunning, nil), domain.ErrNotFound)
	require.ErrorIs(t, store.SaveSourceData(ctx, "missing", &model.SourceData{}), domain.ErrNotFound)
	require.ErrorIs(t, store.SaveArticle(ctx, "missing", &model.Article{}), domain.ErrNotFound)
}

func TestStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	job, err := store.Create(ctx, model.ArticleRequest{Topic: "seo", TargetWordCount: 800, Language: "en"})
	require.NoError(t, err)

	require.NoError(t, store.UpdateStatus(ctx, job.ID, model.JobStatusRunning, nil))
	data := &model.SourceData{Query: "seo", Results: []model.SearchResult{{Rank: 1, URL: "https://example0.com/article"}}}
	require.NoError(t, store.SaveSourceData(ctx, job.ID, data))

	faq := ""
	article := &model.Article{
		Content:    "<h1>SEO</h1>",
		Outline:    model.Outline{H1: "SEO", Sections: []model.Section{{Heading: "What", Subheadings: []string{"Why"}}}},
		WordCount:  1,
		FAQSection: &faq,
	}
	require.NoError(t, store.SaveArticle(ctx, job.ID, article))

	got, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, model.JobStatusCompleted, got.Status)
	require.Equal(t, data, got.SourceData)
	require.NotNil(t, got.Article)
	require.NotNil(t, got.Article.FAQSection, "empty FAQ must stay present")
	require.Equal(t, "", *got.Article.FAQSection)
	require.Equal(t, article.Outline, got.Article.Outline)
	require.True(t, got.UpdatedAt.After(got.CreatedAt))

	err = store.UpdateStatus(ctx, job.ID, model.JobStatusRunning, nil)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestStore_FailedKeepsErrorUntilResume(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	job, err := store.Create(ctx, model.ArticleRequest{Topic: "seo"})
	require.NoError(t, err)
	msg := "ai service failure: timeout"
	require.NoError(t, store.UpdateStatus(ctx, job.ID, model.JobStatusFailed, &msg))

	got, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ErrorMessage)
	require.Equal(t, msg, *got.ErrorMessage)

	require.NoError(t, store.UpdateStatus(ctx, job.ID, model.JobStatusRunning, nil))
	got, err = store.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Nil(t, got.ErrorMessage)
}

func TestStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	var ids []string
	for _, topic := range []string{"a", "b", "c"} {
		job, err := store.Create(ctx, model.ArticleRequest{Topic: topic})
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}

	list, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{list[0].ID, list[1].ID, list[2].ID})

	list, err = store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)

	list, err = store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
}

func TestStore_ListTiesUseInsertionOrder(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store := New(newMemBackend(), WithClock(func() time.Time { return fixed }))

	first, err := store.Create(ctx, model.ArticleRequest{Topic: "first"})
	require.NoError(t, err)
	second, err := store.Create(ctx, model.ArticleRequest{Topic: "second"})
	require.NoError(t, err)
	require.NoError(t, store.UpdateStatus(ctx, first.ID, model.JobStatusRunning, nil))

	list, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, first.ID, list[1].ID)
}

func TestRow_CorruptDataSurfaces(t *testing.T) {
	row := Row{ID: "x", Status: "archived", CreatedAt: FormatTime(time.Now()), UpdatedAt: FormatTime(time.Now())}
	_, err := row.Job()
	require.True(t, errors.Is(err, domain.ErrInvalidArgument))

	row.Status = "pending"
	row.Article.Valid = true
	row.Article.String = "{not json"
	_, err = row.Job()
	require.Error(t, err)
}

func TestFormatTime_LexicalOrder(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := FormatTime(base.Add(900 * time.Millisecond))
	b := FormatTime(base.Add(time.Second))
	require.Less(t, a, b)
	require.Len(t, a, len(b))

	parsed, err := ParseTime(a)
	require.NoError(t, err)
	require.True(t, parsed.Equal(base.Add(900*time.Millisecond)))
}
