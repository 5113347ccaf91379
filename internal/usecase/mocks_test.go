// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"seo-article-agent/internal/domain"
	"seo-article-agent/internal/domain/model"
	"seo-article-agent/internal/domain/ports/adapter"
)

// memJobRepo is a small in-memory implementation used by unit tests.
type memJobRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Job
	order   []string
	clock   time.Time
	saveErr error // used by tests to simulate SaveArticle failures
	writes  int
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{store: make(map[string]*model.Job), clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memJobRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memJobRepo) Create(ctx context.Context, req model.ArticleRequest) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := model.NewJob(req, m.tick())
	m.store[job.ID] = job.Clone()
	m.order = append(m.order, job.ID)
	m.writes++
	return job, nil
}

func (m *memJobRepo) Get(ctx context.Context, id string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return j.Clone(), nil
}

func (m *memJobRepo) mutate(id string, fn func(*model.Job, time.Time) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	cp := j.Clone()
	if err := fn(cp, m.tick()); err != nil {
		return err
	}
	m.store[id] = cp
	m.writes++
	return nil
}

func (m *memJobRepo) UpdateStatus(ctx context.Context, id string, status model.JobStatus, errMsg *string) error {
	return m.mutate(id, func(j *model.Job, now time.Time) error { return j.TransitionTo(status, errMsg, now) })
}

func (m *memJobRepo) SaveSourceData(ctx context.Context, id string, data *model.SourceData) error {
	return m.mutate(id, func(j *model.Job, now time.Time) error { return j.AttachSourceData(data, now) })
}

func (m *memJobRepo) SaveArticle(ctx context.Context, id string, article *model.Article) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	return m.mutate(id, func(j *model.Job, now time.Time) error { return j.Complete(article, now) })
}

func (m *memJobRepo) List(ctx context.Context, limit int) ([]model.JobSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 10
	}
	seq := make(map[string]int, len(m.order))
	for i, id := range m.order {
		seq[id] = i
	}
	out := make([]model.JobSummary, 0, len(m.store))
	for _, j := range m.store {
		out = append(out, j.Summary())
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.After(out[b].CreatedAt)
		}
		return seq[out[a].ID] > seq[out[b].ID]
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memJobRepo) writeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// countingProvider wraps the mock search results and counts calls.
type countingProvider struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *countingProvider) Search(ctx context.Context, query string) (*model.SourceData, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return &model.SourceData{Query: query, Results: []model.SearchResult{
		{Rank: 1, URL: "https://example0.com/article", Title: "Top 10 " + query, Snippet: "Strategies and tools for " + query},
	}}, nil
}

// recordingSink keeps every published event.
type recordingSink struct {
	mu     sync.Mutex
	events []adapter.JobEvent
	err    error
}

func (s *recordingSink) Publish(ctx context.Context, ev adapter.JobEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func (s *recordingSink) types() []adapter.JobEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]adapter.JobEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

// memLocker is a process-local JobLocker.
type memLocker struct {
	mu   sync.Mutex
	held map[string]string
	err  error
}

func newMemLocker() *memLocker { return &memLocker{held: map[string]string{}} }

func (l *memLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", l.err
	}
	if _, ok := l.held[key]; ok {
		return "", domain.ErrJobLocked
	}
	l.held[key] = "token-" + key
	return l.held[key], nil
}

func (l *memLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}
