package jobstore

import (
	"context"
	"fmt"
	"time"

	"seo-article-agent/internal/domain/model"
	"seo-article-agent/internal/domain/ports/repository"
)

const DefaultListLimit = 10

// Backend is the row-level persistence a Store runs on.
// Load returns domain.ErrNotFound for unknown ids. Recent orders rows by
// created_at descending, ties broken by insertion order, newest first.
type Backend interface {
	Upsert(ctx context.Context, row Row) error
	Load(ctx context.Context, id string) (Row, error)
	Recent(ctx context.Context, limit int) ([]Row, error)
}

var _ repository.JobRepository = (*Store)(nil)

// Store implements repository.JobRepository with load-modify-upsert
// mutations. It assumes a single writer per job.
type Store struct {
	backend Backend
	now     func() time.Time
}

type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{backend: backend, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Create(ctx context.Context, req model.ArticleRequest) (*model.Job, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	job := model.NewJob(req, s.now().UTC())
	if err := s.put(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Store) Get(ctx context.Context, id string) (*model.Job, error) {
	row, err := s.backend.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return row.Job()
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status model.JobStatus, errMsg *string) error {
	return s.mutate(ctx, id, func(job *model.Job, now time.Time) error {
		return job.TransitionTo(status, errMsg, now)
	})
}

func (s *Store) SaveSourceData(ctx context.Context, id string, data *model.SourceData) error {
	return s.mutate(ctx, id, func(job *model.Job, now time.Time) error {
		return job.AttachSourceData(data, now)
	})
}

func (s *Store) SaveArticle(ctx context.Context, id string, article *model.Article) error {
	return s.mutate(ctx, id, func(job *model.Job, now time.Time) error {
		return job.Complete(article, now)
	})
}

func (s *Store) List(ctx context.Context, limit int) ([]model.JobSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.backend.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]model.JobSummary, 0, len(rows))
	for _, r := range rows {
		sum, err := r.Summary()
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", r.ID, err)
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *Store) mutate(ctx context.Context, id string, fn func(job *model.Job, now time.Time) error) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(job, s.now().UTC()); err != nil {
		return err
	}
	return s.put(ctx, job)
}

func (s *Store) put(ctx context.Context, job *model.Job) error {
	row, err := EncodeJob(job)
	if err != nil {
		return err
	}
	return s.backend.Upsert(ctx, row)
}
