//go:build !integration

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo-article-agent/internal/domain"
	"seo-article-agent/internal/domain/model"
)

//
// -------------------- stub use case --------------------
//

type stubGenUC struct {
	start  func(ctx context.Context, req model.ArticleRequest) (*model.Job, error)
	resume func(ctx context.Context, id string) (*model.Job, error)
	get    func(ctx context.Context, id string) (*model.Job, error)
	list   func(ctx context.Context, limit int) ([]model.JobSummary, error)
	audit  func(ctx context.Context, id string) (*model.SEOAudit, error)
}

func (s *stubGenUC) StartGeneration(ctx context.Context, req model.ArticleRequest) (*model.Job, error) {
	return s.start(ctx, req)
}
func (s *stubGenUC) ResumeJob(ctx context.Context, id string) (*model.Job, error) {
	return s.resume(ctx, id)
}
func (s *stubGenUC) GetStatus(ctx context.Context, id string) (*model.Job, error) {
	return s.get(ctx, id)
}
func (s *stubGenUC) ListJobs(ctx context.Context, limit int) ([]model.JobSummary, error) {
	return s.list(ctx, limit)
}
func (s *stubGenUC) AuditJob(ctx context.Context, id string) (*model.SEOAudit, error) {
	return s.audit(ctx, id)
}

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (l *stubLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allow, l.err
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func failedJob(id string) *model.Job {
	msg := "ai service failure: quota exceeded"
	return &model.Job{ID: id, Status: model.JobStatusFailed, ErrorMessage: &msg}
}

//
// -------------------- tests --------------------
//

func TestCreateJob(t *testing.T) {
	t.Run("completed job returns 201", func(t *testing.T) {
		var got model.ArticleRequest
		uc := &stubGenUC{start: func(_ context.Context, req model.ArticleRequest) (*model.Job, error) {
			got = req
			return &model.Job{ID: "j1", Status: model.JobStatusCompleted, Request: req}, nil
		}}
		h := NewServer(uc, Options{}, nil).Routes()

		rec := do(t, h, http.MethodPost, "/api/v1/jobs", createJobRequest{Topic: "content marketing", TargetWordCount: 800})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "content marketing", got.Topic)
		assert.Equal(t, 800, got.TargetWordCount)

		var job model.Job
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&job))
		assert.Equal(t, model.JobStatusCompleted, job.Status)
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		h := NewServer(&stubGenUC{}, Options{}, nil).Routes()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown field returns 400", func(t *testing.T) {
		h := NewServer(&stubGenUC{}, Options{}, nil).Routes()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewBufferString(`{"topic":"x","tpoic":"y"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("oversized body returns 413", func(t *testing.T) {
		h := NewServer(&stubGenUC{}, Options{}, nil).Routes()
		body := `{"topic":"` + strings.Repeat("a", maxRequestBody) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("invalid argument returns 400", func(t *testing.T) {
		uc := &stubGenUC{start: func(context.Context, model.ArticleRequest) (*model.Job, error) {
			return nil, fmt.Errorf("%w: topic is required", domain.ErrInvalidArgument)
		}}
		rec := do(t, NewServer(uc, Options{}, nil).Routes(), http.MethodPost, "/api/v1/jobs", createJobRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("failed run returns 500 with job", func(t *testing.T) {
		uc := &stubGenUC{start: func(context.Context, model.ArticleRequest) (*model.Job, error) {
			return failedJob("j9"), fmt.Errorf("%w: quota exceeded", domain.ErrAIServiceFailure)
		}}
		rec := do(t, NewServer(uc, Options{}, nil).Routes(), http.MethodPost, "/api/v1/jobs", createJobRequest{Topic: "x"})
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var body errorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.NotNil(t, body.Job)
		assert.Equal(t, "j9", body.Job.ID)
		assert.Equal(t, model.JobStatusFailed, body.Job.Status)
		assert.Contains(t, body.Error, "quota exceeded")
	})
}

func TestGetJob(t *testing.T) {
	uc := &stubGenUC{get: func(_ context.Context, id string) (*model.Job, error) {
		if id == "known" {
			return &model.Job{ID: id, Status: model.JobStatusPending}, nil
		}
		return nil, domain.ErrNotFound
	}}
	h := NewServer(uc, Options{}, nil).Routes()

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/v1/jobs/known", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/jobs/missing", nil).Code)
}

func TestListJobs(t *testing.T) {
	var gotLimit int
	uc := &stubGenUC{list: func(_ context.Context, limit int) ([]model.JobSummary, error) {
		gotLimit = limit
		return nil, nil
	}}
	h := NewServer(uc, Options{}, nil).Routes()

	rec := do(t, h, http.MethodGet, "/api/v1/jobs?limit=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, gotLimit)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, gotLimit)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/jobs?limit=zero", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/jobs?limit=-1", nil).Code)
}

func TestResumeJob(t *testing.T) {
	uc := &stubGenUC{resume: func(_ context.Context, id string) (*model.Job, error) {
		switch id {
		case "locked":
			return nil, domain.ErrJobLocked
		case "broken":
			return failedJob(id), errors.New("search provider down")
		}
		return &model.Job{ID: id, Status: model.JobStatusCompleted}, nil
	}}
	h := NewServer(uc, Options{}, nil).Routes()

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/jobs/ok/resume", nil).Code)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/api/v1/jobs/locked/resume", nil).Code)
	assert.Equal(t, http.StatusInternalServerError, do(t, h, http.MethodPost, "/api/v1/jobs/broken/resume", nil).Code)
}

func TestAuditJob(t *testing.T) {
	uc := &stubGenUC{audit: func(_ context.Context, id string) (*model.SEOAudit, error) {
		if id == "pending" {
			return nil, domain.ErrNoArticle
		}
		return &model.SEOAudit{H1Count: 1, H2Count: 4}, nil
	}}
	h := NewServer(uc, Options{}, nil).Routes()

	rec := do(t, h, http.MethodGet, "/api/v1/jobs/done/audit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"h1_count":1,"h2_count":4,"h3_count":0,"link_count":0,"keyword_in_intro":false}`, rec.Body.String())

	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodGet, "/api/v1/jobs/pending/audit", nil).Code)
}

func TestSubmitLimit(t *testing.T) {
	uc := &stubGenUC{start: func(_ context.Context, req model.ArticleRequest) (*model.Job, error) {
		return &model.Job{ID: "j", Status: model.JobStatusCompleted}, nil
	}}

	t.Run("rejected", func(t *testing.T) {
		lim := &stubLimiter{allow: false}
		h := NewServer(uc, Options{SubmitLimiter: lim, SubmitPerMinute: 1}, nil).Routes()
		rec := do(t, h, http.MethodPost, "/api/v1/jobs", createJobRequest{Topic: "x"})
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, []string{"rate_limit:jobs:192.0.2.1"}, lim.keys)
	})

	t.Run("limiter error lets request through", func(t *testing.T) {
		lim := &stubLimiter{err: errors.New("redis down")}
		h := NewServer(uc, Options{SubmitLimiter: lim, SubmitPerMinute: 1}, nil).Routes()
		rec := do(t, h, http.MethodPost, "/api/v1/jobs", createJobRequest{Topic: "x"})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("reads are not limited", func(t *testing.T) {
		lim := &stubLimiter{allow: false}
		uc := &stubGenUC{list: func(context.Context, int) ([]model.JobSummary, error) { return nil, nil }}
		h := NewServer(uc, Options{SubmitLimiter: lim, SubmitPerMinute: 1}, nil).Routes()
		assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/v1/jobs", nil).Code)
		assert.Empty(t, lim.keys)
	})
}

func TestRecoverAndHealth(t *testing.T) {
	uc := &stubGenUC{get: func(context.Context, string) (*model.Job, error) { panic("boom") }}
	h := NewServer(uc, Options{}, nil).Routes()

	assert.Equal(t, http.StatusInternalServerError, do(t, h, http.MethodGet, "/api/v1/jobs/x", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/metrics", nil).Code)
}
