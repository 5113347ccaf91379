// File: internal/usecase/generation_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"seo-article-agent/internal/domain"
	"seo-article-agent/internal/domain/model"
	"seo-article-agent/internal/domain/ports/adapter"
	"seo-article-agent/internal/domain/ports/repository"
	"seo-article-agent/internal/infra/logging"
)

// Compile-time check
var _ GenerationUseCase = (*generationUC)(nil)

const jobLockPrefix = "seo_job:"

// GenerationUseCase drives jobs through pending -> running -> completed|failed.
type GenerationUseCase interface {
	StartGeneration(ctx context.Context, req model.ArticleRequest) (*model.Job, error)
	ResumeJob(ctx context.Context, id string) (*model.Job, error)
	GetStatus(ctx context.Context, id string) (*model.Job, error)
	ListJobs(ctx context.Context, limit int) ([]model.JobSummary, error)
	AuditJob(ctx context.Context, id string) (*model.SEOAudit, error)
}

// ArticleWriter produces an article from the derived brief.
type ArticleWriter interface {
	Generate(ctx context.Context, topic string, outline model.Outline, targetWordCount int, questions []string) (*model.Article, error)
}

var _ ArticleWriter = (*ArticleGenerator)(nil)

// GenerationDeps wires the orchestrator. Events, Locker and Observer are optional.
type GenerationDeps struct {
	Jobs     repository.JobRepository
	Analyzer *SERPAnalyzer
	Writer   ArticleWriter
	Events   adapter.JobEventSink
	Locker   adapter.JobLocker
	LockTTL  time.Duration
	Observer GenerationObserver
	Log      *zerolog.Logger
	Now      func() time.Time
}

type generationUC struct {
	jobs     repository.JobRepository
	analyzer *SERPAnalyzer
	writer   ArticleWriter
	events   adapter.JobEventSink
	locker   adapter.JobLocker
	lockTTL  time.Duration
	observer GenerationObserver
	log      *zerolog.Logger
	now      func() time.Time
}

func NewGenerationUseCase(d GenerationDeps) *generationUC {
	uc := &generationUC{
		jobs:     d.Jobs,
		analyzer: d.Analyzer,
		writer:   d.Writer,
		events:   d.Events,
		locker:   d.Locker,
		lockTTL:  d.LockTTL,
		observer: d.Observer,
		log:      d.Log,
		now:      d.Now,
	}
	if uc.events == nil {
		uc.events = adapter.NopSink{}
	}
	if uc.observer == nil {
		uc.observer = nopObserver{}
	}
	if uc.log == nil {
		nop := zerolog.Nop()
		uc.log = &nop
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.lockTTL <= 0 {
		uc.lockTTL = 10 * time.Minute
	}
	return uc
}

func (u *generationUC) StartGeneration(ctx context.Context, req model.ArticleRequest) (*model.Job, error) {
	defer logging.TraceDuration(u.log, "GenerationUC.StartGeneration")()

	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx = logging.WithTraceID(ctx, ulid.Make().String())

	job, err := u.jobs.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	ctx = logging.WithJobID(ctx, job.ID)
	logging.With(ctx, u.log).Info().Str("topic", req.Topic).Int("target_word_count", req.TargetWordCount).Msg("job created")
	u.emit(ctx, adapter.JobEventCreated, job, job.Status, "")

	return u.run(ctx, job, true)
}

// ResumeJob continues a non-completed job. Stored source data is reused;
// without it the whole pipeline runs again under the same job id.
func (u *generationUC) ResumeJob(ctx context.Context, id string) (*model.Job, error) {
	defer logging.TraceDuration(u.log, "GenerationUC.ResumeJob")()

	job, err := u.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status == model.JobStatusCompleted {
		return job, nil
	}
	ctx = logging.WithJobID(logging.WithTraceID(ctx, ulid.Make().String()), job.ID)
	logging.With(ctx, u.log).Info().
		Str("status", string(job.Status)).
		Bool("has_source_data", job.SourceData != nil).
		Msg("resuming job")
	return u.run(ctx, job, false)
}

func (u *generationUC) GetStatus(ctx context.Context, id string) (*model.Job, error) {
	return u.jobs.Get(ctx, id)
}

func (u *generationUC) ListJobs(ctx context.Context, limit int) ([]model.JobSummary, error) {
	return u.jobs.List(ctx, limit)
}

func (u *generationUC) AuditJob(ctx context.Context, id string) (*model.SEOAudit, error) {
	job, err := u.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Article == nil {
		return nil, fmt.Errorf("job %s: %w", id, domain.ErrNoArticle)
	}
	audit, err := AuditArticle(job.Article)
	if err != nil {
		return nil, err
	}
	return &audit, nil
}

// run holds the optional job lock for the whole pipeline and records failures.
// created marks a job made by this call: a lock failure fails it rather than
// leaving it pending. Otherwise the job may belong to another run and is not
// written to.
func (u *generationUC) run(ctx context.Context, job *model.Job, created bool) (*model.Job, error) {
	start := u.now()
	log := logging.With(ctx, u.log)

	unlock, err := u.lock(ctx, job.ID)
	if err != nil {
		err = fmt.Errorf("acquire job lock: %w", err)
		if created {
			return u.fail(ctx, job, err, start)
		}
		if errors.Is(err, domain.ErrJobLocked) {
			log.Warn().Msg("job is being processed elsewhere")
		} else {
			log.Error().Err(err).Msg("could not lock job, leaving it untouched")
		}
		return job, err
	}
	defer unlock()

	out, err := u.execute(ctx, job)
	if err != nil {
		return u.fail(ctx, job, err, start)
	}
	u.observer.PipelineDone(string(model.JobStatusCompleted), u.now().Sub(start))
	log.Info().
		Int("word_count", out.Article.WordCount).
		Float64("keyword_density", out.Article.KeywordAnalysis.KeywordDensity).
		Msg("job completed")
	return out, nil
}

func (u *generationUC) execute(ctx context.Context, job *model.Job) (*model.Job, error) {
	log := logging.With(ctx, u.log)

	if err := u.jobs.UpdateStatus(ctx, job.ID, model.JobStatusRunning, nil); err != nil {
		return nil, fmt.Errorf("mark running: %w", err)
	}
	u.emit(ctx, adapter.JobEventRunning, job, model.JobStatusRunning, "")

	data := job.SourceData
	if data == nil {
		fetched, err := u.analyzer.Fetch(ctx, job.Request.Topic)
		if err != nil {
			return nil, err
		}
		if err := u.jobs.SaveSourceData(ctx, job.ID, fetched); err != nil {
			return nil, fmt.Errorf("save source data: %w", err)
		}
		u.emit(ctx, adapter.JobEventSourceSaved, job, model.JobStatusRunning, "")
		data = fetched
	} else {
		log.Debug().Int("results", len(data.Results)).Msg("reusing stored source data")
	}

	themes := u.analyzer.ExtractThemes(data)
	outline := u.analyzer.BuildOutline(data, themes)
	questions := u.analyzer.ExtractQuestions(data)
	log.Debug().Int("themes", len(themes)).Int("sections", len(outline.Sections)).Msg("brief derived")

	article, err := u.writer.Generate(ctx, job.Request.Topic, outline, job.Request.TargetWordCount, questions)
	if err != nil {
		return nil, fmt.Errorf("generate article: %w", err)
	}
	if err := u.jobs.SaveArticle(ctx, job.ID, article); err != nil {
		return nil, fmt.Errorf("save article: %w", err)
	}

	final, err := u.jobs.Get(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("reload job: %w", err)
	}
	u.emit(ctx, adapter.JobEventCompleted, final, final.Status, "")
	return final, nil
}

// fail records cause on the job and returns the failed snapshot with cause.
// The write survives cancellation of ctx.
func (u *generationUC) fail(ctx context.Context, job *model.Job, cause error, start time.Time) (*model.Job, error) {
	ctx = context.WithoutCancel(ctx)
	log := logging.With(ctx, u.log)
	u.observer.PipelineDone(string(model.JobStatusFailed), u.now().Sub(start))

	msg := cause.Error()
	if err := u.jobs.UpdateStatus(ctx, job.ID, model.JobStatusFailed, &msg); err != nil {
		log.Error().Err(err).Str("cause", msg).Msg("could not record job failure")
	}
	failed, err := u.jobs.Get(ctx, job.ID)
	if err != nil {
		log.Error().Err(err).Msg("could not reload failed job")
		failed = job
	}
	log.Error().Err(cause).Msg("job failed")
	u.emit(ctx, adapter.JobEventFailed, failed, failed.Status, msg)
	return failed, cause
}

func (u *generationUC) lock(ctx context.Context, id string) (func(), error) {
	if u.locker == nil {
		return func() {}, nil
	}
	key := jobLockPrefix + id
	token, err := u.locker.TryLock(ctx, key, u.lockTTL)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := u.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			logging.With(ctx, u.log).Warn().Err(err).Msg("release job lock")
		}
	}, nil
}

// emit publishes a lifecycle event. Sink errors are logged only.
func (u *generationUC) emit(ctx context.Context, typ adapter.JobEventType, job *model.Job, status model.JobStatus, errMsg string) {
	ev := adapter.JobEvent{
		TraceID: logging.TraceIDFrom(ctx),
		JobID:   job.ID,
		Type:    typ,
		Status:  status,
		Topic:   job.Request.Topic,
		Error:   errMsg,
		Job:     job.Clone(),
		At:      u.now().UTC(),
	}
	if err := u.events.Publish(ctx, ev); err != nil {
		logging.With(ctx, u.log).Warn().Err(err).Str("event", string(typ)).Msg("event sink error")
	}
}
