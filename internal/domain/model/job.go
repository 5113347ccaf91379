package model

import (
	"fmt"
	"strings"
	"time"

	"seo-article-agent/internal/domain"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

const (
	DefaultTargetWordCount = 1500
	DefaultLanguage        = "en"
)

// ParseJobStatus maps a persisted status string back to a JobStatus.
func ParseJobStatus(s string) (JobStatus, error) {
	switch st := JobStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown job status %q", domain.ErrInvalidArgument, s)
	}
}

// IsTerminal reports whether normal pipeline flow ends in this status.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// transitions lists the allowed next states. Completed has no exits.
var transitions = map[JobStatus]map[JobStatus]bool{
	JobStatusPending: {JobStatusRunning: true, JobStatusFailed: true},
	JobStatusRunning: {JobStatusRunning: true, JobStatusCompleted: true, JobStatusFailed: true},
	JobStatusFailed:  {JobStatusRunning: true, JobStatusFailed: true},
}

func CanTransition(from, to JobStatus) bool {
	return transitions[from][to]
}

// ArticleRequest is the immutable input of a generation job.
type ArticleRequest struct {
	Topic           string `json:"topic"`
	TargetWordCount int    `json:"target_word_count"`
	Language        string `json:"language"`
}

// WithDefaults fills zero-valued optional fields.
func (r ArticleRequest) WithDefaults() ArticleRequest {
	r.Topic = strings.TrimSpace(r.Topic)
	if r.TargetWordCount == 0 {
		r.TargetWordCount = DefaultTargetWordCount
	}
	if strings.TrimSpace(r.Language) == "" {
		r.Language = DefaultLanguage
	}
	return r
}

func (r ArticleRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("%w: topic is required", domain.ErrInvalidArgument)
	}
	if r.TargetWordCount < 1 {
		return fmt.Errorf("%w: target word count must be >= 1, got %d", domain.ErrInvalidArgument, r.TargetWordCount)
	}
	return nil
}

// Job tracks one article generation through the pipeline.
type Job struct {
	ID           string         `json:"job_id"`
	Status       JobStatus      `json:"status"`
	Request      ArticleRequest `json:"request"`
	SourceData   *SourceData    `json:"source_data,omitempty"`
	Article      *Article       `json:"article,omitempty"`
	ErrorMessage *string        `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// JobSummary is the listing projection of a job.
type JobSummary struct {
	ID        string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"created_at"`
}

func NewJob(req ArticleRequest, now time.Time) *Job {
	return &Job{
		ID:        uuid.NewString(),
		Status:    JobStatusPending,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo moves the job to status. The error message is kept only for
// failed jobs and cleared otherwise.
func (j *Job) TransitionTo(status JobStatus, errMsg *string, now time.Time) error {
	if !CanTransition(j.Status, status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, j.Status, status)
	}
	j.Status = status
	if status == JobStatusFailed {
		if errMsg != nil {
			msg := *errMsg
			j.ErrorMessage = &msg
		}
	} else {
		j.ErrorMessage = nil
	}
	j.touch(now)
	return nil
}

// AttachSourceData checkpoints the fetched search data. It is written once.
func (j *Job) AttachSourceData(data *SourceData, now time.Time) error {
	if data == nil {
		return fmt.Errorf("%w: nil source data", domain.ErrInvalidArgument)
	}
	if j.SourceData != nil {
		return fmt.Errorf("%w: job %s already has source data", domain.ErrInvalidArgument, j.ID)
	}
	j.SourceData = data.Clone()
	j.touch(now)
	return nil
}

// Complete attaches the article and forces the completed status.
func (j *Job) Complete(article *Article, now time.Time) error {
	if article == nil {
		return fmt.Errorf("%w: nil article", domain.ErrInvalidArgument)
	}
	if !CanTransition(j.Status, JobStatusCompleted) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, j.Status, JobStatusCompleted)
	}
	j.Article = article.Clone()
	j.Status = JobStatusCompleted
	j.ErrorMessage = nil
	j.touch(now)
	return nil
}

func (j *Job) touch(now time.Time) {
	if now.Before(j.CreatedAt) {
		now = j.CreatedAt
	}
	j.UpdatedAt = now
}

func (j *Job) Summary() JobSummary {
	return JobSummary{ID: j.ID, Status: j.Status, Topic: j.Request.Topic, CreatedAt: j.CreatedAt}
}

// Clone returns a deep copy so snapshots never alias store-owned records.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	cp.SourceData = j.SourceData.Clone()
	cp.Article = j.Article.Clone()
	if j.ErrorMessage != nil {
		msg := *j.ErrorMessage
		cp.ErrorMessage = &msg
	}
	return &cp
}
