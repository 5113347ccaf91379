package jobstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"seo-article-agent/internal/domain/model"
)

// TimeLayout is fixed-width so lexical order of stored values equals time order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Columns lists the jobs table columns in Row order.
var Columns = []string{
	"id", "status", "topic", "target_word_count", "language",
	"source_data", "article", "error_message", "created_at", "updated_at",
}

// Row is the flat persisted shape of a job shared by every backend.
type Row struct {
	ID              string
	Status          string
	Topic           string
	TargetWordCount int
	Language        string
	SourceData      sql.NullString
	Article         sql.NullString
	ErrorMessage    sql.NullString
	CreatedAt       string
	UpdatedAt       string
}

// Values returns the row fields in Columns order.
func (r Row) Values() []interface{} {
	return []interface{}{
		r.ID, r.Status, r.Topic, r.TargetWordCount, r.Language,
		r.SourceData, r.Article, r.ErrorMessage, r.CreatedAt, r.UpdatedAt,
	}
}

// ScanTargets returns pointers to the row fields in Columns order.
func (r *Row) ScanTargets() []interface{} {
	return []interface{}{
		&r.ID, &r.Status, &r.Topic, &r.TargetWordCount, &r.Language,
		&r.SourceData, &r.Article, &r.ErrorMessage, &r.CreatedAt, &r.UpdatedAt,
	}
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

// EncodeJob flattens a job into a Row.
func EncodeJob(job *model.Job) (Row, error) {
	row := Row{
		ID:              job.ID,
		Status:          string(job.Status),
		Topic:           job.Request.Topic,
		TargetWordCount: job.Request.TargetWordCount,
		Language:        job.Request.Language,
		CreatedAt:       FormatTime(job.CreatedAt),
		UpdatedAt:       FormatTime(job.UpdatedAt),
	}
	if job.SourceData != nil {
		b, err := json.Marshal(job.SourceData)
		if err != nil {
			return Row{}, fmt.Errorf("encode source data: %w", err)
		}
		row.SourceData = sql.NullString{String: string(b), Valid: true}
	}
	if job.Article != nil {
		b, err := json.Marshal(job.Article)
		if err != nil {
			return Row{}, fmt.Errorf("encode article: %w", err)
		}
		row.Article = sql.NullString{String: string(b), Valid: true}
	}
	if job.ErrorMessage != nil {
		row.ErrorMessage = sql.NullString{String: *job.ErrorMessage, Valid: true}
	}
	return row, nil
}

// Job decodes the row back into a domain job.
func (r Row) Job() (*model.Job, error) {
	status, err := model.ParseJobStatus(r.Status)
	if err != nil {
		return nil, err
	}
	job := &model.Job{
		ID:     r.ID,
		Status: status,
		Request: model.ArticleRequest{
			Topic:           r.Topic,
			TargetWordCount: r.TargetWordCount,
			Language:        r.Language,
		},
	}
	if job.CreatedAt, err = ParseTime(r.CreatedAt); err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	if job.UpdatedAt, err = ParseTime(r.UpdatedAt); err != nil {
		return nil, fmt.Errorf("decode updated_at: %w", err)
	}
	if r.SourceData.Valid {
		var sd model.SourceData
		if err := json.Unmarshal([]byte(r.SourceData.String), &sd); err != nil {
			return nil, fmt.Errorf("decode source data: %w", err)
		}
		job.SourceData = &sd
	}
	if r.Article.Valid {
		var a model.Article
		if err := json.Unmarshal([]byte(r.Article.String), &a); err != nil {
			return nil, fmt.Errorf("decode article: %w", err)
		}
		job.Article = &a
	}
	if r.ErrorMessage.Valid {
		msg := r.ErrorMessage.String
		job.ErrorMessage = &msg
	}
	return job, nil
}

// Summary decodes only the listing columns.
func (r Row) Summary() (model.JobSummary, error) {
	status, err := model.ParseJobStatus(r.Status)
	if err != nil {
		return model.JobSummary{}, err
	}
	created, err := ParseTime(r.CreatedAt)
	if err != nil {
		return model.JobSummary{}, fmt.Errorf("decode created_at: %w", err)
	}
	return model.JobSummary{ID: r.ID, Status: status, Topic: r.Topic, CreatedAt: created}, nil
}
