package adapter

import (
	"context"
	"errors"
	"time"

	"seo-article-agent/internal/domain/model"
)

type JobEventType string

const (
	JobEventCreated     JobEventType = "created"
	JobEventRunning     JobEventType = "running"
	JobEventSourceSaved JobEventType = "source_saved"
	JobEventCompleted   JobEventType = "completed"
	JobEventFailed      JobEventType = "failed"
)

// JobEvent is emitted by the orchestrator on each persisted lifecycle step.
type JobEvent struct {
	TraceID string          `json:"trace_id"`
	JobID   string          `json:"job_id"`
	Type    JobEventType    `json:"type"`
	Status  model.JobStatus `json:"status"`
	Topic   string          `json:"topic"`
	Error   string          `json:"error,omitempty"`
	Job     *model.Job      `json:"-"`
	At      time.Time       `json:"at"`
}

// JobEventSink receives lifecycle events. Errors never alter the pipeline outcome.
type JobEventSink interface {
	Publish(ctx context.Context, ev JobEvent) error
}

// MultiSink delivers every event to each sink and joins their errors.
type MultiSink []JobEventSink

var _ JobEventSink = MultiSink(nil)

func (m MultiSink) Publish(ctx context.Context, ev JobEvent) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopSink drops events.
type NopSink struct{}

func (NopSink) Publish(context.Context, JobEvent) error { return nil }
