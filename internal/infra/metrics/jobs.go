package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"seo-article-agent/internal/domain/ports/adapter"
)

func init() { register(seoJobsTotal, pipelineDurationMs) }

var (
	seoJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seo_jobs_total",
			Help: "Job lifecycle events, labeled by event type.",
		},
		[]string{"event"}, // created, running, source_saved, completed, failed
	)

	pipelineDurationMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_duration_ms",
			Help:    "Wall time of one pipeline run in milliseconds.",
			Buckets: []float64{10, 100, 500, 1000, 5000, 15000, 30000, 60000, 120000},
		},
		[]string{"outcome"}, // completed, failed
	)
)

func IncJobEvent(event string) {
	seoJobsTotal.WithLabelValues(norm(event)).Inc()
}

var _ adapter.JobEventSink = EventSink{}

// EventSink counts job lifecycle events.
type EventSink struct{}

func (EventSink) Publish(_ context.Context, ev adapter.JobEvent) error {
	IncJobEvent(string(ev.Type))
	return nil
}

// Observer implements the generator's telemetry hooks on the default registry.
type Observer struct{}

func (Observer) PromptTokens(provider, model string, n int) { ObservePromptTokens(provider, model, n) }

func (Observer) Fallback(reason string) { IncArticleFallback(reason) }

func (Observer) PipelineDone(outcome string, d time.Duration) {
	pipelineDurationMs.WithLabelValues(norm(outcome)).Observe(float64(d / time.Millisecond))
}
