package worker

import (
	"context"
	"time"

	"seo-article-agent/internal/domain/ports/adapter"
)

var _ adapter.JobEventSink = (*AsyncSink)(nil)

// AsyncSink hands events to the pool so slow sinks do not hold up the
// pipeline. Events of one job are delivered in order.
type AsyncSink struct {
	pool    *Pool
	inner   adapter.JobEventSink
	timeout time.Duration
}

func NewAsyncSink(pool *Pool, inner adapter.JobEventSink, timeout time.Duration) *AsyncSink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AsyncSink{pool: pool, inner: inner, timeout: timeout}
}

// Publish returns an error only when the event could not be queued.
func (s *AsyncSink) Publish(ctx context.Context, ev adapter.JobEvent) error {
	if ev.Job != nil {
		ev.Job = ev.Job.Clone()
	}
	return s.pool.Submit(ev.JobID, func(poolCtx context.Context) error {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(poolCtx), s.timeout)
		defer cancel()
		return s.inner.Publish(ctx, ev)
	})
}
