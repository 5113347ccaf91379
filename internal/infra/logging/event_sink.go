package logging

import (
	"context"

	"github.com/rs/zerolog"

	"seo-article-agent/internal/domain/ports/adapter"
)

var _ adapter.JobEventSink = (*EventSink)(nil)

// EventSink writes one structured line per job event.
type EventSink struct {
	log *zerolog.Logger
}

func NewEventSink(log *zerolog.Logger) *EventSink {
	return &EventSink{log: log}
}

func (s *EventSink) Publish(_ context.Context, ev adapter.JobEvent) error {
	e := s.log.Info()
	if ev.Type == adapter.JobEventFailed {
		e = s.log.Warn().Str("error", ev.Error)
	}
	e.Str("trace_id", ev.TraceID).
		Str("job_id", ev.JobID).
		Str("event", string(ev.Type)).
		Str("status", string(ev.Status)).
		Str("topic", ev.Topic).
		Time("at", ev.At).
		Msg("job event")
	return nil
}
