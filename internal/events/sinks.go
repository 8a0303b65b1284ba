package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wolfman30/hospitality-booking/pkg/logging"
)

// LogSink writes events as structured log records.
type LogSink struct {
	logger *logging.Logger
}

func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, evt Event) {
	level := slog.LevelInfo
	switch evt.Severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityCritical:
		level = slog.LevelError
	}

	args := []any{
		"event_id", evt.ID,
		"event_type", string(evt.Type),
		"severity", string(evt.Severity),
		"operation", evt.Operation,
	}
	if evt.BookingID != "" {
		args = append(args, "booking_id", evt.BookingID)
	}
	if evt.SessionID != "" {
		args = append(args, "session_id", evt.SessionID)
	}
	if evt.Error != "" {
		args = append(args, "error", evt.Error)
	}
	for k, v := range evt.Attributes {
		args = append(args, k, v)
	}
	s.logger.Log(ctx, level, "event", args...)
}

// Fanout delivers each event to every non-nil sink in order.
type Fanout []Sink

func NewFanout(sinks ...Sink) Fanout {
	out := make(Fanout, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (f Fanout) Emit(ctx context.Context, evt Event) {
	for _, s := range f {
		s.Emit(ctx, evt)
	}
}

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(_ context.Context, evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

// Events returns a snapshot of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType filters recorded events by type.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, evt := range r.Events() {
		if evt.Type == t {
			out = append(out, evt)
		}
	}
	return out
}
