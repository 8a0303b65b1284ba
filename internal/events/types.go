package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type names a structured event emitted by the booking core.
type Type string

const (
	TypeBookingCreated   Type = "booking_created"
	TypeBookingCancelled Type = "booking_cancelled"
	TypeBookingModified  Type = "booking_modified"
	TypeExtractionFailed Type = "extraction_failed"
	TypeError            Type = "error"
)

// Severity ranks how urgently an operator should look at an event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event is the envelope every sink receives.
type Event struct {
	ID         string            `json:"event_id"`
	Type       Type              `json:"type"`
	Severity   Severity          `json:"severity"`
	Operation  string            `json:"operation"`
	BookingID  string            `json:"booking_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Error      string            `json:"error,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// New stamps a fresh event of the given type.
func New(eventType Type, operation string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Severity:   SeverityInfo,
		Operation:  operation,
		OccurredAt: time.Now().UTC(),
	}
}

// Failure builds an error event carrying err's message.
func Failure(operation string, err error, severity Severity) Event {
	evt := New(TypeError, operation)
	evt.Severity = severity
	if err != nil {
		evt.Error = err.Error()
	}
	return evt
}

// WithAttr returns a copy of e with key=value added to its attributes.
func (e Event) WithAttr(key, value string) Event {
	attrs := make(map[string]string, len(e.Attributes)+1)
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	attrs[key] = value
	e.Attributes = attrs
	return e
}

// Sink receives events. Emit must not block on slow downstreams.
type Sink interface {
	Emit(ctx context.Context, evt Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, evt Event)

func (f SinkFunc) Emit(ctx context.Context, evt Event) { f(ctx, evt) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(context.Context, Event) {})
