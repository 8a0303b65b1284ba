package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/hospitality-booking/pkg/logging"
)

func TestNewStampsIdentity(t *testing.T) {
	a := New(TypeBookingCreated, "create")
	b := New(TypeBookingCreated, "create")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, SeverityInfo, a.Severity)
	assert.False(t, a.OccurredAt.IsZero())
}

func TestFailureCarriesError(t *testing.T) {
	evt := Failure("create", errors.New("boom"), SeverityCritical)
	assert.Equal(t, TypeError, evt.Type)
	assert.Equal(t, SeverityCritical, evt.Severity)
	assert.Equal(t, "boom", evt.Error)
}

func TestWithAttrDoesNotAlias(t *testing.T) {
	base := New(TypeError, "op").WithAttr("a", "1")
	child := base.WithAttr("b", "2")

	assert.Len(t, base.Attributes, 1)
	assert.Len(t, child.Attributes, 2)
}

func TestLogSinkLevels(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(logging.NewWithWriter("info", "json", &buf))

	evt := Failure("create", errors.New("exhausted"), SeverityCritical)
	evt.BookingID = "BK9999"
	sink.Emit(context.Background(), evt)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "BK9999", entry["booking_id"])
	assert.Equal(t, "exhausted", entry["error"])
}

func TestFanoutSkipsNil(t *testing.T) {
	r1, r2 := NewRecorder(), NewRecorder()
	fan := NewFanout(r1, nil, r2)
	require.Len(t, fan, 2)

	fan.Emit(context.Background(), New(TypeBookingCancelled, "cancel"))
	assert.Len(t, r1.Events(), 1)
	assert.Len(t, r2.OfType(TypeBookingCancelled), 1)
	assert.Empty(t, r2.OfType(TypeBookingCreated))
}

type stubWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *stubWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaSinkKeysByBooking(t *testing.T) {
	w := &stubWriter{}
	sink := newKafkaSink(w, logging.New("error"))

	evt := New(TypeBookingCreated, "create")
	evt.BookingID = "BK0003"
	evt.SessionID = "sess-1"
	sink.Emit(context.Background(), evt)

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "BK0003", string(w.msgs[0].Key))

	var decoded Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, evt.ID, decoded.ID)
	assert.Equal(t, TypeBookingCreated, decoded.Type)

	require.NoError(t, sink.Close())
	assert.True(t, w.closed)
}

func TestKafkaSinkFallsBackToSessionKey(t *testing.T) {
	w := &stubWriter{}
	sink := newKafkaSink(w, logging.New("error"))

	evt := New(TypeExtractionFailed, "extract")
	evt.SessionID = "sess-9"
	sink.Emit(context.Background(), evt)

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "sess-9", string(w.msgs[0].Key))
}

func TestKafkaSinkSwallowsWriteErrors(t *testing.T) {
	var buf bytes.Buffer
	w := &stubWriter{err: errors.New("broker down")}
	sink := newKafkaSink(w, logging.NewWithWriter("warn", "text", &buf))

	sink.Emit(context.Background(), New(TypeBookingCreated, "create"))
	assert.True(t, strings.Contains(buf.String(), "broker down"))
}

func TestNewKafkaSinkValidates(t *testing.T) {
	_, err := NewKafkaSink(nil, "topic", nil)
	assert.Error(t, err)
	_, err = NewKafkaSink([]string{"localhost:9092"}, "", nil)
	assert.Error(t, err)

	sink, err := NewKafkaSink([]string{"localhost:9092"}, "booking-events", nil)
	require.NoError(t, err)
	assert.NotNil(t, sink)
}
