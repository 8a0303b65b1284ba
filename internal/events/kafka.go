package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wolfman30/hospitality-booking/pkg/logging"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes events as JSON to a Kafka topic, keyed by booking or
// session id so one booking's events stay ordered within a partition.
type KafkaSink struct {
	writer  messageWriter
	logger  *logging.Logger
	timeout time.Duration
}

// NewKafkaSink builds an async writer for the given brokers and topic.
func NewKafkaSink(brokers []string, topic string, logger *logging.Logger) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("events: at least one kafka broker is required")
	}
	if topic == "" {
		return nil, errors.New("events: kafka topic is required")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
	}
	return newKafkaSink(writer, logger), nil
}

func newKafkaSink(writer messageWriter, logger *logging.Logger) *KafkaSink {
	if writer == nil {
		panic("events: kafka writer cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &KafkaSink{writer: writer, logger: logger, timeout: 2 * time.Second}
}

func (s *KafkaSink) Emit(ctx context.Context, evt Event) {
	body, err := json.Marshal(evt)
	if err != nil {
		s.logger.Error("failed to encode event", "event_type", string(evt.Type), "error", err)
		return
	}
	key := evt.BookingID
	if key == "" {
		key = evt.SessionID
	}

	// Detached so a cancelled request still reports its events.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(key),
		Value: body,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
			{Key: "severity", Value: []byte(evt.Severity)},
		},
	}
	if err := s.writer.WriteMessages(writeCtx, msg); err != nil {
		s.logger.Warn("failed to publish event", "event_type", string(evt.Type), "error", err)
	}
}

// Close flushes pending messages.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
