package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wolfman30/hospitality-booking/internal/events"
)

// BookingMetrics exposes counters/histograms for the booking and chat flows.
// It doubles as an events.Sink so the ledger does not import prometheus.
type BookingMetrics struct {
	eventsTotal        *prometheus.CounterVec
	chatTurnsTotal     *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
}

var _ events.Sink = (*BookingMetrics)(nil)

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospitality",
			Subsystem: "bookings",
			Name:      "events_total",
			Help:      "Booking core events by type and severity",
		}, []string{"type", "severity"}),
		chatTurnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospitality",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Chat turns handled by outcome",
		}, []string{"outcome"}),
		extractionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hospitality",
			Subsystem: "chat",
			Name:      "extraction_duration_seconds",
			Help:      "Latency of language model slot extraction",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.eventsTotal, m.chatTurnsTotal, m.extractionDuration)
	return m
}

// Emit counts the event.
func (m *BookingMetrics) Emit(_ context.Context, evt events.Event) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(string(evt.Type), string(evt.Severity)).Inc()
}

func (m *BookingMetrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}
	m.chatTurnsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveExtraction(status string, seconds float64) {
	if m == nil {
		return
	}
	m.extractionDuration.WithLabelValues(status).Observe(seconds)
}
