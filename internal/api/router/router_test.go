package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/hospitality-booking/internal/bookings"
	"github.com/wolfman30/hospitality-booking/internal/conversation"
	"github.com/wolfman30/hospitality-booking/internal/observability/metrics"
	"github.com/wolfman30/hospitality-booking/pkg/logging"
)

func newTestRouter(t *testing.T, answers ...string) http.Handler {
	t.Helper()

	logger := logging.Default()
	reg := prometheus.NewRegistry()
	m := metrics.NewBookingMetrics(reg)
	ledger := bookings.NewLedger(bookings.WithSink(m), bookings.WithClock(func() time.Time {
		return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	}))

	llm := conversation.LLMClientFunc(func(context.Context, conversation.LLMRequest) (conversation.LLMResponse, error) {
		if len(answers) == 0 {
			return conversation.LLMResponse{Text: `{"intent":"smalltalk","reply":"Hi!"}`}, nil
		}
		text := answers[0]
		answers = answers[1:]
		return conversation.LLMResponse{Text: text}, nil
	})
	extractor := conversation.NewExtractor(llm, ledger.Locale(), conversation.WithExtractorMetrics(m))
	orch := conversation.NewOrchestrator(ledger, extractor, logger, conversation.WithOrchestratorMetrics(m))

	return New(&Config{
		Logger:              logger,
		BookingsHandler:     bookings.NewHandler(ledger, logger),
		ConversationHandler: conversation.NewHandler(orch, logger),
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  []string{"*"},
		RateLimitRPS:        100,
		RateLimitBurst:      100,
		LLMConfigured:       true,
	})
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/", "/health"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected status %d, got %d", path, http.StatusOK, rr.Code)
		}
		var resp HealthResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode health response: %v", err)
		}
		if resp.Status != "healthy" {
			t.Errorf("expected status 'healthy', got %q", resp.Status)
		}
		if resp.Services["llm"] != "configured" || resp.Services["sessions"] != "memory" {
			t.Errorf("unexpected services: %v", resp.Services)
		}
	}
}

func TestRouterBookingLifecycle(t *testing.T) {
	router := newTestRouter(t)

	body := `{"name":"Alice","contact":"alice@example.com","date":"2025-06-02","time":"19:00","guests":2}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bookings/BK0001", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/bookings/BK0001", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats", nil))
	var stats bookings.Statistics
	if err := json.NewDecoder(rr.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 1 || stats.CancelledCount != 1 || stats.TotalGuests != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `hospitality_bookings_events_total{severity="info",type="booking_created"} 1`) {
		t.Fatalf("expected booking_created counter in metrics output")
	}
}

func TestRouterChat(t *testing.T) {
	router := newTestRouter(t, `{"intent":"book","fields":{"name":"Alice","contact":"a@b.c","date":"2025-06-02","time":"19:00","guests":3}}`)

	payload, _ := json.Marshal(map[string]string{"message": "Alice a@b.c 3 people tomorrow 7pm"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp conversation.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode chat response: %v", err)
	}
	if resp.Booking == nil || resp.Booking.ID != "BK0001" {
		t.Fatalf("expected booking BK0001, got %+v", resp.Booking)
	}
	if resp.SessionID == "" {
		t.Fatalf("expected a generated session id")
	}
}

func TestRouterRequestIDHeader(t *testing.T) {
	router := newTestRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header")
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
