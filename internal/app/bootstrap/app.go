package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/hospitality-booking/internal/api/router"
	"github.com/wolfman30/hospitality-booking/internal/bookings"
	appconfig "github.com/wolfman30/hospitality-booking/internal/config"
	"github.com/wolfman30/hospitality-booking/internal/conversation"
	"github.com/wolfman30/hospitality-booking/internal/observability/metrics"
	"github.com/wolfman30/hospitality-booking/pkg/logging"
)

var errNoLanguageModel = errors.New("bootstrap: no language model configured")

// App is the fully wired service.
type App struct {
	Handler      http.Handler
	Ledger       *bookings.Ledger
	Orchestrator *conversation.Orchestrator

	closers []func()
}

// Close releases external clients in reverse construction order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Build wires the ledger, the dialogue engine and the HTTP surface. reg
// receives the service metrics; nil uses a private registry.
func Build(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, reg *prometheus.Registry) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	loc, err := time.LoadLocation(cfg.BusinessTimezone)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: business timezone %q: %w", cfg.BusinessTimezone, err)
	}

	app := &App{}
	m := metrics.NewBookingMetrics(reg)

	sink, closeSink, err := BuildSink(cfg, m, logger)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closeSink)

	app.Ledger = bookings.NewLedger(
		bookings.WithLocation(loc),
		bookings.WithMaxGuests(cfg.MaxPartySize),
		bookings.WithSink(sink),
		bookings.WithLogger(logger),
	)

	llm, closeLLM, err := BuildLLMClient(ctx, cfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, closeLLM)
	llmConfigured := llm != nil
	if !llmConfigured {
		llm = conversation.LLMClientFunc(func(context.Context, conversation.LLMRequest) (conversation.LLMResponse, error) {
			return conversation.LLMResponse{}, errNoLanguageModel
		})
	}

	extractor := conversation.NewExtractor(llm, app.Ledger.Locale(),
		conversation.WithExtractionTimeout(cfg.ExtractionTimeout),
		conversation.WithPartySizeLimit(cfg.MaxPartySize),
		conversation.WithExtractorSink(sink),
		conversation.WithExtractorMetrics(m),
		conversation.WithExtractorLogger(logger),
	)

	store, storeName, closeStore := BuildSessionStore(ctx, cfg, logger)
	app.closers = append(app.closers, closeStore)

	app.Orchestrator = conversation.NewOrchestrator(app.Ledger, extractor, logger,
		conversation.WithSessionStore(store),
		conversation.WithOrchestratorMetrics(m),
	)

	app.Handler = router.New(&router.Config{
		Logger:              logger,
		BookingsHandler:     bookings.NewHandler(app.Ledger, logger),
		ConversationHandler: conversation.NewHandler(app.Orchestrator, logger),
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitRPS:        cfg.RateLimitRPS,
		RateLimitBurst:      cfg.RateLimitBurst,
		LLMConfigured:       llmConfigured,
		SessionStore:        storeName,
	})
	return app, nil
}
