package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/hospitality-booking/internal/bookings"
	"github.com/wolfman30/hospitality-booking/internal/conversation"
	httpmiddleware "github.com/wolfman30/hospitality-booking/internal/http/middleware"
	"github.com/wolfman30/hospitality-booking/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	BookingsHandler     *bookings.Handler
	ConversationHandler *conversation.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
	RateLimitRPS        float64
	RateLimitBurst      int

	// Reported by the health endpoints.
	LLMConfigured bool
	SessionStore  string
}

// HealthResponse is served on / and /health.
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	if cfg.BookingsHandler == nil {
		panic("router: bookings handler cannot be nil")
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	health := healthHandler(cfg)
	r.Get("/", health)
	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Group(func(api chi.Router) {
		api.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

		if h := cfg.ConversationHandler; h != nil {
			api.Route("/chat", func(r chi.Router) {
				r.Post("/", h.Chat)
				r.Get("/ws", h.ChatWS)
				r.Get("/sessions/{sessionID}", h.GetSession)
				r.Delete("/sessions/{sessionID}", h.ResetSession)
			})
		}

		b := cfg.BookingsHandler
		api.Route("/bookings", func(r chi.Router) {
			r.Post("/", b.Create)
			r.Get("/", b.List)
			r.Post("/search", b.Search)
			r.Get("/{id}", b.Get)
			r.Patch("/{id}", b.Modify)
			r.Delete("/{id}", b.Cancel)
		})
		api.Get("/stats", b.Stats)
	})

	return r
}

func healthHandler(cfg *Config) http.HandlerFunc {
	llm := "not_configured"
	if cfg.LLMConfigured {
		llm = "configured"
	}
	sessions := cfg.SessionStore
	if sessions == "" {
		sessions = "memory"
	}
	resp := HealthResponse{
		Status: "healthy",
		Services: map[string]string{
			"api":      "running",
			"ledger":   "ready",
			"llm":      llm,
			"sessions": sessions,
		},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
