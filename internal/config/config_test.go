package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "LLM_PROVIDER", "SESSION_STORE", "EXTRACTION_TIMEOUT", "CORS_ALLOWED_ORIGINS", "EVENTS_KAFKA_BROKERS", "MAX_PARTY_SIZE"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected gemini provider by default, got %s", cfg.LLMProvider)
	}
	if cfg.SessionStore != "memory" {
		t.Fatalf("expected memory session store, got %s", cfg.SessionStore)
	}
	if cfg.ExtractionTimeout != 10*time.Second {
		t.Fatalf("expected 10s extraction timeout, got %s", cfg.ExtractionTimeout)
	}
	if cfg.MaxPartySize != 50 {
		t.Fatalf("expected party size ceiling 50, got %d", cfg.MaxPartySize)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard CORS origin, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.EventsKafkaBrokers != nil {
		t.Fatalf("expected no kafka brokers, got %v", cfg.EventsKafkaBrokers)
	}
	if cfg.IsProduction() {
		t.Fatalf("development env reported as production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LLM_PROVIDER", " Bedrock ")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("EVENTS_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("MAX_PARTY_SIZE", "not-a-number")

	cfg := Load()
	if cfg.Port != "9090" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production env")
	}
	if cfg.LLMProvider != "bedrock" {
		t.Fatalf("expected normalized provider, got %q", cfg.LLMProvider)
	}
	if cfg.SessionTTL != 45*time.Minute {
		t.Fatalf("expected 45m ttl, got %s", cfg.SessionTTL)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", cfg.RateLimitRPS)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if len(cfg.EventsKafkaBrokers) != 2 {
		t.Fatalf("expected two brokers, got %v", cfg.EventsKafkaBrokers)
	}
	if cfg.MaxPartySize != 50 {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.MaxPartySize)
	}
}
