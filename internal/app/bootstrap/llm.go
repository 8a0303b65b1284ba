package bootstrap

import (
	"context"
	"fmt"
	"strings"

	appconfig "github.com/wolfman30/hospitality-booking/internal/config"
	"github.com/wolfman30/hospitality-booking/internal/conversation"
	"github.com/wolfman30/hospitality-booking/pkg/logging"
)

const (
	providerGemini  = "gemini"
	providerBedrock = "bedrock"
	providerNone    = "none"
)

// BuildLLMClient wires the configured language model, optionally wrapped
// with a fallback provider. A nil client with a nil error means no model is
// configured and chat turns will apologise instead of extracting.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (conversation.LLMClient, func(), error) {
	if cfg == nil {
		return nil, func() {}, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	primary, closePrimary, err := buildProvider(ctx, cfg, cfg.LLMProvider)
	if err != nil {
		return nil, func() {}, err
	}
	if primary == nil {
		logger.Warn("no language model configured; chat is degraded", "provider", cfg.LLMProvider)
		return nil, func() {}, nil
	}
	logger.Info("language model configured", "provider", cfg.LLMProvider)

	fallbackName := cfg.LLMFallbackProvider
	if fallbackName == "" || fallbackName == cfg.LLMProvider {
		return primary, closePrimary, nil
	}
	fallback, closeFallback, err := buildProvider(ctx, cfg, fallbackName)
	if err != nil {
		logger.Warn("fallback language model unavailable", "provider", fallbackName, "error", err)
		return primary, closePrimary, nil
	}
	if fallback == nil {
		return primary, closePrimary, nil
	}
	logger.Info("fallback language model configured", "provider", fallbackName)
	closeAll := func() {
		closePrimary()
		closeFallback()
	}
	return conversation.NewFallbackLLMClient(primary, fallback, logger), closeAll, nil
}

func buildProvider(ctx context.Context, cfg *appconfig.Config, name string) (conversation.LLMClient, func(), error) {
	noop := func() {}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case providerGemini:
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return nil, noop, nil
		}
		client, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		return client, func() { _ = client.Close() }, nil
	case providerBedrock:
		if strings.TrimSpace(cfg.BedrockModelID) == "" {
			return nil, noop, fmt.Errorf("bootstrap: BEDROCK_MODEL_ID is required for the bedrock provider")
		}
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		api := newBedrockRuntime(awsCfg, cfg.AWSEndpointOverride)
		return conversation.NewBedrockLLMClient(api, cfg.BedrockModelID), noop, nil
	case "", providerNone:
		return nil, noop, nil
	default:
		return nil, noop, fmt.Errorf("bootstrap: unknown llm provider %q", name)
	}
}
