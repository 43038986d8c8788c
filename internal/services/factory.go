package services

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/word-dungeon/internal/config"
)

// NewLLMService builds the backend named by cfg.LLMProvider. A missing API
// key is logged, not fatal: the backend reports it on every Chat call and
// the game shows the usual failure notice.
func NewLLMService(cfg *config.Config, logger *slog.Logger) (LLMService, error) {
	if cfg.NeedsAPIKey() && cfg.APIKey() == "" {
		logger.Warn("API key not set for LLM provider", "provider", cfg.LLMProvider)
	}

	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return NewGeminiService(cfg.GeminiAPIKey, cfg.ModelName, logger), nil
	case config.ProviderOpenAI:
		return NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ModelName, cfg.LLMTimeout, logger), nil
	case config.ProviderDeepSeek:
		return NewDeepSeekService(cfg.DeepSeekAPIKey, cfg.DeepSeekBaseURL, cfg.ModelName, cfg.LLMTimeout, logger), nil
	case config.ProviderAnthropic:
		return NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, cfg.LLMTimeout, logger), nil
	case config.ProviderVenice:
		return NewVeniceService(cfg.VeniceAPIKey, cfg.ModelName, cfg.LLMTimeout, logger), nil
	case config.ProviderOllama:
		return NewOllamaService(cfg.OllamaURL, cfg.ModelName, cfg.LLMTimeout, logger)
	case config.ProviderMock:
		return NewMockLLMAPI(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
}
