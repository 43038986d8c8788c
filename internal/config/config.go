package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported LLM providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderDeepSeek  = "deepseek"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
	ProviderVenice    = "venice"
	ProviderMock      = "mock"
)

var defaultModels = map[string]string{
	ProviderGemini:    "gemini-2.5-flash",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderDeepSeek:  "deepseek/deepseek-chat-v3-0324:free",
	ProviderOllama:    "llama3.1",
	ProviderAnthropic: "claude-3-5-haiku-latest",
	ProviderVenice:    "llama-3.3-70b",
	ProviderMock:      "mock",
}

type Config struct {
	Port         string     `env:"PORT" envDefault:"8080"`
	Environment  string     `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelName string     `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel     slog.Level `env:"-"`

	LLMProvider string `env:"LLM_PROVIDER" envDefault:"gemini"`
	ModelName   string `env:"MODEL_NAME"`

	// Credentials. A missing key surfaces as a generation failure, not a
	// startup error.
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	LegacyAPIKey    string `env:"API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	DeepSeekAPIKey  string `env:"DEEPSEEK_API_KEY"`
	DeepSeekBaseURL string `env:"DEEPSEEK_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	VeniceAPIKey    string `env:"VENICE_API_KEY"`
	OllamaURL       string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`

	RedisURL   string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"1h"`

	LLMTimeout      time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	LLMMaxRetries   int           `env:"LLM_MAX_RETRIES" envDefault:"2"`
	LLMRetryBackoff time.Duration `env:"LLM_RETRY_BACKOFF" envDefault:"1s"`

	ReportFontPath string `env:"REPORT_FONT_PATH"`
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads configuration from the environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = cfg.LegacyAPIKey
	}
	if cfg.ModelName == "" {
		cfg.ModelName = defaultModels[cfg.LLMProvider]
	}
	if cfg.LLMMaxRetries < 0 {
		cfg.LLMMaxRetries = 0
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would make the service unusable.
func (c *Config) Validate() error {
	if _, ok := defaultModels[c.LLMProvider]; !ok {
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	return nil
}

// APIKey returns the credential for the configured provider.
func (c *Config) APIKey() string {
	switch c.LLMProvider {
	case ProviderGemini:
		return c.GeminiAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderDeepSeek:
		return c.DeepSeekAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	case ProviderVenice:
		return c.VeniceAPIKey
	default:
		return ""
	}
}

// NeedsAPIKey reports whether the provider is a hosted API.
func (c *Config) NeedsAPIKey() bool {
	return c.LLMProvider != ProviderOllama && c.LLMProvider != ProviderMock
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
