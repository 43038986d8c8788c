package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.LLMProvider != ProviderGemini {
		t.Errorf("Expected gemini provider, got %s", cfg.LLMProvider)
	}
	if cfg.ModelName != "gemini-2.5-flash" {
		t.Errorf("Expected default gemini model, got %s", cfg.ModelName)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("Expected 1h session TTL, got %v", cfg.SessionTTL)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("Expected info level, got %v", cfg.LogLevel)
	}
}

func TestParse_ProviderOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", " Ollama ")
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("LLM_TIMEOUT", "5s")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.LLMProvider != ProviderOllama {
		t.Errorf("Expected ollama provider, got %s", cfg.LLMProvider)
	}
	if cfg.ModelName != "llama3.1" {
		t.Errorf("Expected default ollama model, got %s", cfg.ModelName)
	}
	if cfg.LogLevel != slog.LevelWarn {
		t.Errorf("Expected warn level, got %v", cfg.LogLevel)
	}
	if cfg.LLMTimeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", cfg.LLMTimeout)
	}
	if cfg.NeedsAPIKey() {
		t.Error("Expected ollama to need no API key")
	}
}

func TestParse_APIKeyAlias(t *testing.T) {
	t.Setenv("API_KEY", "legacy-key")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.APIKey() != "legacy-key" {
		t.Errorf("Expected API_KEY to stand in for GEMINI_API_KEY, got %q", cfg.APIKey())
	}

	t.Setenv("GEMINI_API_KEY", "gemini-key")
	cfg, err = Parse()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.APIKey() != "gemini-key" {
		t.Errorf("Expected GEMINI_API_KEY to win, got %q", cfg.APIKey())
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"unknown provider", "LLM_PROVIDER", "skynet", "unknown LLM_PROVIDER"},
		{"bad duration", "SESSION_TTL", "forever", "parse env:"},
		{"zero ttl", "SESSION_TTL", "0s", "SESSION_TTL"},
		{"bad retries", "LLM_MAX_RETRIES", "many", "parse env:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Parse()
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
