package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jwebster45206/word-dungeon/pkg/chat"
	"github.com/ollama/ollama/api"
)

const DefaultOllamaTemperature = 0.8

// OllamaService implements the LLMService interface for a local Ollama server
type OllamaService struct {
	client    *api.Client
	baseURL   string
	modelName string
	logger    *slog.Logger

	readyRetries int
	readyDelay   time.Duration
}

// NewOllamaService creates a new Ollama service instance
func NewOllamaService(baseURL string, modelName string, timeout time.Duration, logger *slog.Logger) (*OllamaService, error) {
	// api.NewClient wants the server root, without /v1
	baseURL = strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/v1")
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama URL %q: %w", baseURL, err)
	}

	return &OllamaService{
		client:       api.NewClient(parsed, &http.Client{Timeout: timeout}),
		baseURL:      baseURL,
		modelName:    modelName,
		logger:       logger,
		readyRetries: 5,
		readyDelay:   2 * time.Second,
	}, nil
}

// InitModel waits for the server and pulls the model if it is missing
func (s *OllamaService) InitModel(ctx context.Context, modelName string) error {
	s.logger.Info("Initializing LLM model", "provider", "ollama", "model", modelName)

	if err := s.waitForOllamaReady(ctx); err != nil {
		return fmt.Errorf("ollama service is not ready: %w", err)
	}

	ready, err := s.isModelReady(ctx, modelName)
	if err != nil {
		return fmt.Errorf("failed to check model readiness: %w", err)
	}
	if ready {
		s.logger.Info("Model already available", "model", modelName)
		return nil
	}

	s.logger.Info("Model not found, pulling it", "model", modelName)
	err = s.client.Pull(ctx, &api.PullRequest{Model: modelName}, func(p api.ProgressResponse) error {
		s.logger.Debug("Pulling model", "model", modelName, "status", p.Status, "completed", p.Completed, "total", p.Total)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to pull model: %w", err)
	}
	s.logger.Info("Model pulled successfully", "model", modelName)
	return nil
}

// Chat generates a chapter using the Ollama chat API (non-streaming).
// The schema is passed as Ollama's structured output format.
func (s *OllamaService) Chat(ctx context.Context, messages []chat.ChatMessage, schema *chat.ResponseSchema) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    s.modelName,
		Messages: make([]api.Message, 0, len(messages)),
		Stream:   &stream,
		Options: map[string]interface{}{
			"temperature": DefaultOllamaTemperature,
		},
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, api.Message{Role: m.Role, Content: m.Content})
	}
	if schema != nil {
		format, err := json.Marshal(schema.Schema)
		if err != nil {
			return "", fmt.Errorf("failed to marshal schema: %w", err)
		}
		req.Format = format
	}

	s.logger.Debug("Making Ollama chat request",
		"url", s.baseURL,
		"model", s.modelName,
		"message_count", len(messages))

	var content strings.Builder
	err := s.client.Chat(ctx, req, func(r api.ChatResponse) error {
		content.WriteString(r.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}
	return content.String(), nil
}

// isModelReady checks if the specified model is available locally
func (s *OllamaService) isModelReady(ctx context.Context, modelName string) (bool, error) {
	list, err := s.client.List(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range list.Models {
		if m.Name == modelName || m.Model == modelName || strings.TrimSuffix(m.Name, ":latest") == modelName {
			return true, nil
		}
	}
	return false, nil
}

// waitForOllamaReady waits for Ollama service to be ready with retries
func (s *OllamaService) waitForOllamaReady(ctx context.Context) error {
	for i := 0; i < s.readyRetries; i++ {
		err := s.client.Heartbeat(ctx)
		if err == nil {
			s.logger.Info("Ollama service is ready")
			return nil
		}
		s.logger.Debug("Ollama not ready yet", "error", err, "attempt", i+1)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for ollama: %w", ctx.Err())
		case <-time.After(s.readyDelay):
		}
	}
	return fmt.Errorf("ollama service did not become ready after %d attempts", s.readyRetries)
}
