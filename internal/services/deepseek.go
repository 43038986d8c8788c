package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/word-dungeon/pkg/chat"
	goopenai "github.com/sashabaranov/go-openai"
)

const DefaultDeepSeekTemperature = 0.8

// DeepSeekService implements LLMService for DeepSeek models served through
// OpenRouter's OpenAI-compatible API.
type DeepSeekService struct {
	client    *goopenai.Client
	apiKey    string
	modelName string
	logger    *slog.Logger
}

// NewDeepSeekService creates a client against baseURL, usually OpenRouter.
func NewDeepSeekService(apiKey, baseURL, modelName string, timeout time.Duration, logger *slog.Logger) *DeepSeekService {
	config := goopenai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	config.HTTPClient = &http.Client{
		Timeout: timeout,
	}

	return &DeepSeekService{
		client:    goopenai.NewClientWithConfig(config),
		apiKey:    apiKey,
		modelName: modelName,
		logger:    logger,
	}
}

func (d *DeepSeekService) InitModel(ctx context.Context, modelName string) error {
	if d.apiKey == "" {
		d.logger.Warn("DeepSeek API key not set; generations will fail", "model", modelName)
	}
	return nil
}

// Chat generates a chapter. OpenRouter does not honour JSON schemas for
// every model, so a schema only switches on JSON object mode and the shape
// is left to the prompt.
func (d *DeepSeekService) Chat(ctx context.Context, messages []chat.ChatMessage, schema *chat.ResponseSchema) (string, error) {
	if d.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty")
	}

	req := goopenai.ChatCompletionRequest{
		Model:       d.modelName,
		Messages:    make([]goopenai.ChatCompletionMessage, 0, len(messages)),
		Temperature: DefaultDeepSeekTemperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	if schema != nil {
		req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := d.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("deepseek chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}

	d.logger.Debug("DeepSeek response received",
		"model", d.modelName,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return resp.Choices[0].Message.Content, nil
}
