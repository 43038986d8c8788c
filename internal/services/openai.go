package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/word-dungeon/pkg/chat"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const DefaultOpenAITemperature = 0.8

// OpenAIService implements LLMService for OpenAI chat completions, or any
// endpoint compatible with them.
type OpenAIService struct {
	client    openai.Client
	apiKey    string
	modelName string
	logger    *slog.Logger
}

// NewOpenAIService creates a client for baseURL. Retries are left to the
// content generator, so the SDK's own retries are turned off.
func NewOpenAIService(apiKey, baseURL, modelName string, timeout time.Duration, logger *slog.Logger) *OpenAIService {
	return &OpenAIService{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
			option.WithRequestTimeout(timeout),
			option.WithMaxRetries(0),
		),
		apiKey:    apiKey,
		modelName: modelName,
		logger:    logger,
	}
}

func (o *OpenAIService) InitModel(ctx context.Context, modelName string) error {
	if o.apiKey == "" {
		o.logger.Warn("OpenAI API key not set; generations will fail", "model", modelName)
	}
	return nil
}

// Chat generates a chapter with structured output when a schema is given.
func (o *OpenAIService) Chat(ctx context.Context, messages []chat.ChatMessage, schema *chat.ResponseSchema) (string, error) {
	if o.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	params := openai.ChatCompletionNewParams{
		Model:       o.modelName,
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(DefaultOpenAITemperature),
	}
	if schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schema.Name,
					Schema: schema.Schema,
				},
			},
		}
	}

	res, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", nil
	}

	o.logger.Debug("OpenAI response received",
		"model", o.modelName,
		"prompt_tokens", res.Usage.PromptTokens,
		"completion_tokens", res.Usage.CompletionTokens)

	return res.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []chat.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case chat.ChatRoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case chat.ChatRoleAgent:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
