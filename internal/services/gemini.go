package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/jwebster45206/word-dungeon/pkg/chat"
	"google.golang.org/api/option"
)

const DefaultGeminiTemperature = 0.8

// GeminiService implements LLMService for Google Gemini
type GeminiService struct {
	apiKey    string
	modelName string
	logger    *slog.Logger

	mu     sync.Mutex
	client *genai.Client
}

func NewGeminiService(apiKey string, modelName string, logger *slog.Logger) *GeminiService {
	return &GeminiService{
		apiKey:    apiKey,
		modelName: modelName,
		logger:    logger,
	}
}

// InitModel opens the client. A missing key is logged, not fatal.
func (g *GeminiService) InitModel(ctx context.Context, modelName string) error {
	if g.apiKey == "" {
		g.logger.Warn("Gemini API key not set; generations will fail", "model", modelName)
		return nil
	}
	_, err := g.getClient(ctx)
	return err
}

func (g *GeminiService) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	if g.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	g.client = client
	return client, nil
}

// Close releases the underlying client.
func (g *GeminiService) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}

// Chat generates a chapter. System messages become the system instruction
// and the schema is enforced through Gemini's response schema.
func (g *GeminiService) Chat(ctx context.Context, messages []chat.ChatMessage, schema *chat.ResponseSchema) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}

	systemPrompt, rest := splitChatMessages(messages)
	model := client.GenerativeModel(g.modelName)
	model.SetTemperature(DefaultGeminiTemperature)
	if systemPrompt != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))
	}
	if schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = toGeminiSchema(schema.Schema)
	}

	parts := make([]genai.Part, 0, len(rest))
	for _, m := range rest {
		parts = append(parts, genai.Text(m.Content))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}

// toGeminiSchema converts a JSON-schema map into Gemini's typed schema.
// Keywords Gemini does not model are dropped.
func toGeminiSchema(m map[string]interface{}) *genai.Schema {
	if m == nil {
		return nil
	}
	s := &genai.Schema{}
	if t, ok := m["type"].(string); ok {
		s.Type = geminiType(t)
	}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if items, ok := m["items"].(map[string]interface{}); ok {
		s.Items = toGeminiSchema(items)
	}
	if props, ok := m["properties"].(map[string]interface{}); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if pm, ok := p.(map[string]interface{}); ok {
				s.Properties[name] = toGeminiSchema(pm)
			}
		}
	}
	if req, ok := m["required"].([]string); ok {
		s.Required = append([]string(nil), req...)
	}
	if enum, ok := m["enum"].([]string); ok {
		s.Enum = append([]string(nil), enum...)
	}
	return s
}

func geminiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}
