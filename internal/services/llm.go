package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jwebster45206/word-dungeon/pkg/chat"
)

// LLMService defines the interface for interacting with the LLM API
type LLMService interface {
	// InitModel prepares the model on startup
	InitModel(ctx context.Context, modelName string) error

	// Chat sends messages and returns the raw reply text. A non-nil schema
	// asks the backend for structured output where it supports it.
	Chat(ctx context.Context, messages []chat.ChatMessage, schema *chat.ResponseSchema) (string, error)
}

// ErrGenerationFailed wraps every transport or service failure that
// survives retries.
var ErrGenerationFailed = errors.New("content generation failed")

// ErrMissingAPIKey is returned by hosted backends configured without a key.
var ErrMissingAPIKey = errors.New("missing API key")

// splitChatMessages extracts and combines all system messages into a single system prompt
// and returns the remaining non-system messages
func splitChatMessages(messages []chat.ChatMessage) (string, []chat.ChatMessage) {
	var systemParts []string
	var nonSystemMessages []chat.ChatMessage

	for _, msg := range messages {
		if msg.Role == chat.ChatRoleSystem {
			systemParts = append(systemParts, msg.Content)
		} else {
			nonSystemMessages = append(nonSystemMessages, msg)
		}
	}

	return strings.Join(systemParts, "\n\n"), nonSystemMessages
}
