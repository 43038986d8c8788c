package chat

import (
	"fmt"
	"strings"
)

const (
	ChatRoleUser   = "user"      // Player or task prompt
	ChatRoleAgent  = "assistant" // Model reply
	ChatRoleSystem = "system"    // Persona instructions
)

// ChatMessage represents a single message sent to the LLM.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ResponseSchema is a JSON schema the LLM reply must conform to.
// Backends that support structured output pass it through; the rest
// describe it in the prompt.
type ResponseSchema struct {
	Name   string                 `json:"name"`
	Schema map[string]interface{} `json:"schema"`
}

// ContinueRequest is the body of a continue-story call. An empty action
// falls back to the default action.
type ContinueRequest struct {
	Action string `json:"action"`
}

// MaxActionLength bounds player-typed actions, in runes.
const MaxActionLength = 200

func (cr *ContinueRequest) Validate() error {
	if n := len([]rune(strings.TrimSpace(cr.Action))); n > MaxActionLength {
		return fmt.Errorf("action cannot exceed %d characters", MaxActionLength)
	}
	return nil
}

// AnswerRequest is the body of a quiz answer call.
type AnswerRequest struct {
	Option *int `json:"option"`
}

func (ar *AnswerRequest) Validate() error {
	if ar.Option == nil {
		return fmt.Errorf("option is required")
	}
	return nil
}
