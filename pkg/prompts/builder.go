package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/word-dungeon/pkg/chat"
	"github.com/jwebster45206/word-dungeon/pkg/state"
	"github.com/jwebster45206/word-dungeon/pkg/story"
)

// ExcerptLimit is how much of the previous chapter, in runes, is sent
// with a continuation request.
const ExcerptLimit = 1500

// Builder constructs chat messages for a generation using a fluent interface.
type Builder struct {
	input        *story.UserInput
	kind         state.Kind
	previous     string
	action       string
	excerptLimit int
	messages     []chat.ChatMessage
}

// New creates a builder for an initial chapter.
func New() *Builder {
	return &Builder{
		kind:         state.KindInitial,
		excerptLimit: ExcerptLimit,
		messages:     make([]chat.ChatMessage, 0),
	}
}

// WithInput sets the player's submitted input.
func (b *Builder) WithInput(in story.UserInput) *Builder {
	b.input = &in
	return b
}

// WithContinuation switches the builder to a follow-up chapter written
// from the previous story and the player's action.
func (b *Builder) WithContinuation(previous, action string) *Builder {
	b.kind = state.KindContinuation
	b.previous = previous
	b.action = action
	return b
}

// WithExcerptLimit sets how many trailing runes of the previous story are kept.
func (b *Builder) WithExcerptLimit(limit int) *Builder {
	b.excerptLimit = limit
	return b
}

// Build returns the system and task messages.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.input == nil {
		return nil, fmt.Errorf("input is required")
	}
	if len(b.input.Words) == 0 {
		return nil, fmt.Errorf("at least one word is required")
	}

	b.messages = make([]chat.ChatMessage, 0, 2)
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: SystemPrompt,
	})

	var task string
	words := strings.Join(b.input.Words, ", ")
	genre := b.input.Genre.Label()
	switch b.kind {
	case state.KindContinuation:
		action := strings.TrimSpace(b.action)
		if action == "" {
			action = state.DefaultAction
		}
		excerpt := Excerpt(b.previous, b.excerptLimit)
		task = fmt.Sprintf(ContinuationTaskTemplate, b.input.Name, genre, words, excerpt, action, action)
	default:
		task = fmt.Sprintf(InitialTaskTemplate, b.input.Name, genre, words, genre)
	}

	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleUser,
		Content: task + "\n" + OutputFormatPrompt,
	})
	return b.messages, nil
}

// BuildMessages builds the messages for an issued ticket.
func BuildMessages(t *state.Ticket) ([]chat.ChatMessage, error) {
	if t == nil {
		return nil, fmt.Errorf("ticket is required")
	}
	b := New().WithInput(t.Input)
	if t.Kind == state.KindContinuation {
		b.WithContinuation(t.PreviousStory, t.Action)
	}
	return b.Build()
}

// Excerpt returns the last limit runes of text. A limit of zero or less
// keeps everything.
func Excerpt(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[len(runes)-limit:])
}
