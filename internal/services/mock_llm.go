package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jwebster45206/word-dungeon/pkg/chat"
	"github.com/jwebster45206/word-dungeon/pkg/story"
)

// MockLLMAPI is a mock implementation of LLMService. With no ChatFunc set
// it writes a small chapter around the words found in the prompt, so the
// game can be played offline.
type MockLLMAPI struct {
	InitModelFunc func(ctx context.Context, modelName string) error
	ChatFunc      func(ctx context.Context, messages []chat.ChatMessage, schema *chat.ResponseSchema) (string, error)

	// Track calls for testing
	InitModelCalls []string
	ChatCalls      []ChatCall

	mu sync.Mutex // protects all fields above
}

type ChatCall struct {
	Messages []chat.ChatMessage
	Schema   *chat.ResponseSchema
}

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		InitModelCalls: make([]string, 0),
		ChatCalls:      make([]ChatCall, 0),
	}
}

// InitModel mocks model initialization
func (m *MockLLMAPI) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	m.InitModelCalls = append(m.InitModelCalls, modelName)
	fn := m.InitModelFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, modelName)
	}
	return nil
}

// Chat mocks chapter generation
func (m *MockLLMAPI) Chat(ctx context.Context, messages []chat.ChatMessage, schema *chat.ResponseSchema) (string, error) {
	m.mu.Lock()
	m.ChatCalls = append(m.ChatCalls, ChatCall{Messages: messages, Schema: schema})
	fn := m.ChatFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages, schema)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return cannedChapter(messages), nil
}

// SetChatResponse makes every Chat call return reply.
func (m *MockLLMAPI) SetChatResponse(reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage, schema *chat.ResponseSchema) (string, error) {
		return reply, nil
	}
}

// SetChatError makes every Chat call fail with err.
func (m *MockLLMAPI) SetChatError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage, schema *chat.ResponseSchema) (string, error) {
		return "", err
	}
}

// Reset clears all call tracking
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.ChatCalls = make([]ChatCall, 0)
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockLLMAPI) GetCalls() ([]string, []ChatCall) {
	m.mu.Lock()
	defer m.mu.Unlock()

	initCalls := make([]string, len(m.InitModelCalls))
	copy(initCalls, m.InitModelCalls)

	chatCalls := make([]ChatCall, len(m.ChatCalls))
	copy(chatCalls, m.ChatCalls)

	return initCalls, chatCalls
}

const wordsLinePrefix = "학습 단어:"

// promptWords finds the vocabulary list in the task prompt.
func promptWords(messages []chat.ChatMessage) []string {
	for _, msg := range messages {
		for _, line := range strings.Split(msg.Content, "\n") {
			line = strings.TrimPrefix(strings.TrimSpace(line), "- ")
			if !strings.HasPrefix(line, wordsLinePrefix) {
				continue
			}
			list := strings.TrimSpace(strings.TrimPrefix(line, wordsLinePrefix))
			if i := strings.Index(list, " ("); i >= 0 {
				list = list[:i]
			}
			var words []string
			for _, w := range strings.Split(list, ",") {
				if w = strings.TrimSpace(w); w != "" {
					words = append(words, w)
				}
			}
			return words
		}
	}
	return nil
}

func cannedChapter(messages []chat.ChatMessage) string {
	words := promptWords(messages)
	if len(words) == 0 {
		words = []string{"모험"}
	}

	var sb strings.Builder
	sb.WriteString("안개 낀 던전의 문이 천천히 열렸다. ")
	for _, w := range words {
		fmt.Fprintf(&sb, "주인공은 **%s**(이)라는 말을 떠올렸다. 그리고 다시 한 번 **%s**의 뜻을 생각하며 앞으로 걸었다. ", w, w)
	}
	sb.WriteString("저 멀리서 보스의 울음소리가 들려왔다.")

	content := story.GeneratedContent{
		Title:   "시험의 던전",
		Story:   sb.String(),
		Quizzes: make([]story.QuizItem, 0, story.QuizCount),
	}
	for i := 0; i < story.QuizCount; i++ {
		w := words[i%len(words)]
		content.Quizzes = append(content.Quizzes, story.QuizItem{
			Question:           fmt.Sprintf("%d번째 문, 주인공이 떠올린 말은 ( ? )였다.", i+1),
			Options:            rotate([]string{w, "낮잠", "간식"}, i),
			CorrectAnswerIndex: i % story.OptionCount,
		})
	}

	data, _ := json.Marshal(content)
	return string(data)
}

// rotate shifts options right by n so the answer moves around.
func rotate(options []string, n int) []string {
	n %= len(options)
	return append(append([]string(nil), options[len(options)-n:]...), options[:len(options)-n]...)
}
