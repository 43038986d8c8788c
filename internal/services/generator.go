package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/word-dungeon/pkg/chat"
	"github.com/jwebster45206/word-dungeon/pkg/prompts"
	"github.com/jwebster45206/word-dungeon/pkg/state"
	"github.com/jwebster45206/word-dungeon/pkg/story"
	"github.com/jwebster45206/word-dungeon/pkg/textfilter"
)

// Generator produces the content for an issued ticket.
type Generator interface {
	Generate(ctx context.Context, t *state.Ticket) (*story.GeneratedContent, error)
}

// ContentGenerator turns a ticket into a chapter using an LLMService.
//
// A transport failure that survives retries returns an error wrapping
// ErrGenerationFailed. A reply that arrives but cannot be read yields the
// fallback chapter for the ticket's kind with a nil error.
type ContentGenerator struct {
	llm        LLMService
	provider   string
	maxRetries int
	backoff    time.Duration
	timeout    time.Duration
	filter     *textfilter.ProfanityFilter
	metrics    *Metrics
	logger     *slog.Logger
}

// NewContentGenerator creates a generator with no retries and no timeout.
func NewContentGenerator(llm LLMService, logger *slog.Logger) *ContentGenerator {
	return &ContentGenerator{
		llm:      llm,
		provider: "unknown",
		filter:   textfilter.NewProfanityFilter(),
		logger:   logger,
	}
}

// WithRetries sets how many extra attempts a failed call gets and the
// pause between them.
func (g *ContentGenerator) WithRetries(maxRetries int, backoff time.Duration) *ContentGenerator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	g.maxRetries = maxRetries
	g.backoff = backoff
	return g
}

// WithTimeout bounds each attempt.
func (g *ContentGenerator) WithTimeout(timeout time.Duration) *ContentGenerator {
	g.timeout = timeout
	return g
}

// WithMetrics records every generation under the provider label.
func (g *ContentGenerator) WithMetrics(m *Metrics, provider string) *ContentGenerator {
	g.metrics = m
	g.provider = provider
	return g
}

// Generate runs one generation for t.
func (g *ContentGenerator) Generate(ctx context.Context, t *state.Ticket) (*story.GeneratedContent, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil ticket", ErrGenerationFailed)
	}
	start := time.Now()
	log := g.logger.With("session_id", t.SessionID.String(), "kind", string(t.Kind), "seq", t.Seq)

	ticket := *t
	ticket.Action = g.filter.FilterText(t.Action)
	messages, err := prompts.BuildMessages(&ticket)
	if err != nil {
		g.metrics.observe(g.provider, string(t.Kind), StatusError, time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: build prompt: %v", ErrGenerationFailed, err)
	}

	raw, err := g.chatWithRetry(ctx, messages, log)
	if err != nil {
		g.metrics.observe(g.provider, string(t.Kind), StatusError, time.Since(start).Seconds())
		log.Error("Generation failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	content, err := prompts.ParseContent(raw)
	if err != nil {
		g.metrics.observe(g.provider, string(t.Kind), StatusFallback, time.Since(start).Seconds())
		log.Warn("Could not read model reply, using fallback chapter", "error", err, "reply_length", len(raw))
		if t.Kind == state.KindContinuation {
			return story.FallbackContinuation(), nil
		}
		return story.FallbackInitial(), nil
	}

	g.filter.FilterContent(content)
	g.metrics.observe(g.provider, string(t.Kind), StatusSuccess, time.Since(start).Seconds())
	log.Info("Chapter generated",
		"title", content.Title,
		"quizzes", len(content.Quizzes),
		"duration", time.Since(start))
	return content, nil
}

func (g *ContentGenerator) chatWithRetry(ctx context.Context, messages []chat.ChatMessage, log *slog.Logger) (string, error) {
	var lastErr error
	attempts := g.maxRetries + 1
	for i := 0; i < attempts; i++ {
		raw, err := g.chatOnce(ctx, messages)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if i < attempts-1 {
			log.Warn("LLM call failed, retrying", "attempt", i+1, "error", err)
			if g.backoff > 0 {
				select {
				case <-time.After(g.backoff):
				case <-ctx.Done():
					return "", ctx.Err()
				}
			}
		}
	}
	return "", lastErr
}

func (g *ContentGenerator) chatOnce(ctx context.Context, messages []chat.ChatMessage) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.llm.Chat(ctx, messages, &prompts.ContentSchema)
}
