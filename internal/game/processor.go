// Package game applies player events to stored sessions. Each transition
// runs under the session lock; generations run outside it while the
// stored session shows LOADING.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/word-dungeon/internal/services"
	"github.com/jwebster45206/word-dungeon/pkg/boss"
	"github.com/jwebster45206/word-dungeon/pkg/state"
	"github.com/jwebster45206/word-dungeon/pkg/storage"
	"github.com/jwebster45206/word-dungeon/pkg/story"
)

var (
	// ErrSessionNotFound is returned for unknown or expired sessions.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionBusy is returned when the session lock could not be taken
	// in time.
	ErrSessionBusy = errors.New("session is busy")
)

const (
	// DefaultStaleAfter is how long a LOADING session may wait before its
	// generation is treated as lost.
	DefaultStaleAfter = 5 * time.Minute

	lockWait  = 2 * time.Second
	lockRetry = 25 * time.Millisecond
)

// SessionProcessor runs session transitions. It is safe for concurrent use.
type SessionProcessor struct {
	store      storage.Storage
	generator  services.Generator
	logger     *slog.Logger
	owner      string
	lockTTL    time.Duration
	staleAfter time.Duration

	// For cancelling a generation when its session is deleted
	cancelMu sync.Mutex
	cancel   map[uuid.UUID]context.CancelFunc
}

// NewSessionProcessor creates a processor with its own lock owner id.
func NewSessionProcessor(store storage.Storage, generator services.Generator, logger *slog.Logger) *SessionProcessor {
	return &SessionProcessor{
		store:      store,
		generator:  generator,
		logger:     logger,
		owner:      uuid.NewString(),
		lockTTL:    storage.DefaultLockTTL,
		staleAfter: DefaultStaleAfter,
		cancel:     make(map[uuid.UUID]context.CancelFunc),
	}
}

// WithStaleAfter sets how long a generation may be pending before the
// session is recovered.
func (p *SessionProcessor) WithStaleAfter(d time.Duration) *SessionProcessor {
	p.staleAfter = d
	return p
}

// Create stores a new session on the input screen.
func (p *SessionProcessor) Create(ctx context.Context) (*state.GameState, error) {
	gs := state.NewGameState()
	if err := p.store.SaveGameState(ctx, gs.ID, gs); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	p.logger.Info("Session created", "session_id", gs.ID.String())
	return gs, nil
}

// Get loads a session. A session whose generation has gone stale is
// recovered first.
func (p *SessionProcessor) Get(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	gs, err := p.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.stale(gs) {
		return gs, nil
	}
	recovered, err := p.update(ctx, id, func(*state.GameState) error { return nil })
	if errors.Is(err, ErrSessionBusy) {
		return gs, nil
	}
	return recovered, err
}

// Delete discards a session and cancels its generation, if any. The
// delete waits for any transition in progress so nothing writes the
// session back afterwards.
func (p *SessionProcessor) Delete(ctx context.Context, id uuid.UUID) error {
	p.cancelMu.Lock()
	if cancel, ok := p.cancel[id]; ok {
		cancel()
	}
	p.cancelMu.Unlock()

	if err := p.lock(ctx, id); err != nil {
		return err
	}
	defer p.unlock(ctx, id)

	if _, err := p.load(ctx, id); err != nil {
		return err
	}
	if err := p.store.DeleteGameState(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	p.logger.Info("Session deleted", "session_id", id.String())
	return nil
}

// Start submits the player's input and generates the first chapter. On a
// generation failure the rolled-back session is returned with an error
// wrapping services.ErrGenerationFailed.
func (p *SessionProcessor) Start(ctx context.Context, id uuid.UUID, in story.UserInput) (*state.GameState, error) {
	var ticket *state.Ticket
	gs, err := p.update(ctx, id, func(gs *state.GameState) error {
		t, err := gs.Submit(in)
		ticket = t
		return err
	})
	if err != nil {
		return gs, err
	}
	return p.generate(ctx, ticket)
}

// Continue generates the next chapter from the player's action.
func (p *SessionProcessor) Continue(ctx context.Context, id uuid.UUID, action string) (*state.GameState, error) {
	var ticket *state.Ticket
	gs, err := p.update(ctx, id, func(gs *state.GameState) error {
		t, err := gs.NextChapter(action)
		ticket = t
		return err
	})
	if err != nil {
		return gs, err
	}
	return p.generate(ctx, ticket)
}

// Boss starts the boss battle over the current chapter.
func (p *SessionProcessor) Boss(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	return p.update(ctx, id, func(gs *state.GameState) error {
		return gs.BossBattle()
	})
}

// Answer answers the current question. The last answer completes the quiz.
func (p *SessionProcessor) Answer(ctx context.Context, id uuid.UUID, option int) (*state.GameState, boss.Outcome, error) {
	var out boss.Outcome
	gs, err := p.update(ctx, id, func(gs *state.GameState) error {
		var err error
		out, err = gs.Answer(option)
		return err
	})
	return gs, out, err
}

// Restart returns a finished session to the input screen.
func (p *SessionProcessor) Restart(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	return p.update(ctx, id, func(gs *state.GameState) error {
		return gs.Restart()
	})
}

// generate runs the ticket's generation and resolves the session. The
// generation is detached from the caller's cancellation so a dropped
// request still resolves the session.
func (p *SessionProcessor) generate(ctx context.Context, t *state.Ticket) (*state.GameState, error) {
	genCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancelMu.Lock()
	p.cancel[t.SessionID] = cancel
	p.cancelMu.Unlock()
	defer func() {
		p.cancelMu.Lock()
		delete(p.cancel, t.SessionID)
		p.cancelMu.Unlock()
		cancel()
	}()

	log := p.logger.With("session_id", t.SessionID.String(), "kind", string(t.Kind), "seq", t.Seq)
	log.Debug("Generation started")
	content, genErr := p.generator.Generate(genCtx, t)

	gs, err := p.update(context.WithoutCancel(ctx), t.SessionID, func(gs *state.GameState) error {
		return gs.Resolve(t, content, genErr)
	})
	if err != nil {
		log.Warn("Generation result discarded", "error", err)
		return gs, err
	}
	if genErr != nil {
		log.Warn("Generation failed, session rolled back", "phase", gs.Phase, "error", genErr)
		return gs, genErr
	}
	log.Info("Generation resolved", "phase", gs.Phase, "chapter", gs.Chapter, "fallback", content.Fallback)
	return gs, nil
}

// update loads the session under its lock, applies fn, and saves the
// result if anything changed. The session is returned even when fn fails.
func (p *SessionProcessor) update(ctx context.Context, id uuid.UUID, fn func(*state.GameState) error) (*state.GameState, error) {
	if err := p.lock(ctx, id); err != nil {
		return nil, err
	}
	defer p.unlock(ctx, id)

	gs, err := p.load(ctx, id)
	if err != nil {
		return nil, err
	}
	version := gs.Version
	if p.stale(gs) {
		p.logger.Warn("Recovering stale generation", "session_id", id.String(), "issued_at", gs.Pending.IssuedAt)
		_ = gs.Abandon()
	}

	fnErr := fn(gs)
	if gs.Version != version {
		if err := p.store.SaveGameState(ctx, id, gs); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
	}
	return gs, fnErr
}

func (p *SessionProcessor) lock(ctx context.Context, id uuid.UUID) error {
	deadline := time.Now().Add(lockWait)
	for {
		ok, err := p.store.AcquireLock(ctx, id, p.owner, p.lockTTL)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrSessionBusy
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetry):
		}
	}
}

func (p *SessionProcessor) unlock(ctx context.Context, id uuid.UUID) {
	if err := p.store.ReleaseLock(context.WithoutCancel(ctx), id, p.owner); err != nil {
		p.logger.Error("Failed to release session lock", "session_id", id.String(), "error", err)
	}
}

func (p *SessionProcessor) load(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	gs, err := p.store.LoadGameState(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if gs == nil {
		return nil, ErrSessionNotFound
	}
	return gs, nil
}

// stale reports whether a pending generation has outlived staleAfter and
// is not running in this process.
func (p *SessionProcessor) stale(gs *state.GameState) bool {
	if !gs.Loading() || p.staleAfter <= 0 || time.Since(gs.Pending.IssuedAt) < p.staleAfter {
		return false
	}
	p.cancelMu.Lock()
	_, running := p.cancel[gs.ID]
	p.cancelMu.Unlock()
	return !running
}
