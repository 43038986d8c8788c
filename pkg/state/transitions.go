package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/word-dungeon/pkg/boss"
	"github.com/jwebster45206/word-dungeon/pkg/story"
)

var (
	// ErrInvalidTransition is returned when an event does not apply to the
	// current phase. The state is left unchanged.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrGenerationInFlight is returned when an event arrives while the
	// session is waiting on a generation.
	ErrGenerationInFlight = errors.New("generation already in flight")

	// ErrStaleTicket is returned by Resolve for a result that no longer
	// belongs to the in-flight generation. The result is discarded.
	ErrStaleTicket = errors.New("stale generation ticket")
)

// Ticket is an issued generation request. It carries everything the
// generator needs, so it can be run without holding the session.
type Ticket struct {
	SessionID     uuid.UUID       `json:"session_id"`
	Seq           int             `json:"seq"`
	Kind          Kind            `json:"kind"`
	Input         story.UserInput `json:"input"`
	PreviousStory string          `json:"previous_story,omitempty"`
	Action        string          `json:"action,omitempty"`
	IssuedAt      time.Time       `json:"issued_at"`
}

func (gs *GameState) invalid(event string) error {
	if gs.Phase == PhaseLoading {
		return fmt.Errorf("%s: %w", event, ErrGenerationInFlight)
	}
	return fmt.Errorf("%s in phase %s: %w", event, gs.Phase, ErrInvalidTransition)
}

func (gs *GameState) touch() {
	gs.Version++
	gs.UpdatedAt = time.Now().UTC()
}

func (gs *GameState) issue(kind Kind, previous, action string) *Ticket {
	gs.touch()
	input := *gs.Input
	input.Words = append([]string(nil), gs.Input.Words...)
	t := &Ticket{
		SessionID:     gs.ID,
		Seq:           gs.Version,
		Kind:          kind,
		Input:         input,
		PreviousStory: previous,
		Action:        action,
		IssuedAt:      gs.UpdatedAt,
	}
	gs.PendingPhase = gs.Phase
	gs.Phase = PhaseLoading
	gs.Pending = t
	gs.Notice = ""
	return t
}

// Submit stores the player's input and issues the first chapter request.
// Invalid input returns a *story.ValidationError and changes nothing.
func (gs *GameState) Submit(in story.UserInput) (*Ticket, error) {
	if gs.Phase != PhaseInput {
		return nil, gs.invalid("submit")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	normalized := in.Normalized()
	gs.Input = &normalized
	gs.Content = nil
	gs.Chapter = 1
	return gs.issue(KindInitial, "", ""), nil
}

// NextChapter issues a continuation request. A blank action is replaced
// by DefaultAction.
func (gs *GameState) NextChapter(action string) (*Ticket, error) {
	if gs.Phase != PhaseStory || gs.Content == nil || gs.Input == nil {
		return nil, gs.invalid("next chapter")
	}
	action = strings.TrimSpace(action)
	if action == "" {
		action = DefaultAction
	}
	return gs.issue(KindContinuation, gs.Content.Story, action), nil
}

// Resolve applies the outcome of a generation. A nil content or non-nil
// genErr is a failure: an initial request returns to the input screen and
// discards the input, a continuation returns to the story with content and
// chapter unchanged. Results for any ticket other than the pending one
// return ErrStaleTicket.
func (gs *GameState) Resolve(t *Ticket, content *story.GeneratedContent, genErr error) error {
	if t == nil || !gs.Loading() || gs.Pending.Seq != t.Seq || gs.Pending.Kind != t.Kind {
		return ErrStaleTicket
	}
	if genErr != nil || content == nil {
		gs.rollback()
		return nil
	}

	gs.Content = content.Clone()
	if t.Kind == KindContinuation {
		gs.Chapter++
	} else {
		gs.Chapter = 1
	}
	gs.Phase = PhaseStory
	gs.Pending = nil
	gs.PendingPhase = ""
	gs.touch()
	return nil
}

// Abandon treats the pending generation as failed. It recovers a session
// whose generation will never report back.
func (gs *GameState) Abandon() error {
	if !gs.Loading() {
		return fmt.Errorf("abandon in phase %s: %w", gs.Phase, ErrInvalidTransition)
	}
	gs.rollback()
	return nil
}

func (gs *GameState) rollback() {
	if gs.Pending.Kind == KindInitial {
		gs.Input = nil
		gs.Content = nil
		gs.Chapter = 1
		gs.Phase = PhaseInput
		gs.Notice = NoticeInitialFailed
	} else {
		gs.Phase = gs.PendingPhase
		if gs.Phase == "" {
			gs.Phase = PhaseStory
		}
		gs.Notice = NoticeContinuationFailed
	}
	gs.Pending = nil
	gs.PendingPhase = ""
	gs.touch()
}

// BossBattle starts the quiz over the current chapter's questions. A
// chapter with no questions goes straight to the result with score 0.
func (gs *GameState) BossBattle() error {
	if gs.Phase != PhaseStory || gs.Content == nil {
		return gs.invalid("boss battle")
	}
	gs.QuizIndex = 0
	gs.QuizScore = 0
	gs.BossHP = boss.MaxHP
	gs.Phase = PhaseQuiz
	gs.Notice = ""
	if len(gs.Content.Quizzes) == 0 {
		return gs.Complete(0)
	}
	gs.touch()
	return nil
}

// Answer answers the current question and advances the encounter. After
// the last question the quiz is completed.
func (gs *GameState) Answer(selected int) (boss.Outcome, error) {
	if gs.Phase != PhaseQuiz {
		return boss.Outcome{}, gs.invalid("answer")
	}
	e := gs.Encounter()
	out, ok := e.Answer(selected)
	if !ok {
		return boss.Outcome{}, gs.invalid("answer")
	}
	finished := e.Advance()
	gs.QuizScore = e.Score()
	gs.BossHP = e.HP()
	if finished {
		gs.QuizIndex = e.Total()
		return out, gs.Complete(e.Score())
	}
	gs.QuizIndex = e.Index()
	gs.touch()
	return out, nil
}

// Complete records the final score and moves to the result screen. The
// score is clamped to the number of questions.
func (gs *GameState) Complete(score int) error {
	if gs.Phase != PhaseQuiz || gs.Content == nil {
		return gs.invalid("complete")
	}
	total := len(gs.Content.Quizzes)
	if score < 0 {
		score = 0
	}
	if score > total {
		score = total
	}
	gs.QuizScore = score
	gs.QuizIndex = total
	gs.BossHP = boss.Resume(gs.Content.Quizzes, total, score).HP()
	gs.Phase = PhaseResult
	gs.touch()
	return nil
}

// Restart returns the session to its initial value. The ID is kept so
// the session stays addressable.
func (gs *GameState) Restart() error {
	if gs.Phase != PhaseResult {
		return gs.invalid("restart")
	}
	gs.reset()
	gs.touch()
	return nil
}
